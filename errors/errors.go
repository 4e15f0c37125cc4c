// Copyright 2024 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code defines the error code of an error. Values match google.golang.org/grpc/codes.
type Code uint32

// Error codes.
const (
	OK                 Code = 0
	Canceled           Code = 1
	Unknown            Code = 2
	InvalidArgument    Code = 3
	DeadlineExceeded   Code = 4
	NotFound           Code = 5
	AlreadyExists      Code = 6
	PermissionDenied   Code = 7
	ResourceExhausted  Code = 8
	FailedPrecondition Code = 9
	Aborted            Code = 10
	OutOfRange         Code = 11
	Unimplemented      Code = 12
	Internal           Code = 13
	Unavailable        Code = 14
	DataLoss           Code = 15
	Unauthenticated    Code = 16
)

func (c Code) String() string {
	return codes.Code(c).String()
}

// KTError associates an error message with a Code.
type KTError interface {
	error
	Code() Code
}

type ktError struct {
	code Code
	msg  string
	err  error
}

func (e *ktError) Error() string { return e.msg }
func (e *ktError) Code() Code    { return e.code }
func (e *ktError) Unwrap() error { return e.err }

// New creates a KTError from the specified code and message.
func New(code Code, msg string) error {
	return &ktError{code: code, msg: msg}
}

// Errorf creates a KTError from the specified code and formatted message.
// A %w verb in format keeps the wrapped error reachable through errors.Is
// and errors.As.
func Errorf(code Code, format string, a ...interface{}) error {
	err := fmt.Errorf(format, a...)
	return &ktError{code: code, msg: err.Error(), err: stderrors.Unwrap(err)}
}

// ErrorCode returns the Code of the first KTError in err's chain. A nil
// error maps to OK, an error without a code to Unknown.
func ErrorCode(err error) Code {
	if err == nil {
		return OK
	}
	var kerr KTError
	if stderrors.As(err, &kerr) {
		return kerr.Code()
	}
	return Unknown
}

// ToStatus converts err into a gRPC status carrying the same code.
func ToStatus(err error) *status.Status {
	if err == nil {
		return nil
	}
	return status.New(codes.Code(ErrorCode(err)), err.Error())
}
