// Copyright 2017 Google LLC. All Rights Reserved.
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
	"testing"

	"google.golang.org/grpc/codes"
)

func TestCodes(t *testing.T) {
	tests := []struct {
		got  Code
		want codes.Code
	}{
		{got: OK, want: codes.OK},
		{got: Canceled, want: codes.Canceled},
		{got: Unknown, want: codes.Unknown},
		{got: InvalidArgument, want: codes.InvalidArgument},
		{got: DeadlineExceeded, want: codes.DeadlineExceeded},
		{got: NotFound, want: codes.NotFound},
		{got: AlreadyExists, want: codes.AlreadyExists},
		{got: PermissionDenied, want: codes.PermissionDenied},
		{got: Unauthenticated, want: codes.Unauthenticated},
		{got: ResourceExhausted, want: codes.ResourceExhausted},
		{got: FailedPrecondition, want: codes.FailedPrecondition},
		{got: Aborted, want: codes.Aborted},
		{got: OutOfRange, want: codes.OutOfRange},
		{got: Unimplemented, want: codes.Unimplemented},
		{got: Internal, want: codes.Internal},
		{got: Unavailable, want: codes.Unavailable},
		{got: DataLoss, want: codes.DataLoss},
	}
	for _, test := range tests {
		if uint64(test.got) != uint64(test.want) {
			t.Errorf("got = %v, want = %v", test.got, test.want)
		}
	}
}

func TestErrorf(t *testing.T) {
	tests := []struct {
		code    Code
		msg     string
		param   string
		wantMsg string
	}{
		// No need to test all values, just a couple is enough.
		{code: InvalidArgument, msg: "InvalidArgument: %v", param: "foo", wantMsg: "InvalidArgument: foo"},
		{code: OutOfRange, msg: "OutOfRange: %v", param: "bar", wantMsg: "OutOfRange: bar"},
	}
	for _, test := range tests {
		err := Errorf(test.code, test.msg, test.param)
		assertError(t, err, test.code, test.wantMsg)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		code Code
		msg  string
	}{
		{code: InvalidArgument, msg: "err InvalidArgument"},
		{code: NotFound, msg: "err NotFound"},
	}
	for _, test := range tests {
		err := New(test.code, test.msg)
		assertError(t, err, test.code, test.msg)
	}
}

func TestWrapping(t *testing.T) {
	sentinel := New(InvalidArgument, "bad key")
	err := Errorf(InvalidArgument, "decode: %w", sentinel)
	if !stderrors.Is(err, sentinel) {
		t.Errorf("errors.Is(%v, sentinel) = false, want true", err)
	}
	outer := fmt.Errorf("fixture: %w", Errorf(OutOfRange, "pos too large"))
	if got, want := ErrorCode(outer), OutOfRange; got != want {
		t.Errorf("ErrorCode(%v): %v, want %v", outer, got, want)
	}
	if got, want := ErrorCode(nil), OK; got != want {
		t.Errorf("ErrorCode(nil): %v, want %v", got, want)
	}
	if got, want := ErrorCode(stderrors.New("plain")), Unknown; got != want {
		t.Errorf("ErrorCode(plain): %v, want %v", got, want)
	}
}

func TestToStatus(t *testing.T) {
	s := ToStatus(New(PermissionDenied, "no auditor signature"))
	if got, want := s.Code(), codes.PermissionDenied; got != want {
		t.Errorf("ToStatus().Code(): %v, want %v", got, want)
	}
	if got, want := s.Message(), "no auditor signature"; got != want {
		t.Errorf("ToStatus().Message(): %q, want %q", got, want)
	}
	if ToStatus(nil) != nil {
		t.Error("ToStatus(nil) != nil")
	}
}

func assertError(t *testing.T, err error, wantCode Code, wantMsg string) {
	t.Helper()
	if got := err.Error(); got != wantMsg {
		t.Errorf("Error() = %v, want = %v", got, wantMsg)
	}
	kerr, ok := err.(KTError)
	if !ok {
		t.Errorf("err is not a KTError: %T", err)
		return
	}
	if got := kerr.Code(); got != wantCode {
		t.Errorf("Code() = %v, want = %v", got, wantCode)
	}
}
