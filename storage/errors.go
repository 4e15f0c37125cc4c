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

package storage

import "github.com/kt-dev/keytrans/errors"

var errNilData = errors.New(errors.InvalidArgument, "nil account data")

func errTreeRegression(got, have uint64) error {
	return errors.Errorf(errors.FailedPrecondition, "tree size %d is behind stored tree size %d", got, have)
}

// ErrNotFound builds the error returned by AccountStore.Get for unknown ACIs.
func ErrNotFound(what interface{}) error {
	return errors.Errorf(errors.NotFound, "no account data for %v", what)
}
