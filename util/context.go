// Copyright 2017 Google Inc. All Rights Reserved.
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

// Package util holds helpers shared across the keytrans packages.
package util

import (
	"context"
	"fmt"

	"github.com/kt-dev/keytrans/types"
)

type contextKey int

// accountKey is the key used when storing an ACI in a context.Context.
const accountKey contextKey = iota

// NewAccountContext returns a new context instance that is scoped to a
// particular account.
func NewAccountContext(ctx context.Context, aci types.ACI) context.Context {
	return context.WithValue(ctx, accountKey, aci)
}

// AccountFromContext returns the account ctx is scoped to, if any.
func AccountFromContext(ctx context.Context) (types.ACI, bool) {
	aci, ok := ctx.Value(accountKey).(types.ACI)
	return aci, ok
}

// AccountPrefix returns an identifier for the account associated with ctx in
// a form suitable for use as a diagnostic prefix.
func AccountPrefix(ctx context.Context) string {
	aci, ok := AccountFromContext(ctx)
	if !ok {
		return "{unknown}"
	}
	return fmt.Sprintf("{%v}", aci)
}
