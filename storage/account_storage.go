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

// Package storage defines where a client keeps the monitoring state of the
// accounts it has looked up.
package storage

//go:generate mockgen -self_package github.com/kt-dev/keytrans/storage -package storage -destination mock_storage.go github.com/kt-dev/keytrans/storage AccountStore

import (
	"context"

	"github.com/kt-dev/keytrans/types"
)

// AccountStore holds the last verified StoredAccountData for each ACI.
//
// Implementations must hand out and keep their own copies of the data, and
// must refuse to replace stored data with data verified against a smaller
// tree.
type AccountStore interface {
	// Get returns the stored data for aci, or a NotFound error.
	Get(ctx context.Context, aci types.ACI) (*types.StoredAccountData, error)
	// Put replaces the stored data for aci. It returns FailedPrecondition if
	// data.LastTreeHead is smaller than the stored tree head.
	Put(ctx context.Context, aci types.ACI, data *types.StoredAccountData) error
	// List returns all ACIs with stored data, in ascending byte order.
	List(ctx context.Context) ([]types.ACI, error)
}

// CheckNotRegressing returns FailedPrecondition if next would replace prev
// with data verified against a smaller tree. prev may be nil.
func CheckNotRegressing(prev, next *types.StoredAccountData) error {
	if next == nil {
		return errNilData
	}
	if prev == nil {
		return nil
	}
	if got, have := next.LastTreeHead.TreeSize(), prev.LastTreeHead.TreeSize(); got < have {
		return errTreeRegression(got, have)
	}
	return nil
}
