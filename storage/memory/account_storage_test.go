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

package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kt-dev/keytrans"
	"github.com/kt-dev/keytrans/errors"
	"github.com/kt-dev/keytrans/types"
)

var (
	aci1 = types.MustParseACI("00000000-0000-0000-0000-000000000001")
	aci2 = types.MustParseACI("90c979fd-eab4-4a08-b6da-69dedeab9b29")
	aci3 = types.MustParseACI("ffffffff-0000-0000-0000-000000000000")
)

func accountAt(size uint64) *types.StoredAccountData {
	return &types.StoredAccountData{
		ACI: &types.StoredMonitoringData{Index: keytrans.FillLabel(1), Pos: size / 2, Ptrs: map[uint64]uint32{}},
		LastTreeHead: &types.StoredTreeHead{
			TreeHead: &types.TreeHead{TreeSize: size, Timestamp: int64(size)},
			Root:     bytes.Repeat([]byte{byte(size)}, keytrans.HashSize),
		},
	}
}

func TestGetPut(t *testing.T) {
	ctx := context.Background()
	s := NewAccountStore()

	if _, err := s.Get(ctx, aci1); errors.ErrorCode(err) != errors.NotFound {
		t.Fatalf("Get(empty): %v, want NotFound", err)
	}
	want := accountAt(10)
	if err := s.Put(ctx, aci1, want); err != nil {
		t.Fatalf("Put(): %v", err)
	}
	got, err := s.Get(ctx, aci1)
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() diff (-want +got):\n%s", diff)
	}

	// Neither the caller's copy nor the returned copy alias the stored data.
	want.ACI.Pos = 99
	got.LastTreeHead.Root[0] = 0
	again, err := s.Get(ctx, aci1)
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if diff := cmp.Diff(accountAt(10), again); diff != "" {
		t.Errorf("stored data was mutated (-want +got):\n%s", diff)
	}
}

func TestPutRejectsRegression(t *testing.T) {
	ctx := context.Background()
	s := NewAccountStore()
	if err := s.Put(ctx, aci1, accountAt(10)); err != nil {
		t.Fatalf("Put(10): %v", err)
	}
	for _, tc := range []struct {
		size     uint64
		wantCode errors.Code
	}{
		{size: 9, wantCode: errors.FailedPrecondition},
		{size: 10, wantCode: errors.OK},
		{size: 11, wantCode: errors.OK},
		{size: 10, wantCode: errors.FailedPrecondition},
	} {
		if got := errors.ErrorCode(s.Put(ctx, aci1, accountAt(tc.size))); got != tc.wantCode {
			t.Errorf("Put(%d): %v, want %v", tc.size, got, tc.wantCode)
		}
	}
	if err := s.Put(ctx, aci1, nil); errors.ErrorCode(err) != errors.InvalidArgument {
		t.Errorf("Put(nil): %v, want InvalidArgument", err)
	}
	// A regression for one account does not affect another.
	if err := s.Put(ctx, aci2, accountAt(1)); err != nil {
		t.Errorf("Put(aci2, 1): %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := NewAccountStore()
	for _, aci := range []types.ACI{aci3, aci1, aci2} {
		if err := s.Put(ctx, aci, accountAt(5)); err != nil {
			t.Fatalf("Put(%v): %v", aci, err)
		}
	}
	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List(): %v", err)
	}
	if diff := cmp.Diff([]types.ACI{aci1, aci2, aci3}, got); diff != "" {
		t.Errorf("List() diff (-want +got):\n%s", diff)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewAccountStore()
	if err := s.Put(ctx, aci1, accountAt(1)); err == nil {
		t.Error("Put(canceled): nil error")
	}
	if _, err := s.Get(ctx, aci1); err == nil {
		t.Error("Get(canceled): nil error")
	}
	if _, err := s.List(ctx); err == nil {
		t.Error("List(canceled): nil error")
	}
}
