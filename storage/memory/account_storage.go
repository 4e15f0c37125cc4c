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

// Package memory provides a simple in-process implementation of the
// AccountStore interface.
//
// The store is based on a BTree, which keeps accounts ordered by ACI so that
// listing is deterministic. Monitoring state lives only as long as the
// process.
package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/btree"
	"github.com/kt-dev/keytrans/storage"
	"github.com/kt-dev/keytrans/types"
	"k8s.io/klog/v2"
)

const degree = 8

type entry struct {
	aci  types.ACI
	data *types.StoredAccountData
}

func less(a, b entry) bool {
	return bytes.Compare(a.aci.Bytes(), b.aci.Bytes()) < 0
}

// AccountStore is an in-memory storage.AccountStore.
type AccountStore struct {
	// mu protects tree.
	mu   sync.RWMutex
	tree *btree.BTreeG[entry]
}

var _ storage.AccountStore = (*AccountStore)(nil)

// NewAccountStore returns an empty AccountStore.
func NewAccountStore() *AccountStore {
	return &AccountStore{tree: btree.NewG(degree, less)}
}

// Get implements storage.AccountStore.
func (s *AccountStore) Get(ctx context.Context, aci types.ACI) (*types.StoredAccountData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.tree.Get(entry{aci: aci})
	if !ok {
		return nil, storage.ErrNotFound(aci)
	}
	return e.data.Clone(), nil
}

// Put implements storage.AccountStore.
func (s *AccountStore) Put(ctx context.Context, aci types.ACI, data *types.StoredAccountData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev *types.StoredAccountData
	if e, ok := s.tree.Get(entry{aci: aci}); ok {
		prev = e.data
	}
	if err := storage.CheckNotRegressing(prev, data); err != nil {
		return err
	}
	s.tree.ReplaceOrInsert(entry{aci: aci, data: data.Clone()})
	klog.V(2).Infof("%v: stored account data at tree size %d", aci, data.LastTreeHead.TreeSize())
	return nil
}

// List implements storage.AccountStore.
func (s *AccountStore) List(ctx context.Context) ([]types.ACI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acis := make([]types.ACI, 0, s.tree.Len())
	s.tree.Ascend(func(e entry) bool {
		acis = append(acis, e.aci)
		return true
	})
	return acis, nil
}
