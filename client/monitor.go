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

package client

import (
	"context"

	"github.com/kt-dev/keytrans/errors"
	"github.com/kt-dev/keytrans/storage"
	"github.com/kt-dev/keytrans/types"
	"github.com/kt-dev/keytrans/util"
	"k8s.io/klog/v2"
)

// Monitor records the monitoring state of accounts as verified search
// results for them arrive.
type Monitor struct {
	verifier *SearchVerifier
	store    storage.AccountStore
}

// NewMonitor returns a Monitor that verifies with v and records into store.
func NewMonitor(v *SearchVerifier, store storage.AccountStore) *Monitor {
	return &Monitor{verifier: v, store: store}
}

// Update verifies r as the result of searching for aci, checks that its tree
// head extends the one previously stored for aci, and stores its account
// data.
func (m *Monitor) Update(ctx context.Context, aci types.ACI, r *types.SearchResult, consistency [][]byte) error {
	ctx = util.NewAccountContext(ctx, aci)
	if err := m.verifier.VerifySearchResult(r); err != nil {
		klog.Warningf("%s: rejected search result: %v", util.AccountPrefix(ctx), err)
		return err
	}
	for _, alias := range []*types.ACI{r.ACIForE164, r.ACIForUsernameHash} {
		if alias != nil && *alias != aci {
			return errors.Errorf(errors.FailedPrecondition, "alias bound to %v, searched for %v", alias, aci)
		}
	}

	prev, err := m.store.Get(ctx, aci)
	switch {
	case errors.ErrorCode(err) == errors.NotFound:
		prev = nil
	case err != nil:
		return err
	}
	var trusted *types.StoredTreeHead
	if prev != nil {
		trusted = prev.LastTreeHead
		if err := checkIndexesStable(prev, &r.AccountData); err != nil {
			return err
		}
	}
	if err := m.verifier.VerifyConsistency(trusted, r.AccountData.LastTreeHead, consistency); err != nil {
		klog.Warningf("%s: tree head not consistent with stored state: %v", util.AccountPrefix(ctx), err)
		return err
	}
	if err := m.store.Put(ctx, aci, &r.AccountData); err != nil {
		return err
	}
	klog.V(1).Infof("%s: monitoring state advanced to tree size %d", util.AccountPrefix(ctx), r.AccountData.LastTreeHead.TreeSize())
	return nil
}

// Latest returns the last stored account data for aci.
func (m *Monitor) Latest(ctx context.Context, aci types.ACI) (*types.StoredAccountData, error) {
	return m.store.Get(ctx, aci)
}

// checkIndexesStable rejects next if an identifier present in both prev and
// next changed its index.
func checkIndexesStable(prev, next *types.StoredAccountData) error {
	for _, f := range []struct {
		name       string
		prev, next *types.StoredMonitoringData
	}{
		{"aci", prev.ACI, next.ACI},
		{"e164", prev.E164, next.E164},
		{"username_hash", prev.UsernameHash, next.UsernameHash},
	} {
		if f.prev != nil && f.next != nil && f.prev.Index != f.next.Index {
			return errors.Errorf(errors.FailedPrecondition, "%s index changed from %v to %v", f.name, f.prev.Index, f.next.Index)
		}
	}
	return nil
}
