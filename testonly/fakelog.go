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

package testonly

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/kt-dev/keytrans/crypto"
	"github.com/kt-dev/keytrans/types"
	"github.com/transparency-dev/merkle/rfc6962"
	inmemory "github.com/transparency-dev/merkle/testonly"
	"k8s.io/utils/ptr"
)

// NewAuditor returns a deterministic auditor signer derived from seed.
func NewAuditor(seed byte) *crypto.Signer {
	s := make([]byte, ed25519.SeedSize)
	for i := range s {
		s[i] = seed
	}
	signer, err := crypto.NewSigner(ed25519.NewKeyFromSeed(s))
	if err != nil {
		panic(err)
	}
	return signer
}

// FakeLog is an in-memory RFC 6962 log whose tree heads are signed by a set
// of auditors.
type FakeLog struct {
	tree     *inmemory.Tree
	auditors []*crypto.Signer
}

// NewFakeLog creates an empty log signed by auditors.
func NewFakeLog(auditors ...*crypto.Signer) *FakeLog {
	return &FakeLog{tree: inmemory.New(rfc6962.DefaultHasher), auditors: auditors}
}

// Append adds n leaves to the log.
func (l *FakeLog) Append(n int) {
	for i := 0; i < n; i++ {
		l.tree.AppendData([]byte(fmt.Sprintf("leaf:%d", l.tree.Size())))
	}
}

// Size returns the current number of leaves.
func (l *FakeLog) Size() uint64 {
	return l.tree.Size()
}

// TreeHead returns the signed tree head of the log at size, stamped with ts.
func (l *FakeLog) TreeHead(size uint64, ts time.Time) (*types.StoredTreeHead, error) {
	if size > l.tree.Size() {
		return nil, fmt.Errorf("size %d beyond log size %d", size, l.tree.Size())
	}
	sth, err := types.NewStoredTreeHead(&types.TreeHead{
		TreeSize:  size,
		Timestamp: ts.UnixMilli(),
	}, l.tree.HashAt(size))
	if err != nil {
		return nil, err
	}
	for _, a := range l.auditors {
		sig, err := a.SignTreeHead(sth)
		if err != nil {
			return nil, err
		}
		sth.TreeHead.Signatures = append(sth.TreeHead.Signatures, sig)
	}
	return sth, nil
}

// ConsistencyProof returns the proof that the tree at size2 extends the tree at size1.
func (l *FakeLog) ConsistencyProof(size1, size2 uint64) ([][]byte, error) {
	return l.tree.ConsistencyProof(size1, size2)
}

// MonitoredSearchResult returns a search result for TestACI whose monitoring
// data points into the log at sth.
func MonitoredSearchResult(sth *types.StoredTreeHead) (*types.SearchResult, error) {
	pos := func(b byte) *types.StoredMonitoringData {
		m := MakeMonitoringData(b)
		if m.Pos > sth.TreeSize() {
			m.Pos = sth.TreeSize()
		}
		return &m
	}
	data, err := types.NewStoredAccountData(pos(0), pos(1), pos(2), sth)
	if err != nil {
		return nil, err
	}
	return types.NewSearchResult(TestACIIdentityKeyBytes, ptr.To(TestACI), ptr.To(TestACI), time.Unix(0, 0).UTC(), *data)
}
