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

// Package testonly contains code and data that should only be used by tests.
// Production code MUST NOT depend on anything in this package. The bridge
// test functions in bridge/testfns are the exception; build with the
// nobridgetesting tag to leave them out.
package testonly

import (
	"encoding/hex"
	"time"

	"github.com/kt-dev/keytrans"
	"github.com/kt-dev/keytrans/types"
	"k8s.io/utils/ptr"
)

// TestACI is the account used in fixture search results.
var TestACI = types.MustParseACI("90c979fd-eab4-4a08-b6da-69dedeab9b29")

// TestACIIdentityKeyBytes is the serialized identity key of TestACI.
var TestACIIdentityKeyBytes = mustHex("05111f9464c1822c6a2405acf1c5a4366679dc3349fc8eb015c8d7260e3f771177")

// Values used by ChatSearchResult. They are deliberately not realistic so
// that corruption anywhere between construction and assertion stands out.
const (
	FixtureTreeSize  = 42
	FixtureTimestamp = 42424242
	FixtureRootByte  = 42
)

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MakeMonitoringData returns monitoring data whose index is fill repeated and
// whose position is fill.
func MakeMonitoringData(fill byte) types.StoredMonitoringData {
	return types.StoredMonitoringData{
		Index: keytrans.FillLabel(fill),
		Pos:   uint64(fill),
		Ptrs:  map[uint64]uint32{},
		Owned: false,
	}
}

func fixtureTreeHead() *types.StoredTreeHead {
	root := make(keytrans.Hash, keytrans.HashSize)
	for i := range root {
		root[i] = FixtureRootByte
	}
	return &types.StoredTreeHead{
		TreeHead: &types.TreeHead{
			TreeSize:  FixtureTreeSize,
			Timestamp: FixtureTimestamp,
			Signatures: []types.Signature{{
				AuditorPublicKey: []byte{1, 2, 3},
				Signature:        []byte{4, 5, 6},
			}},
		},
		Root: root,
	}
}

// NewChatSearchResult builds the fixture search result around the given
// serialized identity key. Key decoding errors are returned to the caller.
func NewChatSearchResult(identityKey []byte) (*types.SearchResult, error) {
	md := func(b byte) *types.StoredMonitoringData {
		m := MakeMonitoringData(b)
		return &m
	}
	data, err := types.NewStoredAccountData(md(0), md(1), md(2), fixtureTreeHead())
	if err != nil {
		return nil, err
	}
	return types.NewSearchResult(identityKey, ptr.To(TestACI), ptr.To(TestACI), time.Unix(0, 0).UTC(), *data)
}

// ChatSearchResult returns a fully populated, deterministic SearchResult
// that does not come from any real log.
func ChatSearchResult() *types.SearchResult {
	r, err := NewChatSearchResult(TestACIIdentityKeyBytes)
	if err != nil {
		panic("valid serialized key: " + err.Error())
	}
	return r
}
