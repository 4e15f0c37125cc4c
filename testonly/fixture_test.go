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
	"bytes"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kt-dev/keytrans/crypto/identity"
	"github.com/kt-dev/keytrans/types"
)

var keyComparer = cmp.Comparer(func(a, b identity.IdentityKey) bool { return a.Equal(b) })

func TestChatSearchResultDeterministic(t *testing.T) {
	a, b := ChatSearchResult(), ChatSearchResult()
	if diff := cmp.Diff(a, b, keyComparer); diff != "" {
		t.Errorf("ChatSearchResult() differs between calls (-first +second):\n%s", diff)
	}
	ab, err := a.AccountData.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary(): %v", err)
	}
	bb, err := b.AccountData.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary(): %v", err)
	}
	if !bytes.Equal(ab, bb) {
		t.Errorf("account data encodings differ:\n%x\n%x", ab, bb)
	}
}

func TestChatSearchResultMonitoringData(t *testing.T) {
	r := ChatSearchResult()
	for _, tc := range []struct {
		name string
		m    *types.StoredMonitoringData
		fill byte
	}{
		{name: "aci", m: r.AccountData.ACI, fill: 0},
		{name: "e164", m: r.AccountData.E164, fill: 1},
		{name: "username_hash", m: r.AccountData.UsernameHash, fill: 2},
	} {
		if tc.m == nil {
			t.Errorf("%s: monitoring data missing", tc.name)
			continue
		}
		if want := bytes.Repeat([]byte{tc.fill}, 32); !bytes.Equal(tc.m.Index[:], want) {
			t.Errorf("%s: Index = %x, want %x", tc.name, tc.m.Index, want)
		}
		if got, want := tc.m.Pos, uint64(tc.fill); got != want {
			t.Errorf("%s: Pos = %d, want %d", tc.name, got, want)
		}
		if tc.m.Ptrs == nil || len(tc.m.Ptrs) != 0 {
			t.Errorf("%s: Ptrs = %v, want empty map", tc.name, tc.m.Ptrs)
		}
		if tc.m.Owned {
			t.Errorf("%s: Owned = true, want false", tc.name)
		}
	}
}

func TestChatSearchResultTreeHead(t *testing.T) {
	sth := ChatSearchResult().AccountData.LastTreeHead
	if sth == nil || sth.TreeHead == nil {
		t.Fatal("LastTreeHead missing")
	}
	if got, want := sth.TreeHead.TreeSize, uint64(42); got != want {
		t.Errorf("TreeSize = %d, want %d", got, want)
	}
	if got, want := sth.TreeHead.Timestamp, int64(42424242); got != want {
		t.Errorf("Timestamp = %d, want %d", got, want)
	}
	if want := bytes.Repeat([]byte{42}, 32); !bytes.Equal(sth.Root, want) {
		t.Errorf("Root = %x, want %x", sth.Root, want)
	}
	want := []types.Signature{{AuditorPublicKey: []byte{1, 2, 3}, Signature: []byte{4, 5, 6}}}
	if diff := cmp.Diff(want, sth.TreeHead.Signatures); diff != "" {
		t.Errorf("Signatures diff (-want +got):\n%s", diff)
	}
}

func TestChatSearchResultAliases(t *testing.T) {
	r := ChatSearchResult()
	if r.ACIForE164 == nil || r.ACIForUsernameHash == nil {
		t.Fatalf("aliases missing: e164=%v username=%v", r.ACIForE164, r.ACIForUsernameHash)
	}
	if *r.ACIForE164 != *r.ACIForUsernameHash || *r.ACIForE164 != TestACI {
		t.Errorf("aliases = %v, %v; want both %v", r.ACIForE164, r.ACIForUsernameHash, TestACI)
	}
	if r.ACIForE164 == r.ACIForUsernameHash {
		t.Error("alias bindings share storage")
	}
	if !r.Timestamp.Equal(time.Unix(0, 0)) {
		t.Errorf("Timestamp = %v, want Unix epoch", r.Timestamp)
	}
}

func TestChatSearchResultIdentityKey(t *testing.T) {
	r := ChatSearchResult()
	if got := r.ACIIdentityKey.Serialize(); !bytes.Equal(got, TestACIIdentityKeyBytes) {
		t.Errorf("ACIIdentityKey.Serialize() = %x, want %x", got, TestACIIdentityKeyBytes)
	}
	if got, want := len(TestACIIdentityKeyBytes), 33; got != want {
		t.Errorf("len(TestACIIdentityKeyBytes) = %d, want %d", got, want)
	}
}

func TestNewChatSearchResultBadKey(t *testing.T) {
	bad := append([]byte{0x07}, TestACIIdentityKeyBytes[1:]...)
	r, err := NewChatSearchResult(bad)
	if !stderrors.Is(err, identity.ErrInvalidKeyEncoding) {
		t.Errorf("NewChatSearchResult(bad key) = %v, %v; want ErrInvalidKeyEncoding", r, err)
	}
}

func TestUsernameHashScenario(t *testing.T) {
	u := ChatSearchResult().AccountData.UsernameHash
	if u.Owned {
		t.Error("username_hash.Owned = true, want false")
	}
	if len(u.Ptrs) != 0 {
		t.Errorf("username_hash.Ptrs = %v, want empty", u.Ptrs)
	}
}

func TestFakeLogTreeHeads(t *testing.T) {
	auditor := NewAuditor(7)
	l := NewFakeLog(auditor)
	l.Append(10)
	if got, want := l.Size(), uint64(10); got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}
	sth, err := l.TreeHead(10, time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("TreeHead(): %v", err)
	}
	if got, want := len(sth.TreeHead.Signatures), 1; got != want {
		t.Fatalf("len(Signatures) = %d, want %d", got, want)
	}
	if !bytes.Equal(sth.TreeHead.Signatures[0].AuditorPublicKey, auditor.Public()) {
		t.Error("signature not attributed to the auditor")
	}
	if _, err := l.TreeHead(11, time.Now()); err == nil {
		t.Error("TreeHead(beyond size): nil error")
	}
	r, err := MonitoredSearchResult(sth)
	if err != nil {
		t.Fatalf("MonitoredSearchResult(): %v", err)
	}
	if !r.AccountData.LastTreeHead.Same(sth) {
		t.Error("MonitoredSearchResult() does not carry the tree head")
	}
}
