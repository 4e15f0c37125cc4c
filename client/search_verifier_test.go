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
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/kt-dev/keytrans/crypto/identity"
	"github.com/kt-dev/keytrans/errors"
	kpm "github.com/kt-dev/keytrans/monitoring/prometheus"
	"github.com/kt-dev/keytrans/testonly"
	"github.com/kt-dev/keytrans/types"
	"github.com/kt-dev/keytrans/util/clock"
	"github.com/prometheus/client_golang/prometheus"
)

var fakeTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	log      *testonly.FakeLog
	clock    *clock.FakeTimeSource
	verifier *SearchVerifier
}

func newTestEnv(t *testing.T, leaves int) *testEnv {
	t.Helper()
	auditor := testonly.NewAuditor(1)
	l := testonly.NewFakeLog(auditor)
	l.Append(leaves)
	fc := clock.NewFake(fakeTime)
	v, err := NewSearchVerifier([]ed25519.PublicKey{testonly.NewAuditor(9).Public(), auditor.Public()}, nil, WithTimeSource(fc))
	if err != nil {
		t.Fatalf("NewSearchVerifier(): %v", err)
	}
	return &testEnv{log: l, clock: fc, verifier: v}
}

func (e *testEnv) treeHead(t *testing.T, size uint64) *types.StoredTreeHead {
	t.Helper()
	sth, err := e.log.TreeHead(size, e.clock.Now())
	if err != nil {
		t.Fatalf("TreeHead(%d): %v", size, err)
	}
	return sth
}

func (e *testEnv) result(t *testing.T, size uint64) *types.SearchResult {
	t.Helper()
	r, err := testonly.MonitoredSearchResult(e.treeHead(t, size))
	if err != nil {
		t.Fatalf("MonitoredSearchResult(): %v", err)
	}
	return r
}

func TestNewSearchVerifier(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		auditors []ed25519.PublicKey
		wantCode errors.Code
	}{
		{desc: "one auditor", auditors: []ed25519.PublicKey{testonly.NewAuditor(1).Public()}, wantCode: errors.OK},
		{desc: "no auditors", wantCode: errors.InvalidArgument},
		{desc: "short key", auditors: []ed25519.PublicKey{make([]byte, 3)}, wantCode: errors.InvalidArgument},
	} {
		_, err := NewSearchVerifier(tc.auditors, nil)
		if got := errors.ErrorCode(err); got != tc.wantCode {
			t.Errorf("%s: NewSearchVerifier(): %v, want %v", tc.desc, err, tc.wantCode)
		}
	}
}

func TestVerifySearchResult(t *testing.T) {
	env := newTestEnv(t, 10)
	other := types.MustParseACI("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	for _, tc := range []struct {
		desc     string
		result   func() *types.SearchResult
		advance  time.Duration
		wantCode errors.Code
	}{
		{
			desc:     "valid",
			result:   func() *types.SearchResult { return env.result(t, 10) },
			wantCode: errors.OK,
		},
		{
			desc:     "fixture signature is not from an auditor",
			result:   testonly.ChatSearchResult,
			wantCode: errors.PermissionDenied,
		},
		{
			desc: "position beyond tree size",
			result: func() *types.SearchResult {
				r := env.result(t, 10)
				r.AccountData.E164.Pos = 11
				return r
			},
			wantCode: errors.OutOfRange,
		},
		{
			desc: "split alias binding",
			result: func() *types.SearchResult {
				r := env.result(t, 10)
				r.ACIForUsernameHash = &other
				return r
			},
			wantCode: errors.FailedPrecondition,
		},
		{
			desc: "tampered root",
			result: func() *types.SearchResult {
				r := env.result(t, 10)
				r.AccountData.LastTreeHead.Root[0] ^= 0xff
				return r
			},
			wantCode: errors.PermissionDenied,
		},
		{
			desc: "tampered size",
			result: func() *types.SearchResult {
				r := env.result(t, 10)
				r.AccountData.LastTreeHead.TreeHead.TreeSize = 1000
				return r
			},
			wantCode: errors.PermissionDenied,
		},
		{
			desc:     "stale tree head",
			result:   func() *types.SearchResult { return env.result(t, 10) },
			advance:  DefaultMaxTreeHeadAge + time.Second,
			wantCode: errors.FailedPrecondition,
		},
		{
			desc:     "tree head from the future",
			result:   func() *types.SearchResult { return env.result(t, 10) },
			advance:  -DefaultMaxClockSkew - time.Second,
			wantCode: errors.FailedPrecondition,
		},
		{
			desc: "no aci monitoring data",
			result: func() *types.SearchResult {
				r := env.result(t, 10)
				r.AccountData.ACI = nil
				return r
			},
			wantCode: errors.FailedPrecondition,
		},
		{
			desc: "no identity key",
			result: func() *types.SearchResult {
				r := env.result(t, 10)
				r.ACIIdentityKey = identity.IdentityKey{}
				return r
			},
			wantCode: errors.InvalidArgument,
		},
		{
			desc: "no tree head",
			result: func() *types.SearchResult {
				r := env.result(t, 10)
				r.AccountData.LastTreeHead = nil
				return r
			},
			wantCode: errors.InvalidArgument,
		},
		{
			desc:     "nil",
			result:   func() *types.SearchResult { return nil },
			wantCode: errors.InvalidArgument,
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			env.clock.Set(fakeTime)
			r := tc.result()
			env.clock.Advance(tc.advance)
			err := env.verifier.VerifySearchResult(r)
			if got := errors.ErrorCode(err); got != tc.wantCode {
				t.Errorf("VerifySearchResult(): %v, want %v", err, tc.wantCode)
			}
		})
	}
}

func TestVerifySearchResultMetrics(t *testing.T) {
	env := newTestEnv(t, 3)
	m := env.verifier.metrics
	before := m.resultsVerified.Value(errors.OK.String())
	if err := env.verifier.VerifySearchResult(env.result(t, 3)); err != nil {
		t.Fatalf("VerifySearchResult(): %v", err)
	}
	if got, want := m.resultsVerified.Value(errors.OK.String()), before+1; got != want {
		t.Errorf("resultsVerified[OK] = %v, want %v", got, want)
	}
	if got := m.verifiedTreeSize.Value(); got != 3 {
		t.Errorf("verifiedTreeSize = %v, want 3", got)
	}
}

func TestVerifierMetricsPerFactory(t *testing.T) {
	env := newTestEnv(t, 4)
	r := env.result(t, 4)
	for i := 0; i < 2; i++ {
		reg := prometheus.NewRegistry()
		v, err := NewSearchVerifier(env.verifier.auditors, kpm.MetricFactory{Registerer: reg}, WithTimeSource(env.clock))
		if err != nil {
			t.Fatalf("NewSearchVerifier(): %v", err)
		}
		if err := v.VerifyBatch(context.Background(), []*types.SearchResult{r, r}); err != nil {
			t.Fatalf("VerifyBatch(): %v", err)
		}
		mfs, err := reg.Gather()
		if err != nil {
			t.Fatalf("Gather(): %v", err)
		}
		got := make(map[string]bool)
		for _, mf := range mfs {
			got[mf.GetName()] = true
		}
		for _, name := range []string{"search_results_verified", "verified_tree_size", "verify_batch_seconds"} {
			if !got[name] {
				t.Errorf("verifier %d: metric %s not registered with its factory", i, name)
			}
		}
		if got := v.metrics.resultsVerified.Value(errors.OK.String()); got != 2 {
			t.Errorf("verifier %d: resultsVerified[OK] = %v, want 2", i, got)
		}
		if n, _ := v.metrics.batchLatency.Info(errors.OK.String()); n != 1 {
			t.Errorf("verifier %d: batchLatency[OK] count = %d, want 1", i, n)
		}
	}
}

func TestVerifyConsistency(t *testing.T) {
	env := newTestEnv(t, 10)
	sth5, sth10 := env.treeHead(t, 5), env.treeHead(t, 10)
	proof, err := env.log.ConsistencyProof(5, 10)
	if err != nil {
		t.Fatalf("ConsistencyProof(): %v", err)
	}

	forked := testonly.NewFakeLog(testonly.NewAuditor(1))
	forked.Append(3)
	forkedHead, err := forked.TreeHead(3, fakeTime)
	if err != nil {
		t.Fatalf("TreeHead(): %v", err)
	}
	fork10 := sth10.Clone()
	fork10.Root = forkedHead.Root

	for _, tc := range []struct {
		desc     string
		trusted  *types.StoredTreeHead
		next     *types.StoredTreeHead
		proof    [][]byte
		wantCode errors.Code
	}{
		{desc: "first tree head", trusted: nil, next: sth5, wantCode: errors.OK},
		{desc: "empty trusted", trusted: &types.StoredTreeHead{TreeHead: &types.TreeHead{}}, next: sth5, wantCode: errors.OK},
		{desc: "valid extension", trusted: sth5, next: sth10, proof: proof, wantCode: errors.OK},
		{desc: "same head", trusted: sth10, next: sth10.Clone(), wantCode: errors.OK},
		{desc: "regression", trusted: sth10, next: sth5, wantCode: errors.FailedPrecondition},
		{desc: "missing proof", trusted: sth5, next: sth10, wantCode: errors.PermissionDenied},
		{desc: "fork at same size", trusted: sth10, next: fork10, wantCode: errors.PermissionDenied},
		{desc: "proof for fork", trusted: sth5, next: fork10, proof: proof, wantCode: errors.PermissionDenied},
		{desc: "nil next", trusted: sth5, next: nil, wantCode: errors.InvalidArgument},
	} {
		err := env.verifier.VerifyConsistency(tc.trusted, tc.next, tc.proof)
		if got := errors.ErrorCode(err); got != tc.wantCode {
			t.Errorf("%s: VerifyConsistency(): %v, want %v", tc.desc, err, tc.wantCode)
		}
	}
}

func TestVerifyBatch(t *testing.T) {
	env := newTestEnv(t, 8)
	var good []*types.SearchResult
	for size := uint64(2); size <= 8; size++ {
		good = append(good, env.result(t, size))
	}
	ctx := context.Background()
	if err := env.verifier.VerifyBatch(ctx, good); err != nil {
		t.Errorf("VerifyBatch(good): %v", err)
	}

	bad := append(append([]*types.SearchResult{}, good...), testonly.ChatSearchResult())
	err := env.verifier.VerifyBatch(ctx, bad)
	if got, want := errors.ErrorCode(err), errors.PermissionDenied; got != want {
		t.Errorf("VerifyBatch(bad): %v, want %v", err, want)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := env.verifier.VerifyBatch(canceled, good); err == nil {
		t.Error("VerifyBatch(canceled): nil error")
	}
}
