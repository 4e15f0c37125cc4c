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

// Package client verifies the results of key transparency searches and keeps
// track of the monitoring state they carry.
package client

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/kt-dev/keytrans/crypto"
	"github.com/kt-dev/keytrans/errors"
	"github.com/kt-dev/keytrans/monitoring"
	"github.com/kt-dev/keytrans/types"
	"github.com/kt-dev/keytrans/util/clock"
	"github.com/transparency-dev/merkle"
	"github.com/transparency-dev/merkle/proof"
	"github.com/transparency-dev/merkle/rfc6962"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

const (
	// DefaultMaxTreeHeadAge bounds how old a tree head may be before a
	// search result is no longer trusted.
	DefaultMaxTreeHeadAge = 24 * time.Hour
	// DefaultMaxClockSkew bounds how far in the future a tree head may be.
	DefaultMaxClockSkew = 10 * time.Minute
)

type verifierMetrics struct {
	resultsVerified  monitoring.Counter
	consistencyCheck monitoring.Counter
	verifiedTreeSize monitoring.Gauge
	batchLatency     monitoring.Histogram
}

func newVerifierMetrics(mf monitoring.MetricFactory) *verifierMetrics {
	return &verifierMetrics{
		resultsVerified:  mf.NewCounter("search_results_verified", "Number of search results checked, by outcome", "result"),
		consistencyCheck: mf.NewCounter("tree_head_consistency_checks", "Number of tree head consistency checks, by outcome", "result"),
		verifiedTreeSize: mf.NewGauge("verified_tree_size", "Largest tree size seen in a verified search result"),
		batchLatency:     mf.NewHistogram("verify_batch_seconds", "Time taken to verify a batch of search results, by outcome", "result"),
	}
}

// SearchVerifier checks that search results are backed by an auditor-signed,
// fresh tree head and that their monitoring data is internally consistent.
type SearchVerifier struct {
	auditors []ed25519.PublicKey
	hasher   merkle.LogHasher
	ts       clock.TimeSource
	maxAge   time.Duration
	maxSkew  time.Duration
	metrics  *verifierMetrics

	mu      sync.Mutex
	maxSeen uint64
}

// Option configures a SearchVerifier.
type Option func(*SearchVerifier)

// WithTimeSource sets the clock used for freshness checks.
func WithTimeSource(ts clock.TimeSource) Option {
	return func(v *SearchVerifier) { v.ts = ts }
}

// WithMaxTreeHeadAge sets the maximum accepted tree head age. Zero disables
// the check.
func WithMaxTreeHeadAge(d time.Duration) Option {
	return func(v *SearchVerifier) { v.maxAge = d }
}

// WithMaxClockSkew sets how far in the future a tree head may be stamped.
func WithMaxClockSkew(d time.Duration) Option {
	return func(v *SearchVerifier) { v.maxSkew = d }
}

// NewSearchVerifier returns a verifier trusting tree heads signed by any of
// auditors. Its metrics are created from mf, which may be nil, in which case
// they are kept in memory only.
func NewSearchVerifier(auditors []ed25519.PublicKey, mf monitoring.MetricFactory, opts ...Option) (*SearchVerifier, error) {
	if len(auditors) == 0 {
		return nil, errors.New(errors.InvalidArgument, "client: no auditor keys")
	}
	for i, a := range auditors {
		if len(a) != ed25519.PublicKeySize {
			return nil, errors.Errorf(errors.InvalidArgument, "client: auditor key %d is %d bytes, want %d", i, len(a), ed25519.PublicKeySize)
		}
	}
	if mf == nil {
		mf = monitoring.InertMetricFactory{}
	}

	v := &SearchVerifier{
		auditors: auditors,
		hasher:   rfc6962.DefaultHasher,
		ts:       clock.System,
		maxAge:   DefaultMaxTreeHeadAge,
		maxSkew:  DefaultMaxClockSkew,
		metrics:  newVerifierMetrics(mf),
	}
	for _, o := range opts {
		o(v)
	}
	return v, nil
}

// VerifyTreeHead checks that sth carries a valid auditor signature and is
// neither stale nor from the future.
func (v *SearchVerifier) VerifyTreeHead(sth *types.StoredTreeHead) error {
	if sth == nil || sth.TreeHead == nil {
		return errors.New(errors.InvalidArgument, "missing tree head")
	}
	if _, err := crypto.FindAuditorSignature(v.auditors, sth); err != nil {
		return err
	}
	now := v.ts.Now()
	ts := sth.TreeHead.TimestampTime()
	if ts.After(now.Add(v.maxSkew)) {
		return errors.Errorf(errors.FailedPrecondition, "tree head timestamp %v is in the future (now %v)", ts, now)
	}
	if v.maxAge > 0 && now.Sub(ts) > v.maxAge {
		return errors.Errorf(errors.FailedPrecondition, "tree head is %v old, max %v", now.Sub(ts), v.maxAge)
	}
	return nil
}

// VerifySearchResult applies every check a client must make before trusting r.
func (v *SearchVerifier) VerifySearchResult(r *types.SearchResult) error {
	err := v.verifySearchResult(r)
	v.metrics.resultsVerified.Inc(errors.ErrorCode(err).String())
	if err != nil {
		klog.Warningf("search result rejected: %v", err)
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if size := r.AccountData.LastTreeHead.TreeSize(); size > v.maxSeen {
		v.maxSeen = size
		v.metrics.verifiedTreeSize.Set(float64(size))
	}
	return nil
}

func (v *SearchVerifier) verifySearchResult(r *types.SearchResult) error {
	if r == nil {
		return errors.New(errors.InvalidArgument, "nil search result")
	}
	if r.ACIIdentityKey.IsZero() {
		return errors.New(errors.InvalidArgument, "search result has no identity key")
	}
	if !r.AccountData.Monitored() {
		return errors.New(errors.FailedPrecondition, "search result has no ACI monitoring data")
	}
	if err := v.VerifyTreeHead(r.AccountData.LastTreeHead); err != nil {
		return err
	}
	if err := r.AccountData.CheckPositions(); err != nil {
		return err
	}
	return r.CheckAliases()
}

// VerifyConsistency checks that next is an append-only extension of trusted.
// A nil or empty trusted tree head is trusted implicitly.
func (v *SearchVerifier) VerifyConsistency(trusted, next *types.StoredTreeHead, consistency [][]byte) error {
	err := v.verifyConsistency(trusted, next, consistency)
	v.metrics.consistencyCheck.Inc(errors.ErrorCode(err).String())
	return err
}

func (v *SearchVerifier) verifyConsistency(trusted, next *types.StoredTreeHead, consistency [][]byte) error {
	if next == nil || next.TreeHead == nil {
		return errors.New(errors.InvalidArgument, "missing tree head")
	}
	if trusted.TreeSize() == 0 {
		return nil
	}
	from, to := trusted.TreeSize(), next.TreeSize()
	if to < from {
		return errors.Errorf(errors.FailedPrecondition, "tree size went backwards: %d -> %d", from, to)
	}
	if err := proof.VerifyConsistency(v.hasher, from, to, consistency, trusted.Root, next.Root); err != nil {
		return errors.Errorf(errors.PermissionDenied, "tree heads %d -> %d are not consistent: %v", from, to, err)
	}
	return nil
}

// VerifyBatch verifies results concurrently and returns the first failure.
func (v *SearchVerifier) VerifyBatch(ctx context.Context, results []*types.SearchResult) error {
	start := v.ts.Now()
	err := v.verifyBatch(ctx, results)
	v.metrics.batchLatency.Observe(clock.Since(v.ts, start).Seconds(), errors.ErrorCode(err).String())
	return err
}

func (v *SearchVerifier) verifyBatch(ctx context.Context, results []*types.SearchResult) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range results {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := v.VerifySearchResult(r); err != nil {
				return fmt.Errorf("result %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}
