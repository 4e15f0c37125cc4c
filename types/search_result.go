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

package types

import (
	"time"

	"github.com/kt-dev/keytrans/crypto/identity"
	"github.com/kt-dev/keytrans/errors"
)

// SearchResult is the outcome of looking up an account in the log.
type SearchResult struct {
	ACIIdentityKey     identity.IdentityKey
	ACIForE164         *ACI
	ACIForUsernameHash *ACI
	// Timestamp is when the lookup was performed.
	Timestamp   time.Time
	AccountData StoredAccountData
}

// NewSearchResult decodes identityKey and assembles a SearchResult.
// Decoding failures are returned wrapping identity.ErrInvalidKeyEncoding.
func NewSearchResult(identityKey []byte, aciForE164, aciForUsernameHash *ACI, ts time.Time, data StoredAccountData) (*SearchResult, error) {
	key, err := identity.Decode(identityKey)
	if err != nil {
		return nil, err
	}
	r := &SearchResult{
		ACIIdentityKey:     key,
		ACIForE164:         aciForE164,
		ACIForUsernameHash: aciForUsernameHash,
		Timestamp:          ts,
		AccountData:        data,
	}
	if err := r.CheckAliases(); err != nil {
		return nil, err
	}
	if err := r.AccountData.CheckPositions(); err != nil {
		return nil, err
	}
	return r, nil
}

// CheckAliases returns an error if the E164 and username hash aliases are
// bound to different accounts.
func (r *SearchResult) CheckAliases() error {
	if r.ACIForE164 != nil && r.ACIForUsernameHash != nil && *r.ACIForE164 != *r.ACIForUsernameHash {
		return errors.Errorf(errors.FailedPrecondition, "split alias binding: e164 -> %v, username hash -> %v", r.ACIForE164, r.ACIForUsernameHash)
	}
	return nil
}

// Clone returns a deep copy of r.
func (r *SearchResult) Clone() *SearchResult {
	if r == nil {
		return nil
	}
	c := *r
	if r.ACIForE164 != nil {
		a := *r.ACIForE164
		c.ACIForE164 = &a
	}
	if r.ACIForUsernameHash != nil {
		a := *r.ACIForUsernameHash
		c.ACIForUsernameHash = &a
	}
	c.AccountData = *r.AccountData.Clone()
	return &c
}
