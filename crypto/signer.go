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

// Package crypto provides auditor signing and verification of tree heads.
package crypto

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/kt-dev/keytrans/types"
	"k8s.io/klog/v2"
)

// Signer produces auditor signatures over tree heads.
type Signer struct {
	signer crypto.Signer
	pub    ed25519.PublicKey
}

// NewSigner returns a Signer backed by s, which must hold an Ed25519 key.
func NewSigner(s crypto.Signer) (*Signer, error) {
	pub, ok := s.Public().(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("crypto: auditor key is %T, want ed25519.PublicKey", s.Public())
	}
	return &Signer{signer: s, pub: pub}, nil
}

// Public returns the public key that can verify signatures produced by s.
func (s *Signer) Public() ed25519.PublicKey {
	return s.pub
}

// Sign signs data. Ed25519 hashes internally, so no digest is computed here.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	return s.signer.Sign(rand.Reader, data, crypto.Hash(0))
}

// SignTreeHead returns an auditor Signature over the payload of sth.
func (s *Signer) SignTreeHead(sth *types.StoredTreeHead) (types.Signature, error) {
	payload, err := sth.SignedPayload()
	if err != nil {
		return types.Signature{}, err
	}
	sig, err := s.Sign(payload)
	if err != nil {
		klog.Warningf("%x: signer failed to sign tree head: %v", []byte(s.pub), err)
		return types.Signature{}, err
	}
	return types.Signature{
		AuditorPublicKey: append([]byte(nil), s.pub...),
		Signature:        sig,
	}, nil
}
