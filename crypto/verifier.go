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

package crypto

import (
	"bytes"
	"crypto/ed25519"

	"github.com/kt-dev/keytrans/errors"
	"github.com/kt-dev/keytrans/types"
)

var errVerify = errors.New(errors.PermissionDenied, "signature verification failed")

// Verify cryptographically verifies the output of Signer.Sign.
func Verify(pub ed25519.PublicKey, data, sig []byte) error {
	if sig == nil {
		return errors.New(errors.InvalidArgument, "signature is nil")
	}
	if len(pub) != ed25519.PublicKeySize {
		return errors.Errorf(errors.InvalidArgument, "auditor key is %d bytes, want %d", len(pub), ed25519.PublicKeySize)
	}
	if !ed25519.Verify(pub, data, sig) {
		return errVerify
	}
	return nil
}

// VerifyTreeHeadSignature checks that sig is a signature by pub over sth.
func VerifyTreeHeadSignature(pub ed25519.PublicKey, sth *types.StoredTreeHead, sig types.Signature) error {
	if !bytes.Equal(sig.AuditorPublicKey, pub) {
		return errors.Errorf(errors.InvalidArgument, "signature is from auditor %x, want %x", sig.AuditorPublicKey, []byte(pub))
	}
	payload, err := sth.SignedPayload()
	if err != nil {
		return err
	}
	return Verify(pub, payload, sig.Signature)
}

// FindAuditorSignature returns the first signature in sth that verifies under
// one of auditors, along with the index of that auditor.
func FindAuditorSignature(auditors []ed25519.PublicKey, sth *types.StoredTreeHead) (int, error) {
	if sth == nil || sth.TreeHead == nil {
		return -1, errors.New(errors.InvalidArgument, "no tree head")
	}
	if _, err := sth.SignedPayload(); err != nil {
		return -1, err
	}
	for _, sig := range sth.TreeHead.Signatures {
		if !sig.Present() {
			continue
		}
		for i, pub := range auditors {
			if VerifyTreeHeadSignature(pub, sth, sig) == nil {
				return i, nil
			}
		}
	}
	return -1, errors.Errorf(errors.PermissionDenied, "none of %d signatures verify under a trusted auditor", len(sth.TreeHead.Signatures))
}
