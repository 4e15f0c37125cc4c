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

// Package identity handles the long-term identity keys bound to accounts in
// the key transparency log.
package identity

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/kt-dev/keytrans/errors"
	"golang.org/x/crypto/curve25519"
)

const (
	// DJBType is the type byte prefixed to serialized Curve25519 public keys.
	DJBType = 0x05
	// SerializedSize is the length of a serialized identity key.
	SerializedSize = 1 + curve25519.PointSize
)

// ErrInvalidKeyEncoding is returned when bytes do not parse as an identity key.
var ErrInvalidKeyEncoding = errors.New(errors.InvalidArgument, "invalid key encoding")

// IdentityKey is the public identity key of an account.
type IdentityKey struct {
	key [curve25519.PointSize]byte
}

// Decode parses a serialized identity key: the DJB type byte followed by a
// 32 byte Curve25519 public key.
func Decode(b []byte) (IdentityKey, error) {
	var k IdentityKey
	switch {
	case len(b) == 0:
		return k, errors.Errorf(errors.InvalidArgument, "%w: no key type identifier", ErrInvalidKeyEncoding)
	case b[0] != DJBType:
		return k, errors.Errorf(errors.InvalidArgument, "%w: bad key type <0x%02x>", ErrInvalidKeyEncoding, b[0])
	case len(b) != SerializedSize:
		return k, errors.Errorf(errors.InvalidArgument, "%w: got %d bytes, want %d", ErrInvalidKeyEncoding, len(b), SerializedSize)
	}
	copy(k.key[:], b[1:])
	return k, nil
}

// MustDecode is like Decode but panics on malformed input. For use with
// compile-time constants only.
func MustDecode(b []byte) IdentityKey {
	k, err := Decode(b)
	if err != nil {
		panic(fmt.Sprintf("identity.MustDecode(%x): %v", b, err))
	}
	return k
}

// Serialize returns the canonical 33 byte encoding of k.
func (k IdentityKey) Serialize() []byte {
	out := make([]byte, 0, SerializedSize)
	out = append(out, DJBType)
	return append(out, k.key[:]...)
}

// PublicKey returns the raw Curve25519 public key.
func (k IdentityKey) PublicKey() []byte {
	return append([]byte(nil), k.key[:]...)
}

// IsZero reports whether k is the zero value, i.e. was never decoded.
func (k IdentityKey) IsZero() bool {
	return k == IdentityKey{}
}

// Equal compares two keys in constant time.
func (k IdentityKey) Equal(o IdentityKey) bool {
	return subtle.ConstantTimeCompare(k.key[:], o.key[:]) == 1
}

func (k IdentityKey) String() string {
	return base64.StdEncoding.EncodeToString(k.Serialize())
}

// MarshalText encodes k as base64 of its serialized form.
func (k IdentityKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *IdentityKey) UnmarshalText(text []byte) error {
	b, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return errors.Errorf(errors.InvalidArgument, "%w: %v", ErrInvalidKeyEncoding, err)
	}
	d, err := Decode(b)
	if err != nil {
		return err
	}
	*k = d
	return nil
}

// KeyPair is an identity key together with its Curve25519 private scalar.
type KeyPair struct {
	Public  IdentityKey
	private []byte
}

// GenerateKeyPair creates a new identity key pair using randomness from r.
func GenerateKeyPair(r io.Reader) (*KeyPair, error) {
	priv := make([]byte, curve25519.ScalarSize)
	if _, err := io.ReadFull(r, priv); err != nil {
		return nil, fmt.Errorf("identity: reading randomness: %v", err)
	}
	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("identity: deriving public key: %v", err)
	}
	kp := &KeyPair{private: priv}
	copy(kp.Public.key[:], pub)
	return kp, nil
}

// Agree computes the X25519 shared secret between kp and a peer's identity key.
func (kp *KeyPair) Agree(peer IdentityKey) ([]byte, error) {
	secret, err := curve25519.X25519(kp.private, peer.key[:])
	if err != nil {
		return nil, errors.Errorf(errors.InvalidArgument, "identity: key agreement: %v", err)
	}
	return secret, nil
}
