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

// Package keytrans provides common data structures used throughout the
// key transparency client.
package keytrans

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// HashSize is the length in bytes of tree roots and labels.
const HashSize = 32

// Hash represents the cryptographic hash value of some data, such as the
// Merkle root a tree head commits to.
type Hash []byte

func (h Hash) String() string {
	return base64.StdEncoding.EncodeToString(h)
}

// Equal reports whether h and o hold the same bytes.
func (h Hash) Equal(o Hash) bool {
	return bytes.Equal(h, o)
}

// Label is the fixed-size position of an identifier in the log's prefix tree.
// It is stable for the lifetime of the identifier.
type Label [HashSize]byte

// FillLabel returns a Label with every byte set to b.
func FillLabel(b byte) Label {
	var l Label
	for i := range l {
		l[i] = b
	}
	return l
}

// LabelFromBytes copies b into a Label. It returns false if b has the wrong length.
func LabelFromBytes(b []byte) (Label, bool) {
	var l Label
	if len(b) != len(l) {
		return l, false
	}
	copy(l[:], b)
	return l, true
}

func (l Label) String() string {
	return hex.EncodeToString(l[:])
}

// MarshalText encodes l as hex.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a hex-encoded Label.
func (l *Label) UnmarshalText(b []byte) error {
	raw, err := hex.DecodeString(string(b))
	if err != nil {
		return err
	}
	v, ok := LabelFromBytes(raw)
	if !ok {
		return fmt.Errorf("label must be %d bytes, got %d", HashSize, len(raw))
	}
	*l = v
	return nil
}
