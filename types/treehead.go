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

// Package types contains the values a key transparency search produces and
// the state a client keeps while monitoring the log.
package types

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/certificate-transparency-go/tls"
	"github.com/kt-dev/keytrans"
	"github.com/kt-dev/keytrans/errors"
)

// TreeHeadFormatV1 tags the serialization auditors sign.
const TreeHeadFormatV1 = 1

// Signature is an auditor's attestation over a tree head.
type Signature struct {
	AuditorPublicKey []byte
	Signature        []byte
}

// Present reports whether both the key reference and signature are set.
func (s Signature) Present() bool {
	return len(s.AuditorPublicKey) > 0 && len(s.Signature) > 0
}

// TreeHead is a commitment to the size of the log at a point in time.
type TreeHead struct {
	TreeSize uint64
	// Timestamp is in milliseconds since the Unix epoch.
	Timestamp  int64
	Signatures []Signature
}

// TimestampTime returns the tree head timestamp as a time.Time.
func (th *TreeHead) TimestampTime() time.Time {
	return time.UnixMilli(th.Timestamp)
}

// Clone returns a deep copy of th.
func (th *TreeHead) Clone() *TreeHead {
	if th == nil {
		return nil
	}
	c := &TreeHead{TreeSize: th.TreeSize, Timestamp: th.Timestamp}
	if th.Signatures != nil {
		c.Signatures = make([]Signature, len(th.Signatures))
		for i, s := range th.Signatures {
			c.Signatures[i] = Signature{
				AuditorPublicKey: append([]byte(nil), s.AuditorPublicKey...),
				Signature:        append([]byte(nil), s.Signature...),
			}
		}
	}
	return c
}

// StoredTreeHead pairs a TreeHead with the Merkle root it commits to.
type StoredTreeHead struct {
	TreeHead *TreeHead
	Root     keytrans.Hash
}

// NewStoredTreeHead checks that root is a full-length digest and returns the
// pair. th may be nil for a root that has not been signed yet.
func NewStoredTreeHead(th *TreeHead, root []byte) (*StoredTreeHead, error) {
	if got, want := len(root), keytrans.HashSize; got != want {
		return nil, errors.Errorf(errors.InvalidArgument, "tree root is %d bytes, want %d", got, want)
	}
	return &StoredTreeHead{TreeHead: th, Root: root}, nil
}

// TreeSize returns the size of the tree head, or zero if there is none.
func (s *StoredTreeHead) TreeSize() uint64 {
	if s == nil || s.TreeHead == nil {
		return 0
	}
	return s.TreeHead.TreeSize
}

// Same reports whether s and o commit to the same tree state.
func (s *StoredTreeHead) Same(o *StoredTreeHead) bool {
	if s == nil || o == nil || s.TreeHead == nil || o.TreeHead == nil {
		return false
	}
	return s.TreeHead.TreeSize == o.TreeHead.TreeSize &&
		s.TreeHead.Timestamp == o.TreeHead.Timestamp &&
		bytes.Equal(s.Root, o.Root)
}

// Clone returns a deep copy of s.
func (s *StoredTreeHead) Clone() *StoredTreeHead {
	if s == nil {
		return nil
	}
	return &StoredTreeHead{
		TreeHead: s.TreeHead.Clone(),
		Root:     append(keytrans.Hash(nil), s.Root...),
	}
}

// TreeHeadTBS contains the fields of a tree head covered by auditor signatures.
type TreeHeadTBS struct {
	Version   tls.Enum `tls:"size:2"`
	TreeSize  uint64
	Timestamp uint64
	Root      []byte `tls:"minlen:32,maxlen:32"`
}

// SignedPayload returns the canonical TLS serialization auditors sign for s.
func (s *StoredTreeHead) SignedPayload() ([]byte, error) {
	if s == nil || s.TreeHead == nil {
		return nil, errors.New(errors.InvalidArgument, "no tree head to serialize")
	}
	if got, want := len(s.Root), keytrans.HashSize; got != want {
		return nil, errors.Errorf(errors.InvalidArgument, "tree root is %d bytes, want %d", got, want)
	}
	if s.TreeHead.Timestamp < 0 {
		return nil, errors.Errorf(errors.InvalidArgument, "negative tree head timestamp %d", s.TreeHead.Timestamp)
	}
	b, err := tls.Marshal(TreeHeadTBS{
		Version:   TreeHeadFormatV1,
		TreeSize:  s.TreeHead.TreeSize,
		Timestamp: uint64(s.TreeHead.Timestamp),
		Root:      s.Root,
	})
	if err != nil {
		return nil, errors.Errorf(errors.InvalidArgument, "serializing tree head: %v", err)
	}
	return b, nil
}

// ParseSignedPayload is the inverse of SignedPayload. The returned tree head
// carries no signatures.
func ParseSignedPayload(b []byte) (*StoredTreeHead, error) {
	var tbs TreeHeadTBS
	rest, err := tls.Unmarshal(b, &tbs)
	if err != nil {
		return nil, errors.Errorf(errors.InvalidArgument, "parsing tree head: %v", err)
	}
	if len(rest) > 0 {
		return nil, errors.Errorf(errors.InvalidArgument, "parsing tree head: %d trailing bytes", len(rest))
	}
	if tbs.Version != TreeHeadFormatV1 {
		return nil, errors.Errorf(errors.InvalidArgument, "invalid tree head version: %v, want %v", tbs.Version, TreeHeadFormatV1)
	}
	return &StoredTreeHead{
		TreeHead: &TreeHead{TreeSize: tbs.TreeSize, Timestamp: int64(tbs.Timestamp)},
		Root:     tbs.Root,
	}, nil
}

func (s *StoredTreeHead) String() string {
	if s == nil || s.TreeHead == nil {
		return "<no tree head>"
	}
	return fmt.Sprintf("{size: %d, ts: %d, root: %v}", s.TreeHead.TreeSize, s.TreeHead.Timestamp, s.Root)
}
