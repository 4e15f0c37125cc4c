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
	"math"
	"sort"

	"github.com/kt-dev/keytrans"
	"github.com/kt-dev/keytrans/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// The binary forms below follow the protobuf layout of the client's
// monitoring store, so that stored account data can be exchanged with other
// clients of the same log.

// MarshalBinary encodes d in protobuf wire format.
func (d *StoredAccountData) MarshalBinary() ([]byte, error) {
	if d.LastTreeHead != nil {
		if err := d.LastTreeHead.checkRoot(); err != nil {
			return nil, err
		}
	}
	var b []byte
	b = appendMessage(b, 1, d.ACI, appendMonitoringData)
	b = appendMessage(b, 2, d.E164, appendMonitoringData)
	b = appendMessage(b, 3, d.UsernameHash, appendMonitoringData)
	b = appendMessage(b, 4, d.LastTreeHead, appendStoredTreeHead)
	return b, nil
}

// UnmarshalBinary decodes the output of MarshalBinary into d.
func (d *StoredAccountData) UnmarshalBinary(b []byte) error {
	if d == nil {
		return errors.New(errors.InvalidArgument, "nil StoredAccountData")
	}
	var out StoredAccountData
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		var err error
		switch num {
		case 1:
			out.ACI, err = parseMonitoringData(v)
		case 2:
			out.E164, err = parseMonitoringData(v)
		case 3:
			out.UsernameHash, err = parseMonitoringData(v)
		case 4:
			out.LastTreeHead, err = parseStoredTreeHead(v)
		}
		return err
	})
	if err != nil {
		return err
	}
	if err := out.CheckPositions(); err != nil {
		return err
	}
	*d = out
	return nil
}

// MarshalBinary encodes s in protobuf wire format.
func (s *StoredTreeHead) MarshalBinary() ([]byte, error) {
	if err := s.checkRoot(); err != nil {
		return nil, err
	}
	return appendStoredTreeHead(nil, s), nil
}

// checkRoot applies the root length rule enforced when decoding.
func (s *StoredTreeHead) checkRoot() error {
	if n := len(s.Root); n != 0 && n != keytrans.HashSize {
		return errors.Errorf(errors.InvalidArgument, "tree root is %d bytes, want %d", n, keytrans.HashSize)
	}
	return nil
}

// UnmarshalBinary decodes the output of MarshalBinary into s.
func (s *StoredTreeHead) UnmarshalBinary(b []byte) error {
	if s == nil {
		return errors.New(errors.InvalidArgument, "nil StoredTreeHead")
	}
	parsed, err := parseStoredTreeHead(b)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

func appendMessage[T any](b []byte, num protowire.Number, m *T, enc func([]byte, *T) []byte) []byte {
	if m == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, enc(nil, m))
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSignature(b []byte, s *Signature) []byte {
	b = appendBytesField(b, 1, s.AuditorPublicKey)
	return appendBytesField(b, 2, s.Signature)
}

func appendTreeHead(b []byte, th *TreeHead) []byte {
	b = appendVarintField(b, 1, th.TreeSize)
	b = appendVarintField(b, 2, uint64(th.Timestamp))
	for i := range th.Signatures {
		// Repeated message fields are emitted even when empty.
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, appendSignature(nil, &th.Signatures[i]))
	}
	return b
}

func appendStoredTreeHead(b []byte, s *StoredTreeHead) []byte {
	b = appendMessage(b, 1, s.TreeHead, appendTreeHead)
	return appendBytesField(b, 2, s.Root)
}

func appendMonitoringData(b []byte, m *StoredMonitoringData) []byte {
	b = appendBytesField(b, 1, m.Index[:])
	b = appendVarintField(b, 2, m.Pos)
	keys := make([]uint64, 0, len(m.Ptrs))
	for k := range m.Ptrs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		// Map entries always carry both key and value.
		var entry []byte
		entry = protowire.AppendTag(entry, 1, protowire.VarintType)
		entry = protowire.AppendVarint(entry, k)
		entry = protowire.AppendTag(entry, 2, protowire.VarintType)
		entry = protowire.AppendVarint(entry, uint64(m.Ptrs[k]))
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	if m.Owned {
		b = appendVarintField(b, 4, 1)
	}
	return b
}

// consumeFields walks the top level fields of a protobuf message. Varint
// fields are passed in x, length-delimited fields in v. Other wire types are
// skipped.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return errors.Errorf(errors.InvalidArgument, "malformed tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			x, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return errors.Errorf(errors.InvalidArgument, "field %d: %v", num, protowire.ParseError(n))
			}
			if err := fn(num, typ, nil, x); err != nil {
				return err
			}
			b = b[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return errors.Errorf(errors.InvalidArgument, "field %d: %v", num, protowire.ParseError(n))
			}
			if err := fn(num, typ, v, 0); err != nil {
				return err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return errors.Errorf(errors.InvalidArgument, "field %d: %v", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}

func parseSignature(b []byte) (Signature, error) {
	var s Signature
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case 1:
			s.AuditorPublicKey = append([]byte(nil), v...)
		case 2:
			s.Signature = append([]byte(nil), v...)
		}
		return nil
	})
	return s, err
}

func parseTreeHead(b []byte) (*TreeHead, error) {
	th := &TreeHead{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch {
		case num == 1 && typ == protowire.VarintType:
			th.TreeSize = x
		case num == 2 && typ == protowire.VarintType:
			th.Timestamp = int64(x)
		case num == 3 && typ == protowire.BytesType:
			sig, err := parseSignature(v)
			if err != nil {
				return err
			}
			th.Signatures = append(th.Signatures, sig)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return th, nil
}

func parseStoredTreeHead(b []byte) (*StoredTreeHead, error) {
	s := &StoredTreeHead{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case 1:
			th, err := parseTreeHead(v)
			if err != nil {
				return err
			}
			s.TreeHead = th
		case 2:
			if len(v) != keytrans.HashSize {
				return errors.Errorf(errors.InvalidArgument, "tree root is %d bytes, want %d", len(v), keytrans.HashSize)
			}
			s.Root = append(keytrans.Hash(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func parseMonitoringData(b []byte) (*StoredMonitoringData, error) {
	m := &StoredMonitoringData{}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte, x uint64) error {
		switch {
		case num == 1 && typ == protowire.BytesType:
			l, ok := keytrans.LabelFromBytes(v)
			if !ok {
				return errors.Errorf(errors.InvalidArgument, "index is %d bytes, want %d", len(v), keytrans.HashSize)
			}
			m.Index = l
		case num == 2 && typ == protowire.VarintType:
			m.Pos = x
		case num == 3 && typ == protowire.BytesType:
			var k, val uint64
			err := consumeFields(v, func(num protowire.Number, typ protowire.Type, _ []byte, x uint64) error {
				if typ != protowire.VarintType {
					return nil
				}
				switch num {
				case 1:
					k = x
				case 2:
					val = x
				}
				return nil
			})
			if err != nil {
				return err
			}
			if val > math.MaxUint32 {
				return errors.Errorf(errors.InvalidArgument, "ptrs[%d] = %d overflows uint32", k, val)
			}
			if m.Ptrs == nil {
				m.Ptrs = make(map[uint64]uint32)
			}
			m.Ptrs[k] = uint32(val)
		case num == 4 && typ == protowire.VarintType:
			m.Owned = x != 0
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
