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
	"github.com/google/uuid"
	"github.com/kt-dev/keytrans/errors"
)

// ACI is the primary account identifier.
type ACI uuid.UUID

// ParseACI parses the canonical string form of an ACI.
func ParseACI(s string) (ACI, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ACI{}, errors.Errorf(errors.InvalidArgument, "invalid ACI %q: %v", s, err)
	}
	return ACI(u), nil
}

// MustParseACI is like ParseACI but panics on error.
func MustParseACI(s string) ACI {
	return ACI(uuid.MustParse(s))
}

// ACIFromBytes builds an ACI from its 16 byte binary form.
func ACIFromBytes(b []byte) (ACI, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return ACI{}, errors.Errorf(errors.InvalidArgument, "invalid ACI bytes: %v", err)
	}
	return ACI(u), nil
}

func (a ACI) String() string {
	return uuid.UUID(a).String()
}

// Bytes returns the 16 byte binary form of a.
func (a ACI) Bytes() []byte {
	u := uuid.UUID(a)
	return u[:]
}

// MarshalText implements encoding.TextMarshaler.
func (a ACI) MarshalText() ([]byte, error) {
	return uuid.UUID(a).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ACI) UnmarshalText(text []byte) error {
	parsed, err := ParseACI(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
