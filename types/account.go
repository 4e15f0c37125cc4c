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
	"github.com/kt-dev/keytrans"
	"github.com/kt-dev/keytrans/errors"
)

// StoredMonitoringData tracks how far a client has verified one identifier.
type StoredMonitoringData struct {
	// Index is the identifier's label in the log.
	Index keytrans.Label
	// Pos is the last verified log position for Index.
	Pos uint64
	// Ptrs maps auxiliary log positions to their verification state.
	Ptrs map[uint64]uint32
	// Owned is true when the local client started monitoring the identifier.
	Owned bool
}

// Clone returns a deep copy of m.
func (m *StoredMonitoringData) Clone() *StoredMonitoringData {
	if m == nil {
		return nil
	}
	c := *m
	if m.Ptrs != nil {
		c.Ptrs = make(map[uint64]uint32, len(m.Ptrs))
		for k, v := range m.Ptrs {
			c.Ptrs[k] = v
		}
	}
	return &c
}

// StoredAccountData aggregates the monitoring state of an account's
// identifiers with the tree head they were last verified against.
type StoredAccountData struct {
	ACI          *StoredMonitoringData
	E164         *StoredMonitoringData
	UsernameHash *StoredMonitoringData
	LastTreeHead *StoredTreeHead
}

// NewStoredAccountData assembles account data, rejecting any monitoring
// position beyond the size of last.
func NewStoredAccountData(aci, e164, usernameHash *StoredMonitoringData, last *StoredTreeHead) (*StoredAccountData, error) {
	d := &StoredAccountData{
		ACI:          aci,
		E164:         e164,
		UsernameHash: usernameHash,
		LastTreeHead: last,
	}
	if err := d.CheckPositions(); err != nil {
		return nil, err
	}
	return d, nil
}

// Monitored reports whether the primary identifier is being monitored.
func (d *StoredAccountData) Monitored() bool {
	return d != nil && d.ACI != nil
}

// CheckPositions verifies that no present monitoring position exceeds the
// size of the last tree head.
func (d *StoredAccountData) CheckPositions() error {
	if d.LastTreeHead == nil || d.LastTreeHead.TreeHead == nil {
		if d.ACI != nil || d.E164 != nil || d.UsernameHash != nil {
			return errors.New(errors.FailedPrecondition, "monitoring data without a tree head")
		}
		return nil
	}
	size := d.LastTreeHead.TreeHead.TreeSize
	for _, f := range []struct {
		name string
		m    *StoredMonitoringData
	}{
		{"aci", d.ACI},
		{"e164", d.E164},
		{"username_hash", d.UsernameHash},
	} {
		if f.m != nil && f.m.Pos > size {
			return errors.Errorf(errors.OutOfRange, "%s position %d exceeds tree size %d", f.name, f.m.Pos, size)
		}
	}
	return nil
}

// Clone returns a deep copy of d.
func (d *StoredAccountData) Clone() *StoredAccountData {
	if d == nil {
		return nil
	}
	return &StoredAccountData{
		ACI:          d.ACI.Clone(),
		E164:         d.E164.Clone(),
		UsernameHash: d.UsernameHash.Clone(),
		LastTreeHead: d.LastTreeHead.Clone(),
	}
}
