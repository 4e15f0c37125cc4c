// Copyright 2017 Google LLC. All Rights Reserved.
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

package clock

import (
	"testing"
	"time"
)

func TestFakeTimeSource(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(base)
	if got := f.Now(); !got.Equal(base) {
		t.Errorf("Now(): %v, want %v", got, base)
	}
	f.Advance(time.Hour)
	if got, want := f.Now(), base.Add(time.Hour); !got.Equal(want) {
		t.Errorf("Now() after Advance: %v, want %v", got, want)
	}
	if got, want := Since(f, base), time.Hour; got != want {
		t.Errorf("Since(): %v, want %v", got, want)
	}
	f.Set(base)
	if got := f.Now(); !got.Equal(base) {
		t.Errorf("Now() after Set: %v, want %v", got, base)
	}
}

func TestSystemTimeSource(t *testing.T) {
	before := time.Now()
	got := System.Now()
	if got.Before(before) {
		t.Errorf("System.Now(): %v, before %v", got, before)
	}
}
