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
	"crypto"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockSigner is a mock crypto.Signer.
type MockSigner struct {
	mock.Mock
}

// Sign is a mock
func (m *MockSigner) Sign(rand io.Reader, digest []byte, opts crypto.SignerOpts) (signature []byte, err error) {
	args := m.Called(rand, digest, opts)
	sig, _ := args.Get(0).([]byte)
	return sig, args.Error(1)
}

// Public is a mock
func (m *MockSigner) Public() crypto.PublicKey {
	args := m.Called()
	return args.Get(0).(crypto.PublicKey)
}
