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

//go:build !nobridgetesting

// Package testfns registers test-only functions with the bridge so that
// host-language test suites can obtain canned values. Build with the
// nobridgetesting tag to leave them out.
package testfns

import (
	"github.com/kt-dev/keytrans/bridge"
	"github.com/kt-dev/keytrans/testonly"
)

// ChatSearchResultName is the exported name of the fixture search result.
const ChatSearchResultName = "TESTING_ChatSearchResult"

func init() {
	Register(bridge.Default)
}

// Register adds the test functions to r. The fixture search result is
// exposed to JNI only.
func Register(r *bridge.Registry) {
	r.MustRegister(ChatSearchResultName, chatSearchResult, bridge.JNI)
}

func chatSearchResult() (interface{}, error) {
	return testonly.NewChatSearchResult(testonly.TestACIIdentityKeyBytes)
}
