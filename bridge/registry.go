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

// Package bridge exposes library operations to host-language bindings
// through an explicit registry of named functions.
package bridge

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kt-dev/keytrans/errors"
	"k8s.io/klog/v2"
)

// Binding identifies a host-language binding layer.
type Binding int

// Supported bindings.
const (
	JNI Binding = iota
	FFI
	Node
)

var bindingNames = map[Binding]string{
	JNI:  "jni",
	FFI:  "ffi",
	Node: "node",
}

// AllBindings lists every supported binding.
var AllBindings = []Binding{JNI, FFI, Node}

func (b Binding) String() string {
	if n, ok := bindingNames[b]; ok {
		return n
	}
	return fmt.Sprintf("Binding(%d)", int(b))
}

// ParseBinding returns the binding named s, case-insensitively.
func ParseBinding(s string) (Binding, error) {
	for b, n := range bindingNames {
		if strings.EqualFold(n, s) {
			return b, nil
		}
	}
	return 0, errors.Errorf(errors.InvalidArgument, "unknown binding %q", s)
}

// Func is an exported operation. It takes no arguments; values it needs are
// captured when it is registered.
type Func func() (interface{}, error)

type entry struct {
	fn       Func
	bindings map[Binding]bool
}

// Registry maps operation names to functions and the bindings they are
// exposed to.
type Registry struct {
	mu      sync.RWMutex
	fns     map[string]entry
	enabled map[Binding]bool
}

// NewRegistry returns an empty registry with every binding enabled.
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]entry)}
	r.Enable(AllBindings...)
	return r
}

// Default is the registry that packages register into from init functions.
var Default = NewRegistry()

// Enable restricts the registry to the given bindings. Lookups through any
// other binding fail.
func (r *Registry) Enable(bindings ...Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = make(map[Binding]bool, len(bindings))
	for _, b := range bindings {
		r.enabled[b] = true
	}
}

// Register adds fn under name, exposed to bindings.
func (r *Registry) Register(name string, fn Func, bindings ...Binding) error {
	if name == "" || fn == nil {
		return errors.New(errors.InvalidArgument, "bridge: name and function are required")
	}
	if len(bindings) == 0 {
		return errors.Errorf(errors.InvalidArgument, "bridge: %s is not exposed to any binding", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fns[name]; ok {
		return errors.Errorf(errors.AlreadyExists, "bridge: %s already registered", name)
	}
	e := entry{fn: fn, bindings: make(map[Binding]bool, len(bindings))}
	for _, b := range bindings {
		e.bindings[b] = true
	}
	r.fns[name] = e
	klog.V(1).Infof("bridge: registered %s for %v", name, bindings)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn Func, bindings ...Binding) {
	if err := r.Register(name, fn, bindings...); err != nil {
		panic(err)
	}
}

// Lookup returns the function registered as name if it is available
// through binding b.
func (r *Registry) Lookup(b Binding, name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.enabled[b] {
		return nil, errors.Errorf(errors.NotFound, "bridge: binding %v is not enabled", b)
	}
	e, ok := r.fns[name]
	if !ok || !e.bindings[b] {
		return nil, errors.Errorf(errors.NotFound, "bridge: no function %s for binding %v", name, b)
	}
	return e.fn, nil
}

// Call looks up name for binding b and invokes it.
func (r *Registry) Call(b Binding, name string) (interface{}, error) {
	fn, err := r.Lookup(b, name)
	if err != nil {
		return nil, err
	}
	return fn()
}

// Names returns the sorted names of functions available through binding b.
func (r *Registry) Names(b Binding) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.enabled[b] {
		return nil
	}
	var names []string
	for n, e := range r.fns {
		if e.bindings[b] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}
