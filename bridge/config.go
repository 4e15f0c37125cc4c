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

package bridge

import (
	"os"

	"github.com/kt-dev/keytrans/errors"
	"gopkg.in/yaml.v2"
)

// Config selects the bindings a build exposes.
//
//	bindings: [jni]
type Config struct {
	Bindings []string `yaml:"bindings"`
}

// ParseConfig parses a YAML bridge configuration.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return nil, errors.Errorf(errors.InvalidArgument, "bridge: parsing config: %v", err)
	}
	if _, err := c.EnabledBindings(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadConfig reads and parses the YAML configuration file at path.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// EnabledBindings resolves the configured binding names. An empty list
// enables every binding.
func (c *Config) EnabledBindings() ([]Binding, error) {
	if len(c.Bindings) == 0 {
		return AllBindings, nil
	}
	out := make([]Binding, 0, len(c.Bindings))
	for _, n := range c.Bindings {
		b, err := ParseBinding(n)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Apply enables the configured bindings on r.
func (c *Config) Apply(r *Registry) error {
	bindings, err := c.EnabledBindings()
	if err != nil {
		return err
	}
	r.Enable(bindings...)
	return nil
}
