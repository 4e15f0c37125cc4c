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

package monitoring

import (
	"fmt"
	"strings"
	"sync"

	"k8s.io/klog/v2"
)

// InertMetricFactory creates metrics that are only held in memory. It is
// the default when no metrics backend is configured, and is used in tests.
type InertMetricFactory struct{}

// NewCounter creates a new inert Counter.
func (InertMetricFactory) NewCounter(name, help string, labelNames ...string) Counter {
	return newInertFloat(name, len(labelNames))
}

// NewGauge creates a new inert Gauge.
func (InertMetricFactory) NewGauge(name, help string, labelNames ...string) Gauge {
	return newInertFloat(name, len(labelNames))
}

// NewHistogram creates a new inert Histogram.
func (InertMetricFactory) NewHistogram(name, help string, labelNames ...string) Histogram {
	return &inertDistribution{
		name:       name,
		labelCount: len(labelNames),
		counts:     make(map[string]uint64),
		sums:       make(map[string]float64),
	}
}

// inertFloat implements both Counter and Gauge.
type inertFloat struct {
	name       string
	labelCount int
	mu         sync.Mutex
	vals       map[string]float64
}

func newInertFloat(name string, labelCount int) *inertFloat {
	return &inertFloat{name: name, labelCount: labelCount, vals: make(map[string]float64)}
}

func (m *inertFloat) Inc(labelVals ...string) {
	m.Add(1.0, labelVals...)
}

func (m *inertFloat) Add(val float64, labelVals ...string) {
	m.update(labelVals, func(old float64) float64 { return old + val })
}

func (m *inertFloat) Set(val float64, labelVals ...string) {
	m.update(labelVals, func(float64) float64 { return val })
}

func (m *inertFloat) update(labelVals []string, f func(float64) float64) {
	key, err := keyForLabels(labelVals, m.labelCount)
	if err != nil {
		klog.Errorf("%s: %v", m.name, err)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = f(m.vals[key])
}

func (m *inertFloat) Value(labelVals ...string) float64 {
	key, err := keyForLabels(labelVals, m.labelCount)
	if err != nil {
		klog.Errorf("%s: %v", m.name, err)
		return 0.0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vals[key]
}

type inertDistribution struct {
	name       string
	labelCount int
	mu         sync.Mutex
	counts     map[string]uint64
	sums       map[string]float64
}

func (m *inertDistribution) Observe(val float64, labelVals ...string) {
	key, err := keyForLabels(labelVals, m.labelCount)
	if err != nil {
		klog.Errorf("%s: %v", m.name, err)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	m.sums[key] += val
}

func (m *inertDistribution) Info(labelVals ...string) (uint64, float64) {
	key, err := keyForLabels(labelVals, m.labelCount)
	if err != nil {
		klog.Errorf("%s: %v", m.name, err)
		return 0, 0.0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key], m.sums[key]
}

func keyForLabels(labelVals []string, count int) (string, error) {
	if len(labelVals) != count {
		return "", fmt.Errorf("invalid label count %d; want %d", len(labelVals), count)
	}
	return strings.Join(labelVals, "|"), nil
}
