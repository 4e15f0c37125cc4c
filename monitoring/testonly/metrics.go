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

// Package testonly contains conformance tests for monitoring.MetricFactory
// implementations.
package testonly

import (
	"testing"

	"github.com/kt-dev/keytrans/monitoring"
)

var labelCases = []struct {
	name       string
	labelNames []string
	labelVals  []string
}{
	{name: "0"},
	{name: "1", labelNames: []string{"key1"}, labelVals: []string{"val1"}},
	{name: "2", labelNames: []string{"key1", "key2"}, labelVals: []string{"val1", "val2"}},
}

// TestCounter runs a test on a Counter produced from the provided MetricFactory.
func TestCounter(t *testing.T, factory monitoring.MetricFactory) {
	for _, test := range labelCases {
		counter := factory.NewCounter("test_counter"+test.name, "Test only", test.labelNames...)
		if got, want := counter.Value(test.labelVals...), 0.0; got != want {
			t.Errorf("Counter(%s)[%v].Value()=%v; want %v", test.name, test.labelVals, got, want)
		}
		counter.Inc(test.labelVals...)
		if got, want := counter.Value(test.labelVals...), 1.0; got != want {
			t.Errorf("Counter(%s)[%v].Value()=%v; want %v", test.name, test.labelVals, got, want)
		}
		counter.Add(2.5, test.labelVals...)
		if got, want := counter.Value(test.labelVals...), 3.5; got != want {
			t.Errorf("Counter(%s)[%v].Value()=%v; want %v", test.name, test.labelVals, got, want)
		}
		// Use an invalid number of labels.
		libels := append(append([]string{}, test.labelVals...), "bogus")
		counter.Add(10.0, libels...)
		counter.Inc(libels...)
		if got, want := counter.Value(libels...), 0.0; got != want {
			t.Errorf("Counter(%s)[%v].Value()=%v; want %v", test.name, libels, got, want)
		}
		if got, want := counter.Value(test.labelVals...), 3.5; got != want {
			t.Errorf("Counter(%s)[%v].Value()=%v after bogus updates; want %v", test.name, test.labelVals, got, want)
		}
	}
}

// TestGauge runs a test on a Gauge produced from the provided MetricFactory.
func TestGauge(t *testing.T, factory monitoring.MetricFactory) {
	for _, test := range labelCases {
		gauge := factory.NewGauge("test_gauge"+test.name, "Test only", test.labelNames...)
		if got, want := gauge.Value(test.labelVals...), 0.0; got != want {
			t.Errorf("Gauge(%s)[%v].Value()=%v; want %v", test.name, test.labelVals, got, want)
		}
		gauge.Set(42, test.labelVals...)
		if got, want := gauge.Value(test.labelVals...), 42.0; got != want {
			t.Errorf("Gauge(%s)[%v].Value()=%v; want %v", test.name, test.labelVals, got, want)
		}
		gauge.Set(7, test.labelVals...)
		if got, want := gauge.Value(test.labelVals...), 7.0; got != want {
			t.Errorf("Gauge(%s)[%v].Value()=%v; want %v", test.name, test.labelVals, got, want)
		}
		libels := append(append([]string{}, test.labelVals...), "bogus")
		gauge.Set(99, libels...)
		if got, want := gauge.Value(libels...), 0.0; got != want {
			t.Errorf("Gauge(%s)[%v].Value()=%v; want %v", test.name, libels, got, want)
		}
	}
}

// TestHistogram runs a test on a Histogram produced from the provided MetricFactory.
func TestHistogram(t *testing.T, factory monitoring.MetricFactory) {
	for _, test := range labelCases {
		histogram := factory.NewHistogram("test_histogram"+test.name, "Test only", test.labelNames...)
		if count, sum := histogram.Info(test.labelVals...); count != 0 || sum != 0 {
			t.Errorf("Histogram(%s)[%v].Info()=%v,%v; want 0,0", test.name, test.labelVals, count, sum)
		}
		histogram.Observe(1.5, test.labelVals...)
		histogram.Observe(2.5, test.labelVals...)
		if count, sum := histogram.Info(test.labelVals...); count != 2 || sum != 4.0 {
			t.Errorf("Histogram(%s)[%v].Info()=%v,%v; want 2,4", test.name, test.labelVals, count, sum)
		}
		libels := append(append([]string{}, test.labelVals...), "bogus")
		histogram.Observe(100, libels...)
		if count, sum := histogram.Info(libels...); count != 0 || sum != 0 {
			t.Errorf("Histogram(%s)[%v].Info()=%v,%v; want 0,0", test.name, libels, count, sum)
		}
	}
}
