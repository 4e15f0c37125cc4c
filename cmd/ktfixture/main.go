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

// Package main contains the implementation and entry point for the ktfixture
// command, which invokes a function exported through the bridge registry
// and prints its result as JSON.
//
// Example usage:
// $ ./ktfixture --binding=jni --fn=TESTING_ChatSearchResult
package main

import (
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/kt-dev/keytrans/bridge"
	_ "github.com/kt-dev/keytrans/bridge/testfns" // TESTING_ functions
	"github.com/kt-dev/keytrans/cmd"
	"github.com/kt-dev/keytrans/errors"
	"github.com/kt-dev/keytrans/monitoring"
	"github.com/kt-dev/keytrans/monitoring/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"
)

var (
	binding         = flag.String("binding", "jni", "Binding to invoke the function through (jni, ffi, node)")
	fnName          = flag.String("fn", "", "Name of the exported function to invoke; empty lists the available functions")
	bridgeConfig    = flag.String("bridge_config", "", "Path to a YAML file selecting the enabled bindings")
	configFile      = flag.String("config", "", "Config file containing flags, file contents can be overridden by command line flags")
	metricsEndpoint = flag.String("metrics_endpoint", "", "Endpoint for serving metrics; if set the command keeps serving until interrupted")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if *configFile != "" {
		if err := cmd.ParseFlagFile(*configFile); err != nil {
			klog.Exitf("Failed to load flags from config file %q: %s", *configFile, err)
		}
	}

	if *bridgeConfig != "" {
		c, err := bridge.LoadConfig(*bridgeConfig)
		if err != nil {
			klog.Exitf("Failed to load bridge config %q: %v", *bridgeConfig, err)
		}
		if err := c.Apply(bridge.Default); err != nil {
			klog.Exitf("Failed to apply bridge config: %v", err)
		}
	}

	b, err := bridge.ParseBinding(*binding)
	if err != nil {
		klog.Exitf("Invalid --binding: %v", err)
	}

	var mf monitoring.MetricFactory = monitoring.InertMetricFactory{}
	if *metricsEndpoint != "" {
		mf = prometheus.MetricFactory{Prefix: "ktfixture_"}
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			klog.Infof("HTTP server starting on %v", *metricsEndpoint)
			if err := http.ListenAndServe(*metricsEndpoint, nil); err != nil {
				klog.Errorf("HTTP server stopped: %v", err)
			}
		}()
	}

	if err := run(os.Stdout, bridge.Default, b, *fnName, newCallMetrics(mf)); err != nil {
		klog.Exitf("%s: %v", *fnName, err)
	}

	if *metricsEndpoint != "" {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigs
		klog.Infof("Signal received: %v", sig)
	}
}

type callMetrics struct {
	calls monitoring.Counter
}

func newCallMetrics(mf monitoring.MetricFactory) *callMetrics {
	return &callMetrics{
		calls: mf.NewCounter("calls", "Number of bridge function invocations", "binding", "fn", "code"),
	}
}

// run invokes fn through binding b of r and writes the result to w. An
// empty fn writes the names available through b instead.
func run(w io.Writer, r *bridge.Registry, b bridge.Binding, fn string, m *callMetrics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if fn == "" {
		names := r.Names(b)
		if names == nil {
			names = []string{}
		}
		return enc.Encode(names)
	}

	v, err := r.Call(b, fn)
	m.calls.Inc(b.String(), fn, errors.ErrorCode(err).String())
	if err != nil {
		return err
	}
	return enc.Encode(v)
}
