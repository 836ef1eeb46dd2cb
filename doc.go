// Copyright 2025 The Prometric Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package prometric turns a declarative metric schema into a registered,
// type-safe Prometheus metrics bundle.
//
// A schema is a plain struct whose exported fields declare metrics through
// their field type (Counter, IntCounter, Gauge, IntGauge, Histogram) and
// struct tags (labels, help, rename, buckets). The schema type names its
// namespace by implementing Scoped:
//
//	type ServerMetrics struct {
//		RequestsTotal prometric.Counter   `rename:"requests" labels:"method" help:"Total HTTP requests."`
//		Latency       prometric.Histogram `labels:"method" help:"Request latency in seconds."`
//	}
//
//	func (ServerMetrics) MetricsScope() string { return "app" }
//
// A Builder binds the schema to a registry and a set of static labels and
// produces the bundle in one shot:
//
//	m := prometric.NewBuilder[ServerMetrics]().
//		WithLabel("host", "localhost").
//		MustBuild()
//
//	m.RequestsTotal.With("GET").Inc()
//	m.Latency.With("GET").Observe(0.042)
//
// Each field exposes only the operations valid for its kind; a Counter field
// has no Observe method. Label values are positional and must be supplied in
// the order the labels tag declares them.
//
// The exposition side is a small long-running HTTP server that gathers the
// registry on every scrape:
//
//	if err := prometric.NewExporter().WithPath("/metrics").Install(); err != nil {
//		// the exporter never starts partially
//	}
//
// Registration is idempotent: building the same schema twice against one
// registry adopts the already registered collectors, so previously
// accumulated values stay live. See Builder.Build for the exact policy.
package prometric
