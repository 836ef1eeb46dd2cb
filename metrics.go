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

package prometric

import "github.com/prometheus/client_golang/prometheus"

// The kind types below are the only legal field types of a metric schema.
// They are inert until the enclosing schema is built: a zero-value field has
// no backing vector and panics on use. Every kind is a thin handle around a
// Prometheus vector, so copies of a built field share the same time series.
//
// Metrics without labels are backed by a zero-label vector; With() with no
// arguments addresses their single series.

// Counter is a monotonically increasing float64 metric.
type Counter struct {
	vec *prometheus.CounterVec
}

// With binds the counter to one time series. Label values are positional and
// must match the declared labels tag in count and order; a mismatch panics
// with the vector's cardinality error on the first operation.
func (c Counter) With(labelValues ...string) CounterAccessor {
	return CounterAccessor{vec: c.vec, labelValues: labelValues}
}

// IntCounter is a monotonically increasing metric with an integer-typed
// mutation surface.
type IntCounter struct {
	vec *prometheus.CounterVec
}

// With binds the counter to one time series, like Counter.With.
func (c IntCounter) With(labelValues ...string) IntCounterAccessor {
	return IntCounterAccessor{vec: c.vec, labelValues: labelValues}
}

// Gauge is a float64 metric whose value can go up and down.
type Gauge struct {
	vec *prometheus.GaugeVec
}

// With binds the gauge to one time series, like Counter.With.
func (g Gauge) With(labelValues ...string) GaugeAccessor {
	return GaugeAccessor{vec: g.vec, labelValues: labelValues}
}

// IntGauge is a gauge with an integer-typed mutation surface.
type IntGauge struct {
	vec *prometheus.GaugeVec
}

// With binds the gauge to one time series, like Counter.With.
func (g IntGauge) With(labelValues ...string) IntGaugeAccessor {
	return IntGaugeAccessor{vec: g.vec, labelValues: labelValues}
}

// Histogram samples float64 observations into configurable buckets.
type Histogram struct {
	vec *prometheus.HistogramVec
}

// With binds the histogram to one time series, like Counter.With.
func (h Histogram) With(labelValues ...string) HistogramAccessor {
	return HistogramAccessor{vec: h.vec, labelValues: labelValues}
}

// CounterAccessor mutates one counter time series. It is an ephemeral value:
// create it, call one operation, let it go.
type CounterAccessor struct {
	vec         *prometheus.CounterVec
	labelValues []string
}

// Inc increments the counter by 1.
func (a CounterAccessor) Inc() {
	a.vec.WithLabelValues(a.labelValues...).Inc()
}

// Add increments the counter by v. Adding a negative value panics.
func (a CounterAccessor) Add(v float64) {
	a.vec.WithLabelValues(a.labelValues...).Add(v)
}

// Reset sets the series back to 0 by dropping it from the vector. The series
// reappears at 0 on its next use.
func (a CounterAccessor) Reset() {
	a.vec.DeleteLabelValues(a.labelValues...)
}

// IntCounterAccessor mutates one integer counter time series.
type IntCounterAccessor struct {
	vec         *prometheus.CounterVec
	labelValues []string
}

// Inc increments the counter by 1.
func (a IntCounterAccessor) Inc() {
	a.vec.WithLabelValues(a.labelValues...).Inc()
}

// Add increments the counter by v.
func (a IntCounterAccessor) Add(v uint64) {
	a.vec.WithLabelValues(a.labelValues...).Add(float64(v))
}

// Reset sets the series back to 0 by dropping it from the vector.
func (a IntCounterAccessor) Reset() {
	a.vec.DeleteLabelValues(a.labelValues...)
}

// GaugeAccessor mutates one gauge time series.
type GaugeAccessor struct {
	vec         *prometheus.GaugeVec
	labelValues []string
}

// Inc increments the gauge by 1.
func (a GaugeAccessor) Inc() {
	a.vec.WithLabelValues(a.labelValues...).Inc()
}

// Dec decrements the gauge by 1.
func (a GaugeAccessor) Dec() {
	a.vec.WithLabelValues(a.labelValues...).Dec()
}

// Add adds v to the gauge.
func (a GaugeAccessor) Add(v float64) {
	a.vec.WithLabelValues(a.labelValues...).Add(v)
}

// Sub subtracts v from the gauge.
func (a GaugeAccessor) Sub(v float64) {
	a.vec.WithLabelValues(a.labelValues...).Sub(v)
}

// Set sets the gauge to v.
func (a GaugeAccessor) Set(v float64) {
	a.vec.WithLabelValues(a.labelValues...).Set(v)
}

// IntGaugeAccessor mutates one integer gauge time series.
type IntGaugeAccessor struct {
	vec         *prometheus.GaugeVec
	labelValues []string
}

// Inc increments the gauge by 1.
func (a IntGaugeAccessor) Inc() {
	a.vec.WithLabelValues(a.labelValues...).Inc()
}

// Dec decrements the gauge by 1.
func (a IntGaugeAccessor) Dec() {
	a.vec.WithLabelValues(a.labelValues...).Dec()
}

// Add adds v to the gauge.
func (a IntGaugeAccessor) Add(v int64) {
	a.vec.WithLabelValues(a.labelValues...).Add(float64(v))
}

// Sub subtracts v from the gauge.
func (a IntGaugeAccessor) Sub(v int64) {
	a.vec.WithLabelValues(a.labelValues...).Sub(float64(v))
}

// Set sets the gauge to v.
func (a IntGaugeAccessor) Set(v int64) {
	a.vec.WithLabelValues(a.labelValues...).Set(float64(v))
}

// HistogramAccessor mutates one histogram time series.
type HistogramAccessor struct {
	vec         *prometheus.HistogramVec
	labelValues []string
}

// Observe adds a single observation to the histogram.
func (a HistogramAccessor) Observe(v float64) {
	a.vec.WithLabelValues(a.labelValues...).Observe(v)
}
