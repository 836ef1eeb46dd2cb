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

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
)

// Builder assembles a metrics bundle of schema type T: it resolves the
// schema, constructs one vector per declared field, registers each vector
// with the target registry and returns the populated schema value.
//
// A zero Builder is not usable; start from NewBuilder. Builders are intended
// for one-time startup use and must not be reused after Build.
type Builder[T any] struct {
	registry prometheus.Registerer
	labels   prometheus.Labels
}

// NewBuilder returns a builder targeting the process-wide default registry
// with no static labels. The default registry is created once at package
// init of client_golang and lives for the process.
func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{registry: prometheus.DefaultRegisterer}
}

// WithRegistry replaces the target registry.
func (b *Builder[T]) WithRegistry(registry prometheus.Registerer) *Builder[T] {
	b.registry = registry
	return b
}

// WithLabel adds one static label applied to every metric of the bundle.
// Setting the same key again overwrites the previous value.
func (b *Builder[T]) WithLabel(key, value string) *Builder[T] {
	if b.labels == nil {
		b.labels = prometheus.Labels{}
	}
	b.labels[key] = value
	return b
}

// Build resolves the schema, constructs and registers every metric in
// declaration order, and returns the bundle. There is no way to add a metric
// afterwards.
//
// Registration is idempotent-accept: when the registry already holds a
// collector with the same identity, that existing collector is adopted, so
// values accumulated through an earlier bundle stay live and a later gather
// still reflects them. Any other registration failure aborts the build with
// nothing usable returned.
func (b *Builder[T]) Build() (*T, error) {
	bundle := new(T)

	scope, ok := schemaScope(bundle)
	if !ok {
		return nil, fmt.Errorf("%w: %T must implement Scoped", ErrMissingScope, *bundle)
	}

	specs, err := resolveSchema(reflect.TypeOf(*bundle), scope)
	if err != nil {
		return nil, err
	}

	v := reflect.ValueOf(bundle).Elem()
	for _, spec := range specs {
		metric, err := b.newMetric(spec)
		if err != nil {
			return nil, err
		}
		v.Field(spec.index).Set(reflect.ValueOf(metric))
	}
	return bundle, nil
}

// MustBuild is like Build but panics on error. Schema errors are programming
// errors, so this is the common form at startup.
func (b *Builder[T]) MustBuild() *T {
	bundle, err := b.Build()
	if err != nil {
		panic(err)
	}
	return bundle
}

// newMetric constructs and registers the vector for one resolved field and
// wraps it in its kind type.
func (b *Builder[T]) newMetric(spec fieldSpec) (interface{}, error) {
	opts := prometheus.Opts{
		Name:        spec.fullName,
		Help:        spec.help,
		ConstLabels: b.labels,
	}

	switch spec.kind {
	case kindCounter, kindIntCounter:
		vec, err := register(b.registry, prometheus.NewCounterVec(prometheus.CounterOpts(opts), spec.labels))
		if err != nil {
			return nil, err
		}
		if spec.kind == kindIntCounter {
			return IntCounter{vec: vec}, nil
		}
		return Counter{vec: vec}, nil

	case kindGauge, kindIntGauge:
		vec, err := register(b.registry, prometheus.NewGaugeVec(prometheus.GaugeOpts(opts), spec.labels))
		if err != nil {
			return nil, err
		}
		if spec.kind == kindIntGauge {
			return IntGauge{vec: vec}, nil
		}
		return Gauge{vec: vec}, nil

	case kindHistogram:
		vec, err := register(b.registry, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        spec.fullName,
			Help:        spec.help,
			ConstLabels: b.labels,
			Buckets:     spec.buckets, // nil selects prometheus.DefBuckets
		}, spec.labels))
		if err != nil {
			return nil, err
		}
		return Histogram{vec: vec}, nil

	default:
		return nil, fmt.Errorf("%w: kind %d for %s", ErrUnsupportedKind, spec.kind, spec.fullName)
	}
}

// register applies the conflict policy. On AlreadyRegisteredError the
// existing collector is adopted when it has the expected vector type; if a
// collector of another type occupies the identity, the freshly built
// unregistered instance is kept so the caller still gets a working metric.
func register[C prometheus.Collector](registry prometheus.Registerer, collector C) (C, error) {
	err := registry.Register(collector)
	if err == nil {
		return collector, nil
	}

	are := prometheus.AlreadyRegisteredError{}
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
		return collector, nil
	}

	var zero C
	return zero, fmt.Errorf("prometric: registering metric: %w", err)
}
