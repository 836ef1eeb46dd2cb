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
	"strconv"
	"strings"
	"unicode"
)

// nameSeparator joins the scope, the metric name, and an optional global
// prefix. Prometheus does not support any other separator.
const nameSeparator = "_"

// Schema processing errors. All of them are fatal: a schema that fails to
// resolve never registers anything.
var (
	// ErrInvalidSchema is returned when the schema type is not a struct.
	ErrInvalidSchema = errors.New("prometric: schema type must be a struct")
	// ErrMissingScope is returned when the schema type does not implement
	// Scoped or declares an empty scope.
	ErrMissingScope = errors.New("prometric: schema does not declare a metrics scope")
	// ErrUnsupportedKind is returned when an exported schema field is not one
	// of the metric kinds defined by this package.
	ErrUnsupportedKind = errors.New("prometric: unsupported metric field type")
	// ErrDuplicateLabel is returned when a labels tag names the same label
	// twice.
	ErrDuplicateLabel = errors.New("prometric: duplicate label name")
	// ErrInvalidBuckets is returned for a malformed or non-ascending buckets
	// tag, or a buckets tag on a non-histogram field.
	ErrInvalidBuckets = errors.New("prometric: invalid histogram buckets")
)

// Scoped names the metric namespace of a schema. Every metric resolved from
// the schema is prefixed with the scope and an underscore. Implementing it is
// mandatory; resolution fails with ErrMissingScope otherwise.
type Scoped interface {
	MetricsScope() string
}

// metricKind is the closed set of supported metric kinds. It is derived from
// the schema field's type, never from a tag, so an operation outside the
// kind's set is unrepresentable at the call site.
type metricKind int

const (
	kindCounter metricKind = iota
	kindIntCounter
	kindGauge
	kindIntGauge
	kindHistogram
)

var kindByType = map[reflect.Type]metricKind{
	reflect.TypeOf(Counter{}):    kindCounter,
	reflect.TypeOf(IntCounter{}): kindIntCounter,
	reflect.TypeOf(Gauge{}):      kindGauge,
	reflect.TypeOf(IntGauge{}):   kindIntGauge,
	reflect.TypeOf(Histogram{}):  kindHistogram,
}

// fieldSpec is one resolved metric declaration: the final name, help text,
// label set and kind of a single schema field.
type fieldSpec struct {
	index    int
	kind     metricKind
	fullName string
	help     string
	labels   []string
	buckets  []float64
}

// resolveSchema maps every exported field of the schema struct type to a
// fieldSpec, in declaration order. Unexported fields are skipped since
// reflection cannot populate them.
func resolveSchema(t reflect.Type, scope string) ([]fieldSpec, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %s", ErrInvalidSchema, t.Kind())
	}
	if scope == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingScope, t.Name())
	}

	specs := make([]fieldSpec, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		spec, err := resolveField(field, scope)
		if err != nil {
			return nil, err
		}
		spec.index = i
		specs = append(specs, spec)
	}
	return specs, nil
}

func resolveField(field reflect.StructField, scope string) (fieldSpec, error) {
	kind, ok := kindByType[field.Type]
	if !ok {
		return fieldSpec{}, fmt.Errorf(
			"%w %s for field %s: use Counter, IntCounter, Gauge, IntGauge, or Histogram",
			ErrUnsupportedKind, field.Type, field.Name,
		)
	}

	name := field.Tag.Get("rename")
	if name == "" {
		name = snakeCase(field.Name)
	}

	labels, err := parseLabels(field)
	if err != nil {
		return fieldSpec{}, err
	}

	buckets, err := parseBuckets(field, kind)
	if err != nil {
		return fieldSpec{}, err
	}

	return fieldSpec{
		kind:     kind,
		fullName: scope + nameSeparator + name,
		help:     field.Tag.Get("help"),
		labels:   labels,
		buckets:  buckets,
	}, nil
}

// parseLabels reads the labels tag. Order is preserved verbatim: it defines
// the positional binding every accessor call must follow.
func parseLabels(field reflect.StructField) ([]string, error) {
	tag := field.Tag.Get("labels")
	if tag == "" {
		return nil, nil
	}
	parts := strings.Split(tag, ",")
	labels := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		label := strings.TrimSpace(p)
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%w %q on field %s", ErrDuplicateLabel, label, field.Name)
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels, nil
}

// parseBuckets reads the buckets tag of a histogram field. The bounds must be
// strictly ascending. An absent tag leaves the choice of buckets to the
// instrumentation default.
func parseBuckets(field reflect.StructField, kind metricKind) ([]float64, error) {
	tag := field.Tag.Get("buckets")
	if tag == "" {
		return nil, nil
	}
	if kind != kindHistogram {
		return nil, fmt.Errorf("%w: buckets tag on non-histogram field %s", ErrInvalidBuckets, field.Name)
	}
	parts := strings.Split(tag, ",")
	buckets := make([]float64, 0, len(parts))
	for _, p := range parts {
		bound, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w on field %s: %v", ErrInvalidBuckets, field.Name, err)
		}
		if len(buckets) > 0 && bound <= buckets[len(buckets)-1] {
			return nil, fmt.Errorf("%w on field %s: bounds must be strictly ascending", ErrInvalidBuckets, field.Name)
		}
		buckets = append(buckets, bound)
	}
	return buckets, nil
}

// schemaScope extracts the scope declared by the schema type. The Scoped
// method may live on either the value or the pointer receiver.
func schemaScope(v interface{}) (string, bool) {
	if s, ok := v.(Scoped); ok {
		return s.MetricsScope(), true
	}
	return "", false
}

// snakeCase converts an exported Go field name to the snake_case metric name
// convention. Acronym runs stay together: CPUUsage becomes cpu_usage.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			startsWord := i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if startsWord {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
