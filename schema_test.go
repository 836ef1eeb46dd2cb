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
	"reflect"
	"testing"
)

func TestResolveSchema(t *testing.T) {
	type schema struct {
		RequestsTotal Counter   `labels:"method,path" help:"Total requests."`
		QueueDepth    Gauge     `rename:"backlog"`
		CPUUsage      Gauge     `help:"CPU usage."`
		Latency       Histogram `labels:"method" buckets:"0.01,0.1,1"`
		hidden        int
	}
	_ = schema{hidden: 0}

	specs, err := resolveSchema(reflect.TypeOf(schema{}), "app")
	if err != nil {
		t.Fatal(err)
	}
	if expected, got := 4, len(specs); expected != got {
		t.Fatalf("Expected %d specs, got %d.", expected, got)
	}

	names := []string{"app_requests_total", "app_backlog", "app_cpu_usage", "app_latency"}
	for i, name := range names {
		if got := specs[i].fullName; name != got {
			t.Errorf("Expected full name %q, got %q.", name, got)
		}
	}

	if expected, got := "Total requests.", specs[0].help; expected != got {
		t.Errorf("Expected help %q, got %q.", expected, got)
	}
	if expected, got := []string{"method", "path"}, specs[0].labels; !reflect.DeepEqual(expected, got) {
		t.Errorf("Expected labels %v, got %v.", expected, got)
	}
	if expected, got := "", specs[1].help; expected != got {
		t.Errorf("Expected empty help, got %q.", got)
	}
	if expected, got := []float64{0.01, 0.1, 1}, specs[3].buckets; !reflect.DeepEqual(expected, got) {
		t.Errorf("Expected buckets %v, got %v.", expected, got)
	}
	if specs[0].buckets != nil {
		t.Errorf("Expected nil buckets for counter, got %v.", specs[0].buckets)
	}
}

func TestResolveSchemaErrors(t *testing.T) {
	type unsupported struct {
		Requests string
	}
	type duplicate struct {
		Requests Counter `labels:"method,method"`
	}
	type badBuckets struct {
		Latency Histogram `buckets:"1,0.5"`
	}
	type garbageBuckets struct {
		Latency Histogram `buckets:"fast,slow"`
	}
	type bucketsOnCounter struct {
		Requests Counter `buckets:"0.1,1"`
	}
	type valid struct {
		Requests Counter
	}

	scenarios := []struct {
		name   string
		typ    reflect.Type
		scope  string
		target error
	}{
		{"unsupported kind", reflect.TypeOf(unsupported{}), "app", ErrUnsupportedKind},
		{"duplicate label", reflect.TypeOf(duplicate{}), "app", ErrDuplicateLabel},
		{"descending buckets", reflect.TypeOf(badBuckets{}), "app", ErrInvalidBuckets},
		{"unparsable buckets", reflect.TypeOf(garbageBuckets{}), "app", ErrInvalidBuckets},
		{"buckets on counter", reflect.TypeOf(bucketsOnCounter{}), "app", ErrInvalidBuckets},
		{"missing scope", reflect.TypeOf(valid{}), "", ErrMissingScope},
		{"not a struct", reflect.TypeOf(42), "app", ErrInvalidSchema},
	}

	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			_, err := resolveSchema(s.typ, s.scope)
			if !errors.Is(err, s.target) {
				t.Errorf("Expected error %v, got %v.", s.target, err)
			}
		})
	}
}

func TestSnakeCase(t *testing.T) {
	scenarios := []struct {
		in, out string
	}{
		{"Requests", "requests"},
		{"RequestsTotal", "requests_total"},
		{"CPUUsage", "cpu_usage"},
		{"MaxCPUFrequency", "max_cpu_frequency"},
		{"OpenFds", "open_fds"},
		{"HTTP2Errors", "http2_errors"},
		{"DiskWrittenBytesTotal", "disk_written_bytes_total"},
		{"Pid", "pid"},
	}

	for _, s := range scenarios {
		if got := snakeCase(s.in); s.out != got {
			t.Errorf("snakeCase(%q): expected %q, got %q.", s.in, s.out, got)
		}
	}
}
