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
	"os"
	"runtime"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestProcessCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := NewProcessCollector(registry)
	if err != nil {
		t.Fatal(err)
	}
	if !collector.enabled {
		t.Skip("procfs not available on this host")
	}

	collector.Collect()

	families, err := registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	gathered := make(map[string]float64, len(families))
	for _, family := range families {
		gathered[family.GetName()] = family.GetMetric()[0].GetGauge().GetValue()
	}

	for _, name := range []string{
		"system_cpu_cores",
		"process_threads",
		"process_cpu_usage",
		"process_resident_memory_bytes",
		"process_resident_memory_usage",
		"process_start_time_seconds",
		"process_open_fds",
	} {
		if _, ok := gathered[name]; !ok {
			t.Errorf("Expected gathered families to contain %s.", name)
		}
	}

	if cores := gathered["system_cpu_cores"]; cores != float64(runtime.NumCPU()) {
		t.Errorf("Expected %d cpu cores, got %f.", runtime.NumCPU(), cores)
	}
	if threads := gathered["process_threads"]; threads < 1 {
		t.Errorf("Expected at least one thread, got %f.", threads)
	}
	if rss := gathered["process_resident_memory_bytes"]; rss <= 0 {
		t.Errorf("Expected positive resident memory, got %f.", rss)
	}
	if ratio := gathered["process_resident_memory_usage"]; ratio <= 0 || ratio >= 1 {
		t.Errorf("Expected resident memory ratio in (0, 1), got %f.", ratio)
	}
	if usage := gathered["process_cpu_usage"]; usage < 0 || usage > 100*float64(runtime.NumCPU()) {
		t.Errorf("Expected cpu usage within bounds, got %f.", usage)
	}
	if fds := gathered["process_open_fds"]; fds < 1 {
		t.Errorf("Expected at least one open fd, got %f.", fds)
	}
}

func TestProcessCollectorIdempotent(t *testing.T) {
	registry := prometheus.NewRegistry()

	if _, err := NewProcessCollector(registry); err != nil {
		t.Fatal(err)
	}
	// The second collector adopts the first one's gauges.
	if _, err := NewProcessCollector(registry); err != nil {
		t.Fatal(err)
	}
}

func TestProcessCollectorPid(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := NewProcessCollector(registry)
	if err != nil {
		t.Fatal(err)
	}
	if expected, got := os.Getpid(), collector.Pid(); expected != got {
		t.Errorf("Expected pid %d, got %d.", expected, got)
	}
}
