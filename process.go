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
	"math"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/procfs"
)

// systemMetrics describes the host the process runs on.
type systemMetrics struct {
	CPUCores        IntGauge `help:"The number of logical CPU cores available in the system."`
	MaxCPUFrequency Gauge    `help:"The maximum CPU frequency of all cores in MHz."`
	MinCPUFrequency Gauge    `help:"The minimum CPU frequency of all cores in MHz."`
}

func (systemMetrics) MetricsScope() string { return "system" }

// processMetrics describes the instrumented process itself.
type processMetrics struct {
	Threads               IntGauge `help:"The number of OS threads used by the process."`
	CPUUsage              Gauge    `help:"The CPU usage of the process as a percentage, normalized by core count."`
	ResidentMemoryBytes   IntGauge `help:"The resident memory of the process in bytes."`
	ResidentMemoryUsage   Gauge    `help:"The resident memory of the process as a fraction of total memory."`
	StartTimeSeconds      IntGauge `help:"The start time of the process in UNIX seconds."`
	OpenFds               IntGauge `help:"The number of open file descriptors of the process."`
	MaxFds                IntGauge `help:"The maximum number of open file descriptors of the process."`
	DiskWrittenBytesTotal IntGauge `help:"The total number of bytes written to disk by the process."`
}

func (processMetrics) MetricsScope() string { return "process" }

// ProcessCollector samples OS-level resource usage of the current process
// from procfs into pre-registered gauges. Collect is pull-on-demand: nothing
// refreshes unless the caller (typically a ticker loop, or a scrape hook)
// asks for it.
//
// On hosts without a mounted procfs the collector still registers its
// metrics but Collect is a no-op, mirroring the degraded mode of
// client_golang's process collector.
type ProcessCollector struct {
	pid   int
	cores int

	fs      procfs.FS
	proc    procfs.Proc
	enabled bool

	system  *systemMetrics
	process *processMetrics

	mtx         sync.Mutex
	lastCPUTime float64
	lastSample  time.Time
}

// NewProcessCollector registers the process and system gauges with the given
// registry and returns the collector. Registration follows the builder's
// idempotent-accept policy, so constructing a second collector against the
// same registry shares the first one's gauges.
func NewProcessCollector(registry prometheus.Registerer) (*ProcessCollector, error) {
	system, err := NewBuilder[systemMetrics]().WithRegistry(registry).Build()
	if err != nil {
		return nil, err
	}
	process, err := NewBuilder[processMetrics]().WithRegistry(registry).Build()
	if err != nil {
		return nil, err
	}

	c := &ProcessCollector{
		pid:     os.Getpid(),
		cores:   runtime.NumCPU(),
		system:  system,
		process: process,
	}

	if fs, err := procfs.NewDefaultFS(); err == nil {
		if proc, err := fs.Proc(c.pid); err == nil {
			c.fs = fs
			c.proc = proc
			c.enabled = true
		}
	}

	c.system.CPUCores.With().Set(int64(c.cores))
	return c, nil
}

// NewDefaultProcessCollector is NewProcessCollector against the process-wide
// default registry. It panics on registration failure.
func NewDefaultProcessCollector() *ProcessCollector {
	c, err := NewProcessCollector(prometheus.DefaultRegisterer)
	if err != nil {
		panic(err)
	}
	return c
}

// Pid returns the PID of the process being sampled.
func (c *ProcessCollector) Pid() int {
	return c.pid
}

// Collect refreshes every gauge from procfs. It never fails: a read error
// skips that gauge for the cycle and leaves its previous value in place.
func (c *ProcessCollector) Collect() {
	if !c.enabled {
		return
	}

	if cpus, err := c.fs.CPUInfo(); err == nil && len(cpus) > 0 {
		minFreq, maxFreq := cpus[0].CPUMHz, cpus[0].CPUMHz
		for _, cpu := range cpus[1:] {
			if cpu.CPUMHz < minFreq {
				minFreq = cpu.CPUMHz
			}
			if cpu.CPUMHz > maxFreq {
				maxFreq = cpu.CPUMHz
			}
		}
		c.system.MinCPUFrequency.With().Set(minFreq)
		c.system.MaxCPUFrequency.With().Set(maxFreq)
	}

	if stat, err := c.proc.Stat(); err == nil {
		c.process.Threads.With().Set(int64(stat.NumThreads))

		rss := stat.ResidentMemory()
		c.process.ResidentMemoryBytes.With().Set(int64(rss))
		if meminfo, err := c.fs.Meminfo(); err == nil && meminfo.MemTotal != nil && *meminfo.MemTotal > 0 {
			total := float64(*meminfo.MemTotal) * 1024 // MemTotal is in kB
			c.process.ResidentMemoryUsage.With().Set(float64(rss) / total)
		}

		startTime, startErr := stat.StartTime()
		if startErr == nil {
			c.process.StartTimeSeconds.With().Set(int64(startTime))
		}

		c.observeCPU(stat.CPUTime(), startTime, startErr == nil)
	}

	if fds, err := c.proc.FileDescriptorsLen(); err == nil {
		c.process.OpenFds.With().Set(int64(fds))
	}
	if limits, err := c.proc.Limits(); err == nil && limits.OpenFiles != math.MaxUint64 {
		c.process.MaxFds.With().Set(int64(limits.OpenFiles))
	}
	if ioStat, err := c.proc.IO(); err == nil {
		c.process.DiskWrittenBytesTotal.With().Set(int64(ioStat.WriteBytes))
	}
}

// observeCPU turns cumulative CPU seconds into a usage percentage over the
// window since the previous sample. The first sample measures against the
// process start time.
func (c *ProcessCollector) observeCPU(cpuTime, startTime float64, haveStart bool) {
	now := time.Now()

	c.mtx.Lock()
	defer c.mtx.Unlock()

	var window float64
	if c.lastSample.IsZero() {
		if !haveStart {
			c.lastCPUTime = cpuTime
			c.lastSample = now
			return
		}
		window = float64(now.Unix()) - startTime
	} else {
		window = now.Sub(c.lastSample).Seconds()
	}

	if window > 0 {
		usage := (cpuTime - c.lastCPUTime) / window / float64(c.cores) * 100
		c.process.CPUUsage.With().Set(usage)
	}

	c.lastCPUTime = cpuTime
	c.lastSample = now
}
