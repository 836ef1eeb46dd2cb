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
	"log"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// defaultAddress is where the exporter listens unless told otherwise.
const defaultAddress = ":9090"

// ErrInvalidPath is returned by Install for a configured scrape path that is
// empty, relative, or has a trailing slash.
var ErrInvalidPath = errors.New("prometric: invalid exporter path")

// Logger is the minimal logging surface the exporter needs for listener and
// request failures. A *log.Logger qualifies, as does the adapter returned by
// zap.NewStdLog.
type Logger interface {
	Println(v ...interface{})
}

// ExporterBuilder configures and installs the scrape endpoint: a long-running
// HTTP listener that gathers the registry on every request and serves the
// result in the Prometheus text exposition format.
type ExporterBuilder struct {
	registry prometheus.Gatherer
	address  string
	path     string
	pathSet  bool
	prefix   string
	errorLog Logger
}

// NewExporter returns an exporter builder with the default registry, the
// default address and the root path.
func NewExporter() *ExporterBuilder {
	return &ExporterBuilder{address: defaultAddress}
}

// WithAddress sets the listen address, in the forms accepted by net.Listen
// ("0.0.0.0:9090", ":9100", "127.0.0.1:0").
func (b *ExporterBuilder) WithAddress(address string) *ExporterBuilder {
	b.address = address
	return b
}

// WithPath sets the scrape path. The path must start with "/" and must not
// end with one; Install fails with ErrInvalidPath otherwise.
func (b *ExporterBuilder) WithPath(path string) *ExporterBuilder {
	b.path = path
	b.pathSet = true
	return b
}

// WithGlobalPrefix prepends prefix and an underscore to every metric name
// served. Only the response is rewritten; the registry's stored names are
// untouched.
func (b *ExporterBuilder) WithGlobalPrefix(prefix string) *ExporterBuilder {
	b.prefix = prefix
	return b
}

// WithRegistry sets the registry to gather from. The default is the
// process-wide default gatherer.
func (b *ExporterBuilder) WithRegistry(registry prometheus.Gatherer) *ExporterBuilder {
	b.registry = registry
	return b
}

// WithErrorLog sets the destination for listener and request diagnostics.
// The default logs to standard error.
func (b *ExporterBuilder) WithErrorLog(logger Logger) *ExporterBuilder {
	b.errorLog = logger
	return b
}

// Install validates the configuration, binds the listener, and starts serving
// on a background goroutine. It returns as soon as the listener is bound, so
// the caller's control flow is never blocked; on any error nothing is
// started. One Install call owns exactly one accept loop, and a fatal accept
// error terminates that loop with a diagnostic log, without restart.
func (b *ExporterBuilder) Install() error {
	handler, err := b.handler()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", b.address)
	if err != nil {
		return fmt.Errorf("prometric: exporter failed to bind %q: %w", b.address, err)
	}

	go b.serve(listener, handler)
	return nil
}

// serve runs the accept loop until the listener fails.
func (b *ExporterBuilder) serve(listener net.Listener, handler http.Handler) {
	server := &http.Server{Handler: handler}
	if err := server.Serve(listener); err != nil {
		b.logger().Println("prometric: exporter listener terminated:", err)
	}
}

// handler resolves the configuration into the per-request handler.
func (b *ExporterBuilder) handler() (http.Handler, error) {
	path, err := b.resolvePath()
	if err != nil {
		return nil, err
	}

	registry := b.registry
	if registry == nil {
		registry = prometheus.DefaultGatherer
	}
	logger := b.logger()
	prefix := b.prefix

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}

		families, err := registry.Gather()
		if err != nil {
			logger.Println("prometric: gathering metrics:", err)
			http.Error(w, "failed to gather metrics", http.StatusInternalServerError)
			return
		}

		// Gather returns a fresh snapshot, so renaming here never touches
		// the registry's stored names.
		if prefix != "" {
			for _, family := range families {
				family.Name = proto.String(prefix + nameSeparator + family.GetName())
			}
		}

		w.Header().Set("Content-Type", string(expfmt.FmtText))
		encoder := expfmt.NewEncoder(w, expfmt.FmtText)
		for _, family := range families {
			if err := encoder.Encode(family); err != nil {
				logger.Println("prometric: encoding metrics:", err)
				return
			}
		}
	}), nil
}

// resolvePath validates the configured path. An unset path means root; an
// explicitly configured path must be non-empty, absolute, and without a
// trailing slash.
func (b *ExporterBuilder) resolvePath() (string, error) {
	if !b.pathSet {
		return "/", nil
	}
	if b.path == "" || !strings.HasPrefix(b.path, "/") || strings.HasSuffix(b.path, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, b.path)
	}
	return b.path, nil
}

func (b *ExporterBuilder) logger() Logger {
	if b.errorLog != nil {
		return b.errorLog
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}
