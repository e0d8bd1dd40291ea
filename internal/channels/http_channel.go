package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/benmeehan/vbox-gps-agent/pkg/location"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/host"
)

// HTTPChannel serves the current location over a network listener so
// guests can poll the host instead of reading guest properties. The
// /gps endpoints re-sample the provider on every request; the cached
// last-published sample feeds the info page only.
type HTTPChannel struct {
	port     int
	provider location.Provider
	logger   zerolog.Logger

	srv      *http.Server
	listener net.Listener
	wg       sync.WaitGroup

	mu      sync.RWMutex
	last    location.Sample
	hasLast bool
}

// NewHTTPChannel creates an HTTPChannel bound to all interfaces on
// the given port.
func NewHTTPChannel(port int, provider location.Provider, logger zerolog.Logger) *HTTPChannel {
	return &HTTPChannel{
		port:     port,
		provider: provider,
		logger:   logger,
	}
}

// Name identifies the channel in logs.
func (c *HTTPChannel) Name() string {
	return "http"
}

// Start binds the listener and begins serving in the background. A
// bind failure is returned to the caller, who treats it as non-fatal
// and disables network mode.
func (c *HTTPChannel) Start() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", c.port))
	if err != nil {
		return fmt.Errorf("failed to bind HTTP listener on port %d: %w", c.port, err)
	}

	c.listener = listener
	c.srv = &http.Server{Handler: c.Handler()}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			c.logger.Error().Err(err).Msg("HTTP channel stopped serving")
		}
	}()

	c.logger.Info().Int("port", c.port).Msg("HTTP channel listening")
	return nil
}

// Stop shuts the listener down and waits for the serve goroutine.
func (c *HTTPChannel) Stop() error {
	if c.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.srv.Shutdown(ctx)
	c.wg.Wait()
	c.srv = nil

	c.logger.Info().Msg("HTTP channel stopped")
	return err
}

// Publish caches the sample for the info page. Serving itself never
// blocks the publish loop.
func (c *HTTPChannel) Publish(sample location.Sample) error {
	c.mu.Lock()
	c.last = sample
	c.hasLast = true
	c.mu.Unlock()
	return nil
}

// Handler builds the route table. Exposed separately so tests can
// drive it without a live listener.
func (c *HTTPChannel) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", c.handleIndex)
	mux.HandleFunc("/gps", c.handleGPS)
	mux.HandleFunc("/gps/location", c.handleGPS)
	return mux
}

// handleGPS re-samples the provider and writes the sample as JSON.
func (c *HTTPChannel) handleGPS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if c.provider == nil {
		http.Error(w, "location provider unavailable", http.StatusServiceUnavailable)
		return
	}

	sample := c.provider.Sample()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sample); err != nil {
		c.logger.Error().Err(err).Msg("Failed to encode sample for HTTP response")
	}
}

// handleIndex serves the informational page. Any path other than the
// root is a 404, the mux routes everything unmatched here.
func (c *HTTPChannel) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	c.mu.RLock()
	last := c.last
	hasLast := c.hasLast
	c.mu.RUnlock()

	lastLine := "No sample published yet."
	if hasLast {
		lastLine = fmt.Sprintf("Last published sample: %s (%s)", last.Timestamp, last.Source)
	}

	hostLine := ""
	if info, err := host.Info(); err == nil {
		hostLine = fmt.Sprintf("<p>Host: %s (%s %s), up %s</p>",
			info.Hostname, info.OS, info.Platform, (time.Duration(info.Uptime) * time.Second).String())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html>
<head><title>VirtualBox GPS Host Service</title></head>
<body>
<h1>VirtualBox GPS Host Service</h1>
%s
<p>%s</p>
<p>Current location: <a href="/gps">/gps</a> (also at <a href="/gps/location">/gps/location</a>)</p>
</body>
</html>
`, hostLine, lastLine)
}
