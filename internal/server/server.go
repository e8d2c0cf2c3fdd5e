// Package server publishes the friends calendar feed over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tartampluch/go-friends/internal/config"
)

// FeedBuilder renders the current feed and reports its number of events.
type FeedBuilder func(ctx context.Context) ([]byte, int, error)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	events       int
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
	updated      time.Time
}

// CalendarServer serves the generated ICS feed and a health probe.
type CalendarServer struct {
	// cache uses atomic.Pointer for lock-free reads: the feed is read by
	// calendar clients far more often than it is rebuilt.
	cache  atomic.Pointer[cacheItem]
	router chi.Router
	Port   string
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string) *CalendarServer {
	s := &CalendarServer{Port: port}
	s.routes()
	return s
}

func (s *CalendarServer) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	for _, route := range []string{config.RouteCalendar, config.RouteRoot} {
		r.Get(route, s.handleCalendarRequest)
		r.Head(route, s.handleCalendarRequest)
	}
	r.Get(config.RouteHealth, s.handleHealth)

	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *CalendarServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served content.
func (s *CalendarServer) Update(data []byte, events int) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
	now := time.Now().UTC()

	// Readers see either the old or the new complete item.
	s.cache.Store(&cacheItem{
		data:         data,
		events:       events,
		etag:         etag,
		lastModified: now.Format(http.TimeFormat),
		updated:      now,
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// Refresh rebuilds the feed once. The previous feed keeps being served when
// the build fails.
func (s *CalendarServer) Refresh(ctx context.Context, build FeedBuilder) error {
	start := time.Now()
	data, events, err := build(ctx)
	if err != nil {
		return err
	}
	s.Update(data, events)

	slog.Info(config.MsgFeedRefreshed,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyCount, events,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return nil
}

// Watch refreshes the feed immediately, then on every tick until ctx is done.
// Build failures are logged and retried on the next tick.
func (s *CalendarServer) Watch(ctx context.Context, interval time.Duration, build FeedBuilder) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.Refresh(ctx, build); err != nil && ctx.Err() == nil {
			slog.Error(config.ErrICalEncode,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Ready   bool   `json:"ready"`
	Events  int    `json:"events"`
	Updated string `json:"updated,omitempty"`
}

func (s *CalendarServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: config.Version}
	if item := s.cache.Load(); item != nil {
		resp.Ready = true
		resp.Events = item.events
		resp.Updated = item.updated.Format(time.RFC3339)
	}

	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
