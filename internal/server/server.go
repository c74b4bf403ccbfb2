// Package server exposes each guild's birthdays as an iCalendar feed over
// HTTP, so members can subscribe from any calendar client. Rendered feeds are
// cached per guild until the daily pass invalidates them.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/tartampluch/guild-birthday/internal/config"
)

// FeedSource renders the iCalendar document of one guild.
type FeedSource interface {
	Feed(ctx context.Context, guildID uint64) ([]byte, error)
}

// GuildDirectory reports which guilds have stored birthday data. Requests for
// any other guild id are answered with 404.
type GuildDirectory interface {
	ListGuilds(ctx context.Context) ([]uint64, error)
}

// cacheItem stores one rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// FeedServer serves the per-guild ICS feeds. Feeds are rendered lazily on the
// first request and then served from an in-memory cache; reads stay lock-free
// on the hot path.
type FeedServer struct {
	source FeedSource
	guilds GuildDirectory
	addr   string

	// cache maps guild id to *cacheItem.
	cache sync.Map
	log   *slog.Logger
}

// NewFeedServer creates a server listening on addr ("host:port").
func NewFeedServer(addr string, source FeedSource, guilds GuildDirectory) *FeedServer {
	return &FeedServer{
		source: source,
		guilds: guilds,
		addr:   addr,
		log:    slog.With(config.LogKeyComponent, config.CompServer),
	}
}

// Start runs the HTTP server and blocks until the context is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.addr == "" || s.addr == config.AddrSeparator {
		return fmt.Errorf(config.ErrPortRequired)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteCalendar, s.handleFeedRequest)

	srv := &http.Server{
		Addr:         s.addr,
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		s.log.Info(config.MsgServerListen, config.LogKeyAddr, s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info(config.MsgServerStop)
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

// Invalidate drops a guild's cached feed so the next request re-renders it.
func (s *FeedServer) Invalidate(guildID uint64) {
	s.cache.Delete(guildID)
}

// update replaces a guild's cached feed.
func (s *FeedServer) update(guildID uint64, data []byte) *cacheItem {
	hash := sha256.Sum256(data)
	item := &cacheItem{
		data:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.cache.Store(guildID, item)

	s.log.Debug(config.MsgCacheUpdated,
		config.LogKeyGuild, guildID,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, item.etag,
	)
	return item
}

// handleFeedRequest serves one guild's ICS content with HTTP caching support.
func (s *FeedServer) handleFeedRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	guildID, err := strconv.ParseUint(r.PathValue(config.PathParamGuildID), 10, 64)
	if err != nil {
		http.Error(w, config.HTTPMsgUnknownGuild, http.StatusNotFound)
		return
	}

	item, ok := s.loadItem(guildID)
	if !ok {
		known, err := s.isKnownGuild(r.Context(), guildID)
		if err != nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}
		if !known {
			http.Error(w, config.HTTPMsgUnknownGuild, http.StatusNotFound)
			return
		}

		data, err := s.source.Feed(r.Context(), guildID)
		if err != nil {
			s.log.Error(config.ErrFeedRender, config.LogKeyGuild, guildID, config.LogKeyError, err)
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}
		item = s.update(guildID, data)
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
			s.log.Error(config.ErrWriteResp, config.LogKeyGuild, guildID, config.LogKeyError, err)
		}
	}
}

func (s *FeedServer) loadItem(guildID uint64) (*cacheItem, bool) {
	v, ok := s.cache.Load(guildID)
	if !ok {
		return nil, false
	}
	return v.(*cacheItem), true
}

func (s *FeedServer) isKnownGuild(ctx context.Context, guildID uint64) (bool, error) {
	ids, err := s.guilds.ListGuilds(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == guildID {
			return true, nil
		}
	}
	return false, nil
}
