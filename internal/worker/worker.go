// Package worker runs the daily announcement pass. Once per UTC day it asks
// the engine which members celebrate today, publishes one announcement per
// match and invalidates the calendar feed cache so the new day's window is
// served fresh.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/guild-birthday/internal/announce"
	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/engine"
)

// TodayService is the slice of the engine the worker consumes.
type TodayService interface {
	Today(ctx context.Context, guildID uint64) ([]engine.BirthdayRecord, error)
}

// GuildSource enumerates the guilds with stored birthday rows.
type GuildSource interface {
	ListGuilds(ctx context.Context) ([]uint64, error)
}

// Refresher drops cached feed state for a guild after its daily pass.
type Refresher interface {
	Invalidate(guildID uint64)
}

// Worker schedules and executes the daily pass.
type Worker struct {
	Service   TodayService
	Guilds    GuildSource
	Publisher announce.Publisher
	Refresher Refresher
	Clock     engine.Clock

	log *slog.Logger
}

// New wires a Worker. Refresher may be nil when no feed server runs.
func New(svc TodayService, guilds GuildSource, pub announce.Publisher, refresher Refresher, clock engine.Clock) *Worker {
	return &Worker{
		Service:   svc,
		Guilds:    guilds,
		Publisher: pub,
		Refresher: refresher,
		Clock:     clock,
		log:       slog.With(config.LogKeyComponent, config.CompWorker),
	}
}

// Run blocks until the context is cancelled, executing one pass at every UTC
// midnight. Per-guild failures are logged and skipped so one broken guild
// never starves the rest.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info(config.MsgWorkerStart)

	for {
		wait := time.Until(nextMidnightUTC(w.Clock.Now()))
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info(config.MsgWorkerStop)
			return ctx.Err()
		case <-timer.C:
			w.RunPass(ctx)
		}
	}
}

// RunPass executes one full announcement pass immediately.
func (w *Worker) RunPass(ctx context.Context) {
	start := time.Now()
	w.log.Info(config.MsgWorkerTick)

	guilds, err := w.Guilds.ListGuilds(ctx)
	if err != nil {
		w.log.Error(config.ErrListGuilds, config.LogKeyError, err)
		return
	}

	for _, guildID := range guilds {
		w.announceGuild(ctx, guildID)
	}
	w.log.Debug(config.MsgWorkerPassDone,
		config.LogKeyCount, len(guilds),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
}

func (w *Worker) announceGuild(ctx context.Context, guildID uint64) {
	log := w.log.With(config.LogKeyGuild, guildID)

	matches, err := w.Service.Today(ctx, guildID)
	if err != nil {
		log.Error(config.ErrDailyPass, config.LogKeyError, err)
		return
	}
	for _, rec := range matches {
		log.Info(config.MsgBdayToday, config.LogKeyUser, rec.UserID)
		if err := w.Publisher.PublishBirthday(ctx, guildID, rec); err != nil {
			log.Error(config.ErrAMQPPublish,
				config.LogKeyUser, rec.UserID,
				config.LogKeyError, err,
			)
		}
	}
	if w.Refresher != nil {
		w.Refresher.Invalidate(guildID)
	}
}

// nextMidnightUTC returns the first UTC midnight strictly after t.
func nextMidnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, time.UTC)
}
