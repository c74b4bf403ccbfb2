package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/roster"
)

// Store is the persistence contract for birthday rows. Implementations
// return rows ordered by (month, day).
type Store interface {
	FetchBirthdays(ctx context.Context, guildID uint64) ([]StoredBirthday, error)
	Birthday(ctx context.Context, guildID, userID uint64) (StoredBirthday, bool, error)
}

// Messages bundles the user-visible strings of the engine operations.
// The command layer injects localized values.
type Messages struct {
	Upcoming UpcomingMessages

	// ListHeaderFormat expects the guild name.
	ListHeaderFormat string

	// WhenAnswerFormat expects a display name and a "Mar-01" date.
	WhenAnswerFormat string

	// EventSummaryFormat expects a display name.
	EventSummaryFormat string
}

// DefaultMessages returns the built-in English strings.
func DefaultMessages() Messages {
	return Messages{
		Upcoming:           DefaultUpcomingMessages(),
		ListHeaderFormat:   config.FallbackListHeader,
		WhenAnswerFormat:   config.FallbackWhenAnswer,
		EventSummaryFormat: config.FallbackEvtSummary,
	}
}

// Service executes the user-facing birthday operations for one guild at a
// time. Every call fetches fresh rows and membership, aggregates in memory
// and renders; nothing is shared across invocations, so concurrent calls are
// fully independent.
type Service struct {
	Store    Store
	Roster   roster.Resolver
	Clock    Clock
	Exporter Exporter
	Messages Messages

	// Window policy and render cap; zero values select the defaults.
	ScanDaysBefore int
	ScanDaysTotal  int
	RenderCap      int
}

// NewService wires a Service with the default policy, clock and messages.
func NewService(store Store, resolver roster.Resolver) *Service {
	return &Service{
		Store:          store,
		Roster:         resolver,
		Clock:          RealClock{},
		Messages:       DefaultMessages(),
		ScanDaysBefore: config.DefaultScanDaysBefore,
		ScanDaysTotal:  config.DefaultScanDaysTotal,
		RenderCap:      config.DefaultRenderCap,
	}
}

// Upcoming renders the bounded listing of birthdays around today (UTC).
func (s *Service) Upcoming(ctx context.Context, guildID uint64) (string, error) {
	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompEngine, config.LogKeyGuild, guildID)

	records, err := s.fetchJoined(ctx, guildID)
	if err != nil {
		return "", err
	}
	grouping, err := Group(records)
	if err != nil {
		return "", err
	}

	center := IndexOfTime(s.Clock.Now().UTC())
	scan := NewWindowScan(center, s.ScanDaysBefore, s.ScanDaysTotal)
	hits := grouping.Windowed(scan)

	out := RenderUpcoming(hits, s.RenderCap, s.Messages.Upcoming)
	log.Debug(config.MsgUpcomingDone,
		config.LogKeyIndex, center,
		config.LogKeyCount, len(hits),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return out, nil
}

// List renders the full plain-text listing, one line per stored record.
func (s *Service) List(ctx context.Context, guildID uint64) (string, error) {
	rows, err := s.Store.FetchBirthdays(ctx, guildID)
	if err != nil {
		return "", err
	}
	lookup, guildName, err := s.rosterSnapshot(ctx, guildID)
	if err != nil {
		return "", err
	}
	header := fmt.Sprintf(s.Messages.ListHeaderFormat, guildName)
	return s.Exporter.Text(header, rows, lookup), nil
}

// When answers where a member's birthday falls. The query is an exact user
// id or a case-insensitive username.
func (s *Service) When(ctx context.Context, guildID uint64, query string) (string, error) {
	members, err := s.Roster.Members(ctx, guildID)
	if err != nil {
		return "", err
	}
	member, ok := roster.FindMember(members, query)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUserNotFound, query)
	}
	row, ok, err := s.Store.Birthday(ctx, guildID, member.UserID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoBirthdayData, member.Tag())
	}
	return fmt.Sprintf(s.Messages.WhenAnswerFormat, member.DisplayName(), MonthDay(row.Month, row.Day)), nil
}

// Export renders the full record set in the requested format and returns the
// suggested file name alongside the content.
func (s *Service) Export(ctx context.Context, guildID uint64, format string) (string, []byte, error) {
	rows, err := s.Store.FetchBirthdays(ctx, guildID)
	if err != nil {
		return "", nil, err
	}
	lookup, guildName, err := s.rosterSnapshot(ctx, guildID)
	if err != nil {
		return "", nil, err
	}

	switch format {
	case config.ExportFormatText:
		header := fmt.Sprintf(s.Messages.ListHeaderFormat, guildName)
		return config.ExportFileText, []byte(s.Exporter.Text(header, rows, lookup)), nil
	case config.ExportFormatCSV:
		return config.ExportFileCSV, []byte(s.Exporter.CSV(rows, lookup)), nil
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Feed renders the guild's birthdays as an iCalendar document.
func (s *Service) Feed(ctx context.Context, guildID uint64) ([]byte, error) {
	records, err := s.fetchJoined(ctx, guildID)
	if err != nil {
		return nil, err
	}
	fb := &FeedBuilder{
		Clock: s.Clock,
		FormatSummary: func(name string) string {
			return fmt.Sprintf(s.Messages.EventSummaryFormat, name)
		},
	}
	return fb.Build(records)
}

// Today returns the records whose date index matches today's (UTC) slot.
// The daily announcement worker drives this.
func (s *Service) Today(ctx context.Context, guildID uint64) ([]BirthdayRecord, error) {
	records, err := s.fetchJoined(ctx, guildID)
	if err != nil {
		return nil, err
	}
	today := IndexOfTime(s.Clock.Now().UTC())

	var matches []BirthdayRecord
	for _, r := range records {
		idx, err := Index(r.Month, r.Day)
		if err != nil {
			return nil, err
		}
		if idx == today {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// fetchJoined loads the stored rows and joins them with the live roster.
// Rows whose member has left the guild are dropped.
func (s *Service) fetchJoined(ctx context.Context, guildID uint64) ([]BirthdayRecord, error) {
	rows, err := s.Store.FetchBirthdays(ctx, guildID)
	if err != nil {
		return nil, err
	}
	members, err := s.Roster.Members(ctx, guildID)
	if err != nil {
		return nil, err
	}
	byID := roster.ByID(members)

	records := make([]BirthdayRecord, 0, len(rows))
	for _, row := range rows {
		m, ok := byID[row.UserID]
		if !ok {
			slog.Debug(config.MsgSkippedMember,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyGuild, guildID,
				config.LogKeyUser, row.UserID,
			)
			continue
		}
		records = append(records, BirthdayRecord{
			UserID:      row.UserID,
			Month:       row.Month,
			Day:         row.Day,
			DisplayName: m.DisplayName(),
			Timezone:    row.Timezone,
		})
	}
	return records, nil
}

// rosterSnapshot captures a point-in-time member lookup plus the guild name.
func (s *Service) rosterSnapshot(ctx context.Context, guildID uint64) (MemberLookup, string, error) {
	members, err := s.Roster.Members(ctx, guildID)
	if err != nil {
		return nil, "", err
	}
	guildName, err := s.Roster.GuildName(ctx, guildID)
	if err != nil || guildName == "" {
		guildName = config.FallbackGuildName
	}
	byID := roster.ByID(members)
	lookup := func(userID uint64) (roster.Member, bool) {
		m, ok := byID[userID]
		return m, ok
	}
	return lookup, guildName, nil
}
