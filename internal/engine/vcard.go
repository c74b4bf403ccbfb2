package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/roster"
)

// ImportStats summarizes one vCard import pass.
type ImportStats struct {
	Processed int
	Matched   int
	Skipped   int
}

// ImportVCards reads a vCard stream and converts every card with a parseable
// BDAY and a roster match into a StoredBirthday. Cards without a date, with a
// malformed date, or whose name matches no member are skipped with a log,
// never aborting the whole import.
func ImportVCards(ctx context.Context, r io.Reader, members []roster.Member) ([]StoredBirthday, ImportStats, error) {
	log := slog.With(config.LogKeyComponent, config.CompEngine)
	decoder := vcard.NewDecoder(r)

	var (
		stats ImportStats
		rows  []StoredBirthday
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, ImportStats{}, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			stats.Skipped++
			continue
		}
		stats.Processed++

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			stats.Skipped++
			continue
		}
		month, day, err := parseMonthDay(bday.Value)
		if err != nil {
			log.Debug(config.MsgSkippedDate, config.LogKeyKey, bday.Value)
			stats.Skipped++
			continue
		}

		// Name strategy: FN (formatted) over N (structured).
		name := ""
		if fn := card.Get(config.VCardFN); fn != nil {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil {
			name = n.Value
		}

		member, ok := matchMember(members, name)
		if !ok {
			log.Debug(config.MsgSkippedNoMatch, config.LogKeyName, name)
			stats.Skipped++
			continue
		}

		rows = append(rows, StoredBirthday{UserID: member.UserID, Month: month, Day: day})
		stats.Matched++
	}

	log.Info(config.MsgImported,
		config.LogKeyCount, stats.Processed,
		config.LogKeyMatched, stats.Matched,
		config.LogKeySkipped, stats.Skipped,
	)
	return rows, stats, nil
}

// matchMember compares the card name case-insensitively against usernames
// first, then nicknames. First match wins, in roster order.
func matchMember(members []roster.Member, name string) (roster.Member, bool) {
	if name == "" {
		return roster.Member{}, false
	}
	for _, m := range members {
		if strings.EqualFold(m.Username, name) {
			return m, true
		}
	}
	for _, m := range members {
		if m.Nickname != "" && strings.EqualFold(m.Nickname, name) {
			return m, true
		}
	}
	return roster.Member{}, false
}

// parseMonthDay handles the vCard BDAY formats seen in the wild, including
// the year-less --MM-DD truncations. Only the calendar position is kept.
func parseMonthDay(value string) (int, int, error) {
	formats := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
		config.DateFormatNoYearD,
		config.DateFormatNoYearB,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			return int(t.Month()), t.Day(), nil
		}
	}
	return 0, 0, fmt.Errorf("%s: %q", config.ErrDateParse, value)
}
