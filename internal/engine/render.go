package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tartampluch/guild-birthday/internal/config"
)

// UpcomingMessages are the fixed strings of the upcoming listing. The command
// layer injects localized values; the zero-value helpers below supply English
// fallbacks so the renderer works standalone.
type UpcomingMessages struct {
	Header           string
	TruncationNotice string
	NoUpcoming       string
}

// DefaultUpcomingMessages returns the built-in English strings.
func DefaultUpcomingMessages() UpcomingMessages {
	return UpcomingMessages{
		Header:           config.FallbackUpcomingHeader,
		TruncationNotice: config.FallbackTruncationNotice,
		NoUpcoming:       config.FallbackNoUpcoming,
	}
}

// renderBuffer is an append-only text accumulator with a size cap, measured
// in runes. Once an append pushes it past the cap it flips to full and
// rejects everything after; the truncation notice is the only text allowed
// through afterwards. Scoped to a single render call.
type renderBuffer struct {
	b     strings.Builder
	cap   int
	runes int
	full  bool
}

func newRenderBuffer(cap int) *renderBuffer {
	return &renderBuffer{cap: cap}
}

// append writes s unless the buffer is already full, and reports whether the
// buffer may still take more text afterwards.
func (rb *renderBuffer) append(s string) bool {
	if rb.full {
		return false
	}
	rb.b.WriteString(s)
	rb.runes += utf8.RuneCountInString(s)
	if rb.runes > rb.cap {
		rb.full = true
	}
	return !rb.full
}

// force writes s regardless of the full flag.
func (rb *renderBuffer) force(s string) {
	rb.b.WriteString(s)
}

func (rb *renderBuffer) String() string {
	return rb.b.String()
}

// RenderUpcoming builds the bounded text listing for the given groups, in the
// order they were collected from the window scan. The size check runs after
// every single name, so truncation is a hard stop and can cut a group in the
// middle, exactly at the name that crossed the cap.
func RenderUpcoming(groups []ListingGroup, maxSize int, msgs UpcomingMessages) string {
	if len(groups) == 0 {
		return msgs.NoUpcoming
	}

	buf := newRenderBuffer(maxSize)
	buf.append(msgs.Header)

	for _, g := range groups {
		if !buf.append(config.LineBreak + config.LineBreak + fmt.Sprintf(config.FormatGroupHeader, MonthDay(g.Month, g.Day))) {
			break
		}
		truncated := false
		for i, name := range g.Names {
			sep := config.NameSeparator
			if i == 0 {
				sep = " "
			}
			if !buf.append(sep + name) {
				truncated = true
				break
			}
		}
		if truncated {
			break
		}
	}

	if buf.full {
		buf.force(config.LineBreak + msgs.TruncationNotice)
	}
	return buf.String()
}
