package engine

import (
	"fmt"
	"strings"

	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/roster"
)

// MemberLookup resolves a user id against a roster snapshot taken at the
// start of the export. Returning ok=false means the member left between the
// fetch and the render; such records are skipped silently.
type MemberLookup func(userID uint64) (roster.Member, bool)

// Exporter renders the full, unwindowed record set.
//
// LegacyQuoting reproduces the quote handling of the original exporter,
// which emitted literal double quotes inside CSV fields without doubling
// them. The default is off: fields follow RFC 4180 and survive a round-trip
// through any compliant reader.
type Exporter struct {
	LegacyQuoting bool
}

// Text renders the plain listing: the given header line, a blank line, then
// one line per record (one per user, not grouped by date).
func (e Exporter) Text(header string, records []StoredBirthday, lookup MemberLookup) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(config.LineBreak)

	for _, r := range records {
		m, ok := lookup(r.UserID)
		if !ok {
			continue
		}
		b.WriteString(config.LineBreak)
		b.WriteString(fmt.Sprintf(config.FormatExportLine, MonthDay(r.Month, r.Day), r.UserID, m.Tag()))
		if m.Nickname != "" {
			b.WriteString(fmt.Sprintf(config.FormatNicknameSuffix, m.Nickname))
		}
	}
	return b.String()
}

// CSV renders the RFC 4180 listing with CRLF terminators and the fixed
// header row. Username is always quoted; the remaining fields are quoted
// only when their content requires it.
func (e Exporter) CSV(records []StoredBirthday, lookup MemberLookup) string {
	var b strings.Builder
	b.WriteString(config.CSVHeader)
	b.WriteString(config.CRLF)

	for _, r := range records {
		m, ok := lookup(r.UserID)
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("%d,%s,%s,%s,%d,%d",
			r.UserID,
			e.quoteAlways(m.Tag()),
			e.quoteIfNeeded(m.Nickname),
			MonthDay(r.Month, r.Day),
			r.Month,
			r.Day,
		))
		b.WriteString(config.CRLF)
	}
	return b.String()
}

// quoteAlways wraps a field in double quotes unconditionally.
func (e Exporter) quoteAlways(field string) string {
	return `"` + e.escape(field) + `"`
}

// quoteIfNeeded wraps a field in double quotes when it contains a comma,
// quote or line break.
func (e Exporter) quoteIfNeeded(field string) string {
	if strings.ContainsAny(field, ",\"\r\n") {
		return `"` + e.escape(field) + `"`
	}
	return field
}

func (e Exporter) escape(field string) string {
	if e.LegacyQuoting {
		// Inner quotes pass through bare. Not standards-compliant; kept only
		// for byte compatibility with output produced by older deployments.
		return field
	}
	return strings.ReplaceAll(field, `"`, `""`)
}
