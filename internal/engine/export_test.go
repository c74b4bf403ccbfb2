package engine_test

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/engine"
	"github.com/tartampluch/guild-birthday/internal/roster"
)

func snapshot(members ...roster.Member) engine.MemberLookup {
	byID := roster.ByID(members)
	return func(userID uint64) (roster.Member, bool) {
		m, ok := byID[userID]
		return m, ok
	}
}

func TestExporterText_OneLinePerRecord(t *testing.T) {
	rows := []engine.StoredBirthday{
		{UserID: 1, Month: 3, Day: 1},
		{UserID: 2, Month: 3, Day: 1},
	}
	lookup := snapshot(
		roster.Member{UserID: 1, Username: "Alice", Discriminator: "0001"},
		roster.Member{UserID: 2, Username: "bob", Discriminator: "1337", Nickname: "Bobby"},
	)

	out := engine.Exporter{}.Text("Birthdays in Testers:", rows, lookup)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "Birthdays in Testers:", lines[0])
	assert.Empty(t, lines[1], "header is followed by a blank line")
	// Same date, but the listing stays one line per user, never grouped.
	assert.Equal(t, "● Mar-01: 1 Alice#0001", lines[2])
	assert.Equal(t, "● Mar-01: 2 bob#1337 - Nickname: Bobby", lines[3])
}

func TestExporterText_SkipsDepartedMembers(t *testing.T) {
	rows := []engine.StoredBirthday{
		{UserID: 1, Month: 1, Day: 5},
		{UserID: 99, Month: 1, Day: 6}, // left the guild between fetch and render
	}
	lookup := snapshot(roster.Member{UserID: 1, Username: "Alice", Discriminator: "0001"})

	out := engine.Exporter{}.Text("header", rows, lookup)

	assert.Contains(t, out, "Alice#0001")
	assert.NotContains(t, out, "99", "departed members are skipped silently, not an error")
}

func TestExporterCSV_HeaderAndFraming(t *testing.T) {
	rows := []engine.StoredBirthday{{UserID: 7, Month: 12, Day: 31}}
	lookup := snapshot(roster.Member{UserID: 7, Username: "zoe", Discriminator: "0042"})

	out := engine.Exporter{}.CSV(rows, lookup)

	assert.True(t, strings.HasPrefix(out, config.CSVHeader+config.CRLF), "header row must come first")
	assert.True(t, strings.HasSuffix(out, config.CRLF), "every line ends with CRLF")
	assert.NotContains(t, strings.ReplaceAll(out, config.CRLF, ""), "\n", "no bare LF terminators")
	assert.Contains(t, out, `7,"zoe#0042",,Dec-31,12,31`)
}

func TestExporterCSV_NicknameWithCommaRoundTrips(t *testing.T) {
	rows := []engine.StoredBirthday{{UserID: 1, Month: 3, Day: 1}}
	nickname := `Smith, "The Boss" Jr.`
	lookup := snapshot(roster.Member{UserID: 1, Username: "alice", Discriminator: "0001", Nickname: nickname})

	out := engine.Exporter{}.CSV(rows, lookup)

	parsed, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err, "standards-compliant output must parse cleanly")
	require.Len(t, parsed, 2)
	assert.Equal(t, strings.Split(config.CSVHeader, ","), parsed[0])
	assert.Equal(t, nickname, parsed[1][2], "nickname must survive the round-trip")
	assert.Equal(t, "alice#0001", parsed[1][1])
}

func TestExporterCSV_LegacyQuotingKeepsBareQuotes(t *testing.T) {
	rows := []engine.StoredBirthday{{UserID: 1, Month: 3, Day: 1}}
	lookup := snapshot(roster.Member{UserID: 1, Username: "alice", Discriminator: "0001", Nickname: `a "quoted" nick`})

	out := engine.Exporter{LegacyQuoting: true}.CSV(rows, lookup)

	// The legacy exporter never doubled inner quotes; the raw text shows the
	// bare quote and a compliant reader chokes on it.
	assert.Contains(t, out, `"a "quoted" nick"`)
	_, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	assert.Error(t, err, "legacy output is not standards-compliant by design")
}
