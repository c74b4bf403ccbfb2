package announce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBirthdayMessage_JSONRoundTrip(t *testing.T) {
	msg := &BirthdayMessage{
		GuildID:     4242,
		UserID:      1001,
		DisplayName: "alice",
		Month:       3,
		Day:         1,
		MonthDay:    "Mar-01",
		Timestamp:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"guild_id": 4242,
		"user_id": 1001,
		"display_name": "alice",
		"month": 3,
		"day": 1,
		"month_day": "Mar-01",
		"timestamp": "2026-03-01T00:00:00Z"
	}`, string(body), "wire format is part of the consumer contract")

	parsed, err := BirthdayMessageFromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, msg, parsed)
}

func TestBirthdayMessageFromJSON_RejectsMalformedPayload(t *testing.T) {
	_, err := BirthdayMessageFromJSON([]byte(`{"guild_id": "not-a-number"}`))
	assert.Error(t, err, "malformed payloads should not decode silently")
}
