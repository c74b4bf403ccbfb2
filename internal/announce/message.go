package announce

import (
	"encoding/json"
	"time"
)

// BirthdayMessage is the payload published for each member whose birthday
// falls on the current day. Consumers fetch any extra detail themselves; the
// message carries just enough to address and phrase an announcement.
type BirthdayMessage struct {
	GuildID     uint64    `json:"guild_id"`
	UserID      uint64    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Month       int       `json:"month"`
	Day         int       `json:"day"`
	MonthDay    string    `json:"month_day"`
	Timestamp   time.Time `json:"timestamp"`
}

func (m *BirthdayMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BirthdayMessageFromJSON(data []byte) (*BirthdayMessage, error) {
	var msg BirthdayMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
