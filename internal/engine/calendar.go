package engine

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/guild-birthday/internal/config"
)

// FeedBuilder renders a guild's birthday records as a subscribable
// iCalendar feed.
type FeedBuilder struct {
	Clock Clock

	// FormatSummary lets the caller inject a localized event title.
	FormatSummary func(name string) string

	// ReminderTrigger is an optional ISO 8601 duration (e.g. "-P1D") adding a
	// display alarm to every event. Empty disables alarms.
	ReminderTrigger string
}

// Build encodes the records into an ICS document. Events are generated for
// the previous, current and next year of each record so calendar clients can
// scroll across year boundaries without an immediate refresh.
func (fb *FeedBuilder) Build(records []BirthdayRecord) ([]byte, error) {
	if len(records) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	now := fb.Clock.Now().UTC()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now)

	currentYear := now.Year()
	targetYears := []int{currentYear - 1, currentYear, currentYear + 1}

	for _, r := range records {
		summary := fmt.Sprintf(config.FallbackEvtSummary, r.DisplayName)
		if fb.FormatSummary != nil {
			summary = fb.FormatSummary(r.DisplayName)
		}

		for _, y := range targetYears {
			event := ical.NewEvent()
			event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, r.UserID, y, config.ICalDomain))
			event.Props.SetText(config.PropSummary, summary)

			// Feb 29 normalizes to Mar 1 in non-leap target years, which is
			// the conventional observance day for leaplings.
			eventDate := time.Date(y, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC)
			dtStartProp := ical.NewProp(config.PropDTStart)
			dtStartProp.SetDate(eventDate)
			event.Props.Set(dtStartProp)
			event.Props.Set(dtStampProp)

			if fb.ReminderTrigger != "" {
				addAlarm(event, fb.ReminderTrigger, summary)
			}

			cal.Children = append(cal.Children, event.Component)
		}
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set trigger manually to avoid "VALUE=TEXT" param
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
