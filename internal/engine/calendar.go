package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-friends/internal/config"
)

// Calendar renders the birthdays and important dates of the next horizonDays
// as an iCalendar feed. Recurring events carry an RRULE so calendar clients
// keep showing them past the horizon. A non-empty reminderTrigger (ISO8601
// duration such as "-P1D") adds a display alarm to every event.
// It returns the encoded feed and the number of events.
func (g *Generator) Calendar(friends []Friend, horizonDays int, reminderTrigger string) ([]byte, int, error) {
	now := g.now()
	t := texts{book: g.Phrases}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, o := range UpcomingBirthdays(friends, now, horizonDays) {
		summary := t.feedBirthday(displayName(o.Friend), o.AgeNext)
		e := newDayEvent(feedUID(o.Friend.ID, string(KindBirthday), "", FormatDate(o.Date)), summary, o.Date)
		setRRule(e, config.RRuleYearly)
		finishEvent(cal, e, dtStampProp, reminderTrigger, summary)
	}

	for _, o := range UpcomingImportantDatesAll(friends, now, horizonDays) {
		_, summary := t.importantDateNotification(displayName(o.Friend), o.Event.Description, o.Date)
		e := newDayEvent(feedUID(o.Friend.ID, string(KindImportantDate), o.Event.Description, FormatDate(o.Date)), summary, o.Date)
		switch o.Event.Recurrence {
		case RecurrenceYearly:
			setRRule(e, config.RRuleYearly)
		case RecurrenceMonthly:
			setRRule(e, config.RRuleMonthly)
		}
		finishEvent(cal, e, dtStampProp, reminderTrigger, summary)
	}

	count := len(cal.Children)

	// go-ical refuses to encode a calendar without components.
	if count == 0 {
		return []byte(config.StubVCalendar), 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedRefreshed,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, count,
	)
	return buf.Bytes(), count, nil
}

func newDayEvent(uid, summary string, on time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uid)
	event.Props.SetText(config.PropSummary, summary)

	// VALUE=DATE all-day event
	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(on)
	event.Props.Set(dtStartProp)
	return event
}

func finishEvent(cal *ical.Calendar, e *ical.Event, stamp *ical.Prop, trigger, summary string) {
	e.Props.Set(stamp)
	if trigger != "" {
		addAlarm(e, trigger, summary)
	}
	cal.Children = append(cal.Children, e.Component)
}

// setRRule writes the rule verbatim; SetText would escape it as TEXT.
func setRRule(e *ical.Event, rule string) {
	p := ical.NewProp(config.PropRRule)
	p.Value = rule
	e.Props.Set(p)
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

// feedUID is stable across refreshes for the same friend and occurrence.
func feedUID(friendID, kind, description, date string) string {
	input := fmt.Sprintf(config.FormatHashInput, friendID, kind, description, config.UIDSalt+date)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)
}
