package mail

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/xavierca1/vibe-registration/internal/entity"
)

// Calendar builds a single-VEVENT iCalendar (RFC 5545) invite for the
// registration. UID is derived from the reference so re-sent invites update
// the same calendar entry.
func Calendar(event entity.Event, reg *entity.Registration, now time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetProductId("-//" + event.OrganizedBy + "//Vibe Coding Registration//EN")
	cal.SetMethod(ics.MethodRequest)

	ev := cal.AddEvent(reg.Reference + "@vibe-coding")
	ev.SetDtStampTime(now.UTC())
	ev.SetStartAt(event.Start.UTC())
	ev.SetEndAt(event.End.UTC())
	ev.SetSummary(event.Title)
	ev.SetLocation(event.Location)
	ev.SetDescription("Reference: " + reg.Reference + "\nBring your laptop and charger.")
	if reg.HasEmail() {
		ev.AddAttendee(reg.Email, ics.WithCN(reg.DisplayName()), ics.WithRSVP(false))
	}
	ev.SetStatus(ics.ObjectStatusConfirmed)

	alarm := ev.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetTrigger("-PT2H")
	alarm.SetProperty(ics.ComponentPropertyDescription, event.Title)

	return []byte(cal.Serialize())
}
