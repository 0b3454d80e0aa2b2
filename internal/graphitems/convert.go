// Package graphitems implements the Microsoft Graph backed item source and
// action executors for the pipeline: querying calendar events and mail
// messages, and deleting items by identifier.
package graphitems

import (
	"strings"
	"time"

	"github.com/microsoftgraph/msgraph-sdk-go/models"

	"github.com/agallego-css/GraphTools/internal/pipeline"
)

// Graph returns event times as naive strings in the timezone requested via
// the Prefer header. With outlook.timezone="UTC" both layouts below are UTC.
var sdkTimeLayouts = []string{
	"2006-01-02T15:04:05.0000000",
	"2006-01-02T15:04:05",
}

func parseGraphTime(dtz models.DateTimeTimeZoneable) time.Time {
	if dtz == nil || dtz.GetDateTime() == nil {
		return time.Time{}
	}
	raw := *dtz.GetDateTime()
	for _, layout := range sdkTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// eventToItem normalizes a Graph calendar event. Absent optional fields
// become empty strings so downstream code never touches SDK pointers.
func eventToItem(event models.Eventable, mailbox string) pipeline.Item {
	item := pipeline.Item{
		ID:      derefStr(event.GetId()),
		Subject: derefStr(event.GetSubject()),
		Start:   parseGraphTime(event.GetStart()),
		End:     parseGraphTime(event.GetEnd()),
		Mailbox: mailbox,
		Kind:    pipeline.KindMeeting,
	}

	if organizer := event.GetOrganizer(); organizer != nil {
		if addr := organizer.GetEmailAddress(); addr != nil {
			item.Organizer = derefStr(addr.GetAddress())
		}
	}

	for _, attendee := range event.GetAttendees() {
		if addr := attendee.GetEmailAddress(); addr != nil {
			if a := derefStr(addr.GetAddress()); a != "" {
				item.Attendees = append(item.Attendees, a)
			}
		}
	}

	if location := event.GetLocation(); location != nil {
		item.Location = derefStr(location.GetDisplayName())
	}

	if eventType := event.GetTypeEscaped(); eventType != nil {
		item.Type = eventType.String()
	}

	return item
}

// messageToItem normalizes a Graph mail message. The received time maps to
// Start so the pipeline's threshold logic applies uniformly.
func messageToItem(message models.Messageable, mailbox string) pipeline.Item {
	item := pipeline.Item{
		ID:      derefStr(message.GetId()),
		Subject: derefStr(message.GetSubject()),
		Type:    "message",
		Mailbox: mailbox,
		Kind:    pipeline.KindMessage,
	}

	if from := message.GetFrom(); from != nil {
		if addr := from.GetEmailAddress(); addr != nil {
			item.Organizer = derefStr(addr.GetAddress())
		}
	}

	for _, recipient := range message.GetToRecipients() {
		if addr := recipient.GetEmailAddress(); addr != nil {
			if a := derefStr(addr.GetAddress()); a != "" {
				item.Attendees = append(item.Attendees, a)
			}
		}
	}

	if received := message.GetReceivedDateTime(); received != nil {
		item.Start = received.UTC()
	}

	return item
}

// escapeODataString escapes single quotes for interpolation into an OData
// $filter literal.
func escapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
