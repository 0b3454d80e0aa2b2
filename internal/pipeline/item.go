// Package pipeline implements the mailbox processing flow shared by all
// actions: resolve the target mailboxes, query each one for matching items,
// refine the matches client-side, and apply an action to every refined item.
// Processing is strictly sequential; the pipeline holds no global state and
// reports progress through an injected Reporter.
package pipeline

import "time"

// Kind discriminates calendar items from mail items.
type Kind string

const (
	KindMeeting Kind = "meeting"
	KindMessage Kind = "message"
)

// Item is the normalized representation of a mailbox item flowing through
// the pipeline. Calendar items populate every field; mail items leave
// Location and End empty and carry the received time in Start.
// Missing optional fields from the remote API are empty strings, never nil.
type Item struct {
	ID        string
	Subject   string
	Organizer string // organizer address for meetings, sender address for messages
	Attendees []string
	Location  string
	Start     time.Time
	End       time.Time
	Type      string // event type (singleInstance, occurrence, ...) or message
	Mailbox   string // owning mailbox, set by the query engine
	Kind      Kind
}
