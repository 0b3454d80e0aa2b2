package pipeline

import (
	"fmt"
	"strings"
)

type criterionKind int

const (
	criterionSubject criterionKind = iota
	criterionSender
)

// Criterion selects items either by exact subject or by sender address.
// The two are mutually exclusive by construction: a Criterion is built by
// exactly one of BySubject or BySender and cannot hold both.
type Criterion struct {
	kind criterionKind
	text string
}

// BySubject builds a criterion matching items whose subject equals text.
func BySubject(text string) Criterion {
	return Criterion{kind: criterionSubject, text: text}
}

// BySender builds a criterion matching items organized or sent by address.
func BySender(address string) Criterion {
	return Criterion{kind: criterionSender, text: address}
}

// Subject returns the subject text and true when this is a subject criterion.
func (c Criterion) Subject() (string, bool) {
	return c.text, c.kind == criterionSubject
}

// Sender returns the sender address and true when this is a sender criterion.
func (c Criterion) Sender() (string, bool) {
	return c.text, c.kind == criterionSender
}

// Matches reports whether the item satisfies the criterion.
// Subject comparison is exact; sender comparison is case-insensitive since
// SMTP addresses round-trip through the API with inconsistent casing.
func (c Criterion) Matches(it Item) bool {
	switch c.kind {
	case criterionSubject:
		return it.Subject == c.text
	case criterionSender:
		return strings.EqualFold(it.Organizer, c.text)
	}
	return false
}

// String describes the criterion for log output.
func (c Criterion) String() string {
	if c.kind == criterionSender {
		return fmt.Sprintf("sender=%q", c.text)
	}
	return fmt.Sprintf("subject=%q", c.text)
}
