package pipeline

import "fmt"

// QueryError records a failed mailbox query. The run skips the mailbox
// and continues; the error is collected on the summary.
type QueryError struct {
	Mailbox string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed for mailbox %s: %v", e.Mailbox, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ActionError records a failed action on a single item. The run skips the
// item and continues with the next one.
type ActionError struct {
	Mailbox string
	ItemID  string
	Subject string
	Err     error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action failed for item %q in mailbox %s: %v", e.Subject, e.Mailbox, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }
