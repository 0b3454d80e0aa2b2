package pipeline

// Reporter receives progress notifications while a run executes.
// Implementations drive console output and the CSV audit trail; the
// pipeline itself never prints.
//
// ItemStart fires before the action is attempted so that an audit record
// exists even when the action itself fails mid-flight.
type Reporter interface {
	MailboxStart(index, total int, mailbox string)
	MailboxSkipped(index, total int, mailbox string, err error)
	MailboxDone(index, total int, mailbox string, acted int)
	ItemStart(mailbox string, item Item)
	ItemDone(mailbox string, item Item, err error)
}

// NopReporter discards all notifications.
type NopReporter struct{}

func (NopReporter) MailboxStart(int, int, string)            {}
func (NopReporter) MailboxSkipped(int, int, string, error)   {}
func (NopReporter) MailboxDone(int, int, string, int)        {}
func (NopReporter) ItemStart(string, Item)                   {}
func (NopReporter) ItemDone(string, Item, error)             {}
