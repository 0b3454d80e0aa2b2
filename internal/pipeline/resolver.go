package pipeline

// ResolveMailboxes determines the target mailbox list for a run.
// An explicit list wins, in the order given, even when empty: an empty
// explicit list yields an empty run. Only when no list was supplied does
// the session principal become the single target.
func ResolveMailboxes(principal string, explicit []string) []string {
	if explicit != nil {
		out := make([]string, len(explicit))
		copy(out, explicit)
		return out
	}
	if principal == "" {
		return nil
	}
	return []string{principal}
}
