package domain

// IsValidStatus checks if a status is one of the four project states
func IsValidStatus(status string) bool {
	return status == StatusPending ||
		status == StatusRunning ||
		status == StatusCompleted ||
		status == StatusFailed
}

// CanTransition reports whether the scrape pipeline may move a project
// from one status to another. A finished project may be run again.
func CanTransition(from, to string) bool {
	switch to {
	case StatusRunning:
		return from == StatusPending || from == StatusCompleted || from == StatusFailed
	case StatusCompleted:
		return from == StatusRunning
	case StatusFailed:
		return from == StatusPending || from == StatusRunning
	}
	return false
}

// IsTerminal reports whether no scrape is in flight for the status.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}
