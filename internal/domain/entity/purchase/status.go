package purchase

// Status is the lifecycle state of a purchase. The only transitions the
// system performs are pending -> successful and pending -> failed; both
// are terminal. Cancelled is reachable only through a manual path.
type Status string

const (
	StatusPending    Status = "pending"
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

func (s Status) String() string {
	return string(s)
}
