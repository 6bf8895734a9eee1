package payment

// Status is the payment lifecycle state. The settlement poller only ever
// moves PENDING to CONFIRMED or FAILED; the remaining settled states are
// reached by administrative action.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusProcessed Status = "PROCESSED"
	StatusConfirmed Status = "CONFIRMED"
	StatusFinalized Status = "FINALIZED"
	StatusFailed    Status = "FAILED"
	StatusExpired   Status = "EXPIRED"
	StatusRefunded  Status = "REFUNDED"
	StatusCancelled Status = "CANCELLED"
)

var settled = map[Status]bool{
	StatusConfirmed: true,
	StatusFinalized: true,
	StatusFailed:    true,
	StatusExpired:   true,
	StatusRefunded:  true,
	StatusCancelled: true,
}

// Settled reports whether the poller will never transition this status
// further. A settled status short-circuits polling with no chain query.
func (s Status) Settled() bool {
	return settled[s]
}
