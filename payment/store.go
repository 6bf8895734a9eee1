package payment

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("payment not found")

// Record is the persisted payment. MPID and Reference are assigned at
// creation and immutable; TxID is set exactly once; Status only moves
// forward through the state machine.
type Record struct {
	ID        uint
	MPID      string
	OrderID   string
	Chain     string
	Asset     string
	Amount    string
	Recipient string
	Payer     string
	Reference string
	Status    Status
	TxID      string
	Label     string
	Message   string
	ReturnURL string
	Raw       []byte // snapshot of the validated intent, opaque past this point
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the narrow contract the core holds against the storage layer.
// Implementations must make SettleFromPending a conditional write
// ("set status=X where status=PENDING") so that at most one terminal
// transition takes effect under concurrent polls.
type Store interface {
	CreatePayment(ctx context.Context, rec *Record) error
	PaymentByMPID(ctx context.Context, mpid string) (*Record, error)
	PaymentByReference(ctx context.Context, reference string) (*Record, error)

	// SetTransactionID records the observed transaction id once. Calling it
	// again, with the same or a different value, is a no-op, not an error.
	SetTransactionID(ctx context.Context, mpid, txID string) error

	// SettleFromPending transitions status only when the stored status is
	// still PENDING. A lost race is silently discarded.
	SettleFromPending(ctx context.Context, mpid string, to Status) error

	// SetPayer records the payer wallet once it becomes known.
	SetPayer(ctx context.Context, mpid, payer string) error

	CountPayments(ctx context.Context) (int64, error)
	ListPayments(ctx context.Context, offset, limit int) ([]Record, error)
}
