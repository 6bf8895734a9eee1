package payment

import (
	"context"
	"errors"
	"fmt"

	"solpay/chain"
	"solpay/logger"
)

// ErrRetryable wraps transient chain failures: the caller may poll again,
// stored status is untouched.
var ErrRetryable = errors.New("retryable poll failure")

// Verifier drives the settlement state machine. It is stateless; every poll
// is an independent request against the shared chain client and store, so
// concurrent duplicate polls are safe.
type Verifier struct {
	store Store
	chain chain.Client
	log   logger.Logger
}

func NewVerifier(store Store, chainClient chain.Client, log logger.Logger) *Verifier {
	return &Verifier{store: store, chain: chainClient, log: log}
}

// Poll runs one settlement check for the payment identified by mpid.
//
// A settled record is returned immediately with no chain query. Otherwise the
// chain is asked for the most recent signature mentioning the reference key;
// no signature means the transfer has not been observed and the payment stays
// PENDING. A found transaction settles PENDING to CONFIRMED, or to FAILED
// when its execution carried a chain-level error. Transitions are conditional
// writes, so a concurrent poll losing the race is discarded silently.
func (v *Verifier) Poll(ctx context.Context, mpid string) (Status, error) {
	rec, err := v.store.PaymentByMPID(ctx, mpid)
	if err != nil {
		return "", err
	}

	if rec.Status.Settled() {
		return rec.Status, nil
	}

	sig, err := v.chain.LatestReferenceSignature(ctx, rec.Reference)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRetryable, err)
	}
	if sig == "" {
		// Not observed yet. Expected intermediate state, not an error.
		return StatusPending, nil
	}

	res, err := v.chain.TransactionResult(ctx, sig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRetryable, err)
	}

	next := StatusConfirmed
	if res.Failed {
		next = StatusFailed
		v.log.Warn("payment transaction failed on chain", map[string]any{
			"mpid": mpid, "signature": sig, "err": res.ExecErr,
		})
	}

	if err := v.store.SetTransactionID(ctx, mpid, sig); err != nil {
		return "", err
	}
	if err := v.store.SettleFromPending(ctx, mpid, next); err != nil {
		return "", err
	}

	v.log.Info("payment settled", map[string]any{
		"mpid": mpid, "status": next, "signature": sig,
	})
	return next, nil
}
