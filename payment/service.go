package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"solpay/chain"
	"solpay/logger"
)

const ChainSolana = "solana"

// Service owns intent creation and unsigned-transaction building. Chain
// clients are injected once at startup and shared.
type Service struct {
	assets     AssetTable
	memoMaxLen int
	store      Store
	chains     map[string]chain.Client
	log        logger.Logger
}

func NewService(assets AssetTable, memoMaxLen int, store Store, chains map[string]chain.Client, log logger.Logger) *Service {
	return &Service{
		assets:     assets,
		memoMaxLen: memoMaxLen,
		store:      store,
		chains:     chains,
		log:        log,
	}
}

// Checkout is everything the init endpoint returns: the persisted record,
// the canonical payment URI and the reference key that tags the transfer.
type Checkout struct {
	Record    *Record
	URI       string
	Reference string
}

func (s *Service) chainFor(name string) (chain.Client, error) {
	if name == "" {
		name = ChainSolana
	}
	c, ok := s.chains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", chain.ErrUnsupportedChain, name)
	}
	return c, nil
}

// CreateIntent validates the intent, mints a fresh reference key and mpid,
// persists the record as PENDING and returns the payment link. The validated
// intent is snapshotted into the record for audit.
func (s *Service) CreateIntent(ctx context.Context, intent *Intent) (*Checkout, error) {
	if err := intent.Validate(s.assets, s.memoMaxLen); err != nil {
		return nil, err
	}

	cl, err := s.chainFor(intent.Chain)
	if err != nil {
		return nil, err
	}
	if err := cl.ValidateAddress(intent.Recipient); err != nil {
		return nil, err
	}
	if intent.Chain != "" && intent.Chain != ChainSolana {
		return nil, fmt.Errorf("%w: settlement is only implemented for %s", chain.ErrUnsupportedChain, ChainSolana)
	}

	asset, err := s.assets.Lookup(intent.Asset)
	if err != nil {
		return nil, err
	}
	amount, err := ParseAmount(intent.Amount)
	if err != nil {
		return nil, err
	}
	// Reject amounts that cannot settle before anything is persisted.
	if _, err := asset.BaseUnits(amount); err != nil {
		return nil, err
	}

	reference, err := NewReference()
	if err != nil {
		return nil, fmt.Errorf("generate reference key: %w", err)
	}

	raw, err := json.Marshal(intent)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		MPID:      uuid.NewString(),
		OrderID:   intent.OrderID,
		Chain:     ChainSolana,
		Asset:     asset.Symbol,
		Amount:    amount.String(),
		Recipient: intent.Recipient,
		Reference: reference,
		Status:    StatusPending,
		Label:     intent.Label,
		Message:   intent.Message,
		ReturnURL: intent.ReturnURL,
		Raw:       raw,
	}
	if err := s.store.CreatePayment(ctx, rec); err != nil {
		return nil, err
	}

	uri := PaymentURI{
		Recipient: intent.Recipient,
		Amount:    amount,
		SPLToken:  asset.Mint,
		Reference: reference,
		Label:     intent.Label,
		Message:   intent.Message,
		Memo:      intent.OrderID,
	}.Encode()

	s.log.Info("payment intent created", map[string]any{
		"mpid": rec.MPID, "order_id": rec.OrderID, "asset": rec.Asset, "amount": rec.Amount,
	})

	return &Checkout{Record: rec, URI: uri, Reference: reference}, nil
}

// URIFor rebuilds the canonical payment link for a stored record.
func (s *Service) URIFor(rec *Record) (string, error) {
	asset, err := s.assets.Lookup(rec.Asset)
	if err != nil {
		return "", err
	}
	amount, err := ParseAmount(rec.Amount)
	if err != nil {
		return "", err
	}
	return PaymentURI{
		Recipient: rec.Recipient,
		Amount:    amount,
		SPLToken:  asset.Mint,
		Reference: rec.Reference,
		Label:     rec.Label,
		Message:   rec.Message,
		Memo:      rec.OrderID,
	}.Encode(), nil
}

// UnsignedTx rebuilds the transfer for a stored payment with the given payer
// wallet, against a fresh blockhash. Used by the deep-link sign step.
func (s *Service) UnsignedTx(ctx context.Context, rec *Record, payer string) (*solana.Transaction, error) {
	cl, err := s.chainFor(rec.Chain)
	if err != nil {
		return nil, err
	}

	asset, err := s.assets.Lookup(rec.Asset)
	if err != nil {
		return nil, err
	}
	amount, err := ParseAmount(rec.Amount)
	if err != nil {
		return nil, err
	}
	blockhash, err := cl.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	return BuildTransferTx(TransferRequest{
		Payer:     payer,
		Recipient: rec.Recipient,
		Amount:    amount,
		Asset:     asset,
		Reference: rec.Reference,
		OrderID:   rec.OrderID,
		Blockhash: blockhash,
	})
}

// RecordTransaction captures the observed transaction id, once.
func (s *Service) RecordTransaction(ctx context.Context, mpid, txID string) error {
	if _, err := s.store.PaymentByMPID(ctx, mpid); err != nil {
		return err
	}
	return s.store.SetTransactionID(ctx, mpid, txID)
}

func (s *Service) Payment(ctx context.Context, mpid string) (*Record, error) {
	return s.store.PaymentByMPID(ctx, mpid)
}

func (s *Service) ListPayments(ctx context.Context, page, pageSize int) ([]Record, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	total, err := s.store.CountPayments(ctx)
	if err != nil {
		return nil, 0, err
	}
	recs, err := s.store.ListPayments(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}
