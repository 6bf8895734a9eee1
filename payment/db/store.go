package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"solpay/deeplink"
	"solpay/payment"
)

// Store backs both the payment record contract and the wallet link session
// contract with the same MySQL database.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreatePayment(ctx context.Context, rec *payment.Record) error {
	m := fromRecord(rec)
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	rec.UpdatedAt = m.UpdatedAt
	return nil
}

func (s *Store) PaymentByMPID(ctx context.Context, mpid string) (*payment.Record, error) {
	var m PaymentRecord
	err := s.db.WithContext(ctx).Where("mpid = ?", mpid).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toRecord(&m), nil
}

func (s *Store) PaymentByReference(ctx context.Context, reference string) (*payment.Record, error) {
	var m PaymentRecord
	err := s.db.WithContext(ctx).Where("reference = ?", reference).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toRecord(&m), nil
}

// SetTransactionID writes the tx id only when none is recorded yet, so the
// first observed signature wins and repeats are no-ops.
func (s *Store) SetTransactionID(ctx context.Context, mpid, txID string) error {
	res := s.db.WithContext(ctx).Model(&PaymentRecord{}).
		Where("mpid = ? AND (tx_id = '' OR tx_id IS NULL)", mpid).
		Update("tx_id", txID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.mustExist(ctx, mpid)
	}
	return nil
}

// SettleFromPending is the single conditional write behind the state
// machine: status moves to `to` only if it is still PENDING, so concurrent
// polls cannot double-settle.
func (s *Store) SettleFromPending(ctx context.Context, mpid string, to payment.Status) error {
	res := s.db.WithContext(ctx).Model(&PaymentRecord{}).
		Where("mpid = ? AND status = ?", mpid, string(payment.StatusPending)).
		Update("status", string(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.mustExist(ctx, mpid)
	}
	return nil
}

func (s *Store) SetPayer(ctx context.Context, mpid, payer string) error {
	res := s.db.WithContext(ctx).Model(&PaymentRecord{}).
		Where("mpid = ?", mpid).
		Update("payer", payer)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.mustExist(ctx, mpid)
	}
	return nil
}

func (s *Store) CountPayments(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&PaymentRecord{}).Count(&n).Error
	return n, err
}

func (s *Store) ListPayments(ctx context.Context, offset, limit int) ([]payment.Record, error) {
	var ms []PaymentRecord
	err := s.db.WithContext(ctx).
		Order("id DESC").Offset(offset).Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]payment.Record, 0, len(ms))
	for i := range ms {
		out = append(out, *toRecord(&ms[i]))
	}
	return out, nil
}

// mustExist distinguishes a no-op conditional write from a missing record.
func (s *Store) mustExist(ctx context.Context, mpid string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&PaymentRecord{}).
		Where("mpid = ?", mpid).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return payment.ErrNotFound
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, sess *deeplink.Session) error {
	m := &WalletLinkSession{
		RequestID:      sess.RequestID,
		MPID:           sess.MPID,
		OrderID:        sess.OrderID,
		PaymentID:      sess.PaymentID,
		DappPublicKey:  sess.DappPublicKey,
		DappPrivateKey: sess.DappPrivateKey,
		ExpiresAt:      sess.ExpiresAt,
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	sess.ID = m.ID
	sess.CreatedAt = m.CreatedAt
	return nil
}

func (s *Store) SessionByRequestID(ctx context.Context, requestID string) (*deeplink.Session, error) {
	var m WalletLinkSession
	err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, deeplink.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return toSession(&m), nil
}

func (s *Store) SessionByMPID(ctx context.Context, mpid string) (*deeplink.Session, error) {
	var m WalletLinkSession
	err := s.db.WithContext(ctx).Where("mpid = ?", mpid).
		Order("id DESC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, deeplink.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return toSession(&m), nil
}

// AttachWallet records the wallet side of the channel once; a second
// callback for the same request id leaves the first keys in place.
func (s *Store) AttachWallet(ctx context.Context, requestID, walletPublicKey, walletSession string) error {
	res := s.db.WithContext(ctx).Model(&WalletLinkSession{}).
		Where("request_id = ? AND (wallet_public_key = '' OR wallet_public_key IS NULL)", requestID).
		Updates(map[string]any{
			"wallet_public_key": walletPublicKey,
			"wallet_session":    walletSession,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := s.db.WithContext(ctx).Model(&WalletLinkSession{}).
			Where("request_id = ?", requestID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return deeplink.ErrSessionNotFound
		}
	}
	return nil
}

func (s *Store) SetSessionTx(ctx context.Context, requestID, txID string) error {
	return s.db.WithContext(ctx).Model(&WalletLinkSession{}).
		Where("request_id = ?", requestID).
		Update("tx_id", txID).Error
}

func toSession(m *WalletLinkSession) *deeplink.Session {
	return &deeplink.Session{
		ID:              m.ID,
		RequestID:       m.RequestID,
		MPID:            m.MPID,
		OrderID:         m.OrderID,
		PaymentID:       m.PaymentID,
		DappPublicKey:   m.DappPublicKey,
		DappPrivateKey:  m.DappPrivateKey,
		WalletPublicKey: m.WalletPublicKey,
		WalletSession:   m.WalletSession,
		TxID:            m.TxID,
		ExpiresAt:       m.ExpiresAt,
		CreatedAt:       m.CreatedAt,
	}
}
