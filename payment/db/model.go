package db

import (
	"time"

	"gorm.io/gorm"

	"solpay/payment"
)

// PaymentRecord is the gorm shape of a payment. MPID and Reference get
// unique indexes so that duplicate creation and reference lookups are backed
// by the database, not by application checks.
type PaymentRecord struct {
	gorm.Model
	MPID      string `gorm:"uniqueIndex;size:64"`
	OrderID   string `gorm:"index;size:128"`
	Chain     string `gorm:"size:16"`
	Asset     string `gorm:"size:16"`
	Amount    string `gorm:"size:64"`
	Recipient string `gorm:"size:64"`
	Payer     string `gorm:"size:64"`
	Reference string `gorm:"uniqueIndex;size:64"`
	Status    string `gorm:"index;size:16"`
	TxID      string `gorm:"size:128"`
	Label     string
	Message   string
	ReturnURL string
	Raw       []byte
}

// WalletLinkSession persists one deep-link flow. The dapp private key is
// stored until ExpiresAt and useless afterwards.
type WalletLinkSession struct {
	gorm.Model
	RequestID       string `gorm:"uniqueIndex;size:64"`
	MPID            string `gorm:"index;size:64"`
	OrderID         string `gorm:"size:128"`
	PaymentID       uint
	DappPublicKey   string `gorm:"size:64"`
	DappPrivateKey  string `gorm:"size:64"`
	WalletPublicKey string `gorm:"size:64"`
	WalletSession   string
	TxID            string `gorm:"size:128"`
	ExpiresAt       time.Time
}

func toRecord(m *PaymentRecord) *payment.Record {
	return &payment.Record{
		ID:        m.ID,
		MPID:      m.MPID,
		OrderID:   m.OrderID,
		Chain:     m.Chain,
		Asset:     m.Asset,
		Amount:    m.Amount,
		Recipient: m.Recipient,
		Payer:     m.Payer,
		Reference: m.Reference,
		Status:    payment.Status(m.Status),
		TxID:      m.TxID,
		Label:     m.Label,
		Message:   m.Message,
		ReturnURL: m.ReturnURL,
		Raw:       m.Raw,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromRecord(rec *payment.Record) *PaymentRecord {
	return &PaymentRecord{
		MPID:      rec.MPID,
		OrderID:   rec.OrderID,
		Chain:     rec.Chain,
		Asset:     rec.Asset,
		Amount:    rec.Amount,
		Recipient: rec.Recipient,
		Payer:     rec.Payer,
		Reference: rec.Reference,
		Status:    string(rec.Status),
		TxID:      rec.TxID,
		Label:     rec.Label,
		Message:   rec.Message,
		ReturnURL: rec.ReturnURL,
		Raw:       rec.Raw,
	}
}
