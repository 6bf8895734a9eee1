package deeplink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"solpay/logger"
	"solpay/payment"
)

var (
	ErrSessionNotFound = errors.New("wallet link session not found")
	ErrLinkExpired     = errors.New("wallet link session expired")
	ErrMissingField    = errors.New("missing required deep link field")
	ErrWalletRejected  = errors.New("wallet returned an error")
	ErrNoSignature     = errors.New("wallet response carries no signature")
)

// Session is the persisted state of one wallet deep-link flow, keyed by
// request id. DappPrivateKey is the one legitimate stored secret, time-boxed
// by ExpiresAt.
type Session struct {
	ID              uint
	RequestID       string
	MPID            string
	OrderID         string
	PaymentID       uint
	DappPublicKey   string
	DappPrivateKey  string
	WalletPublicKey string
	WalletSession   string
	TxID            string
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

// SessionStore is the narrow persistence contract for wallet link sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *Session) error
	SessionByRequestID(ctx context.Context, requestID string) (*Session, error)
	SessionByMPID(ctx context.Context, mpid string) (*Session, error)

	// AttachWallet records the wallet's encryption key and session token,
	// exactly once.
	AttachWallet(ctx context.Context, requestID, walletPublicKey, walletSession string) error
	SetSessionTx(ctx context.Context, requestID, txID string) error
}

// Wire shapes of the encrypted payloads exchanged with the wallet app.
type connectResponse struct {
	PublicKey string `json:"public_key"`
	Session   string `json:"session"`
}

type signRequest struct {
	Transaction string `json:"transaction"` // base58 serialized unsigned tx
	Session     string `json:"session"`
}

type signResponse struct {
	Signature    string `json:"signature"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// FlowConfig carries the URL layout of the flow, assembled once at startup.
type FlowConfig struct {
	AppURL        string // merchant site shown to the user inside the wallet
	WalletBaseURL string // universal link base, e.g. https://phantom.app/ul/v1
	ServiceURL    string // public base URL of this service
	StatusPageURL string
	TTL           time.Duration
}

// Flow is the two-step encrypted channel between this service and the wallet
// application: connect, then sign. Neither side ever talks to the other
// directly; everything rides on redirects carrying box-encrypted payloads.
type Flow struct {
	cfg      FlowConfig
	sessions SessionStore
	payments *payment.Service
	store    payment.Store
	log      logger.Logger
}

func NewFlow(cfg FlowConfig, sessions SessionStore, payments *payment.Service, store payment.Store, log logger.Logger) *Flow {
	return &Flow{cfg: cfg, sessions: sessions, payments: payments, store: store, log: log}
}

// ConnectLink is handed to the client to open the wallet app.
type ConnectLink struct {
	RequestID     string
	DappPublicKey string
	URL           string
}

// Connect starts a flow: a fresh ephemeral keypair is persisted under a new
// request id and the wallet connect link is built around its public half.
func (f *Flow) Connect(ctx context.Context, mpid, orderID string, paymentID uint) (*ConnectLink, error) {
	if mpid == "" {
		return nil, fmt.Errorf("%w: mpid", ErrMissingField)
	}
	if _, err := f.payments.Payment(ctx, mpid); err != nil {
		return nil, err
	}

	kp, err := GenerateKeypair()
	if err != nil {
		return nil, err
	}

	sess := &Session{
		RequestID:      uuid.NewString(),
		MPID:           mpid,
		OrderID:        orderID,
		PaymentID:      paymentID,
		DappPublicKey:  kp.Public,
		DappPrivateKey: kp.Private,
		ExpiresAt:      time.Now().Add(f.cfg.TTL),
	}
	if err := f.sessions.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	callback := fmt.Sprintf("%s/api/pay/phantom/connect-callback?requestId=%s",
		f.cfg.ServiceURL, sess.RequestID)

	q := url.Values{}
	q.Set("app_url", f.cfg.AppURL)
	q.Set("dapp_encryption_public_key", kp.Public)
	q.Set("redirect_link", callback)

	f.log.Info("wallet connect link issued", map[string]any{
		"mpid": mpid, "request_id": sess.RequestID,
	})

	return &ConnectLink{
		RequestID:     sess.RequestID,
		DappPublicKey: kp.Public,
		URL:           fmt.Sprintf("%s/connect?%s", f.cfg.WalletBaseURL, q.Encode()),
	}, nil
}

// HandleConnect completes the connect step and returns the sign-and-send
// universal link the user is redirected to next. Every required field must
// be present and the payload must authenticate; anything else is terminal
// for this attempt.
func (f *Flow) HandleConnect(ctx context.Context, requestID, walletPublicKey, nonce, data string) (string, error) {
	switch {
	case requestID == "":
		return "", fmt.Errorf("%w: requestId", ErrMissingField)
	case walletPublicKey == "":
		return "", fmt.Errorf("%w: phantom_encryption_public_key", ErrMissingField)
	case nonce == "":
		return "", fmt.Errorf("%w: nonce", ErrMissingField)
	case data == "":
		return "", fmt.Errorf("%w: data", ErrMissingField)
	}

	sess, err := f.sessions.SessionByRequestID(ctx, requestID)
	if err != nil {
		return "", err
	}
	if time.Now().After(sess.ExpiresAt) {
		return "", ErrLinkExpired
	}

	plain, err := Open(data, nonce, walletPublicKey, sess.DappPrivateKey)
	if err != nil {
		return "", err
	}

	var resp connectResponse
	if err := json.Unmarshal(plain, &resp); err != nil {
		return "", fmt.Errorf("%w: connect payload is not valid JSON", ErrDecrypt)
	}
	if resp.PublicKey == "" || resp.Session == "" {
		return "", fmt.Errorf("%w: connect payload", ErrMissingField)
	}

	if err := f.sessions.AttachWallet(ctx, requestID, walletPublicKey, resp.Session); err != nil {
		return "", err
	}
	if err := f.store.SetPayer(ctx, sess.MPID, resp.PublicKey); err != nil {
		return "", err
	}

	return f.signLink(ctx, sess, walletPublicKey, resp)
}

func (f *Flow) signLink(ctx context.Context, sess *Session, walletPublicKey string, conn connectResponse) (string, error) {
	rec, err := f.payments.Payment(ctx, sess.MPID)
	if err != nil {
		return "", err
	}

	tx, err := f.payments.UnsignedTx(ctx, rec, conn.PublicKey)
	if err != nil {
		return "", err
	}
	txB58, err := payment.EncodeBase58Tx(tx)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(signRequest{Transaction: txB58, Session: conn.Session})
	if err != nil {
		return "", err
	}
	nonce, data, err := Seal(payload, walletPublicKey, sess.DappPrivateKey)
	if err != nil {
		return "", err
	}

	redirect := fmt.Sprintf("%s/api/pay/phantom/sign-callback?mpid=%s", f.cfg.ServiceURL, sess.MPID)

	q := url.Values{}
	q.Set("dapp_encryption_public_key", sess.DappPublicKey)
	q.Set("nonce", nonce)
	q.Set("redirect_link", redirect)
	q.Set("payload", data)

	f.log.Info("wallet sign link issued", map[string]any{
		"mpid": sess.MPID, "request_id": sess.RequestID,
	})

	return fmt.Sprintf("%s/signAndSendTransaction?%s", f.cfg.WalletBaseURL, q.Encode()), nil
}

// HandleSign completes the flow: the wallet's response either carries the
// on-chain signature or an error pair. The transaction id is recorded on the
// payment exactly once, then the payer is sent to the status page.
func (f *Flow) HandleSign(ctx context.Context, mpid, walletPublicKey, nonce, data string) (string, error) {
	switch {
	case mpid == "":
		return "", fmt.Errorf("%w: mpid", ErrMissingField)
	case nonce == "":
		return "", fmt.Errorf("%w: nonce", ErrMissingField)
	case data == "":
		return "", fmt.Errorf("%w: data", ErrMissingField)
	}

	sess, err := f.sessions.SessionByMPID(ctx, mpid)
	if err != nil {
		return "", err
	}
	if time.Now().After(sess.ExpiresAt) {
		return "", ErrLinkExpired
	}

	key := walletPublicKey
	if key == "" {
		key = sess.WalletPublicKey
	}
	if key == "" {
		return "", fmt.Errorf("%w: wallet encryption key", ErrMissingField)
	}

	plain, err := Open(data, nonce, key, sess.DappPrivateKey)
	if err != nil {
		return "", err
	}

	var resp signResponse
	if err := json.Unmarshal(plain, &resp); err != nil {
		return "", fmt.Errorf("%w: sign payload is not valid JSON", ErrDecrypt)
	}
	if resp.ErrorCode != "" {
		return "", fmt.Errorf("%w: %s %s", ErrWalletRejected, resp.ErrorCode, resp.ErrorMessage)
	}
	if resp.Signature == "" {
		return "", ErrNoSignature
	}

	if err := f.payments.RecordTransaction(ctx, mpid, resp.Signature); err != nil {
		return "", err
	}
	if err := f.sessions.SetSessionTx(ctx, sess.RequestID, resp.Signature); err != nil {
		return "", err
	}

	f.log.Info("wallet sign completed", map[string]any{
		"mpid": mpid, "signature": resp.Signature,
	})

	q := url.Values{}
	q.Set("mpid", mpid)
	q.Set("tx", resp.Signature)
	return fmt.Sprintf("%s?%s", f.cfg.StatusPageURL, q.Encode()), nil
}
