package payment

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"solpay/chain"
)

var (
	memoProgramID   = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
	tokenProgramID  = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	systemProgramID = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
)

// TransferRequest is the context needed to deterministically build an
// unsigned transfer. Blockhash and payer come from the caller; nothing here
// touches the network.
type TransferRequest struct {
	Payer     string // fee payer and source of funds
	Recipient string
	Amount    decimal.Decimal
	Asset     Asset
	Reference string // base58 reference public key, attached to the transfer
	OrderID   string // carried as memo bytes
	Blockhash string
}

// BuildTransferTx constructs the unsigned transaction: a memo instruction
// tagging the payer and carrying the order id, followed by the value
// transfer with the reference key attached as a readonly non-signer so the
// transaction can be located by reference later. Signature slots are
// zero-filled so the serialized form is accepted by wallets before signing.
func BuildTransferTx(req TransferRequest) (*solana.Transaction, error) {
	payer, err := solana.PublicKeyFromBase58(req.Payer)
	if err != nil {
		return nil, fmt.Errorf("%w: payer: %v", chain.ErrBadAddress, err)
	}
	recipient, err := solana.PublicKeyFromBase58(req.Recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: recipient: %v", chain.ErrBadAddress, err)
	}
	reference, err := solana.PublicKeyFromBase58(req.Reference)
	if err != nil {
		return nil, fmt.Errorf("%w: reference: %v", chain.ErrBadAddress, err)
	}
	blockhash, err := solana.HashFromBase58(req.Blockhash)
	if err != nil {
		return nil, fmt.Errorf("%w: blockhash: %v", chain.ErrBadAddress, err)
	}

	units, err := req.Asset.BaseUnits(req.Amount)
	if err != nil {
		return nil, err
	}

	memoInst := solana.NewInstruction(
		memoProgramID,
		solana.AccountMetaSlice{
			{PublicKey: payer, IsSigner: true, IsWritable: false},
		},
		[]byte(req.OrderID),
	)

	var transferInst solana.Instruction
	if req.Asset.Native {
		transferInst = buildSystemTransfer(payer, recipient, reference, units)
	} else {
		transferInst, err = buildTokenTransfer(payer, recipient, reference, req.Asset, units)
		if err != nil {
			return nil, err
		}
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{memoInst, transferInst},
		blockhash,
		solana.TransactionPayer(payer),
	)
	if err != nil {
		return nil, fmt.Errorf("build transaction: %w", err)
	}

	// Wallets expect placeholder signatures for every required signer.
	for len(tx.Signatures) < int(tx.Message.Header.NumRequiredSignatures) {
		tx.Signatures = append(tx.Signatures, solana.Signature{})
	}

	return tx, nil
}

// System Transfer instruction layout:
// instruction index: 4 bytes (uint32 = 2, little-endian)
// lamports: 8 bytes (uint64, little-endian)
func buildSystemTransfer(payer, recipient, reference solana.PublicKey, lamports uint64) solana.Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	accounts := solana.AccountMetaSlice{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: recipient, IsSigner: false, IsWritable: true},
		{PublicKey: reference, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(systemProgramID, accounts, data)
}

// Token TransferChecked instruction layout:
// instruction discriminator: 12 (TransferChecked)
// amount: 8 bytes (uint64, little-endian)
// decimals: 1 byte
func buildTokenTransfer(payer, recipient, reference solana.PublicKey, asset Asset, units uint64) (solana.Instruction, error) {
	mint, err := solana.PublicKeyFromBase58(asset.Mint)
	if err != nil {
		return nil, fmt.Errorf("%w: mint for %s: %v", chain.ErrBadAddress, asset.Symbol, err)
	}

	sourceATA, _, err := solana.FindAssociatedTokenAddress(payer, mint)
	if err != nil {
		return nil, fmt.Errorf("derive source token account: %w", err)
	}
	destATA, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
	if err != nil {
		return nil, fmt.Errorf("derive destination token account: %w", err)
	}

	data := make([]byte, 10)
	data[0] = 12
	binary.LittleEndian.PutUint64(data[1:9], units)
	data[9] = byte(asset.Decimals)

	accounts := solana.AccountMetaSlice{
		{PublicKey: sourceATA, IsSigner: false, IsWritable: true},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: destATA, IsSigner: false, IsWritable: true},
		{PublicKey: payer, IsSigner: true, IsWritable: false},
		{PublicKey: reference, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(tokenProgramID, accounts, data), nil
}

// EncodeBase58Tx serializes a transaction for a wallet deep-link payload.
func EncodeBase58Tx(tx *solana.Transaction) (string, error) {
	enc, err := tx.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base58.Encode(enc), nil
}

func EncodeBase64Tx(tx *solana.Transaction) (string, error) {
	enc, err := tx.MarshalBinary()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(enc), nil
}

func DecodeBase64Tx(b64 string) (*solana.Transaction, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	return solana.TransactionFromDecoder(bin.NewBinDecoder(data))
}
