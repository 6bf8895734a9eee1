package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"solpay/payment"
)

// InitPayment creates a PENDING payment from the posted intent and returns
// the wallet-scannable link plus its reference tag.
func InitPayment(c *gin.Context) {
	var intent payment.Intent
	if err := c.ShouldBindJSON(&intent); err != nil {
		fail(c, http.StatusBadRequest, http.StatusBadRequest, "Failed to read body")
		return
	}

	checkout, err := Payments.CreateIntent(c.Request.Context(), &intent)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, gin.H{
		"urlForQrCode":             checkout.URI,
		"referencePublicKeyString": checkout.Reference,
		"paymentTableRecord":       checkout.Record,
	})
}

// Status runs one settlement poll for the payment and returns the resulting
// status. Transient chain failures come back retryable without touching the
// stored record.
func Status(c *gin.Context) {
	mpid := c.Query("mpid")
	if mpid == "" {
		fail(c, http.StatusBadRequest, http.StatusBadRequest, "Missing mpid parameter")
		return
	}

	status, err := Verifier.Poll(c.Request.Context(), mpid)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, gin.H{"status": status})
}

// UpdateTransaction records an externally observed transaction id. Repeats
// and already-set records are accepted as no-ops.
func UpdateTransaction(c *gin.Context) {
	var req struct {
		MPID string `json:"mpid" binding:"required"`
		TxID string `json:"txId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, http.StatusBadRequest, "Failed to read body")
		return
	}

	if err := Payments.RecordTransaction(c.Request.Context(), req.MPID, req.TxID); err != nil {
		failErr(c, err)
		return
	}

	ok(c, gin.H{"success": true})
}

// PollToken hands out a short-lived single-use token for the status endpoint.
func PollToken(c *gin.Context) {
	mpid := c.Query("mpid")
	if mpid == "" {
		fail(c, http.StatusBadRequest, http.StatusBadRequest, "Missing mpid parameter")
		return
	}
	if _, err := Payments.Payment(c.Request.Context(), mpid); err != nil {
		failErr(c, err)
		return
	}

	token, err := Tokens.Issue(mpid)
	if err != nil {
		fail(c, http.StatusInternalServerError, http.StatusInternalServerError, "Failed to create token")
		return
	}

	ok(c, gin.H{"pollToken": token})
}

// List pages through payments, newest first.
func List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	records, total, err := Payments.ListPayments(c.Request.Context(), page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, gin.H{
		"payments": records,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// QRCode renders the payment link as a PNG.
func QRCode(c *gin.Context) {
	mpid := c.Query("mpid")
	if mpid == "" {
		fail(c, http.StatusBadRequest, http.StatusBadRequest, "Missing mpid parameter")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))

	rec, err := Payments.Payment(c.Request.Context(), mpid)
	if err != nil {
		failErr(c, err)
		return
	}
	uri, err := Payments.URIFor(rec)
	if err != nil {
		failErr(c, err)
		return
	}
	png, err := payment.QRCodePNG(uri, size)
	if err != nil {
		fail(c, http.StatusInternalServerError, http.StatusInternalServerError, "Failed to render code")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
