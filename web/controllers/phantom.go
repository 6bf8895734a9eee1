package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DappKey starts the wallet deep-link flow for a payment and returns the
// service's ephemeral public key plus the request id correlating the
// connect callback.
func DappKey(c *gin.Context) {
	var req struct {
		MPID      string `json:"mpid" binding:"required"`
		OrderID   string `json:"orderId"`
		PaymentID uint   `json:"paymentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, http.StatusBadRequest, "Failed to read body")
		return
	}

	link, err := Wallet.Connect(c.Request.Context(), req.MPID, req.OrderID, req.PaymentID)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, gin.H{
		"dAppPublicKey": link.DappPublicKey,
		"requestId":     link.RequestID,
		"connectUrl":    link.URL,
	})
}

// ConnectCallback is where the wallet lands after the user approves the
// connection. On success the user is forwarded straight into the sign step.
func ConnectCallback(c *gin.Context) {
	signURL, err := Wallet.HandleConnect(
		c.Request.Context(),
		c.Query("requestId"),
		c.Query("phantom_encryption_public_key"),
		c.Query("nonce"),
		c.Query("data"),
	)
	if err != nil {
		failErr(c, err)
		return
	}

	c.Redirect(http.StatusFound, signURL)
}

// SignCallback is where the wallet lands after signing and submitting. The
// transaction id is captured and the user is sent to the status page.
func SignCallback(c *gin.Context) {
	statusURL, err := Wallet.HandleSign(
		c.Request.Context(),
		c.Query("mpid"),
		c.Query("phantom_encryption_public_key"),
		c.Query("nonce"),
		c.Query("data"),
	)
	if err != nil {
		failErr(c, err)
		return
	}

	c.Redirect(http.StatusFound, statusURL)
}
