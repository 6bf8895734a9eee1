package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"solpay/chain"
	"solpay/deeplink"
	"solpay/logger"
	"solpay/payment"
	"solpay/web/middleware"
)

const CodeOK = 0

// Deps are wired once at startup.
var (
	Payments *payment.Service
	Verifier *payment.Verifier
	Wallet   *deeplink.Flow
	Tokens   *middleware.PollToken
	Log      logger.Logger = logger.NoopLogger{}
)

func Setup(svc *payment.Service, verifier *payment.Verifier, flow *deeplink.Flow, tokens *middleware.PollToken, log logger.Logger) {
	Payments = svc
	Verifier = verifier
	Wallet = flow
	Tokens = tokens
	Log = log
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    CodeOK,
		"data":    data,
		"message": "",
	})
}

func fail(c *gin.Context, status, code int, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"data":    nil,
		"message": message,
	})
}

// failErr maps the error taxonomy onto HTTP statuses: validation 400,
// not-found 404, expired link 410, transient chain trouble 503.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payment.ErrNotFound), errors.Is(err, deeplink.ErrSessionNotFound):
		fail(c, http.StatusNotFound, http.StatusNotFound, err.Error())
	case errors.Is(err, deeplink.ErrLinkExpired):
		fail(c, http.StatusGone, http.StatusGone, err.Error())
	case errors.Is(err, payment.ErrRetryable), errors.Is(err, chain.ErrRPC):
		fail(c, http.StatusServiceUnavailable, http.StatusServiceUnavailable, err.Error())
	default:
		fail(c, http.StatusBadRequest, http.StatusBadRequest, err.Error())
	}
}
