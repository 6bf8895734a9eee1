package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz only proves the process is up.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz also proves the storage layer answers.
func Readyz(c *gin.Context) {
	if _, _, err := Payments.ListPayments(c.Request.Context(), 1, 1); err == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
}
