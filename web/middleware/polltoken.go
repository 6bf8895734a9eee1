package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CodeSessionExpired tells the client to refresh its poll token and retry.
// It is carried inside the envelope so callers can intercept it generically.
const CodeSessionExpired = 499

// PollToken gates the status endpoint with short-lived single-use tokens,
// so a client cannot hammer settlement polling with one captured token.
type PollToken struct {
	key []byte
	ttl time.Duration

	mu   sync.Mutex
	used map[string]time.Time // jti -> expiry
}

func NewPollToken(key string, ttl time.Duration) *PollToken {
	return &PollToken{
		key:  []byte(key),
		ttl:  ttl,
		used: make(map[string]time.Time),
	}
}

// Issue mints a fresh token bound to one mpid.
func (p *PollToken) Issue(mpid string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": mpid,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(p.ttl).Unix(),
	})
	return token.SignedString(p.key)
}

// consume validates the token for the mpid and burns its jti.
func (p *PollToken) consume(raw, mpid string) bool {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return p.key, nil
	})
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	sub, _ := claims["sub"].(string)
	jti, _ := claims["jti"].(string)
	if sub != mpid || jti == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, seen := p.used[jti]; seen {
		return false
	}
	p.used[jti] = time.Now().Add(p.ttl)

	// opportunistic expiry sweep, the map stays small
	now := time.Now()
	for id, exp := range p.used {
		if now.After(exp) {
			delete(p.used, id)
		}
	}
	return true
}

// Gate rejects requests without a fresh token for the queried mpid. The
// response uses the session-expired code so clients refresh and retry
// instead of treating it as a payment failure.
func (p *PollToken) Gate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		raw = strings.TrimPrefix(raw, "Bearer ")
		if raw == "" {
			raw = c.Query("pollToken")
		}

		if !p.consume(raw, c.Query("mpid")) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    CodeSessionExpired,
				"data":    nil,
				"message": "poll token expired, refresh and retry",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
