package middleware

import (
	"testing"
	"time"
)

func TestPollTokenSingleUse(t *testing.T) {
	p := NewPollToken("test-key", time.Minute)

	token, err := p.Issue("mp-1")
	if err != nil {
		t.Fatal(err)
	}

	if !p.consume(token, "mp-1") {
		t.Fatal("fresh token rejected")
	}
	if p.consume(token, "mp-1") {
		t.Error("token accepted twice")
	}
}

func TestPollTokenWrongPayment(t *testing.T) {
	p := NewPollToken("test-key", time.Minute)

	token, _ := p.Issue("mp-1")
	if p.consume(token, "mp-2") {
		t.Error("token for mp-1 accepted for mp-2")
	}
}

func TestPollTokenExpired(t *testing.T) {
	p := NewPollToken("test-key", -time.Minute)

	token, _ := p.Issue("mp-1")
	if p.consume(token, "mp-1") {
		t.Error("expired token accepted")
	}
}

func TestPollTokenForged(t *testing.T) {
	p := NewPollToken("test-key", time.Minute)
	other := NewPollToken("other-key", time.Minute)

	token, _ := other.Issue("mp-1")
	if p.consume(token, "mp-1") {
		t.Error("token signed with a different key accepted")
	}
	if p.consume("not-a-token", "mp-1") {
		t.Error("garbage token accepted")
	}
}
