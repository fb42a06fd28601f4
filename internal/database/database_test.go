package database

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNewPoolRejectsBadDSN(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://%zz", DefaultOptions)
	if err == nil || !strings.Contains(err.Error(), "parse db config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestNewPoolGivesUpAfterAttempts(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Port 1 on loopback refuses connections immediately.
	_, err := NewPool(ctx, "postgres://user:pw@127.0.0.1:1/roster?connect_timeout=1", Options{
		MaxConns:     1,
		Attempts:     2,
		RetryBackoff: 10 * time.Millisecond,
	})
	if err == nil || !strings.Contains(err.Error(), "connect to postgres") {
		t.Fatalf("expected connect error, got %v", err)
	}
}
