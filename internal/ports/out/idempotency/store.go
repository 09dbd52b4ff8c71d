package idempotency

import (
	"context"
	"time"
)

// Fingerprint identifies a client share-channel mutation uniquely for replay
// purposes: share token + HTTP method + request path + request body hash.
// The store lets the HTTP layer replay the original response on a retried
// request instead of re-running the operation.
type Fingerprint struct {
	Token    string
	Method   string
	Route    string
	BodyHash string
}

// Record is the stored response we can replay for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records for replaying safe responses on retries.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error
}
