package audit

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Entry is one audit record: who did what to which booking resource.
type Entry struct {
	ID            string
	Actor         string
	Role          string
	Action        string
	ResourceType  string
	ResourceID    string
	ListingID     string
	Metadata      json.RawMessage
	PayloadDigest string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// withDefaults fills the generated fields an entry may omit.
func (e Entry) withDefaults(now time.Time) Entry {
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.PayloadDigest == "" && len(e.Metadata) > 0 {
		sum := sha256.Sum256(e.Metadata)
		e.PayloadDigest = hex.EncodeToString(sum[:])
	}
	return e
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// NewID generates a random audit id.
func NewID() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return "audit-" + hex.EncodeToString(buf[:])
}
