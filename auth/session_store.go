package auth

import (
	"context"
	"time"

	"github.com/umesh2702/OUTLAW/storage"
)

// SessionRecord holds the provider tokens issued to one browsing session.
// It is the server-side stand-in for the token blob the provider SDK would
// keep in browser storage.
type SessionRecord struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	IssuedAt     time.Time `json:"issued_at"`
}

func sessionKey(sessionID string) string {
	return "auth:session:" + sessionID
}

// SessionStore persists session records in the KV under a key disjoint from
// the cart and shadow keys.
type SessionStore struct {
	kv storage.KV
}

func NewSessionStore(kv storage.KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// Get returns the session record for sessionID, or false when there is none.
// A corrupt record reads as absent.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (SessionRecord, bool) {
	var rec SessionRecord
	if !storage.LoadJSON(ctx, s.kv, sessionKey(sessionID), &rec) {
		return SessionRecord{}, false
	}
	if rec.AccessToken == "" {
		return SessionRecord{}, false
	}
	return rec, true
}

func (s *SessionStore) Save(ctx context.Context, sessionID string, rec SessionRecord) error {
	return storage.SaveJSON(ctx, s.kv, sessionKey(sessionID), rec)
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.kv.Delete(ctx, sessionKey(sessionID))
}
