package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/umesh2702/OUTLAW/models"
	"github.com/umesh2702/OUTLAW/storage"
)

// Session is the authoritative view of one active provider session.
type Session struct {
	UserID      string
	AccessToken string
}

// SessionSource answers "is there a session right now" against the external
// provider. CurrentSession returning (nil, nil) means an explicit absence of
// a session; a non-nil error means the check itself failed (network etc.)
// and nothing can be concluded.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*Session, error)
	// SignOutGlobal invalidates the session everywhere, not just locally.
	SignOutGlobal(ctx context.Context) error
}

// ProfileSource fetches the display profile for a confirmed session.
type ProfileSource interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// ShadowKey returns the auth shadow document key for a browsing session.
func ShadowKey(sessionID string) string {
	return "auth:shadow:" + sessionID
}

// shadowDoc is the persisted shape: profile plus write timestamp.
type shadowDoc struct {
	Profile   *models.Profile `json:"profile"`
	Timestamp int64           `json:"timestamp"`
}

// SessionShadow keeps a locally cached, non-authoritative copy of the
// session's profile so a page can render without waiting for the provider
// round trip. The external session is the source of truth and overwrites the
// shadow on every reconciliation pass.
//
// The one deliberate policy beyond the cache itself: a reconciliation pass
// that fails transiently preserves the current state. A user is only ever
// signed out by an explicit absence of a session, never by an error.
type SessionShadow struct {
	mu       sync.Mutex
	kv       storage.KV
	key      string
	source   SessionSource
	profiles ProfileSource
	log      *zap.Logger

	// seq orders reconciliation passes. A pass records seq at start and only
	// applies its result while still the newest; out-of-order completions of
	// overlapping passes (startup check vs push notification) discard the
	// stale result instead of racing.
	seq uint64

	loggedIn bool
	profile  *models.Profile
	settled  bool

	subs    map[int]func()
	nextSub int
}

// NewSessionShadow seeds synchronously from the persisted shadow document.
// The seed is best-effort display data; it may be stale or absent and is
// settled only after a reconciliation pass.
func NewSessionShadow(kv storage.KV, sessionID string, source SessionSource, profiles ProfileSource, log *zap.Logger) *SessionShadow {
	s := &SessionShadow{
		kv:       kv,
		key:      ShadowKey(sessionID),
		source:   source,
		profiles: profiles,
		log:      log,
		subs:     make(map[int]func()),
	}

	var doc shadowDoc
	if storage.LoadJSON(context.Background(), kv, s.key, &doc) && doc.Profile != nil {
		s.loggedIn = true
		s.profile = doc.Profile
	}
	return s
}

// Snapshot returns the current view: logged-in flag, profile (may be nil even
// when logged in), and whether a reconciliation pass has settled the state.
func (s *SessionShadow) Snapshot() (loggedIn bool, profile *models.Profile, settled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn, s.profile, s.settled
}

// Reconcile queries the session source and folds the answer into both memory
// and the persisted shadow. Overlapping passes resolve latest-wins.
func (s *SessionShadow) Reconcile(ctx context.Context) {
	s.mu.Lock()
	s.seq++
	pass := s.seq
	s.mu.Unlock()

	session, err := s.source.CurrentSession(ctx)
	if err != nil {
		// Transient failure: keep whatever we have.
		s.log.Warn("session check failed, keeping cached auth state", zap.Error(err))
		s.mu.Lock()
		if pass == s.seq {
			s.settled = true
		}
		s.mu.Unlock()
		return
	}

	if session == nil {
		s.mu.Lock()
		if pass != s.seq {
			s.mu.Unlock()
			return
		}
		s.loggedIn = false
		s.profile = nil
		s.settled = true
		subs := s.subscribersLocked()
		s.mu.Unlock()

		_ = s.kv.Delete(ctx, s.key)
		notify(subs)
		return
	}

	profile, err := s.profiles.FindByID(ctx, session.UserID)
	if err != nil {
		// Confirmed session but no profile: still logged in, keep whatever
		// display data we already had.
		s.log.Warn("profile fetch failed after session check", zap.String("user_id", session.UserID), zap.Error(err))
		s.mu.Lock()
		if pass == s.seq {
			s.loggedIn = true
			s.settled = true
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if pass != s.seq {
		s.mu.Unlock()
		return
	}
	s.loggedIn = true
	s.profile = profile
	s.settled = true
	subs := s.subscribersLocked()
	s.mu.Unlock()

	doc := shadowDoc{Profile: profile, Timestamp: time.Now().UnixMilli()}
	if err := storage.SaveJSON(ctx, s.kv, s.key, &doc); err != nil {
		s.log.Warn("failed to persist auth shadow", zap.Error(err))
	}
	notify(subs)
}

// OnSessionEvent re-runs reconciliation in response to a pushed session
// change (login/logout/token refresh elsewhere).
func (s *SessionShadow) OnSessionEvent(ctx context.Context) {
	s.Reconcile(ctx)
}

// SignOut invalidates the session globally at the provider, then clears
// local memory and the persisted shadow unconditionally. The remote call
// failing never blocks the local clear; its error is returned for logging.
func (s *SessionShadow) SignOut(ctx context.Context) error {
	remoteErr := s.source.SignOutGlobal(ctx)

	s.mu.Lock()
	s.seq++ // invalidate any in-flight reconciliation
	s.loggedIn = false
	s.profile = nil
	s.settled = true
	subs := s.subscribersLocked()
	s.mu.Unlock()

	_ = s.kv.Delete(ctx, s.key)
	notify(subs)
	return remoteErr
}

// Subscribe registers fn to run synchronously whenever the shadow settles a
// change. The returned func unregisters it.
func (s *SessionShadow) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *SessionShadow) subscribersLocked() []func() {
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
