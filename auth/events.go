package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventsChannel carries session change notifications between processes, the
// server-side analog of the provider SDK's auth-state broadcast across tabs.
const EventsChannel = "auth:events"

const (
	EventSignedIn       = "signed_in"
	EventSignedOut      = "signed_out"
	EventTokenRefreshed = "token_refreshed"
)

type SessionEvent struct {
	SessionID string    `json:"session_id"`
	Event     string    `json:"event"`
	At        time.Time `json:"at"`
}

// Publisher pushes session events onto the Redis channel. Publishing is
// best-effort; a dropped notification only delays reconciliation until the
// next explicit check.
type Publisher struct {
	client *redis.Client
	log    *zap.Logger
}

func NewPublisher(client *redis.Client, log *zap.Logger) *Publisher {
	return &Publisher{client: client, log: log}
}

func (p *Publisher) Publish(ctx context.Context, ev SessionEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, EventsChannel, data).Err(); err != nil {
		p.log.Warn("failed to publish session event", zap.String("event", ev.Event), zap.Error(err))
		return err
	}
	return nil
}

// Subscriber feeds session events to a handler until ctx is done. Malformed
// payloads are skipped.
type Subscriber struct {
	client *redis.Client
	log    *zap.Logger
}

func NewSubscriber(client *redis.Client, log *zap.Logger) *Subscriber {
	return &Subscriber{client: client, log: log}
}

func (s *Subscriber) Run(ctx context.Context, handle func(context.Context, SessionEvent)) {
	sub := s.client.Subscribe(ctx, EventsChannel)
	defer sub.Close()

	ch := sub.Channel()
	s.log.Info("session event subscriber started", zap.String("channel", EventsChannel))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.log.Warn("invalid session event payload", zap.Error(err))
				continue
			}
			handle(ctx, ev)
		}
	}
}
