package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/umesh2702/OUTLAW/models"
	aws_pkg "github.com/umesh2702/OUTLAW/pkg/aws"
)

// UserEventsPublisher announces account lifecycle events (currently only
// registrations) on SNS for downstream services such as notifications.
type UserEventsPublisher struct {
	sns      *aws_pkg.SNSClient
	topicARN string
	log      *zap.Logger
}

func NewUserEventsPublisher(sns *aws_pkg.SNSClient, topicARN string, log *zap.Logger) *UserEventsPublisher {
	return &UserEventsPublisher{sns: sns, topicARN: topicARN, log: log}
}

// PublishUserRegistered is best-effort: signup never fails because the
// announcement could not be made.
func (p *UserEventsPublisher) PublishUserRegistered(ctx context.Context, profile *models.Profile) {
	if p == nil || p.sns == nil || p.topicARN == "" {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"event_type": "user.registered",
		"user_id":    profile.ID,
		"email":      profile.Email,
		"outlaw_id":  profile.OutlawID,
		"timestamp":  time.Now().UTC(),
	})
	if err != nil {
		return
	}

	if err := p.sns.Publish(ctx, p.topicARN, "user.registered", payload); err != nil {
		p.log.Warn("failed to publish user.registered event", zap.Error(err))
	}
}
