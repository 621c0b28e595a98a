package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/juliaconfecciones/production-backend/pkg/enums"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
	"github.com/juliaconfecciones/production-backend/pkg/outbox"
	"github.com/juliaconfecciones/production-backend/pkg/outbox/payloads"
)

const deliveryConsumer = "notification-delivery"

// Channel names the external route a delivery took.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Delivery is one outbound message for an employee.
type Delivery struct {
	NotificationID uuid.UUID
	EmployeeID     uuid.UUID
	OrderID        *uuid.UUID
	Kind           enums.NotificationKind
	Message        string
	Channel        Channel
	Address        string
}

// Sender hands a delivery to an email or SMS gateway.
type Sender interface {
	Send(ctx context.Context, delivery Delivery) error
}

type receiver interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

type claimGuard interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer drains notification_requested events from the delivery subscription.
type Consumer struct {
	subscription receiver
	guard        claimGuard
	sender       Sender
	logg         *logger.Logger
}

func NewConsumer(subscription receiver, guard claimGuard, sender Sender, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("delivery subscription required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		guard:        guard,
		sender:       sender,
		logg:         logg,
	}, nil
}

// Run blocks until the context is canceled or the subscription fails.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventNotificationRequested) {
		c.logg.Debug(logCtx, "notifications.delivery.skipped")
		return processResult{}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "notifications.delivery.bad_envelope", err)
		return processResult{}
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "notifications.delivery.bad_event_id", err)
		return processResult{}
	}
	var payload payloads.NotificationRequestedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "notifications.delivery.bad_payload", err)
		return processResult{}
	}

	logCtx = c.logg.WithEmployeeID(logCtx, payload.EmployeeID.String())
	logCtx = c.logg.WithField(logCtx, "notification_id", payload.NotificationID.String())

	delivery, ok := deliveryFor(payload)
	if !ok {
		c.logg.Warn(logCtx, "notifications.delivery.no_contact")
		return processResult{}
	}

	claimed, err := c.guard.Claim(ctx, deliveryConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "notifications.delivery.claim_failed", err)
		return processResult{nack: true}
	}
	if !claimed {
		c.logg.Info(logCtx, "notifications.delivery.duplicate")
		return processResult{}
	}

	if err := c.sender.Send(ctx, delivery); err != nil {
		c.logg.Error(logCtx, "notifications.delivery.failed", err)
		if relErr := c.guard.Release(ctx, deliveryConsumer, eventID); relErr != nil {
			c.logg.Error(logCtx, "notifications.delivery.release_failed", relErr)
		}
		return processResult{nack: true}
	}

	c.logg.Info(c.logg.WithField(logCtx, "channel", string(delivery.Channel)), "notifications.delivery.sent")
	return processResult{}
}

// deliveryFor prefers email and falls back to SMS.
func deliveryFor(payload payloads.NotificationRequestedEvent) (Delivery, bool) {
	d := Delivery{
		NotificationID: payload.NotificationID,
		EmployeeID:     payload.EmployeeID,
		OrderID:        payload.OrderID,
		Kind:           payload.Kind,
		Message:        payload.Message,
	}
	switch {
	case nonEmpty(payload.Email):
		d.Channel, d.Address = ChannelEmail, strings.TrimSpace(*payload.Email)
	case nonEmpty(payload.Phone):
		d.Channel, d.Address = ChannelSMS, strings.TrimSpace(*payload.Phone)
	default:
		return Delivery{}, false
	}
	return d, true
}

func nonEmpty(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

// LogSender records deliveries in the structured log instead of calling a gateway.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) (*LogSender, error) {
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &LogSender{logg: logg}, nil
}

func (s *LogSender) Send(ctx context.Context, d Delivery) error {
	fields := map[string]any{
		"channel": string(d.Channel),
		"address": d.Address,
		"kind":    string(d.Kind),
	}
	if d.OrderID != nil {
		fields["order_id"] = d.OrderID.String()
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), d.Message)
	return nil
}
