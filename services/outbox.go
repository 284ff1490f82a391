package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/fundraiser-go/models"
)

// EffectRunner executes the downstream side effects of donation and comment
// writes. Every effect is persisted to the outbox before it runs, so a failed
// step stays on record and can be retried later without touching the primary
// write. Execution is synchronous; there is no background worker.
type EffectRunner struct {
	Users         UserStore
	Activities    ActivityStore
	Notifications NotificationStore
	Outbox        OutboxStore

	// Mailer, when set, sends the notification email. Best-effort: a mail
	// failure is logged, never surfaced.
	Mailer func(to, subject, body string) error

	// Now is overridable in tests.
	Now func() time.Time
}

func (r *EffectRunner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Dispatch records the effect in the outbox and executes it once. The
// returned error reports the step failure to the caller as a warning; the
// primary write is never rolled back.
func (r *EffectRunner) Dispatch(ctx context.Context, kind string, payload bson.M) error {
	now := r.now()
	effect := &models.SideEffect{
		ID:        primitive.NewObjectID(),
		Kind:      kind,
		Payload:   payload,
		Status:    models.EffectPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	recorded := true
	if err := r.Outbox.Insert(ctx, effect); err != nil {
		// Still attempt the step; it just won't be retryable.
		recorded = false
		log.Printf("outbox: failed to record %s effect: %v", kind, err)
	}

	if err := r.run(ctx, kind, payload); err != nil {
		log.Printf("side effect %s failed: %v", kind, err)
		if recorded {
			if markErr := r.Outbox.MarkFailed(ctx, effect.ID, err); markErr != nil {
				log.Printf("outbox: failed to mark %s failed: %v", kind, markErr)
			}
		}
		return err
	}

	if recorded {
		if err := r.Outbox.MarkDone(ctx, effect.ID); err != nil {
			log.Printf("outbox: failed to mark %s done: %v", kind, err)
		}
	}
	return nil
}

// RetryFailed re-runs every failed side effect once. Triggered from the admin
// API. Steps are at-least-once: a retry re-applies the whole step.
func (r *EffectRunner) RetryFailed(ctx context.Context) (succeeded, failed int, err error) {
	effects, err := r.Outbox.ListFailed(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, effect := range effects {
		if runErr := r.run(ctx, effect.Kind, effect.Payload); runErr != nil {
			failed++
			if markErr := r.Outbox.MarkFailed(ctx, effect.ID, runErr); markErr != nil {
				log.Printf("outbox: failed to mark %s failed: %v", effect.Kind, markErr)
			}
			continue
		}
		succeeded++
		if markErr := r.Outbox.MarkDone(ctx, effect.ID); markErr != nil {
			log.Printf("outbox: failed to mark %s done: %v", effect.Kind, markErr)
		}
	}
	return succeeded, failed, nil
}

func (r *EffectRunner) run(ctx context.Context, kind string, payload bson.M) error {
	switch kind {
	case models.EffectAwardPoints:
		return r.runAwardPoints(ctx, payload)
	case models.EffectActivity:
		return r.runActivity(ctx, payload)
	case models.EffectNotification:
		return r.runNotification(ctx, payload)
	default:
		return fmt.Errorf("unknown side effect kind %q", kind)
	}
}

func (r *EffectRunner) runAwardPoints(ctx context.Context, payload bson.M) error {
	userID, err := payloadID(payload, "user")
	if err != nil {
		return err
	}
	donationID, err := payloadID(payload, "donation")
	if err != nil {
		return err
	}
	points := payloadInt(payload, "points")

	user, err := r.Users.CreditDonation(ctx, userID, points, donationID)
	if err != nil {
		return err
	}

	// level_up fires exactly when the increment crossed a threshold.
	before := models.LevelForPoints(user.Points - points)
	after := models.LevelForPoints(user.Points)
	if before == after {
		return nil
	}
	if err := r.Users.SetLevel(ctx, userID, after); err != nil {
		return err
	}
	return r.Activities.Insert(ctx, &models.Activity{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Type:   models.ActivityLevelUp,
		Details: map[string]any{
			"from":   before,
			"to":     after,
			"points": user.Points,
		},
		Timestamp: r.now(),
	})
}

func (r *EffectRunner) runActivity(ctx context.Context, payload bson.M) error {
	userID, err := payloadID(payload, "user")
	if err != nil {
		return err
	}
	activity := &models.Activity{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      payloadString(payload, "type"),
		Timestamp: r.now(),
	}
	if campaignID, err := payloadID(payload, "campaign"); err == nil {
		activity.Campaign = &campaignID
	}
	if details, ok := payload["details"].(bson.M); ok {
		activity.Details = map[string]any(details)
	}
	return r.Activities.Insert(ctx, activity)
}

func (r *EffectRunner) runNotification(ctx context.Context, payload bson.M) error {
	userID, err := payloadID(payload, "user")
	if err != nil {
		return err
	}
	notification := &models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      payloadString(payload, "type"),
		Title:     payloadString(payload, "title"),
		Message:   payloadString(payload, "message"),
		CreatedAt: r.now(),
	}
	if campaignID, err := payloadID(payload, "campaign"); err == nil {
		notification.Campaign = &campaignID
	}
	if err := r.Notifications.Insert(ctx, notification); err != nil {
		return err
	}

	if r.Mailer != nil {
		if recipient, err := r.Users.Get(ctx, userID); err == nil && recipient.Email != "" {
			if mailErr := r.Mailer(recipient.Email, notification.Title, notification.Message); mailErr != nil {
				log.Printf("notification email to %s failed: %v", recipient.Email, mailErr)
			}
		}
	}
	return nil
}

// --- payload helpers ---

// Object ids cross the outbox as hex strings so payloads survive a
// store/reload round trip.

func payloadID(payload bson.M, key string) (primitive.ObjectID, error) {
	raw, ok := payload[key]
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("payload missing %q", key)
	}
	switch v := raw.(type) {
	case string:
		return primitive.ObjectIDFromHex(v)
	case primitive.ObjectID:
		return v, nil
	default:
		return primitive.NilObjectID, fmt.Errorf("payload field %q has type %T", key, raw)
	}
}

func payloadString(payload bson.M, key string) string {
	s, _ := payload[key].(string)
	return s
}

func payloadInt(payload bson.M, key string) int {
	switch v := payload[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
