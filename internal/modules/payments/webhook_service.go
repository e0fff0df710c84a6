package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"jumlamart.com/app/internal/modules/orders"
)

// ProviderEvent records every webhook delivery. unique(provider, event_id)
// dedupes gateway retries; a row with a nil ProcessedAt is retryable.
type ProviderEvent struct {
	ID          string         `gorm:"type:char(36);primaryKey"`
	Provider    string         `gorm:"type:varchar(64);not null;uniqueIndex:ux_provider_events_provider_event,priority:1"`
	EventID     string         `gorm:"type:varchar(191);not null;uniqueIndex:ux_provider_events_provider_event,priority:2"`
	EventType   string         `gorm:"type:varchar(64);not null"`
	PayloadJSON datatypes.JSON `gorm:"type:json;not null"`

	ReceivedAt   time.Time  `gorm:"type:datetime(3);not null"`
	ProcessedAt  *time.Time `gorm:"type:datetime(3)"`
	ProcessError *string    `gorm:"type:varchar(255)"`
}

func (ProviderEvent) TableName() string { return "provider_events" }

// eventStore persists provider events. The gorm implementation translates the
// unique-index violation into the dup flag; tests use an in-memory fake.
type eventStore interface {
	insertEvent(ctx context.Context, pe *ProviderEvent) (dup bool, err error)
	findEvent(ctx context.Context, provider, eventID string) (ProviderEvent, error)
	markEventFailed(ctx context.Context, id, msg string) error
	markEventProcessed(ctx context.Context, id string) error
}

type gormEventStore struct{ db *gorm.DB }

func (s *gormEventStore) insertEvent(ctx context.Context, pe *ProviderEvent) (bool, error) {
	if err := s.db.WithContext(ctx).Create(pe).Error; err != nil {
		if isDup(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func (s *gormEventStore) findEvent(ctx context.Context, provider, eventID string) (ProviderEvent, error) {
	var pe ProviderEvent
	err := s.db.WithContext(ctx).First(&pe, "provider = ? AND event_id = ?", provider, eventID).Error
	return pe, err
}

func (s *gormEventStore) markEventFailed(ctx context.Context, id, msg string) error {
	return s.db.WithContext(ctx).Model(&ProviderEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{"process_error": msg}).Error
}

func (s *gormEventStore) markEventProcessed(ctx context.Context, id string) error {
	processed := time.Now()
	return s.db.WithContext(ctx).Model(&ProviderEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{"processed_at": &processed, "process_error": nil}).Error
}

type WebhookService struct {
	events eventStore
	svc    *Service
	logger *slog.Logger
}

func NewWebhookService(db *gorm.DB, svc *Service) *WebhookService {
	return &WebhookService{events: &gormEventStore{db: db}, svc: svc, logger: slog.Default()}
}

func (s *WebhookService) SetLogger(logger *slog.Logger) { s.logger = logger }

// Handle persists the event, applies it, then marks it processed. A non-nil
// return maps to a 500 so the gateway retries the delivery.
func (s *WebhookService) Handle(ctx context.Context, ev WebhookEvent, rawBody []byte) error {
	pe := ProviderEvent{
		ID:          uuid.NewString(),
		Provider:    ProviderName,
		EventID:     ev.EventID(),
		EventType:   ev.Event,
		PayloadJSON: datatypes.JSON(rawBody),
		ReceivedAt:  time.Now(),
	}

	dup, err := s.events.insertEvent(ctx, &pe)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist provider event", "event_id", pe.EventID, "err", err)
		return err
	}
	if dup {
		// Redelivery. Re-apply only if the first delivery never finished.
		existing, err := s.events.findEvent(ctx, ProviderName, ev.EventID())
		if err != nil {
			return err
		}
		if existing.ProcessedAt != nil {
			s.logger.InfoContext(ctx, "webhook event deduplicated", "event_id", pe.EventID, "type", ev.Event)
			return nil
		}
		pe = existing
	}

	if applyErr := s.apply(ctx, ev); applyErr != nil {
		msg := truncate(applyErr.Error(), 250)
		if err := s.events.markEventFailed(ctx, pe.ID, msg); err != nil {
			return err
		}
		s.logger.ErrorContext(ctx, "webhook event apply failed", "event_id", pe.EventID, "type", ev.Event, "err", applyErr)
		return applyErr
	}

	if err := s.events.markEventProcessed(ctx, pe.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "webhook event processed", "event_id", pe.EventID, "type", ev.Event)
	return nil
}

func (s *WebhookService) apply(ctx context.Context, ev WebhookEvent) error {
	switch ev.Event {
	case "charge.success":
		data := ev.VerifyData()
		if data.Reference == "" {
			return fmt.Errorf("charge.success event without a reference")
		}
		res := orders.PaymentResult{
			Ref:       data.Reference,
			Status:    GatewaySuccess,
			Email:     data.CustomerEmail,
			PricePaid: PriceFromMinorUnits(data.Amount),
		}
		_, err := s.svc.applyPaid(ctx, data.OrderID, res)
		return err
	default:
		// Paystack sends event types we do not act on; acknowledge them so it
		// stops redelivering.
		s.logger.InfoContext(ctx, "ignoring unhandled webhook event", "type", ev.Event)
		return nil
	}
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
