package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jumlamart.com/app/internal/modules/orders"
)

// checkoutStore persists payment rows for checkout initiation. The gorm
// implementation is the real one; tests swap in an in-memory fake.
type checkoutStore interface {
	// beginCheckout locks the order and returns the initiated payment for
	// (orderID, idemKey), creating one if this is the first call with that key.
	beginCheckout(ctx context.Context, orderID, idemKey string) (Payment, orders.Order, error)

	// finalizeCheckout records the gateway's answer: checkout URL and
	// reference on success, failed status with the message otherwise.
	finalizeCheckout(ctx context.Context, paymentID string, data InitializeData, errMsg *string) error

	markSucceeded(ctx context.Context, orderID, ref string) error
}

type gormCheckoutStore struct{ db *gorm.DB }

func (s *gormCheckoutStore) beginCheckout(ctx context.Context, orderID, idemKey string) (Payment, orders.Order, error) {
	var created Payment
	var ord orders.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ord, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return orders.ErrNotFound
			}
			return err
		}

		if ord.IsPaid {
			return ErrOrderNotPayable
		}

		// Same order + key replays return the existing payment.
		var existing Payment
		e := tx.WithContext(ctx).First(&existing, "order_id = ? AND idempotency_key = ?", ord.ID, idemKey).Error
		if e == nil {
			created = existing
			return nil
		}
		if !errors.Is(e, gorm.ErrRecordNotFound) {
			return e
		}

		now := time.Now()
		created = Payment{
			ID:             uuid.NewString(),
			OrderID:        ord.ID,
			Provider:       ProviderName,
			Status:         StatusInitiated,
			AmountCents:    ord.TotalCents,
			Currency:       ord.Currency,
			IdempotencyKey: idemKey,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return tx.WithContext(ctx).Create(&created).Error
	})
	return created, ord, err
}

func (s *gormCheckoutStore) finalizeCheckout(ctx context.Context, paymentID string, data InitializeData, errMsg *string) error {
	updates := map[string]any{"updated_at": time.Now()}

	if errMsg != nil {
		updates["status"] = StatusFailed
		updates["error_message"] = *errMsg
	} else {
		updates["status"] = StatusInitiated
		updates["provider_ref"] = data.Reference
		updates["checkout_url"] = data.AuthorizationURL
		updates["error_message"] = nil
	}

	return s.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ?", paymentID).
		Updates(updates).Error
}

func (s *gormCheckoutStore) markSucceeded(ctx context.Context, orderID, ref string) error {
	return s.db.WithContext(ctx).Model(&Payment{}).
		Where("order_id = ? AND provider = ? AND provider_ref = ? AND status <> ?",
			orderID, ProviderName, ref, StatusSucceeded).
		Updates(map[string]any{
			"status":        StatusSucceeded,
			"error_message": nil,
			"updated_at":    time.Now(),
		}).Error
}
