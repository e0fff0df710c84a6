package orders

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Store is the persistence surface the payment flow needs. The gorm Repo is
// the real implementation; tests use in-memory fakes.
type Store interface {
	FindByID(ctx context.Context, id string) (Order, error)

	// MarkPaid flips the order to paid and records the payment result in a
	// single conditional update. The bool reports whether this call did the
	// transition; false means the order was already paid and nothing changed.
	MarkPaid(ctx context.Context, id string, res PaymentResult, paidAt time.Time) (Order, bool, error)
}

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// DB returns the underlying database connection for direct queries.
func (r *Repo) DB() *gorm.DB { return r.db }

func (r *Repo) FindByID(ctx context.Context, id string) (Order, error) {
	var o Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func (r *Repo) MarkPaid(ctx context.Context, id string, res PaymentResult, paidAt time.Time) (Order, bool, error) {
	// Conditional write: "set paid where not already paid". Two concurrent
	// verifications for the same order race on this row; exactly one sees
	// RowsAffected == 1 and owns the receipt send.
	tx := r.db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND is_paid = 0", id).
		Updates(map[string]any{
			"is_paid":        true,
			"status":         "paid",
			"paid_at":        &paidAt,
			"payment_ref":    res.Ref,
			"payment_status": res.Status,
			"payment_email":  res.Email,
			"price_paid":     res.PricePaid,
			"updated_at":     time.Now(),
		})
	if tx.Error != nil {
		return Order{}, false, tx.Error
	}

	o, err := r.FindByID(ctx, id)
	if err != nil {
		return Order{}, false, err
	}
	return o, tx.RowsAffected == 1, nil
}

func (r *Repo) GetWithItems(ctx context.Context, id string) (Order, []OrderItem, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	var items []OrderItem
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&items, "order_id = ?", id).Error; err != nil {
		return Order{}, nil, err
	}
	return o, items, nil
}
