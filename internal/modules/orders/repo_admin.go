package orders

import (
	"context"
	"time"
)

// Read side for the admin overview charts.

type DailySales struct {
	Day        string `gorm:"column:day" json:"date"`
	TotalCents int    `gorm:"column:total_cents" json:"totalCents"`
	Orders     int    `gorm:"column:orders" json:"orders"`
}

type CategorySales struct {
	Category   string `gorm:"column:category" json:"category"`
	TotalCents int    `gorm:"column:total_cents" json:"totalCents"`
}

func (r *Repo) SalesByDay(ctx context.Context, days int) ([]DailySales, error) {
	if days < 1 || days > 366 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var out []DailySales
	err := r.db.WithContext(ctx).Model(&Order{}).
		Select("DATE_FORMAT(paid_at, '%Y-%m-%d') AS day, SUM(total_cents) AS total_cents, COUNT(*) AS orders").
		Where("is_paid = 1 AND paid_at >= ?", since).
		Group("day").
		Order("day ASC").
		Scan(&out).Error
	return out, err
}

func (r *Repo) SalesByCategory(ctx context.Context) ([]CategorySales, error) {
	var out []CategorySales
	err := r.db.WithContext(ctx).Model(&OrderItem{}).
		Select("order_items.category AS category, SUM(order_items.line_total_cents) AS total_cents").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.is_paid = 1").
		Group("order_items.category").
		Order("total_cents DESC").
		Scan(&out).Error
	return out, err
}

func (r *Repo) RecentPaid(ctx context.Context, limit int) ([]Order, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	var out []Order
	err := r.db.WithContext(ctx).
		Where("is_paid = 1").
		Order("paid_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
