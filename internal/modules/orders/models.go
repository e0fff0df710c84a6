package orders

import "time"

type Order struct {
	ID         string  `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     *string `gorm:"type:char(36);index:ix_orders_user_id" json:"userId,omitempty"`
	GuestEmail *string `gorm:"type:varchar(255)" json:"guestEmail,omitempty"`

	Status     string `gorm:"type:varchar(32);not null" json:"status"`
	Currency   string `gorm:"type:char(3);not null" json:"currency"`
	TotalCents int    `gorm:"not null" json:"totalCents"`

	IsPaid bool       `gorm:"not null;default:0" json:"isPaid"`
	PaidAt *time.Time `gorm:"type:datetime(3)" json:"paidAt,omitempty"`

	// Payment result, written once by reconciliation.
	PaymentRef    *string `gorm:"type:varchar(128)" json:"paymentRef,omitempty"`
	PaymentStatus *string `gorm:"type:varchar(32)" json:"paymentStatus,omitempty"`
	PaymentEmail  *string `gorm:"type:varchar(255)" json:"paymentEmail,omitempty"`
	PricePaid     *string `gorm:"type:varchar(32)" json:"pricePaid,omitempty"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null" json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }

// ReceiptEmail picks the address a receipt should go to: the payment result
// email wins over the checkout guest email.
func (o Order) ReceiptEmail() string {
	if o.PaymentEmail != nil && *o.PaymentEmail != "" {
		return *o.PaymentEmail
	}
	if o.GuestEmail != nil {
		return *o.GuestEmail
	}
	return ""
}

type OrderItem struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID        string    `gorm:"type:char(36);not null;index:ix_order_items_order_id" json:"orderId"`
	ProductName    string    `gorm:"type:varchar(255);not null" json:"productName"`
	Category       string    `gorm:"type:varchar(64);not null" json:"category"`
	UnitPriceCents int       `gorm:"not null" json:"unitPriceCents"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	LineTotalCents int       `gorm:"not null" json:"lineTotalCents"`
	Currency       string    `gorm:"type:char(3);not null" json:"currency"`
	CreatedAt      time.Time `gorm:"type:datetime(3);not null" json:"createdAt"`
}

func (OrderItem) TableName() string { return "order_items" }

// PaymentResult is what reconciliation records on a paid order.
type PaymentResult struct {
	Ref       string // gateway transaction reference
	Status    string // gateway status string, e.g. "success"
	Email     string // payer email reported by the gateway
	PricePaid string // decimal string with two fractional digits
}
