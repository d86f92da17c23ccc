package finance

import "time"

// SellerSummary is the finance card of the seller dashboard. Revenue is the
// value of goods sold in XOF; shipping and deliverer fees are excluded.
type SellerSummary struct {
	SellerID       string         `json:"seller_id" db:"-"`
	OrderCount     int            `json:"order_count" db:"order_count"`
	PaidRevenue    float64        `json:"paid_revenue" db:"paid_revenue"`
	PendingRevenue float64        `json:"pending_revenue" db:"pending_revenue"`
	ByStatus       map[string]int `json:"by_status" db:"-"`
}

// StatusCount is one row of an order-status breakdown.
type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// DailySales aggregates non-cancelled orders for one day.
type DailySales struct {
	Day      time.Time `json:"day" db:"day"`
	Orders   int       `json:"orders" db:"orders"`
	TotalXOF float64   `json:"total_xof" db:"total_xof"`
	PaidXOF  float64   `json:"paid_xof" db:"paid_xof"`
}

// MethodSales aggregates non-cancelled orders per payment method.
type MethodSales struct {
	Method   string  `json:"payment_method" db:"payment_method"`
	Orders   int     `json:"orders" db:"orders"`
	TotalXOF float64 `json:"total_xof" db:"total_xof"`
	PaidXOF  float64 `json:"paid_xof" db:"paid_xof"`
}

// SalesReport is the admin sales page for [From, To).
type SalesReport struct {
	From     time.Time      `json:"from"`
	To       time.Time      `json:"to"`
	Orders   int            `json:"orders"`
	TotalXOF float64        `json:"total_xof"`
	PaidXOF  float64        `json:"paid_xof"`
	Daily    []*DailySales  `json:"daily"`
	ByMethod []*MethodSales `json:"by_method"`
}
