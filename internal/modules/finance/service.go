package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Service assembles seller and platform finance views.
type Service interface {
	SellerSummary(ctx context.Context, sellerID string) (*SellerSummary, error)
	// PlatformSales reports on [from, to). Zero values default to the last
	// 30 days.
	PlatformSales(ctx context.Context, from, to time.Time) (*SalesReport, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

const defaultWindow = 30 * 24 * time.Hour

func (s *service) SellerSummary(ctx context.Context, sellerID string) (*SellerSummary, error) {
	sum, err := s.repo.SellerTotals(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.SellerStatusCounts(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	sum.ByStatus = make(map[string]int, len(counts))
	for _, c := range counts {
		sum.ByStatus[c.Status] = c.Count
	}
	return sum, nil
}

func (s *service) PlatformSales(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-defaultWindow)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("invalid range: from must be before to")
	}

	daily, err := s.repo.DailySales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.repo.SalesByMethod(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &SalesReport{From: from, To: to, Daily: daily, ByMethod: byMethod}
	total, paid := decimal.Zero, decimal.Zero
	for _, d := range daily {
		report.Orders += d.Orders
		total = total.Add(decimal.NewFromFloat(d.TotalXOF))
		paid = paid.Add(decimal.NewFromFloat(d.PaidXOF))
	}
	report.TotalXOF = total.InexactFloat64()
	report.PaidXOF = paid.InexactFloat64()
	if report.Daily == nil {
		report.Daily = []*DailySales{}
	}
	if report.ByMethod == nil {
		report.ByMethod = []*MethodSales{}
	}
	return report, nil
}
