package services

import (
	"GoodDental/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
)

var ErrAlreadyClosed = errors.New("cash for this day is already closed")

// CloseRequest is the cashier's count at the end of a day.
type CloseRequest struct {
	Day           time.Time `json:"-"`
	OpeningAmount float64   `json:"openingAmount"`
	CountedAmount float64   `json:"countedAmount"`
	Notes         string    `json:"notes"`
	ClosedBy      string    `json:"-"`
}

// CashService reconciles the cash drawer against the day's cash sales.
type CashService struct {
	stores *Stores
}

func NewCashService(stores *Stores) *CashService {
	return &CashService{stores: stores}
}

// Preview computes the expected drawer for day without storing anything.
func (s *CashService) Preview(day time.Time, opening float64) models.CashClosing {
	start, end := dayBounds(day)
	cash := lo.Filter(s.stores.Sales.Items(), func(sale models.Sale, _ int) bool {
		return sale.IsActive && sale.PaymentMethod == models.PaymentCash && sale.Date >= start && sale.Date < end
	})
	cashSales := roundMoney(lo.SumBy(cash, func(sale models.Sale) float64 { return sale.Total }))

	return models.CashClosing{
		Date:           start,
		OpeningAmount:  opening,
		CashSales:      cashSales,
		ExpectedAmount: roundMoney(opening + cashSales),
		SalesCount:     len(cash),
	}
}

// Close stores the closing of req.Day. Each day can be closed once.
func (s *CashService) Close(ctx context.Context, req CloseRequest) (models.CashClosing, error) {
	closing := s.Preview(req.Day, req.OpeningAmount)
	if _, found := s.ForDay(req.Day); found {
		return models.CashClosing{}, ErrAlreadyClosed
	}

	closing.CountedAmount = req.CountedAmount
	closing.Difference = roundMoney(req.CountedAmount - closing.ExpectedAmount)
	closing.Notes = req.Notes
	closing.ClosedBy = req.ClosedBy

	created, err := s.stores.CashClosings.Create(ctx, closing)
	if err != nil {
		return models.CashClosing{}, fmt.Errorf("failed to store cash closing: %w", err)
	}
	return created, nil
}

// ForDay returns the active closing of day.
func (s *CashService) ForDay(day time.Time) (models.CashClosing, bool) {
	start, _ := dayBounds(day)
	return lo.Find(s.stores.CashClosings.Items(), func(c models.CashClosing) bool {
		return c.IsActive && c.Date == start
	})
}

// dayBounds returns the first and one-past-last millisecond of day's
// calendar date in day's location.
func dayBounds(day time.Time) (int64, int64) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli()
}
