package services

import (
	"GoodDental/models"
	"GoodDental/store"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

var (
	ErrEmptyCart            = errors.New("sale has no items")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrUnknownProduct       = errors.New("product not found")
	ErrInactiveProduct      = errors.New("product is not active")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// CartItem is one requested line of a sale.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is a sale as the cashier submits it.
type CheckoutRequest struct {
	PatientID     string               `json:"patientId"`
	CashierID     string               `json:"-"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Items         []CartItem           `json:"items"`
}

// StockUpdateError lists the products whose stock could not be decremented
// after the sale itself was stored.
type StockUpdateError struct {
	SaleID string
	Errors map[string]error
}

func (e *StockUpdateError) Error() string {
	return fmt.Sprintf("sale %s stored but stock of %d product(s) was not updated", e.SaleID, len(e.Errors))
}

// POSService sells products and keeps inventory counts.
type POSService struct {
	stores *Stores
	logger zerolog.Logger
	now    func() time.Time
}

func NewPOSService(stores *Stores, logger zerolog.Logger) *POSService {
	return &POSService{
		stores: stores,
		logger: logger.With().Str("component", "pos").Logger(),
		now:    time.Now,
	}
}

// TaxRate is the rate of the first active clinic settings row, or zero.
func (s *POSService) TaxRate() float64 {
	info, ok := lo.Find(s.stores.Enterprise.Items(), func(e models.EnterpriseInfo) bool { return e.IsActive })
	if !ok {
		return 0
	}
	return info.TaxRate
}

// Quote prices a cart without storing anything.
func (s *POSService) Quote(req CheckoutRequest) (models.Sale, error) {
	if !lo.Contains(models.PaymentMethods, req.PaymentMethod) {
		return models.Sale{}, ErrInvalidPaymentMethod
	}
	if len(req.Items) == 0 {
		return models.Sale{}, ErrEmptyCart
	}

	// repeated products are merged into one line, in first-seen order
	quantities := make(map[string]int)
	var order []string
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return models.Sale{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, item.ProductID)
		}
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	lines := make([]models.SaleItem, 0, len(order))
	var subtotal float64
	for _, id := range order {
		product, ok := s.stores.Products.Get(id)
		if !ok {
			return models.Sale{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
		}
		if !product.IsActive {
			return models.Sale{}, fmt.Errorf("%w: %s", ErrInactiveProduct, product.Name)
		}
		qty := quantities[id]
		if product.Stock < qty {
			return models.Sale{}, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, product.Name, product.Stock, qty)
		}
		line := models.SaleItem{
			ProductID: id,
			Name:      product.Name,
			Quantity:  qty,
			UnitPrice: product.Price,
			Subtotal:  roundMoney(product.Price * float64(qty)),
		}
		subtotal += line.Subtotal
		lines = append(lines, line)
	}

	subtotal = roundMoney(subtotal)
	tax := roundMoney(subtotal * s.TaxRate())
	return models.Sale{
		PatientID:     req.PatientID,
		CashierID:     req.CashierID,
		Items:         lines,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         roundMoney(subtotal + tax),
		PaymentMethod: req.PaymentMethod,
		Date:          s.now().UnixMilli(),
	}, nil
}

// Checkout stores the sale and then takes the sold quantities out of stock.
// A stock decrement that fails is reported as a *StockUpdateError alongside
// the stored sale.
func (s *POSService) Checkout(ctx context.Context, req CheckoutRequest) (models.Sale, error) {
	sale, err := s.Quote(req)
	if err != nil {
		return models.Sale{}, err
	}

	created, err := s.stores.Sales.Create(ctx, sale)
	if err != nil {
		return models.Sale{}, fmt.Errorf("failed to store sale: %w", err)
	}

	var stockErr *StockUpdateError
	for _, line := range created.Items {
		if _, err := s.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
			s.logger.Error().Err(err).Str("sale_id", created.ID).Str("product_id", line.ProductID).Msg("failed to decrement stock")
			if stockErr == nil {
				stockErr = &StockUpdateError{SaleID: created.ID, Errors: map[string]error{}}
			}
			stockErr.Errors[line.ProductID] = err
		}
	}
	if stockErr != nil {
		return created, stockErr
	}
	return created, nil
}

// AdjustStock adds delta to a product's stock. Stock never goes below zero.
func (s *POSService) AdjustStock(ctx context.Context, productID string, delta int) (models.Product, error) {
	product, ok := s.stores.Products.Get(productID)
	if !ok {
		return models.Product{}, store.ErrNotLoaded
	}
	if product.Stock+delta < 0 {
		return models.Product{}, fmt.Errorf("%w: %s has %d", ErrInsufficientStock, product.Name, product.Stock)
	}
	product.Stock += delta
	return s.stores.Products.Update(ctx, product)
}

// LowStock lists active products at or below their reorder level.
func (s *POSService) LowStock() []models.Product {
	return lo.Filter(s.stores.Products.Items(), func(p models.Product, _ int) bool {
		return p.IsActive && p.LowStock()
	})
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
