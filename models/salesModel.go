package models

import (
	"gorm.io/datatypes"
)

// Product model (inventory item sold at the point of sale)
type Product struct {
	Base
	Name        string  `gorm:"column:name;not null;index" json:"name"`
	SKU         string  `gorm:"column:sku;index" json:"sku"`
	Category    string  `gorm:"column:category;index" json:"category"`
	Description string  `gorm:"column:description" json:"description"`
	Price       float64 `gorm:"column:price;not null" json:"price"`
	Cost        float64 `gorm:"column:cost" json:"cost"`
	Stock       int     `gorm:"column:stock;not null" json:"stock"`
	MinStock    int     `gorm:"column:min_stock" json:"minStock"`
}

func (Product) TableName() string {
	return "product"
}

// LowStock reports whether the product has reached its reorder level.
func (p Product) LowStock() bool {
	return p.Stock <= p.MinStock
}

// PaymentMethod of a sale.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// PaymentMethods lists every payment method.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentTransfer}

// SaleItem is one line of a sale.
type SaleItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
}

// Sale model
type Sale struct {
	Base
	PatientID     string                        `gorm:"column:patient_id;index" json:"patientId,omitempty"`
	CashierID     string                        `gorm:"column:cashier_id;not null;index" json:"cashierId"`
	Items         datatypes.JSONSlice[SaleItem] `gorm:"column:items;type:jsonb" json:"items"`
	Subtotal      float64                       `gorm:"column:subtotal;not null" json:"subtotal"`
	Tax           float64                       `gorm:"column:tax;not null" json:"tax"`
	Total         float64                       `gorm:"column:total;not null" json:"total"`
	PaymentMethod PaymentMethod                 `gorm:"column:payment_method;check:payment_method IN ('cash', 'card', 'transfer');not null" json:"paymentMethod"`
	Date          int64                         `gorm:"column:date;not null;index" json:"date"`
}

func (Sale) TableName() string {
	return "sale"
}

// CashClosing model records the end-of-day cash count.
type CashClosing struct {
	Base
	Date           int64   `gorm:"column:date;not null;index" json:"date"`
	OpeningAmount  float64 `gorm:"column:opening_amount;not null" json:"openingAmount"`
	CashSales      float64 `gorm:"column:cash_sales;not null" json:"cashSales"`
	ExpectedAmount float64 `gorm:"column:expected_amount;not null" json:"expectedAmount"`
	CountedAmount  float64 `gorm:"column:counted_amount;not null" json:"countedAmount"`
	Difference     float64 `gorm:"column:difference;not null" json:"difference"`
	SalesCount     int     `gorm:"column:sales_count;not null" json:"salesCount"`
	Notes          string  `gorm:"column:notes" json:"notes"`
	ClosedBy       string  `gorm:"column:closed_by;not null" json:"closedBy"`
}

func (CashClosing) TableName() string {
	return "cash_closing"
}
