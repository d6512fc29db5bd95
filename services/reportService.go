package services

import (
	"GoodDental/models"
	"GoodDental/storage"
	"GoodDental/utils"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrArchiveDisabled = errors.New("report archive is not configured")

// ProductTotal is how much of one product sold in a period.
type ProductTotal struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// SalesSummary aggregates the active sales of a period [From, To).
type SalesSummary struct {
	From        int64                            `json:"from"`
	To          int64                            `json:"to"`
	Count       int                              `json:"count"`
	Subtotal    float64                          `json:"subtotal"`
	Tax         float64                          `json:"tax"`
	Total       float64                          `json:"total"`
	ByPayment   map[models.PaymentMethod]float64 `json:"byPayment"`
	TopProducts []ProductTotal                   `json:"topProducts"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	ActivePatients  int          `json:"activePatients"`
	ActiveEmployees int          `json:"activeEmployees"`
	LowStock        int          `json:"lowStock"`
	Today           SalesSummary `json:"today"`
}

// Mailer sends reports by email. *utils.Mailer implements it.
type Mailer interface {
	SendReport(to []string, subject, body string, attachments ...utils.Attachment) error
}

// ReportService builds summaries and exports from the stores.
type ReportService struct {
	stores     *Stores
	archive    storage.Archive
	mailer     Mailer
	recipients []string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewReportService builds the service. archive and mailer may be nil, which
// disables archiving and emailing.
func NewReportService(stores *Stores, archive storage.Archive, mailer Mailer, recipients []string, logger zerolog.Logger) *ReportService {
	return &ReportService{
		stores:     stores,
		archive:    archive,
		mailer:     mailer,
		recipients: recipients,
		logger:     logger.With().Str("component", "reports").Logger(),
		now:        time.Now,
	}
}

func (s *ReportService) salesBetween(from, to time.Time) []models.Sale {
	f, t := from.UnixMilli(), to.UnixMilli()
	return lo.Filter(s.stores.Sales.Items(), func(sale models.Sale, _ int) bool {
		return sale.IsActive && sale.Date >= f && sale.Date < t
	})
}

// SalesSummary aggregates the sales dated in [from, to). Top products are
// ordered by revenue, then name.
func (s *ReportService) SalesSummary(from, to time.Time) SalesSummary {
	sales := s.salesBetween(from, to)

	summary := SalesSummary{
		From:      from.UnixMilli(),
		To:        to.UnixMilli(),
		Count:     len(sales),
		ByPayment: make(map[models.PaymentMethod]float64, len(models.PaymentMethods)),
	}
	for _, m := range models.PaymentMethods {
		summary.ByPayment[m] = 0
	}

	products := make(map[string]*ProductTotal)
	for _, sale := range sales {
		summary.Subtotal += sale.Subtotal
		summary.Tax += sale.Tax
		summary.Total += sale.Total
		summary.ByPayment[sale.PaymentMethod] += sale.Total
		for _, item := range sale.Items {
			p, ok := products[item.ProductID]
			if !ok {
				p = &ProductTotal{ProductID: item.ProductID, Name: item.Name}
				products[item.ProductID] = p
			}
			p.Quantity += item.Quantity
			p.Revenue += item.Subtotal
		}
	}

	summary.Subtotal = roundMoney(summary.Subtotal)
	summary.Tax = roundMoney(summary.Tax)
	summary.Total = roundMoney(summary.Total)
	for m, v := range summary.ByPayment {
		summary.ByPayment[m] = roundMoney(v)
	}

	top := lo.Map(lo.Values(products), func(p *ProductTotal, _ int) ProductTotal {
		p.Revenue = roundMoney(p.Revenue)
		return *p
	})
	sort.Slice(top, func(i, j int) bool {
		if top[i].Revenue != top[j].Revenue {
			return top[i].Revenue > top[j].Revenue
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > 10 {
		top = top[:10]
	}
	summary.TopProducts = top
	return summary
}

// Dashboard summarizes the clinic at now.
func (s *ReportService) Dashboard() Dashboard {
	start, end := dayBounds(s.now())
	return Dashboard{
		ActivePatients:  lo.CountBy(s.stores.Patients.Items(), func(p models.Patient) bool { return p.IsActive }),
		ActiveEmployees: lo.CountBy(s.stores.Employees.Items(), func(e models.Employee) bool { return e.IsActive }),
		LowStock: lo.CountBy(s.stores.Products.Items(), func(p models.Product) bool {
			return p.IsActive && p.LowStock()
		}),
		Today: s.SalesSummary(time.UnixMilli(start), time.UnixMilli(end)),
	}
}

// ExportSales writes the sales of [from, to) as an xlsx workbook, one row per
// sale line.
func (s *ReportService) ExportSales(from, to time.Time) ([]byte, error) {
	sales := s.salesBetween(from, to)

	file := excelize.NewFile()
	sheet := "Sales"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")

	headers := []string{"Date", "Sale", "Product", "Quantity", "Unit price", "Line total", "Payment method", "Sale total"}
	for i, h := range headers {
		file.SetCellValue(sheet, cell(i, 1), h)
	}

	row := 2
	for _, sale := range sales {
		date := time.UnixMilli(sale.Date).Format("2006-01-02 15:04")
		for _, item := range sale.Items {
			values := []interface{}{date, sale.ID, item.Name, item.Quantity, item.UnitPrice, item.Subtotal, string(sale.PaymentMethod), sale.Total}
			for i, v := range values {
				file.SetCellValue(sheet, cell(i, row), v)
			}
			row++
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ArchiveSales exports [from, to) and uploads the workbook, returning its
// location.
func (s *ReportService) ArchiveSales(ctx context.Context, from, to time.Time) (string, error) {
	if s.archive == nil {
		return "", ErrArchiveDisabled
	}
	data, err := s.ExportSales(from, to)
	if err != nil {
		return "", err
	}
	return s.archive.Put(ctx, salesKey(from, to), xlsxContentType, data)
}

// SendDailyReport mails the sales summary and cash closing of day, with the
// workbook attached, and archives the workbook when an archive is set.
func (s *ReportService) SendDailyReport(ctx context.Context, day time.Time) error {
	start, end := dayBounds(day)
	from, to := time.UnixMilli(start), time.UnixMilli(end)

	data, err := s.ExportSales(from, to)
	if err != nil {
		return err
	}
	if s.archive != nil {
		if location, err := s.archive.Put(ctx, salesKey(from, to), xlsxContentType, data); err != nil {
			s.logger.Error().Err(err).Msg("failed to archive daily report")
		} else {
			s.logger.Info().Str("location", location).Msg("daily report archived")
		}
	}

	if s.mailer == nil || len(s.recipients) == 0 {
		s.logger.Debug().Msg("no mailer or recipients configured, daily report not sent")
		return nil
	}
	summary := s.SalesSummary(from, to)
	body := dailyReportBody(from, summary, s.closingFor(day))
	subject := "Daily report " + from.Format("2006-01-02")
	attachment := utils.Attachment{Name: "sales-" + from.Format("2006-01-02") + ".xlsx", Data: data}
	if err := s.mailer.SendReport(s.recipients, subject, body, attachment); err != nil {
		return fmt.Errorf("failed to send daily report: %w", err)
	}
	return nil
}

func (s *ReportService) closingFor(day time.Time) *models.CashClosing {
	c, ok := NewCashService(s.stores).ForDay(day)
	if !ok {
		return nil
	}
	return &c
}

func dailyReportBody(day time.Time, summary SalesSummary, closing *models.CashClosing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Report for %s\n\n", day.Format("Monday, 2006-01-02"))
	fmt.Fprintf(&b, "Sales: %d\nSubtotal: %.2f\nTax: %.2f\nTotal: %.2f\n\n", summary.Count, summary.Subtotal, summary.Tax, summary.Total)
	for _, m := range models.PaymentMethods {
		fmt.Fprintf(&b, "  %s: %.2f\n", m, summary.ByPayment[m])
	}
	b.WriteString("\n")
	if closing == nil {
		b.WriteString("Cash was not closed for this day.\n")
	} else {
		fmt.Fprintf(&b, "Cash closing by %s\nExpected: %.2f\nCounted: %.2f\nDifference: %.2f\n",
			closing.ClosedBy, closing.ExpectedAmount, closing.CountedAmount, closing.Difference)
	}
	return b.String()
}

func salesKey(from, to time.Time) string {
	return fmt.Sprintf("reports/sales-%s-%s.xlsx", from.Format("20060102"), to.Format("20060102"))
}

// cell returns the A1 reference of a zero-based column and one-based row.
func cell(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}
