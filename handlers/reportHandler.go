package handlers

import (
	"GoodDental/middlewares"
	"GoodDental/services"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reports *services.ReportService
	stores  *services.Stores
}

func NewReportHandler(reports *services.ReportService, stores *services.Stores) *ReportHandler {
	return &ReportHandler{reports: reports, stores: stores}
}

// period reads ?from= and ?to= as days. to is inclusive; the default is the
// current month up to today.
func period(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	y, m, d := now.Date()
	from, ok := dayParam(c, "from", time.Date(y, m, 1, 0, 0, 0, 0, time.Local))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := dayParam(c, "to", time.Date(y, m, d, 0, 0, 0, 0, time.Local))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to = to.AddDate(0, 0, 1)
	if !from.Before(to) {
		middlewares.HttpError(c, "from must not be after to", http.StatusBadRequest, nil)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *ReportHandler) SalesSummary(c *gin.Context) {
	from, to, ok := period(c)
	if !ok {
		return
	}
	middlewares.RespondJSON(c, h.reports.SalesSummary(from, to), http.StatusOK)
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	middlewares.RespondJSON(c, h.reports.Dashboard(), http.StatusOK)
}

// ExportSales downloads the period's sales as a workbook.
func (h *ReportHandler) ExportSales(c *gin.Context) {
	from, to, ok := period(c)
	if !ok {
		return
	}
	data, err := h.reports.ExportSales(from, to)
	if err != nil {
		middlewares.RespondError(c, "Failed to export sales", err)
		return
	}
	filename := "sales-" + from.Format(dayLayout) + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ArchiveSales uploads the period's workbook to the report archive.
func (h *ReportHandler) ArchiveSales(c *gin.Context) {
	from, to, ok := period(c)
	if !ok {
		return
	}
	location, err := h.reports.ArchiveSales(c.Request.Context(), from, to)
	if err != nil {
		middlewares.RespondError(c, "Failed to archive sales", err)
		return
	}
	middlewares.RespondJSON(c, gin.H{"location": location}, http.StatusCreated)
}

// SendDailyReport runs the daily report of ?day= on demand.
func (h *ReportHandler) SendDailyReport(c *gin.Context) {
	day, ok := dayParam(c, "day", time.Now())
	if !ok {
		return
	}
	if err := h.reports.SendDailyReport(c.Request.Context(), day); err != nil {
		middlewares.RespondError(c, "Failed to send daily report", err)
		return
	}
	c.Status(http.StatusAccepted)
}

// ExportCollection returns a whole collection as JSON.
func (h *ReportHandler) ExportCollection(c *gin.Context) {
	collection := c.Param("collection")
	data, ok := h.stores.Export(collection)
	if !ok {
		middlewares.HttpError(c, "Unknown collection "+collection, http.StatusNotFound, nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+collection+`.json"`)
	middlewares.RespondJSON(c, data, http.StatusOK)
}
