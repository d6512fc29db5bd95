package handlers

import (
	"GoodDental/middlewares"
	"GoodDental/services"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const dayLayout = "2006-01-02"

type CashHandler struct {
	service *services.CashService
}

func NewCashHandler(service *services.CashService) *CashHandler {
	return &CashHandler{service: service}
}

// Preview shows the expected drawer for ?day= (default today) given
// ?opening=.
func (h *CashHandler) Preview(c *gin.Context) {
	day, ok := dayParam(c, "day", time.Now())
	if !ok {
		return
	}
	opening := 0.0
	if raw := c.Query("opening"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			middlewares.HttpError(c, "opening must be a non-negative number", http.StatusBadRequest, err)
			return
		}
		opening = v
	}
	middlewares.RespondJSON(c, h.service.Preview(day, opening), http.StatusOK)
}

// Close stores the closing of ?day= as the caller.
func (h *CashHandler) Close(c *gin.Context) {
	identity, err := middlewares.IdentityFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Not authenticated", http.StatusUnauthorized, err)
		return
	}
	day, ok := dayParam(c, "day", time.Now())
	if !ok {
		return
	}
	var req services.CloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	if req.OpeningAmount < 0 || req.CountedAmount < 0 {
		middlewares.HttpError(c, "amounts must not be negative", http.StatusBadRequest, nil)
		return
	}
	req.Day = day
	req.ClosedBy = identity.ID

	closing, err := h.service.Close(c.Request.Context(), req)
	if err != nil {
		middlewares.RespondError(c, "Failed to close cash", err)
		return
	}
	middlewares.RespondJSON(c, closing, http.StatusCreated)
}

// ForDay returns the closing of ?day=.
func (h *CashHandler) ForDay(c *gin.Context) {
	day, ok := dayParam(c, "day", time.Now())
	if !ok {
		return
	}
	closing, found := h.service.ForDay(day)
	if !found {
		middlewares.HttpError(c, "Cash was not closed on "+day.Format(dayLayout), http.StatusNotFound, nil)
		return
	}
	middlewares.RespondJSON(c, closing, http.StatusOK)
}

// dayParam reads a YYYY-MM-DD query value in local time. On a bad value it
// writes the 400 response and returns false.
func dayParam(c *gin.Context, key string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	day, err := time.ParseInLocation(dayLayout, raw, time.Local)
	if err != nil {
		middlewares.HttpError(c, key+" must be formatted as YYYY-MM-DD", http.StatusBadRequest, err)
		return time.Time{}, false
	}
	return day, true
}
