package handlers

import (
	"GoodDental/dentogram"
	"GoodDental/middlewares"
	"GoodDental/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type DentogramHandler struct {
	service *services.DentogramService
}

func NewDentogramHandler(service *services.DentogramService) *DentogramHandler {
	return &DentogramHandler{service: service}
}

// Open starts an editing session for the caller from the stored chart.
func (h *DentogramHandler) Open(c *gin.Context) {
	identity, err := middlewares.IdentityFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Not authenticated", http.StatusUnauthorized, err)
		return
	}
	view, err := h.service.Open(c.Request.Context(), c.Param("patientId"), identity.ID)
	if err != nil {
		middlewares.RespondError(c, "Failed to open dentogram", err)
		return
	}
	middlewares.RespondJSON(c, view, http.StatusOK)
}

func (h *DentogramHandler) View(c *gin.Context) {
	view, err := h.service.View(c.Param("patientId"))
	if err != nil {
		middlewares.RespondError(c, "Failed to read dentogram", err)
		return
	}
	middlewares.RespondJSON(c, view, http.StatusOK)
}

// UpdateTooth changes one surface and/or the notes of one tooth.
func (h *DentogramHandler) UpdateTooth(c *gin.Context) {
	tooth, err := strconv.Atoi(c.Param("tooth"))
	if err != nil {
		middlewares.HttpError(c, "Invalid tooth number", http.StatusBadRequest, err)
		return
	}
	var body struct {
		Surface dentogram.Surface       `json:"surface"`
		Status  dentogram.SurfaceStatus `json:"status"`
		Notes   *string                 `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	if body.Surface == "" && body.Notes == nil {
		middlewares.HttpError(c, "surface or notes is required", http.StatusBadRequest, nil)
		return
	}

	patientID := c.Param("patientId")
	var view services.DentogramView
	if body.Surface != "" {
		if view, err = h.service.SetSurface(patientID, tooth, body.Surface, body.Status); err != nil {
			middlewares.RespondError(c, "Failed to update tooth", err)
			return
		}
	}
	if body.Notes != nil {
		if view, err = h.service.SetNotes(patientID, tooth, *body.Notes); err != nil {
			middlewares.RespondError(c, "Failed to update tooth", err)
			return
		}
	}
	middlewares.RespondJSON(c, view, http.StatusOK)
}

func (h *DentogramHandler) Reset(c *gin.Context) {
	view, err := h.service.Reset(c.Param("patientId"))
	if err != nil {
		middlewares.RespondError(c, "Failed to reset dentogram", err)
		return
	}
	middlewares.RespondJSON(c, view, http.StatusOK)
}

// Save writes the open chart as the caller.
func (h *DentogramHandler) Save(c *gin.Context) {
	identity, err := middlewares.IdentityFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Not authenticated", http.StatusUnauthorized, err)
		return
	}
	view, err := h.service.Save(c.Request.Context(), c.Param("patientId"), identity.ID)
	if err != nil {
		middlewares.RespondError(c, "Failed to save dentogram", err)
		return
	}
	middlewares.RespondJSON(c, view, http.StatusOK)
}

// Close discards the session.
func (h *DentogramHandler) Close(c *gin.Context) {
	h.service.Close(c.Param("patientId"))
	c.Status(http.StatusNoContent)
}
