package handlers

import (
	"GoodDental/middlewares"
	"GoodDental/models"
	"GoodDental/services"
	"GoodDental/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PatientHandler struct {
	service *services.PatientService
}

func NewPatientHandler(service *services.PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

// AddClinicalEntry appends a visit to the patient's medical history.
func (h *PatientHandler) AddClinicalEntry(c *gin.Context) {
	var entry models.ClinicalEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		middlewares.HttpError(c, "Invalid request body", http.StatusBadRequest, err)
		return
	}
	if err := utils.ValidateClinicalEntry(entry); err != nil {
		middlewares.RespondError(c, "Invalid clinical entry", err)
		return
	}

	patient, err := h.service.AddClinicalEntry(c.Request.Context(), c.Param("id"), entry)
	if err != nil {
		middlewares.RespondError(c, "Failed to add clinical entry", err)
		return
	}
	middlewares.RespondJSON(c, patient, http.StatusCreated)
}

// MedicalRecords lists the medical records of one patient.
func (h *PatientHandler) MedicalRecords(c *gin.Context) {
	records, err := h.service.MedicalRecordsFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		middlewares.RespondError(c, "Failed to list medical records", err)
		return
	}
	middlewares.RespondJSON(c, records, http.StatusOK)
}
