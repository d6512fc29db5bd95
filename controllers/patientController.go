package controllers

import (
	"GoodDental/handlers"
	"GoodDental/middlewares"
	"GoodDental/models"

	"github.com/gin-gonic/gin"
)

// ClinicHandlers are the handlers of the clinical sections.
type ClinicHandlers struct {
	Patients       *handlers.EntityHandler[models.Patient, *models.Patient]
	MedicalRecords *handlers.EntityHandler[models.MedicalRecord, *models.MedicalRecord]
	Patient        *handlers.PatientHandler
	Dentogram      *handlers.DentogramHandler
}

// SetupPatientRoutes registers patients, medical records and the dentogram.
func SetupPatientRoutes(api *gin.RouterGroup, h ClinicHandlers) {
	clinical := middlewares.RequireRoute("/medical-records")

	patients := api.Group("/patients", middlewares.RequireRoute("/patients"))
	h.Patients.Register(patients, false)
	patients.POST("/:id/history", clinical, h.Patient.AddClinicalEntry)
	patients.GET("/:id/medical-records", clinical, h.Patient.MedicalRecords)

	records := api.Group("/medical-records", clinical)
	h.MedicalRecords.Register(records, false)

	chart := api.Group("/dentogram/:patientId", middlewares.RequireRoute("/dentogram"))
	{
		chart.POST("/open", h.Dentogram.Open)
		chart.GET("", h.Dentogram.View)
		chart.PATCH("/teeth/:tooth", h.Dentogram.UpdateTooth)
		chart.POST("/reset", h.Dentogram.Reset)
		chart.POST("/save", h.Dentogram.Save)
		chart.DELETE("", h.Dentogram.Close)
	}
}
