package services

import (
	"GoodDental/models"
	"GoodDental/store"
	"context"
	"fmt"
)

type PatientService struct {
	patients *store.Store[models.Patient]
	records  Remote[models.MedicalRecord]
}

func NewPatientService(patients *store.Store[models.Patient], records Remote[models.MedicalRecord]) *PatientService {
	return &PatientService{patients: patients, records: records}
}

// AddClinicalEntry appends entry to the patient's medical history.
func (s *PatientService) AddClinicalEntry(ctx context.Context, patientID string, entry models.ClinicalEntry) (models.Patient, error) {
	patient, ok := s.patients.Get(patientID)
	if !ok {
		return models.Patient{}, store.ErrNotLoaded
	}

	// the stored slice may be shared with earlier snapshots
	history := make([]models.ClinicalEntry, 0, len(patient.MedicalHistory)+1)
	history = append(history, patient.MedicalHistory...)
	patient.MedicalHistory = append(history, entry)

	updated, err := s.patients.Update(ctx, patient)
	if err != nil {
		return models.Patient{}, fmt.Errorf("failed to add clinical entry: %w", err)
	}
	return updated, nil
}

// MedicalRecordsFor queries the records of one patient straight from the
// database.
func (s *PatientService) MedicalRecordsFor(ctx context.Context, patientID string) ([]models.MedicalRecord, error) {
	records, err := s.records.ListWhere(ctx, "patient_id", patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	if records == nil {
		records = []models.MedicalRecord{}
	}
	return records, nil
}
