package services

import (
	"GoodDental/models"
	"GoodDental/store"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatients_AddClinicalEntry(t *testing.T) {
	b := newTestBackends()
	b.patients.rows = []models.Patient{{
		Base:           models.Base{ID: "pa1", IsActive: true},
		UserInfo:       models.UserInfo{Name: "Lucia", LastName: "Paz"},
		MedicalHistory: []models.ClinicalEntry{{Diagnosis: "gingivitis", Date: 1}},
	}}
	stores := b.stores()
	stores.LoadAll(context.Background())
	svc := NewPatientService(stores.Patients, b.records)

	before, _ := stores.Patients.Get("pa1")

	updated, err := svc.AddClinicalEntry(context.Background(), "pa1", models.ClinicalEntry{Diagnosis: "caries", Date: 2})
	require.NoError(t, err)

	require.Len(t, updated.MedicalHistory, 2)
	assert.Equal(t, "caries", updated.MedicalHistory[1].Diagnosis)
	assert.NotZero(t, updated.UpdatedAt)
	assert.Len(t, before.MedicalHistory, 1, "earlier snapshots are untouched")

	stored, _ := stores.Patients.Get("pa1")
	assert.Len(t, stored.MedicalHistory, 2)
}

func TestPatients_AddClinicalEntryFailures(t *testing.T) {
	b := newTestBackends()
	b.patients.rows = []models.Patient{{Base: models.Base{ID: "pa1", IsActive: true}}}
	b.patients.UpdateFunc = func(ctx context.Context, item models.Patient) error { return errRemoteDown }
	stores := b.stores()
	stores.LoadAll(context.Background())
	svc := NewPatientService(stores.Patients, b.records)

	_, err := svc.AddClinicalEntry(context.Background(), "missing", models.ClinicalEntry{Date: 1})
	assert.ErrorIs(t, err, store.ErrNotLoaded)

	_, err = svc.AddClinicalEntry(context.Background(), "pa1", models.ClinicalEntry{Date: 1})
	assert.ErrorIs(t, err, errRemoteDown)

	stored, _ := stores.Patients.Get("pa1")
	assert.Empty(t, stored.MedicalHistory)
}

func TestPatients_MedicalRecordsFor(t *testing.T) {
	b := newTestBackends()
	b.records.ListWhereFunc = func(ctx context.Context, column string, value interface{}) ([]models.MedicalRecord, error) {
		assert.Equal(t, "patient_id", column)
		if value == "pa1" {
			return []models.MedicalRecord{{Base: models.Base{ID: "r1"}, PatientID: "pa1"}}, nil
		}
		return nil, nil
	}
	svc := NewPatientService(b.stores().Patients, b.records)

	records, err := svc.MedicalRecordsFor(context.Background(), "pa1")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = svc.MedicalRecordsFor(context.Background(), "pa2")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestStores_Export(t *testing.T) {
	b := newTestBackends()
	b.products.rows = []models.Product{product("p1", "Floss", 2.5, 10, 2)}
	stores := b.stores()
	stores.LoadAll(context.Background())

	data, ok := stores.Export("products")
	require.True(t, ok)
	assert.Len(t, data, 1)

	_, ok = stores.Export("appointments")
	assert.False(t, ok)
}
