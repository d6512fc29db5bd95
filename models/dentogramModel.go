package models

import (
	"GoodDental/dentogram"

	"gorm.io/datatypes"
)

// DentogramDocument is the stored chart of one patient. It is always written
// whole.
type DentogramDocument struct {
	PatientID string                                     `gorm:"primaryKey;column:patient_id" json:"patientId"`
	Teeth     datatypes.JSONSlice[dentogram.ToothRecord] `gorm:"column:teeth;type:jsonb;not null" json:"teeth"`
	UpdatedAt int64                                      `gorm:"column:updated_at;not null;autoUpdateTime:false" json:"updatedAt"`
	UpdatedBy string                                     `gorm:"column:updated_by" json:"updatedBy"`
}

func (DentogramDocument) TableName() string {
	return "dentogram"
}
