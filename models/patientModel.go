package models

import (
	"gorm.io/datatypes"
)

// Patient model
type Patient struct {
	Base
	UserInfo
	EmergencyContact  string                             `gorm:"column:emergency_contact" json:"emergencyContact"`
	EmergencyPhone    string                             `gorm:"column:emergency_phone" json:"emergencyPhone"`
	Allergies         string                             `gorm:"column:allergies" json:"allergies"`
	Medications       string                             `gorm:"column:medications" json:"medications"`
	InsuranceProvider string                             `gorm:"column:insurance_provider" json:"insuranceProvider"`
	InsuranceNumber   string                             `gorm:"column:insurance_number" json:"insuranceNumber"`
	MedicalHistory    datatypes.JSONSlice[ClinicalEntry] `gorm:"column:medical_history;type:jsonb" json:"medicalHistory"`
}

func (Patient) TableName() string {
	return "patient"
}

// ClinicalEntry is one visit in a patient's medical history.
type ClinicalEntry struct {
	Diagnosis       string `json:"diagnosis"`
	Treatment       string `json:"treatment"`
	Observations    string `json:"observations"`
	Date            int64  `json:"date"`
	NextAppointment int64  `json:"nextAppointment,omitempty"`
}

// MedicalRecord model
type MedicalRecord struct {
	Base
	PatientID       string `gorm:"column:patient_id;not null;index" json:"patientId"`
	DoctorID        string `gorm:"column:doctor_id;index" json:"doctorId"`
	Date            int64  `gorm:"column:date;not null;index" json:"date"`
	Reason          string `gorm:"column:reason" json:"reason"`
	Diagnosis       string `gorm:"column:diagnosis" json:"diagnosis"`
	Treatment       string `gorm:"column:treatment" json:"treatment"`
	Observations    string `gorm:"column:observations" json:"observations"`
	Prescription    string `gorm:"column:prescription" json:"prescription"`
	NextAppointment int64  `gorm:"column:next_appointment" json:"nextAppointment,omitempty"`
}

func (MedicalRecord) TableName() string {
	return "medical_record"
}

// EnterpriseInfo model holds the clinic's own details. A single active row is
// expected.
type EnterpriseInfo struct {
	Base
	Name     string  `gorm:"column:name;not null" json:"name"`
	RUC      string  `gorm:"column:ruc" json:"ruc"`
	Address  string  `gorm:"column:address" json:"address"`
	Phone    string  `gorm:"column:phone" json:"phone"`
	Email    string  `gorm:"column:email" json:"email"`
	Website  string  `gorm:"column:website" json:"website"`
	LogoURL  string  `gorm:"column:logo_url" json:"logoUrl"`
	Currency string  `gorm:"column:currency;not null;default:'USD'" json:"currency"`
	TaxRate  float64 `gorm:"column:tax_rate;not null;default:0" json:"taxRate"`
}

func (EnterpriseInfo) TableName() string {
	return "enterprise_info"
}
