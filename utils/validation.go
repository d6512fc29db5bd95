package utils

import (
	"GoodDental/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func validateUserInfo(u models.UserInfo) error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&u.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&u.Identification, validation.Length(0, 20)),
		validation.Field(&u.Email, is.EmailFormat),
		validation.Field(&u.Phone, validation.Length(0, 20)),
		validation.Field(&u.BirthDate, validation.Min(int64(0))),
	)
}

// ValidatePatient checks a patient before it is created or updated.
func ValidatePatient(p models.Patient) error {
	if err := validateUserInfo(p.UserInfo); err != nil {
		return err
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.EmergencyPhone, validation.Length(0, 20)),
		validation.Field(&p.MedicalHistory, validation.Each(validation.By(func(value interface{}) error {
			entry, _ := value.(models.ClinicalEntry)
			return ValidateClinicalEntry(entry)
		}))),
	)
}

// ValidateClinicalEntry checks one medical history entry.
func ValidateClinicalEntry(e models.ClinicalEntry) error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Diagnosis, validation.Required),
		validation.Field(&e.Date, validation.Required),
		validation.Field(&e.NextAppointment, validation.When(e.NextAppointment != 0, validation.Min(e.Date))),
	)
}

// ValidateEmployee checks an employee record. The password is checked
// separately, and only when one is being set.
func ValidateEmployee(e models.Employee) error {
	if err := validateUserInfo(e.UserInfo); err != nil {
		return err
	}
	return validation.ValidateStruct(&e,
		validation.Field(&e.Role, validation.Required, validation.In(models.RoleAdmin, models.RoleDoctor, models.RoleReceptionist, models.RoleCashier)),
		validation.Field(&e.Salary, validation.Min(0.0)),
	)
}

func ValidateMedicalRecord(r models.MedicalRecord) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PatientID, validation.Required, is.UUID),
		validation.Field(&r.DoctorID, is.UUID),
		validation.Field(&r.Date, validation.Required),
		validation.Field(&r.Reason, validation.Required, validation.Length(1, 500)),
	)
}

func ValidateEnterpriseInfo(e models.EnterpriseInfo) error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Email, is.EmailFormat),
		validation.Field(&e.Website, is.URL),
		validation.Field(&e.LogoURL, is.URL),
		validation.Field(&e.Currency, validation.Required, is.CurrencyCode),
		validation.Field(&e.TaxRate, validation.Min(0.0), validation.Max(1.0)),
	)
}

func ValidateProduct(p models.Product) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Price, validation.Min(0.0)),
		validation.Field(&p.Cost, validation.Min(0.0)),
		validation.Field(&p.Stock, validation.Min(0)),
		validation.Field(&p.MinStock, validation.Min(0)),
	)
}
