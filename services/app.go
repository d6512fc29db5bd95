package services

import (
	"GoodDental/models"
	"GoodDental/search"
	"GoodDental/store"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Remote is a stored collection as the services see it: the store's remote
// plus the lookups the repositories add.
type Remote[T any] interface {
	store.Remote[T]
	GetByID(ctx context.Context, id string) (*T, error)
	ListWhere(ctx context.Context, column string, value interface{}) ([]T, error)
}

// EmployeeRemote can also change single columns, for password hashes.
type EmployeeRemote interface {
	Remote[models.Employee]
	UpdateColumns(ctx context.Context, id string, values map[string]interface{}) error
}

// DentogramRemote stores whole charts.
type DentogramRemote interface {
	Get(ctx context.Context, patientID string) (*models.DentogramDocument, error)
	Save(ctx context.Context, doc *models.DentogramDocument) error
}

// Backends are the remote collections the application is built on.
type Backends struct {
	Patients       Remote[models.Patient]
	Employees      EmployeeRemote
	MedicalRecords Remote[models.MedicalRecord]
	Enterprise     Remote[models.EnterpriseInfo]
	Products       Remote[models.Product]
	Sales          Remote[models.Sale]
	CashClosings   Remote[models.CashClosing]
	Dentograms     DentogramRemote
}

// Stores holds the single in-memory store of every entity. Build it once with
// NewStores and share it.
type Stores struct {
	Patients       *store.Store[models.Patient]
	Employees      *store.Store[models.Employee]
	MedicalRecords *store.Store[models.MedicalRecord]
	Enterprise     *store.Store[models.EnterpriseInfo]
	Products       *store.Store[models.Product]
	Sales          *store.Store[models.Sale]
	CashClosings   *store.Store[models.CashClosing]
}

func NewStores(b Backends, logger zerolog.Logger) *Stores {
	return &Stores{
		Patients: store.New[models.Patient](b.Patients, entityConfig[models.Patient]("patient",
			search.String(func(p models.Patient) string { return p.Name }),
			search.String(func(p models.Patient) string { return p.LastName }),
			search.String(func(p models.Patient) string { return p.Email }),
			search.String(func(p models.Patient) string { return p.Identification }),
			search.String(func(p models.Patient) string { return p.Phone }),
		), logger),
		Employees: store.New[models.Employee](b.Employees, entityConfig[models.Employee]("employee",
			search.String(func(e models.Employee) string { return e.Name }),
			search.String(func(e models.Employee) string { return e.LastName }),
			search.String(func(e models.Employee) string { return e.Email }),
			search.String(func(e models.Employee) string { return string(e.Role) }),
			search.String(func(e models.Employee) string { return e.Position }),
		), logger),
		MedicalRecords: store.New[models.MedicalRecord](b.MedicalRecords, entityConfig[models.MedicalRecord]("medical_record",
			search.String(func(r models.MedicalRecord) string { return r.Reason }),
			search.String(func(r models.MedicalRecord) string { return r.Diagnosis }),
			search.String(func(r models.MedicalRecord) string { return r.Treatment }),
			search.String(func(r models.MedicalRecord) string { return r.PatientID }),
		), logger),
		Enterprise: store.New[models.EnterpriseInfo](b.Enterprise, entityConfig[models.EnterpriseInfo]("enterprise_info",
			search.String(func(e models.EnterpriseInfo) string { return e.Name }),
			search.String(func(e models.EnterpriseInfo) string { return e.RUC }),
		), logger),
		Products: store.New[models.Product](b.Products, entityConfig[models.Product]("product",
			search.String(func(p models.Product) string { return p.Name }),
			search.String(func(p models.Product) string { return p.SKU }),
			search.String(func(p models.Product) string { return p.Category }),
		), logger),
		Sales: store.New[models.Sale](b.Sales, entityConfig[models.Sale]("sale",
			search.String(func(s models.Sale) string { return string(s.PaymentMethod) }),
			search.String(func(s models.Sale) string { return s.CashierID }),
			search.String(func(s models.Sale) string { return s.PatientID }),
		), logger),
		CashClosings: store.New[models.CashClosing](b.CashClosings, entityConfig[models.CashClosing]("cash_closing",
			search.String(func(c models.CashClosing) string { return c.ClosedBy }),
			search.String(func(c models.CashClosing) string { return c.Notes }),
		), logger),
	}
}

// entityConfig wires a store to the fields every model shares through Base.
func entityConfig[T any, PT interface {
	*T
	models.Entity
}](name string, fields ...search.Field[T]) store.Config[T] {
	return store.Config[T]{
		Name:   name,
		ID:     func(item T) string { return PT(&item).Meta().ID },
		Fields: fields,
		Touch: func(item *T, now time.Time) {
			PT(item).Meta().Touch(now)
		},
		SetActive: func(item *T, active bool) {
			PT(item).Meta().IsActive = active
		},
	}
}

// LoadAll fills every store. Failures are logged by the stores themselves.
func (s *Stores) LoadAll(ctx context.Context) {
	loaders := []func(context.Context){
		s.Patients.LoadAll,
		s.Employees.LoadAll,
		s.MedicalRecords.LoadAll,
		s.Enterprise.LoadAll,
		s.Products.LoadAll,
		s.Sales.LoadAll,
		s.CashClosings.LoadAll,
	}

	var wg sync.WaitGroup
	for _, load := range loaders {
		wg.Add(1)
		go func(load func(context.Context)) {
			defer wg.Done()
			load(ctx)
		}(load)
	}
	wg.Wait()
}

// Export returns the whole collection by name, for JSON export.
func (s *Stores) Export(collection string) (interface{}, bool) {
	switch collection {
	case "patients":
		return s.Patients.Items(), true
	case "employees":
		return s.Employees.Items(), true
	case "medical-records":
		return s.MedicalRecords.Items(), true
	case "enterprise":
		return s.Enterprise.Items(), true
	case "products":
		return s.Products.Items(), true
	case "sales":
		return s.Sales.Items(), true
	case "cash-closings":
		return s.CashClosings.Items(), true
	}
	return nil, false
}

// Loading returns the collections whose LoadAll is still running.
func (s *Stores) Loading() []string {
	checks := []struct {
		name    string
		loading func() bool
	}{
		{"patient", s.Patients.Loading},
		{"employee", s.Employees.Loading},
		{"medical_record", s.MedicalRecords.Loading},
		{"enterprise_info", s.Enterprise.Loading},
		{"product", s.Products.Loading},
		{"sale", s.Sales.Loading},
		{"cash_closing", s.CashClosings.Loading},
	}
	loading := []string{}
	for _, check := range checks {
		if check.loading() {
			loading = append(loading, check.name)
		}
	}
	return loading
}
