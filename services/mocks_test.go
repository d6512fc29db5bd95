package services

import (
	"GoodDental/models"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var errRemoteDown = errors.New("remote unavailable")

// Compile-time checks
var (
	_ Remote[models.Patient] = (*fakeRemote[models.Patient, *models.Patient])(nil)
	_ EmployeeRemote         = (*fakeEmployees)(nil)
	_ DentogramRemote        = (*fakeDentograms)(nil)
)

// fakeRemote keeps rows in memory and assigns ids the way the repository
// does. The *Func fields override individual calls.
type fakeRemote[T any, PT interface {
	*T
	models.Entity
}] struct {
	mu     sync.Mutex
	rows   []T
	nextID int

	ListAllFunc   func(ctx context.Context) ([]T, error)
	CreateFunc    func(ctx context.Context, item T) (T, error)
	UpdateFunc    func(ctx context.Context, item T) error
	ListWhereFunc func(ctx context.Context, column string, value interface{}) ([]T, error)

	Created []T
	Updated []T
}

func (f *fakeRemote[T, PT]) ListAll(ctx context.Context) ([]T, error) {
	if f.ListAllFunc != nil {
		return f.ListAllFunc(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]T(nil), f.rows...), nil
}

func (f *fakeRemote[T, PT]) GetByID(ctx context.Context, id string) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if PT(&f.rows[i]).Meta().ID == id {
			row := f.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeRemote[T, PT]) ListWhere(ctx context.Context, column string, value interface{}) ([]T, error) {
	if f.ListWhereFunc != nil {
		return f.ListWhereFunc(ctx, column, value)
	}
	return nil, fmt.Errorf("unexpected ListWhere(%s)", column)
}

func (f *fakeRemote[T, PT]) Create(ctx context.Context, item T) (T, error) {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, item)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	meta := PT(&item).Meta()
	meta.ID = fmt.Sprintf("id-%d", f.nextID)
	meta.CreatedAt = time.Now().UnixMilli()
	meta.UpdatedAt = meta.CreatedAt
	meta.IsActive = true
	f.rows = append(f.rows, item)
	f.Created = append(f.Created, item)
	return item, nil
}

func (f *fakeRemote[T, PT]) Update(ctx context.Context, item T) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, item)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := PT(&item).Meta().ID
	for i := range f.rows {
		if PT(&f.rows[i]).Meta().ID == id {
			f.rows[i] = item
			f.Updated = append(f.Updated, item)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeRemote[T, PT]) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if PT(&f.rows[i]).Meta().ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

type fakeEmployees struct {
	fakeRemote[models.Employee, *models.Employee]

	UpdateColumnsFunc func(ctx context.Context, id string, values map[string]interface{}) error
}

func (f *fakeEmployees) UpdateColumns(ctx context.Context, id string, values map[string]interface{}) error {
	if f.UpdateColumnsFunc != nil {
		return f.UpdateColumnsFunc(ctx, id, values)
	}
	return nil
}

type fakeDentograms struct {
	GetFunc  func(ctx context.Context, patientID string) (*models.DentogramDocument, error)
	SaveFunc func(ctx context.Context, doc *models.DentogramDocument) error

	SaveCallCount int
}

func (f *fakeDentograms) Get(ctx context.Context, patientID string) (*models.DentogramDocument, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, patientID)
	}
	return nil, nil
}

func (f *fakeDentograms) Save(ctx context.Context, doc *models.DentogramDocument) error {
	f.SaveCallCount++
	if f.SaveFunc != nil {
		return f.SaveFunc(ctx, doc)
	}
	return nil
}

type testBackends struct {
	patients     *fakeRemote[models.Patient, *models.Patient]
	employees    *fakeEmployees
	records      *fakeRemote[models.MedicalRecord, *models.MedicalRecord]
	enterprise   *fakeRemote[models.EnterpriseInfo, *models.EnterpriseInfo]
	products     *fakeRemote[models.Product, *models.Product]
	sales        *fakeRemote[models.Sale, *models.Sale]
	cashClosings *fakeRemote[models.CashClosing, *models.CashClosing]
	dentograms   *fakeDentograms
}

func newTestBackends() *testBackends {
	return &testBackends{
		patients:     &fakeRemote[models.Patient, *models.Patient]{},
		employees:    &fakeEmployees{},
		records:      &fakeRemote[models.MedicalRecord, *models.MedicalRecord]{},
		enterprise:   &fakeRemote[models.EnterpriseInfo, *models.EnterpriseInfo]{},
		products:     &fakeRemote[models.Product, *models.Product]{},
		sales:        &fakeRemote[models.Sale, *models.Sale]{},
		cashClosings: &fakeRemote[models.CashClosing, *models.CashClosing]{},
		dentograms:   &fakeDentograms{},
	}
}

func (b *testBackends) stores() *Stores {
	return NewStores(Backends{
		Patients:       b.patients,
		Employees:      b.employees,
		MedicalRecords: b.records,
		Enterprise:     b.enterprise,
		Products:       b.products,
		Sales:          b.sales,
		CashClosings:   b.cashClosings,
		Dentograms:     b.dentograms,
	}, zerolog.Nop())
}

// mapCodes is an in-memory utils.CodeCache.
type mapCodes map[string]string

func (m mapCodes) Get(_ context.Context, key string) (string, error) { return m[key], nil }

func (m mapCodes) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m[key] = fmt.Sprint(value)
	return nil
}

func (m mapCodes) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type fakeMailer struct {
	SendResetCodeFunc func(email, code string) error

	ResetCodes map[string]string
}

func (f *fakeMailer) SendResetCode(email, code string) error {
	if f.SendResetCodeFunc != nil {
		return f.SendResetCodeFunc(email, code)
	}
	if f.ResetCodes == nil {
		f.ResetCodes = map[string]string{}
	}
	f.ResetCodes[email] = code
	return nil
}
