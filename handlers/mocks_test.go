package handlers

import (
	"GoodDental/access"
	"GoodDental/middlewares"
	"GoodDental/models"
	"GoodDental/services"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errRemoteDown = errors.New("remote unavailable")

// memRemote is an in-memory collection. The *Func fields override single
// calls.
type memRemote[T any, PT interface {
	*T
	models.Entity
}] struct {
	mu     sync.Mutex
	rows   []T
	nextID int

	UpdateFunc    func(ctx context.Context, item T) error
	ListWhereFunc func(ctx context.Context, column string, value interface{}) ([]T, error)
}

func (m *memRemote[T, PT]) ListAll(ctx context.Context) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]T(nil), m.rows...), nil
}

func (m *memRemote[T, PT]) GetByID(ctx context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 {
		row := m.rows[i]
		return &row, nil
	}
	return nil, nil
}

func (m *memRemote[T, PT]) ListWhere(ctx context.Context, column string, value interface{}) ([]T, error) {
	if m.ListWhereFunc != nil {
		return m.ListWhereFunc(ctx, column, value)
	}
	return nil, fmt.Errorf("unexpected ListWhere(%s)", column)
}

func (m *memRemote[T, PT]) Create(ctx context.Context, item T) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	meta := PT(&item).Meta()
	meta.ID = fmt.Sprintf("id-%d", m.nextID)
	meta.CreatedAt = time.Now().UnixMilli()
	meta.UpdatedAt = meta.CreatedAt
	meta.IsActive = true
	m.rows = append(m.rows, item)
	return item, nil
}

func (m *memRemote[T, PT]) Update(ctx context.Context, item T) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(PT(&item).Meta().ID); i >= 0 {
		m.rows[i] = item
		return nil
	}
	return errors.New("not found")
}

func (m *memRemote[T, PT]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(id); i >= 0 {
		m.rows = append(m.rows[:i], m.rows[i+1:]...)
		return nil
	}
	return errors.New("not found")
}

func (m *memRemote[T, PT]) UpdateColumns(ctx context.Context, id string, values map[string]interface{}) error {
	return nil
}

func (m *memRemote[T, PT]) index(id string) int {
	for i := range m.rows {
		if PT(&m.rows[i]).Meta().ID == id {
			return i
		}
	}
	return -1
}

// mapCodes is an in-memory reset code cache.
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

type memCharts struct{}

func (memCharts) Get(ctx context.Context, patientID string) (*models.DentogramDocument, error) {
	return nil, nil
}

func (memCharts) Save(ctx context.Context, doc *models.DentogramDocument) error { return nil }

type clinic struct {
	patients  *memRemote[models.Patient, *models.Patient]
	employees *memRemote[models.Employee, *models.Employee]
	products  *memRemote[models.Product, *models.Product]
	sales     *memRemote[models.Sale, *models.Sale]
	closings  *memRemote[models.CashClosing, *models.CashClosing]
	stores    *services.Stores
}

func newClinic(products ...models.Product) *clinic {
	c := &clinic{
		patients:  &memRemote[models.Patient, *models.Patient]{},
		employees: &memRemote[models.Employee, *models.Employee]{},
		products:  &memRemote[models.Product, *models.Product]{rows: products},
		sales:     &memRemote[models.Sale, *models.Sale]{},
		closings:  &memRemote[models.CashClosing, *models.CashClosing]{},
	}
	c.stores = services.NewStores(services.Backends{
		Patients:       c.patients,
		Employees:      c.employees,
		MedicalRecords: &memRemote[models.MedicalRecord, *models.MedicalRecord]{},
		Enterprise:     &memRemote[models.EnterpriseInfo, *models.EnterpriseInfo]{},
		Products:       c.products,
		Sales:          c.sales,
		CashClosings:   c.closings,
		Dentograms:     memCharts{},
	}, zerolog.Nop())
	c.stores.LoadAll(context.Background())
	return c
}

func product(id, name string, price float64, stock int) models.Product {
	return models.Product{
		Base:  models.Base{ID: id, IsActive: true},
		Name:  name,
		Price: price,
		Stock: stock,
	}
}

// asEmployee stands in for the token middleware.
func asEmployee(id string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := access.Identity{ID: id, Role: role, Active: true}
		c.Request = c.Request.WithContext(middlewares.WithIdentity(c.Request.Context(), identity))
		c.Next()
	}
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
