package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"GoodDental/search"

	"github.com/rs/zerolog"
)

type record struct {
	ID        string
	Name      string
	Email     string
	Active    bool
	CreatedAt int64
	UpdatedAt int64
}

var errNotFound = errors.New("not found")

// Compile-time check to ensure mockRemote implements Remote
var _ Remote[record] = (*mockRemote)(nil)

// mockRemote is an in-memory remote that assigns ids like the real service.
// The *Func fields override individual calls.
type mockRemote struct {
	rows   []record
	nextID int64

	ListAllFunc func(ctx context.Context) ([]record, error)
	CreateFunc  func(ctx context.Context, item record) (record, error)
	UpdateFunc  func(ctx context.Context, item record) error
	DeleteFunc  func(ctx context.Context, id string) error

	UpdateCallCount int32
}

func (m *mockRemote) ListAll(ctx context.Context) ([]record, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return append([]record(nil), m.rows...), nil
}

func (m *mockRemote) Create(ctx context.Context, item record) (record, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	id := atomic.AddInt64(&m.nextID, 1)
	item.ID = fmt.Sprintf("srv-%d", id)
	item.CreatedAt = 1_700_000_000_000 + id
	item.UpdatedAt = item.CreatedAt
	item.Active = true
	m.rows = append(m.rows, item)
	return item, nil
}

func (m *mockRemote) Update(ctx context.Context, item record) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, item)
	}
	for i := range m.rows {
		if m.rows[i].ID == item.ID {
			m.rows[i] = item
			return nil
		}
	}
	return errNotFound
}

func (m *mockRemote) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

var fixedNow = time.UnixMilli(1_800_000_000_000)

func recordConfig() Config[record] {
	return Config[record]{
		Name: "records",
		ID:   func(r record) string { return r.ID },
		Fields: []search.Field[record]{
			search.String(func(r record) string { return r.Name }),
			search.String(func(r record) string { return r.Email }),
		},
		Touch:     func(r *record, now time.Time) { r.UpdatedAt = now.UnixMilli() },
		SetActive: func(r *record, active bool) { r.Active = active },
		Now:       func() time.Time { return fixedNow },
	}
}

func newTestStore(remote *mockRemote) *Store[record] {
	return New[record](remote, recordConfig(), zerolog.Nop())
}
