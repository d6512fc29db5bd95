package handlers

import (
	"GoodDental/dentogram"
	"GoodDental/models"
	"GoodDental/services"
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dentogramRouter() *gin.Engine {
	c := newClinic()
	c.patients.rows = []models.Patient{{Base: models.Base{ID: "pa1", IsActive: true}}}
	c.stores.LoadAll(context.Background())

	h := NewDentogramHandler(services.NewDentogramService(memCharts{}, c.stores.Patients, zerolog.Nop()))
	r := gin.New()
	for _, doctor := range []string{"doc-1", "doc-2"} {
		g := r.Group("/"+doctor+"/dentogram/:patientId", asEmployee(doctor, models.RoleDoctor))
		g.POST("/open", h.Open)
		g.GET("", h.View)
		g.PATCH("/teeth/:tooth", h.UpdateTooth)
		g.POST("/save", h.Save)
		g.DELETE("", h.Close)
	}
	return r
}

func tooth(t *testing.T, view services.DentogramView, number int) services.ToothView {
	t.Helper()
	for _, tv := range view.Teeth {
		if tv.Number == number {
			return tv
		}
	}
	t.Fatalf("tooth %d not in chart", number)
	return services.ToothView{}
}

func TestDentogramHandler_EditSession(t *testing.T) {
	r := dentogramRouter()

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/doc-1/dentogram/pa1", "").Code)

	w := do(r, http.MethodPost, "/doc-1/dentogram/pa1/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[services.DentogramView](t, w.Body.Bytes()).Modified)

	w = do(r, http.MethodPatch, "/doc-1/dentogram/pa1/teeth/11", `{"surface":"occlusal","status":"cavity","notes":"check in 3 months"}`)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[services.DentogramView](t, w.Body.Bytes())
	assert.True(t, view.Modified)
	t11 := tooth(t, view, 11)
	assert.Equal(t, dentogram.Cavity, t11.Surfaces.Occlusal)
	assert.Equal(t, dentogram.Cavity, t11.Display)
	assert.Equal(t, "check in 3 months", t11.Notes)

	w = do(r, http.MethodPost, "/doc-1/dentogram/pa1/save", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[services.DentogramView](t, w.Body.Bytes()).Modified)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/doc-1/dentogram/pa1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/doc-1/dentogram/pa1", "").Code)
}

func TestDentogramHandler_InvalidEdits(t *testing.T) {
	r := dentogramRouter()
	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/doc-1/dentogram/pa1/open", "").Code)

	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"tooth not a number", "/doc-1/dentogram/pa1/teeth/eleven", `{"surface":"occlusal","status":"cavity"}`},
		{"nothing to change", "/doc-1/dentogram/pa1/teeth/11", `{}`},
		{"unknown tooth", "/doc-1/dentogram/pa1/teeth/19", `{"surface":"occlusal","status":"cavity"}`},
		{"unknown surface", "/doc-1/dentogram/pa1/teeth/11", `{"surface":"palatal","status":"cavity"}`},
		{"unknown status", "/doc-1/dentogram/pa1/teeth/11", `{"surface":"occlusal","status":"broken"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, tt.target, tt.body).Code)
		})
	}

	w := do(r, http.MethodGet, "/doc-1/dentogram/pa1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[services.DentogramView](t, w.Body.Bytes()).Modified)
}

func TestDentogramHandler_OpenConflicts(t *testing.T) {
	r := dentogramRouter()

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/doc-1/dentogram/ghost/open", "").Code)

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/doc-1/dentogram/pa1/open", "").Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodPatch, "/doc-1/dentogram/pa1/teeth/11", `{"surface":"occlusal","status":"cavity"}`).Code)

	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/doc-2/dentogram/pa1/open", "").Code)

	w := do(r, http.MethodPost, "/doc-1/dentogram/pa1/open", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[services.DentogramView](t, w.Body.Bytes()).Modified)
}
