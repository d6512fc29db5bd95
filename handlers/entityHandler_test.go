package handlers

import (
	"GoodDental/models"
	"GoodDental/utils"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productRouter(c *clinic) *gin.Engine {
	r := gin.New()
	NewEntityHandler[models.Product, *models.Product]("product", c.stores.Products, utils.ValidateProduct).
		Register(r.Group("/products"), false)
	return r
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestEntityHandler_CreateIgnoresClientMeta(t *testing.T) {
	c := newClinic()
	r := productRouter(c)

	w := do(r, http.MethodPost, "/products", `{"id":"mine","createdAt":1,"isActive":false,"name":"Floss","price":2.5,"stock":10}`)
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode[models.Product](t, w.Body.Bytes())
	assert.Equal(t, "id-1", created.ID)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, int64(1), created.CreatedAt)
	assert.Equal(t, 1, c.stores.Products.Len())
}

func TestEntityHandler_CreateValidates(t *testing.T) {
	c := newClinic()
	r := productRouter(c)

	w := do(r, http.MethodPost, "/products", `{"name":"","price":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]interface{}](t, w.Body.Bytes())
	assert.Contains(t, body["fields"], "name")
	assert.Contains(t, body["fields"], "price")

	w = do(r, http.MethodPost, "/products", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, c.stores.Products.Len())
}

func TestEntityHandler_ListAndSearch(t *testing.T) {
	c := newClinic(product("p1", "Dental floss", 2.5, 10), product("p2", "Toothbrush", 4, 5))
	r := productRouter(c)

	w := do(r, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Product](t, w.Body.Bytes()), 2)

	w = do(r, http.MethodGet, "/products?q=FLOSS", "")
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]models.Product](t, w.Body.Bytes())
	require.Len(t, found, 1)
	assert.Equal(t, "p1", found[0].ID)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/products/nope", "").Code)
}

func TestEntityHandler_UpdateKeepsMeta(t *testing.T) {
	existing := product("p1", "Floss", 2.5, 10)
	existing.CreatedAt = 1700000000000
	c := newClinic(existing)
	r := productRouter(c)

	w := do(r, http.MethodPut, "/products/p1", `{"id":"other","createdAt":5,"isActive":false,"name":"Floss XL","price":3,"stock":8}`)
	require.Equal(t, http.StatusOK, w.Code)

	updated := decode[models.Product](t, w.Body.Bytes())
	assert.Equal(t, "p1", updated.ID)
	assert.Equal(t, int64(1700000000000), updated.CreatedAt)
	assert.True(t, updated.IsActive)
	assert.Equal(t, "Floss XL", updated.Name)
	assert.NotZero(t, updated.UpdatedAt)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPut, "/products/nope", `{"name":"x"}`).Code)
}

func TestEntityHandler_DeactivateAndDelete(t *testing.T) {
	c := newClinic(product("p1", "Floss", 2.5, 10))
	r := productRouter(c)

	w := do(r, http.MethodPost, "/products/p1/deactivate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.Product](t, w.Body.Bytes()).IsActive)

	w = do(r, http.MethodPost, "/products/p1/activate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.Product](t, w.Body.Bytes()).IsActive)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/products/nope/deactivate", "").Code)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/products/p1", "").Code)
	assert.Zero(t, c.stores.Products.Len())
	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodDelete, "/products/p1", "").Code)
}

func TestEntityHandler_ReadOnly(t *testing.T) {
	c := newClinic()
	r := gin.New()
	NewEntityHandler[models.Sale, *models.Sale]("sale", c.stores.Sales, nil).Register(r.Group("/sales"), true)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/sales", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/sales", `{}`).Code)
}
