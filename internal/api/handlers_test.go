package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"imobiliaria/server/config"
	"imobiliaria/server/internal/database"
	"imobiliaria/server/internal/models"
)

const testPassword = "correto-cavalo-bateria"

func newTestServer(t *testing.T) (*gin.Engine, *database.Database, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AdminUser = "admin"
	cfg.Auth.AdminPasswordHash = string(hash)
	cfg.Views.RateWindow = 5 * time.Minute
	cfg.Uploads.Dir = t.TempDir()
	cfg.Uploads.PublicPath = "/uploads"

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	handler := NewHandler(db, logger, cfg)
	router := gin.New()
	SetupRoutes(router, handler)
	return router, db, cfg
}

func doRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func adminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := GenerateToken(cfg.Auth.JWTSecret, cfg.Auth.AdminUser)
	require.NoError(t, err)
	return token
}

func seedHTTPProperty(t *testing.T, db *database.Database, title string) *models.Property {
	t.Helper()
	p := &models.Property{
		Title:  title,
		Price:  "R$ 350.000",
		Bairro: "Centro",
		Tipo:   "Apartamento",
	}
	require.NoError(t, db.CreateProperty(p))
	return p
}

func TestGetProperties_BareArrayWithoutPaginationParams(t *testing.T) {
	router, db, _ := newTestServer(t)
	seedHTTPProperty(t, db, "Casa A")
	seedHTTPProperty(t, db, "Casa B")

	w := doRequest(router, http.MethodGet, "/api/properties", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := bytes.TrimSpace(w.Body.Bytes())
	require.NotEmpty(t, body)
	assert.Equal(t, byte('['), body[0], "legacy shape is a bare array")

	var properties []models.Property
	require.NoError(t, json.Unmarshal(body, &properties))
	assert.Len(t, properties, 2)
}

func TestGetProperties_EnvelopeWithPaginationParams(t *testing.T) {
	router, db, _ := newTestServer(t)
	for i := 0; i < 14; i++ {
		seedHTTPProperty(t, db, fmt.Sprintf("Imóvel %02d", i))
	}

	w := doRequest(router, http.MethodGet, "/api/properties?page=1&limit=12", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page models.PropertyPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 12)
	assert.Equal(t, 14, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasMore)

	w = doRequest(router, http.MethodGet, "/api/properties?page=2&limit=12", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 2)
	assert.False(t, page.Pagination.HasMore)
}

func TestGetProperties_LimitAloneSelectsEnvelope(t *testing.T) {
	router, db, _ := newTestServer(t)
	seedHTTPProperty(t, db, "Solitário")

	w := doRequest(router, http.MethodGet, "/api/properties?limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page models.PropertyPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 5, page.Pagination.Limit)
}

func TestGetProperty_NotFound(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(router, http.MethodGet, "/api/properties/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIncrementViews_RateLimited(t *testing.T) {
	router, db, _ := newTestServer(t)
	p := seedHTTPProperty(t, db, "Vitrine")
	path := fmt.Sprintf("/api/properties/%d/view", p.ID)

	w := doRequest(router, http.MethodPost, path, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Same client, same property, inside the window.
	w = doRequest(router, http.MethodPost, path, "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	got, err := db.GetProperty(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views, "the rejected view must not count")
}

func TestIncrementViews_UnknownProperty(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(router, http.MethodPost, "/api/properties/999/view", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProperty_RequiresAuth(t *testing.T) {
	router, _, _ := newTestServer(t)

	payload := gin.H{"title": "Nova", "price": "R$ 1", "bairro": "Centro", "tipo": "Casa"}
	w := doRequest(router, http.MethodPost, "/api/properties", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodPost, "/api/properties", "garbage-token", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateProperty_Success(t *testing.T) {
	router, _, cfg := newTestServer(t)
	token := adminToken(t, cfg)

	payload := gin.H{
		"title":    "Apartamento novo",
		"price":    "R$ 420.000",
		"bairro":   "Boa Viagem",
		"tipo":     "Apartamento",
		"images":   []string{"a.jpg"},
		"featured": true,
		"views":    500,
	}
	w := doRequest(router, http.MethodPost, "/api/properties", token, payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Property
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.False(t, created.Featured, "create cannot set featured")
	assert.Zero(t, created.Views, "create cannot seed views")
	assert.Equal(t, "a.jpg", created.Image)
}

func TestCreateProperty_MissingFields(t *testing.T) {
	router, _, cfg := newTestServer(t)
	token := adminToken(t, cfg)

	w := doRequest(router, http.MethodPost, "/api/properties", token, gin.H{"title": "Incompleta"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "price")
}

func TestCreateProperty_InvalidEnum(t *testing.T) {
	router, _, cfg := newTestServer(t)
	token := adminToken(t, cfg)

	payload := gin.H{
		"title": "Enum errado", "price": "R$ 1", "bairro": "Centro", "tipo": "Casa",
		"transaction_type": "Leasing",
	}
	w := doRequest(router, http.MethodPost, "/api/properties", token, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleFeatured_CapReturnsConflict(t *testing.T) {
	router, db, cfg := newTestServer(t)
	token := adminToken(t, cfg)

	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, seedHTTPProperty(t, db, fmt.Sprintf("Imóvel %d", i)).ID)
	}

	for _, id := range ids[:4] {
		w := doRequest(router, http.MethodPatch, fmt.Sprintf("/api/properties/%d/featured", id), token, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(router, http.MethodPatch, fmt.Sprintf("/api/properties/%d/featured", ids[4]), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Untoggle one, then the fifth fits.
	w = doRequest(router, http.MethodPatch, fmt.Sprintf("/api/properties/%d/featured", ids[0]), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPatch, fmt.Sprintf("/api/properties/%d/featured", ids[4]), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateProperty_NotFound(t *testing.T) {
	router, _, cfg := newTestServer(t)
	token := adminToken(t, cfg)

	payload := gin.H{"title": "Fantasma", "price": "R$ 1", "bairro": "Centro", "tipo": "Casa"}
	w := doRequest(router, http.MethodPut, "/api/properties/999", token, payload)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProperty_Flow(t *testing.T) {
	router, db, cfg := newTestServer(t)
	token := adminToken(t, cfg)
	p := seedHTTPProperty(t, db, "Efêmera")

	w := doRequest(router, http.MethodDelete, fmt.Sprintf("/api/properties/%d", p.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, fmt.Sprintf("/api/properties/%d", p.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateLead_DirectInsert(t *testing.T) {
	router, db, cfg := newTestServer(t)
	p := seedHTTPProperty(t, db, "Com interesse")

	payload := gin.H{"name": "Maria", "phone": "+55 81 9", "property_id": p.ID, "type": "whatsapp"}
	w := doRequest(router, http.MethodPost, "/api/leads", "", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	token := adminToken(t, cfg)
	w = doRequest(router, http.MethodGet, "/api/leads", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var leads []models.Lead
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, "Com interesse", leads[0].PropertyTitle, "title snapshot at capture time")
}

func TestCreateLead_InvalidType(t *testing.T) {
	router, _, _ := newTestServer(t)

	payload := gin.H{"name": "Maria", "phone": "1", "type": "carrier-pigeon"}
	w := doRequest(router, http.MethodPost, "/api/leads", "", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateLead_MissingFields(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(router, http.MethodPost, "/api/leads", "", gin.H{"name": "Só nome"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLeads_RequiresAuth(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(router, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetStats(t *testing.T) {
	router, db, cfg := newTestServer(t)
	seedHTTPProperty(t, db, "Contada")
	token := adminToken(t, cfg)

	w := doRequest(router, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalProperties)
}

func TestLogin(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "admin",
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, int((24 * time.Hour).Seconds()), resp.ExpiresIn)

	// The issued token actually opens the admin surface.
	w = doRequest(router, http.MethodGet, "/api/leads", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(router, http.MethodPost, "/api/auth/login", "", gin.H{
		"username": "admin",
		"password": "errada",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAmenities(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(router, http.MethodGet, "/api/amenities", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var catalog config.AmenityCatalog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &catalog))
	assert.NotEmpty(t, catalog.Common)
}

func TestGetBairroHulls_EmptyWithoutManager(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doRequest(router, http.MethodGet, "/api/bairros/hulls", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "FeatureCollection")
}
