package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alimranakash/visor-selection-api/internal/cart"
	"github.com/alimranakash/visor-selection-api/internal/catalog"
	"github.com/alimranakash/visor-selection-api/internal/handlers"
	"github.com/alimranakash/visor-selection-api/internal/models"
	"github.com/alimranakash/visor-selection-api/internal/routes"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticCatalog serves a fixed snapshot without a database.
type staticCatalog struct {
	snap *catalog.Snapshot
}

func (s *staticCatalog) Snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	return s.snap, nil
}

func (s *staticCatalog) Refresh(ctx context.Context) (*catalog.Snapshot, error) {
	return s.snap, nil
}

func (s *staticCatalog) Invalidate() {}

func (s *staticCatalog) Status() (bool, int, time.Time) {
	return true, s.snap.Len(), s.snap.LoadedAt()
}

type recordingSubmitter struct {
	mu       sync.Mutex
	requests []cart.Request
}

func (r *recordingSubmitter) Submit(ctx context.Context, req cart.Request) (*cart.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return &cart.Response{
		Message:       "Product added to cart successfully!",
		CartURL:       "https://shop.example.com/cart",
		CartItemCount: 1,
	}, nil
}

func testRouter(t *testing.T) (*gin.Engine, *recordingSubmitter) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snap := catalog.NewSnapshot([]models.VisorProduct{
		{ID: 1, Make: "Shoei", Model: "X-15", Pack: models.PackFullPack, Price: 499.00},
		{ID: 2, Make: "Shoei", Model: "X-15", Pack: models.PackInsertOnly, Price: 194.99},
	}, map[string]string{"shoei": "https://cdn.example.com/logo-shoei.png"})

	sub := &recordingSubmitter{}
	app := &handlers.Handlers{
		Catalog:   &staticCatalog{snap: snap},
		Submitter: sub,
		Sessions:  handlers.NewSessionStore(time.Hour),
	}
	return routes.SetupRouter(app), sub
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func projection(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	proj, ok := body["projection"].(map[string]any)
	require.True(t, ok, "response has no projection")
	return proj
}

func TestGetCatalog(t *testing.T) {
	router, _ := testRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/v1/selector/catalog", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["productCount"])
	makes := body["makes"].([]any)
	require.Len(t, makes, 1)
	entry := makes[0].(map[string]any)
	assert.Equal(t, "shoei", entry["make"])
	assert.Equal(t, "Shoei", entry["label"])
	assert.Equal(t, "https://cdn.example.com/logo-shoei.png", entry["logo"])
}

func TestSelectorFlow(t *testing.T) {
	router, sub := testRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/v1/selector/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := body["sessionId"].(string)
	nonce := body["nonce"].(string)
	base := "/v1/selector/sessions/" + sessionID

	w, body = doJSON(t, router, http.MethodPost, base+"/make", gin.H{"make": "Shoei"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"X-15"}, projection(t, body)["modelOptions"])

	w, body = doJSON(t, router, http.MethodPost, base+"/model", gin.H{"model": "X-15"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, router, http.MethodPost, base+"/pack", gin.H{"pack": "Full Pack"})
	require.Equal(t, http.StatusOK, w.Code)
	proj := projection(t, body)
	assert.Equal(t, "available", proj["phase"])
	assert.Equal(t, "YOUR PRICE £499.00", proj["priceText"])
	assert.Equal(t, true, proj["batterySectionVisible"])

	// Battery colour is required before submission goes through.
	w, body = doJSON(t, router, http.MethodPost, base+"/submit", gin.H{"nonce": nonce})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "battery colour required", body["error"])
	assert.Empty(t, sub.requests)

	w, _ = doJSON(t, router, http.MethodPost, base+"/battery-colour", gin.H{"colour": "Black"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, router, http.MethodPost, base+"/extras", gin.H{"extra": "extra-battery", "selected": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "YOUR PRICE £633.99", projection(t, body)["priceText"])

	// Wrong nonce never reaches the cart service.
	w, _ = doJSON(t, router, http.MethodPost, base+"/submit", gin.H{"nonce": "forged"})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, sub.requests)

	w, body = doJSON(t, router, http.MethodPost, base+"/submit", gin.H{"nonce": nonce})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://shop.example.com/cart", body["cartUrl"])
	require.Len(t, sub.requests, 1)
	assert.Equal(t, 633.99, sub.requests[0].UnitPrice)

	// The nonce rotates after a successful submission.
	newNonce := body["nonce"].(string)
	assert.NotEqual(t, nonce, newNonce)
	assert.Equal(t, "submitted", projection(t, body)["phase"])
}

func TestSecondSubmissionUsesRotatedNonce(t *testing.T) {
	router, sub := testRouter(t)

	_, body := doJSON(t, router, http.MethodPost, "/v1/selector/sessions", nil)
	sessionID := body["sessionId"].(string)
	nonce := body["nonce"].(string)
	base := "/v1/selector/sessions/" + sessionID

	configure := func() {
		t.Helper()
		for _, step := range []struct {
			path string
			body gin.H
		}{
			{"/make", gin.H{"make": "Shoei"}},
			{"/model", gin.H{"model": "X-15"}},
			{"/pack", gin.H{"pack": "Full Pack"}},
			{"/battery-colour", gin.H{"colour": "Black"}},
		} {
			w, _ := doJSON(t, router, http.MethodPost, base+step.path, step.body)
			require.Equal(t, http.StatusOK, w.Code)
		}
	}

	configure()
	w, body := doJSON(t, router, http.MethodPost, base+"/submit", gin.H{"nonce": nonce})
	require.Equal(t, http.StatusOK, w.Code)
	rotated := body["nonce"].(string)
	require.NotEqual(t, nonce, rotated)

	// The first nonce is consumed; replaying it is rejected.
	configure()
	w, _ = doJSON(t, router, http.MethodPost, base+"/submit", gin.H{"nonce": nonce})
	require.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, base+"/submit", gin.H{"nonce": rotated})
	require.Equal(t, http.StatusOK, w.Code)

	// Both cart requests must carry the nonce that was live at the time.
	require.Len(t, sub.requests, 2)
	assert.Equal(t, nonce, sub.requests[0].Nonce)
	assert.Equal(t, rotated, sub.requests[1].Nonce)
}

func TestUnknownModelPath(t *testing.T) {
	router, sub := testRouter(t)

	_, body := doJSON(t, router, http.MethodPost, "/v1/selector/sessions", nil)
	sessionID := body["sessionId"].(string)
	nonce := body["nonce"].(string)
	base := "/v1/selector/sessions/" + sessionID

	doJSON(t, router, http.MethodPost, base+"/make", gin.H{"make": "Shoei"})
	doJSON(t, router, http.MethodPost, base+"/model", gin.H{"model": "OTHER / UNKNOWN"})
	w, body := doJSON(t, router, http.MethodPost, base+"/pack", gin.H{"pack": "Full Pack"})

	require.Equal(t, http.StatusOK, w.Code)
	proj := projection(t, body)
	assert.Equal(t, "unavailable", proj["phase"])
	assert.Equal(t, "Product Unavailable", proj["priceText"])

	w, body = doJSON(t, router, http.MethodPost, base+"/submit", gin.H{"nonce": nonce})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no product selected", body["error"])
	assert.Empty(t, sub.requests)
}

func TestSessionNotFound(t *testing.T) {
	router, _ := testRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/v1/selector/sessions/missing", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found or expired", body["error"])
}

func TestAdminCacheStatusRequiresToken(t *testing.T) {
	router, _ := testRouter(t)
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	w, _ := doJSON(t, router, http.MethodGet, "/v1/admin/catalog/cache", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := doJSON(t, router, http.MethodPost, "/v1/login", gin.H{"password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code)
	token := body["token"].(string)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/catalog/cache", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "active", status["status"])
	assert.Equal(t, float64(2), status["productCount"])
}
