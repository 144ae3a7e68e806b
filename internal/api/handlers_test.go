package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/device-loans/internal/auth"
	"github.com/example/device-loans/internal/command"
	"github.com/example/device-loans/internal/config"
	"github.com/example/device-loans/internal/domain/device"
	"github.com/example/device-loans/internal/infrastructure/store"
	"github.com/example/device-loans/internal/query"
)

type testAPI struct {
	router     http.Handler
	devices    *store.MemoryDeviceStore
	jwtService *auth.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	devices := store.NewMemoryDeviceStore()
	items := store.NewMemoryItemStore()
	jwtService := auth.NewService("test-secret-key-for-testing-purposes", "device-loans", 15*time.Minute)

	cmdHandler := command.NewHandler(devices, items, nil)
	queryHandler := query.NewHandler(devices, items)

	secretHash, err := auth.HashSecret("integration-test-secret")
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Handlers:   NewHandlers(cmdHandler, queryHandler),
		JWTService: jwtService,
		AuthHandlers: NewAuthHandlers(jwtService, []config.Client{
			{
				ID:         "test-client",
				SecretHash: secretHash,
				Scopes:     []string{auth.ScopeDeviceRead, auth.ScopeDeviceWrite},
				Roles:      []string{auth.RoleAdmin},
			},
		}),
	})

	return &testAPI{router: router, devices: devices, jwtService: jwtService}
}

func (a *testAPI) token(t *testing.T, scopes, roles []string) string {
	t.Helper()
	token, _, err := a.jwtService.GenerateToken("test-client", scopes, roles)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

func (a *testAPI) seedDevice(t *testing.T, id string, count int) device.Device {
	t.Helper()
	d, err := device.New(id, "Device "+id, "Seeded test device", count, time.Now())
	require.NoError(t, err)
	require.NoError(t, a.devices.Save(context.Background(), d))
	return d
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

// ============================================
// Device endpoint tests
// ============================================

func TestAPI_CreateDevice(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, []string{auth.ScopeDeviceWrite}, nil)

	w := api.do(t, http.MethodPost, "/devices", token, map[string]any{
		"name":        "Wireless Mouse",
		"description": "Bluetooth wireless mouse",
		"count":       12,
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var d device.Device
	decodeData(t, w, &d)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "Wireless Mouse", d.Name)
	assert.Equal(t, 12, d.Count)
}

func TestAPI_CreateDevice_ValidationError(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, []string{auth.ScopeDeviceWrite}, nil)

	w := api.do(t, http.MethodPost, "/devices", token, map[string]any{
		"name":        "",
		"description": "No name",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_name", errorCode(t, w))
}

func TestAPI_CreateDevice_DuplicateID(t *testing.T) {
	api := newTestAPI(t)
	api.seedDevice(t, "device-1001", 5)
	token := api.token(t, []string{auth.ScopeDeviceWrite}, nil)

	w := api.do(t, http.MethodPost, "/devices", token, map[string]any{
		"id":          "device-1001",
		"name":        "Duplicate",
		"description": "Clashes with the seeded device",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "device_exists", errorCode(t, w))
}

func TestAPI_CreateDevice_InvalidJSON(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, []string{auth.ScopeDeviceWrite}, nil)

	r := httptest.NewRequest(http.MethodPost, "/devices", bytes.NewBufferString("{broken"))
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_json", errorCode(t, w))
}

func TestAPI_GetDevices(t *testing.T) {
	api := newTestAPI(t)
	api.seedDevice(t, "device-1001", 5)
	api.seedDevice(t, "device-1002", 3)
	token := api.token(t, []string{auth.ScopeDeviceRead}, nil)

	w := api.do(t, http.MethodGet, "/devices", token, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var devices []device.Device
	decodeData(t, w, &devices)
	assert.Len(t, devices, 2)
}

func TestAPI_GetDevices_EmptyIsArray(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, []string{auth.ScopeDeviceRead}, nil)

	w := api.do(t, http.MethodGet, "/devices", token, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestAPI_GetDevice(t *testing.T) {
	api := newTestAPI(t)
	seeded := api.seedDevice(t, "device-1001", 5)
	token := api.token(t, []string{auth.ScopeDeviceRead}, nil)

	w := api.do(t, http.MethodGet, "/devices/device-1001", token, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var d device.Device
	decodeData(t, w, &d)
	assert.Equal(t, seeded.ID, d.ID)
	assert.Equal(t, seeded.Count, d.Count)
}

func TestAPI_GetDevice_NotFound(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, []string{auth.ScopeDeviceRead}, nil)

	w := api.do(t, http.MethodGet, "/devices/device-missing", token, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "device_not_found", errorCode(t, w))
}

func TestAPI_UpdateDevice(t *testing.T) {
	api := newTestAPI(t)
	api.seedDevice(t, "device-1001", 5)
	token := api.token(t, []string{auth.ScopeDeviceWrite}, nil)

	w := api.do(t, http.MethodPut, "/devices/device-1001", token, map[string]any{
		"count": 9,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var d device.Device
	decodeData(t, w, &d)
	assert.Equal(t, 9, d.Count)
	assert.Equal(t, 2, d.Version)
	// Unpatched fields survive.
	assert.Equal(t, "Device device-1001", d.Name)
}

func TestAPI_DeleteDevice_RequiresAdmin(t *testing.T) {
	api := newTestAPI(t)
	api.seedDevice(t, "device-1001", 5)

	// Write scope alone is not enough.
	writerToken := api.token(t, []string{auth.ScopeDeviceWrite}, nil)
	w := api.do(t, http.MethodDelete, "/devices/device-1001", writerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := api.token(t, nil, []string{auth.RoleAdmin})
	w = api.do(t, http.MethodDelete, "/devices/device-1001", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	readToken := api.token(t, []string{auth.ScopeDeviceRead}, nil)
	w = api.do(t, http.MethodGet, "/devices/device-1001", readToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ScopeEnforcement(t *testing.T) {
	api := newTestAPI(t)
	readOnly := api.token(t, []string{auth.ScopeDeviceRead}, nil)

	w := api.do(t, http.MethodPost, "/devices", readOnly, map[string]any{
		"name":        "Webcam",
		"description": "Full HD webcam",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", errorCode(t, w))
}

func TestAPI_Unauthenticated(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/devices", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, []string{auth.ScopeDeviceRead, auth.ScopeDeviceWrite}, nil)

	w := api.do(t, http.MethodPatch, "/devices", token, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// ============================================
// Inventory item endpoint tests
// ============================================

func TestAPI_CreateAndGetInventoryItem(t *testing.T) {
	api := newTestAPI(t)
	writeToken := api.token(t, []string{auth.ScopeDeviceWrite}, nil)

	w := api.do(t, http.MethodPost, "/items", writeToken, map[string]any{
		"id":          "item-2001",
		"name":        "HDMI Adapter",
		"description": "USB-C to HDMI adapter",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	readToken := api.token(t, []string{auth.ScopeDeviceRead}, nil)
	w = api.do(t, http.MethodGet, "/items/item-2001", readToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"available"`)
}

func TestAPI_GetInventoryItem_NotFound(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, []string{auth.ScopeDeviceRead}, nil)

	w := api.do(t, http.MethodGet, "/items/item-missing", token, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "item_not_found", errorCode(t, w))
}

// ============================================
// Auth token endpoint tests
// ============================================

func TestAPI_Token_Success(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"client_id":     "test-client",
		"client_secret": "integration-test-secret",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	decodeData(t, w, &resp)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Greater(t, resp.ExpiresIn, 0)

	// The issued token actually works against a protected route.
	listResp := api.do(t, http.MethodGet, "/devices", resp.AccessToken, nil)
	assert.Equal(t, http.StatusOK, listResp.Code)
}

func TestAPI_Token_BadCredentials(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"wrong secret", map[string]string{"client_id": "test-client", "client_secret": "wrong-secret-value"}},
		{"unknown client", map[string]string{"client_id": "nobody", "client_secret": "integration-test-secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, http.MethodPost, "/auth/token", "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "invalid_client", errorCode(t, w))
		})
	}
}

func TestAPI_Token_GetNotAllowed(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/auth/token", "", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// ============================================
// Health endpoint tests
// ============================================

func TestAPI_Health(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
