package httpapi_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"booking-api/internal/auth"
	"booking-api/internal/handler"
	"booking-api/internal/httpapi"
	"booking-api/internal/middleware"
	"booking-api/internal/store"
	"booking-api/internal/store/memory"
)

var now = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	repo := store.NewCached(memory.New(), time.Minute)
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "secret", TTL: 30 * time.Minute})
	require.NoError(t, err)
	binder, err := auth.NewKeyedBinder([]byte("secret"), false)
	require.NoError(t, err)
	adminHash, err := auth.HashPassword("admin-pass")
	require.NoError(t, err)

	login := auth.NewLoginService(auth.AdminCredentials{Username: "admin", PasswordHash: adminHash}, repo, tokens, binder)
	h := handler.New(repo, login).WithClock(func() time.Time { return now })
	authn := middleware.NewAuthenticator(auth.NewGuard(tokens, binder), repo)

	srv, err := httpapi.New(h, authn, httpapi.Options{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	return srv.Routes()
}

func do(t *testing.T, h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loginAs(t *testing.T, h http.Handler, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {user}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, h http.Handler, user, pass string) string {
	t.Helper()
	rec := loginAs(t, h, user, pass)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "bearer", body["token_type"])
	require.NotEmpty(t, body["access_token"])
	return body["access_token"]
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["detail"]
}

func signup(t *testing.T, h http.Handler, email string) int64 {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/client", "", fmt.Sprintf(
		`{"name":"Ada","email":%q,"phone_number":"555-123-4567","password":"pw","address":"1 Loop Rd"}`, email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var c map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	return int64(c["id"].(float64))
}

func TestRoot(t *testing.T) {
	h := newServer(t)
	rec := do(t, h, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateClient(t *testing.T) {
	h := newServer(t)
	signup(t, h, "ada@example.com")

	rec := do(t, h, http.MethodPost, "/client", "",
		`{"name":"Ada","email":"ada@example.com","phone_number":"555-123-4567","password":"pw","address":"1 Loop Rd"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Email address in use", detail(t, rec))

	rec = do(t, h, http.MethodPost, "/client", "", `{"name":"Ada","email":"nope","phone":"555-123-4567","password":"pw","address":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Data format invalid", detail(t, rec))

	rec = do(t, h, http.MethodPost, "/client", "", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Data format invalid", detail(t, rec))
}

func TestLoginAndGetClient(t *testing.T) {
	h := newServer(t)
	id := signup(t, h, "ada@example.com")
	tok := token(t, h, "ada@example.com", "pw")

	rec := do(t, h, http.MethodGet, "/client", tok, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var c map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	require.Equal(t, float64(id), c["id"])
	require.Equal(t, "ada@example.com", c["email"])
	require.Equal(t, "555-123-4567", c["phone_number"])
	require.NotContains(t, c, "password")
	require.NotContains(t, c, "password_hash")

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/client?id=%d", id+1), tok, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, fmt.Sprintf("Cannot access client id: %d", id+1), detail(t, rec))
}

func TestAdmin(t *testing.T) {
	h := newServer(t)
	id := signup(t, h, "ada@example.com")
	tok := token(t, h, "admin", "admin-pass")

	rec := do(t, h, http.MethodGet, "/client", tok, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Need to specify client to access", detail(t, rec))

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/client?id=%d", id), tok, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/client?id=%d", id), tok, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/client?id=%d", id), tok, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, fmt.Sprintf("Client with id: %d does not exist", id), detail(t, rec))
}

func TestUnauthenticated(t *testing.T) {
	h := newServer(t)
	id := signup(t, h, "ada@example.com")
	tok := token(t, h, "ada@example.com", "pw")

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic " + tok},
		{"garbage", "Bearer garbage"},
		{"tampered", "Bearer " + tok + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/client", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			require.Equal(t, "Could not validate credentials", detail(t, rec))
		})
	}

	t.Run("other host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/client", nil)
		req.RemoteAddr = "198.51.100.9:4000"
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deleted client", func(t *testing.T) {
		rec := do(t, h, http.MethodDelete, fmt.Sprintf("/client?id=%d", id), tok, "")
		require.Equal(t, http.StatusOK, rec.Code)
		rec = do(t, h, http.MethodGet, "/client", tok, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLoginFailures(t *testing.T) {
	h := newServer(t)
	signup(t, h, "ada@example.com")

	wrong := loginAs(t, h, "ada@example.com", "bad")
	unknown := loginAs(t, h, "ghost@example.com", "pw")
	require.Equal(t, http.StatusForbidden, wrong.Code)
	require.Equal(t, http.StatusForbidden, unknown.Code)
	require.Equal(t, wrong.Body.String(), unknown.Body.String())
	require.Equal(t, "Invalid Credentials", detail(t, wrong))
}

func TestAppointments(t *testing.T) {
	h := newServer(t)
	id := signup(t, h, "ada@example.com")
	tok := token(t, h, "ada@example.com", "pw")
	date := now.Add(72 * time.Hour).Unix()

	rec := do(t, h, http.MethodPost, "/appointment", tok,
		fmt.Sprintf(`{"date":%d.7,"description":"Haircut","price":30}`, date))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var apt map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apt))
	require.Equal(t, "2030-06-04", apt["date"])
	require.Equal(t, float64(id), apt["client_id"])
	require.Equal(t, false, apt["paid"])

	rec = do(t, h, http.MethodPost, "/appointment", tok,
		fmt.Sprintf(`{"date":%d,"description":"Again","price":30}`, date))
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/appointment", tok,
		fmt.Sprintf(`{"date":%d,"description":"Soon","price":30}`, now.Unix()))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Cannot create past appointment", detail(t, rec))

	rec = do(t, h, http.MethodPost, "/appointment", tok, `{"date":1e20,"description":"Far","price":30}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Cannot create appointment more than 4 months ahead", detail(t, rec))

	rec = do(t, h, http.MethodPost, "/appointment", tok, `{"date":-1e20,"description":"Far","price":30}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Cannot create past appointment", detail(t, rec))

	rec = do(t, h, http.MethodGet, "/appointment", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	require.Len(t, list, 1)

	rec = do(t, h, http.MethodGet, "/appointment?paid=true", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/appointment?before=soon", tok, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid query parameter: before", detail(t, rec))

	aptID := int64(apt["id"].(float64))
	rec = do(t, h, http.MethodDelete, "/appointment", tok, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Must provide appointment id", detail(t, rec))

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/appointment?id=%d", aptID), tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/appointment?id=%d", aptID), tok, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics(t *testing.T) {
	h := newServer(t)
	do(t, h, http.MethodGet, "/healthz", "", "")

	rec := do(t, h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
