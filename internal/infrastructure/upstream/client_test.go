package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"census-gateway/config"
	"census-gateway/internal/infrastructure/upstream"
	"census-gateway/internal/scope"

	"github.com/stretchr/testify/require"
)

// fakeBackend mimics the census upstream: /login mints tokens, everything
// else requires a bearer token it has minted.
type fakeBackend struct {
	mu          sync.Mutex
	tokens      map[string]bool
	logins      int
	lastQueries map[string]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tokens:      make(map[string]bool),
		lastQueries: make(map[string]string),
	}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "svc@example.com" || creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		b.mu.Lock()
		b.logins++
		token := "token-" + time.Now().Format("150405.000000000")
		b.tokens[token] = true
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message":  "ok",
			"jwtToken": token,
		})
	})

	authed := func(path string, payload string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			b.mu.Lock()
			valid := len(auth) > 7 && b.tokens[auth[7:]]
			b.lastQueries[path] = r.URL.RawQuery
			b.mu.Unlock()

			if !valid {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(payload))
		})
	}

	authed("/patients", `{"data": [{"patientId": 1, "firstName": "John", "lastName": "Doe", "patientStatus": "Current"}]}`)
	authed("/events", `[{"eventId": "e1", "eventType": "Admission", "patientId": 1, "timestamp": "2026-08-01T00:00:00Z"}]`)
	authed("/coverage", `{"data": []}`)
	authed("/facilities", `[{"facId": 1, "facilityName": "Aspen Grove", "active": true}]`)

	return mux
}

func (b *fakeBackend) loginCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logins
}

func (b *fakeBackend) revokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]bool)
}

func (b *fakeBackend) queryFor(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQueries[path]
}

func newTestClient(t *testing.T, backend *fakeBackend) upstream.Client {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	return upstream.NewClient(config.UpstreamConfig{
		BaseURL:  server.URL,
		Email:    "svc@example.com",
		Password: "secret",
		Timeout:  5 * time.Second,
	})
}

func TestClient_LoginAndFetch(t *testing.T) {
	backend := newFakeBackend()
	client := newTestClient(t, backend)

	require.NoError(t, client.Login(context.Background()))
	require.Equal(t, 1, backend.loginCount())

	body, err := client.GetPatients(context.Background(), nil)
	require.NoError(t, err)
	require.Contains(t, string(body), `"patientId": 1`)
}

func TestClient_LoginRejected(t *testing.T) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	client := upstream.NewClient(config.UpstreamConfig{
		BaseURL:  server.URL,
		Email:    "svc@example.com",
		Password: "wrong",
		Timeout:  5 * time.Second,
	})

	err := client.Login(context.Background())
	require.ErrorIs(t, err, upstream.ErrUpstreamAuth)
}

func TestClient_ReauthenticatesOnExpiredSession(t *testing.T) {
	backend := newFakeBackend()
	client := newTestClient(t, backend)

	require.NoError(t, client.Login(context.Background()))

	// Simulate upstream-side session expiry
	backend.revokeAll()

	body, err := client.GetPatients(context.Background(), nil)
	require.NoError(t, err)
	require.Contains(t, string(body), `"patientId": 1`)
	require.Equal(t, 2, backend.loginCount())
}

func TestClient_ScopedEventsCarryFacilityParam(t *testing.T) {
	backend := newFakeBackend()
	client := newTestClient(t, backend)
	require.NoError(t, client.Login(context.Background()))

	_, err := client.GetEvents(context.Background(), scope.ForFacility(12), nil)
	require.NoError(t, err)
	require.Contains(t, backend.queryFor("/events"), "facId=12")

	_, err = client.GetEvents(context.Background(), scope.All(), nil)
	require.NoError(t, err)
	require.NotContains(t, backend.queryFor("/events"), "facId")
}

func TestClient_PatientsNeverScoped(t *testing.T) {
	backend := newFakeBackend()
	client := newTestClient(t, backend)
	require.NoError(t, client.Login(context.Background()))

	_, err := client.GetCoverage(context.Background(), 9)
	require.NoError(t, err)
	require.Equal(t, "patientId=9", backend.queryFor("/coverage"))
}

func TestClient_ServerErrorSurfacesAsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"jwtToken": "t"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := upstream.NewClient(config.UpstreamConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, client.Login(context.Background()))

	_, err := client.GetFacilities(context.Background())
	require.ErrorIs(t, err, upstream.ErrUpstreamUnavailable)
}
