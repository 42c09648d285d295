package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/minicelia/celia/internal/api"
	"github.com/minicelia/celia/internal/dialogue"
	"github.com/minicelia/celia/internal/gateway"
	"github.com/minicelia/celia/internal/rules"
	"github.com/minicelia/celia/internal/session"
	"github.com/minicelia/celia/internal/store"
	"github.com/minicelia/celia/pkg/celia"
)

const (
	testAPIKey   = "e2e-user-key"
	testAdminKey = "e2e-admin-key"
)

// genBackend is a stand-in for the remote generation service. It answers the
// generation and validation endpoints with fixed payloads and counts calls.
type genBackend struct {
	srv   *httptest.Server
	calls atomic.Int64

	// failing makes every endpoint answer 503, forcing offline fallbacks.
	failing atomic.Bool
}

func newGenBackend(t *testing.T) *genBackend {
	t.Helper()
	b := &genBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if b.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
	mux.HandleFunc("/justificacion/generar_jn", func(w http.ResponseWriter, r *http.Request) {
		if b.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		b.calls.Add(1)

		var req struct {
			UserInput struct {
				ExpedienteID string `json:"expediente_id"`
				Seccion      string `json:"seccion"`
			} `json:"user_input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		narrative := fmt.Sprintf(
			"Justificación de la necesidad para el expediente %s, sección %s. La contratación resulta imprescindible para asegurar la continuidad del servicio público municipal.",
			req.UserInput.ExpedienteID, req.UserInput.Seccion)
		json.NewEncoder(w).Encode(map[string]string{"narrativa": narrative})
	})
	mux.HandleFunc("/validate/compliance", func(w http.ResponseWriter, r *http.Request) {
		if b.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"validation_results": map[string]any{
				"DNSH": true, "PRTR": true, "RGPD": true, "Fracc": true, "Missing": []string{},
			},
		})
	})
	mux.HandleFunc("/validate/coherence", func(w http.ResponseWriter, r *http.Request) {
		if b.failing.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"coherence_results": map[string]any{
				"checked": true, "ok": true, "notes": []string{},
			},
		})
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

// serverEnv composes the real server wired to a stub generation backend and
// an on-disk snapshot store.
type serverEnv struct {
	backend  *genBackend
	sessions *session.Store
	baseURL  string
	user     *celia.Client
	admin    *celia.Client
}

func setupServer(t *testing.T) *serverEnv {
	t.Helper()

	backend := newGenBackend(t)

	db, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "celia.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions := session.New()
	generator := gateway.NewHTTPClient(backend.srv.URL, 5*time.Second)
	validator := rules.NewService(generator)
	engine := dialogue.New(sessions, generator, nil, validator)
	engine.Welcome()

	handler := api.NewHandler(sessions, engine, validator, generator, db, "e2e")
	srv := httptest.NewServer(api.NewRouter(handler, testAPIKey, testAdminKey))
	t.Cleanup(srv.Close)

	user := newClient(t, srv.URL, testAPIKey)
	admin := newClient(t, srv.URL, testAdminKey)

	return &serverEnv{backend: backend, sessions: sessions, baseURL: srv.URL, user: user, admin: admin}
}

func newClient(t *testing.T, baseURL, apiKey string) *celia.Client {
	t.Helper()
	c, err := celia.New(celia.Config{BaseURL: baseURL, APIKey: apiKey, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("celia.New() error = %v", err)
	}
	return c
}

func lastMessage(t *testing.T, resp *celia.ChatResponse) celia.ChatMessage {
	t.Helper()
	if len(resp.Messages) == 0 {
		t.Fatal("empty transcript")
	}
	return resp.Messages[len(resp.Messages)-1]
}

func sectionByID(t *testing.T, steps []celia.Section, id string) celia.Section {
	t.Helper()
	for _, s := range steps {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("section %s not in state", id)
	return celia.Section{}
}
