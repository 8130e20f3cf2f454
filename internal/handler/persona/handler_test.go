package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	personaModel "github.com/advisia/advisor/internal/model/persona"
)

func TestListPersonas(t *testing.T) {
	r := chi.NewRouter()
	New(personaModel.NewMemoryStore(personaModel.Seed())).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/personas", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var personas []personaModel.Persona
	if err := json.NewDecoder(rec.Body).Decode(&personas); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if len(personas) != 3 {
		t.Fatalf("expected 3 personas, got %d", len(personas))
	}
	for _, p := range personas {
		if p.ID == "" || p.Name == "" || p.OpeningLine == "" {
			t.Fatalf("incomplete persona in directory: %+v", p)
		}
		// Routing material and scripts never leave the server.
		if p.SystemScript != "" || len(p.Keywords) != 0 {
			t.Fatalf("internal fields leaked: %+v", p)
		}
	}
}
