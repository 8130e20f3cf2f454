package diagnostic

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	diagnosticService "github.com/advisia/advisor/internal/service/diagnostic"
	"github.com/advisia/advisor/internal/store"
)

func newTestRouter() http.Handler {
	sessions := store.NewMemoryStore(time.Hour)
	interviews := diagnosticService.NewService(sessions, nil)

	r := chi.NewRouter()
	New(interviews).RegisterRoutes(r)
	return r
}

func postDiagnostic(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/diagnostic", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestDiagnosticKickoffWithEmptyMessage(t *testing.T) {
	router := newTestRouter()

	rec := postDiagnostic(t, router, `{"sessionId":"diag-1","firstName":"Anne","sector":"retail"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result diagnosticService.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if result.QuestionCount != 1 || result.IsComplete {
		t.Fatalf("kickoff must ask question 1: %+v", result)
	}
	if result.Message == "" {
		t.Fatal("expected a question text")
	}
	if result.Scores != nil {
		t.Fatalf("scores must be absent before completion: %+v", result.Scores)
	}
}

func TestDiagnosticFullInterviewOverHTTP(t *testing.T) {
	router := newTestRouter()

	rec := postDiagnostic(t, router, `{"sessionId":"diag-2","message":"start"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("kickoff status = %d", rec.Code)
	}

	var result diagnosticService.Result
	for i := 1; i <= 7; i++ {
		rec = postDiagnostic(t, router, `{"sessionId":"diag-2","message":"réponse"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("answer %d status = %d", i, rec.Code)
		}
		result = diagnosticService.Result{}
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode err: %v", err)
		}
	}

	if !result.IsComplete {
		t.Fatalf("seventh answer must complete the interview: %+v", result)
	}
	if result.Scores == nil || result.Grade == "" || result.Pack == 0 {
		t.Fatalf("completed interview must carry its result: %+v", result)
	}
}

func TestDiagnosticValidation(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing session id",
			body:    `{"message":"start"}`,
			wantErr: "sessionId is required",
		},
		{
			name:    "session id too long",
			body:    `{"sessionId":"` + strings.Repeat("x", 129) + `","message":"start"}`,
			wantErr: "sessionId exceeds 128 characters",
		},
		{
			name:    "message too long",
			body:    `{"sessionId":"diag-1","message":"` + strings.Repeat("a", 2001) + `"}`,
			wantErr: "message exceeds 2000 characters",
		},
		{
			name:    "malformed json",
			body:    `{"sessionId"`,
			wantErr: "invalid request body",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postDiagnostic(t, router, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var payload map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
				t.Fatalf("decode err: %v", err)
			}
			if payload["error"] != tc.wantErr {
				t.Fatalf("error = %q, want %q", payload["error"], tc.wantErr)
			}
		})
	}
}
