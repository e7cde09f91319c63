package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/muji/internal/domain/model"
	profilesvc "github.com/ivankudzin/muji/internal/services/profiles"
	"github.com/ivankudzin/muji/internal/store"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
)

func newProfileRouter(t *testing.T) (*chi.Mux, *store.Store) {
	t.Helper()

	st := store.New(filepath.Join(t.TempDir(), "doc.json"))
	if _, err := st.Update(func(doc *model.Document) error {
		doc.Profiles = []model.Profile{
			{ID: 1, Name: "Alice", Visible: true},
			{ID: 2, Name: "Hidden", Visible: false},
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	h := NewProfileHandler(st, profilesvc.NewService(nil))
	r := chi.NewRouter()
	r.Get("/api/profiles", h.List)
	r.Get("/api/profiles/{profileID}", h.Get)
	r.Get("/api/profiles/{profileID}/comments", h.Comments)
	r.Post("/api/profiles/{profileID}/comments", h.AddComment)
	return r, st
}

func TestProfileListHidesInvisible(t *testing.T) {
	r, _ := newProfileRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp dto.ProfileListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Profiles) != 1 || resp.Profiles[0].Name != "Alice" {
		t.Fatalf("unexpected profiles: %+v", resp.Profiles)
	}
}

func TestProfileGetHiddenReturnsNotFound(t *testing.T) {
	r, _ := newProfileRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles/2", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for hidden profile, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profiles/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for visible profile, got %d", rec.Code)
	}
}

func TestAddCommentPersists(t *testing.T) {
	r, st := newProfileRouter(t)

	body := strings.NewReader(`{"author":"Bob","text":"great"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/profiles/1/comments", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	doc := st.Load()
	if len(doc.Comments) != 1 || doc.Comments[0].Text != "great" {
		t.Fatalf("comment not persisted: %+v", doc.Comments)
	}
}

func TestAddCommentValidation(t *testing.T) {
	r, _ := newProfileRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/profiles/1/comments", strings.NewReader(`{"text":"  "}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/profiles/99/comments", strings.NewReader(`{"text":"hi"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
