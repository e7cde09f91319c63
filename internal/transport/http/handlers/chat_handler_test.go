package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/muji/internal/domain/model"
	chatsvc "github.com/ivankudzin/muji/internal/services/chats"
	"github.com/ivankudzin/muji/internal/store"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
)

func newChatRouter(t *testing.T, externalUserID string) (*chi.Mux, *store.Store, *chatsvc.Service) {
	t.Helper()

	st := store.New(filepath.Join(t.TempDir(), "doc.json"))
	if _, err := st.Update(func(doc *model.Document) error {
		doc.Profiles = []model.Profile{{ID: 1, Name: "Alice", Visible: true}}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	service := chatsvc.NewService(nil, nil)
	h := NewChatHandler(st, service, nil, nil, nil)
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(identityMiddleware(externalUserID))
		r.Get("/api/chats/{profileID}/messages", h.Messages)
		r.Get("/api/chats/{profileID}/updates", h.Updates)
	})
	return r, st, service
}

func TestUpdatesHonorsLastMessageID(t *testing.T) {
	r, st, service := newChatRouter(t, "42")

	if _, err := st.Update(func(doc *model.Document) error {
		for _, text := range []string{"one", "two", "three"} {
			if _, err := service.AppendMessage(doc, chatsvc.AppendInput{
				ProfileID:      1,
				ExternalUserID: "42",
				FromUser:       true,
				Text:           text,
			}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chats/1/updates?last_message_id=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.UpdatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Text != "three" {
		t.Fatalf("expected only the third message, got %+v", resp.Messages)
	}
	if resp.LastID != 3 {
		t.Fatalf("expected cursor 3, got %d", resp.LastID)
	}
}

func TestUpdatesWithoutChatResetsCursor(t *testing.T) {
	r, _, _ := newChatRouter(t, "42")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chats/1/updates?last_message_id=7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp dto.UpdatesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Messages) != 0 || resp.LastID != 0 {
		t.Fatalf("expected empty updates with cursor 0, got %+v", resp)
	}
}

func TestMessagesDoNotExposeLegacyChatHistory(t *testing.T) {
	r, st, _ := newChatRouter(t, "42")

	if _, err := st.Update(func(doc *model.Document) error {
		doc.Chats = append(doc.Chats, model.Chat{ID: 10, ProfileID: 1, ProfileName: "Alice"})
		doc.Messages = append(doc.Messages, model.Message{ID: 1, ChatID: 10, FromUser: true, Text: "someone else's history"})
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chats/1/messages", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.MessageListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Messages) != 0 {
		t.Fatalf("identified user sees the legacy chat history: %+v", resp.Messages)
	}

	doc := st.Load()
	if len(doc.Chats) != 2 {
		t.Fatalf("expected a fresh chat beside the legacy one, got %d chats", len(doc.Chats))
	}
	for _, c := range doc.Chats {
		if c.ExternalUserID == "42" && c.ID == 10 {
			t.Fatal("user was attached to the legacy chat")
		}
	}
}
