package handlers

import (
	"errors"
	"net/http"

	"github.com/ivankudzin/muji/internal/domain/model"
	profilesvc "github.com/ivankudzin/muji/internal/services/profiles"
	"github.com/ivankudzin/muji/internal/store"
	"github.com/ivankudzin/muji/internal/transport/http/dto"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
)

type ProfileHandler struct {
	store   *store.Store
	service *profilesvc.Service
}

func NewProfileHandler(st *store.Store, service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{store: st, service: service}
}

// List returns visible profiles only; hidden ones exist for the panel.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	doc := h.store.Load()
	profiles := h.service.List(doc, false)

	out := make([]dto.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, mapProfile(p))
	}
	httperrors.Write(w, http.StatusOK, dto.ProfileListResponse{Profiles: out})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "profileID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	doc := h.store.Load()
	profile, err := h.service.Get(doc, id)
	if err != nil {
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		return
	}
	if !profile.Visible {
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		return
	}

	httperrors.Write(w, http.StatusOK, mapProfile(*profile))
}

func (h *ProfileHandler) Comments(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "profileID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	doc := h.store.Load()
	comments := h.service.CommentsFor(doc, id)

	out := make([]dto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, mapComment(c))
	}
	httperrors.Write(w, http.StatusOK, out)
}

func (h *ProfileHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "profileID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	var req dto.AddCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid comment body")
		return
	}

	var created *model.Comment
	_, err = h.store.Update(func(doc *model.Document) error {
		var addErr error
		created, addErr = h.service.AddComment(doc, id, req.Author, req.Text)
		return addErr
	})
	if err != nil {
		switch {
		case errors.Is(err, profilesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "comment text is required")
		case errors.Is(err, profilesvc.ErrProfileNotFound):
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to save comment")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, mapComment(*created))
}
