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

type AdminProfileHandler struct {
	store   *store.Store
	service *profilesvc.Service
}

func NewAdminProfileHandler(st *store.Store, service *profilesvc.Service) *AdminProfileHandler {
	return &AdminProfileHandler{store: st, service: service}
}

// List includes hidden profiles; the panel manages both.
func (h *AdminProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	doc := h.store.Load()
	profiles := h.service.List(doc, true)

	out := make([]dto.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, mapProfile(p))
	}
	httperrors.Write(w, http.StatusOK, dto.ProfileListResponse{Profiles: out})
}

func (h *AdminProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile body")
		return
	}

	var created *model.Profile
	_, err := h.store.Update(func(doc *model.Document) error {
		var createErr error
		created, createErr = h.service.Create(doc, profilesvc.CreateInput{
			Name:        req.Name,
			Age:         req.Age,
			Gender:      req.Gender,
			City:        req.City,
			Description: req.Description,
			Photos:      req.Photos,
			Visible:     true,
		})
		return createErr
	})
	if err != nil {
		if errors.Is(err, profilesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "profile name is required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to create profile")
		return
	}

	httperrors.Write(w, http.StatusCreated, mapProfile(*created))
}

// Toggle flips profile visibility on the storefront.
func (h *AdminProfileHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "profileID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	var visible bool
	_, err = h.store.Update(func(doc *model.Document) error {
		profile := doc.ProfileByID(id)
		if profile == nil {
			return profilesvc.ErrProfileNotFound
		}
		visible = !profile.Visible
		return h.service.SetVisible(doc, id, visible)
	})
	if err != nil {
		if errors.Is(err, profilesvc.ErrProfileNotFound) {
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to toggle profile")
		return
	}

	httperrors.Write(w, http.StatusOK, map[string]bool{"visible": visible})
}

// Delete removes a profile together with its chats, messages and
// comments.
func (h *AdminProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "profileID")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	_, err = h.store.Update(func(doc *model.Document) error {
		return h.service.Delete(doc, id)
	})
	if err != nil {
		if errors.Is(err, profilesvc.ErrProfileNotFound) {
			writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to delete profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
