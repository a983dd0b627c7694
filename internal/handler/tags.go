package handler

import (
	"net/http"

	"tagdex/internal/models"
	"tagdex/pkg/platform/httputil"
	"tagdex/pkg/requestcontext"
)

// HandleCreateTag handles POST /tags requests.
func (h *Handler) HandleCreateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := ownerFrom(r)

	req, ok := httputil.DecodeAndPrepare[CreateTagRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	tag, err := h.service.CreateTag(ctx, owner, req.Name, req.Color)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tag)
}

// HandleListTags handles GET /tags requests.
func (h *Handler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tags, err := h.service.ListTags(ctx, ownerFrom(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	httputil.WriteJSON(w, http.StatusOK, tags)
}

// HandleGetTag handles GET /tags/{tagID} requests.
func (h *Handler) HandleGetTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tagID, ok := tagIDParam(w, r)
	if !ok {
		return
	}

	tag, err := h.service.GetTag(ctx, ownerFrom(r), tagID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tag)
}

// HandleUpdateTag handles PATCH /tags/{tagID} requests. A name change is a
// rename; color and description changes are cosmetic.
func (h *Handler) HandleUpdateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := ownerFrom(r)
	tagID, ok := tagIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateTagRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	var tag *models.Tag
	var err error
	if req.Name != nil {
		tag, err = h.service.RenameTag(ctx, owner, tagID, *req.Name)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	if req.Color != nil || req.Description != nil {
		tag, err = h.service.UpdateTag(ctx, owner, tagID, req.Color, req.Description)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, tag)
}

// HandleDeleteTag handles DELETE /tags/{tagID} requests. Deletion cascades:
// the tag is removed from every contact and from every derived group's
// defining set, and affected group memberships are recomputed.
func (h *Handler) HandleDeleteTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tagID, ok := tagIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTag(ctx, ownerFrom(r), tagID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
