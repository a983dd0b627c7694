package handler

import (
	"net/http"

	"tagdex/internal/engine"
	"tagdex/internal/models"
	"tagdex/pkg/platform/httputil"
	"tagdex/pkg/requestcontext"
)

// HandleCreateGroup handles POST /groups requests. A derived group's initial
// membership is materialized before the response is written.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := ownerFrom(r)

	req, ok := httputil.DecodeAndPrepare[CreateGroupRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	group, err := h.service.CreateGroup(ctx, owner, req.Name, req.ParsedType(), req.ParsedTagIDs())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, group)
}

// HandleListGroups handles GET /groups requests.
func (h *Handler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groups, err := h.service.ListGroups(ctx, ownerFrom(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	httputil.WriteJSON(w, http.StatusOK, groups)
}

// HandleGetGroup handles GET /groups/{groupID} requests.
func (h *Handler) HandleGetGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	group, err := h.service.GetGroup(ctx, ownerFrom(r), groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, group)
}

// HandleUpdateGroup handles PATCH /groups/{groupID} requests. Replacing the
// defining tags or switching between manual and derived types changes
// membership as part of the same commit.
func (h *Handler) HandleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := ownerFrom(r)
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateGroupRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	group, err := h.service.UpdateGroup(ctx, owner, groupID, engine.UpdateGroupRequest{
		Name:   req.Name,
		Type:   req.ParsedType(),
		TagIDs: req.ParsedTagIDs(),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, group)
}

// HandleDeleteGroup handles DELETE /groups/{groupID} requests. The group is
// unlinked from every member in the same commit.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteGroup(ctx, ownerFrom(r), groupID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRecomputeGroup handles POST /groups/{groupID}/recompute requests.
func (h *Handler) HandleRecomputeGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	group, err := h.service.RecomputeGroup(ctx, ownerFrom(r), groupID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, group)
}

// HandleAddGroupMember handles PUT /groups/{groupID}/members/{contactID}
// requests. Only manual groups accept explicit member edits.
func (h *Handler) HandleAddGroupMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	contactID, ok := contactIDParam(w, r)
	if !ok {
		return
	}

	group, err := h.service.AddGroupMember(ctx, ownerFrom(r), groupID, contactID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, group)
}

// HandleRemoveGroupMember handles DELETE /groups/{groupID}/members/{contactID}
// requests.
func (h *Handler) HandleRemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}
	contactID, ok := contactIDParam(w, r)
	if !ok {
		return
	}

	group, err := h.service.RemoveGroupMember(ctx, ownerFrom(r), groupID, contactID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, group)
}
