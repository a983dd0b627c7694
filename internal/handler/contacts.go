package handler

import (
	"net/http"

	"tagdex/internal/models"
	"tagdex/pkg/platform/httputil"
	"tagdex/pkg/requestcontext"
)

// HandleCreateContact handles POST /contacts requests. Initial tags are
// assigned as part of creation, so the contact lands in every derived group
// it qualifies for in the same commit.
func (h *Handler) HandleCreateContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := ownerFrom(r)

	req, ok := httputil.DecodeAndPrepare[CreateContactRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	contact, err := h.service.CreateContact(ctx, owner, req.Name, req.ParsedTagIDs())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, contact)
}

// HandleListContacts handles GET /contacts requests.
func (h *Handler) HandleListContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	contacts, err := h.service.ListContacts(ctx, ownerFrom(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if contacts == nil {
		contacts = []*models.Contact{}
	}
	httputil.WriteJSON(w, http.StatusOK, contacts)
}

// HandleGetContact handles GET /contacts/{contactID} requests.
func (h *Handler) HandleGetContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, ok := contactIDParam(w, r)
	if !ok {
		return
	}

	contact, err := h.service.GetContact(ctx, ownerFrom(r), contactID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contact)
}

// HandleDeleteContact handles DELETE /contacts/{contactID} requests. The
// contact is removed from every group member set in the same commit.
func (h *Handler) HandleDeleteContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, ok := contactIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteContact(ctx, ownerFrom(r), contactID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAssignTag handles PUT /contacts/{contactID}/tags/{tagID} requests.
// Assigning a tag the contact already carries is a successful no-op.
func (h *Handler) HandleAssignTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, ok := contactIDParam(w, r)
	if !ok {
		return
	}
	tagID, ok := tagIDParam(w, r)
	if !ok {
		return
	}

	contact, err := h.service.AddTagToContact(ctx, ownerFrom(r), contactID, tagID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contact)
}

// HandleUnassignTag handles DELETE /contacts/{contactID}/tags/{tagID}
// requests. Removing a tag the contact does not carry is a successful no-op.
func (h *Handler) HandleUnassignTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, ok := contactIDParam(w, r)
	if !ok {
		return
	}
	tagID, ok := tagIDParam(w, r)
	if !ok {
		return
	}

	contact, err := h.service.RemoveTagFromContact(ctx, ownerFrom(r), contactID, tagID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, contact)
}
