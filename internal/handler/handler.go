// Package handler wires the engine's operations to HTTP routes.
//
// Every route is owner-scoped: the owner id arrives via middleware and each
// call is delegated to the engine, which owns all consistency logic. Handlers
// only decode, validate, delegate, and encode.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tagdex/internal/engine"
	"tagdex/internal/models"
	"tagdex/internal/platform/middleware"
	id "tagdex/pkg/domain"
	"tagdex/pkg/platform/httputil"
)

// Service defines the engine operations the HTTP layer depends on.
type Service interface {
	CreateTag(ctx context.Context, owner id.OwnerID, name, color string) (*models.Tag, error)
	RenameTag(ctx context.Context, owner id.OwnerID, tagID id.TagID, newName string) (*models.Tag, error)
	UpdateTag(ctx context.Context, owner id.OwnerID, tagID id.TagID, color, description *string) (*models.Tag, error)
	DeleteTag(ctx context.Context, owner id.OwnerID, tagID id.TagID) error
	GetTag(ctx context.Context, owner id.OwnerID, tagID id.TagID) (*models.Tag, error)
	ListTags(ctx context.Context, owner id.OwnerID) ([]*models.Tag, error)

	CreateContact(ctx context.Context, owner id.OwnerID, name string, initialTags []id.TagID) (*models.Contact, error)
	DeleteContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID) error
	GetContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID) (*models.Contact, error)
	ListContacts(ctx context.Context, owner id.OwnerID) ([]*models.Contact, error)
	AddTagToContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID, tagID id.TagID) (*models.Contact, error)
	RemoveTagFromContact(ctx context.Context, owner id.OwnerID, contactID id.ContactID, tagID id.TagID) (*models.Contact, error)

	CreateGroup(ctx context.Context, owner id.OwnerID, name string, groupType models.GroupType, tagIDs []id.TagID) (*models.Group, error)
	UpdateGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID, req engine.UpdateGroupRequest) (*models.Group, error)
	DeleteGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID) error
	AddGroupMember(ctx context.Context, owner id.OwnerID, groupID id.GroupID, contactID id.ContactID) (*models.Group, error)
	RemoveGroupMember(ctx context.Context, owner id.OwnerID, groupID id.GroupID, contactID id.ContactID) (*models.Group, error)
	RecomputeGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID) (*models.Group, error)
	GetGroup(ctx context.Context, owner id.OwnerID, groupID id.GroupID) (*models.Group, error)
	ListGroups(ctx context.Context, owner id.OwnerID) ([]*models.Group, error)
}

// Handler exposes engine operations over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts all owner-scoped routes on the router. The router must run
// the owner-scope middleware before these handlers.
func (h *Handler) Register(r chi.Router) {
	r.Route("/tags", func(r chi.Router) {
		r.Post("/", h.HandleCreateTag)
		r.Get("/", h.HandleListTags)
		r.Get("/{tagID}", h.HandleGetTag)
		r.Patch("/{tagID}", h.HandleUpdateTag)
		r.Delete("/{tagID}", h.HandleDeleteTag)
	})

	r.Route("/contacts", func(r chi.Router) {
		r.Post("/", h.HandleCreateContact)
		r.Get("/", h.HandleListContacts)
		r.Get("/{contactID}", h.HandleGetContact)
		r.Delete("/{contactID}", h.HandleDeleteContact)
		r.Put("/{contactID}/tags/{tagID}", h.HandleAssignTag)
		r.Delete("/{contactID}/tags/{tagID}", h.HandleUnassignTag)
	})

	r.Route("/groups", func(r chi.Router) {
		r.Post("/", h.HandleCreateGroup)
		r.Get("/", h.HandleListGroups)
		r.Get("/{groupID}", h.HandleGetGroup)
		r.Patch("/{groupID}", h.HandleUpdateGroup)
		r.Delete("/{groupID}", h.HandleDeleteGroup)
		r.Post("/{groupID}/recompute", h.HandleRecomputeGroup)
		r.Put("/{groupID}/members/{contactID}", h.HandleAddGroupMember)
		r.Delete("/{groupID}/members/{contactID}", h.HandleRemoveGroupMember)
	})
}

func ownerFrom(r *http.Request) id.OwnerID {
	return middleware.GetOwnerID(r.Context())
}

// tagIDParam parses the {tagID} path parameter, writing the error response
// itself on failure.
func tagIDParam(w http.ResponseWriter, r *http.Request) (id.TagID, bool) {
	tagID, err := id.ParseTagID(chi.URLParam(r, "tagID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.TagID{}, false
	}
	return tagID, true
}

func contactIDParam(w http.ResponseWriter, r *http.Request) (id.ContactID, bool) {
	contactID, err := id.ParseContactID(chi.URLParam(r, "contactID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ContactID{}, false
	}
	return contactID, true
}

func groupIDParam(w http.ResponseWriter, r *http.Request) (id.GroupID, bool) {
	groupID, err := id.ParseGroupID(chi.URLParam(r, "groupID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.GroupID{}, false
	}
	return groupID, true
}
