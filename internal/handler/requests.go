package handler

import (
	"strings"

	"tagdex/internal/models"
	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
)

// CreateTagRequest is the HTTP request body for POST /tags.
type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (r *CreateTagRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 64 {
		return dErrors.New(dErrors.CodeValidation, "name must be 64 characters or less")
	}
	r.Color = strings.TrimSpace(r.Color)
	if len(r.Color) > 32 {
		return dErrors.New(dErrors.CodeValidation, "color must be 32 characters or less")
	}
	return nil
}

// UpdateTagRequest is the HTTP request body for PATCH /tags/{tagID}. Omitted
// fields are left unchanged.
type UpdateTagRequest struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

func (r *UpdateTagRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Name == nil && r.Color == nil && r.Description == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		if trimmed == "" {
			return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
		}
		if len(trimmed) > 64 {
			return dErrors.New(dErrors.CodeValidation, "name must be 64 characters or less")
		}
		r.Name = &trimmed
	}
	return nil
}

// CreateContactRequest is the HTTP request body for POST /contacts.
type CreateContactRequest struct {
	Name   string   `json:"name"`
	TagIDs []string `json:"tag_ids"`

	// Parsed values (populated by Validate)
	parsedTagIDs []id.TagID
}

func (r *CreateContactRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 128 {
		return dErrors.New(dErrors.CodeValidation, "name must be 128 characters or less")
	}
	parsed, err := parseTagIDs(r.TagIDs)
	if err != nil {
		return err
	}
	r.parsedTagIDs = parsed
	return nil
}

// ParsedTagIDs returns the validated initial tag ids.
func (r *CreateContactRequest) ParsedTagIDs() []id.TagID {
	return r.parsedTagIDs
}

// CreateGroupRequest is the HTTP request body for POST /groups.
type CreateGroupRequest struct {
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	TagIDs []string `json:"tag_ids"`

	// Parsed values (populated by Validate)
	parsedType   models.GroupType
	parsedTagIDs []id.TagID
}

func (r *CreateGroupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 64 {
		return dErrors.New(dErrors.CodeValidation, "name must be 64 characters or less")
	}

	groupType := models.GroupType(strings.TrimSpace(r.Type))
	if !groupType.Valid() {
		return dErrors.Newf(dErrors.CodeValidation, "type must be one of %q, %q, %q",
			models.GroupTypeManual, models.GroupTypeAuto, models.GroupTypeSmart)
	}
	r.parsedType = groupType

	if !groupType.Derived() && len(r.TagIDs) > 0 {
		return dErrors.New(dErrors.CodeValidation, "manual groups cannot carry defining tags")
	}
	parsed, err := parseTagIDs(r.TagIDs)
	if err != nil {
		return err
	}
	r.parsedTagIDs = parsed
	return nil
}

// ParsedType returns the validated group type.
func (r *CreateGroupRequest) ParsedType() models.GroupType {
	return r.parsedType
}

// ParsedTagIDs returns the validated defining tag ids.
func (r *CreateGroupRequest) ParsedTagIDs() []id.TagID {
	return r.parsedTagIDs
}

// UpdateGroupRequest is the HTTP request body for PATCH /groups/{groupID}.
// Omitted fields are left unchanged.
type UpdateGroupRequest struct {
	Name   *string   `json:"name"`
	Type   *string   `json:"type"`
	TagIDs *[]string `json:"tag_ids"`

	// Parsed values (populated by Validate)
	parsedType   *models.GroupType
	parsedTagIDs *[]id.TagID
}

func (r *UpdateGroupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Name == nil && r.Type == nil && r.TagIDs == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		if trimmed == "" {
			return dErrors.New(dErrors.CodeValidation, "name cannot be empty")
		}
		if len(trimmed) > 64 {
			return dErrors.New(dErrors.CodeValidation, "name must be 64 characters or less")
		}
		r.Name = &trimmed
	}
	if r.Type != nil {
		groupType := models.GroupType(strings.TrimSpace(*r.Type))
		if !groupType.Valid() {
			return dErrors.Newf(dErrors.CodeValidation, "type must be one of %q, %q, %q",
				models.GroupTypeManual, models.GroupTypeAuto, models.GroupTypeSmart)
		}
		r.parsedType = &groupType
	}
	if r.TagIDs != nil {
		parsed, err := parseTagIDs(*r.TagIDs)
		if err != nil {
			return err
		}
		r.parsedTagIDs = &parsed
	}
	return nil
}

// ParsedType returns the validated group type, or nil when unchanged.
func (r *UpdateGroupRequest) ParsedType() *models.GroupType {
	return r.parsedType
}

// ParsedTagIDs returns the validated defining tag ids, or nil when unchanged.
func (r *UpdateGroupRequest) ParsedTagIDs() *[]id.TagID {
	return r.parsedTagIDs
}

func parseTagIDs(raw []string) ([]id.TagID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.TagID, 0, len(raw))
	for _, s := range raw {
		tagID, err := id.ParseTagID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, tagID)
	}
	return out, nil
}
