package docsystem

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"collaboratex/internal/config"
	"collaboratex/internal/domain"
	models "collaboratex/internal/domain/models/docsystem"
	docsysSvc "collaboratex/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// titlePattern is the character whitelist for document titles
var titlePattern = regexp.MustCompile(`^[a-zA-Z0-9\sáàâãéèêíìîóòôõúùûçÁÀÂÃÉÈÊÍÌÎÓÒÔÕÚÙÛÇ.,\-_:;()&]+$`)

func titleRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("title is required"),
		validation.RuneLength(config.MinDocumentTitleLength, config.MaxDocumentTitleLength).
			Error(fmt.Sprintf("title must be between %d and %d characters",
				config.MinDocumentTitleLength, config.MaxDocumentTitleLength)),
		validation.Match(titlePattern).Error("title contains invalid characters"),
	}
}

func contentRules() []validation.Rule {
	return []validation.Rule{
		validation.Length(0, config.MaxDocumentContentBytes).Error("content is too large"),
	}
}

// validateCreateRequest trims the title and checks the request
func validateCreateRequest(req *docsysSvc.CreateDocumentRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	return wrapValidation(validation.ValidateStruct(req,
		validation.Field(&req.Title, titleRules()...),
		validation.Field(&req.Content, contentRules()...),
	))
}

// validateUpdateRequest applies the create rules to whichever fields are present
func validateUpdateRequest(req *docsysSvc.UpdateDocumentRequest) error {
	if req.OwnerIDSet {
		return fmt.Errorf("owner_id is immutable: %w", domain.ErrValidation)
	}
	if req.Title == nil && req.Content == nil && req.IsPublic == nil {
		return fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	return wrapValidation(validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.When(req.Title != nil, titleRules()...)),
		validation.Field(&req.Content, validation.When(req.Content != nil, contentRules()...)),
	))
}

func validateContent(content string) error {
	return wrapValidation(validation.Validate(content, contentRules()...))
}

// validateGenerateRequest checks permission and expiry of a new link
func validateGenerateRequest(req *docsysSvc.GenerateLinkRequest) error {
	return wrapValidation(validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.Permission,
			validation.Required.Error("permission is required"),
			validation.In(models.PermissionView, models.PermissionEdit).Error("permission must be view or edit"),
		),
		validation.Field(&req.ExpiresInDays,
			validation.NilOrNotEmpty.Error("expires_in_days must be at least 1"),
			validation.Min(1).Error("expires_in_days must be at least 1"),
			validation.Max(config.MaxLinkExpiryDays).Error(fmt.Sprintf("expires_in_days cannot exceed %d", config.MaxLinkExpiryDays)),
		),
	))
}

// wrapValidation tags ozzo errors with domain.ErrValidation, keeping the field messages
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return fmt.Errorf("%s: %w", errs.Error(), domain.ErrValidation)
	}
	var ve validation.Error
	if errors.As(err, &ve) {
		return fmt.Errorf("%s: %w", ve.Error(), domain.ErrValidation)
	}
	return err
}
