package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	MaxTextLength     = 20000
	MaxCategoryLength = 50
	MaxTags           = 10
	MaxTagLength      = 30

	// Categories and tags are shown as graph labels, so keep them printable and short
	namePattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} _.&/-]*$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("label", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
}

// DocumentRequest is the payload of an upload
type DocumentRequest struct {
	Text         string   `json:"document" validate:"required,max=20000"`
	Category     string   `json:"category" validate:"required,max=50,label"`
	Tags         []string `json:"tags" validate:"omitempty,max=10,unique,dive,required,max=30,label"`
	OriginalText string   `json:"originalDocument" validate:"omitempty,max=20000"`
}

// ValidateDocumentRequest validates an upload before it reaches the store
func ValidateDocumentRequest(req *DocumentRequest) error {
	if req == nil {
		return errors.New("document request cannot be nil")
	}

	if strings.TrimSpace(req.Text) == "" {
		return errors.New("Text: document content is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return errors.New("Category: category is required")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateTag checks a single tag the way uploads do, for interactive tag entry
func ValidateTag(tag string) error {
	if tag == "" {
		return errors.New("tag cannot be empty")
	}
	if len(tag) > MaxTagLength {
		return fmt.Errorf("tag '%s' exceeds maximum length of %d characters", tag, MaxTagLength)
	}
	if !namePattern.MatchString(tag) {
		return fmt.Errorf("tag '%s' contains invalid characters", tag)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "unique":
			return fmt.Errorf("%s: duplicate values are not allowed", field)
		case "label":
			return fmt.Errorf("%s: '%v' contains invalid characters", field, e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
