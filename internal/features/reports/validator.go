package reports

import (
	"fmt"
	"strings"

	"github.com/civicfix/civicfix-api/internal/pkg/validator"
	apperrors "github.com/civicfix/civicfix-api/pkg/errors"
)

// ValidateSubmission checks the required fields before any side effect runs.
// A category may be omitted only when an image is attached, since the
// classifier can then supply one.
func ValidateSubmission(sub *Submission) error {
	if strings.TrimSpace(sub.Description) == "" {
		return validationError("description is required")
	}
	if strings.TrimSpace(sub.Category) == "" && sub.Image == nil {
		return validationError("category is required when no image is attached")
	}
	if !validator.IsValidLatitude(sub.Geo.Latitude) {
		return validationError("latitude must be between -90 and 90")
	}
	if !validator.IsValidLongitude(sub.Geo.Longitude) {
		return validationError("longitude must be between -180 and 180")
	}
	if !validator.IsValidSeverity(sub.Severity) {
		return validationError("severity must be between 1 and 5")
	}
	if strings.TrimSpace(sub.Contact) == "" {
		return validationError("contact email is required")
	}
	if !validator.IsValidEmail(sub.Contact) {
		return validationError("contact email is not a valid address")
	}
	if sub.Image != nil && len(sub.Image.Data) == 0 {
		return validationError("attached image is empty")
	}
	return nil
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, msg)
}
