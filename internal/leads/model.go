package leads

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultService is recorded when a booking arrives with no services picked.
const DefaultService = "General Booking"

// phonePattern accepts ten digit Indian mobile numbers. Only whitespace is
// stripped before matching; dashes, dots and country prefixes fail.
var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizePhone strips all whitespace from a raw phone input. No other
// characters are removed.
func NormalizePhone(raw string) string {
	return whitespacePattern.ReplaceAllString(raw, "")
}

// ValidPhone reports whether the normalized phone matches the accepted
// format.
func ValidPhone(normalized string) bool {
	return phonePattern.MatchString(normalized)
}

// Lead is one captured booking request.
type Lead struct {
	ID        string    `json:"id"`
	SpaID     string    `json:"spaId"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Services  []string  `json:"services"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateLeadRequest is the submission payload from the widget.
type CreateLeadRequest struct {
	SpaID    string   `json:"spaId"`
	Name     string   `json:"name"`
	Phone    string   `json:"phone"`
	Services []string `json:"services"`
	Message  string   `json:"message"`
}

// Validate checks the payload and returns the field-specific sentinel error
// for the first problem found.
func (r *CreateLeadRequest) Validate() error {
	if strings.TrimSpace(r.SpaID) == "" {
		return ErrMissingSpaID
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	phone := NormalizePhone(r.Phone)
	if phone == "" {
		return ErrMissingPhone
	}
	if !ValidPhone(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ToLead builds a Lead from a validated request. The phone is stored in its
// normalized form and empty service selections become the default entry.
func (r *CreateLeadRequest) ToLead() *Lead {
	services := make([]string, 0, len(r.Services))
	for _, s := range r.Services {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			services = append(services, trimmed)
		}
	}
	if len(services) == 0 {
		services = []string{DefaultService}
	}

	return &Lead{
		ID:       uuid.NewString(),
		SpaID:    strings.TrimSpace(r.SpaID),
		Name:     strings.TrimSpace(r.Name),
		Phone:    NormalizePhone(r.Phone),
		Services: services,
		Message:  strings.TrimSpace(r.Message),
	}
}
