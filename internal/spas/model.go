package spas

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultPrimaryColor and DefaultSecondaryColor are applied when a spa has
// no theme configured.
const (
	DefaultPrimaryColor   = "#7c3aed"
	DefaultSecondaryColor = "#f5f3ff"
)

// Colors holds the two theme colors the widget uses for dynamic styling.
type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// Service is one bookable treatment offered by a spa. Order in the slice is
// display order.
type Service struct {
	ID         string `json:"id" validate:"required"`
	Title      string `json:"title" validate:"required"`
	PriceRange string `json:"priceRange"`
	Duration   string `json:"duration"`
	Popular    bool   `json:"popular"`
	// MinPrice is the numeric lower bound when known; zero means "parse it
	// out of PriceRange instead".
	MinPrice int `json:"minPrice,omitempty"`
}

// Spa is one tenant's widget configuration.
//
// BotImage is a pointer so the JSON boundary can distinguish "not set" (null)
// from a real URL. An empty string never survives normalization.
type Spa struct {
	SpaID      string    `json:"spaId"`
	SpaName    string    `json:"spaName"`
	BotName    string    `json:"botName,omitempty"`
	BotImage   *string   `json:"botImage"`
	IsActive   bool      `json:"isActive"`
	Offer      string    `json:"offer"`
	Colors     Colors    `json:"colors"`
	Services   []Service `json:"services"`
	TotalLeads int       `json:"totalLeads"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// NormalizeBotImage maps empty or blank values to nil. Applied at both the
// write (admin CRUD) and read (widget config) boundaries so no consumer ever
// observes an empty string.
func NormalizeBotImage(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Normalize applies the model invariants in place: blank bot image becomes
// nil and absent colors fall back to the defaults.
func (s *Spa) Normalize() {
	s.BotImage = NormalizeBotImage(s.BotImage)
	if strings.TrimSpace(s.Colors.Primary) == "" {
		s.Colors.Primary = DefaultPrimaryColor
	}
	if strings.TrimSpace(s.Colors.Secondary) == "" {
		s.Colors.Secondary = DefaultSecondaryColor
	}
	if s.Services == nil {
		s.Services = []Service{}
	}
}

// UpsertSpaRequest is the admin CRUD payload for creating or replacing a spa.
type UpsertSpaRequest struct {
	SpaID    string    `json:"spaId" validate:"required"`
	SpaName  string    `json:"spaName" validate:"required"`
	BotName  string    `json:"botName"`
	BotImage *string   `json:"botImage"`
	IsActive *bool     `json:"isActive"`
	Offer    string    `json:"offer"`
	Colors   Colors    `json:"colors"`
	Services []Service `json:"services" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required fields and nested service records.
func (r *UpsertSpaRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	return nil
}

// ToSpa builds a normalized Spa from the request. New spas are active unless
// the payload says otherwise.
func (r *UpsertSpaRequest) ToSpa() *Spa {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	s := &Spa{
		SpaID:    strings.TrimSpace(r.SpaID),
		SpaName:  strings.TrimSpace(r.SpaName),
		BotName:  strings.TrimSpace(r.BotName),
		BotImage: r.BotImage,
		IsActive: active,
		Offer:    r.Offer,
		Colors:   r.Colors,
		Services: r.Services,
	}
	s.Normalize()
	return s
}
