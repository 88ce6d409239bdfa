package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/glowbot/spa-widget-platform/internal/spas"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// View identifies the single active screen of the chat UI.
type View string

const (
	ViewWelcome  View = "welcome"
	ViewServices View = "services"
	ViewBooking  View = "booking"
	ViewSuccess  View = "success"
)

// SubmitStatus reflects the outcome of the last submit attempt.
type SubmitStatus string

const (
	SubmitNone          SubmitStatus = "none"
	SubmitSuccess       SubmitStatus = "success"
	SubmitMissingFields SubmitStatus = "error-missing-fields"
	SubmitInvalidPhone  SubmitStatus = "error-invalid-phone"
	SubmitFailed        SubmitStatus = "error-submit-failed"
)

// Welcome view actions.
const (
	ActionClaimOffer   = "claim_offer"
	ActionBookNow      = "book_now"
	ActionViewServices = "view_services"
)

// DefaultOffer is prefilled by claim_offer when the spa has no offer text.
const DefaultOffer = "20% Off Special Offer"

// ErrUnknownAction is returned for an action the current view does not offer.
var ErrUnknownAction = errors.New("unknown action")

// Options tune the machine's UX pacing.
type Options struct {
	// TypingDelay is how long the typing indicator holds before a view
	// change lands.
	TypingDelay time.Duration
	// SuccessReset is how long the success view shows before returning to
	// welcome.
	SuccessReset time.Duration
}

// DefaultOptions match the production widget pacing.
func DefaultOptions() Options {
	return Options{
		TypingDelay:  700 * time.Millisecond,
		SuccessReset: 5 * time.Second,
	}
}

// Conversation drives one widget session through the fixed booking flow.
// All transitions are sequential; timers are guarded by an epoch counter so
// closing the widget renders any pending timer's effect moot.
type Conversation struct {
	mu sync.Mutex

	cfg    *spas.Spa
	sender LeadSender
	opts   Options
	logger *logging.Logger

	open     bool
	view     View
	typing   bool
	selected []spas.Service
	draft    BookingDraft
	status   SubmitStatus
	inFlight bool

	// epoch invalidates scheduled timers: a timer only applies its effect
	// if the epoch it captured is still current.
	epoch uint64
}

// NewConversation creates a machine for one session.
func NewConversation(cfg *spas.Spa, sender LeadSender, opts Options, logger *logging.Logger) *Conversation {
	if opts.TypingDelay <= 0 {
		opts.TypingDelay = DefaultOptions().TypingDelay
	}
	if opts.SuccessReset <= 0 {
		opts.SuccessReset = DefaultOptions().SuccessReset
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Conversation{
		cfg:    cfg,
		sender: sender,
		opts:   opts,
		logger: logger,
		view:   ViewWelcome,
		status: SubmitNone,
	}
}

// Open marks the widget visible. State is already initial on first open;
// reopening after a close starts from a clean welcome view.
func (c *Conversation) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
}

// Close hides the widget and clears all transient state. Pending typing and
// reset timers are invalidated by the epoch bump.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.resetLocked()
}

func (c *Conversation) resetLocked() {
	c.epoch++
	c.view = ViewWelcome
	c.typing = false
	c.selected = nil
	c.draft = BookingDraft{}
	c.status = SubmitNone
}

// scheduleLocked runs fn after delay unless the epoch moves on first. The
// caller must hold the lock.
func (c *Conversation) scheduleLocked(delay time.Duration, fn func()) {
	epoch := c.epoch
	time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			return
		}
		fn()
	})
}

// transitionLocked shows the typing indicator, waits the pacing delay, then
// lands the view change.
func (c *Conversation) transitionLocked(to View, effect func()) {
	c.typing = true
	c.scheduleLocked(c.opts.TypingDelay, func() {
		c.typing = false
		c.view = to
		if effect != nil {
			effect()
		}
	})
}

// Action handles a welcome view button tap.
func (c *Conversation) Action(action string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != ViewWelcome {
		return ErrUnknownAction
	}

	switch action {
	case ActionClaimOffer:
		offer := c.cfg.Offer
		if strings.TrimSpace(offer) == "" {
			offer = DefaultOffer
		}
		c.transitionLocked(ViewBooking, func() {
			c.draft.Services = offer
		})
	case ActionBookNow:
		c.transitionLocked(ViewBooking, nil)
	case ActionViewServices:
		c.transitionLocked(ViewServices, nil)
	default:
		return ErrUnknownAction
	}
	return nil
}

// ToggleService adds or removes a service from the selection, keyed by id.
// Selection order is preserved for display.
func (c *Conversation) ToggleService(serviceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != ViewServices {
		return ErrUnknownAction
	}

	for i, svc := range c.selected {
		if svc.ID == serviceID {
			c.selected = append(c.selected[:i], c.selected[i+1:]...)
			return nil
		}
	}
	for _, svc := range c.cfg.Services {
		if svc.ID == serviceID {
			c.selected = append(c.selected, svc)
			return nil
		}
	}
	return ErrUnknownAction
}

// ConfirmSelection moves from the services list to the booking form,
// prefilling the draft services field with the joined selection titles.
func (c *Conversation) ConfirmSelection() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != ViewServices {
		return ErrUnknownAction
	}

	if len(c.selected) > 0 {
		titles := make([]string, len(c.selected))
		for i, svc := range c.selected {
			titles[i] = svc.Title
		}
		c.draft.Services = strings.Join(titles, ", ")
	}
	c.transitionLocked(ViewBooking, nil)
	return nil
}

// Back returns to the welcome view from services or booking, clearing any
// submit status.
func (c *Conversation) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.view != ViewServices && c.view != ViewBooking {
		return ErrUnknownAction
	}
	c.status = SubmitNone
	c.transitionLocked(ViewWelcome, nil)
	return nil
}

// UpdateDraft replaces the booking form scratch fields.
func (c *Conversation) UpdateDraft(draft BookingDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = draft
}

// Submit validates the draft and delivers the lead. The in-flight flag makes
// a second submit during an outstanding one a no-op. The lock is not held
// across the network call.
func (c *Conversation) Submit(ctx context.Context) error {
	c.mu.Lock()

	if c.view != ViewBooking {
		c.mu.Unlock()
		return ErrUnknownAction
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}

	req, err := BuildLeadRequest(c.cfg.SpaID, c.draft, c.selected)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			c.status = SubmitMissingFields
		case errors.Is(err, ErrInvalidPhone):
			c.status = SubmitInvalidPhone
		default:
			c.status = SubmitFailed
		}
		c.mu.Unlock()
		return err
	}

	c.inFlight = true
	epoch := c.epoch
	c.mu.Unlock()

	sendErr := c.sender.SendLead(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	// The widget was closed or reset while the request was outstanding;
	// the response no longer has state to land on.
	if c.epoch != epoch {
		return sendErr
	}

	if sendErr != nil {
		c.logger.Warn("widget lead submit failed", "error", sendErr, "spa_id", c.cfg.SpaID)
		c.status = SubmitFailed
		return ErrSubmitFailed
	}

	c.status = SubmitSuccess
	c.view = ViewSuccess
	c.draft = BookingDraft{}
	c.selected = nil
	c.scheduleLocked(c.opts.SuccessReset, func() {
		c.view = ViewWelcome
		c.status = SubmitNone
	})
	return nil
}

// Snapshot is the machine state rendered to the client.
type Snapshot struct {
	SpaID      string         `json:"spaId"`
	SpaName    string         `json:"spaName"`
	BotName    string         `json:"botName"`
	Open       bool           `json:"open"`
	View       View           `json:"view"`
	Typing     bool           `json:"typing"`
	Offer      string         `json:"offer,omitempty"`
	Colors     spas.Colors    `json:"colors"`
	Services   []spas.Service `json:"services"`
	Selected   []string       `json:"selected"`
	Draft      BookingDraft   `json:"draft"`
	Status     SubmitStatus   `json:"status"`
	Quote      *Quote         `json:"quote,omitempty"`
	AvatarURL  string         `json:"avatarUrl"`
	InFlight   bool           `json:"inFlight"`
}

// Snapshot returns a copy of the current state.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	selected := make([]string, len(c.selected))
	for i, svc := range c.selected {
		selected[i] = svc.ID
	}

	return Snapshot{
		SpaID:     c.cfg.SpaID,
		SpaName:   c.cfg.SpaName,
		BotName:   c.cfg.BotName,
		Open:      c.open,
		View:      c.view,
		Typing:    c.typing,
		Offer:     c.cfg.Offer,
		Colors:    c.cfg.Colors,
		Services:  c.cfg.Services,
		Selected:  selected,
		Draft:     c.draft,
		Status:    c.status,
		Quote:     TotalQuote(c.selected),
		AvatarURL: SafeAvatarSource(c.cfg.BotImage),
		InFlight:  c.inFlight,
	}
}
