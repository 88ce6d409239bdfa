package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/glowbot/spa-widget-platform/internal/spas"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// BotNamePool is the set of names the widget falls back to when a spa has no
// bot name configured. The pick is pseudo-random per session.
var BotNamePool = []string{"Priya", "Ananya", "Kavya", "Sneha", "Meera", "Riya", "Aisha", "Neha", "Divya", "Shreya"}

// ConfigFetcher loads a tenant config by spa id. The in-process
// implementation reads the spas repository directly; RemoteResolver goes over
// HTTP for a widget app served from a different origin than the API.
type ConfigFetcher interface {
	FetchConfig(ctx context.Context, spaID string) (*spas.Spa, error)
}

// Resolver turns a raw tenant id into a render-ready config: exactly one
// fetch, no retries, no caching. Every widget load resolves fresh. Safe for
// concurrent use; one resolver serves all sessions.
type Resolver struct {
	fetcher ConfigFetcher
	logger  *logging.Logger
}

// NewResolver creates a resolver over the given fetcher.
func NewResolver(fetcher ConfigFetcher, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Resolve fetches and normalizes the tenant config. A blank id fails before
// any fetch is attempted.
func (r *Resolver) Resolve(ctx context.Context, spaID string) (*spas.Spa, error) {
	spaID = strings.TrimSpace(spaID)
	if spaID == "" {
		return nil, ErrMissingTenantID
	}

	cfg, err := r.fetcher.FetchConfig(ctx, spaID)
	if err != nil {
		r.logger.Warn("widget config resolution failed", "error", err, "spa_id", spaID)
		return nil, fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}
	if !cfg.IsActive {
		return nil, fmt.Errorf("%w: %w", ErrConfigUnavailable, spas.ErrSpaInactive)
	}

	cfg.Normalize()
	if strings.TrimSpace(cfg.BotName) == "" {
		// rand.IntN is safe under concurrent Resolve calls.
		cfg.BotName = BotNamePool[rand.IntN(len(BotNamePool))]
	}
	return cfg, nil
}

// RepositoryFetcher resolves configs straight from the spas repository.
type RepositoryFetcher struct {
	repo spas.Repository
}

// NewRepositoryFetcher wraps a spas repository as a ConfigFetcher.
func NewRepositoryFetcher(repo spas.Repository) *RepositoryFetcher {
	return &RepositoryFetcher{repo: repo}
}

// FetchConfig loads the spa from storage.
func (f *RepositoryFetcher) FetchConfig(ctx context.Context, spaID string) (*spas.Spa, error) {
	return f.repo.GetBySpaID(ctx, spaID)
}

// RemoteResolver fetches configs over HTTP from the public config endpoint.
type RemoteResolver struct {
	baseURL string
	client  *http.Client
}

// NewRemoteResolver creates an HTTP config fetcher against baseURL.
func NewRemoteResolver(baseURL string, client *http.Client) *RemoteResolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteResolver{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// FetchConfig issues GET {base}/api/spas/config/{spaID}. Any non-200 response
// is a fetch failure; the caller maps it to the unavailable state.
func (f *RemoteResolver) FetchConfig(ctx context.Context, spaID string) (*spas.Spa, error) {
	url := fmt.Sprintf("%s/api/spas/config/%s", f.baseURL, spaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("widget: build config request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("widget: config fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("widget: config fetch returned status %d", resp.StatusCode)
	}

	var cfg spas.Spa
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("widget: decode config: %w", err)
	}
	return &cfg, nil
}
