// Package showcase fetches the optional third-party profile sections
// (GitHub, Product Hunt, Dev.to, Medium). Each platform is an isolated
// failure domain: a slow or broken upstream degrades its own section only.
package showcase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"portify/internal/config"
)

// Service holds the shared HTTP client, Redis cache and platform tokens.
type Service struct {
	httpClient *http.Client
	redis      redis.UniversalClient
	cacheTTL   time.Duration
	logger     *slog.Logger

	githubToken      string
	productHuntToken string

	// Endpoints are fields so tests can point them at a local httptest server.
	githubURL      string
	productHuntURL string
	devtoURL       string
	mediumURL      string
}

// NewService wires the showcase fetchers. redisClient may be nil, which
// disables caching (used by tests).
func NewService(cfg config.ShowcaseConfig, redisClient redis.UniversalClient, logger *slog.Logger) *Service {
	return &Service{
		httpClient:       &http.Client{Timeout: 10 * time.Second},
		redis:            redisClient,
		cacheTTL:         cfg.CacheTTL(),
		logger:           logger,
		githubToken:      cfg.GithubToken,
		productHuntToken: cfg.ProductHuntToken,
		githubURL:        "https://api.github.com/graphql",
		productHuntURL:   "https://api.producthunt.com/v2/api/graphql",
		devtoURL:         "https://dev.to/api",
		mediumURL:        "https://medium.com/feed/@",
	}
}

// cached runs fetch through the Redis cache. Cache failures are logged and
// tolerated; the upstream result wins either way.
func cached[T any](ctx context.Context, s *Service, key string, fetch func() (T, error)) (T, error) {
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var hit T
			if err := json.Unmarshal(raw, &hit); err == nil {
				return hit, nil
			}
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("showcase cache read failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	value, err := fetch()
	if err != nil {
		return value, err
	}

	if s.redis != nil {
		if raw, err := json.Marshal(value); err == nil {
			if err := s.redis.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("showcase cache write failed", slog.String("key", key), slog.Any("error", err))
			}
		}
	}
	return value, nil
}
