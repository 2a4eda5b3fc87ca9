package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

// Service fetches a list of communities one after another.
type Service struct {
	fetcher CommunityFetcher
	log     logger.Logger
}

// NewService wires a crawler over the given fetcher.
func NewService(fetcher CommunityFetcher, log logger.Logger) *Service {
	return &Service{fetcher: fetcher, log: logger.Ensure(log)}
}

// Run fetches every community in order and returns one section per name.
// A failed community yields an empty section carrying the error; only
// context cancellation stops the pass early.
func (s *Service) Run(ctx context.Context, names []string, window domain.Window) ([]domain.Section, error) {
	if s == nil || s.fetcher == nil {
		return nil, errors.New("crawler service is not initialized")
	}

	sections := make([]domain.Section, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sections, err
		}
		sections = append(sections, s.runCommunity(ctx, name, window))
	}
	return sections, nil
}

func (s *Service) runCommunity(ctx context.Context, name string, window domain.Window) domain.Section {
	start := time.Now()
	posts, err := s.fetcher.FetchCommunity(ctx, name, window)
	if err != nil {
		s.log.ErrorObj("community fetch failed", "community_error", map[string]any{
			"community": name,
			"window":    string(window),
			"error":     err.Error(),
		})
		return domain.Section{Community: name, Err: err}
	}

	s.log.InfoObj("community fetch completed", "community_result", map[string]any{
		"community":  name,
		"window":     string(window),
		"posts":      len(posts),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return domain.Section{Community: name, Posts: posts}
}
