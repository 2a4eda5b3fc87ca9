package crawler

import (
	"context"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
)

// CommunityFetcher returns the selected top posts of one community.
type CommunityFetcher interface {
	FetchCommunity(ctx context.Context, name string, window domain.Window) ([]domain.Post, error)
}
