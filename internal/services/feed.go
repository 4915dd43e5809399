package services

import (
	"context"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// FeedPage is one page of a categorized feed. Total counts every candidate,
// not just the ones on this page.
type FeedPage struct {
	Buckets
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Paging bounds the page sizes a caller may ask for.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// Normalize clamps page and limit into range.
func (p Paging) Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = p.DefaultLimit
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return page, limit
}

// FeedService runs the discovery pipeline: exclusion set, candidate filter,
// scoring, categorization.
type FeedService struct {
	profiles   ProfileStore
	exclusions *ExclusionBuilder
	filter     *CandidateFilter
	scorer     *Scorer
	paging     Paging
}

func NewFeedService(profiles ProfileStore, exclusions *ExclusionBuilder, filter *CandidateFilter, scorer *Scorer, paging Paging) *FeedService {
	return &FeedService{
		profiles:   profiles,
		exclusions: exclusions,
		filter:     filter,
		scorer:     scorer,
		paging:     paging,
	}
}

// GetFeed returns page of userID's categorized feed. Buckets are laid end to
// end in priority order before the page window is cut.
func (s *FeedService) GetFeed(ctx context.Context, userID uint, page, limit int) (*FeedPage, error) {
	page, limit = s.paging.Normalize(page, limit)

	requester, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		excluded ExclusionSet
		pref     *models.PartnerPreference
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		excluded, err = s.exclusions.Build(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		pref, err = s.profiles.GetPreference(gctx, requester.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates, err := s.filter.Filter(ctx, requester, excluded)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidates[i].MatchPercentage = s.scorer.Percentage(pref, candidates[i].Profile)
	}

	buckets := Categorize(requester, candidates)
	total := buckets.Len()

	logger.Debug("Feed generated", "user", userID, "excluded", excluded.Len(), "candidates", total,
		"perfect", len(buckets.Perfect), "religion", len(buckets.Religion),
		"location", len(buckets.Location), "fallback", len(buckets.Fallback))

	return &FeedPage{
		Buckets:    pageBuckets(buckets, (page-1)*limit, limit),
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// pageBuckets keeps the [offset, offset+limit) window of the buckets laid
// end to end, preserving which bucket each kept candidate came from.
func pageBuckets(b Buckets, offset, limit int) Buckets {
	var out Buckets
	src := b.Ordered()
	dst := out.Ordered()

	pos := 0
	end := offset + limit
	for i, bucket := range src {
		for _, c := range *bucket {
			if pos >= offset && pos < end {
				*dst[i] = append(*dst[i], c)
			}
			pos++
		}
	}
	return out
}
