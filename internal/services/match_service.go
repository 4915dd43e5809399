package services

import (
	"context"
	"strings"
	"time"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/internal/repositories"
	"github.com/787516/Matrimonial/internal/security"
	"github.com/787516/Matrimonial/pkg/errors"
	"github.com/787516/Matrimonial/pkg/logger"
)

// Request list directions.
const (
	DirectionSent     = "sent"
	DirectionReceived = "received"
)

// ProfileDirectory is everything the match service reads about profiles.
type ProfileDirectory interface {
	ProfileStore
	GetProfilesByUserIDs(ctx context.Context, userIDs []uint) (map[uint]*models.ProfileDetail, error)
	Search(ctx context.Context, filter repositories.SearchFilter, excludeIDs []uint, offset, limit int) ([]models.ProfileDetail, int64, error)
}

// RequestReader backs the dashboard views of the ledger.
type RequestReader interface {
	CountByStatusFor(ctx context.Context, userID uint) (*repositories.DashboardCounts, error)
	ListFor(ctx context.Context, userID uint, filter repositories.ListFilter) ([]models.RelationshipRequest, error)
}

// RequestView is a relationship request seen from one side, with the other
// party's public profile.
type RequestView struct {
	ID        uint           `json:"id"`
	Type      string         `json:"type"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	Other     ProfileSummary `json:"otherUser"`
	Photo     *string        `json:"profilePhoto"`
}

// ProfileView is a full profile opened by another member.
type ProfileView struct {
	ProfileSummary
	Photo           *string `json:"profilePhoto"`
	MatchPercentage int     `json:"matchPercentage"`
	Charged         bool    `json:"charged"`
}

// SearchPage is one page of search results.
type SearchPage struct {
	Results    []Candidate `json:"results"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int64       `json:"totalPages"`
}

// MatchService is the entry point for every matchmaking operation. Callers
// are already authenticated.
type MatchService struct {
	ledger     *Ledger
	feed       *FeedService
	guard      *ChatGuard
	exclusions *ExclusionBuilder
	scorer     *Scorer
	profiles   ProfileDirectory
	requests   RequestReader
	users      UserDirectory
	notifier   Notifier
	paging     Paging
}

type MatchServiceDeps struct {
	Ledger     *Ledger
	Feed       *FeedService
	Guard      *ChatGuard
	Exclusions *ExclusionBuilder
	Scorer     *Scorer
	Profiles   ProfileDirectory
	Requests   RequestReader
	Users      UserDirectory
	Notifier   Notifier
	Paging     Paging
}

func NewMatchService(deps MatchServiceDeps) *MatchService {
	return &MatchService{
		ledger:     deps.Ledger,
		feed:       deps.Feed,
		guard:      deps.Guard,
		exclusions: deps.Exclusions,
		scorer:     deps.Scorer,
		profiles:   deps.Profiles,
		requests:   deps.Requests,
		users:      deps.Users,
		notifier:   deps.Notifier,
		paging:     deps.Paging,
	}
}

func (s *MatchService) SendInterest(ctx context.Context, callerID, receiverID uint) (*models.RelationshipRequest, error) {
	return s.ledger.CreateInterest(ctx, callerID, receiverID)
}

func (s *MatchService) SendChatRequest(ctx context.Context, callerID, receiverID uint) (*models.RelationshipRequest, error) {
	return s.ledger.CreateChatRequest(ctx, callerID, receiverID)
}

// RespondToRequest accepts, rejects or blocks a request. Cancelling goes
// through CancelRequest.
func (s *MatchService) RespondToRequest(ctx context.Context, callerID, requestID uint, action string) (*models.RelationshipRequest, error) {
	status, err := ParseAction(action)
	if err != nil {
		return nil, err
	}
	if status == models.RequestStatusCancelled {
		return nil, errors.New(errors.ErrCodeValidation, "use cancel to withdraw a request")
	}
	return s.ledger.Transition(ctx, requestID, callerID, status)
}

func (s *MatchService) CancelRequest(ctx context.Context, callerID, requestID uint) (*models.RelationshipRequest, error) {
	return s.ledger.Transition(ctx, requestID, callerID, models.RequestStatusCancelled)
}

func (s *MatchService) BlockUser(ctx context.Context, callerID, targetID uint) (*models.RelationshipRequest, error) {
	return s.ledger.BlockUser(ctx, callerID, targetID)
}

func (s *MatchService) UnblockUser(ctx context.Context, callerID, targetID uint) error {
	return s.ledger.UnblockUser(ctx, callerID, targetID)
}

func (s *MatchService) GetFeed(ctx context.Context, callerID uint, page, limit int) (*FeedPage, error) {
	return s.feed.GetFeed(ctx, callerID, page, limit)
}

// GetPendingRequests lists interest and chat requests awaiting the caller's
// answer, newest first.
func (s *MatchService) GetPendingRequests(ctx context.Context, callerID uint) ([]RequestView, error) {
	reqs, err := s.requests.ListFor(ctx, callerID, repositories.ListFilter{
		Received: true,
		Status:   models.RequestStatusPending,
	})
	if err != nil {
		return nil, err
	}
	return s.viewRequests(ctx, callerID, reqs)
}

func (s *MatchService) GetDashboardCounts(ctx context.Context, callerID uint) (*repositories.DashboardCounts, error) {
	return s.requests.CountByStatusFor(ctx, callerID)
}

// ListRequests lists the caller's sent or received requests in one status.
func (s *MatchService) ListRequests(ctx context.Context, callerID uint, direction, status string, onlyChat bool) ([]RequestView, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != DirectionSent && direction != DirectionReceived {
		return nil, errors.New(errors.ErrCodeValidation, "direction must be sent or received")
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !validStatus(status) {
		return nil, errors.New(errors.ErrCodeValidation, "invalid status")
	}

	filter := repositories.ListFilter{Received: direction == DirectionReceived, Status: status}
	if onlyChat {
		filter.Type = models.RequestTypeChat
	}

	reqs, err := s.requests.ListFor(ctx, callerID, filter)
	if err != nil {
		return nil, err
	}
	return s.viewRequests(ctx, callerID, reqs)
}

func validStatus(status string) bool {
	switch status {
	case models.RequestStatusPending, models.RequestStatusAccepted, models.RequestStatusRejected,
		models.RequestStatusBlocked, models.RequestStatusCancelled:
		return true
	}
	return false
}

func (s *MatchService) viewRequests(ctx context.Context, callerID uint, reqs []models.RelationshipRequest) ([]RequestView, error) {
	out := make([]RequestView, 0, len(reqs))
	if len(reqs) == 0 {
		return out, nil
	}

	others := make([]uint, 0, len(reqs))
	for i := range reqs {
		others = append(others, reqs[i].OtherParty(callerID))
	}

	profiles, err := s.profiles.GetProfilesByUserIDs(ctx, others)
	if err != nil {
		return nil, err
	}
	profileIDs := make([]uint, 0, len(profiles))
	for _, p := range profiles {
		profileIDs = append(profileIDs, p.ID)
	}
	photos, err := s.profiles.GetGalleryProfilePhotos(ctx, profileIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range reqs {
		otherID := reqs[i].OtherParty(callerID)
		view := RequestView{
			ID:        reqs[i].ID,
			Type:      reqs[i].Type,
			Status:    reqs[i].Status,
			CreatedAt: reqs[i].CreatedAt,
		}
		if p, ok := profiles[otherID]; ok {
			view.Other = Summarize(p, now)
			view.Photo = resolvePhoto(p, photos)
		} else {
			view.Other = ProfileSummary{UserID: otherID}
			if u, err := s.users.GetUserByID(ctx, otherID); err == nil {
				view.Other.FullName = u.FullName
				view.Other.Gender = u.Gender
			}
		}
		out = append(out, view)
	}
	return out, nil
}

// CheckChatAccess returns nil when the caller may chat with otherID.
func (s *MatchService) CheckChatAccess(ctx context.Context, callerID, otherID uint) error {
	return s.guard.CheckChatAccess(ctx, callerID, otherID)
}

// ViewProfile opens targetID's profile for callerID, charging the view to
// the caller's plan and telling the owner on the first view in a period.
func (s *MatchService) ViewProfile(ctx context.Context, callerID, targetID uint) (*ProfileView, error) {
	self := callerID == targetID
	if !self {
		blocked, err := s.ledger.IsBlockedBetween(ctx, callerID, targetID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, errors.New(errors.ErrCodeBlocked, "you are not allowed to view this profile")
		}
	}

	profile, err := s.profiles.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !self && !profile.IsProfileVisible {
		return nil, errors.New(errors.ErrCodeNotFound, "profile not found")
	}

	charged, err := s.guard.ChargeProfileView(ctx, callerID, targetID)
	if err != nil {
		return nil, err
	}

	photos, err := s.profiles.GetGalleryProfilePhotos(ctx, []uint{profile.ID})
	if err != nil {
		return nil, err
	}

	view := &ProfileView{
		ProfileSummary: Summarize(profile, time.Now()),
		Photo:          resolvePhoto(profile, photos),
		Charged:        charged,
	}
	if !self {
		view.MatchPercentage = s.percentageFor(ctx, callerID, profile)
	}

	if charged {
		name := "Someone"
		if viewer, err := s.users.GetUserByID(ctx, callerID); err == nil {
			name = viewer.FullName
		}
		s.notifier.Notify(ctx, targetID, callerID, models.ActivityProfileViewed, name+" viewed your profile", profile.ID)
	}
	return view, nil
}

// percentageFor scores target against callerID's preference. Callers
// without a profile or preference score 0.
func (s *MatchService) percentageFor(ctx context.Context, callerID uint, target *models.ProfileDetail) int {
	own, err := s.profiles.GetProfile(ctx, callerID)
	if err != nil {
		return 0
	}
	pref, err := s.profiles.GetPreference(ctx, own.ID)
	if err != nil {
		logger.Warn("Failed to load preference for scoring", "user", callerID, "error", err)
		return 0
	}
	return s.scorer.Percentage(pref, target)
}

// SearchFilter holds free-text search terms. Each is matched as a
// case-insensitive substring.
type SearchFilter struct {
	Religion     string
	Caste        string
	MotherTongue string
	City         string
}

// SearchProfiles finds visible profiles matching filter, leaving out the
// caller and everyone in their exclusion set.
func (s *MatchService) SearchProfiles(ctx context.Context, callerID uint, filter SearchFilter, page, limit int) (*SearchPage, error) {
	page, limit = s.paging.Normalize(page, limit)

	excluded, err := s.exclusions.Build(ctx, callerID)
	if err != nil {
		return nil, err
	}

	clean := repositories.SearchFilter{
		Religion:     security.SanitizeText(filter.Religion),
		Caste:        security.SanitizeText(filter.Caste),
		MotherTongue: security.SanitizeText(filter.MotherTongue),
		City:         security.SanitizeText(filter.City),
	}
	profiles, total, err := s.profiles.Search(ctx, clean, excluded.IDs(), (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	profileIDs := make([]uint, 0, len(profiles))
	for i := range profiles {
		profileIDs = append(profileIDs, profiles[i].ID)
	}
	photos, err := s.profiles.GetGalleryProfilePhotos(ctx, profileIDs)
	if err != nil {
		return nil, err
	}

	var pref *models.PartnerPreference
	if own, err := s.profiles.GetProfile(ctx, callerID); err == nil {
		if pref, err = s.profiles.GetPreference(ctx, own.ID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	results := make([]Candidate, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		results = append(results, Candidate{
			ProfileSummary:  Summarize(p, now),
			Profile:         p,
			Photo:           resolvePhoto(p, photos),
			MatchPercentage: s.scorer.Percentage(pref, p),
		})
	}

	return &SearchPage{
		Results:    results,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}
