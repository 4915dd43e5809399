package services

import (
	"context"
	"time"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/utils"
	"golang.org/x/sync/errgroup"
)

// ProfileStore is the read side of member profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uint) (*models.ProfileDetail, error)
	GetPreference(ctx context.Context, profileID uint) (*models.PartnerPreference, error)
	ListVisibleOppositeGender(ctx context.Context, gender string, excludeIDs []uint) ([]models.ProfileDetail, error)
	GetPreferencesFor(ctx context.Context, profileIDs []uint) (map[uint]*models.PartnerPreference, error)
	GetGalleryProfilePhotos(ctx context.Context, profileIDs []uint) (map[uint]string, error)
}

// InterestLookup finds active interests between one user and many others.
type InterestLookup interface {
	FindInterestsWith(ctx context.Context, userID uint, others []uint) ([]models.RelationshipRequest, error)
}

// ProfileSummary is the public view of another member.
type ProfileSummary struct {
	UserID        uint   `json:"userId"`
	FullName      string `json:"fullName"`
	Gender        string `json:"gender"`
	Age           *int   `json:"age"`
	Height        int    `json:"height,omitempty"`
	Religion      string `json:"religion"`
	Community     string `json:"community"`
	MotherTongue  string `json:"motherTongue"`
	City          string `json:"city"`
	State         string `json:"state"`
	MaritalStatus string `json:"maritalStatus,omitempty"`
}

// Summarize builds the public view of p at now.
func Summarize(p *models.ProfileDetail, now time.Time) ProfileSummary {
	s := ProfileSummary{
		UserID:        p.UserID,
		FullName:      p.User.FullName,
		Gender:        p.User.Gender,
		Height:        p.Height,
		Religion:      p.Religion,
		Community:     p.Community,
		MotherTongue:  p.MotherTongue,
		City:          p.City,
		State:         p.State,
		MaritalStatus: p.MaritalStatus,
	}
	if age, ok := p.AgeAt(now); ok {
		s.Age = &age
	}
	return s
}

// Candidate is a profile that survived filtering, with annotations.
type Candidate struct {
	ProfileSummary
	Profile             *models.ProfileDetail `json:"-"`
	Photo               *string               `json:"profilePhoto"`
	HasSentInterest     bool                  `json:"hasSentInterest"`
	HasReceivedInterest bool                  `json:"hasReceivedInterest"`
	IsBlocked           bool                  `json:"isBlocked"`
	MatchPercentage     int                   `json:"matchPercentage"`
}

// CandidateFilter builds the pool of profiles a requester may be shown.
type CandidateFilter struct {
	profiles  ProfileStore
	interests InterestLookup
	now       func() time.Time
}

func NewCandidateFilter(profiles ProfileStore, interests InterestLookup) *CandidateFilter {
	return &CandidateFilter{profiles: profiles, interests: interests, now: time.Now}
}

// Filter returns visible opposite-gender profiles outside excluded whose
// owners' own preferences on religion, mother tongue and city accept the
// requester.
func (f *CandidateFilter) Filter(ctx context.Context, requester *models.ProfileDetail, excluded ExclusionSet) ([]Candidate, error) {
	gender := models.OppositeGender(requester.User.Gender)
	profiles, err := f.profiles.ListVisibleOppositeGender(ctx, gender, excluded.IDs())
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	profileIDs := make([]uint, 0, len(profiles))
	userIDs := make([]uint, 0, len(profiles))
	for i := range profiles {
		profileIDs = append(profileIDs, profiles[i].ID)
		userIDs = append(userIDs, profiles[i].UserID)
	}

	var (
		prefs     map[uint]*models.PartnerPreference
		photos    map[uint]string
		interests []models.RelationshipRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		prefs, err = f.profiles.GetPreferencesFor(gctx, profileIDs)
		return err
	})
	g.Go(func() error {
		var err error
		photos, err = f.profiles.GetGalleryProfilePhotos(gctx, profileIDs)
		return err
	})
	g.Go(func() error {
		var err error
		interests, err = f.interests.FindInterestsWith(gctx, requester.UserID, userIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sent := make(map[uint]bool)
	received := make(map[uint]bool)
	for _, r := range interests {
		if r.SenderID == requester.UserID {
			sent[r.ReceiverID] = true
		} else {
			received[r.SenderID] = true
		}
	}

	now := f.now()
	out := make([]Candidate, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if excluded.Contains(p.UserID) {
			continue
		}
		if !acceptsRequester(prefs[p.ID], requester) {
			continue
		}

		out = append(out, Candidate{
			ProfileSummary:      Summarize(p, now),
			Profile:             p,
			Photo:               resolvePhoto(p, photos),
			HasSentInterest:     sent[p.UserID],
			HasReceivedInterest: received[p.UserID],
			IsBlocked:           false,
		})
	}
	return out, nil
}

// acceptsRequester applies the candidate's own preference to the requester.
// A candidate without a preference accepts everyone.
func acceptsRequester(pref *models.PartnerPreference, requester *models.ProfileDetail) bool {
	if pref == nil {
		return true
	}
	if stated(pref.Religion) && !utils.SameField(pref.Religion, requester.Religion) {
		return false
	}
	if stated(pref.MotherTongue) && !utils.SameField(pref.MotherTongue, requester.MotherTongue) {
		return false
	}
	if stated(pref.City) && !utils.SameField(pref.City, requester.City) {
		return false
	}
	return true
}

// resolvePhoto prefers the profile's own photo, then the first gallery
// image flagged as profile photo.
func resolvePhoto(p *models.ProfileDetail, gallery map[uint]string) *string {
	if p.ProfilePhoto != "" {
		photo := p.ProfilePhoto
		return &photo
	}
	if url, ok := gallery[p.ID]; ok {
		return &url
	}
	return nil
}
