package services

import (
	"math"
	"time"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/utils"
)

// Preference dimension weights. Not every dimension is stated at once, so
// the percentage is taken against the weights actually in play.
const (
	WeightAge          = 45
	WeightHeight       = 15
	WeightReligion     = 20
	WeightCaste        = 15
	WeightMotherTongue = 10
	WeightCity         = 10
	WeightState        = 5
)

// Scorer computes how well a candidate satisfies a requester's partner
// preference.
type Scorer struct {
	now func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// Percentage returns round(score/maxScore*100) over the dimensions pref
// states, or 0 when pref is nil or states none.
func (s *Scorer) Percentage(pref *models.PartnerPreference, candidate *models.ProfileDetail) int {
	if pref == nil {
		return 0
	}

	var score, maxScore int
	add := func(weight int, satisfied bool) {
		maxScore += weight
		if satisfied {
			score += weight
		}
	}

	if pref.HasAgeRange() {
		age, ok := candidate.AgeAt(s.now())
		add(WeightAge, ok && inRange(age, pref.AgeMin, pref.AgeMax))
	}
	if pref.HasHeightRange() {
		add(WeightHeight, candidate.Height > 0 && inRange(candidate.Height, pref.HeightMin, pref.HeightMax))
	}
	if stated(pref.Religion) {
		add(WeightReligion, utils.SameField(pref.Religion, candidate.Religion))
	}
	if stated(pref.Caste) {
		add(WeightCaste, utils.SameField(pref.Caste, candidate.Community))
	}
	if stated(pref.MotherTongue) {
		add(WeightMotherTongue, utils.SameField(pref.MotherTongue, candidate.MotherTongue))
	}
	if stated(pref.City) {
		add(WeightCity, utils.SameField(pref.City, candidate.City))
	}
	if stated(pref.State) {
		add(WeightState, utils.SameField(pref.State, candidate.State))
	}

	if maxScore == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}

func stated(value string) bool {
	return utils.NormalizeField(value) != ""
}

// inRange checks v against optional inclusive bounds.
func inRange(v int, lo, hi *int) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}
