package services

import (
	"testing"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/stretchr/testify/assert"
)

func candidate(userID uint, percentage int, religion, city, state string) Candidate {
	return Candidate{
		ProfileSummary:  ProfileSummary{UserID: userID},
		Profile:         &models.ProfileDetail{UserID: userID, Religion: religion, City: city, State: state},
		MatchPercentage: percentage,
	}
}

func userIDs(list []Candidate) []uint {
	out := make([]uint, 0, len(list))
	for _, c := range list {
		out = append(out, c.UserID)
	}
	return out
}

func TestCategorize(t *testing.T) {
	requester := &models.ProfileDetail{Religion: "Hindu", City: "Pune", State: "Maharashtra"}

	candidates := []Candidate{
		candidate(1, 60, "Muslim", "Delhi", "Delhi"),             // perfect beats everything
		candidate(2, 59, "hindu", "Pune", "Maharashtra"),         // religion before location
		candidate(3, 10, "Jain", " pune ", ""),                   // same city
		candidate(4, 20, "Jain", "Nagpur", "MAHARASHTRA"),        // same state
		candidate(5, 30, "Sikh", "Amritsar", "Punjab"),           // nothing in common
		candidate(6, 95, "", "", ""),                             // perfect
		candidate(7, 0, "", "", ""),                              // empty fields never match
		candidate(8, 40, "Hindu", "Chennai", "Tamil Nadu"),       // religion
		candidate(9, 20, "Christian", "Mumbai", " Maharashtra "), // same state, ties keep input order
	}

	b := Categorize(requester, candidates)

	assert.Equal(t, []uint{6, 1}, userIDs(b.Perfect))
	assert.Equal(t, []uint{2, 8}, userIDs(b.Religion))
	assert.Equal(t, []uint{4, 9, 3}, userIDs(b.Location))
	assert.Equal(t, []uint{5, 7}, userIDs(b.Fallback))
	assert.Equal(t, len(candidates), b.Len())
}

func TestCategorize_EveryCandidateInExactlyOneBucket(t *testing.T) {
	requester := &models.ProfileDetail{Religion: "Hindu", City: "Pune", State: "Maharashtra"}
	religions := []string{"Hindu", "Muslim", ""}
	cities := []string{"Pune", "Delhi", ""}

	var candidates []Candidate
	id := uint(1)
	for _, pct := range []int{0, 59, 60, 100} {
		for _, r := range religions {
			for _, c := range cities {
				candidates = append(candidates, candidate(id, pct, r, c, ""))
				id++
			}
		}
	}

	b := Categorize(requester, candidates)
	seen := make(map[uint]int)
	for _, bucket := range b.Ordered() {
		for i, c := range *bucket {
			seen[c.UserID]++
			if i > 0 {
				assert.GreaterOrEqual(t, (*bucket)[i-1].MatchPercentage, c.MatchPercentage)
			}
		}
	}

	assert.Len(t, seen, len(candidates))
	for userID, n := range seen {
		assert.Equal(t, 1, n, "user %d", userID)
	}
	for _, c := range b.Perfect {
		assert.GreaterOrEqual(t, c.MatchPercentage, PerfectMatchThreshold)
	}
}

func TestCategorize_Empty(t *testing.T) {
	b := Categorize(&models.ProfileDetail{}, nil)
	assert.Zero(t, b.Len())
}

func TestPageBuckets(t *testing.T) {
	b := Buckets{
		Perfect:  []Candidate{candidate(1, 90, "", "", ""), candidate(2, 80, "", "", "")},
		Religion: []Candidate{candidate(3, 40, "", "", "")},
		Location: nil,
		Fallback: []Candidate{candidate(4, 10, "", "", ""), candidate(5, 0, "", "", "")},
	}

	first := pageBuckets(b, 0, 3)
	assert.Equal(t, []uint{1, 2}, userIDs(first.Perfect))
	assert.Equal(t, []uint{3}, userIDs(first.Religion))
	assert.Empty(t, first.Fallback)

	second := pageBuckets(b, 3, 3)
	assert.Empty(t, second.Perfect)
	assert.Empty(t, second.Religion)
	assert.Equal(t, []uint{4, 5}, userIDs(second.Fallback))

	beyond := pageBuckets(b, 10, 3)
	assert.Zero(t, beyond.Len())
}

func TestPaging_Normalize(t *testing.T) {
	p := Paging{DefaultLimit: 20, MaxLimit: 100}

	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{1, 10, 1, 10},
		{0, 0, 1, 20},
		{-3, -1, 1, 20},
		{4, 500, 4, 100},
	}
	for _, tt := range tests {
		page, limit := p.Normalize(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}
