package services

import (
	"sort"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/utils"
)

// PerfectMatchThreshold is the lowest percentage that counts as perfect.
const PerfectMatchThreshold = 60

// Buckets partition a feed. Every candidate is in exactly one bucket.
type Buckets struct {
	Perfect  []Candidate `json:"perfectMatches"`
	Religion []Candidate `json:"sameReligion"`
	Location []Candidate `json:"sameLocation"`
	Fallback []Candidate `json:"otherMatches"`
}

// Len is the number of candidates across all buckets.
func (b Buckets) Len() int {
	return len(b.Perfect) + len(b.Religion) + len(b.Location) + len(b.Fallback)
}

// Ordered lists the buckets in priority order.
func (b *Buckets) Ordered() []*[]Candidate {
	return []*[]Candidate{&b.Perfect, &b.Religion, &b.Location, &b.Fallback}
}

// Categorize places each candidate in the first bucket it qualifies for:
// perfect, then same religion, then same city or state, then fallback.
// Buckets come back sorted by percentage, highest first, ties in input order.
func Categorize(requester *models.ProfileDetail, candidates []Candidate) Buckets {
	var b Buckets

	for _, c := range candidates {
		switch {
		case c.MatchPercentage >= PerfectMatchThreshold:
			b.Perfect = append(b.Perfect, c)
		case utils.SameField(requester.Religion, c.Profile.Religion):
			b.Religion = append(b.Religion, c)
		case utils.SameField(requester.City, c.Profile.City) || utils.SameField(requester.State, c.Profile.State):
			b.Location = append(b.Location, c)
		default:
			b.Fallback = append(b.Fallback, c)
		}
	}

	for _, bucket := range b.Ordered() {
		list := *bucket
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].MatchPercentage > list[j].MatchPercentage
		})
	}
	return b
}
