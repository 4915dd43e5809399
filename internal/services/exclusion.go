package services

import (
	"context"
	"sort"

	"github.com/787516/Matrimonial/internal/models"
)

// ExclusionSet holds the users that must not appear as fresh candidates for
// one requester. It is built once per request and never mutated afterwards.
type ExclusionSet struct {
	ids map[uint]struct{}
}

func newExclusionSet(self uint, others []uint) ExclusionSet {
	ids := make(map[uint]struct{}, len(others)+1)
	ids[self] = struct{}{}
	for _, id := range others {
		ids[id] = struct{}{}
	}
	return ExclusionSet{ids: ids}
}

func (s ExclusionSet) Contains(userID uint) bool {
	_, ok := s.ids[userID]
	return ok
}

func (s ExclusionSet) Len() int {
	return len(s.ids)
}

// IDs returns the members in ascending order.
func (s ExclusionSet) IDs() []uint {
	out := make([]uint, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ExclusionBuilder derives exclusion sets from current ledger state.
type ExclusionBuilder struct {
	store RelationshipStore
}

func NewExclusionBuilder(store RelationshipStore) *ExclusionBuilder {
	return &ExclusionBuilder{store: store}
}

// Build returns the requester plus everyone they share a pending, accepted,
// rejected or blocked record with. Cancelled records release the pair.
func (b *ExclusionBuilder) Build(ctx context.Context, userID uint) (ExclusionSet, error) {
	reqs, err := b.store.FindByStatusFor(ctx, userID, models.ExclusionStatuses)
	if err != nil {
		return ExclusionSet{}, err
	}

	others := make([]uint, 0, len(reqs))
	for i := range reqs {
		others = append(others, reqs[i].OtherParty(userID))
	}
	return newExclusionSet(userID, others), nil
}
