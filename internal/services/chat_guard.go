package services

import (
	"context"
	"time"

	"github.com/787516/Matrimonial/internal/config"
	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/errors"
)

// Entitlements resolves what a member's plan allows and meters profile views.
type Entitlements interface {
	GetEntitlement(ctx context.Context, userID uint, now time.Time) (*models.Entitlement, error)
	ConsumeProfileView(ctx context.Context, viewerID, viewedID uint, ent *models.Entitlement, now time.Time) (bool, error)
}

// ChatGuard decides whether two members may open a chat channel and meters
// profile views against the viewer's plan.
type ChatGuard struct {
	policy       string
	ledger       *Ledger
	entitlements Entitlements
	now          func() time.Time
}

// NewChatGuard falls back to the hybrid policy when policy is unknown.
func NewChatGuard(policy string, ledger *Ledger, entitlements Entitlements) *ChatGuard {
	if policy != config.ChatGatingStrict {
		policy = config.ChatGatingHybrid
	}
	return &ChatGuard{policy: policy, ledger: ledger, entitlements: entitlements, now: utcNow}
}

func (g *ChatGuard) Policy() string {
	return g.policy
}

// CanChat reports whether the relationship between a and b permits chat.
// Strict needs an accepted interest; hybrid also takes an accepted chat
// request.
func (g *ChatGuard) CanChat(ctx context.Context, a, b uint) (bool, error) {
	if g.policy == config.ChatGatingStrict {
		return g.ledger.HasAcceptedInterest(ctx, a, b)
	}
	return g.ledger.HasChatPermission(ctx, a, b)
}

// CheckChatAccess returns nil when callerID may chat with otherID, or the
// first failing check: self, block, plan, relationship.
func (g *ChatGuard) CheckChatAccess(ctx context.Context, callerID, otherID uint) error {
	if callerID == otherID {
		return errors.New(errors.ErrCodeSelfReference, "you cannot chat with yourself")
	}

	blocked, err := g.ledger.IsBlockedBetween(ctx, callerID, otherID)
	if err != nil {
		return err
	}
	if blocked {
		return errors.New(errors.ErrCodeBlocked, "a block exists between these users")
	}

	ent, err := g.entitlements.GetEntitlement(ctx, callerID, g.now())
	if err != nil {
		return err
	}
	if !ent.ChatAllowed {
		return errors.New(errors.ErrCodeNotEntitled, "your "+ent.PlanName+" plan does not include chat")
	}

	ok, err := g.CanChat(ctx, callerID, otherID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodePrecondition, "an accepted interest is required before chatting")
	}
	return nil
}

// ChargeProfileView meters viewerID opening viewedID's profile. Viewing your
// own profile is never charged.
func (g *ChatGuard) ChargeProfileView(ctx context.Context, viewerID, viewedID uint) (bool, error) {
	if viewerID == viewedID {
		return false, nil
	}

	now := g.now()
	ent, err := g.entitlements.GetEntitlement(ctx, viewerID, now)
	if err != nil {
		return false, err
	}
	return g.entitlements.ConsumeProfileView(ctx, viewerID, viewedID, ent, now)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
