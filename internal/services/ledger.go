package services

import (
	"context"
	"strings"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/errors"
	"github.com/787516/Matrimonial/pkg/logger"
)

// casRetries bounds how often a transition re-reads a record that changed
// underneath it.
const casRetries = 3

// RelationshipStore is the storage the ledger owns.
type RelationshipStore interface {
	Create(ctx context.Context, req *models.RelationshipRequest) error
	GetByID(ctx context.Context, id uint) (*models.RelationshipRequest, error)
	FindActiveBetween(ctx context.Context, a, b uint, reqType string) (*models.RelationshipRequest, error)
	IsBlockedBetween(ctx context.Context, a, b uint) (bool, error)
	HasAcceptedBetween(ctx context.Context, a, b uint, types ...string) (bool, error)
	FindByStatusFor(ctx context.Context, userID uint, statuses []string) ([]models.RelationshipRequest, error)
	CompareAndSetStatus(ctx context.Context, id uint, expected, next string, blockedBy uint) (bool, error)
	CancelBlocksBy(ctx context.Context, blockerID, targetID uint) (int64, error)
}

// UserDirectory resolves users by ID.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// Notifier receives fire-and-forget activity events.
type Notifier interface {
	Notify(ctx context.Context, targetUserID, actorUserID uint, eventType, message string, relatedID uint)
}

// Ledger is the relationship state machine. It is the only writer of
// relationship requests.
type Ledger struct {
	store    RelationshipStore
	users    UserDirectory
	notifier Notifier
}

func NewLedger(store RelationshipStore, users UserDirectory, notifier Notifier) *Ledger {
	return &Ledger{store: store, users: users, notifier: notifier}
}

// ParseAction maps a client supplied action to a status, ignoring case.
func ParseAction(action string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case models.RequestStatusAccepted:
		return models.RequestStatusAccepted, nil
	case models.RequestStatusRejected:
		return models.RequestStatusRejected, nil
	case models.RequestStatusBlocked:
		return models.RequestStatusBlocked, nil
	case models.RequestStatusCancelled:
		return models.RequestStatusCancelled, nil
	}
	return "", errors.New(errors.ErrCodeValidation, "invalid action type")
}

// CreateInterest records a pending interest from sender to receiver.
func (l *Ledger) CreateInterest(ctx context.Context, senderID, receiverID uint) (*models.RelationshipRequest, error) {
	sender, err := l.checkNewRequest(ctx, senderID, receiverID, models.RequestTypeInterest)
	if err != nil {
		return nil, err
	}

	req, err := l.create(ctx, senderID, receiverID, models.RequestTypeInterest)
	if err != nil {
		return nil, err
	}

	l.notifier.Notify(ctx, receiverID, senderID, models.ActivityInterestSent,
		sender.FullName+" sent you an interest", req.ID)
	return req, nil
}

// CreateChatRequest records a pending chat request. The pair must already
// share an accepted interest.
func (l *Ledger) CreateChatRequest(ctx context.Context, senderID, receiverID uint) (*models.RelationshipRequest, error) {
	sender, err := l.checkNewRequest(ctx, senderID, receiverID, models.RequestTypeChat)
	if err != nil {
		return nil, err
	}

	accepted, err := l.HasAcceptedInterest(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, errors.New(errors.ErrCodePrecondition, "an accepted interest is required before requesting a chat")
	}

	req, err := l.create(ctx, senderID, receiverID, models.RequestTypeChat)
	if err != nil {
		return nil, err
	}

	l.notifier.Notify(ctx, receiverID, senderID, models.ActivityChatRequestReceived,
		sender.FullName+" wants to chat with you", req.ID)
	return req, nil
}

// checkNewRequest runs the self, existence, block and duplicate checks shared
// by every new request and returns the sender.
func (l *Ledger) checkNewRequest(ctx context.Context, senderID, receiverID uint, reqType string) (*models.User, error) {
	if senderID == receiverID {
		return nil, errors.New(errors.ErrCodeSelfReference, "you cannot send a request to yourself")
	}

	sender, err := l.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := l.users.GetUserByID(ctx, receiverID); err != nil {
		return nil, err
	}

	blocked, err := l.store.IsBlockedBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, errors.New(errors.ErrCodeBlocked, "a block exists between these users")
	}

	existing, err := l.store.FindActiveBetween(ctx, senderID, receiverID, reqType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New(errors.ErrCodeAlreadyExists, reqType+" request already exists")
	}

	return sender, nil
}

func (l *Ledger) create(ctx context.Context, senderID, receiverID uint, reqType string) (*models.RelationshipRequest, error) {
	req := &models.RelationshipRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       reqType,
		Status:     models.RequestStatusPending,
	}
	// the unique index settles races the check above cannot see
	if err := l.store.Create(ctx, req); err != nil {
		return nil, err
	}

	logger.Info("Relationship request created", "id", req.ID, "type", reqType, "sender", senderID, "receiver", receiverID)
	return req, nil
}

// Transition applies action to the request on behalf of actorID.
//
// Cancelled: sender only, while pending. Accepted and Rejected: receiver
// only, while pending. Blocked: either party, from any status.
func (l *Ledger) Transition(ctx context.Context, requestID, actorID uint, action string) (*models.RelationshipRequest, error) {
	req, err := l.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Involves(actorID) {
		return nil, errors.New(errors.ErrCodeForbidden, "not authorized to modify this request")
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		if err := authorizeTransition(req, actorID, action); err != nil {
			return nil, err
		}

		if action == models.RequestStatusBlocked && req.Status == models.RequestStatusBlocked {
			return req, nil
		}

		swapped, err := l.store.CompareAndSetStatus(ctx, req.ID, req.Status, action, actorID)
		if errors.Is(err, errors.ErrCodeAlreadyExists) && action == models.RequestStatusBlocked {
			// reviving this record would collide with a newer active one
			// of the same type; a standalone block covers the pair instead
			if _, err := l.BlockUser(ctx, actorID, req.OtherParty(actorID)); err != nil && !errors.Is(err, errors.ErrCodeAlreadyExists) {
				return nil, err
			}
			return l.store.GetByID(ctx, req.ID)
		}
		if err != nil {
			return nil, err
		}

		if swapped {
			from := req.Status
			req.Status = action
			if action == models.RequestStatusBlocked {
				req.BlockedBy = actorID
			}
			logger.Info("Relationship request transitioned", "id", req.ID, "from", from, "to", action, "actor", actorID)
			l.notifyTransition(ctx, req, actorID)
			return req, nil
		}

		// lost the race, re-evaluate against what won
		if req, err = l.store.GetByID(ctx, requestID); err != nil {
			return nil, err
		}
	}

	return nil, errors.New(errors.ErrCodeInvalidTransition, "request changed concurrently, please retry")
}

func authorizeTransition(req *models.RelationshipRequest, actorID uint, action string) error {
	switch action {
	case models.RequestStatusCancelled:
		if actorID != req.SenderID {
			return errors.New(errors.ErrCodeForbidden, "only the sender can cancel this request")
		}
		if req.Status != models.RequestStatusPending {
			return errors.New(errors.ErrCodeInvalidTransition, "cannot cancel a request that is already "+req.Status)
		}
	case models.RequestStatusAccepted, models.RequestStatusRejected:
		if actorID != req.ReceiverID {
			return errors.New(errors.ErrCodeForbidden, "only the receiver can respond to this request")
		}
		if req.Status != models.RequestStatusPending {
			return errors.New(errors.ErrCodeInvalidTransition, "cannot respond to a request that is already "+req.Status)
		}
	case models.RequestStatusBlocked:
		// either party, any status
	default:
		return errors.New(errors.ErrCodeValidation, "invalid action type")
	}
	return nil
}

func (l *Ledger) notifyTransition(ctx context.Context, req *models.RelationshipRequest, actorID uint) {
	if req.Status != models.RequestStatusAccepted {
		return
	}

	name := "Someone"
	if actor, err := l.users.GetUserByID(ctx, actorID); err == nil {
		name = actor.FullName
	}

	eventType := models.ActivityInterestAccepted
	message := name + " accepted your interest"
	if req.Type == models.RequestTypeChat {
		eventType = models.ActivityChatRequestAccepted
		message = name + " accepted your chat request"
	}
	l.notifier.Notify(ctx, req.SenderID, actorID, eventType, message, req.ID)
}

// BlockUser places a pair-wide block held by blockerID.
func (l *Ledger) BlockUser(ctx context.Context, blockerID, targetID uint) (*models.RelationshipRequest, error) {
	if blockerID == targetID {
		return nil, errors.New(errors.ErrCodeSelfReference, "you cannot block yourself")
	}
	if _, err := l.users.GetUserByID(ctx, targetID); err != nil {
		return nil, err
	}

	block := &models.RelationshipRequest{
		SenderID:   blockerID,
		ReceiverID: targetID,
		Type:       models.RequestTypeBlock,
		Status:     models.RequestStatusBlocked,
		BlockedBy:  blockerID,
	}
	if err := l.store.Create(ctx, block); err != nil {
		if errors.Is(err, errors.ErrCodeAlreadyExists) {
			return nil, errors.New(errors.ErrCodeAlreadyExists, "user is already blocked")
		}
		return nil, err
	}

	logger.Info("User blocked", "blocker", blockerID, "target", targetID)
	return block, nil
}

// UnblockUser lifts every block blockerID holds against targetID by moving
// those records to cancelled. Blocks held by targetID stay.
func (l *Ledger) UnblockUser(ctx context.Context, blockerID, targetID uint) error {
	if blockerID == targetID {
		return errors.New(errors.ErrCodeSelfReference, "you cannot unblock yourself")
	}

	lifted, err := l.store.CancelBlocksBy(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	if lifted == 0 {
		return errors.New(errors.ErrCodeNotFound, "no block to lift")
	}

	logger.Info("User unblocked", "blocker", blockerID, "target", targetID, "records", lifted)
	return nil
}

// IsBlockedBetween reports whether either user has blocked the other.
func (l *Ledger) IsBlockedBetween(ctx context.Context, a, b uint) (bool, error) {
	return l.store.IsBlockedBetween(ctx, a, b)
}

// HasAcceptedInterest reports whether an accepted interest links the pair.
func (l *Ledger) HasAcceptedInterest(ctx context.Context, a, b uint) (bool, error) {
	return l.store.HasAcceptedBetween(ctx, a, b, models.RequestTypeInterest)
}

// HasChatPermission reports whether an accepted interest or accepted chat
// links the pair.
func (l *Ledger) HasChatPermission(ctx context.Context, a, b uint) (bool, error) {
	return l.store.HasAcceptedBetween(ctx, a, b, models.RequestTypeInterest, models.RequestTypeChat)
}
