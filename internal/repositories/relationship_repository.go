package repositories

import (
	"context"
	stderrors "errors"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipRepository is the only code that reads or writes
// relationship_requests. Uniqueness of active records is enforced by the
// partial indexes created in database.AutoMigrate.
type RelationshipRepository struct {
	store
}

func NewRelationshipRepository(db *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{store: newStore(db)}
}

// DashboardCounts are per-status counts split by direction.
type DashboardCounts struct {
	Received StatusCounts `json:"received"`
	Sent     StatusCounts `json:"sent"`
}

type StatusCounts struct {
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

// ListFilter narrows ListFor.
type ListFilter struct {
	Received bool   // true: caller is receiver, false: caller is sender
	Status   string // empty matches any status
	Type     string // empty matches interest and chat
}

// Create inserts a new record. A concurrent or pre-existing active record
// for the same pair and type yields ErrCodeAlreadyExists.
func (r *RelationshipRepository) Create(ctx context.Context, req *models.RelationshipRequest) error {
	req.PairKey = models.PairKey(req.SenderID, req.ReceiverID)

	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.New(errors.ErrCodeAlreadyExists, "an active request already exists between these users")
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create relationship request")
	}
	return nil
}

// GetByID retrieves a request by ID
func (r *RelationshipRepository) GetByID(ctx context.Context, id uint) (*models.RelationshipRequest, error) {
	var req models.RelationshipRequest
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.First(&req, id).Error
	})

	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "request not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get request")
	}
	return &req, nil
}

// FindActiveBetween returns the active record of reqType between a and b in
// either direction, or nil when there is none.
func (r *RelationshipRepository) FindActiveBetween(ctx context.Context, a, b uint, reqType string) (*models.RelationshipRequest, error) {
	var reqs []models.RelationshipRequest
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("pair_key = ? AND request_type = ? AND status IN ?",
			models.PairKey(a, b), reqType, models.ActiveStatuses).
			Order("id DESC").Limit(1).Find(&reqs).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to look up active request")
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

// IsBlockedBetween reports whether any blocked record exists between the
// pair, in either direction and of any type.
func (r *RelationshipRepository) IsBlockedBetween(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.RelationshipRequest{}).
			Where("pair_key = ? AND status = ?", models.PairKey(a, b), models.RequestStatusBlocked).
			Count(&count).Error
	})
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to check block")
	}
	return count > 0, nil
}

// HasAcceptedBetween reports whether an accepted record of one of types
// exists between the pair in either direction.
func (r *RelationshipRepository) HasAcceptedBetween(ctx context.Context, a, b uint, types ...string) (bool, error) {
	var count int64
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.RelationshipRequest{}).
			Where("pair_key = ? AND status = ? AND request_type IN ?",
				models.PairKey(a, b), models.RequestStatusAccepted, types).
			Count(&count).Error
	})
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to check accepted request")
	}
	return count > 0, nil
}

// FindByStatusFor returns every record where userID is sender or receiver
// and the status is one of statuses, in one query.
func (r *RelationshipRepository) FindByStatusFor(ctx context.Context, userID uint, statuses []string) ([]models.RelationshipRequest, error) {
	var reqs []models.RelationshipRequest
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("(sender_id = ? OR receiver_id = ?) AND status IN ?", userID, userID, statuses).
			Find(&reqs).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list requests")
	}
	return reqs, nil
}

// FindInterestsWith returns active interest records between userID and any of
// others, in either direction. Used to annotate candidate lists.
func (r *RelationshipRepository) FindInterestsWith(ctx context.Context, userID uint, others []uint) ([]models.RelationshipRequest, error) {
	if len(others) == 0 {
		return nil, nil
	}
	var reqs []models.RelationshipRequest
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("request_type = ? AND status IN ?", models.RequestTypeInterest, models.ActiveStatuses).
			Where("((sender_id = ? AND receiver_id IN ?) OR (receiver_id = ? AND sender_id IN ?))",
				userID, others, userID, others).
			Find(&reqs).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list interests")
	}
	return reqs, nil
}

// CountByStatusFor returns the dashboard counts for userID. Block records
// are not requests and are left out.
func (r *RelationshipRepository) CountByStatusFor(ctx context.Context, userID uint) (*DashboardCounts, error) {
	type row struct {
		Received bool
		Status   string
		Total    int64
	}
	var rows []row

	err := r.run(ctx, func(db *gorm.DB) error {
		rows = rows[:0]
		return db.Model(&models.RelationshipRequest{}).
			Select("receiver_id = ? AS received, status, COUNT(*) AS total", userID).
			Where("(sender_id = ? OR receiver_id = ?) AND request_type <> ?", userID, userID, models.RequestTypeBlock).
			Where("status IN ?", []string{models.RequestStatusPending, models.RequestStatusAccepted, models.RequestStatusRejected}).
			Group("received, status").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count requests")
	}

	counts := &DashboardCounts{}
	for _, rw := range rows {
		target := &counts.Sent
		if rw.Received {
			target = &counts.Received
		}
		switch rw.Status {
		case models.RequestStatusPending:
			target.Pending += rw.Total
		case models.RequestStatusAccepted:
			target.Accepted += rw.Total
		case models.RequestStatusRejected:
			target.Rejected += rw.Total
		}
	}
	return counts, nil
}

// ListIncomingPending returns pending interest and chat requests addressed
// to userID, newest first.
func (r *RelationshipRepository) ListIncomingPending(ctx context.Context, userID uint) ([]models.RelationshipRequest, error) {
	return r.ListFor(ctx, userID, ListFilter{Received: true, Status: models.RequestStatusPending})
}

// ListFor returns the requests userID sent or received, newest first.
func (r *RelationshipRepository) ListFor(ctx context.Context, userID uint, filter ListFilter) ([]models.RelationshipRequest, error) {
	var reqs []models.RelationshipRequest
	err := r.run(ctx, func(db *gorm.DB) error {
		q := db.Model(&models.RelationshipRequest{})
		if filter.Received {
			q = q.Where("receiver_id = ?", userID)
		} else {
			q = q.Where("sender_id = ?", userID)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.Type != "" {
			q = q.Where("request_type = ?", filter.Type)
		} else {
			q = q.Where("request_type IN ?", []string{models.RequestTypeInterest, models.RequestTypeChat})
		}
		return q.Order("created_at DESC, id DESC").Find(&reqs).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list requests")
	}
	return reqs, nil
}

// CompareAndSetStatus moves the record to next only if it is still in
// expected. swapped is false when another writer got there first.
func (r *RelationshipRepository) CompareAndSetStatus(ctx context.Context, id uint, expected, next string, blockedBy uint) (swapped bool, err error) {
	updates := map[string]interface{}{"status": next}
	if next == models.RequestStatusBlocked {
		updates["blocked_by"] = blockedBy
	}

	var affected int64
	err = r.run(ctx, func(db *gorm.DB) error {
		result := db.Model(&models.RelationshipRequest{}).
			Where("id = ? AND status = ?", id, expected).
			Updates(updates)
		affected = result.RowsAffected
		return result.Error
	})

	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return false, errors.New(errors.ErrCodeAlreadyExists, "an active request already exists between these users")
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to update request status")
	}
	return affected == 1, nil
}

// CancelBlocksBy lifts every block blockerID holds against targetID.
// Blocks placed by targetID are left in place.
func (r *RelationshipRepository) CancelBlocksBy(ctx context.Context, blockerID, targetID uint) (int64, error) {
	var affected int64
	err := r.run(ctx, func(db *gorm.DB) error {
		result := db.Model(&models.RelationshipRequest{}).
			Where("pair_key = ? AND status = ? AND blocked_by = ?",
				models.PairKey(blockerID, targetID), models.RequestStatusBlocked, blockerID).
			Updates(map[string]interface{}{"status": models.RequestStatusCancelled})
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to unblock user")
	}
	return affected, nil
}
