package bidding

import (
	"bidhub/bizerror"
	"bidhub/domain"
	"bidhub/idgen"
	"bidhub/notification"
	"bidhub/persistence"
	"bidhub/session"
	"context"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	bidIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	SubmitFunc    = Submit
	QueryBidsFunc = QueryBids
	DetailBidFunc = DetailBid
	DeleteBidFunc = DeleteBid
)

// Submit places a pending bid of the caller on a work unit that is not awarded yet.
func Submit(ctx context.Context, c *domain.BidCreation, sec *session.Context) (*domain.Bid, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if c.Amount <= 0 || c.Amount >= domain.BidAmountUpperBound {
		return nil, bizerror.ErrInvalidAmount
	}
	if len([]rune(c.Description)) > domain.BidDescriptionMaxLength {
		return nil, bizerror.ErrDescriptionTooLong
	}

	var bid domain.Bid
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := findWorkUnit(persistence.ForUpdate(tx), c.WorkUnitID)
		if err != nil {
			return err
		}
		if w.Awarded {
			return bizerror.ErrWorkUnitAwarded
		}
		if sec.Is(w.OwnerID) {
			return bizerror.ErrForbidden
		}

		count := 0
		if err := tx.Model(&domain.Bid{}).Where("work_unit_id = ? AND bidder_id = ?", w.ID, sec.Identity.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return bizerror.ErrAlreadyBid
		}

		bid = domain.Bid{
			ID:          idgen.NextID(bidIdWorker),
			WorkUnitID:  w.ID,
			BidderID:    sec.Identity.ID,
			BidderName:  sec.Identity.Name,
			Amount:      c.Amount,
			Description: c.Description,
			Status:      domain.BidStatusPending,
			CreateTime:  types.CurrentTimestamp(),
		}
		if err := tx.Create(&bid).Error; err != nil {
			if persistence.IsUniqueViolation(err) {
				return bizerror.ErrAlreadyBid
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &bid, nil
}

// QueryBids lists the bids of the caller. For a work unit owned by the caller all of its bids are listed.
func QueryBids(ctx context.Context, q *domain.BidQuery, sec *session.Context) ([]domain.Bid, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	query := db.Where("bidder_id = ?", sec.Identity.ID)
	if q.WorkUnitID != 0 {
		w, err := findWorkUnit(db, q.WorkUnitID)
		if err != nil {
			return nil, err
		}
		if sec.Is(w.OwnerID) || sec.IsAdmin() {
			query = db.Where("work_unit_id = ?", w.ID)
		} else {
			query = query.Where("work_unit_id = ?", w.ID)
		}
	}

	bids := []domain.Bid{}
	if err := query.Order("create_time DESC").Order("id DESC").Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

// DetailBid is visible to the bidder and to the owner of the work unit.
func DetailBid(ctx context.Context, id types.ID, sec *session.Context) (*domain.Bid, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	bid, err := findBid(db, id)
	if err != nil {
		return nil, err
	}
	if sec.Is(bid.BidderID) || sec.IsAdmin() {
		return bid, nil
	}
	w, err := findWorkUnit(db, bid.WorkUnitID)
	if err != nil {
		return nil, err
	}
	if !sec.Is(w.OwnerID) {
		return nil, bizerror.ErrForbidden
	}
	return bid, nil
}

// DeleteBid withdraws a pending bid of the caller.
func DeleteBid(ctx context.Context, id types.ID, sec *session.Context) error {
	return persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		bid, err := findBid(persistence.ForUpdate(tx), id)
		if err != nil {
			return err
		}
		if !sec.Is(bid.BidderID) {
			return bizerror.ErrForbidden
		}
		if !bid.Modifiable() {
			return bizerror.ErrNotModifiable
		}
		if err := notification.DeleteByBid(id, tx); err != nil {
			return err
		}
		db := tx.Where("id = ? AND status = ?", id, domain.BidStatusPending).Delete(&domain.Bid{})
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrNotModifiable
		}
		return nil
	})
}

func findBid(db *gorm.DB, id types.ID) (*domain.Bid, error) {
	var bid domain.Bid
	if err := db.Where("id = ?", id).First(&bid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &bid, nil
}
