package bidding

import (
	"bidhub/bizerror"
	"bidhub/domain"
	"bidhub/domain/state"
	"bidhub/event"
	"bidhub/notification"
	"bidhub/persistence"
	"bidhub/session"
	"context"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	AcceptFunc            = Accept
	RejectFunc            = Reject
	MarkFilesUploadedFunc = MarkFilesUploaded
	CascadeFunc           = Cascade

	CheckFilesUploadableFunc = CheckFilesUploadable
)

// Accept awards the work unit to the bid. The status write, the cascade over sibling bids, audit events
// and notifications commit together. Notifications are pushed after commit.
func Accept(ctx context.Context, id types.ID, sec *session.Context) (*domain.Bid, error) {
	var accepted domain.Bid
	var notifications []notification.Notification
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		bid, w, err := findBidForOwner(tx, id, sec)
		if err != nil {
			return err
		}
		if !bid.Modifiable() {
			return bizerror.ErrNotModifiable
		}
		if w.Awarded {
			return bizerror.ErrWorkUnitAwarded
		}

		now := types.CurrentTimestamp()
		ev, err := transit(tx, bid, w, domain.BidStatusAccepted)
		if err != nil {
			return err
		}
		cascaded, err := CascadeFunc(tx, &ev.Bid, w)
		if err != nil {
			return err
		}

		events := append([]event.BidEvent{*ev}, cascaded...)
		for i := range events {
			n, err := recordBidEvent(tx, &events[i], sec, now)
			if err != nil {
				return err
			}
			notifications = append(notifications, *n)
		}
		accepted = ev.Bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	notification.DispatchFunc(notifications)
	return &accepted, nil
}

// Reject declines a pending bid, other bids on the work unit are left as they are.
func Reject(ctx context.Context, id types.ID, sec *session.Context) (*domain.Bid, error) {
	var rejected domain.Bid
	var n *notification.Notification
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		bid, w, err := findBidForOwner(tx, id, sec)
		if err != nil {
			return err
		}
		if !bid.Modifiable() {
			return bizerror.ErrNotModifiable
		}

		ev, err := transit(tx, bid, w, domain.BidStatusRejected)
		if err != nil {
			return err
		}
		n, err = recordBidEvent(tx, ev, sec, types.CurrentTimestamp())
		if err != nil {
			return err
		}
		rejected = ev.Bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	notification.DispatchFunc([]notification.Notification{*n})
	return &rejected, nil
}

// MarkFilesUploaded latches the files flag of an accepted bid of the caller and notifies the owner.
func MarkFilesUploaded(ctx context.Context, id types.ID, sec *session.Context) (*domain.Bid, error) {
	var uploaded domain.Bid
	var n *notification.Notification
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		bid, err := findBid(persistence.ForUpdate(tx), id)
		if err != nil {
			return err
		}
		if err := checkFilesUploadable(bid, sec); err != nil {
			return err
		}
		w, err := findWorkUnit(tx, bid.WorkUnitID)
		if err != nil {
			return err
		}

		db := tx.Model(&domain.Bid{}).Where("id = ? AND status = ? AND files_uploaded = ?", id, domain.BidStatusAccepted, false).
			Update("files_uploaded", true)
		if db.Error != nil {
			return db.Error
		}
		if db.RowsAffected != 1 {
			return bizerror.ErrFilesAlreadyUploaded
		}
		bid.FilesUploaded = true

		ev := event.BidEvent{Kind: event.KindFilesUploaded, Bid: *bid, WorkUnit: *w, OldStatus: bid.Status}
		n, err = recordBidEvent(tx, &ev, sec, types.CurrentTimestamp())
		if err != nil {
			return err
		}
		uploaded = *bid
		return nil
	})
	if err != nil {
		return nil, err
	}

	notification.DispatchFunc([]notification.Notification{*n})
	return &uploaded, nil
}

// CheckFilesUploadable tells whether the caller may deliver files for the bid, without changing anything.
func CheckFilesUploadable(ctx context.Context, id types.ID, sec *session.Context) error {
	bid, err := findBid(persistence.ActiveDataSourceManager.GormDB(ctx), id)
	if err != nil {
		return err
	}
	return checkFilesUploadable(bid, sec)
}

func checkFilesUploadable(bid *domain.Bid, sec *session.Context) error {
	if !sec.Is(bid.BidderID) {
		return bizerror.ErrForbidden
	}
	if bid.Status != domain.BidStatusAccepted {
		return bizerror.ErrBidNotAccepted
	}
	if bid.FilesUploaded {
		return bizerror.ErrFilesAlreadyUploaded
	}
	return nil
}

// Cascade rejects every sibling of the accepted bid that is not rejected yet, then flips the awarded flag
// of the work unit. Sibling rows are written directly, without going through Accept or Reject. It fails
// with ErrWorkUnitAwarded when another accept has already won the work unit.
func Cascade(tx *gorm.DB, accepted *domain.Bid, w *domain.WorkUnit) ([]event.BidEvent, error) {
	var siblings []domain.Bid
	if err := persistence.ForUpdate(tx).Where("work_unit_id = ? AND id != ? AND status != ?",
		w.ID, accepted.ID, domain.BidStatusRejected).Order("id ASC").Find(&siblings).Error; err != nil {
		return nil, err
	}

	var events []event.BidEvent
	for i := range siblings {
		sibling := siblings[i]
		if sibling.Status == domain.BidStatusAccepted {
			return nil, bizerror.ErrWorkUnitAwarded
		}
		ev, err := transit(tx, &sibling, w, domain.BidStatusRejected)
		if err != nil {
			return nil, err
		}
		ev.Cascade = true
		events = append(events, *ev)
	}

	db := tx.Model(&domain.WorkUnit{}).Where("id = ? AND awarded = ?", w.ID, false).Update("awarded", true)
	if db.Error != nil {
		return nil, db.Error
	}
	if db.RowsAffected != 1 {
		return nil, bizerror.ErrWorkUnitAwarded
	}
	w.Awarded = true
	return events, nil
}

// transit writes the status change of a pending bid. The conditional update fails with ErrNotModifiable
// when a concurrent transaction changed the bid first.
func transit(tx *gorm.DB, bid *domain.Bid, w *domain.WorkUnit, to domain.BidStatus) (*event.BidEvent, error) {
	if _, err := state.BidStateMachine.Transit(string(bid.Status), string(to)); err != nil {
		return nil, bizerror.ErrNotModifiable
	}

	db := tx.Model(&domain.Bid{}).Where("id = ? AND status = ?", bid.ID, domain.BidStatusPending).Update("status", to)
	if db.Error != nil {
		return nil, db.Error
	}
	if db.RowsAffected != 1 {
		return nil, bizerror.ErrNotModifiable
	}

	changed := *bid
	changed.Status = to
	return &event.BidEvent{Kind: event.KindBidStatusChanged, Bid: changed, WorkUnit: *w, OldStatus: bid.Status}, nil
}

func recordBidEvent(tx *gorm.DB, ev *event.BidEvent, sec *session.Context, now types.Timestamp) (*notification.Notification, error) {
	var identity *session.Identity
	if sec != nil {
		identity = &sec.Identity
	}
	if _, err := event.CreateEvent(ev, identity, now, tx); err != nil {
		return nil, err
	}
	return notification.NotifyFunc(ev, now, tx)
}

// findBidForOwner locks the work unit before the bid, the same order Submit and Cascade use.
func findBidForOwner(tx *gorm.DB, id types.ID, sec *session.Context) (*domain.Bid, *domain.WorkUnit, error) {
	bid, err := findBid(tx, id)
	if err != nil {
		return nil, nil, err
	}
	w, err := findWorkUnit(persistence.ForUpdate(tx), bid.WorkUnitID)
	if err != nil {
		return nil, nil, err
	}
	if !sec.Is(w.OwnerID) && !sec.IsAdmin() {
		return nil, nil, bizerror.ErrForbidden
	}
	bid, err = findBid(persistence.ForUpdate(tx), id)
	if err != nil {
		return nil, nil, err
	}
	return bid, w, nil
}
