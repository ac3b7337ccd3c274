package notification

import (
	"bidhub/bizerror"
	"bidhub/persistence"
	"context"
	"errors"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	CountNotificationsFunc = CountNotifications
	ListRecentFunc         = ListRecent
	MarkReadFunc           = MarkRead
	MarkAllReadFunc        = MarkAllRead
	DeleteAllReadFunc      = DeleteAllRead
	DeleteNotificationFunc = DeleteNotification
	UpdateReadFlagFunc     = UpdateReadFlag
)

// Create persists n inside the transaction of the triggering operation.
func Create(n *Notification, tx *gorm.DB) error {
	if strings.TrimSpace(n.Message) == "" || len([]rune(n.Message)) > MessageMaxLength {
		return bizerror.ErrInvalidMessage
	}
	return tx.Create(n).Error
}

func CountAll(ctx context.Context, recipientId types.ID) (int, error) {
	count := 0
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Model(&Notification{}).
		Where("recipient_id = ?", recipientId).Count(&count).Error
	return count, err
}

func CountUnread(ctx context.Context, recipientId types.ID) (int, error) {
	count := 0
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Model(&Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientId, false).Count(&count).Error
	return count, err
}

func CountNotifications(ctx context.Context, recipientId types.ID) (*NotificationCounts, error) {
	all, err := CountAll(ctx, recipientId)
	if err != nil {
		return nil, err
	}
	unread, err := CountUnread(ctx, recipientId)
	if err != nil {
		return nil, err
	}
	return &NotificationCounts{All: all, Unread: unread}, nil
}

// ListRecent returns the newest notifications of the recipient first. A limit <= 0 returns all of them.
func ListRecent(ctx context.Context, recipientId types.ID, limit int) ([]NotificationDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx).Table("notifications").
		Select("notifications.*, work_units.title AS work_unit_title, bids.status AS bid_status").
		Joins("LEFT JOIN work_units ON work_units.id = notifications.work_unit_id").
		Joins("LEFT JOIN bids ON bids.id = notifications.bid_id").
		Where("notifications.recipient_id = ?", recipientId).
		Order("notifications.create_time DESC").Order("notifications.id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	details := []NotificationDetail{}
	if err := db.Scan(&details).Error; err != nil {
		return nil, err
	}
	return details, nil
}

// MarkRead fails with ErrNotFound when the notification does not exist or belongs to someone else.
func MarkRead(ctx context.Context, id types.ID, recipientId types.ID) error {
	return persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := findOwnNotification(tx, id, recipientId)
		if err != nil {
			return err
		}
		if n.Read {
			return nil
		}
		return UpdateReadFlagFunc(tx, n.ID)
	})
}

// MarkAllRead updates the unread notifications one by one. Updates done before a failure are kept and
// the failure is reported as ErrPartialFailure.
func MarkAllRead(ctx context.Context, recipientId types.ID) error {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	var unread []Notification
	if err := db.Where("recipient_id = ? AND is_read = ?", recipientId, false).Order("id ASC").Find(&unread).Error; err != nil {
		return err
	}
	for i, n := range unread {
		if err := UpdateReadFlagFunc(db, n.ID); err != nil {
			logrus.Errorf("mark all read of recipient %s stopped at %d/%d: %v", recipientId, i, len(unread), err)
			return &bizerror.ErrPartialFailure{Done: i, Total: len(unread), Cause: err}
		}
	}
	return nil
}

func DeleteAllRead(ctx context.Context, recipientId types.ID) (int64, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx).
		Where("recipient_id = ? AND is_read = ?", recipientId, true).Delete(&Notification{})
	return db.RowsAffected, db.Error
}

func DeleteNotification(ctx context.Context, id types.ID, recipientId types.ID) error {
	return persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := findOwnNotification(tx, id, recipientId)
		if err != nil {
			return err
		}
		return tx.Delete(&Notification{}, "id = ?", n.ID).Error
	})
}

// DeleteByBid removes the notifications of a bid being deleted.
func DeleteByBid(bidId types.ID, tx *gorm.DB) error {
	return tx.Where("bid_id = ?", bidId).Delete(&Notification{}).Error
}

// DeleteByWorkUnit removes the notifications of a work unit being deleted.
func DeleteByWorkUnit(workUnitId types.ID, tx *gorm.DB) error {
	return tx.Where("work_unit_id = ?", workUnitId).Delete(&Notification{}).Error
}

func findOwnNotification(tx *gorm.DB, id types.ID, recipientId types.ID) (*Notification, error) {
	n := Notification{}
	if err := tx.Where("id = ? AND recipient_id = ?", id, recipientId).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// UpdateReadFlag sets the read flag of one notification.
func UpdateReadFlag(db *gorm.DB, id types.ID) error {
	return db.Model(&Notification{}).Where("id = ?", id).Update("is_read", true).Error
}
