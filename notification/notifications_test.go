package notification_test

import (
	"bidhub/bizerror"
	"bidhub/domain"
	"bidhub/notification"
	"bidhub/persistence"
	"bidhub/testinfra"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func notificationsTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) {
	db := testinfra.StartTestDatabase("bidhub")
	*testDatabase = db
	Expect(db.DS.GormDB(context.Background()).AutoMigrate(&notification.Notification{}, &domain.WorkUnit{}, &domain.Bid{}).Error).To(BeNil())
	persistence.ActiveDataSourceManager = db.DS
	notification.UpdateReadFlagFunc = notification.UpdateReadFlag
}

func notificationsTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	notification.UpdateReadFlagFunc = notification.UpdateReadFlag
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}

func seedNotification(id types.ID, recipient types.ID, read bool, minute int) notification.Notification {
	n := notification.Notification{ID: id, RecipientID: recipient, BidID: 200, WorkUnitID: 100, Message: "message " + id.String(),
		Read: read, CreateTime: types.TimestampOfDate(2021, 1, 1, 12, minute, 0, 0, time.Local)}
	Expect(notification.Create(&n, persistence.ActiveDataSourceManager.GormDB(context.Background()))).To(BeNil())
	return n
}

func TestCountNotifications(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should count all and unread notifications of the recipient", func(t *testing.T) {
		notificationsTestSetup(t, &testDatabase)
		defer notificationsTestTeardown(t, testDatabase)

		seedNotification(1, 10, false, 1)
		seedNotification(2, 10, true, 2)
		seedNotification(3, 10, false, 3)
		seedNotification(4, 20, false, 4)

		counts, err := notification.CountNotifications(context.Background(), 10)
		Expect(err).To(BeNil())
		Expect(*counts).To(Equal(notification.NotificationCounts{All: 3, Unread: 2}))
		Expect(counts.Unread <= counts.All).To(BeTrue())

		counts, err = notification.CountNotifications(context.Background(), 30)
		Expect(err).To(BeNil())
		Expect(*counts).To(Equal(notification.NotificationCounts{All: 0, Unread: 0}))
	})
}

func TestListRecent(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should list newest first with work unit title and bid status", func(t *testing.T) {
		notificationsTestSetup(t, &testDatabase)
		defer notificationsTestTeardown(t, testDatabase)

		db := testDatabase.DS.GormDB(context.Background())
		Expect(db.Create(&domain.WorkUnit{ID: 100, OwnerID: 1, Title: "logo", CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&domain.Bid{ID: 200, WorkUnitID: 100, BidderID: 10, Amount: 500, Status: domain.BidStatusAccepted,
			CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		seedNotification(1, 10, false, 1)
		seedNotification(2, 10, true, 3)
		seedNotification(3, 10, false, 2)
		seedNotification(4, 20, false, 4)

		details, err := notification.ListRecent(context.Background(), 10, 0)
		Expect(err).To(BeNil())
		Expect(len(details)).To(Equal(3))
		Expect(details[0].ID).To(Equal(types.ID(2)))
		Expect(details[1].ID).To(Equal(types.ID(3)))
		Expect(details[2].ID).To(Equal(types.ID(1)))
		Expect(details[0].WorkUnitTitle).To(Equal("logo"))
		Expect(details[0].BidStatus).To(Equal(domain.BidStatusAccepted))
		Expect(details[0].Read).To(BeTrue())
		Expect(details[0].Message).To(Equal("message 2"))

		details, err = notification.ListRecent(context.Background(), 10, 2)
		Expect(err).To(BeNil())
		Expect(len(details)).To(Equal(2))
		Expect(details[1].ID).To(Equal(types.ID(3)))
	})
}

func TestMarkRead(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should fail with not found for notifications of other recipients", func(t *testing.T) {
		notificationsTestSetup(t, &testDatabase)
		defer notificationsTestTeardown(t, testDatabase)

		seedNotification(1, 10, false, 1)
		Expect(notification.MarkRead(context.Background(), 1, 20)).To(Equal(bizerror.ErrNotFound))
		Expect(notification.MarkRead(context.Background(), 404, 10)).To(Equal(bizerror.ErrNotFound))

		unread, err := notification.CountUnread(context.Background(), 10)
		Expect(err).To(BeNil())
		Expect(unread).To(Equal(1))
	})

	t.Run("should mark own notification read", func(t *testing.T) {
		notificationsTestSetup(t, &testDatabase)
		defer notificationsTestTeardown(t, testDatabase)

		seedNotification(1, 10, false, 1)
		seedNotification(2, 10, false, 2)
		Expect(notification.MarkRead(context.Background(), 1, 10)).To(BeNil())
		// read again is fine
		Expect(notification.MarkRead(context.Background(), 1, 10)).To(BeNil())

		unread, err := notification.CountUnread(context.Background(), 10)
		Expect(err).To(BeNil())
		Expect(unread).To(Equal(1))
	})
}

func TestMarkAllRead(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should leave no unread notification", func(t *testing.T) {
		notificationsTestSetup(t, &testDatabase)
		defer notificationsTestTeardown(t, testDatabase)

		seedNotification(1, 10, false, 1)
		seedNotification(2, 10, true, 2)
		seedNotification(3, 10, false, 3)
		seedNotification(4, 20, false, 4)

		Expect(notification.MarkAllRead(context.Background(), 10)).To(BeNil())
		counts, err := notification.CountNotifications(context.Background(), 10)
		Expect(err).To(BeNil())
		Expect(*counts).To(Equal(notification.NotificationCounts{All: 3, Unread: 0}))

		others, err := notification.CountUnread(context.Background(), 20)
		Expect(err).To(BeNil())
		Expect(others).To(Equal(1))
	})

	t.Run("should report partial failure and keep finished updates", func(t *testing.T) {
		notificationsTestSetup(t, &testDatabase)
		defer notificationsTestTeardown(t, testDatabase)

		seedNotification(1, 10, false, 1)
		seedNotification(2, 10, false, 2)
		seedNotification(3, 10, false, 3)

		testErr := errors.New("connection reset")
		notification.UpdateReadFlagFunc = func(db *gorm.DB, id types.ID) error {
			if id == 2 {
				return testErr
			}
			return notification.UpdateReadFlag(db, id)
		}

		err := notification.MarkAllRead(context.Background(), 10)
		var partial *bizerror.ErrPartialFailure
		Expect(errors.As(err, &partial)).To(BeTrue())
		Expect(partial.Done).To(Equal(1))
		Expect(partial.Total).To(Equal(3))
		Expect(errors.Is(err, testErr)).To(BeTrue())

		unread, err := notification.CountUnread(context.Background(), 10)
		Expect(err).To(BeNil())
		Expect(unread).To(Equal(2))
	})
}

func TestDeleteNotifications(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should delete only read notifications of the recipient", func(t *testing.T) {
		notificationsTestSetup(t, &testDatabase)
		defer notificationsTestTeardown(t, testDatabase)

		seedNotification(1, 10, true, 1)
		seedNotification(2, 10, false, 2)
		seedNotification(3, 20, true, 3)

		deleted, err := notification.DeleteAllRead(context.Background(), 10)
		Expect(err).To(BeNil())
		Expect(deleted).To(Equal(int64(1)))

		all, err := notification.CountAll(context.Background(), 10)
		Expect(err).To(BeNil())
		Expect(all).To(Equal(1))
		all, err = notification.CountAll(context.Background(), 20)
		Expect(err).To(BeNil())
		Expect(all).To(Equal(1))
	})

	t.Run("should delete own notification only", func(t *testing.T) {
		notificationsTestSetup(t, &testDatabase)
		defer notificationsTestTeardown(t, testDatabase)

		seedNotification(1, 10, false, 1)
		Expect(notification.DeleteNotification(context.Background(), 1, 20)).To(Equal(bizerror.ErrNotFound))
		Expect(notification.DeleteNotification(context.Background(), 1, 10)).To(BeNil())

		all, err := notification.CountAll(context.Background(), 10)
		Expect(err).To(BeNil())
		Expect(all).To(BeZero())
	})

	t.Run("should cascade by bid and work unit", func(t *testing.T) {
		notificationsTestSetup(t, &testDatabase)
		defer notificationsTestTeardown(t, testDatabase)

		seedNotification(1, 10, false, 1)
		seedNotification(2, 20, false, 2)
		db := testDatabase.DS.GormDB(context.Background())
		Expect(notification.DeleteByBid(999, db)).To(BeNil())
		all, err := notification.CountAll(context.Background(), 10)
		Expect(err).To(BeNil())
		Expect(all).To(Equal(1))

		Expect(notification.DeleteByWorkUnit(100, db)).To(BeNil())
		all, err = notification.CountAll(context.Background(), 20)
		Expect(err).To(BeNil())
		Expect(all).To(BeZero())
	})
}
