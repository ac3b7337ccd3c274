package notification

import (
	"bidhub/broadcast"
	"bidhub/domain"
	"bidhub/event"
	"bidhub/idgen"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	notificationIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	NotifyFunc   = Notify
	DispatchFunc = Dispatch
)

// Build derives the recipient and message of ev. It neither assigns an id nor touches the store.
func Build(ev *event.BidEvent) (*Notification, error) {
	n := Notification{BidID: ev.Bid.ID, WorkUnitID: ev.WorkUnit.ID}
	switch ev.Kind {
	case event.KindBidStatusChanged:
		switch ev.Bid.Status {
		case domain.BidStatusAccepted:
			n.Message = fmt.Sprintf("Your bid for %s is accepted", ev.WorkUnit.Title)
		case domain.BidStatusRejected:
			n.Message = fmt.Sprintf("Your bid for %s is rejected", ev.WorkUnit.Title)
		default:
			return nil, fmt.Errorf("no notification for bid status '%s'", ev.Bid.Status)
		}
		n.RecipientID = ev.Bid.BidderID
	case event.KindFilesUploaded:
		n.Message = fmt.Sprintf("The bidder %s for %s submitted the project files", ev.Bid.BidderName, ev.WorkUnit.Title)
		n.RecipientID = ev.WorkUnit.OwnerID
	default:
		return nil, fmt.Errorf("unknown event kind '%s'", ev.Kind)
	}
	n.Message = truncate(n.Message, MessageMaxLength)
	return &n, nil
}

// truncate keeps at most max runes of s.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Notify builds and persists the notification of ev within tx. Delivery is left to Dispatch, after
// tx is committed.
func Notify(ev *event.BidEvent, timestamp types.Timestamp, tx *gorm.DB) (*Notification, error) {
	n, err := Build(ev)
	if err != nil {
		return nil, err
	}
	n.ID = idgen.NextID(notificationIdWorker)
	n.CreateTime = timestamp
	if err := Create(n, tx); err != nil {
		return nil, err
	}
	return n, nil
}

// Dispatch pushes committed notifications to the topics of their recipients. Push failures are
// logged and dropped, the rows stay available for polling.
func Dispatch(notifications []Notification) {
	for _, n := range notifications {
		push(n)
	}
}

func push(n Notification) {
	topic := broadcast.RecipientTopic(n.RecipientID)
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("topic", topic).WithField("notificationId", n.ID).Warnf("broadcast panic: %v", r)
		}
	}()

	payload := Payload{Message: n.Message, WorkUnitID: n.WorkUnitID, NotificationID: n.ID}
	if err := broadcast.ActiveBroadcaster.Push(topic, &payload); err != nil {
		logrus.WithField("topic", topic).WithField("notificationId", n.ID).Warnf("broadcast failed: %v", err)
	}
}
