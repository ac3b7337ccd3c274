package notification

import (
	"bidhub/domain"

	"github.com/fundwit/go-commons/types"
)

const MessageMaxLength = 255

// Notification is a durable per-recipient record of a bid event. Only Read changes after creation.
type Notification struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	RecipientID types.ID `json:"recipientId" gorm:"index"`
	BidID       types.ID `json:"bidId" gorm:"index"`
	WorkUnitID  types.ID `json:"workUnitId" gorm:"index"`

	Message string `json:"message" sql:"type:VARCHAR(255) NOT NULL"`
	Read    bool   `json:"read" gorm:"column:is_read"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME NOT NULL"`
}

func (n *Notification) TableName() string {
	return "notifications"
}

// NotificationDetail is a notification listed together with its work unit title and the current
// status of its bid.
type NotificationDetail struct {
	Notification

	WorkUnitTitle string           `json:"workUnitTitle"`
	BidStatus     domain.BidStatus `json:"bidStatus"`
}

type NotificationCounts struct {
	All    int `json:"all"`
	Unread int `json:"unread"`
}

// Payload is the message pushed to the topic of the recipient.
type Payload struct {
	Message        string   `json:"message"`
	WorkUnitID     types.ID `json:"workUnitId"`
	NotificationID types.ID `json:"notificationId"`
}
