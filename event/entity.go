package event

import (
	"bidhub/domain"

	"github.com/fundwit/go-commons/types"
)

type Kind string

// the closed set of bid events, decided by the lifecycle at the point of transition
const (
	KindBidStatusChanged = Kind("BID_STATUS_CHANGED")
	KindFilesUploaded    = Kind("FILES_UPLOADED")
)

// BidEvent carries the bid after the transition together with its work unit.
type BidEvent struct {
	Kind     Kind
	Bid      domain.Bid
	WorkUnit domain.WorkUnit

	OldStatus domain.BidStatus
	// Cascade marks rejections written by the award cascade
	Cascade bool
}

type EventRecord struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	Kind       Kind     `json:"kind" sql:"type:VARCHAR(32) NOT NULL"`
	BidID      types.ID `json:"bidId" gorm:"index"`
	WorkUnitID types.ID `json:"workUnitId"`

	OldValue string `json:"oldValue"`
	NewValue string `json:"newValue"`
	Cascade  bool   `json:"cascade"`

	CreatorID   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME NOT NULL"`
}

func (r *EventRecord) TableName() string {
	return "events"
}
