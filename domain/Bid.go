package domain

import (
	"github.com/fundwit/go-commons/types"
)

type BidStatus string

const (
	BidStatusPending  = BidStatus("pending")
	BidStatusAccepted = BidStatus("accepted")
	BidStatusRejected = BidStatus("rejected")
)

const (
	BidAmountUpperBound     = 1000000
	BidDescriptionMaxLength = 1024
)

// Bid is a bidder's offer against a WorkUnit. A bidder holds at most one bid per work unit.
type Bid struct {
	ID          types.ID  `json:"id" gorm:"primary_key"`
	WorkUnitID  types.ID  `json:"workUnitId" gorm:"unique_index:uk_bids_work_unit_bidder"`
	BidderID    types.ID  `json:"bidderId" gorm:"unique_index:uk_bids_work_unit_bidder"`
	BidderName  string    `json:"bidderName"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description" sql:"type:VARCHAR(1024)"`
	Status      BidStatus `json:"status" sql:"type:VARCHAR(16) NOT NULL"`

	FilesUploaded bool `json:"filesUploaded"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME NOT NULL"`
}

func (b *Bid) TableName() string {
	return "bids"
}

// Modifiable reports whether the status of the bid may still change.
func (b *Bid) Modifiable() bool {
	return b.Status == BidStatusPending
}

type BidCreation struct {
	WorkUnitID  types.ID `json:"workUnitId" binding:"required"`
	Amount      float64  `json:"amount"`
	Description string   `json:"description"`
}

type BidQuery struct {
	WorkUnitID types.ID `form:"workUnitId"`
}
