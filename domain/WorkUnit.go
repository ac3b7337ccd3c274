package domain

import (
	"github.com/fundwit/go-commons/types"
)

const (
	WorkUnitTitleMaxLength       = 64
	WorkUnitDescriptionMaxLength = 1024
)

// WorkUnit is a commissioned task open for bidding. Awarded flips to true once, when a bid on it is
// accepted.
type WorkUnit struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	OwnerID     types.ID `json:"ownerId" gorm:"index"`
	Title       string   `json:"title" sql:"type:VARCHAR(64) NOT NULL"`
	Description string   `json:"description" sql:"type:VARCHAR(1024)"`
	Awarded     bool     `json:"awarded"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME NOT NULL"`
}

func (w *WorkUnit) TableName() string {
	return "work_units"
}

type WorkUnitCreation struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type WorkUnitUpdating struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type WorkUnitDetail struct {
	WorkUnit
	Bids []Bid `json:"bids"`
}
