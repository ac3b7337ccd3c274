package chat

import (
	"github.com/fundwit/go-commons/types"
)

// Room is the channel shared by exactly one pair of participants.
type Room struct {
	ID         types.ID        `json:"id" gorm:"primary_key"`
	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME NOT NULL"`
}

func (r *Room) TableName() string {
	return "rooms"
}

// Pairing binds an unordered pair of participants to their room. The pair is stored low id first,
// so (A, B) and (B, A) hit the same unique key.
type Pairing struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	RoomID     types.ID `json:"roomId" gorm:"unique_index:uk_pairings_room"`
	LowUserID  types.ID `json:"lowUserId" gorm:"unique_index:uk_pairings_users"`
	HighUserID types.ID `json:"highUserId" gorm:"unique_index:uk_pairings_users"`

	InitiatorID types.ID        `json:"initiatorId"`
	CreateTime  types.Timestamp `json:"createTime" sql:"type:DATETIME NOT NULL"`
}

func (p *Pairing) TableName() string {
	return "pairings"
}

// Other returns the participant of the pairing that is not user.
func (p *Pairing) Other(user types.ID) types.ID {
	if p.LowUserID == user {
		return p.HighUserID
	}
	return p.LowUserID
}

func (p *Pairing) Includes(user types.ID) bool {
	return p.LowUserID == user || p.HighUserID == user
}

type RoomDetail struct {
	Room
	OtherUserID types.ID `json:"otherUserId"`
}

type RoomCreation struct {
	UserID types.ID `json:"userId" binding:"required"`
}

// CanonicalPair orders two participant ids low first.
func CanonicalPair(a, b types.ID) (types.ID, types.ID) {
	if a < b {
		return a, b
	}
	return b, a
}
