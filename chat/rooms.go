package chat

import (
	"bidhub/account"
	"bidhub/bizerror"
	"bidhub/idgen"
	"bidhub/persistence"
	"context"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	roomIdWorker    = sonyflake.NewSonyflake(sonyflake.Settings{})
	pairingIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	GetOrCreateRoomFunc = GetOrCreateRoom
	ListRoomsFunc       = ListRooms
	DetailRoomFunc      = DetailRoom

	CheckPairEligibilityFunc = account.CheckPairEligibility

	findOrCreateRoomFunc = findOrCreateRoom
	insertPairingFunc    = insertPairing

	errPairingTaken = errors.New("pairing taken by a concurrent request")
)

// GetOrCreateRoom returns the room shared by userA and userB, creating the room and its pairing
// together on first contact. A concurrent creation of the same pair is resolved by the unique key
// of the pairing: the loser retries once as a lookup and returns the winner's room.
func GetOrCreateRoom(ctx context.Context, userA, userB types.ID) (*Room, error) {
	if userA == userB {
		return nil, bizerror.ErrSameUser
	}
	if err := CheckPairEligibilityFunc(ctx, userA, userB); err != nil {
		return nil, err
	}

	room, err := findOrCreateRoomFunc(ctx, userA, userB)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, errPairingTaken) {
		return nil, err
	}

	low, high := CanonicalPair(userA, userB)
	room, err = findRoomOfPair(persistence.ActiveDataSourceManager.GormDB(ctx), low, high)
	if err != nil {
		if errors.Is(err, bizerror.ErrNotFound) {
			logrus.WithField("low", low).WithField("high", high).Warn("pairing conflict without a committed winner")
			return nil, bizerror.ErrPairingConflict
		}
		return nil, err
	}
	return room, nil
}

func findOrCreateRoom(ctx context.Context, initiator, other types.ID) (*Room, error) {
	low, high := CanonicalPair(initiator, other)
	var room *Room
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findRoomOfPair(tx, low, high)
		if err == nil {
			room = found
			return nil
		}
		if !errors.Is(err, bizerror.ErrNotFound) {
			return err
		}

		now := types.CurrentTimestamp()
		r := Room{ID: idgen.NextID(roomIdWorker), CreateTime: now}
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
		p := Pairing{ID: idgen.NextID(pairingIdWorker), RoomID: r.ID, LowUserID: low, HighUserID: high,
			InitiatorID: initiator, CreateTime: now}
		if err := insertPairingFunc(tx, &p); err != nil {
			if persistence.IsUniqueViolation(err) {
				return errPairingTaken
			}
			return err
		}
		room = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func insertPairing(tx *gorm.DB, p *Pairing) error {
	return tx.Create(p).Error
}

// ListRooms returns the rooms of user, newest first, each with the other participant.
func ListRooms(ctx context.Context, user types.ID) ([]RoomDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	var pairings []Pairing
	if err := db.Where("low_user_id = ? OR high_user_id = ?", user, user).
		Order("create_time DESC").Order("id DESC").Find(&pairings).Error; err != nil {
		return nil, err
	}
	if len(pairings) == 0 {
		return []RoomDetail{}, nil
	}

	var roomIds []types.ID
	for _, p := range pairings {
		roomIds = append(roomIds, p.RoomID)
	}
	var rooms []Room
	if err := db.Where("id IN (?)", roomIds).Find(&rooms).Error; err != nil {
		return nil, err
	}
	roomMap := map[types.ID]Room{}
	for _, r := range rooms {
		roomMap[r.ID] = r
	}

	details := []RoomDetail{}
	for i := range pairings {
		r, ok := roomMap[pairings[i].RoomID]
		if !ok {
			continue
		}
		details = append(details, RoomDetail{Room: r, OtherUserID: pairings[i].Other(user)})
	}
	return details, nil
}

// DetailRoom is only visible to the two participants of the room.
func DetailRoom(ctx context.Context, id types.ID, user types.ID) (*RoomDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	room := Room{}
	if err := db.Where("id = ?", id).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	p := Pairing{}
	if err := db.Where("room_id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if !p.Includes(user) {
		return nil, bizerror.ErrForbidden
	}
	return &RoomDetail{Room: room, OtherUserID: p.Other(user)}, nil
}

// DeleteRoom removes a room together with its pairing.
func DeleteRoom(tx *gorm.DB, id types.ID) error {
	if err := tx.Where("room_id = ?", id).Delete(&Pairing{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&Room{}).Error
}

func findRoomOfPair(db *gorm.DB, low, high types.ID) (*Room, error) {
	p := Pairing{}
	if err := db.Where("low_user_id = ? AND high_user_id = ?", low, high).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	room := Room{}
	if err := db.Where("id = ?", p.RoomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}
