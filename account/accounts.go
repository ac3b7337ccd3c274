package account

import (
	"bidhub/bizerror"
	"bidhub/persistence"
	"bidhub/session"
	"context"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	FindUserFunc = FindUser
)

func FindUser(ctx context.Context, id types.ID) (*User, error) {
	user := User{}
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// SaveUser upserts the read model, used by the account synchronization of the auth layer.
func SaveUser(ctx context.Context, u *User) error {
	return persistence.ActiveDataSourceManager.GormDB(ctx).Save(u).Error
}

// CheckPairEligibility rejects conversations between participants of the same role and any
// conversation involving an administrator.
func CheckPairEligibility(ctx context.Context, a, b types.ID) error {
	userA, err := FindUserFunc(ctx, a)
	if err != nil {
		return err
	}
	userB, err := FindUserFunc(ctx, b)
	if err != nil {
		return err
	}
	if userA.Role == session.RoleAdmin || userB.Role == session.RoleAdmin || userA.Role == userB.Role {
		return bizerror.ErrForbidden
	}
	return nil
}
