package account

import "github.com/fundwit/go-commons/types"

// User is the read model of a participant. Registration happens elsewhere, this service only
// reads names and roles.
type User struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Role     string   `json:"role"`
}

func (u *User) TableName() string {
	return "users"
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	} else {
		return u.Name
	}
}
