package session

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

// Context is the authenticated caller as supplied by the upstream auth layer.
type Context struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
	Role     string   `json:"role"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
}

func (c *Context) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

func (c *Context) Is(id types.ID) bool {
	return c != nil && c.Identity.ID == id
}
