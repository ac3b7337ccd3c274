package common

import (
	"bidhub/bizerror"
	"errors"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BindingPathID parses the id path parameter, panics with ErrBadParam when it is malformed.
func BindingPathID(c *gin.Context) types.ID {
	raw := c.Param("id")
	id, err := types.ParseID(raw)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + raw + "'")})
	}
	return id
}

// QueryInt reads an optional integer query parameter.
func QueryInt(c *gin.Context, name string, defaultValue int) int {
	raw, found := c.GetQuery(name)
	if !found || raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid " + name + " '" + raw + "'")})
	}
	return v
}
