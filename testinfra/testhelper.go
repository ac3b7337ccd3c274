package testinfra

import (
	"bidhub/session"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// ExecuteRequest serves req with router and returns status, body and the raw response.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	body, _ := ioutil.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, string(body), resp
}

// BuildSecCtx build security context
func BuildSecCtx(uid types.ID, name string, role string) *session.Context {
	return &session.Context{Token: "token-" + uid.String(), Identity: session.Identity{ID: uid, Name: name}, Role: role}
}

// InjectSecCtx returns a middleware placing sec into every request, standing in for the auth filter.
func InjectSecCtx(sec *session.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.SaveSecurityContext(c, sec)
		c.Next()
	}
}
