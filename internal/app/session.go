package app

import "net/http"

type sessionKey string

const (
	SessionKeyUserId = sessionKey("userID")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *Application) contextGetUserId(r *http.Request) int {
	userId, ok := r.Context().Value(SessionKeyUserId).(int)
	if !ok {
		panic("missing user id from context")
	}

	return userId
}

// contextGetConnectionId resolves the realtime client session identity for a
// request: an explicit X-Connection-Id header when the caller has a live
// socket, otherwise the HTTP session token.
func (app *Application) contextGetConnectionId(r *http.Request) string {
	if connectionId := r.Header.Get("X-Connection-Id"); connectionId != "" {
		return connectionId
	}

	return app.sessionManager.Token(r.Context())
}
