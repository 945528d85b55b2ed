// Package api provides the HTTP client for the asset management REST API.
//
// # Overview
//
// The server wraps every response in a {status, message, data} envelope.
// The client unwraps data into the typed structs in types.go and turns
// error statuses into *Error values carrying the server's message.
//
// # Authentication
//
// Tokens live in a session.Store. Every request carries the stored access
// token. When the server answers 401 the client exchanges the refresh token
// at /auth/refresh, saves the new pair and replays the original request
// once. Concurrent 401s share one exchange.
//
// When the exchange fails the stored session is cleared and the call
// returns a *SessionExpiredError, which matches ErrSessionExpired through
// errors.Is. Callers react by sending the user back to the login screen:
//
//	assets, err := client.AllAssets(ctx, api.AssetQuery{})
//	if errors.Is(err, api.ErrSessionExpired) {
//		// show login
//	}
//
// Without a refresh token the original 401 is returned unchanged.
//
// # Collections
//
// List endpoints answer with either a bare array or a paged
// {items, total, skip, limit} object; both decode into List. A 404 from a
// list endpoint means "nothing matched" and yields an empty List. The
// All* helpers page through skip/limit until the server's total is reached.
package api
