// Package http exposes the members API over net/http.
//
// Public routes:
//   - GET /health: liveness plus a storage ping.
//   - POST /sessions: exchanges {"id_token"} from the identity provider for a
//     session. The token is returned in the body, the `X-Session-Token` header
//     and the `session_token` cookie.
//
// Every other route requires a session supplied as `Authorization: Bearer`
// or the `session_token` cookie:
//   - DELETE /sessions/current, GET /me, POST /accept-invite.
//   - GET|POST /events, GET|PUT /events/{id}.
//   - GET|POST /restaurants, POST|DELETE /restaurants/vote, and the same four
//     routes under /dates.
//   - GET /polls/current, POST /polls, POST /polls/close.
//   - GET|POST /rsvp.
//   - GET|POST|PUT|DELETE /members.
//
// Failures are always written as {"error": "...", "details": {...}} with the
// status chosen by the responder from the application error taxonomy.
package http
