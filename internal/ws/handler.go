package ws

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"conrelay/internal/domain"
	"conrelay/internal/registry"
	"conrelay/internal/security"
	"conrelay/internal/service"
)

// clientEvent is the union of every inbound frame. The Type field selects
// which of the remaining fields matter.
type clientEvent struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	TempID    string `json:"temp_id"`
	Contact   string `json:"contact"`
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if _, wildcard := allowed["*"]; wildcard || len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			// Non-browser clients send no Origin header.
			return true
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

// extractToken pulls an optional bearer token from the upgrade request,
// either from the Authorization header or the "bearer,<token>" subprotocol
// browsers are limited to.
func extractToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		if token := strings.TrimSpace(authHeader[len("Bearer "):]); token != "" {
			return token
		}
	}

	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	return ""
}

// MakeHandler returns the HTTP handler for the /ws endpoint. A connection may
// authenticate up front with a bearer token, or later with a login event;
// until one of those happens, only login and register frames have any effect.
// Dispatched events:
//   - login / register        -> credential store
//   - get_online_users        -> registry snapshot
//   - start_typing / stop_typing -> typing relay to recipient
//   - send_message            -> delivery engine (store, fan-out, ack)
//   - get_message_history     -> history push + read marking
func MakeHandler(
	hub *Hub,
	reg *registry.Registry,
	auth *service.AuthService,
	delivery *service.DeliveryService,
	presence *service.PresenceService,
	tokens *security.TokenService,
	allowedOrigins []string,
	log *slog.Logger,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin:  checkOrigin,
		Subprotocols: []string{"bearer"},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		// A bearer token on the upgrade request logs the connection in
		// before the first frame.
		var tokenUser string
		if tokenStr := extractToken(r); tokenStr != "" {
			sub, err := tokens.Subject(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			user, err := auth.Lookup(r.Context(), sub)
			if err != nil || user == nil {
				http.Error(w, "user not found", http.StatusUnauthorized)
				return
			}
			tokenUser = user.Username
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		c := newClient(conn, log)
		hub.add(c)
		go c.writePump()

		defer func() {
			hub.remove(c.ID)
			if username, last, ok := reg.Unbind(c.ID); ok && last {
				presence.Announce(username, false)
			}
		}()

		// session is the username this connection acts as; empty until
		// authenticated.
		var session string

		completeLogin := func(username string) {
			session = domain.NormalizeUsername(username)
			first := reg.Bind(session, c.ID)
			hub.SendTo([]string{c.ID}, service.AuthSuccessEvent{
				Type:     service.EventAuthSuccess,
				Username: session,
			})
			if first {
				presence.Announce(session, true)
			}
			delivery.DeliverPending(session)
			log.Info("login", "user", session, "conn", c.ID)
		}

		if tokenUser != "" {
			completeLogin(tokenUser)
		}

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			var ev clientEvent
			if err := conn.ReadJSON(&ev); err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure) {
					log.Debug("read failed", "conn", c.ID, "error", err)
				}
				return
			}

			switch ev.Type {

			case "login":
				user, err := auth.Authenticate(r.Context(), ev.Username, ev.Password)
				if err != nil {
					hub.SendTo([]string{c.ID}, service.NoticeEvent{
						Type:    service.EventAuthError,
						Message: userFacing(err),
					})
					continue
				}
				completeLogin(user.Username)

			case "register":
				if _, err := auth.Register(r.Context(), ev.Username, ev.Password); err != nil {
					hub.SendTo([]string{c.ID}, service.NoticeEvent{
						Type:    service.EventRegError,
						Message: userFacing(err),
					})
					continue
				}
				hub.SendTo([]string{c.ID}, service.NoticeEvent{
					Type:    service.EventRegSuccess,
					Message: "account created",
				})

			case "get_online_users":
				hub.SendTo([]string{c.ID}, service.OnlineUsersEvent{
					Type:  service.EventOnlineUsers,
					Users: reg.ListOnline(session),
				})

			case "start_typing":
				presence.RelayTyping(session, ev.Recipient, true)

			case "stop_typing":
				presence.RelayTyping(session, ev.Recipient, false)

			case "send_message":
				delivery.Send(c.ID, session, ev.Recipient, ev.Message, ev.TempID)

			case "get_message_history":
				delivery.FetchHistory(c.ID, session, ev.Contact)

			default:
				log.Debug("unknown event type", "type", ev.Type, "conn", c.ID)
			}
		}
	}
}

// userFacing returns the error text safe to surface to a client. Domain
// sentinels carry user-facing messages; anything else is an internal fault.
func userFacing(err error) string {
	for _, sentinel := range []error{
		domain.ErrInvalidCredentials,
		domain.ErrMissingField,
		domain.ErrUsernameTaken,
		domain.ErrUsernameTooShort,
		domain.ErrPasswordTooShort,
		domain.ErrInvalidInput,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}
