package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/KirkDiggler/codered/internal/common/roomcode"
	"github.com/KirkDiggler/codered/internal/common/uuid"
	"github.com/KirkDiggler/codered/internal/services/game"
)

const (
	// DefaultRateLimit is the sustained inbound frames per second per connection
	DefaultRateLimit rate.Limit = 10

	// DefaultRateBurst is the inbound burst allowance per connection
	DefaultRateBurst = 20
)

// Config holds configuration for the game socket handler
type Config struct {
	GameService   game.Service
	Hub           *Hub
	UUIDGenerator uuid.UUID

	// AllowedOrigins restricts browser origins; empty allows any
	AllowedOrigins []string

	RateLimit rate.Limit
	RateBurst int
}

// Handler serves the game socket: requests in, acks and room events out
type Handler struct {
	game      game.Service
	hub       *Hub
	uuid      uuid.UUID
	upgrader  websocket.Upgrader
	rateLimit rate.Limit
	rateBurst int
}

// NewHandler creates a new game socket handler
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.GameService == nil {
		return nil, ErrNilGameService
	}
	if cfg.Hub == nil {
		return nil, ErrNilHub
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUID
	}

	h := &Handler{
		game:      cfg.GameService,
		hub:       cfg.Hub,
		uuid:      cfg.UUIDGenerator,
		upgrader:  newUpgrader(cfg.AllowedOrigins),
		rateLimit: cfg.RateLimit,
		rateBurst: cfg.RateBurst,
	}
	if h.rateLimit <= 0 {
		h.rateLimit = DefaultRateLimit
	}
	if h.rateBurst <= 0 {
		h.rateBurst = DefaultRateBurst
	}

	return h, nil
}

// ServeHTTP upgrades the request and serves the connection until it closes.
// Closing the connection leaves the room.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Websocket upgrade failed")
		return
	}

	c := &client{
		connection: newConnection(socket),
		limiter:    rate.NewLimiter(h.rateLimit, h.rateBurst),
	}
	go c.writePump()

	ctx := context.WithoutCancel(r.Context())
	for {
		data, err := c.read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("participant", c.participantID()).Msg("Websocket closed unexpectedly")
			}
			break
		}
		h.handle(ctx, c, data)
	}

	h.disconnect(ctx, c)
	c.close()
}

func (h *Handler) handle(ctx context.Context, c *client, data []byte) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil || req.Action == "" {
		c.reply(newAck(req.ID, nil, ErrInvalidFrame))
		return
	}
	if !c.limiter.Allow() {
		c.reply(newAck(req.ID, nil, ErrRateLimited))
		return
	}

	result, err := h.dispatch(ctx, c, &req)
	if err != nil {
		log.Debug().
			Err(err).
			Str("participant", c.participantID()).
			Str("action", string(req.Action)).
			Msg("Request rejected")
	}
	c.reply(newAck(req.ID, result, err))
}

func (h *Handler) dispatch(ctx context.Context, c *client, req *Request) (any, error) {
	switch req.Action {
	case ActionCreateRoom:
		return h.createRoom(ctx, c, req.Payload)
	case ActionJoinRoom:
		return h.joinRoom(ctx, c, req.Payload)
	}

	code, id := c.binding()
	if code == "" {
		return nil, ErrNotInRoom
	}

	switch req.Action {
	case ActionToggleReady:
		out, err := h.game.ToggleReady(ctx, &game.ToggleReadyInput{RoomCode: code, ParticipantID: id})
		if err != nil {
			return nil, err
		}
		return &ReadyData{IsReady: out.IsReady}, nil

	case ActionStartGame:
		out, err := h.game.StartGame(ctx, &game.StartGameInput{RoomCode: code, ParticipantID: id})
		if err != nil {
			return nil, err
		}
		return &RoomData{Room: out.Room}, nil

	case ActionBuzz:
		var p BuzzPayload
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		out, err := h.game.Buzz(ctx, &game.BuzzInput{RoomCode: code, ParticipantID: id, SuspectID: p.SuspectID})
		if err != nil {
			return nil, err
		}
		return &BuzzData{VoteID: out.VoteID}, nil

	case ActionCastVote:
		var p CastVotePayload
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		out, err := h.game.CastVote(ctx, &game.CastVoteInput{
			RoomCode:      code,
			ParticipantID: id,
			TargetID:      p.TargetID,
			Abstain:       p.Abstain,
		})
		if err != nil {
			return nil, err
		}
		return &VoteData{Resolved: out.Resolved}, nil

	case ActionSubmitFix:
		var p ContentPayload
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		out, err := h.game.SubmitFix(ctx, &game.SubmitFixInput{RoomCode: code, ParticipantID: id, Content: p.Content})
		if err != nil {
			return nil, err
		}
		return &FixData{IsCorrect: out.IsCorrect, Explanation: out.Explanation}, nil

	case ActionSubmitDefectUpdate:
		var p ContentPayload
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		_, err := h.game.SubmitDefectUpdate(ctx, &game.SubmitDefectUpdateInput{RoomCode: code, ParticipantID: id, Content: p.Content})
		return nil, err

	case ActionPlayAgain:
		out, err := h.game.PlayAgain(ctx, &game.PlayAgainInput{RoomCode: code, ParticipantID: id})
		if err != nil {
			return nil, err
		}
		return &RoomData{Room: out.Room}, nil

	case ActionChatMessage:
		var p ChatPayload
		if err := decode(req.Payload, &p); err != nil {
			return nil, err
		}
		_, err := h.game.SendChat(ctx, &game.SendChatInput{RoomCode: code, ParticipantID: id, Text: p.Text})
		return nil, err

	case ActionGetRoom:
		out, err := h.game.GetRoom(ctx, &game.GetRoomInput{RoomCode: code, ParticipantID: id})
		if err != nil {
			return nil, err
		}
		return &RoomData{Room: out.Room, Role: out.Role}, nil

	case ActionLeave:
		h.unbind(c)
		_, err := h.game.LeaveRoom(ctx, &game.LeaveRoomInput{RoomCode: code, ParticipantID: id})
		return nil, err
	}

	return nil, ErrUnknownAction
}

func (h *Handler) createRoom(ctx context.Context, c *client, payload json.RawMessage) (any, error) {
	if code, _ := c.binding(); code != "" {
		return nil, ErrAlreadyInRoom
	}

	var p CreateRoomPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}

	out, err := h.game.CreateRoom(ctx, &game.CreateRoomInput{DisplayName: p.DisplayName})
	if err != nil {
		return nil, err
	}
	h.bind(c, out.RoomCode, out.ParticipantID)

	return &JoinedData{RoomCode: out.RoomCode, ParticipantID: out.ParticipantID, Room: out.Room}, nil
}

// joinRoom registers the connection before joining so it sees every event
// that follows the join, including a private role assignment.
func (h *Handler) joinRoom(ctx context.Context, c *client, payload json.RawMessage) (any, error) {
	if code, _ := c.binding(); code != "" {
		return nil, ErrAlreadyInRoom
	}

	var p JoinRoomPayload
	if err := decode(payload, &p); err != nil {
		return nil, err
	}
	code := roomcode.Normalize(p.RoomCode)
	if code == "" {
		return nil, ErrMissingRoomCode
	}

	id := h.uuid.NewUUID()
	h.bind(c, code, id)

	out, err := h.game.JoinRoom(ctx, &game.JoinRoomInput{
		RoomCode:      code,
		DisplayName:   p.DisplayName,
		ParticipantID: id,
	})
	if err != nil {
		h.unbind(c)
		return nil, err
	}

	return &JoinedData{RoomCode: out.RoomCode, ParticipantID: out.ParticipantID, Room: out.Room}, nil
}

func (h *Handler) bind(c *client, code, id string) {
	c.setBinding(code, id)
	h.hub.register(code, id, c)
}

func (h *Handler) unbind(c *client) {
	code, id := c.binding()
	if code == "" {
		return
	}
	h.hub.unregister(code, id, c)
	c.setBinding("", "")
}

// disconnect runs the leave path for a connection that went away while in a room
func (h *Handler) disconnect(ctx context.Context, c *client) {
	code, id := c.binding()
	if code == "" {
		return
	}
	h.unbind(c)

	_, err := h.game.LeaveRoom(ctx, &game.LeaveRoomInput{RoomCode: code, ParticipantID: id})
	if err != nil && !errors.Is(err, game.ErrRoomNotFound) && !errors.Is(err, game.ErrParticipantNotInRoom) {
		log.Warn().Err(err).Str("room", code).Str("participant", id).Msg("Failed to leave room on disconnect")
		return
	}

	log.Info().Str("room", code).Str("participant", id).Msg("Participant disconnected")
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return ErrInvalidPayload
	}
	return nil
}

func newUpgrader(allowed []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(allowed),
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(strings.TrimSuffix(a, "/"), origin) {
				return true
			}
		}
		return false
	}
}
