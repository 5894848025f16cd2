package ws

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/codered/internal/common/roomcode"
	"github.com/KirkDiggler/codered/internal/services/game"
	"github.com/KirkDiggler/codered/internal/services/relay"
)

// DocConfig holds configuration for the document socket handler
type DocConfig struct {
	GameService game.Service
	Documents   relay.Service

	// AllowedOrigins restricts browser origins; empty allows any
	AllowedOrigins []string
}

// DocHandler serves /doc/{code}: one socket per member carrying relay messages
type DocHandler struct {
	game      game.Service
	documents relay.Service
	upgrader  websocket.Upgrader
}

// NewDocHandler creates a new document socket handler
func NewDocHandler(cfg *DocConfig) (*DocHandler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.GameService == nil {
		return nil, ErrNilGameService
	}
	if cfg.Documents == nil {
		return nil, ErrNilDocuments
	}

	return &DocHandler{
		game:      cfg.GameService,
		documents: cfg.Documents,
		upgrader:  newUpgrader(cfg.AllowedOrigins),
	}, nil
}

// docPeer adapts a socket to relay.Peer
type docPeer struct {
	*connection
	id string
}

func (p *docPeer) ParticipantID() string {
	return p.id
}

func (p *docPeer) Send(msg []byte) bool {
	return p.enqueue(msg)
}

func (p *docPeer) Close() {
	p.close()
}

// ServeHTTP admits members of the room only
func (h *DocHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := roomcode.Normalize(chi.URLParam(r, "code"))
	participantID := r.URL.Query().Get("participantId")

	if _, err := h.game.GetRoom(r.Context(), &game.GetRoomInput{RoomCode: code, ParticipantID: participantID}); err != nil {
		status := http.StatusForbidden
		if errors.Is(err, game.ErrRoomNotFound) || errors.Is(err, game.ErrInvalidRoomCode) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("room", code).Msg("Document websocket upgrade failed")
		return
	}

	peer := &docPeer{connection: newConnection(socket), id: participantID}
	go peer.writePump()

	ctx := context.WithoutCancel(r.Context())
	if err := h.documents.Connect(ctx, &relay.ConnectInput{RoomCode: code, Peer: peer}); err != nil {
		log.Error().Err(err).Str("room", code).Msg("Failed to attach document peer")
		peer.close()
		return
	}

	for {
		data, err := peer.read()
		if err != nil {
			break
		}

		err = h.documents.Receive(ctx, &relay.ReceiveInput{RoomCode: code, Peer: peer, Data: data})
		if err == nil || relay.IsMalformed(err) {
			continue
		}
		if errors.Is(err, relay.ErrDocumentNotFound) {
			break
		}
		log.Warn().Err(err).Str("room", code).Str("participant", participantID).Msg("Document message rejected")
	}

	if err := h.documents.Disconnect(ctx, &relay.DisconnectInput{RoomCode: code, Peer: peer}); err != nil && !errors.Is(err, relay.ErrDocumentNotFound) {
		log.Warn().Err(err).Str("room", code).Msg("Failed to detach document peer")
	}
	peer.close()
}
