package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/codered/internal/common/clock"
	"github.com/KirkDiggler/codered/internal/crdt"
)

const (
	// DefaultGracePeriod is how long a document without peers survives
	DefaultGracePeriod = 30 * time.Second

	// seedSite is the site name used for server-authored content
	seedSite = "server"
)

var nullState = json.RawMessage("null")

// Config holds configuration for the relay service
type Config struct {
	Clock clock.Clock

	// GracePeriod overrides DefaultGracePeriod when positive
	GracePeriod time.Duration
}

// document is the relay's view of one room
type document struct {
	mu        sync.Mutex
	doc       *crdt.Document
	peers     map[Peer]struct{}
	awareness map[string]json.RawMessage
	gcTimer   clock.Timer
	closed    bool
}

type service struct {
	mu          sync.Mutex
	docs        map[string]*document
	clock       clock.Clock
	gracePeriod time.Duration
}

// New creates a new relay service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	grace := cfg.GracePeriod
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	return &service{
		docs:        make(map[string]*document),
		clock:       cfg.Clock,
		gracePeriod: grace,
	}, nil
}

// acquire returns the room's document locked, creating it when missing
func (s *service) acquire(code string) *document {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[code]
	if !ok {
		d = &document{
			doc:       crdt.New(),
			peers:     make(map[Peer]struct{}),
			awareness: make(map[string]json.RawMessage),
		}
		s.docs[code] = d
	}
	d.mu.Lock()
	return d
}

// lookup returns the room's document locked, or nil
func (s *service) lookup(code string) *document {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[code]
	if !ok {
		return nil
	}
	d.mu.Lock()
	return d
}

// Connect attaches the peer and pushes state followed by the awareness snapshot
func (s *service) Connect(ctx context.Context, input *ConnectInput) error {
	if input == nil || input.Peer == nil {
		return ErrNilPeer
	}
	if input.RoomCode == "" {
		return ErrEmptyRoomCode
	}

	d := s.acquire(input.RoomCode)
	defer d.mu.Unlock()

	if d.gcTimer != nil {
		d.gcTimer.Stop()
		d.gcTimer = nil
	}
	d.peers[input.Peer] = struct{}{}

	send(input.Peer, &Message{Type: MessageSyncResponse, Update: d.doc.EncodeState()})
	for participantID, state := range d.awareness {
		send(input.Peer, &Message{Type: MessageAwareness, ParticipantID: participantID, State: state})
	}

	log.Debug().
		Str("room", input.RoomCode).
		Str("participant", input.Peer.ParticipantID()).
		Int("peers", len(d.peers)).
		Msg("Document peer connected")

	return nil
}

// Receive handles one frame from a peer. Malformed updates are dropped without closing the peer.
func (s *service) Receive(ctx context.Context, input *ReceiveInput) error {
	if input == nil || input.Peer == nil {
		return ErrNilPeer
	}

	var msg Message
	if err := json.Unmarshal(input.Data, &msg); err != nil {
		return fmt.Errorf("%w: %v", crdt.ErrMalformedUpdate, err)
	}

	d := s.lookup(input.RoomCode)
	if d == nil {
		return ErrDocumentNotFound
	}
	defer d.mu.Unlock()

	switch msg.Type {
	case MessageSyncRequest:
		send(input.Peer, &Message{Type: MessageSyncResponse, Update: d.doc.EncodeState()})

	case MessageUpdate, MessageSyncResponse:
		if err := d.doc.Apply(msg.Update); err != nil {
			log.Warn().
				Err(err).
				Str("room", input.RoomCode).
				Str("participant", input.Peer.ParticipantID()).
				Msg("Dropping malformed document update")
			return err
		}
		relayed := input.Data
		if msg.Type == MessageSyncResponse {
			relayed = marshal(&Message{Type: MessageUpdate, Update: msg.Update})
		}
		d.broadcast(relayed, input.Peer)

	case MessageAwareness:
		participantID := input.Peer.ParticipantID()
		if isNull(msg.State) {
			delete(d.awareness, participantID)
			msg.State = nullState
		} else {
			d.awareness[participantID] = msg.State
		}
		msg.ParticipantID = participantID
		d.broadcast(marshal(&msg), input.Peer)

	default:
		return ErrUnknownMessage
	}

	return nil
}

// Disconnect detaches the peer. The last peer leaving starts the grace timer.
func (s *service) Disconnect(ctx context.Context, input *DisconnectInput) error {
	if input == nil || input.Peer == nil {
		return ErrNilPeer
	}

	d := s.lookup(input.RoomCode)
	if d == nil {
		return nil
	}
	defer d.mu.Unlock()

	if _, ok := d.peers[input.Peer]; !ok {
		return nil
	}
	delete(d.peers, input.Peer)

	participantID := input.Peer.ParticipantID()
	if !peerFor(d, participantID) {
		delete(d.awareness, participantID)
		d.broadcast(marshal(&Message{Type: MessageAwareness, ParticipantID: participantID, State: nullState}), nil)
	}

	if len(d.peers) == 0 && !d.closed {
		code := input.RoomCode
		d.gcTimer = s.clock.AfterFunc(s.gracePeriod, func() {
			s.collect(code, d)
		})
	}

	return nil
}

// collect drops the document if it is still the live one for the room and has no peers
func (s *service) collect(code string, d *document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs[code] != d {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.peers) > 0 {
		return
	}
	d.closed = true
	delete(s.docs, code)

	log.Debug().Str("room", code).Msg("Collected idle document")
}

// Seed replaces the document content and tells every peer to reset to it
func (s *service) Seed(ctx context.Context, input *SeedInput) error {
	if input == nil || input.RoomCode == "" {
		return ErrEmptyRoomCode
	}

	site := seedSite
	if input.Generation != "" {
		site = seedSite + ":" + input.Generation
	}

	doc := crdt.New()
	if _, err := doc.Insert(site, 0, input.Text); err != nil {
		return fmt.Errorf("failed to seed document: %w", err)
	}

	d := s.acquire(input.RoomCode)
	defer d.mu.Unlock()

	d.doc = doc
	d.broadcast(marshal(&Message{Type: MessageSyncResponse, Update: doc.EncodeState(), Reset: true}), nil)

	return nil
}

// Destroy removes the document and closes every peer
func (s *service) Destroy(ctx context.Context, input *DestroyInput) error {
	if input == nil || input.RoomCode == "" {
		return ErrEmptyRoomCode
	}

	s.mu.Lock()
	d, ok := s.docs[input.RoomCode]
	delete(s.docs, input.RoomCode)
	s.mu.Unlock()

	if !ok {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.gcTimer != nil {
		d.gcTimer.Stop()
		d.gcTimer = nil
	}
	for peer := range d.peers {
		peer.Close()
	}
	d.peers = make(map[Peer]struct{})

	return nil
}

func (s *service) GetText(ctx context.Context, input *GetTextInput) (*GetTextOutput, error) {
	if input == nil || input.RoomCode == "" {
		return nil, ErrEmptyRoomCode
	}

	d := s.lookup(input.RoomCode)
	if d == nil {
		return nil, ErrDocumentNotFound
	}
	defer d.mu.Unlock()

	return &GetTextOutput{Text: d.doc.Text(), Peers: len(d.peers)}, nil
}

// broadcast sends to every peer except the excluded one
func (d *document) broadcast(data []byte, exclude Peer) {
	for peer := range d.peers {
		if peer == exclude {
			continue
		}
		if !peer.Send(data) {
			log.Debug().Str("participant", peer.ParticipantID()).Msg("Dropped document message for slow peer")
		}
	}
}

// peerFor reports whether the participant still has another connection open
func peerFor(d *document, participantID string) bool {
	for peer := range d.peers {
		if peer.ParticipantID() == participantID {
			return true
		}
	}
	return false
}

func send(peer Peer, msg *Message) {
	peer.Send(marshal(msg))
}

func marshal(msg *Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Int("type", int(msg.Type)).Msg("Failed to marshal document message")
		return nil
	}
	return data
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// IsMalformed reports whether err came from a bad frame rather than a server problem
func IsMalformed(err error) bool {
	return errors.Is(err, crdt.ErrMalformedUpdate)
}
