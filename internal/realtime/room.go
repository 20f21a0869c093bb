package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// EventType names a room lifecycle or data event delivered to observers.
type EventType string

const (
	EventParticipantJoined EventType = "participant_joined"
	EventTrackSubscribed   EventType = "track_subscribed"
	EventDataReceived      EventType = "data_received"
	EventDisconnected      EventType = "participant_disconnected"
)

// Event describes something that happened inside a room.
type Event struct {
	Type     EventType
	Room     string
	Identity string
	Payload  []byte
}

// EventSink receives room events. The session manager implements this to
// drive interview state transitions.
type EventSink interface {
	HandleRoomEvent(ctx context.Context, evt Event)
}

// Room holds the participants of one interview and the in-process agent
// dispatcher that serves protocol calls addressed to AgentIdentity.
type Room struct {
	Name string

	mu      sync.RWMutex
	clients map[string]*Client
	agent   *Dispatcher
	sink    EventSink
	closed  bool
}

func (r *Room) addClient(c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.clients[c.identity]
	r.clients[c.identity] = c
	return prev
}

func (r *Room) removeClient(c *Client) {
	r.mu.Lock()
	if r.clients[c.identity] == c {
		delete(r.clients, c.identity)
	}
	r.mu.Unlock()
}

func (r *Room) client(identity string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[identity]
}

// deliver routes a data frame from a participant. Frames addressed to the
// agent are dispatched as RPC and the reply goes back to the sender;
// anything else is forwarded to the addressed participant verbatim.
func (r *Room) deliver(ctx context.Context, from string, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		log.Printf("⚠️ Room %s: dropping malformed frame from %s: %v", r.Name, from, err)
		return
	}

	if r.sink != nil {
		r.sink.HandleRoomEvent(ctx, Event{
			Type:     EventDataReceived,
			Room:     r.Name,
			Identity: from,
			Payload:  frame,
		})
	}

	if env.To == AgentIdentity {
		if r.agent == nil {
			r.sendReply(from, Reply{ID: env.ID, Error: &ReplyError{
				Kind:    "external_service",
				Message: "agent not available",
			}})
			return
		}
		reply := r.agent.Dispatch(ctx, r.Name, from, env)
		r.sendReply(from, reply)
		return
	}

	if peer := r.client(env.To); peer != nil {
		peer.Send(frame)
	}
}

func (r *Room) sendReply(identity string, reply Reply) {
	data, err := json.Marshal(reply)
	if err != nil {
		log.Printf("❌ Room %s: failed to encode reply: %v", r.Name, err)
		return
	}
	if c := r.client(identity); c != nil {
		c.Send(data)
	}
}

// Publish sends a server-originated frame to one participant, or to all
// participants when identity is empty.
func (r *Room) Publish(identity string, frame []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if identity != "" {
		if c := r.clients[identity]; c != nil {
			c.Send(frame)
		}
		return
	}
	for _, c := range r.clients {
		c.Send(frame)
	}
}

// RoomServer manages interview rooms and fans lifecycle events out to the
// registered sink.
type RoomServer struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	agent *Dispatcher
	sink  EventSink
}

func NewRoomServer(agent *Dispatcher) *RoomServer {
	return &RoomServer{
		rooms: make(map[string]*Room),
		agent: agent,
	}
}

// SetEventSink registers the observer that receives room events. Must be
// called before the server accepts connections.
func (s *RoomServer) SetEventSink(sink EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
	for _, r := range s.rooms {
		r.sink = sink
	}
}

// Room returns the named room, creating it on first use.
func (s *RoomServer) Room(name string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[name]; ok {
		return r
	}
	r := &Room{
		Name:    name,
		clients: make(map[string]*Client),
		agent:   s.agent,
		sink:    s.sink,
	}
	s.rooms[name] = r
	return r
}

// CloseRoom drops the room and disconnects any remaining participants. A
// closing notice goes out first so clients can tear down cleanly.
func (s *RoomServer) CloseRoom(name string) {
	s.mu.Lock()
	r, ok := s.rooms[name]
	if ok {
		delete(s.rooms, name)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if notice, err := json.Marshal(map[string]string{"type": "room_closed", "room": name}); err == nil {
		r.Publish("", notice)
	}

	r.mu.Lock()
	r.closed = true
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	log.Printf("🔒 Room %s closed", name)
}

// Join attaches a connected client to its room and emits the join events.
// A previous connection under the same identity is superseded.
func (s *RoomServer) Join(ctx context.Context, c *Client) {
	room := s.Room(c.room)
	if prev := room.addClient(c); prev != nil {
		prev.Close()
	}
	log.Printf("🔗 Participant %s joined room %s", c.identity, c.room)

	if room.sink != nil {
		room.sink.HandleRoomEvent(ctx, Event{Type: EventParticipantJoined, Room: c.room, Identity: c.identity})
		// Media tracks are negotiated by the clients; from the backend's view
		// a joined participant is immediately subscribable.
		room.sink.HandleRoomEvent(ctx, Event{Type: EventTrackSubscribed, Room: c.room, Identity: c.identity})
	}
}

// Leave detaches a client and emits the disconnect event unless the room
// was already closed by the server.
func (s *RoomServer) Leave(ctx context.Context, c *Client) {
	s.mu.RLock()
	room, ok := s.rooms[c.room]
	s.mu.RUnlock()
	if !ok {
		return
	}

	room.removeClient(c)
	log.Printf("👋 Participant %s left room %s", c.identity, c.room)

	room.mu.RLock()
	closed := room.closed
	sink := room.sink
	room.mu.RUnlock()
	if !closed && sink != nil {
		sink.HandleRoomEvent(ctx, Event{Type: EventDisconnected, Room: c.room, Identity: c.identity})
	}
}

func (s *RoomServer) deliver(from *Client, frame []byte) {
	s.mu.RLock()
	room, ok := s.rooms[from.room]
	s.mu.RUnlock()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	room.deliver(ctx, from.identity, frame)
}
