package server

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tyrowin/werewolf/internal/game"
	"github.com/Tyrowin/werewolf/internal/protocol"
)

const (
	minRoomID         = 1000
	maxRoomID         = 9999
	maxRoomIDAttempts = 10000
)

// Registry tracks connected clients and open rooms. Client registration
// runs through a single event loop; the room table is guarded by a mutex
// held only around insert, delete and lookup.
type Registry struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	clientsMu  sync.RWMutex

	mu      sync.Mutex
	rooms   map[string]*room
	members map[uuid.UUID]*room
	closing bool

	settings game.Settings
	now      func() time.Time
	roomID   func() string

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry creates a Registry whose rooms play by settings.
func NewRegistry(settings game.Settings) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]*room),
		members:    make(map[uuid.UUID]*room),
		settings:   settings,
		now:        time.Now,
		roomID:     randomRoomID,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

func randomRoomID() string {
	return strconv.Itoa(minRoomID + rand.IntN(maxRoomID-minRoomID+1))
}

// Run starts the registry's event loop, handling client registration and
// unregistration. It returns once Shutdown is called.
func (r *Registry) Run() {
	defer close(r.done)

	for {
		select {
		case <-r.ctx.Done():
			r.shutdownClients()
			return

		case client := <-r.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}

			r.clientsMu.Lock()
			r.clients[client] = true
			clientCount := len(r.clients)
			r.clientsMu.Unlock()
			log.Printf("Client registered from %s. Total clients: %d", client.addr, clientCount)

			r.wg.Add(2)
			go func() {
				defer r.wg.Done()
				client.writePump()
			}()
			go func() {
				defer r.wg.Done()
				client.readPump()
			}()

		case client := <-r.unregister:
			r.clientsMu.Lock()
			_, ok := r.clients[client]
			delete(r.clients, client)
			clientCount := len(r.clients)
			r.clientsMu.Unlock()

			if ok {
				r.dropClient(client)
				log.Printf("Client unregistered from %s. Total clients: %d", client.addr, clientCount)
			}
		}
	}
}

// Register hands a freshly connected client to the event loop, which starts
// its pumps.
func (r *Registry) Register(c *Client) {
	select {
	case r.register <- c:
	case <-r.done:
		c.closeConnection()
	}
}

// unregisterClient delivers the single disconnect notification of a client.
func (r *Registry) unregisterClient(c *Client) {
	select {
	case r.unregister <- c:
	case <-r.done:
		r.dropClient(c)
	}
}

func (r *Registry) dropClient(c *Client) {
	r.Leave(c)
	c.closeSend()
}

// ClientCount returns the number of registered clients.
func (r *Registry) ClientCount() int {
	r.clientsMu.RLock()
	defer r.clientsMu.RUnlock()
	return len(r.clients)
}

// RoomCount returns the number of open rooms.
func (r *Registry) RoomCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// CreateRoom opens an empty room under a fresh random id.
func (r *Registry) CreateRoom() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closing {
		return "", ErrShuttingDown
	}

	for range maxRoomIDAttempts {
		id := r.roomID()
		if _, taken := r.rooms[id]; taken {
			continue
		}

		rm := newRoom(id, game.NewSession(id, r.settings), r.now, r.removeRoom)
		r.rooms[id] = rm
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			rm.run()
		}()
		log.Printf("Room %s created. Open rooms: %d", id, len(r.rooms))
		return id, nil
	}
	return "", ErrNoRoomAvailable
}

// JoinRoom seats p in the room under username. The room answers p and the
// other members itself.
func (r *Registry) JoinRoom(roomID, username string, p peer) error {
	return r.join(roomID, username, p, false)
}

func (r *Registry) join(roomID, username string, p peer, created bool) error {
	r.mu.Lock()
	if _, in := r.members[p.ID()]; in {
		r.mu.Unlock()
		return ErrAlreadyInRoom
	}
	rm, ok := r.rooms[roomID]
	r.mu.Unlock()
	if !ok {
		return ErrRoomNotFound
	}

	if err := rm.join(p, username, created); err != nil {
		return err
	}

	r.mu.Lock()
	r.members[p.ID()] = rm
	r.mu.Unlock()
	return nil
}

// Leave removes p from its room, if any. It reports whether p was seated.
func (r *Registry) Leave(p peer) bool {
	r.mu.Lock()
	rm, ok := r.members[p.ID()]
	delete(r.members, p.ID())
	r.mu.Unlock()

	if !ok {
		return false
	}
	rm.leave(p)
	return true
}

func (r *Registry) roomOf(p peer) *room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members[p.ID()]
}

// removeRoom is called from the room's own goroutine once it closes.
func (r *Registry) removeRoom(rm *room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.rooms[rm.id]; ok && cur == rm {
		delete(r.rooms, rm.id)
	}
	log.Printf("Room %s closed. Open rooms: %d", rm.id, len(r.rooms))
}

func (r *Registry) route(c *Client, msg protocol.Inbound) {
	switch msg.Type {
	case protocol.TypeCreateRoom:
		r.createAndJoin(c, msg.Username)

	case protocol.TypeJoinRoom:
		if err := r.JoinRoom(string(msg.RoomID), msg.Username, c); err != nil {
			c.reply(rejection(err))
		}

	case protocol.TypeDisconnect:
		r.Leave(c)

	default:
		rm := r.roomOf(c)
		if rm == nil {
			c.replyError(ErrNotInRoom)
			return
		}
		rm.dispatch(c, msg)
	}
}

func (r *Registry) createAndJoin(c *Client, username string) {
	if r.roomOf(c) != nil {
		c.replyError(ErrAlreadyInRoom)
		return
	}

	id, err := r.CreateRoom()
	if err != nil {
		log.Printf("Error creating room for %s: %v", c.addr, err)
		c.replyError(err)
		return
	}

	if err := r.join(id, username, c, true); err != nil {
		r.mu.Lock()
		rm := r.rooms[id]
		r.mu.Unlock()
		if rm != nil {
			rm.close()
		}
		c.reply(rejection(err))
	}
}

// shutdownClients gracefully closes all active client connections
func (r *Registry) shutdownClients() {
	log.Println("Shutting down all client connections...")

	r.clientsMu.Lock()
	clients := make([]*Client, 0, len(r.clients))
	for client := range r.clients {
		clients = append(clients, client)
	}
	r.clientsMu.Unlock()

	for _, client := range clients {
		client.closeConnection()
	}

	log.Printf("Closed %d client connections", len(clients))
}

func (r *Registry) closeRooms() {
	r.mu.Lock()
	r.closing = true
	rooms := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	r.mu.Unlock()

	for _, rm := range rooms {
		rm.close()
	}
}

// Shutdown stops the event loop, closes every connection and room, and
// waits for their goroutines until timeout.
func (r *Registry) Shutdown(timeout time.Duration) error {
	log.Println("Initiating registry shutdown...")

	r.cancel()
	<-r.done
	r.closeRooms()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Registry shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Registry shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}

// rejection picks the dedicated message for membership failures and falls
// back to a failed action_result.
func rejection(err error) any {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return protocol.Notice{Type: protocol.TypeRoomNotFound, Message: err.Error()}
	case errors.Is(err, game.ErrRoomFull):
		return protocol.Notice{Type: protocol.TypeRoomFull, Message: err.Error()}
	case errors.Is(err, game.ErrGameAlreadyStarted):
		return protocol.Notice{Type: protocol.TypeGameAlreadyStarted, Message: err.Error()}
	}
	return protocol.ActionResult{Type: protocol.TypeActionResult, Success: false, Message: err.Error()}
}
