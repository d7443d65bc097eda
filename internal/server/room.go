package server

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Tyrowin/werewolf/internal/game"
	"github.com/Tyrowin/werewolf/internal/protocol"
)

// room owns one game.Session. Every membership change, player message and
// deadline expiry runs as a command on the room's goroutine, one at a time.
// Commands never block: outgoing frames are queued on the members' clients.
type room struct {
	id      string
	session *game.Session
	members map[game.PlayerID]peer
	seats   map[uuid.UUID]game.PlayerID

	inbox   chan func()
	done    chan struct{}
	closing bool
	now     func() time.Time
	onClose func(*room)

	timer    *time.Timer
	timerGen uint64
}

func newRoom(id string, session *game.Session, now func() time.Time, onClose func(*room)) *room {
	return &room{
		id:      id,
		session: session,
		members: make(map[game.PlayerID]peer),
		seats:   make(map[uuid.UUID]game.PlayerID),
		inbox:   make(chan func()),
		done:    make(chan struct{}),
		now:     now,
		onClose: onClose,
	}
}

func (rm *room) run() {
	defer close(rm.done)

	for cmd := range rm.inbox {
		cmd()
		if rm.closing {
			rm.stopTimer()
			if rm.onClose != nil {
				rm.onClose(rm)
			}
			return
		}
	}
}

// submit queues cmd on the room. It returns false once the room has closed.
func (rm *room) submit(cmd func()) bool {
	select {
	case rm.inbox <- cmd:
		return true
	case <-rm.done:
		return false
	}
}

// call runs fn on the room and waits for its result.
func (rm *room) call(fn func() error) error {
	result := make(chan error, 1)
	if !rm.submit(func() { result <- fn() }) {
		return ErrRoomNotFound
	}
	return <-result
}

func (rm *room) close() {
	rm.submit(func() { rm.closing = true })
}

func (rm *room) join(p peer, username string, created bool) error {
	return rm.call(func() error {
		id, err := rm.session.AddPlayer(username)
		if err != nil {
			return err
		}
		rm.members[id] = p
		rm.seats[p.ID()] = id

		info := rm.playersInfo()
		kind := protocol.TypeRoomJoined
		if created {
			kind = protocol.TypeRoomCreated
		}
		rm.sendTo(id, protocol.RoomMessage{Type: kind, RoomID: rm.id, PlayersInfo: info})
		rm.broadcastExcept(id, protocol.RosterMessage{Type: protocol.TypePlayerJoined, Username: username, PlayersInfo: info})
		log.Printf("room %s: %s joined (%d/%d)", rm.id, username, info.PlayerCount, info.MaxPlayers)
		return nil
	})
}

func (rm *room) leave(p peer) {
	rm.submit(func() {
		id, ok := rm.seats[p.ID()]
		if !ok {
			return
		}
		delete(rm.seats, p.ID())
		delete(rm.members, id)

		username := ""
		if pl := rm.session.Player(id); pl != nil {
			username = pl.Username
		}
		events := rm.session.RemovePlayer(id)
		log.Printf("room %s: %s left", rm.id, username)

		if len(rm.members) == 0 {
			rm.closing = true
			return
		}

		rm.broadcast(protocol.RosterMessage{Type: protocol.TypePlayerLeft, Username: username, PlayersInfo: rm.playersInfo()})
		rm.advance(events)
	})
}

// dispatch applies a game message from p. Messages from a peer that is no
// longer seated, or for a room that has closed, are dropped silently.
func (rm *room) dispatch(p peer, msg protocol.Inbound) {
	rm.submit(func() {
		id, ok := rm.seats[p.ID()]
		if !ok {
			return
		}

		switch msg.Type {
		case protocol.TypeChat:
			rm.broadcast(protocol.Chat{
				Type:     protocol.TypeChat,
				Username: rm.session.Player(id).Username,
				Content:  msg.Content,
			})

		case protocol.TypeStartGame:
			events, err := rm.session.Start(rm.now())
			if !rm.answer(id, err) {
				return
			}
			log.Printf("room %s: game started with %d players", rm.id, rm.session.PresentCount())
			rm.advance(events)

		case protocol.TypeNightAction:
			events, err := rm.session.SubmitNightAction(id, game.NightAction{
				Action:  msg.Action,
				Target:  msg.Target,
				Targets: msg.Targets,
			})
			if !rm.answer(id, err) {
				return
			}
			rm.advance(events)

		case protocol.TypeVote:
			if !rm.answer(id, rm.session.SubmitVote(id, msg.Target)) {
				return
			}
			rm.advance(nil)
		}
	})
}

// answer sends the actor its action_result and reports whether the action
// was accepted.
func (rm *room) answer(id game.PlayerID, err error) bool {
	if err != nil {
		rm.sendTo(id, rejection(err))
		return false
	}
	rm.sendTo(id, protocol.ActionResult{Type: protocol.TypeActionResult, Success: true})
	return true
}

// advance moves through every phase that is already satisfied, publishes
// the accumulated events and rearms the deadline if the phase changed.
func (rm *room) advance(events []game.Event) {
	s := rm.session
	for !s.Over() && s.Satisfied() {
		events = append(events, s.Transition(rm.now())...)
	}
	rm.publish(events)

	if s.Over() {
		rm.stopTimer()
		return
	}
	for _, e := range events {
		if _, ok := e.(game.PhaseChanged); ok {
			rm.armTimer()
			return
		}
	}
}

func (rm *room) armTimer() {
	rm.stopTimer()

	deadline := rm.session.Deadline()
	if deadline.IsZero() {
		return
	}
	gen := rm.timerGen
	rm.timer = time.AfterFunc(deadline.Sub(rm.now()), func() {
		rm.submit(func() { rm.expire(gen) })
	})
}

// stopTimer cancels the pending deadline. Bumping the generation also
// voids a firing that is already waiting in the inbox.
func (rm *room) stopTimer() {
	rm.timerGen++
	if rm.timer != nil {
		rm.timer.Stop()
		rm.timer = nil
	}
}

func (rm *room) expire(gen uint64) {
	if gen != rm.timerGen || rm.session.Over() {
		return
	}
	log.Printf("room %s: %s deadline expired", rm.id, rm.session.Phase())
	rm.advance(rm.session.Transition(rm.now()))
}

func (rm *room) playersInfo() protocol.PlayersInfo {
	roster := rm.session.Roster()
	return protocol.PlayersInfo{
		PlayerCount: roster.PlayerCount,
		MaxPlayers:  roster.MaxPlayers,
		Players:     roster.Players,
	}
}
