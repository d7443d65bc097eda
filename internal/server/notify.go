package server

import (
	"log"
	"time"

	"github.com/Tyrowin/werewolf/internal/game"
	"github.com/Tyrowin/werewolf/internal/protocol"
)

const hunterRevengeNotice = `The hunter is dead. Send night_action "shoot" with a target to take someone down too.`

// publish turns game events into frames. Private events go to their single
// recipient; the rest go to the whole room.
func (rm *room) publish(events []game.Event) {
	for _, e := range events {
		switch ev := e.(type) {
		case game.RoleAssigned:
			rm.sendTo(ev.Player, protocol.GameStarted{Type: protocol.TypeGameStarted, Role: ev.Role.String()})
		case game.PhaseChanged:
			rm.broadcast(protocol.PhaseChange{Type: protocol.TypePhaseChange, Phase: ev.Phase.String(), Turn: ev.Turn})
			rm.broadcast(protocol.PhaseTimer{Type: protocol.TypePhaseTimer, Duration: int(ev.Duration / time.Second)})
		case game.PlayerDied:
			rm.broadcast(protocol.PlayerDeath{Type: protocol.TypePlayerDeath, Username: ev.Username})
		case game.SeerVision:
			rm.sendTo(ev.Seer, protocol.SeerResult{Type: protocol.TypeSeerResult, Target: ev.Target, Role: ev.Role.String()})
		case game.WitchVictim:
			rm.sendTo(ev.Witch, protocol.VictimInfo{Type: protocol.TypeVictimInfo, Victim: ev.Victim})
		case game.LoverBound:
			rm.sendTo(ev.Player, protocol.LoverInfo{Type: protocol.TypeLoverInfo, Partner: ev.Partner})
		case game.HunterRevenge:
			rm.sendTo(ev.Hunter, protocol.Notice{Type: protocol.TypeHunterRevenge, Message: hunterRevengeNotice})
		case game.GameOver:
			log.Printf("room %s: game over, winner %s", rm.id, ev.Winner)
			rm.broadcast(protocol.GameOver{Type: protocol.TypeGameOver, Winner: string(ev.Winner)})
		}
	}
}

func (rm *room) encode(msg any) []byte {
	frame, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("room %s: error encoding %T: %v", rm.id, msg, err)
		return nil
	}
	return frame
}

func (rm *room) sendTo(id game.PlayerID, msg any) {
	p, ok := rm.members[id]
	if !ok {
		return
	}
	if frame := rm.encode(msg); frame != nil {
		p.Send(frame)
	}
}

func (rm *room) broadcast(msg any) {
	rm.broadcastExcept(game.NoPlayer, msg)
}

func (rm *room) broadcastExcept(skip game.PlayerID, msg any) {
	frame := rm.encode(msg)
	if frame == nil {
		return
	}
	for id, p := range rm.members {
		if id != skip {
			p.Send(frame)
		}
	}
}
