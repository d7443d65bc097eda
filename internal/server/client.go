package server

import (
	"bufio"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Tyrowin/werewolf/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// transport is the byte-level side of a connection. A read returns one
// transport unit, which may carry several newline-delimited frames; a
// write sends a batch of frames as one unit where the transport has units.
type transport interface {
	prepareRead()
	read() ([]byte, error)
	write(frames [][]byte) error
	ping() error
	writeClose()
	close() error
}

// Client is one connected player, whatever the transport. It owns the
// outgoing queue and the two pumps moving bytes between the transport and
// the registry.
type Client struct {
	id          uuid.UUID
	conn        transport
	send        chan []byte
	registry    *Registry
	addr        string
	mu          sync.Mutex
	closed      bool
	rateLimiter *rateLimiter
	rateLimit   RateLimitConfig
}

func newClient(conn transport, reg *Registry, addr string) *Client {
	cfg := currentConfig()
	return &Client{
		id:          uuid.New(),
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		registry:    reg,
		addr:        addr,
		rateLimiter: newRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.RefillInterval),
		rateLimit:   cfg.RateLimit,
	}
}

// ID returns the connection identity, distinct from any in-game PlayerID.
func (c *Client) ID() uuid.UUID {
	return c.id
}

// Addr returns the remote address the client connected from.
func (c *Client) Addr() string {
	return c.addr
}

// Send queues one frame without blocking. A client whose queue is full is
// too slow to keep up; its queue is closed, which ends the connection.
func (c *Client) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
	}

	log.Printf("Client from %s removed due to full send buffer", c.addr)
	c.closed = true
	close(c.send)
	return false
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) reply(msg any) {
	frame, err := protocol.Encode(msg)
	if err != nil {
		log.Printf("Error encoding reply to %s: %v", c.addr, err)
		return
	}
	c.Send(frame)
}

func (c *Client) replyError(err error) {
	c.reply(protocol.ActionResult{Type: protocol.TypeActionResult, Success: false, Message: err.Error()})
}

// handleReadError logs the reason a read loop ends.
func (c *Client) handleReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit), errors.Is(err, bufio.ErrTooLong):
		log.Printf("Message from %s exceeded maximum size", c.addr)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		log.Printf("Client %s disconnected: %v", c.addr, err)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		log.Printf("Client %s connection closed: %v", c.addr, err)
	case websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseMessageTooBig):
		log.Printf("Unexpected WebSocket error from %s: %v", c.addr, err)
	default:
		log.Printf("Read error from %s: %v", c.addr, err)
	}
}

// checkRateLimit verifies if the client has exceeded rate limits
// and returns true if the frame should be processed
func (c *Client) checkRateLimit() bool {
	if c.rateLimiter != nil && !c.rateLimiter.allow() {
		log.Printf("Rate limit exceeded for %s (%d messages per %s); discarding message", c.addr, c.rateLimit.Burst, c.rateLimit.RefillInterval)
		return false
	}
	return true
}

func (c *Client) processFrame(frame []byte) {
	msg, err := protocol.Decode(frame)
	if err != nil {
		log.Printf("Invalid message from %s: %v", c.addr, err)
		c.replyError(err)
		return
	}
	c.registry.route(c, msg)
}

// readPump is the only goroutine decoding frames for this client, so the
// client's messages reach the registry one at a time and in order.
func (c *Client) readPump() {
	defer func() {
		c.registry.unregisterClient(c)
		c.closeConnection()
	}()

	c.conn.prepareRead()

	for {
		data, err := c.conn.read()
		if err != nil {
			c.handleReadError(err)
			return
		}

		for _, frame := range protocol.SplitFrames(data) {
			if !c.checkRateLimit() {
				c.replyError(errRateLimited)
				continue
			}
			c.processFrame(frame)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case message, ok := <-c.send:
		if !ok {
			c.conn.writeClose()
			return false
		}
		return c.writeBatch(message)
	case <-ticker.C:
		if err := c.conn.ping(); err != nil {
			log.Printf("Error writing ping message to %s: %v", c.addr, err)
			return false
		}
		return true
	}
}

// writeBatch writes a frame together with whatever else is already queued.
func (c *Client) writeBatch(first []byte) bool {
	n := len(c.send)
	batch := make([][]byte, 0, n+1)
	batch = append(batch, first)
	for i := 0; i < n; i++ {
		batch = append(batch, <-c.send)
	}

	if err := c.conn.write(batch); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error writing message to %s: %v", c.addr, err)
		}
		return false
	}
	return true
}

func (c *Client) closeConnection() {
	if err := c.conn.close(); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error closing connection from %s: %v", c.addr, err)
		}
	}
}
