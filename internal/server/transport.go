package server

import (
	"bufio"
	"io"
	"log"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/werewolf/internal/protocol"
)

// wsTransport carries frames over a WebSocket. Several queued frames are
// written as one text message separated by newlines.
type wsTransport struct {
	conn *websocket.Conn
	addr string
}

func newWSTransport(conn *websocket.Conn, addr string, maxMessageSize int64) *wsTransport {
	conn.SetReadLimit(maxMessageSize)
	return &wsTransport{conn: conn, addr: addr}
}

func (t *wsTransport) prepareRead() {
	if err := t.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Error setting initial read deadline for %s: %v", t.addr, err)
	}
	t.conn.SetPongHandler(func(string) error {
		if err := t.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Error setting read deadline in pong handler for %s: %v", t.addr, err)
		}
		return nil
	})
}

func (t *wsTransport) read() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *wsTransport) write(frames [][]byte) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	w, err := t.conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	for i, frame := range frames {
		if i > 0 {
			if _, err := w.Write([]byte{'\n'}); err != nil {
				return err
			}
		}
		if _, err := w.Write(frame); err != nil {
			return err
		}
	}
	return w.Close()
}

func (t *wsTransport) ping() error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return t.conn.WriteMessage(websocket.PingMessage, nil)
}

func (t *wsTransport) writeClose() {
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}
	if err := t.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
		if !isExpectedCloseError(err) {
			log.Printf("Error writing close message to %s: %v", t.addr, err)
		}
	}
}

func (t *wsTransport) close() error {
	return t.conn.Close()
}

// tcpTransport carries newline-delimited frames over a raw stream socket.
// Liveness is left to TCP keepalive, so ping is a no-op.
type tcpTransport struct {
	conn    net.Conn
	scanner *bufio.Scanner
	w       *bufio.Writer
}

func newTCPTransport(conn net.Conn, maxMessageSize int64) *tcpTransport {
	if tc, ok := conn.(*net.TCPConn); ok {
		if err := tc.SetKeepAlive(true); err != nil {
			log.Printf("Error enabling keepalive for %s: %v", conn.RemoteAddr(), err)
		}
		if err := tc.SetKeepAlivePeriod(pingPeriod); err != nil {
			log.Printf("Error setting keepalive period for %s: %v", conn.RemoteAddr(), err)
		}
	}
	return &tcpTransport{
		conn:    conn,
		scanner: protocol.NewFrameScanner(conn, int(maxMessageSize)),
		w:       bufio.NewWriter(conn),
	}
}

func (t *tcpTransport) prepareRead() {}

func (t *tcpTransport) read() ([]byte, error) {
	if t.scanner.Scan() {
		return append([]byte(nil), t.scanner.Bytes()...), nil
	}
	if err := t.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (t *tcpTransport) write(frames [][]byte) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	for _, frame := range frames {
		if err := protocol.WriteFrame(t.w, frame); err != nil {
			return err
		}
	}
	return t.w.Flush()
}

func (t *tcpTransport) ping() error {
	return nil
}

func (t *tcpTransport) writeClose() {}

func (t *tcpTransport) close() error {
	return t.conn.Close()
}
