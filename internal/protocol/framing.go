package protocol

import (
	"bufio"
	"bytes"
	"io"
)

// Frames are newline-delimited JSON objects. A transport unit (a WebSocket
// text message or a TCP read) may hold any number of complete frames.

// SplitFrames returns the non-blank lines of data.
func SplitFrames(data []byte) [][]byte {
	var frames [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			frames = append(frames, line)
		}
	}
	return frames
}

// NewFrameScanner reads frames from a byte stream, rejecting any frame
// longer than maxSize bytes with bufio.ErrTooLong.
func NewFrameScanner(r io.Reader, maxSize int) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	initial := 4096
	if maxSize < initial {
		initial = maxSize
	}
	sc.Buffer(make([]byte, 0, initial), maxSize)
	return sc
}

// WriteFrame writes one frame followed by its delimiter.
func WriteFrame(w io.Writer, frame []byte) error {
	if _, err := w.Write(frame); err != nil {
		return err
	}
	_, err := w.Write([]byte{'\n'})
	return err
}
