// Package transport provides the line-delimited duplex stream to the game
// server, over plain TCP or a WebSocket.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// maxLineSize bounds a single inbound line.
const maxLineSize = 1 << 20

// Conn is a duplex stream of newline-delimited lines.
type Conn interface {
	// ReadLine blocks until a full line is available. The returned line does
	// not include the trailing newline. io.EOF signals a remote close.
	ReadLine() ([]byte, error)

	// WriteLine writes one line, appending a newline if missing.
	WriteLine(line []byte) error

	// Close is safe to call more than once.
	Close() error
}

// Dial connects to address. ws:// and wss:// addresses use a WebSocket;
// anything else (optionally prefixed with tcp://) is dialed as TCP.
func Dial(ctx context.Context, address string, timeout time.Duration) (Conn, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	switch {
	case strings.HasPrefix(address, "ws://"), strings.HasPrefix(address, "wss://"):
		return dialWebSocket(ctx, address)
	default:
		hostport := strings.TrimPrefix(address, "tcp://")
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", hostport)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", hostport, err)
		}
		return NewStream(conn), nil
	}
}

// Stream adapts any byte stream to Conn.
type Stream struct {
	rwc    io.ReadWriteCloser
	reader *bufio.Reader

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewStream wraps rwc. Ownership of rwc passes to the Stream.
func NewStream(rwc io.ReadWriteCloser) *Stream {
	return &Stream{
		rwc:    rwc,
		reader: bufio.NewReader(rwc),
	}
}

func (s *Stream) ReadLine() ([]byte, error) {
	var line []byte
	for {
		chunk, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				return line, nil
			}
			return nil, err
		}
		line = append(line, chunk...)
		if len(line) > maxLineSize {
			return nil, fmt.Errorf("line exceeds %d bytes", maxLineSize)
		}
		if !isPrefix {
			return line, nil
		}
	}
}

func (s *Stream) WriteLine(line []byte) error {
	if !bytes.HasSuffix(line, []byte{'\n'}) {
		line = append(line[:len(line):len(line)], '\n')
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err := s.rwc.Write(line)
	return err
}

func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.rwc.Close()
	})
	return s.closeErr
}
