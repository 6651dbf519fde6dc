package transport

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReadLines(t *testing.T) {
	client, server := net.Pipe()
	stream := NewStream(client)
	defer stream.Close()

	go func() {
		_, _ = server.Write([]byte("{\"type\": 0, \"message\": 1}\r\n\n{\"type\": 10"))
		_, _ = server.Write([]byte(", \"message\": \"hi\"}\n"))
		_ = server.Close()
	}()

	line, err := stream.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, `{"type": 0, "message": 1}`, string(line))

	line, err = stream.ReadLine()
	require.NoError(t, err)
	assert.Empty(t, line)

	line, err = stream.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, `{"type": 10, "message": "hi"}`, string(line))

	_, err = stream.ReadLine()
	require.ErrorIs(t, err, io.EOF)
}

func TestStreamWriteLineAppendsNewline(t *testing.T) {
	client, server := net.Pipe()
	stream := NewStream(client)
	defer stream.Close()

	reader := bufio.NewReader(server)
	done := make(chan string, 2)
	go func() {
		for i := 0; i < 2; i++ {
			s, _ := reader.ReadString('\n')
			done <- s
		}
	}()

	require.NoError(t, stream.WriteLine([]byte(`{"a":1}`)))
	require.NoError(t, stream.WriteLine([]byte("{\"b\":2}\n")))

	assert.Equal(t, "{\"a\":1}\n", <-done)
	assert.Equal(t, "{\"b\":2}\n", <-done)
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	client, _ := net.Pipe()
	stream := NewStream(client)
	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())

	_, err := stream.ReadLine()
	require.Error(t, err)
}

func TestDialTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte("{\"type\": 0, \"message\": 4}\n"))
	}()

	conn, err := Dial(context.Background(), "tcp://"+ln.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, `{"type": 0, "message": 4}`, string(line))
}

func TestDialWebSocket(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		frame := "{\"type\": 0, \"message\": 2}\n{\"type\": 10, \"message\": \"hello\"}\n"
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- string(data)
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := Dial(context.Background(), url, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, `{"type": 0, "message": 2}`, string(line))

	line, err = conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, `{"type": 10, "message": "hello"}`, string(line))

	require.NoError(t, conn.WriteLine([]byte("{\"type\":5}\n")))
	select {
	case got := <-received:
		assert.Equal(t, `{"type":5}`, got)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the line")
	}
}
