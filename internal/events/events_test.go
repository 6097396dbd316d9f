package events

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopSink(t *testing.T) {
	var s Sink = NopSink{}
	assert.NoError(t, s.Publish(context.Background(), ExecutionEvent{Kind: "create_cluster"}))
}

func TestPublisher_NotConnected(t *testing.T) {
	var p *Publisher
	err := p.Publish(context.Background(), ExecutionEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats not connected")

	err = (&Publisher{}).Publish(context.Background(), ExecutionEvent{})
	assert.Error(t, err)
}

func TestNewPublisher_Unreachable(t *testing.T) {
	_, err := NewPublisher("nats://127.0.0.1:1", "", logr.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to nats")
}

func TestExecutionEvent_JSON(t *testing.T) {
	ev := ExecutionEvent{
		ID:         "p-1",
		Kind:       "stop_cluster",
		Success:    false,
		Error:      "timeout",
		Duration:   1500 * time.Millisecond,
		FinishedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"p-1","kind":"stop_cluster","success":false,"error":"timeout",
		"duration_ns":1500000000,"finished_at":"2026-01-02T03:04:05Z"
	}`, string(data))
}

type published struct {
	subject string
	payload []byte
}

// serveNATS speaks enough of the NATS client protocol to accept one
// connection and report every PUB it receives.
func serveNATS(t *testing.T) (string, <-chan published) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	pubs := make(chan published, 16)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.WriteString(conn, "INFO {\"server_id\":\"test\",\"version\":\"2.10.0\",\"max_payload\":1048576}\r\n")

		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			switch strings.ToUpper(fields[0]) {
			case "PING":
				_, _ = io.WriteString(conn, "PONG\r\n")
			case "PUB":
				size, err := strconv.Atoi(fields[len(fields)-1])
				if err != nil {
					return
				}
				buf := make([]byte, size+2)
				if _, err := io.ReadFull(r, buf); err != nil {
					return
				}
				pubs <- published{subject: fields[1], payload: buf[:size]}
			}
		}
	}()
	return "nats://" + ln.Addr().String(), pubs
}

func TestPublisher_CloseDeliversBufferedEvents(t *testing.T) {
	url, pubs := serveNATS(t)

	p, err := NewPublisher(url, "", logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, DefaultSubject, p.Subject())

	for _, kind := range []string{"create_cluster", "stop_cluster"} {
		require.NoError(t, p.Publish(context.Background(), ExecutionEvent{ID: kind, Kind: kind, Success: true}))
	}
	p.Close()

	for _, want := range []string{"create_cluster", "stop_cluster"} {
		select {
		case got := <-pubs:
			assert.Equal(t, DefaultSubject, got.subject)
			var ev ExecutionEvent
			require.NoError(t, json.Unmarshal(got.payload, &ev))
			assert.Equal(t, want, ev.Kind)
		case <-time.After(2 * time.Second):
			t.Fatalf("event %s was not delivered before close", want)
		}
	}

	err = p.Publish(context.Background(), ExecutionEvent{})
	assert.Error(t, err)
}
