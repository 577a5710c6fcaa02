package main

import (
	"context"
	"fmt"
	"time"

	"github.com/u-blox/infinite-iot-sub000/internal/codec"
)

// loopbackTransport is an in-process stand-in for the cellular modem's
// UDP socket: it discards every datagram it "sends" and answers each
// RecvAck with an ack carrying its own node name and index 0, checked
// through the ack decoder, for bench runs with no real network present.
type loopbackTransport struct {
	name       string
	maxNameLen int
	lastIndex  int32
}

func newLoopbackTransport(name string, maxNameLen int) *loopbackTransport {
	return &loopbackTransport{name: name, maxNameLen: maxNameLen}
}

func (t *loopbackTransport) Send(ctx context.Context, addr string, port int, datagram []byte) error {
	// A real transport would write datagram to the wire here; the
	// loopback drops it, since RecvAck answers without looking at it.
	return nil
}

func (t *loopbackTransport) RecvAck(ctx context.Context, timeout time.Duration) ([]byte, error) {
	ack := []byte(fmt.Sprintf(`{"n":"%s","i":0}`, t.name))
	if _, err := codec.DecodeAck(ack, t.name, t.maxNameLen); err != nil {
		return nil, err
	}
	return ack, nil
}
