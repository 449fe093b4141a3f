// Package zusitest provides a scripted Zusi host for client tests.
package zusitest

import (
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/danmuck/zusictl/internal/protocol"
	"github.com/danmuck/zusictl/internal/protocol/frame"
	"github.com/danmuck/zusictl/internal/protocol/schema"
)

// Host answers HELLO and NEEDED_DATA. The zero value accepts everything.
type Host struct {
	HelloResult      uint8
	NeededDataResult uint8
	Version          string
	ConnectionInfo   string

	// Data is pushed after an accepted NEEDED_DATA.
	Data []protocol.Node

	// Respond, when set, replaces the scripted answers. Returning no
	// messages leaves the request unanswered.
	Respond func(req *protocol.Node) []protocol.Node

	mu       sync.Mutex
	requests []protocol.Node
}

// Requests returns the messages received so far.
func (h *Host) Requests() []protocol.Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]protocol.Node, len(h.requests))
	copy(out, h.requests)
	return out
}

// Serve answers requests on conn until the peer closes it.
func (h *Host) Serve(conn io.ReadWriter) error {
	for {
		req, err := protocol.Decode(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		h.mu.Lock()
		h.requests = append(h.requests, req)
		h.mu.Unlock()

		for _, msg := range h.answer(&req) {
			if err := frame.WriteFrame(conn, &msg); err != nil {
				return err
			}
		}
	}
}

func (h *Host) answer(req *protocol.Node) []protocol.Node {
	if h.Respond != nil {
		return h.Respond(req)
	}
	switch {
	case req.FindNode([]uint16{schema.RootConnecting, schema.CmdHello}) != nil:
		return []protocol.Node{HelloAck(h.HelloResult, h.Version, h.ConnectionInfo)}
	case req.FindNode([]uint16{schema.RootClientApplication, schema.CmdNeededData}) != nil:
		out := []protocol.Node{NeededDataAck(h.NeededDataResult)}
		if h.NeededDataResult == schema.ResultAccepted {
			out = append(out, h.Data...)
		}
		return out
	}
	return nil
}

// HelloAck builds an ACK_HELLO message.
func HelloAck(result uint8, version, connectionInfo string) protocol.Node {
	attrs := make([]protocol.Attribute, 0, 3)
	if version != "" {
		attrs = append(attrs, protocol.NewAttributeString(schema.AttrAckHelloVersion, version))
	}
	if connectionInfo != "" {
		attrs = append(attrs, protocol.NewAttributeString(schema.AttrAckHelloConnectionInfo, connectionInfo))
	}
	attrs = append(attrs, protocol.NewAttributeUint8(schema.AttrAckHelloResult, result))
	return protocol.NewNode(schema.RootConnecting).WithChildren(
		protocol.NewNode(schema.CmdAckHello, attrs...),
	)
}

// NeededDataAck builds an ACK_NEEDED_DATA message.
func NeededDataAck(result uint8) protocol.Node {
	return protocol.NewNode(schema.RootClientApplication).WithChildren(
		protocol.NewNode(schema.CmdAckNeededData, protocol.NewAttributeUint8(schema.AttrAckNeededDataResult, result)),
	)
}

// DataFTD builds a DATA_FTD push carrying one f32 per id.
func DataFTD(values map[uint16]float32, order ...uint16) protocol.Node {
	attrs := make([]protocol.Attribute, 0, len(order))
	for _, id := range order {
		attrs = append(attrs, protocol.NewAttributeFloat32(id, values[id]))
	}
	return protocol.NewNode(schema.RootClientApplication).WithChildren(
		protocol.NewNode(schema.CmdDataFTD, attrs...),
	)
}

// Pipe serves h on one end of an in-memory connection and returns the
// other end.
func Pipe(t testing.TB, h *Host) net.Conn {
	t.Helper()
	client, server := net.Pipe()
	go func() {
		_ = h.Serve(server)
		_ = server.Close()
	}()
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client
}

// Listen serves h on a loopback TCP listener and returns its address.
func Listen(t testing.TB, h *Host) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				_ = h.Serve(conn)
			}()
		}
	}()
	return ln.Addr().String()
}
