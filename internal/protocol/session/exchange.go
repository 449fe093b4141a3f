package session

import (
	"errors"
	"io"
	"time"

	"github.com/danmuck/zusictl/internal/observability"
	"github.com/danmuck/zusictl/internal/protocol"
	"github.com/danmuck/zusictl/internal/protocol/frame"
	"github.com/danmuck/zusictl/internal/protocol/schema"
	"github.com/rs/zerolog/log"
)

// State is the position of an Exchange in its request/response sequence.
type State uint8

const (
	StateSendingRequest State = iota
	StateAwaitingResponse
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSendingRequest:
		return "sending_request"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome labels used in logs and metrics.
const (
	OutcomeAccepted      = "accepted"
	OutcomeRejected      = "rejected"
	OutcomeProtocolError = "protocol_error"
	OutcomeFramingError  = "framing_error"
	OutcomeIOError       = "io_error"
)

// Outcome classifies the result of an exchange.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.Is(err, protocol.ErrRejected):
		return OutcomeRejected
	case errors.Is(err, protocol.ErrProtocol):
		return OutcomeProtocolError
	case errors.Is(err, protocol.ErrFraming):
		return OutcomeFramingError
	default:
		return OutcomeIOError
	}
}

// MessageStream is implemented by frame.Conn. Streams that provide it are
// used message-wise; anything else is treated as a raw byte stream.
type MessageStream interface {
	WriteMessage(n *protocol.Node) error
	ReadMessage() (protocol.Node, error)
}

// Exchange is one request followed by exactly one validated acknowledgement.
// An Exchange runs once.
type Exchange struct {
	Request protocol.Node
	Ack     schema.AckSpec
	Limits  protocol.Limits

	state    State
	response *protocol.Node
}

func NewExchange(req protocol.Node, ack schema.AckSpec) *Exchange {
	return &Exchange{Request: req, Ack: ack}
}

// State returns the current state. A rejected acknowledgement still ends in
// StateComplete; io, framing and protocol errors end in StateFailed.
func (e *Exchange) State() State {
	return e.state
}

// Response returns the decoded acknowledgement, or nil before one arrived.
func (e *Exchange) Response() *protocol.Node {
	return e.response
}

// Run sends the request, flushes, reads one response and validates it.
func (e *Exchange) Run(stream io.ReadWriter) error {
	start := time.Now()
	err := e.run(stream)
	outcome := Outcome(err)
	observability.RecordExchange(e.Ack.Name, outcome, time.Since(start))

	event := log.Debug()
	if err != nil && e.state == StateFailed {
		event = log.Warn().Err(err)
	} else if err != nil {
		event = log.Info().Err(err)
	}
	event.
		Str("exchange", e.Ack.Name).
		Stringer("state", e.state).
		Str("outcome", outcome).
		Dur("duration", time.Since(start)).
		Msg("exchange_done")
	return err
}

func (e *Exchange) run(stream io.ReadWriter) error {
	e.transition(StateSendingRequest)
	if err := e.send(stream); err != nil {
		e.transition(StateFailed)
		return err
	}

	e.transition(StateAwaitingResponse)
	resp, err := e.receive(stream)
	if err != nil {
		e.transition(StateFailed)
		return err
	}
	e.response = &resp

	err = schema.CheckAck(&resp, e.Ack)
	if err != nil && !errors.Is(err, protocol.ErrRejected) {
		e.transition(StateFailed)
		return err
	}
	e.transition(StateComplete)
	return err
}

func (e *Exchange) send(stream io.ReadWriter) error {
	if ms, ok := stream.(MessageStream); ok {
		return ms.WriteMessage(&e.Request)
	}
	return frame.WriteFrame(stream, &e.Request)
}

func (e *Exchange) receive(stream io.ReadWriter) (protocol.Node, error) {
	var (
		resp protocol.Node
		err  error
	)
	if ms, ok := stream.(MessageStream); ok {
		resp, err = ms.ReadMessage()
	} else {
		resp, err = frame.ReadFrame(stream, e.Limits)
	}
	if errors.Is(err, io.EOF) {
		// The peer closed before answering; inside an exchange that is a
		// truncated message, not a clean end of stream.
		return protocol.Node{}, protocol.ErrTruncated
	}
	return resp, err
}

func (e *Exchange) transition(next State) {
	e.state = next
	log.Trace().Str("exchange", e.Ack.Name).Stringer("state", next).Msg("exchange_state")
}
