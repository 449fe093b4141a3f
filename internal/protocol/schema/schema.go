package schema

import (
	"fmt"

	"github.com/danmuck/zusictl/internal/protocol"
)

// Root container ids.
const (
	RootConnecting        uint16 = 0x0001
	RootClientApplication uint16 = 0x0002
)

// Command ids.
const (
	CmdHello         uint16 = 0x0001
	CmdAckHello      uint16 = 0x0002
	CmdNeededData    uint16 = 0x0003
	CmdAckNeededData uint16 = 0x0004
	CmdDataFTD       uint16 = 0x000A
	CmdDataOperation uint16 = 0x000B
	CmdDataProg      uint16 = 0x000C
)

// NEEDED_DATA section ids.
const (
	SectionCabDisplays  uint16 = 0x000A
	SectionCabOperation uint16 = 0x000B
	SectionProgramData  uint16 = 0x000C
)

// Attribute ids.
const (
	AttrProtocolVersion uint16 = 0x0001
	AttrClientType      uint16 = 0x0002
	AttrClientName      uint16 = 0x0003
	AttrClientVersion   uint16 = 0x0004

	AttrAckHelloVersion        uint16 = 0x0001
	AttrAckHelloConnectionInfo uint16 = 0x0002
	AttrAckHelloResult         uint16 = 0x0003
	AttrAckNeededDataResult    uint16 = 0x0001

	AttrDataID uint16 = 0x0001
)

const (
	ProtocolVersion uint16 = 0x0002
	ClientTypeCab   uint16 = 0x0002
	ResultAccepted  uint8  = 0x00
)

// AckSpec describes the expected shape of one acknowledgement message.
type AckSpec struct {
	Name    string
	Subject string
	Root    uint16
	Command uint16
	Result  uint16
}

var (
	AckHello = AckSpec{
		Name:    "ACK_HELLO",
		Subject: "the client",
		Root:    RootConnecting,
		Command: CmdAckHello,
		Result:  AttrAckHelloResult,
	}
	AckNeededData = AckSpec{
		Name:    "ACK_NEEDED_DATA",
		Subject: "the NEEDED_DATA command",
		Root:    RootClientApplication,
		Command: CmdAckNeededData,
		Result:  AttrAckNeededDataResult,
	}
)

// ValidationError is a response whose shape does not match the exchange.
type ValidationError struct {
	Ack    string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("schema: %s: %s", e.Ack, e.Reason)
}

func (e ValidationError) Unwrap() error {
	return protocol.ErrProtocol
}

// RejectedError is a well-formed acknowledgement with a non-zero result.
type RejectedError struct {
	Ack     string
	Subject string
	Code    uint8
}

func (e RejectedError) Error() string {
	return fmt.Sprintf("schema: %s: zusi did not accept %s (code=%d)", e.Ack, e.Subject, e.Code)
}

func (e RejectedError) Unwrap() error {
	return protocol.ErrRejected
}

// CheckAck validates resp against spec. It returns nil when the host
// accepted, RejectedError when the acceptance byte is non-zero and
// ValidationError for any shape mismatch.
func CheckAck(resp *protocol.Node, spec AckSpec) error {
	if resp.ID != spec.Root {
		return ValidationError{Ack: spec.Name, Reason: fmt.Sprintf("invalid root node id %#04x, expected %#04x", resp.ID, spec.Root)}
	}
	if len(resp.Children) != 1 {
		return ValidationError{Ack: spec.Name, Reason: fmt.Sprintf("root node has %d children, expected exactly one", len(resp.Children))}
	}
	cmd := &resp.Children[0]
	if cmd.ID != spec.Command {
		return ValidationError{Ack: spec.Name, Reason: fmt.Sprintf("invalid command id %#04x, expected %#04x", cmd.ID, spec.Command)}
	}
	result := cmd.FindAttributeExcl([]uint16{spec.Result})
	if result == nil {
		return ValidationError{Ack: spec.Name, Reason: "did not accept " + spec.Subject + ": result attribute missing"}
	}
	code, err := result.Uint8()
	if err != nil {
		return ValidationError{Ack: spec.Name, Reason: "did not accept " + spec.Subject + ": result attribute empty"}
	}
	if code != ResultAccepted {
		return RejectedError{Ack: spec.Name, Subject: spec.Subject, Code: code}
	}
	return nil
}
