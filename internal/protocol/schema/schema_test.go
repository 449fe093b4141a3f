package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/danmuck/zusictl/internal/protocol"
)

func ackHello(root uint16, cmd uint16, attrs ...protocol.Attribute) protocol.Node {
	return protocol.NewNode(root).WithChildren(protocol.NewNode(cmd, attrs...))
}

func TestCheckAckHelloAccepted(t *testing.T) {
	resp := ackHello(RootConnecting, CmdAckHello,
		protocol.NewAttributeString(0x0001, "3.5.0.0"),
		protocol.NewAttributeBytes(AttrAckHelloResult, []byte{0x00}),
	)
	if err := CheckAck(&resp, AckHello); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
}

func TestCheckAckUsesFirstResultAttribute(t *testing.T) {
	resp := ackHello(RootConnecting, CmdAckHello,
		protocol.NewAttributeUint8(AttrAckHelloResult, 0x00),
		protocol.NewAttributeUint8(AttrAckHelloResult, 0x01),
	)
	if err := CheckAck(&resp, AckHello); err != nil {
		t.Fatalf("expected first result attribute to win, got %v", err)
	}
}

func TestCheckAckRejected(t *testing.T) {
	resp := ackHello(RootConnecting, CmdAckHello, protocol.NewAttributeUint8(AttrAckHelloResult, 0x01))
	err := CheckAck(&resp, AckHello)
	if !errors.Is(err, protocol.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	var rejected RejectedError
	if !errors.As(err, &rejected) || rejected.Code != 1 {
		t.Fatalf("expected RejectedError code=1, got %v", err)
	}
	if !strings.Contains(err.Error(), "did not accept the client") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestCheckAckShapeErrors(t *testing.T) {
	cases := []struct {
		name   string
		resp   protocol.Node
		reason string
	}{
		{
			name:   "root id",
			resp:   ackHello(0x0099, CmdAckHello, protocol.NewAttributeUint8(AttrAckHelloResult, 0)),
			reason: "invalid root node id",
		},
		{
			name:   "no children",
			resp:   protocol.NewNode(RootConnecting),
			reason: "expected exactly one",
		},
		{
			name: "two children",
			resp: protocol.NewNode(RootConnecting).WithChildren(
				protocol.NewNode(CmdAckHello), protocol.NewNode(CmdAckHello),
			),
			reason: "expected exactly one",
		},
		{
			name:   "command id",
			resp:   ackHello(RootConnecting, CmdHello, protocol.NewAttributeUint8(AttrAckHelloResult, 0)),
			reason: "invalid command id",
		},
		{
			name:   "missing result",
			resp:   ackHello(RootConnecting, CmdAckHello, protocol.NewAttributeUint8(0x0001, 0)),
			reason: "did not accept the client",
		},
		{
			name:   "empty result",
			resp:   ackHello(RootConnecting, CmdAckHello, protocol.NewAttributeBytes(AttrAckHelloResult, nil)),
			reason: "result attribute empty",
		},
	}
	for _, tc := range cases {
		err := CheckAck(&tc.resp, AckHello)
		if !errors.Is(err, protocol.ErrProtocol) {
			t.Fatalf("%s: expected ErrProtocol, got %v", tc.name, err)
		}
		var ve ValidationError
		if !errors.As(err, &ve) || !strings.Contains(ve.Reason, tc.reason) {
			t.Fatalf("%s: unexpected validation error: %v", tc.name, err)
		}
	}
}

func TestCheckAckNeededData(t *testing.T) {
	ok := protocol.NewNode(RootClientApplication).WithChildren(
		protocol.NewNode(CmdAckNeededData, protocol.NewAttributeUint8(AttrAckNeededDataResult, 0)),
	)
	if err := CheckAck(&ok, AckNeededData); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
	hello := ackHello(RootConnecting, CmdAckHello, protocol.NewAttributeUint8(AttrAckHelloResult, 0))
	if err := CheckAck(&hello, AckNeededData); !errors.Is(err, protocol.ErrProtocol) {
		t.Fatalf("ACK_HELLO must not satisfy ACK_NEEDED_DATA, got %v", err)
	}
}

func TestHelloRequestShape(t *testing.T) {
	req := HelloRequest("client", "1.0")
	if req.ID != RootConnecting || len(req.Children) != 1 || req.Children[0].ID != CmdHello {
		t.Fatalf("unexpected envelope: %v", req)
	}
	want := []protocol.Attribute{
		protocol.NewAttributeUint16(AttrProtocolVersion, 2),
		protocol.NewAttributeUint16(AttrClientType, 2),
		protocol.NewAttributeString(AttrClientName, "client"),
		protocol.NewAttributeString(AttrClientVersion, "1.0"),
	}
	got := req.Children[0].Attributes
	if len(got) != len(want) {
		t.Fatalf("unexpected attribute count: %d", len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("attribute %d mismatch: got=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestNeededDataRequestShape(t *testing.T) {
	req := NeededDataRequest([]uint16{0x0001, 0x001B}, nil, true)
	want := protocol.NewNode(RootClientApplication).WithChildren(
		protocol.NewNode(CmdNeededData).WithChildren(
			protocol.NewNode(SectionCabDisplays,
				protocol.NewAttributeUint16(AttrDataID, 0x0001),
				protocol.NewAttributeUint16(AttrDataID, 0x001B),
			),
			protocol.NewNode(SectionCabOperation),
		),
	)
	if !req.Equal(&want) {
		t.Fatalf("unexpected request:\n%v\nwant:\n%v", req, want)
	}
}

func TestNeededDataRequestSectionOrder(t *testing.T) {
	req := NeededDataRequest([]uint16{1}, []uint16{0x0064}, true)
	sections := req.Children[0].Children
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	for i, id := range []uint16{SectionCabDisplays, SectionCabOperation, SectionProgramData} {
		if sections[i].ID != id {
			t.Fatalf("section %d: got=%#x want=%#x", i, sections[i].ID, id)
		}
	}

	empty := NeededDataRequest(nil, nil, false)
	if len(empty.Children[0].Children) != 0 {
		t.Fatalf("expected no sections")
	}
}

func TestDataReadings(t *testing.T) {
	msg := protocol.NewNode(RootClientApplication).WithChildren(
		protocol.NewNode(CmdDataFTD,
			protocol.NewAttributeFloat32(0x0001, 27.5),
			protocol.NewAttributeFloat32(0x001B, 4.0),
		),
	)
	cmd, readings, err := DataReadings(&msg)
	if err != nil {
		t.Fatalf("data readings: %v", err)
	}
	if cmd != CmdDataFTD || len(readings) != 2 || readings[1].ID != 0x001B {
		t.Fatalf("unexpected readings: cmd=%#x %+v", cmd, readings)
	}
	if v, err := readings[0].Float(); err != nil || v != 27.5 {
		t.Fatalf("unexpected float=%v err=%v", v, err)
	}

	ack := protocol.NewNode(RootClientApplication).WithChildren(protocol.NewNode(CmdAckNeededData))
	if _, _, err := DataReadings(&ack); !errors.Is(err, protocol.ErrProtocol) {
		t.Fatalf("expected ErrProtocol for non-data message, got %v", err)
	}
}

func TestDataReadingsCabOperation(t *testing.T) {
	msg := protocol.NewNode(RootClientApplication).WithChildren(
		protocol.NewNode(CmdDataOperation, protocol.NewAttributeBytes(0x0001, []byte{0x01, 0x00, 0x02})),
	)
	if !IsDataMessage(&msg) {
		t.Fatalf("expected DATA_OPERATION to be a data message")
	}
	cmd, readings, err := DataReadings(&msg)
	if err != nil || cmd != CmdDataOperation || len(readings) != 1 {
		t.Fatalf("unexpected readings: cmd=%#x %+v err=%v", cmd, readings, err)
	}
}

func TestDataCommandName(t *testing.T) {
	tests := map[uint16]string{
		CmdDataFTD:       "DATA_FTD",
		CmdDataOperation: "DATA_OPERATION",
		CmdDataProg:      "DATA_PROG",
		0x0042:           "0x0042",
	}
	for id, want := range tests {
		if got := DataCommandName(id); got != want {
			t.Fatalf("DataCommandName(%#x)=%q, want %q", id, got, want)
		}
	}
}
