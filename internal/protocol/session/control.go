package session

import (
	"io"

	"github.com/danmuck/zusictl/internal/protocol"
	"github.com/danmuck/zusictl/internal/protocol/schema"
)

// SendHello performs the HELLO handshake on stream. It returns nil when the
// host accepted the client, a schema.RejectedError when it refused, and a
// framing, protocol or io error otherwise.
func SendHello(stream io.ReadWriter, clientName, clientVersion string) error {
	_, err := Hello(stream, clientName, clientVersion)
	return err
}

// Hello is SendHello that also reports what the host said about itself.
func Hello(stream io.ReadWriter, clientName, clientVersion string) (HostInfo, error) {
	ex := NewExchange(schema.HelloRequest(clientName, clientVersion), schema.AckHello)
	err := ex.Run(stream)
	if resp := ex.Response(); resp != nil && ex.State() == StateComplete {
		return hostInfo(resp), err
	}
	return HostInfo{}, err
}

// SendNeededData subscribes to cab display values, program data and
// optionally cab operation events.
func SendNeededData(stream io.ReadWriter, cabDisplayIDs, programDataIDs []uint16, cabOperation bool) error {
	ex := NewExchange(schema.NeededDataRequest(cabDisplayIDs, programDataIDs, cabOperation), schema.AckNeededData)
	return ex.Run(stream)
}

// Subscription is the NEEDED_DATA selection.
type Subscription struct {
	CabDisplays  []uint16
	ProgramData  []uint16
	CabOperation bool
}

// HostInfo carries the optional descriptive attributes of ACK_HELLO.
type HostInfo struct {
	Version        string
	ConnectionInfo string
}

func hostInfo(resp *protocol.Node) HostInfo {
	var info HostInfo
	ack := &resp.Children[0]
	if attr := ack.FindAttributeExcl([]uint16{schema.AttrAckHelloVersion}); attr != nil {
		info.Version, _ = attr.Text()
	}
	if attr := ack.FindAttributeExcl([]uint16{schema.AttrAckHelloConnectionInfo}); attr != nil {
		info.ConnectionInfo, _ = attr.Text()
	}
	return info
}
