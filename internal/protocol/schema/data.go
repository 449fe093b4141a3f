package schema

import (
	"fmt"

	"github.com/danmuck/zusictl/internal/protocol"
)

// Reading is one value pushed by the host after a subscription. ID is the
// cab display or program data id the caller asked for.
type Reading struct {
	ID    uint16
	Value protocol.Attribute
}

// Float returns the reading as binary32, the encoding Zusi uses for most
// cab display values.
func (r Reading) Float() (float32, error) {
	return r.Value.Float32()
}

// IsDataMessage reports whether msg is a DATA_FTD, DATA_OPERATION or
// DATA_PROG push. DATA_OPERATION follows a cab operation subscription.
func IsDataMessage(msg *protocol.Node) bool {
	if msg.ID != RootClientApplication || len(msg.Children) != 1 {
		return false
	}
	switch msg.Children[0].ID {
	case CmdDataFTD, CmdDataOperation, CmdDataProg:
		return true
	}
	return false
}

// DataCommandName names a data push command for logs and metrics.
func DataCommandName(id uint16) string {
	switch id {
	case CmdDataFTD:
		return "DATA_FTD"
	case CmdDataOperation:
		return "DATA_OPERATION"
	case CmdDataProg:
		return "DATA_PROG"
	default:
		return fmt.Sprintf("0x%04x", id)
	}
}

// DataReadings returns the attributes of a data push in wire order.
func DataReadings(msg *protocol.Node) (uint16, []Reading, error) {
	if !IsDataMessage(msg) {
		return 0, nil, ValidationError{Ack: "DATA", Reason: fmt.Sprintf("not a data message (root=%#04x)", msg.ID)}
	}
	cmd := &msg.Children[0]
	out := make([]Reading, 0, len(cmd.Attributes))
	for _, attr := range cmd.Attributes {
		out = append(out, Reading{ID: attr.ID, Value: attr})
	}
	return cmd.ID, out, nil
}
