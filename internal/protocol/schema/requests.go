package schema

import "github.com/danmuck/zusictl/internal/protocol"

// HelloRequest builds the HELLO message for the connection-establishment
// channel.
func HelloRequest(clientName, clientVersion string) protocol.Node {
	return protocol.NewNode(RootConnecting).WithChildren(
		protocol.NewNode(CmdHello,
			protocol.NewAttributeUint16(AttrProtocolVersion, ProtocolVersion),
			protocol.NewAttributeUint16(AttrClientType, ClientTypeCab),
			protocol.NewAttributeString(AttrClientName, clientName),
			protocol.NewAttributeString(AttrClientVersion, clientVersion),
		),
	)
}

// NeededDataRequest builds the NEEDED_DATA message. Sections appear in the
// order cab displays, cab operation, program data; empty groups are omitted.
func NeededDataRequest(cabDisplayIDs, programDataIDs []uint16, cabOperation bool) protocol.Node {
	sections := make([]protocol.Node, 0, 3)
	if len(cabDisplayIDs) > 0 {
		sections = append(sections, idSection(SectionCabDisplays, cabDisplayIDs))
	}
	if cabOperation {
		sections = append(sections, protocol.NewNode(SectionCabOperation))
	}
	if len(programDataIDs) > 0 {
		sections = append(sections, idSection(SectionProgramData, programDataIDs))
	}
	return protocol.NewNode(RootClientApplication).WithChildren(
		protocol.NewNode(CmdNeededData).WithChildren(sections...),
	)
}

func idSection(id uint16, ids []uint16) protocol.Node {
	attrs := make([]protocol.Attribute, 0, len(ids))
	for _, v := range ids {
		attrs = append(attrs, protocol.NewAttributeUint16(AttrDataID, v))
	}
	return protocol.NewNode(id, attrs...)
}
