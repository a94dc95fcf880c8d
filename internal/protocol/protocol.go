// Package protocol holds the wire types shared by the HTTP API and the
// websocket channel, the error code table and the request schemas.
package protocol

import "encoding/json"

const Version = "1.0"

// Websocket message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeQuery   = "QUERY"
	TypeResult  = "RESULT"
	TypeError   = "ERROR"
)

// Query operations, shared by both transports.
const (
	OpMeta        = "meta"
	OpRaces       = "races"
	OpSlot        = "slot"
	OpFull        = "full"
	OpDelta       = "delta"
	OpAutoSlot    = "autoslot"
	OpParseLevels = "parse_levels"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
