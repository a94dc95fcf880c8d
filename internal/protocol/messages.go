package protocol

import (
	"encoding/json"
	"strconv"
	"strings"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	Dataset         DatasetInfo `json:"dataset"`
}

type DatasetInfo struct {
	Variant string   `json:"variant"`
	Digest  string   `json:"digest"`
	Races   []string `json:"races"`
}

// QUERY (client -> server). Params carries the body of the matching HTTP
// route (DeltaRequest for "delta", ...) or the query string fields for
// "slot" and "full".
type QueryMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	ID              string          `json:"id"`
	Op              string          `json:"op"`
	Params          json.RawMessage `json:"params,omitempty"`
}

// RESULT (server -> client)
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Op              string `json:"op"`
	Data            any    `json:"data"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

// SlotValue accepts a slot written as a JSON number (7) or string ("2.1").
type SlotValue string

func (s *SlotValue) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = SlotValue(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = SlotValue(n.String())
	return nil
}

func (s SlotValue) String() string { return strings.TrimSpace(string(s)) }

// TierValue accepts 1..3 as a number or a string.
type TierValue string

func (t *TierValue) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*t = TierValue(str)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = TierValue(strconv.Itoa(n))
	return nil
}

func (t TierValue) String() string { return strings.TrimSpace(string(t)) }
