package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fdv.tools/internal/catalogs"
	"fdv.tools/internal/protocol"
	"fdv.tools/internal/query"
)

type frame struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Op        string          `json:"op"`
	Code      string          `json:"code"`
	SessionID string          `json:"session_id"`
	Dataset   json.RawMessage `json:"dataset"`
	Data      json.RawMessage `json:"data"`
}

func startServer(t *testing.T) (*Server, *httptest.Server, string) {
	t.Helper()
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	require.NoError(t, err)
	s := NewServer(query.New(ds), nil)
	hs := httptest.NewServer(s.Handler())
	return s, hs, "ws" + strings.TrimPrefix(hs.URL, "http")
}

func roundTrip(t *testing.T, c *websocket.Conn, v any) frame {
	t.Helper()
	require.NoError(t, c.WriteJSON(v))
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	require.NoError(t, c.ReadJSON(&f))
	return f
}

func TestSession_HelloThenQueries(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, hs, url := startServer(t)
	defer hs.Close()

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	welcome := roundTrip(t, c, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"})
	assert.Equal(t, protocol.TypeWelcome, welcome.Type)
	assert.NotEmpty(t, welcome.SessionID)
	var info protocol.DatasetInfo
	require.NoError(t, json.Unmarshal(welcome.Dataset, &info))
	assert.Equal(t, "v0.6", info.Variant)
	assert.Equal(t, []string{"humains", "rocktal", "mecas", "kaelesh"}, info.Races)

	res := roundTrip(t, c, protocol.QueryMsg{
		Type: protocol.TypeQuery, ProtocolVersion: protocol.Version, ID: "q1", Op: protocol.OpSlot,
		Params: json.RawMessage(`{"race":"humains","slot":"2.1"}`),
	})
	assert.Equal(t, protocol.TypeResult, res.Type)
	assert.Equal(t, "q1", res.ID)
	var slot protocol.SlotResponse
	require.NoError(t, json.Unmarshal(res.Data, &slot))
	assert.Equal(t, []int{43, 43, 4, 0, 2, 0, 3}, slot.Levels)

	res = roundTrip(t, c, protocol.QueryMsg{
		Type: protocol.TypeQuery, ID: "q2", Op: protocol.OpAutoSlot,
		Params: json.RawMessage(`{"race":"mecas","current":[72,83,14,9,30,22]}`),
	})
	var auto protocol.AutoSlotResponse
	require.NoError(t, json.Unmarshal(res.Data, &auto))
	assert.Equal(t, 18, auto.MaxReachable)

	bad := roundTrip(t, c, protocol.QueryMsg{
		Type: protocol.TypeQuery, ID: "q3", Op: protocol.OpSlot,
		Params: json.RawMessage(`{"race":"elves","slot":"1"}`),
	})
	assert.Equal(t, protocol.TypeError, bad.Type)
	assert.Equal(t, "q3", bad.ID)
	assert.Equal(t, protocol.ErrInvalidRace, bad.Code)

	junk := roundTrip(t, c, map[string]any{"type": "ACT"})
	assert.Equal(t, protocol.TypeError, junk.Type)
	assert.Equal(t, protocol.ErrBadRequest, junk.Code)

	assert.Equal(t, int64(1), s.Active())
	require.NoError(t, c.Close())
	assert.Eventually(t, func() bool { return s.Active() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandshake_RejectsNonHello(t *testing.T) {
	defer goleak.VerifyNone(t)

	_, hs, url := startServer(t)
	defer hs.Close()

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteJSON(map[string]any{"type": "QUERY", "id": "x", "op": "meta"}))
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = c.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation), err.Error())
}

func TestHandshake_RejectsWrongVersion(t *testing.T) {
	_, hs, url := startServer(t)
	defer hs.Close()

	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.1"}))
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}
