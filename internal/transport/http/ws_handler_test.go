package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/core"
	"github.com/vovakirdan/chatrelay/internal/proto"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func startTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Port = 0
	cfg.ReadHeaderTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	hub := core.NewHub(core.Options{
		HistoryLimit:    cfg.HistoryLimit,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	disabledLogger := zerolog.Nop()
	server := NewServer(hub, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func dial(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}))
}

// readUntil reads frames until one with the given event arrives and decodes
// its data into v.
func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, event string, v any) {
	t.Helper()

	for {
		var f frame
		require.NoError(t, wsjson.Read(ctx, conn, &f), "waiting for %s", event)
		if f.Event != event {
			continue
		}
		if v != nil {
			require.NoError(t, json.Unmarshal(f.Data, v))
		}
		return
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t, nil)

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
}

func TestWebSocketUpgradeSendsConnectedFirst(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(ctx, t, ts)
	var f frame
	req.NoError(wsjson.Read(ctx, conn, &f))
	req.Equal(proto.EventConnected, f.Event)

	var connected proto.Connected
	req.NoError(json.Unmarshal(f.Data, &connected))
	req.NotEmpty(connected.ConnectionID)

	// Routes behind the mux still reach gin.
	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(200, resp.StatusCode)
}

func TestWebSocketChatScenario(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dial(ctx, t, ts)
	var aliceConn proto.Connected
	readUntil(ctx, t, alice, proto.EventConnected, &aliceConn)
	req.NotEmpty(aliceConn.ConnectionID)

	send(ctx, t, alice, proto.InboundTypeJoin, proto.JoinData{Username: "alice", Room: "tech"})
	var history []proto.Message
	readUntil(ctx, t, alice, proto.EventMessageHistory, &history)
	req.NotNil(history)
	req.Empty(history)
	var joined proto.JoinSuccess
	readUntil(ctx, t, alice, proto.EventJoinSuccess, &joined)
	req.Equal(proto.JoinSuccess{Username: "alice", Room: "tech", UsersCount: 1}, joined)

	send(ctx, t, alice, proto.InboundTypeChatMessage, proto.ChatMessageData{Message: "<script>"})
	var msg proto.Message
	readUntil(ctx, t, alice, proto.EventReceivedMessage, &msg)
	req.Equal("&lt;script&gt;", msg.Message)
	req.Equal("user", msg.Type)

	impostor := dial(ctx, t, ts)
	send(ctx, t, impostor, proto.InboundTypeJoin, proto.JoinData{Username: "alice", Room: "tech"})
	var perr proto.Error
	readUntil(ctx, t, impostor, proto.EventError, &perr)
	req.Equal(core.ErrCodeConflict, perr.Code)

	bob := dial(ctx, t, ts)
	var bobConn proto.Connected
	readUntil(ctx, t, bob, proto.EventConnected, &bobConn)
	send(ctx, t, bob, proto.InboundTypeJoin, proto.JoinData{Username: "bob", Room: "tech"})
	readUntil(ctx, t, bob, proto.EventMessageHistory, &history)
	req.Len(history, 1)
	req.Equal("&lt;script&gt;", history[0].Message)

	send(ctx, t, alice, proto.InboundTypePrivateMessage, proto.PrivateMessageData{Message: "psst", TargetConnectionID: bobConn.ConnectionID})
	var pm proto.PrivateMessage
	readUntil(ctx, t, bob, proto.EventPrivateMessageReceived, &pm)
	req.Equal("alice", pm.FromUsername)
	req.Equal(aliceConn.ConnectionID, pm.FromConnectionID)
	readUntil(ctx, t, alice, proto.EventPrivateMessageSent, &pm)
	req.Equal("bob", pm.ToUsername)

	send(ctx, t, alice, proto.InboundTypeTyping, proto.TypingData{IsTyping: true})
	var typing proto.UserTyping
	readUntil(ctx, t, bob, proto.EventUserTyping, &typing)
	req.Equal(proto.UserTyping{Username: "alice", IsTyping: true}, typing)

	send(ctx, t, alice, proto.InboundTypeChangeRoom, proto.ChangeRoomData{Room: "gaming"})
	var left proto.Message
	readUntil(ctx, t, bob, proto.EventUserLeft, &left)
	req.Equal("alice", left.Username)
	req.Equal("system", left.Type)
	var users []proto.User
	readUntil(ctx, t, bob, proto.EventUsersList, &users)
	req.Equal([]proto.User{{Username: "bob", ConnectionID: bobConn.ConnectionID}}, users)
	var changed proto.RoomChanged
	readUntil(ctx, t, alice, proto.EventRoomChanged, &changed)
	req.Equal(proto.RoomChanged{Room: "gaming", UsersCount: 1}, changed)

	send(ctx, t, bob, proto.InboundTypeGetRooms, nil)
	var rooms []proto.Room
	readUntil(ctx, t, bob, proto.EventRoomsList, &rooms)
	req.Equal([]proto.Room{{Name: "gaming", UsersCount: 1}, {Name: "tech", UsersCount: 1}}, rooms)

	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(200, resp.StatusCode)
	var listed []proto.Room
	req.NoError(json.NewDecoder(resp.Body).Decode(&listed))
	req.Equal(rooms, listed)

	// Closing alice's socket removes her from the directory.
	alice.Close(websocket.StatusNormalClosure, "bye")
	deadline := time.Now().Add(2 * time.Second)
	for {
		send(ctx, t, bob, proto.InboundTypeGetRooms, nil)
		readUntil(ctx, t, bob, proto.EventRoomsList, &rooms)
		if len(rooms) == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	req.Equal([]proto.Room{{Name: "tech", UsersCount: 1}}, rooms)
}

func TestWebSocketBadFramesKeepConnection(t *testing.T) {
	req := require.New(t)
	ts := startTestServer(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(ctx, t, ts)

	req.NoError(conn.Write(ctx, websocket.MessageText, []byte("not json")))
	var perr proto.Error
	readUntil(ctx, t, conn, proto.EventError, &perr)
	req.Equal(core.ErrCodeBadRequest, perr.Code)

	send(ctx, t, conn, "dance", nil)
	readUntil(ctx, t, conn, proto.EventError, &perr)
	req.Equal(core.ErrCodeBadRequest, perr.Code)

	send(ctx, t, conn, proto.InboundTypeChatMessage, proto.ChatMessageData{Message: "hi"})
	readUntil(ctx, t, conn, proto.EventError, &perr)
	req.Equal(core.MsgMustJoinFirst, perr.Message)

	send(ctx, t, conn, proto.InboundTypeJoin, proto.JoinData{Username: "still-here"})
	var joined proto.JoinSuccess
	readUntil(ctx, t, conn, proto.EventJoinSuccess, &joined)
	req.Equal(core.DefaultRoom, joined.Room)
}

func TestWebSocketFrameGuard(t *testing.T) {
	ts := startTestServer(t, func(cfg *config.Config) {
		cfg.FrameRate = 0.001
		cfg.FrameBurst = 2
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dial(ctx, t, ts)
	for i := range 3 {
		send(ctx, t, conn, proto.InboundTypeGetRooms, fmt.Sprintf("req-%d", i))
	}

	var perr proto.Error
	readUntil(ctx, t, conn, proto.EventError, &perr)
	require.Equal(t, core.ErrCodeRateLimited, perr.Code)
}
