package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tmakov/Huddle/internal/app"
	"github.com/tmakov/Huddle/internal/app/orch"
	"github.com/tmakov/Huddle/internal/config"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{ReadLimit: 32768, PingPeriod: 54 * time.Second}
	o := &orch.Orchestrator{
		Registry:  app.NewRegistry(),
		Rooms:     app.NewRoomStore(),
		Directory: app.NewCodeShapeDirectory(),
	}
	ctl := NewSignalWSController(o, cfg)
	g := gin.New()
	g.GET("/ws", func(c *gin.Context) {
		// Auth middleware runs upstream in the real router.
		c.Set("principal", "tester")
		ctl.HandleSignal(context.Background(), c)
	})
	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readEvent(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev map[string]any
	if err := ws.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func expectType(t *testing.T, ws *websocket.Conn, typ string) map[string]any {
	t.Helper()
	ev := readEvent(t, ws)
	if ev["type"] != typ {
		t.Fatalf("event type=%v, want %q (full event: %v)", ev["type"], typ, ev)
	}
	return ev
}

func TestPingPong(t *testing.T) {
	srv := testServer(t)
	ws := dial(t, srv)
	expectType(t, ws, "welcome")

	if err := ws.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	expectType(t, ws, "pong")
}

func TestJoinAdmitSignalOverWire(t *testing.T) {
	srv := testServer(t)

	a := dial(t, srv)
	aWelcome := expectType(t, a, "welcome")
	aID := aWelcome["connectionId"].(string)

	if err := a.WriteJSON(map[string]any{
		"type": "join", "meetingCode": "111-222-333", "displayName": "Alice",
	}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	expectType(t, a, "roster-update")

	b := dial(t, srv)
	bWelcome := expectType(t, b, "welcome")
	bID := bWelcome["connectionId"].(string)

	if err := b.WriteJSON(map[string]any{
		"type": "join-request", "meetingCode": "111-222-333", "displayName": "Bob",
	}); err != nil {
		t.Fatalf("write join-request: %v", err)
	}
	waiting := expectType(t, a, "update-waiting-list")
	list := waiting["waiting"].([]any)
	if len(list) != 1 || list[0].(map[string]any)["id"] != bID {
		t.Fatalf("waiting=%v, want [%s]", list, bID)
	}

	if err := a.WriteJSON(map[string]any{
		"type": "admit", "targetConnectionId": bID,
	}); err != nil {
		t.Fatalf("write admit: %v", err)
	}
	expectType(t, b, "admitted")
	expectType(t, b, "roster-update")
	roster := expectType(t, a, "roster-update")
	members := roster["members"].([]any)
	if len(members) != 2 {
		t.Fatalf("roster=%v, want 2 members", members)
	}
	expectType(t, a, "update-waiting-list")
	expectType(t, b, "update-waiting-list")

	if err := a.WriteJSON(map[string]any{
		"type": "signal", "targetConnectionId": bID,
		"payload": map[string]any{"sdp": "offer-x"},
	}); err != nil {
		t.Fatalf("write signal: %v", err)
	}
	sig := expectType(t, b, "signal")
	if sig["senderId"] != aID {
		t.Fatalf("senderId=%v, want %s", sig["senderId"], aID)
	}
	if sig["payload"].(map[string]any)["sdp"] != "offer-x" {
		t.Fatalf("payload=%v, want offer-x", sig["payload"])
	}
}

func TestUnknownEventIsIgnored(t *testing.T) {
	srv := testServer(t)
	ws := dial(t, srv)
	expectType(t, ws, "welcome")

	if err := ws.WriteJSON(map[string]any{"type": "warp-speed"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Connection must stay usable.
	if err := ws.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	expectType(t, ws, "pong")
}
