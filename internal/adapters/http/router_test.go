package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"

	"github.com/tmakov/Huddle/internal/app"
	"github.com/tmakov/Huddle/internal/app/orch"
	"github.com/tmakov/Huddle/internal/config"
)

const testSecret = "test-secret"

func testToken(t *testing.T, secret, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: subject})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func testServer(t *testing.T) (*httptest.Server, *orch.Orchestrator) {
	t.Helper()
	cfg := &config.Config{
		Mode:   "release",
		Secret: testSecret,
		ICEServers: []config.ICEServer{
			{URLs: []string{"stun:stun.example.org:3478"}},
		},
	}
	o := &orch.Orchestrator{
		Registry:   app.NewRegistry(),
		Rooms:      app.NewRoomStore(),
		Directory:  app.NewCodeShapeDirectory(),
		ICEServers: cfg.WebRTCICEServers(),
	}
	srv := httptest.NewServer(SetupRouter(context.Background(), cfg, o))
	t.Cleanup(srv.Close)
	return srv, o
}

func TestHealthzIsPublic(t *testing.T) {
	srv, _ := testServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
}

func TestAPIRejectsMissingToken(t *testing.T) {
	srv, _ := testServer(t)
	resp, err := http.Get(srv.URL + "/api/ice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", resp.StatusCode)
	}
}

func TestAPIRejectsBadSignature(t *testing.T) {
	srv, _ := testServer(t)
	token := testToken(t, "other-secret", "user-1")
	resp, err := http.Get(srv.URL + "/api/ice?token=" + token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d, want 401", resp.StatusCode)
	}
}

func TestICEConfigWithToken(t *testing.T) {
	srv, _ := testServer(t)
	token := testToken(t, testSecret, "user-1")
	resp, err := http.Get(srv.URL + "/api/ice?token=" + token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.ICEServers) != 1 || body.ICEServers[0].URLs[0] != "stun:stun.example.org:3478" {
		t.Fatalf("iceServers=%+v", body.ICEServers)
	}
}

func TestRoomProbe(t *testing.T) {
	srv, o := testServer(t)
	token := testToken(t, testSecret, "user-1")

	resp, err := http.Get(srv.URL + "/api/rooms/111-222-333?token=" + token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status=%d for absent room, want 404", resp.StatusCode)
	}

	o.Rooms.AddActive("111-222-333", "A", "Alice")
	o.Rooms.SetLock("111-222-333", true)

	resp, err = http.Get(srv.URL + "/api/rooms/111-222-333?token=" + token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	var info struct {
		MemberCount int  `json:"memberCount"`
		Locked      bool `json:"locked"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.MemberCount != 1 || !info.Locked {
		t.Fatalf("info=%+v, want 1 member locked", info)
	}
}

func TestRoomListing(t *testing.T) {
	srv, o := testServer(t)
	token := testToken(t, testSecret, "user-1")
	o.Rooms.AddActive("111-222-333", "A", "Alice")
	o.Rooms.AddActive("444-555-666", "B", "Bob")

	resp, err := http.Get(srv.URL + "/api/rooms?token=" + token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	var body struct {
		Rooms []struct {
			Code        string `json:"code"`
			MemberCount int    `json:"memberCount"`
		} `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Rooms) != 2 {
		t.Fatalf("rooms=%+v, want 2 entries", body.Rooms)
	}
	for _, r := range body.Rooms {
		if r.MemberCount != 1 {
			t.Fatalf("room %s has %d members, want 1", r.Code, r.MemberCount)
		}
	}
}

func TestBearerHeaderAccepted(t *testing.T) {
	srv, _ := testServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/ice", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t, testSecret, "user-1"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
}
