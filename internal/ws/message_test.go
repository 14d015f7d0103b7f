package ws_test

import (
	"encoding/json"
	"testing"

	"github.com/uset82/My-Football-Game/internal/ws"
)

func TestNewMessage_WireShape(t *testing.T) {
	msg, err := ws.NewMessage(ws.MsgJoined, ws.JoinedPayload{Room: "public", Role: ws.RoleP1})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	data, err := ws.Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	want := `{"type":"joined","payload":{"room":"public","role":"p1"}}`
	if string(data) != want {
		t.Fatalf("wire = %s, want %s", data, want)
	}
}

func TestInputPayload_KeyNames(t *testing.T) {
	msg, _ := ws.NewMessage(ws.MsgInput, ws.InputPayload{
		Role: ws.RoleP2,
		Room: "r1",
		Keys: ws.Keys{LeftPressed: true, IsChargingPower: true, PowerLevel: 12},
	})

	var raw struct {
		Keys map[string]any `json:"keys"`
	}
	if err := json.Unmarshal(msg.Payload, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"leftPressed", "rightPressed", "upPressed", "downPressed", "isChargingPower", "powerLevel"} {
		if _, ok := raw.Keys[key]; !ok {
			t.Fatalf("keys missing %q: %v", key, raw.Keys)
		}
	}
	if _, ok := raw.Keys["kick"]; ok {
		t.Fatalf("kick sent without a kick")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"state", `{"type":"state","payload":{"room":"a","data":{}}}`, false},
		{"no payload", `{"type":"start"}`, false},
		{"no type", `{"payload":{}}`, true},
		{"garbage", `{{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ws.Decode([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	msg, _ := ws.NewMessage(ws.MsgPlayerLeft, ws.PeerPayload{Role: ws.RoleP2, ID: "abc"})
	got, err := ws.DecodePayload[ws.PeerPayload](msg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Role != ws.RoleP2 || got.ID != "abc" {
		t.Fatalf("payload = %+v", got)
	}
}

func TestRole(t *testing.T) {
	if !ws.RoleP1.Host() || ws.RoleP2.Host() || ws.RoleSpectator.Host() {
		t.Fatalf("only p1 hosts")
	}
	if ws.RoleSpectator.Player() {
		t.Fatalf("spectators do not play")
	}
	if !ws.Relayed(ws.MsgState) || ws.Relayed(ws.MsgJoined) {
		t.Fatalf("relay set wrong")
	}
}
