package protocol

import (
	"encoding/json"
	"testing"

	"islandwar/internal/game"
)

func TestDecodeMoveCommand(t *testing.T) {
	raw := json.RawMessage(`{"kind":"move","units":[4,5],"x":900,"y":1100}`)
	c, err := DecodeCommand(2, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Kind != game.CmdMove || c.Player != 2 {
		t.Fatalf("kind=%v player=%v", c.Kind, c.Player)
	}
	if len(c.Units) != 2 || c.Units[0] != 4 {
		t.Fatalf("units = %v", c.Units)
	}
	if c.X != 900 || c.Y != 1100 {
		t.Fatalf("dest = (%v,%v)", c.X, c.Y)
	}
}

func TestDecodeEnsureLoopCommand(t *testing.T) {
	c, err := DecodeCommand(1, json.RawMessage(`{"kind":"ensure_loop","units":[7,8,9,10]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Kind != game.CmdEnsureLoop {
		t.Fatalf("kind = %v", c.Kind)
	}
	if len(c.Units) != 4 || c.Units[0] != 7 {
		t.Fatalf("node ring = %v", c.Units)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	if _, err := DecodeCommand(0, json.RawMessage(`{"kind":"teleport","x":1,"y":1}`)); err == nil {
		t.Fatal("unknown kind accepted")
	}
}

func TestDecodeRejectsUnknownField(t *testing.T) {
	if _, err := DecodeCommand(0, json.RawMessage(`{"kind":"move","warp":true}`)); err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestDecodeRejectsBadTypeName(t *testing.T) {
	if _, err := DecodeCommand(0, json.RawMessage(`{"kind":"build","building":"castle","x":1,"y":1}`)); err == nil {
		t.Fatal("unknown building type accepted")
	}
	if _, err := DecodeCommand(0, json.RawMessage(`{"kind":"recruit","entity":3,"unit":"dragon"}`)); err == nil {
		t.Fatal("unknown unit type accepted")
	}
}

func TestDecodeIslandZeroDistinctFromAbsent(t *testing.T) {
	c, err := DecodeCommand(0, json.RawMessage(`{"kind":"move_island","units":[1],"island":0}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Island != 0 {
		t.Fatalf("island = %d, want 0", c.Island)
	}
	if _, err := DecodeCommand(0, json.RawMessage(`{"kind":"move_island","units":[1]}`)); err == nil {
		t.Fatal("move_island without island accepted")
	}
}

func TestDecodeRejectsOversizeSelection(t *testing.T) {
	msg := `{"kind":"move","x":1,"y":1,"units":[`
	for i := 0; i < 201; i++ {
		if i > 0 {
			msg += ","
		}
		msg += "1"
	}
	msg += `]}`
	if _, err := DecodeCommand(0, json.RawMessage(msg)); err == nil {
		t.Fatal("201-unit selection accepted")
	}
}

func TestServerEnvelopeRoundTrip(t *testing.T) {
	m := Welcome(3, "m-1", 33)
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var out ServerMsg
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	if out.Type != MsgWelcome || out.Player != 3 || out.TickMs != 33 {
		t.Fatalf("round trip lost fields: %+v", out)
	}
}
