// Package protocol defines the JSON wire format between match clients and
// the simulation host, and validates inbound commands before they reach the
// world's inbox. Anything that fails validation is rejected at the boundary;
// the simulation only ever sees well-formed commands.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"islandwar/internal/game"
)

// Client message types.
const (
	MsgJoin    = "join"
	MsgCommand = "command"
	MsgPing    = "ping"
)

// Server message types.
const (
	MsgWelcome  = "welcome"
	MsgSnapshot = "snapshot"
	MsgError    = "error"
	MsgPong     = "pong"
	MsgOver     = "over"
)

// ClientMsg is the envelope for everything a client sends.
type ClientMsg struct {
	Type string          `json:"type"`
	Seq  int             `json:"seq,omitempty"`
	Name string          `json:"name,omitempty"`
	Cmd  json.RawMessage `json:"cmd,omitempty"`
}

// ServerMsg is the envelope for everything the host sends. Exactly one of
// the payload fields is set, keyed by Type.
type ServerMsg struct {
	Type     string         `json:"type"`
	Seq      int            `json:"seq,omitempty"`
	Player   int            `json:"player,omitempty"`
	MatchID  string         `json:"match_id,omitempty"`
	TickMs   int            `json:"tick_ms,omitempty"`
	Error    string         `json:"error,omitempty"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Winner   int            `json:"winner,omitempty"`
}

// wireCommand is the schema-validated shape of a command payload. Island is
// a pointer so "island 0" and "island absent" stay distinguishable.
type wireCommand struct {
	Kind     string  `json:"kind"`
	Units    []int   `json:"units,omitempty"`
	Entity   int     `json:"entity,omitempty"`
	Other    int     `json:"other,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Island   *int    `json:"island,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Building string  `json:"building,omitempty"`
	Enable   bool    `json:"enable,omitempty"`
}

// commandSchema constrains command payloads structurally: known kinds only,
// sane coordinate and id ranges, bounded unit lists. Semantic checks
// (ownership, funds, placement) stay inside the simulation.
const commandSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["kind"],
  "properties": {
    "kind": {
      "enum": ["move", "move_island", "build", "recruit", "connect",
               "ensure_loop", "upgrade", "gate", "delete", "load", "unload",
               "god_mode"]
    },
    "units": {
      "type": "array",
      "items": {"type": "integer", "minimum": 1},
      "maxItems": 200
    },
    "entity": {"type": "integer", "minimum": 0},
    "other": {"type": "integer", "minimum": 0},
    "x": {"type": "number", "minimum": -100000, "maximum": 100000},
    "y": {"type": "number", "minimum": -100000, "maximum": 100000},
    "island": {"type": "integer", "minimum": 0},
    "unit": {"type": "string", "maxLength": 32},
    "building": {"type": "string", "maxLength": 32},
    "enable": {"type": "boolean"}
  },
  "additionalProperties": false
}`

var compiledCommandSchema = jsonschema.MustCompileString("command.json", commandSchema)

var unitNames = map[string]game.UnitType{
	"builder":   game.UnitBuilder,
	"soldier":   game.UnitSoldier,
	"tank":      game.UnitTank,
	"arcer":     game.UnitArcer,
	"mortar":    game.UnitMortar,
	"gunboat":   game.UnitGunboat,
	"destroyer": game.UnitDestroyer,
	"carrier":   game.UnitCarrier,
	"gunship":   game.UnitGunship,
	"bomber":    game.UnitBomber,
}

var buildingNames = map[string]game.BuildingType{
	"headquarters": game.BuildingHQ,
	"barracks":     game.BuildingBarracks,
	"factory":      game.BuildingFactory,
	"harbor":       game.BuildingHarbor,
	"airfield":     game.BuildingAirfield,
	"mine":         game.BuildingMine,
	"rig":          game.BuildingRig,
	"tower":        game.BuildingTower,
	"wall_node":    game.BuildingWallNode,
	"bridge_node":  game.BuildingBridgeNode,
}

// DecodeCommand validates a raw command payload and maps it onto the
// simulation's command struct for the given player.
func DecodeCommand(player game.PlayerID, raw json.RawMessage) (game.Command, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return game.Command{}, fmt.Errorf("command not valid JSON: %w", err)
	}
	if err := compiledCommandSchema.Validate(v); err != nil {
		return game.Command{}, fmt.Errorf("command rejected: %w", err)
	}

	var wc wireCommand
	if err := json.Unmarshal(raw, &wc); err != nil {
		return game.Command{}, err
	}

	c := game.Command{
		Kind:   game.CommandKind(wc.Kind),
		Player: player,
		Entity: game.EntityID(wc.Entity),
		Other:  game.EntityID(wc.Other),
		X:      wc.X,
		Y:      wc.Y,
		Island: -1,
		Enable: wc.Enable,
	}
	for _, id := range wc.Units {
		c.Units = append(c.Units, game.EntityID(id))
	}
	if wc.Island != nil {
		c.Island = *wc.Island
	}

	switch c.Kind {
	case game.CmdRecruit:
		t, ok := unitNames[wc.Unit]
		if !ok {
			return game.Command{}, fmt.Errorf("unknown unit type %q", wc.Unit)
		}
		c.UnitT = t
	case game.CmdBuild:
		t, ok := buildingNames[wc.Building]
		if !ok {
			return game.Command{}, fmt.Errorf("unknown building type %q", wc.Building)
		}
		c.BuildT = t
	case game.CmdMoveIsland:
		if wc.Island == nil {
			return game.Command{}, fmt.Errorf("move_island needs an island")
		}
	}
	return c, nil
}

// Welcome builds the join acknowledgement.
func Welcome(player game.PlayerID, matchID string, tickMs int) ServerMsg {
	return ServerMsg{Type: MsgWelcome, Player: int(player), MatchID: matchID, TickMs: tickMs}
}

// SnapshotMsg wraps a world snapshot for broadcast.
func SnapshotMsg(s game.Snapshot) ServerMsg {
	return ServerMsg{Type: MsgSnapshot, Snapshot: &s}
}

// ErrorMsg reports a rejected client message, echoing its sequence number.
func ErrorMsg(seq int, err error) ServerMsg {
	return ServerMsg{Type: MsgError, Seq: seq, Error: err.Error()}
}
