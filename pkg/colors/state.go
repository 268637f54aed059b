package colors

import (
	"encoding/json"
	"strconv"
	"strings"
)

// State is the return state of a behavior-tree node.
type State int

// States use 1..4; 0 means unknown.
const (
	Unknown State = iota
	Idle
	Running
	Success
	Failure
)

var stateNames = map[State]string{
	Idle:    "IDLE",
	Running: "RUNNING",
	Success: "SUCCESS",
	Failure: "FAILURE",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// Palette maps states to fills.
var Palette = map[State]string{
	Idle:    "#cccccc",
	Running: "#ffc94d",
	Success: "#46d160",
	Failure: "#ff4b4b",
}

// UnknownFill is the fill for nodes whose state is not known.
const UnknownFill = "#cccccc"

// Color returns the fill for s.
func (s State) Color() string {
	if c, ok := Palette[s]; ok {
		return c
	}
	return UnknownFill
}

// StateFromInt maps a numeric status. Values 1..4 are State values; 0 is the
// BehaviorTree.CPP IDLE code. Anything else is Unknown.
func StateFromInt(v int) State {
	switch {
	case v >= int(Idle) && v <= int(Failure):
		return State(v)
	case v == 0:
		return Idle
	}
	return Unknown
}

// StateFromName maps a case-insensitive state name.
func StateFromName(name string) State {
	name = strings.ToUpper(strings.TrimSpace(name))
	for s, n := range stateNames {
		if n == name {
			return s
		}
	}
	return Unknown
}

// ParseState maps a raw JSON status: a number is handled by StateFromInt,
// a string by StateFromName (numeric strings are accepted too).
func ParseState(raw json.RawMessage) State {
	if len(raw) == 0 || string(raw) == "null" {
		return Unknown
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return StateFromInt(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Unknown
	}
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return StateFromInt(n)
	}
	return StateFromName(s)
}
