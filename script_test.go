package main

import (
	"errors"
	"testing"
)

func TestParseScript(t *testing.T) {
	commands, err := parseScript(" in, 2*repeat ,AT:10:20,,save")
	if err != nil {
		t.Fatalf("parseScript() error: %v", err)
	}
	want := []command{{name: "in"}, {name: "repeat"}, {name: "repeat"}, {name: "at", x: 10, y: 20}, {name: "save"}}
	if len(commands) != len(want) {
		t.Fatalf("parseScript() = %v, want %v", commands, want)
	}
	for i := range want {
		if commands[i] != want[i] {
			t.Errorf("command %d = %v, want %v", i, commands[i], want[i])
		}
	}

	if commands, err = parseScript(""); err != nil || len(commands) != 0 {
		t.Errorf("parseScript(\"\") = %v, %v", commands, err)
	}
}

func TestParseScriptErrors(t *testing.T) {
	for _, script := range []string{"jump", "at:1", "at:x:2", "0*in", "a*in"} {
		if _, err := parseScript(script); !errors.Is(err, errCommand) {
			t.Errorf("parseScript(%q) error = %v, want errCommand", script, err)
		}
	}
}
