package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestDefaultKeyMap_AllBindingsDefined(t *testing.T) {
	km := DefaultKeyMap()

	bindings := []struct {
		name    string
		binding key.Binding
	}{
		{"Quit", km.Quit},
		{"Rerun", km.Rerun},
		{"Help", km.Help},
	}

	for _, b := range bindings {
		t.Run(b.name, func(t *testing.T) {
			if !b.binding.Enabled() {
				t.Errorf("expected %s binding to be enabled", b.name)
			}
			if len(b.binding.Keys()) == 0 {
				t.Errorf("expected %s binding to have at least one key", b.name)
			}
			if b.binding.Help().Desc == "" {
				t.Errorf("expected %s binding to have a help text", b.name)
			}
		})
	}
}

func TestDefaultKeyMap_QuitKeys(t *testing.T) {
	km := DefaultKeyMap()

	keys := map[string]bool{}
	for _, k := range km.Quit.Keys() {
		keys[k] = true
	}
	if !keys["q"] || !keys["ctrl+c"] {
		t.Errorf("Quit keys = %v, want q and ctrl+c", km.Quit.Keys())
	}
	if got := km.Rerun.Keys(); len(got) != 1 || got[0] != "r" {
		t.Errorf("Rerun keys = %v, want [r]", got)
	}
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) != 3 {
		t.Errorf("ShortHelp has %d bindings, want 3", len(km.ShortHelp()))
	}
	total := 0
	for _, col := range km.FullHelp() {
		total += len(col)
	}
	if total != 3 {
		t.Errorf("FullHelp has %d bindings, want 3", total)
	}
}
