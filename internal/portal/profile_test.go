package portal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	if err := p.Validate(); err != nil {
		t.Fatalf("embedded profile invalid: %v", err)
	}
	if p.Delays.Animation != 400*time.Millisecond || p.Delays.TicketMenu != 8*time.Second {
		t.Errorf("unexpected delays %+v", p.Delays)
	}
	if len(p.Selectors.Classification) != 3 {
		t.Errorf("expected 3 classification dropdowns, got %d", len(p.Selectors.Classification))
	}
	if len(p.Selectors.EditorOpen) != 2 {
		t.Errorf("expected 2 editor selectors, got %d", len(p.Selectors.EditorOpen))
	}
}

func TestTicketID(t *testing.T) {
	urls := DefaultProfile().URLs
	if got := urls.TicketID(urls.TicketURL("123456")); got != "123456" {
		t.Errorf("expected 123456, got %q", got)
	}
	if got := urls.TicketID("https://elsewhere/#/x"); got != "https://elsewhere/#/x" {
		t.Errorf("expected unrelated URL unchanged, got %q", got)
	}
}

func TestLoadProfileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	override := "urls:\n  portal: \"https://itsm.example.com/#/\"\ndelays:\n  ticket_menu: 12s\n"
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() failed: %v", err)
	}
	if p.URLs.Portal != "https://itsm.example.com/#/" {
		t.Errorf("override not applied: %q", p.URLs.Portal)
	}
	if p.URLs.SmartRecorder != DefaultProfile().URLs.SmartRecorder {
		t.Errorf("default lost on merge: %q", p.URLs.SmartRecorder)
	}
	if p.Delays.TicketMenu != 12*time.Second || p.Delays.UserLoad != 2*time.Second {
		t.Errorf("unexpected delays %+v", p.Delays)
	}
}

func TestLoadProfileRejectsBlankSelector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte("selectors:\n  save_button: \"\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadProfile(path); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestLoadProfileEmptyPath(t *testing.T) {
	p, err := LoadProfile("")
	if err != nil {
		t.Fatalf("LoadProfile() failed: %v", err)
	}
	if p.URLs.Portal == "" {
		t.Error("expected built-in profile")
	}
}
