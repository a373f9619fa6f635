package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write settings: %v", err)
		}
	}
	return NewStore(path)
}

const sample = `; operator settings
[Microsoft]
email    = ops@example.com
password = hunter2

[Log]
counter = 7

[GUI]
language  = pt-BR
auto_open = 1
`

func TestLoadMissingWritesDefaults(t *testing.T) {
	store := newStore(t, "")

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg != Defaults() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("expected settings file to be created: %v", err)
	}
}

func TestLoad(t *testing.T) {
	store := newStore(t, sample)

	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	want := Settings{Email: "ops@example.com", Password: "hunter2", Counter: 7, Language: "pt-BR", AutoOpen: true}
	if cfg != want {
		t.Errorf("expected %+v, got %+v", want, cfg)
	}
}

func TestLoadRejectsBadCounter(t *testing.T) {
	store := newStore(t, "[Log]\ncounter = many\n")
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for non-numeric counter")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newStore(t, sample)

	before, err := store.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if err := store.Save(before); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	after, err := store.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if before != after {
		t.Errorf("round trip changed settings: %+v -> %+v", before, after)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.Contains(string(raw), "operator settings") {
		t.Error("expected comments outside managed keys to survive a save")
	}
}

func TestIncrementCounter(t *testing.T) {
	store := newStore(t, sample)

	for want := 8; want <= 10; want++ {
		got, err := store.IncrementCounter()
		if err != nil {
			t.Fatalf("IncrementCounter() failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected counter %d, got %d", want, got)
		}
	}
}

func TestIncrementCounterRereadsFile(t *testing.T) {
	store := newStore(t, sample)
	if _, err := store.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Another writer bumps the counter behind the store's back.
	if err := os.WriteFile(store.Path(), []byte(strings.Replace(sample, "counter = 7", "counter = 40", 1)), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	got, err := store.IncrementCounter()
	if err != nil {
		t.Fatalf("IncrementCounter() failed: %v", err)
	}
	if got != 41 {
		t.Errorf("expected 41, got %d", got)
	}
}

func TestUpdateLanguage(t *testing.T) {
	store := newStore(t, sample)

	ok, err := store.UpdateLanguage("klingon")
	if err != nil || ok {
		t.Fatalf("expected invalid language to be ignored, got ok=%v err=%v", ok, err)
	}
	cfg, _ := store.Load()
	if cfg.Language != "pt-BR" {
		t.Errorf("language changed to %q", cfg.Language)
	}

	ok, err = store.UpdateLanguage("es-ES")
	if err != nil || !ok {
		t.Fatalf("expected es-ES to be accepted, got ok=%v err=%v", ok, err)
	}
	cfg, _ = store.Load()
	if cfg.Language != "es-ES" {
		t.Errorf("expected es-ES, got %q", cfg.Language)
	}
}

func TestUpdateCredentials(t *testing.T) {
	store := newStore(t, sample)

	if err := store.UpdateCredentials("", "new-pass"); err != nil {
		t.Fatalf("UpdateCredentials() failed: %v", err)
	}
	cfg, _ := store.Load()
	if cfg.Email != "ops@example.com" || cfg.Password != "new-pass" {
		t.Errorf("unexpected credentials %+v", cfg)
	}

	if err := store.UpdateCredentials("desk@example.com", "other"); err != nil {
		t.Fatalf("UpdateCredentials() failed: %v", err)
	}
	cfg, _ = store.Load()
	if cfg.Email != "desk@example.com" || cfg.Password != "other" {
		t.Errorf("unexpected credentials %+v", cfg)
	}
}

func TestUpdateAutoOpen(t *testing.T) {
	store := newStore(t, sample)

	if err := store.UpdateAutoOpen(false); err != nil {
		t.Fatalf("UpdateAutoOpen() failed: %v", err)
	}
	cfg, _ := store.Load()
	if cfg.AutoOpen {
		t.Error("expected auto_open disabled")
	}
}

func TestUpdateAPIPasswordHash(t *testing.T) {
	store := newStore(t, sample)

	if err := store.UpdateAPIPasswordHash("$2a$04$abc"); err != nil {
		t.Fatalf("UpdateAPIPasswordHash() failed: %v", err)
	}
	cfg, err := store.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.APIPasswordHash != "$2a$04$abc" {
		t.Errorf("expected stored hash, got %q", cfg.APIPasswordHash)
	}
	if cfg.Password != "hunter2" {
		t.Errorf("Microsoft password changed: %q", cfg.Password)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "[API]") || !strings.Contains(string(raw), "password_hash") {
		t.Errorf("expected an [API] password_hash key:\n%s", raw)
	}
}
