package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"sync"

	"gopkg.in/ini.v1"

	"github.com/spec-kit/haf/pkg/util/fileutil"
)

const (
	sectionMicrosoft = "Microsoft"
	sectionLog       = "Log"
	sectionGUI       = "GUI"
	sectionAPI       = "API"

	keyEmail    = "email"
	keyPassword = "password"
	keyCounter  = "counter"
	keyLanguage = "language"
	keyAutoOpen = "auto_open"
	keyAPIHash  = "password_hash"
)

// DefaultLanguage is written when no settings file exists.
const DefaultLanguage = "en-US"

// Languages lists the accepted GUI languages.
var Languages = []string{"en-US", "pt-BR", "es-ES"}

// Settings is the operator configuration kept in the INI file.
type Settings struct {
	Email    string
	Password string
	Counter  int
	Language string
	AutoOpen bool

	// APIPasswordHash is the bcrypt hash guarding the local API login.
	APIPasswordHash string
}

// Defaults returns the settings written for a fresh install.
func Defaults() Settings {
	return Settings{Language: DefaultLanguage}
}

// ValidLanguage reports whether lang is in the allow-list.
func ValidLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Store reads and writes the INI settings file. Every mutation re-reads the
// file, applies one change and writes it back through a temp file, all under
// an in-process lock. Nothing guards against a second process.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store bound to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings, writing defaults first if the file is missing.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, cfg, err := s.read()
	return cfg, err
}

// Save overwrites every managed key with cfg.
func (s *Store) Save(cfg Settings) error {
	return s.mutate(func(current *Settings) {
		*current = cfg
	})
}

// UpdateCredentials replaces the password and, when email is not empty, the email.
func (s *Store) UpdateCredentials(email, password string) error {
	return s.mutate(func(current *Settings) {
		current.Password = password
		if email != "" {
			current.Email = email
		}
	})
}

// UpdateAPIPasswordHash stores the bcrypt hash for the local API login.
func (s *Store) UpdateAPIPasswordHash(hash string) error {
	return s.mutate(func(current *Settings) {
		current.APIPasswordHash = hash
	})
}

// IncrementCounter adds one to the log counter and returns the new value.
func (s *Store) IncrementCounter() (int, error) {
	var counter int
	err := s.mutate(func(current *Settings) {
		current.Counter++
		counter = current.Counter
	})
	return counter, err
}

// UpdateLanguage stores lang when it is in the allow-list. It reports whether
// the language was accepted; an unknown language leaves the file unchanged.
func (s *Store) UpdateLanguage(lang string) (bool, error) {
	if !ValidLanguage(lang) {
		return false, nil
	}
	err := s.mutate(func(current *Settings) {
		current.Language = lang
	})
	return err == nil, err
}

// UpdateAutoOpen stores the GUI auto-open flag.
func (s *Store) UpdateAutoOpen(enabled bool) error {
	return s.mutate(func(current *Settings) {
		current.AutoOpen = enabled
	})
}

func (s *Store) mutate(apply func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, current, err := s.read()
	if err != nil {
		return err
	}
	apply(&current)
	return s.write(file, current)
}

func (s *Store) read() (*ini.File, Settings, error) {
	file, err := ini.Load(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		file = ini.Empty()
		defaults := Defaults()
		if err := s.write(file, defaults); err != nil {
			return nil, Settings{}, err
		}
		return file, defaults, nil
	}
	if err != nil {
		return nil, Settings{}, fmt.Errorf("read settings %s: %w", s.path, err)
	}

	cfg := Settings{
		Email:    file.Section(sectionMicrosoft).Key(keyEmail).String(),
		Password: file.Section(sectionMicrosoft).Key(keyPassword).String(),
		Language: file.Section(sectionGUI).Key(keyLanguage).MustString(DefaultLanguage),
		AutoOpen: file.Section(sectionGUI).Key(keyAutoOpen).MustBool(false),

		APIPasswordHash: file.Section(sectionAPI).Key(keyAPIHash).String(),
	}
	if raw := file.Section(sectionLog).Key(keyCounter).String(); raw != "" {
		counter, err := strconv.Atoi(raw)
		if err != nil {
			return nil, Settings{}, fmt.Errorf("read settings %s: invalid counter %q", s.path, raw)
		}
		cfg.Counter = counter
	}
	return file, cfg, nil
}

func (s *Store) write(file *ini.File, cfg Settings) error {
	file.Section(sectionMicrosoft).Key(keyEmail).SetValue(cfg.Email)
	file.Section(sectionMicrosoft).Key(keyPassword).SetValue(cfg.Password)
	file.Section(sectionLog).Key(keyCounter).SetValue(strconv.Itoa(cfg.Counter))
	file.Section(sectionGUI).Key(keyLanguage).SetValue(cfg.Language)
	autoOpen := "0"
	if cfg.AutoOpen {
		autoOpen = "1"
	}
	file.Section(sectionGUI).Key(keyAutoOpen).SetValue(autoOpen)
	if cfg.APIPasswordHash != "" || file.Section(sectionAPI).HasKey(keyAPIHash) {
		file.Section(sectionAPI).Key(keyAPIHash).SetValue(cfg.APIPasswordHash)
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return fileutil.WriteAtomic(s.path, buf.Bytes(), 0o600)
}
