package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spec-kit/haf/internal/domain"
)

const dictionary = `{
    // comments are tolerated
    "zeta": {"Title": "Z", "Body": "b", "Process-Type": "open", "Type": "ticket", "Needs_Hostname": false, "Needs_Variable": false},
    "Alpha": {"Title": "A {User_ID}", "Body": "b", "Process-Type": "close", "Type": "mfa", "Answer": ["done"], "Needs_Hostname": true, "Needs_Variable": false},
    "beta": {"Title": "B", "Body": "b", "Process-Type": "escalate", "Type": "ticket", "Team": "NET", "Needs_Hostname": false, "Needs_Variable": true},
}`

func writeDictionary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dictionary.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write dictionary: %v", err)
	}
	return path
}

func TestTemplateRepositoryLoad(t *testing.T) {
	repo := NewTemplateRepository(writeDictionary(t, dictionary))

	templates, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(templates) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(templates))
	}
	alpha := templates["Alpha"]
	if alpha.ProcessType != domain.ProcessClose || alpha.Flow != domain.FlowMFA || !alpha.NeedsHostname {
		t.Errorf("unexpected template %+v", alpha)
	}
	if len(alpha.Answers) != 1 || alpha.Answers[0] != "done" {
		t.Errorf("unexpected answers %v", alpha.Answers)
	}
}

func TestTemplateRepositoryLoadRejectsInvalid(t *testing.T) {
	repo := NewTemplateRepository(writeDictionary(t, `{"broken": {"Title": "x", "Body": "y", "Process-Type": "close", "Type": "ticket"}}`))

	_, err := repo.Load(context.Background())
	if !errors.Is(err, domain.ErrInvalidTemplateDefinition) {
		t.Fatalf("expected ErrInvalidTemplateDefinition, got %v", err)
	}
	if !strings.Contains(err.Error(), `"broken"`) {
		t.Errorf("expected error to name the template, got %v", err)
	}
}

func TestTemplateRepositoryGet(t *testing.T) {
	repo := NewTemplateRepository(writeDictionary(t, dictionary))

	if _, err := repo.Get(context.Background(), "beta"); err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	_, err := repo.Get(context.Background(), "gamma")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestTemplateRepositoryGetWithoutDictionary(t *testing.T) {
	repo := NewTemplateRepository(filepath.Join(t.TempDir(), "missing.json"))

	_, err := repo.Get(context.Background(), "mfa")
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected the missing file to stay visible, got %v", err)
	}
	if _, err := repo.Load(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected Load() to report the missing file, got %v", err)
	}
}

func TestTemplateRepositoryKeysAreCaseInsensitive(t *testing.T) {
	repo := NewTemplateRepository(writeDictionary(t, dictionary))

	keys, err := repo.Keys(context.Background())
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	want := []string{"Alpha", "beta", "zeta"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, keys)
	}
}

func TestTemplateRepositorySortRewritesFile(t *testing.T) {
	path := writeDictionary(t, dictionary)
	repo := NewTemplateRepository(path)

	if err := repo.Sort(context.Background()); err != nil {
		t.Fatalf("Sort() failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(raw)
	a, b, z := strings.Index(text, `"Alpha"`), strings.Index(text, `"beta"`), strings.Index(text, `"zeta"`)
	if a < 0 || b < 0 || z < 0 || !(a < b && b < z) {
		t.Errorf("keys not in case-insensitive order:\n%s", text)
	}

	again, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() after sort failed: %v", err)
	}
	if len(again) != 3 {
		t.Errorf("expected 3 templates after sort, got %d", len(again))
	}
}

func TestTemplateRepositoryUpsert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dictionary.json")
	repo := NewTemplateRepository(path)
	ctx := context.Background()

	tmpl := domain.Template{Title: "Reset", Body: "reset for {User_ID}", ProcessType: domain.ProcessOpen, Flow: domain.FlowMFA}
	if err := repo.Upsert(ctx, "mfa", tmpl); err != nil {
		t.Fatalf("Upsert() into missing file failed: %v", err)
	}
	tmpl.Title = "Reset MFA"
	if err := repo.Upsert(ctx, "mfa", tmpl); err != nil {
		t.Fatalf("Upsert() update failed: %v", err)
	}

	got, err := repo.Get(ctx, "mfa")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Title != "Reset MFA" {
		t.Errorf("expected updated title, got %q", got.Title)
	}

	bad := domain.Template{Title: "x", Body: "y", ProcessType: domain.ProcessEscalate, Flow: domain.FlowStandard}
	if err := repo.Upsert(ctx, "bad", bad); !errors.Is(err, domain.ErrInvalidTemplateDefinition) {
		t.Fatalf("expected invalid template to be rejected, got %v", err)
	}
	keys, _ := repo.Keys(ctx)
	if len(keys) != 1 {
		t.Errorf("rejected template was persisted: %v", keys)
	}
}

func TestHasComments(t *testing.T) {
	if !HasComments([]byte(dictionary)) {
		t.Error("expected comments and trailing commas to be detected")
	}
	plain := `{"a": {"Title": "A", "Body": "b"}}`
	if HasComments([]byte(plain)) {
		t.Error("plain JSON reported as commented")
	}
}
