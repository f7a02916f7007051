package gitinfo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestDescribe_NotARepo(t *testing.T) {
	if got := Describe(t.TempDir()); got != "" {
		t.Fatalf("expected empty revision outside a repo, got %q", got)
	}
}

func TestDescribe_Branch(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("README"); err != nil {
		t.Fatal(err)
	}
	sig := &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()}
	if _, err := wt.Commit("init", &git.CommitOptions{Author: sig}); err != nil {
		t.Fatal(err)
	}

	got := Describe(dir)
	if got == "" {
		t.Fatal("expected a revision for an initialized repo")
	}
	if !strings.Contains(got, "@") {
		t.Fatalf("expected branch@hash form, got %q", got)
	}
	parts := strings.SplitN(got, "@", 2)
	if len(parts[1]) != 12 {
		t.Fatalf("expected 12-char short hash, got %q", parts[1])
	}
}

func TestDescribe_Subdirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(dir, "build", "out")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("f"); err != nil {
		t.Fatal(err)
	}
	sig := &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()}
	if _, err := wt.Commit("init", &git.CommitOptions{Author: sig}); err != nil {
		t.Fatal(err)
	}

	if got := Describe(sub); got == "" {
		t.Fatal("expected DetectDotGit to resolve the revision from a subdirectory")
	}
}
