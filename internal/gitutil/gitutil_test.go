package gitutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initRepo creates a throwaway git repository with one commit and returns a
// client rooted in it.
func initRepo(t *testing.T) Client {
	t.Helper()
	if !Installed("git") {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}

	run("init", "-b", "main")
	run("config", "user.name", "test")
	run("config", "user.email", "test@example.com")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "README.md")
	run("commit", "-m", "initial")

	return Client{Dir: dir}
}

func TestInstalled(t *testing.T) {
	if Installed("definitely-not-a-real-tool-zzz") {
		t.Error("Installed reported a nonexistent tool as present")
	}
}

func TestCurrentBranch(t *testing.T) {
	c := initRepo(t)
	branch, err := c.CurrentBranch(context.Background())
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "main" {
		t.Errorf("CurrentBranch = %q, want main", branch)
	}
}

func TestDirtyFiles(t *testing.T) {
	c := initRepo(t)
	ctx := context.Background()

	files, err := c.DirtyFiles(ctx)
	if err != nil {
		t.Fatalf("DirtyFiles: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("fresh repo reported dirty files: %v", files)
	}

	if err := os.WriteFile(filepath.Join(c.Dir, "new.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	files, err = c.DirtyFiles(ctx)
	if err != nil {
		t.Fatalf("DirtyFiles: %v", err)
	}
	if len(files) != 1 || files[0] != "new.txt" {
		t.Errorf("DirtyFiles = %v, want [new.txt]", files)
	}
}

func TestCommitAndTag(t *testing.T) {
	c := initRepo(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(c.Dir, "Cargo.toml"), []byte("version = \"1.3.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.Add(ctx, "Cargo.toml"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Commit(ctx, "Release version 1.3.0"); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := c.Tag(ctx, "v1.3.0"); err != nil {
		t.Fatalf("Tag: %v", err)
	}

	tag, err := c.LatestTag(ctx)
	if err != nil {
		t.Fatalf("LatestTag: %v", err)
	}
	if tag != "v1.3.0" {
		t.Errorf("LatestTag = %q, want v1.3.0", tag)
	}

	if _, err := c.HeadCommit(ctx); err != nil {
		t.Errorf("HeadCommit: %v", err)
	}
}

func TestLatestTagEmptyRepo(t *testing.T) {
	c := initRepo(t)
	tag, err := c.LatestTag(context.Background())
	if err != nil {
		t.Fatalf("LatestTag on untagged repo: %v", err)
	}
	if tag != "" {
		t.Errorf("LatestTag = %q, want empty", tag)
	}
}

func TestCommitFailureSurfacesStderr(t *testing.T) {
	c := initRepo(t)
	// Nothing staged: commit must fail with a wrapped error.
	err := c.Commit(context.Background(), "empty")
	if err == nil {
		t.Fatal("Commit with nothing staged should fail")
	}
}
