package commands

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prismforge/capstan/internal/cli/config"
)

const fixtureManifest = `[package]
name = "demo"
version = "1.2.3"
`

// chdir changes into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// writeProject lays out a minimal project with a manifest and config file
// and loads its configuration.
func writeProject(t *testing.T, extraConfig string) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(fixtureManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgYAML := "checks:\n  - \"true\"\n" + extraConfig
	if err := os.WriteFile(filepath.Join(dir, "capstan.yaml"), []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	cfg, err := config.Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return dir, cfg
}

func gitIn(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// initRepo turns dir into a git repo on main with everything committed.
func initRepo(t *testing.T, dir string) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	gitIn(t, dir, "init", "-b", "main")
	gitIn(t, dir, "config", "user.name", "test")
	gitIn(t, dir, "config", "user.email", "test@example.com")
	gitIn(t, dir, "add", ".")
	gitIn(t, dir, "commit", "-m", "initial")
}

func readManifest(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
