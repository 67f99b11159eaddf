// Package gitutil wraps the git porcelain commands the release flow needs.
// Every call shells out synchronously and folds captured stderr into the
// returned error.
package gitutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Client runs git commands in a working directory. A zero Dir means the
// current directory.
type Client struct {
	Dir string
}

// Installed reports whether the named tool is on PATH.
func Installed(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}

func (c Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, detail)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// runPassthrough runs git with output attached to the process streams, for
// commands whose output the operator should see as-is.
func (c Client) runPassthrough(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}

// CurrentBranch returns the abbreviated name of the checked-out branch.
func (c Client) CurrentBranch(ctx context.Context) (string, error) {
	return c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// DirtyFiles returns the paths reported by `git status --porcelain`, one per
// entry. An empty slice means the working tree is clean.
func (c Client) DirtyFiles(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 3 {
			files = append(files, strings.TrimSpace(line[3:]))
		}
	}
	return files, nil
}

// StatusShort returns the raw `git status --porcelain` output for display.
func (c Client) StatusShort(ctx context.Context) (string, error) {
	return c.run(ctx, "status", "--porcelain")
}

// HeadCommit returns the full hash of HEAD.
func (c Client) HeadCommit(ctx context.Context) (string, error) {
	return c.run(ctx, "rev-parse", "HEAD")
}

// LatestTag returns the most recent tag reachable from HEAD, or an empty
// string when the repository has no tags.
func (c Client) LatestTag(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "describe", "--tags", "--abbrev=0")
	if err != nil {
		// No tags is a normal state for a first release.
		if strings.Contains(err.Error(), "cannot describe") ||
			strings.Contains(err.Error(), "No names found") {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// Add stages the given paths.
func (c Client) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := c.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// Commit records a commit with the given message.
func (c Client) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", "-m", message)
	return err
}

// Tag creates a lightweight tag at HEAD.
func (c Client) Tag(ctx context.Context, name string) error {
	_, err := c.run(ctx, "tag", name)
	return err
}

// Push pushes the current branch to the remote.
func (c Client) Push(ctx context.Context, remote string) error {
	if remote == "" {
		return c.runPassthrough(ctx, "push")
	}
	return c.runPassthrough(ctx, "push", remote)
}

// PushTags pushes all tags to the remote.
func (c Client) PushTags(ctx context.Context, remote string) error {
	if remote == "" {
		return c.runPassthrough(ctx, "push", "--tags")
	}
	return c.runPassthrough(ctx, "push", remote, "--tags")
}
