// Package release orchestrates the end-to-end release flow: precondition
// checks, manifest version bump, build/test checks, and the git
// commit/tag/push sequence. Every failure is fatal and nothing is rolled
// back; a half-finished release leaves the manifest rewritten on disk, the
// way the operator can inspect and recover it.
package release

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/prismforge/capstan/internal/checks"
	"github.com/prismforge/capstan/internal/cli/config"
	"github.com/prismforge/capstan/internal/cli/output"
	"github.com/prismforge/capstan/internal/gitutil"
	"github.com/prismforge/capstan/internal/history"
	"github.com/prismforge/capstan/internal/manifest"
	"github.com/prismforge/capstan/internal/semver"
)

// Options are the per-invocation knobs of the release flow.
type Options struct {
	// Version is the explicit new version. Empty prompts the operator.
	Version string
	// DryRun walks the flow without writing the manifest, running checks,
	// or touching git.
	DryRun bool
	// SkipChecks skips the configured build/test commands.
	SkipChecks bool
	// Yes answers every confirmation prompt with yes.
	Yes bool
}

// Result summarizes a completed (or dry-run) release.
type Result struct {
	Project    string
	OldVersion semver.Version
	NewVersion semver.Version
	Branch     string
	Tag        string
	Commit     string
	Duration   time.Duration
	DryRun     bool
}

// Flow wires the collaborators of one release run.
type Flow struct {
	Cfg      *config.Config
	Renderer *output.Renderer
	Git      gitutil.Client
	History  *history.Store // nil disables history recording
	Now      func() time.Time
}

// New builds a Flow for the given config and renderer, with git rooted at
// the project root.
func New(cfg *config.Config, r *output.Renderer, store *history.Store) *Flow {
	return &Flow{
		Cfg:      cfg,
		Renderer: r,
		Git:      gitutil.Client{Dir: cfg.ProjectRoot},
		History:  store,
		Now:      time.Now,
	}
}

// Run executes the release flow. The returned error is fatal; the process
// should exit non-zero.
func (f *Flow) Run(ctx context.Context, opts Options) (Result, error) {
	started := f.Now()
	r := f.Renderer
	cfg := f.Cfg

	var res Result
	res.Project = cfg.Project
	res.DryRun = opts.DryRun

	r.Step("Starting release process for %s", cfg.Project)

	// Preconditions, in the order an operator can fix them.
	for _, tool := range cfg.RequiredTools() {
		if !gitutil.Installed(tool) {
			return res, fmt.Errorf("%s is not installed. Please install it and try again", tool)
		}
	}

	branch, err := f.Git.CurrentBranch(ctx)
	if err != nil {
		return res, err
	}
	if branch != cfg.Branch {
		return res, fmt.Errorf("you must be on the %s branch to release (currently on %s)", cfg.Branch, branch)
	}
	res.Branch = branch

	dirty, err := f.Git.DirtyFiles(ctx)
	if err != nil {
		return res, err
	}
	if len(dirty) > 0 {
		return res, fmt.Errorf("you have uncommitted changes. Please commit or stash them before releasing")
	}

	if cfg.Manifest == "" {
		return res, fmt.Errorf("no version manifest found in %s; set manifest in the config", cfg.ProjectRoot)
	}
	m := manifest.New(cfg.Manifest, manifest.Format(cfg.ManifestFormat))
	current, err := m.CurrentVersion()
	if err != nil {
		return res, err
	}
	res.OldVersion = current

	next, err := f.resolveNewVersion(current, opts)
	if err != nil {
		return res, err
	}
	res.NewVersion = next
	res.Tag = next.Tag(cfg.TagPrefix)

	if opts.DryRun {
		r.Warning("Dry run: no files will be written and no git commands will run")
		r.Printf("Would update %s from %s to %s\n", cfg.Manifest, current, next)
		r.Printf("Would commit %q, tag %s, and push to %s\n",
			cfg.CommitMessage(next.String()), res.Tag, remoteName(cfg.Remote))
		res.Duration = f.Now().Sub(started)
		return res, nil
	}

	if err := m.SetVersion(next); err != nil {
		return res, err
	}
	r.Success("Updated version in %s to %s", filepath.Base(cfg.Manifest), next)

	if opts.SkipChecks {
		r.Warning("Skipping checks (--skip-checks)")
	} else if err := f.runChecks(ctx); err != nil {
		return res, err
	}

	if err := f.confirmChanges(ctx, opts); err != nil {
		return res, err
	}

	if err := f.commitAndPush(ctx, next, res.Tag); err != nil {
		return res, err
	}

	if commit, err := f.Git.HeadCommit(ctx); err == nil {
		res.Commit = commit
	}
	res.Duration = f.Now().Sub(started)

	f.record(ctx, res)

	r.Success("\n🎉✨ %s %s has been successfully released! ✨🎉", cfg.Project, res.Tag)
	return res, nil
}

// resolveNewVersion takes the operator-supplied version (flag or prompt),
// validates its format, and warns when it does not increase.
func (f *Flow) resolveNewVersion(current semver.Version, opts Options) (semver.Version, error) {
	raw := opts.Version
	if raw == "" {
		var err error
		raw, err = f.Renderer.Ask(fmt.Sprintf(
			"Current version is %s. What should the new version be? ", current))
		if err != nil {
			return semver.Version{}, err
		}
	}

	next, err := semver.Parse(raw)
	if err != nil {
		return semver.Version{}, fmt.Errorf(
			"invalid version format %q. Please use semantic versioning (e.g., 1.2.3)", raw)
	}

	// The new value is the operator's call; a lower version is suspicious
	// but never forbidden.
	if next.Compare(current) <= 0 {
		f.Renderer.Warning("New version %s does not increase the current version %s", next, current)
		if !opts.Yes && !f.Renderer.Confirm("Continue anyway?") {
			return semver.Version{}, fmt.Errorf("release cancelled")
		}
	}
	return next, nil
}

func (f *Flow) runChecks(ctx context.Context) error {
	cmds, err := checks.ParseCommands(f.Cfg.Checks)
	if err != nil {
		return err
	}
	if len(cmds) == 0 {
		f.Renderer.Warning("No check commands configured")
		return nil
	}
	runner := checks.Runner{
		Dir:     f.Cfg.ProjectRoot,
		Verbose: f.Cfg.Verbose,
		Notify:  func(name string) { f.Renderer.Step("Running %s", name) },
	}
	if err := runner.Run(ctx, cmds); err != nil {
		return err
	}
	f.Renderer.Success("All checks passed")
	return nil
}

// confirmChanges shows the pending working-tree changes and asks the
// operator to proceed. Declining is a fatal cancellation.
func (f *Flow) confirmChanges(ctx context.Context, opts Options) error {
	r := f.Renderer
	status, err := f.Git.StatusShort(ctx)
	if err != nil {
		return err
	}
	r.Warning("The following files will be modified:")
	if status != "" {
		r.Println(status)
	}
	if opts.Yes {
		return nil
	}
	if !r.Confirm("Do you want to proceed with these changes?") {
		return fmt.Errorf("release cancelled")
	}
	return nil
}

func (f *Flow) commitAndPush(ctx context.Context, next semver.Version, tag string) error {
	r := f.Renderer
	cfg := f.Cfg
	r.Step("Committing and pushing changes")

	// Checks can rewrite siblings of the manifest (a Cargo.lock after a
	// cargo test, for example). Stage every file the operator just
	// confirmed, not only the manifest.
	dirty, err := f.Git.DirtyFiles(ctx)
	if err != nil {
		return err
	}
	if len(dirty) == 0 {
		rel, err := filepath.Rel(cfg.ProjectRoot, cfg.Manifest)
		if err != nil {
			rel = cfg.Manifest
		}
		dirty = []string{rel}
	}

	if err := f.Git.Add(ctx, dirty...); err != nil {
		return err
	}
	if err := f.Git.Commit(ctx, cfg.CommitMessage(next.String())); err != nil {
		return err
	}
	if err := f.Git.Push(ctx, cfg.Remote); err != nil {
		return err
	}
	if err := f.Git.Tag(ctx, tag); err != nil {
		return err
	}
	if err := f.Git.PushTags(ctx, cfg.Remote); err != nil {
		return err
	}

	r.Success("Changes committed and pushed for version %s", next)
	return nil
}

// record appends the release to the history store. Recording failures only
// warn; the release itself already happened.
func (f *Flow) record(ctx context.Context, res Result) {
	if f.History == nil {
		return
	}
	_, err := f.History.Record(ctx, history.Release{
		Project:     res.Project,
		Version:     res.NewVersion.String(),
		PrevVersion: res.OldVersion.String(),
		Branch:      res.Branch,
		Commit:      res.Commit,
		Tag:         res.Tag,
		Duration:    res.Duration,
	})
	if err != nil {
		f.Renderer.Warning("Could not record release history: %v", err)
	}
}

func remoteName(remote string) string {
	if remote == "" {
		return "origin"
	}
	return remote
}
