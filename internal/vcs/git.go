// Package vcs drives the git binary against a local working directory.
package vcs

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Env vars that are allowed to be inherited from the OS
var allowedEnvVars = []string{
	"http_proxy", "https_proxy", "no_proxy", "HTTPS_PROXY", "NO_PROXY", "GIT_PROXY_COMMAND",
	"HOME", "PATH", "GIT_SSL_CAINFO",
}

type gitCmdConfig struct {
	dir string
	env []string
	out io.Writer
	// redact lists substrings (credentials) that must never reach an error message.
	redact []string
}

// Driver runs git subcommands. The zero value is usable but commits need an author.
type Driver struct {
	AuthorName  string
	AuthorEmail string
}

// NewDriver returns a Driver committing as name <email>.
func NewDriver(name, email string) *Driver {
	return &Driver{AuthorName: name, AuthorEmail: email}
}

// Init creates an empty repository in dir.
func (d *Driver) Init(ctx context.Context, dir string) error {
	if err := execGitCmd(ctx, []string{"init"}, gitCmdConfig{dir: dir}); err != nil {
		return errors.Wrap(err, "git init")
	}
	return nil
}

// TrustDirectory marks dir as a safe.directory in the repository's local config.
func (d *Driver) TrustDirectory(ctx context.Context, dir string) error {
	args := []string{"config", "--local", "safe.directory", dir}
	if err := execGitCmd(ctx, args, gitCmdConfig{dir: dir}); err != nil {
		return errors.Wrap(err, "setting safe.directory")
	}
	return nil
}

// AddAll stages every file in the working tree.
func (d *Driver) AddAll(ctx context.Context, dir string) error {
	if err := execGitCmd(ctx, []string{"add", "--all", "."}, gitCmdConfig{dir: dir}); err != nil {
		return errors.Wrap(err, "git add")
	}
	return nil
}

// Commit records the staged tree. It fails when there is nothing to commit.
func (d *Driver) Commit(ctx context.Context, dir, message string) error {
	args := []string{
		"-c", "user.name=" + d.AuthorName,
		"-c", "user.email=" + d.AuthorEmail,
		"-c", "commit.gpgsign=false",
		"commit", "--no-verify", "-m", message,
	}
	if err := execGitCmd(ctx, args, gitCmdConfig{dir: dir}); err != nil {
		return errors.Wrap(err, "git commit")
	}
	return nil
}

// RenameBranch forces the current branch name to branch.
func (d *Driver) RenameBranch(ctx context.Context, dir, branch string) error {
	if err := execGitCmd(ctx, []string{"branch", "-M", branch}, gitCmdConfig{dir: dir}); err != nil {
		return errors.Wrap(err, "git branch -M")
	}
	return nil
}

// HasRemote reports whether a remote called name is configured.
func (d *Driver) HasRemote(ctx context.Context, dir, name string) (bool, error) {
	out := &bytes.Buffer{}
	if err := execGitCmd(ctx, []string{"remote"}, gitCmdConfig{dir: dir, out: out}); err != nil {
		return false, errors.Wrap(err, "git remote")
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == name {
			return true, nil
		}
	}
	return false, nil
}

// AddRemote adds a remote; url may embed credentials and is redacted from errors.
func (d *Driver) AddRemote(ctx context.Context, dir, name, url string) error {
	args := []string{"remote", "add", name, url}
	if err := execGitCmd(ctx, args, gitCmdConfig{dir: dir, redact: secretsOf(url)}); err != nil {
		return errors.Wrap(err, "git remote add")
	}
	return nil
}

// SetRemoteURL points an existing remote at url.
func (d *Driver) SetRemoteURL(ctx context.Context, dir, name, url string) error {
	args := []string{"remote", "set-url", name, url}
	if err := execGitCmd(ctx, args, gitCmdConfig{dir: dir, redact: secretsOf(url)}); err != nil {
		return errors.Wrap(err, "git remote set-url")
	}
	return nil
}

// ForcePush pushes branch to remote, overwriting its history, and sets upstream.
// secrets are scrubbed from any error output.
func (d *Driver) ForcePush(ctx context.Context, dir, remote, branch string, secrets ...string) error {
	args := []string{"push", "-u", remote, branch, "--force"}
	if err := execGitCmd(ctx, args, gitCmdConfig{dir: dir, redact: secrets}); err != nil {
		return errors.Wrap(err, fmt.Sprintf("git push %s %s", remote, branch))
	}
	return nil
}

func execGitCmd(ctx context.Context, args []string, config gitCmdConfig) error {
	c := exec.CommandContext(ctx, "git", args...)

	if config.dir != "" {
		c.Dir = config.dir
	}
	c.Env = append(env(), config.env...)
	c.Stdout = io.Discard
	if config.out != nil {
		c.Stdout = config.out
	}
	errOut := &bytes.Buffer{}
	c.Stderr = errOut

	err := c.Run()
	if err != nil {
		if msg := findErrorMessage(bytes.NewReader(errOut.Bytes())); msg != "" {
			err = errors.New(msg)
		} else if errOut.Len() > 0 {
			err = errors.New(strings.TrimSpace(errOut.String()))
		}
		err = errors.New(scrub(err.Error(), config.redact))
	}
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(ctx.Err(), fmt.Sprintf("running git command: git %s", args[0]))
	} else if ctx.Err() == context.Canceled {
		return errors.Wrap(ctx.Err(), fmt.Sprintf("context was unexpectedly cancelled when running git command: git %s", args[0]))
	}
	return err
}

func env() []string {
	env := []string{"GIT_TERMINAL_PROMPT=0"}

	// include allowed env vars from os
	for _, k := range allowedEnvVars {
		if v, ok := os.LookupEnv(k); ok {
			env = append(env, k+"="+v)
		}
	}

	return env
}

func findErrorMessage(output io.Reader) string {
	sc := bufio.NewScanner(output)
	for sc.Scan() {
		switch {
		case strings.HasPrefix(sc.Text(), "fatal: "):
			return sc.Text()
		case strings.HasPrefix(sc.Text(), "error:"):
			return strings.TrimPrefix(sc.Text(), "error: ")
		}
	}
	return ""
}

func scrub(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, "***")
		}
	}
	return s
}
