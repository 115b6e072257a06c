// Package git shells out to the git CLI for the branch and commit
// operations texrev needs. All methods take a repo path so callers can
// operate outside the process working directory.
package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Client defines the git operations used by the diff and revise flows.
type Client interface {
	RepoRoot(path string) (string, error)
	CurrentBranch(path string) (string, error)
	IsClean(path string) (bool, error)
	Checkout(path, ref string) error
	CheckoutNew(path, branch, startPoint string) error
	ResetHard(path string) error
	AddAll(path string) error
	Commit(path, message string) error
}

// RealClient implements Client using real git commands.
type RealClient struct{}

// NewClient returns a new RealClient.
func NewClient() *RealClient {
	return &RealClient{}
}

func gitCmd(path string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, args...)
	out, err := exec.Command("git", fullArgs...).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *RealClient) RepoRoot(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--show-toplevel")
}

func (c *RealClient) CurrentBranch(path string) (string, error) {
	return gitCmd(path, "rev-parse", "--abbrev-ref", "HEAD")
}

// IsClean reports whether the work tree has neither modified nor
// untracked files.
func (c *RealClient) IsClean(path string) (bool, error) {
	out, err := gitCmd(path, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out == "", nil
}

func (c *RealClient) Checkout(path, ref string) error {
	_, err := gitCmd(path, "checkout", ref)
	return err
}

// CheckoutNew creates branch at startPoint and switches to it.
func (c *RealClient) CheckoutNew(path, branch, startPoint string) error {
	_, err := gitCmd(path, "checkout", "-b", branch, startPoint)
	return err
}

func (c *RealClient) ResetHard(path string) error {
	_, err := gitCmd(path, "reset", "HEAD", "--hard")
	return err
}

func (c *RealClient) AddAll(path string) error {
	_, err := gitCmd(path, "add", ".")
	return err
}

func (c *RealClient) Commit(path, message string) error {
	_, err := gitCmd(path, "commit", "-m", message)
	return err
}
