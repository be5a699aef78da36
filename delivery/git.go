package delivery

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"
)

// Committer identity recorded on backup commits.
const (
	CommitterName  = "attendly"
	CommitterEmail = "attendly@localhost"
)

// GitSink keeps backups in a git repository, one commit per delivery, so
// earlier backups stay reachable through history.
type GitSink struct {
	repo *git.Repository
	mu   sync.Mutex
	now  func() time.Time
}

// OpenGitSink opens the repository in dir, initializing it when missing.
func OpenGitSink(dir string) (*GitSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	wt := osfs.New(dir)
	fs, err := wt.Chroot(".git")
	if err != nil {
		return nil, err
	}
	storer := filesystem.NewStorageWithOptions(
		fs,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	if _, statErr := os.Stat(fs.Root()); statErr != nil {
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	} else {
		repo, err = git.Open(storer, wt)
	}
	if err != nil {
		return nil, fmt.Errorf("open backup repository: %w", err)
	}
	return &GitSink{repo: repo, now: time.Now}, nil
}

// NewMemoryGitSink keeps the repository in memory.
func NewMemoryGitSink() (*GitSink, error) {
	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(memfs.New()))
	if err != nil {
		return nil, err
	}
	return &GitSink{repo: repo, now: time.Now}, nil
}

// Deliver writes payload to name in the worktree and commits it. The
// returned location is the commit hash.
func (s *GitSink) Deliver(ctx context.Context, name string, payload []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	wt, err := s.repo.Worktree()
	if err != nil {
		return "", err
	}
	if err := util.WriteFile(wt.Filesystem, name, payload, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := wt.Add(name); err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	hash, err := wt.Commit("backup: "+name, &git.CommitOptions{
		Author: &object.Signature{
			Name:  CommitterName,
			Email: CommitterEmail,
			When:  s.now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return "", fmt.Errorf("commit %s: %w", name, err)
	}
	return hash.String(), nil
}

// Latest reads name from the HEAD commit.
func (s *GitSink) Latest(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("no backups committed yet: %w", err)
	}
	commit, err := s.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	file, err := tree.File(name)
	if err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read contents: %w", err)
	}
	return []byte(content), nil
}

// History returns the commit hashes that touched name, newest first.
func (s *GitSink) History(name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	iter, err := s.repo.Log(&git.LogOptions{FileName: &name})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	err = iter.ForEach(func(c *object.Commit) error {
		out = append(out, c.Hash.String())
		return nil
	})
	return out, err
}
