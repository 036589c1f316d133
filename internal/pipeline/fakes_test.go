package pipeline

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Kenz1481/web-deployment-website/internal/github"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
	"github.com/Kenz1481/web-deployment-website/internal/vercel"
)

type fakeStore struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
	history  map[string][]domain.Status
	deletes  int

	failStatus domain.Status
}

func newFakeStore(projects ...*domain.Project) *fakeStore {
	s := &fakeStore{projects: map[string]*domain.Project{}, history: map[string][]domain.Status{}}
	for _, p := range projects {
		if p.Status == "" {
			p.Status = domain.StatusPendingSetup
		}
		s.projects[p.ID] = p
	}
	return s
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	cp.Logs = append([]domain.LogEntry(nil), p.Logs...)
	return &cp, nil
}

func (s *fakeStore) UpdateFields(_ context.Context, id string, u domain.ProjectUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	if u.Status != nil && *u.Status == s.failStatus {
		return errors.New("store unavailable")
	}
	if u.Status != nil {
		p.Status = *u.Status
		s.history[id] = append(s.history[id], *u.Status)
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.DeploymentURL != nil {
		p.DeploymentURL = *u.DeploymentURL
	}
	if u.VercelProjectID != nil {
		p.VercelProjectID = *u.VercelProjectID
	}
	if u.VercelDeploymentID != nil {
		p.VercelDeploymentID = *u.VercelDeploymentID
	}
	if u.GithubRepoName != nil {
		p.GithubRepoName = *u.GithubRepoName
	}
	if u.GithubRepoID != nil {
		p.GithubRepoID = *u.GithubRepoID
	}
	if u.GithubRepoURL != nil {
		p.GithubRepoURL = *u.GithubRepoURL
	}
	return nil
}

func (s *fakeStore) AppendLog(_ context.Context, id string, e domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Logs = append(p.Logs, e)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if _, ok := s.projects[id]; !ok {
		return false, nil
	}
	delete(s.projects, id)
	return true, nil
}

func (s *fakeStore) get(t *testing.T, id string) *domain.Project {
	t.Helper()
	p, err := s.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

type fakeExtractor struct {
	calls int
	err   error
	files map[string]string
}

func (f *fakeExtractor) ExtractAll(_ string, dest string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	for name, body := range f.files {
		path := filepath.Join(dest, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}

type fakeGit struct {
	mu         sync.Mutex
	calls      []string
	failOn     map[string]error
	hasRemote  bool
	remoteURL  string
	pushSecret []string
}

func (g *fakeGit) record(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, name)
	return g.failOn[name]
}

func (g *fakeGit) Init(context.Context, string) error           { return g.record("init") }
func (g *fakeGit) TrustDirectory(context.Context, string) error { return g.record("trust") }
func (g *fakeGit) AddAll(context.Context, string) error         { return g.record("add") }
func (g *fakeGit) Commit(context.Context, string, string) error { return g.record("commit") }
func (g *fakeGit) RenameBranch(_ context.Context, _ string, branch string) error {
	return g.record("branch:" + branch)
}
func (g *fakeGit) HasRemote(context.Context, string, string) (bool, error) {
	return g.hasRemote, g.record("has_remote")
}
func (g *fakeGit) AddRemote(_ context.Context, _, _, url string) error {
	g.remoteURL = url
	return g.record("remote_add")
}
func (g *fakeGit) SetRemoteURL(_ context.Context, _, _, url string) error {
	g.remoteURL = url
	return g.record("remote_set_url")
}
func (g *fakeGit) ForcePush(_ context.Context, _, _, branch string, secrets ...string) error {
	g.pushSecret = secrets
	return g.record("push:" + branch)
}

type fakeSource struct {
	mu        sync.Mutex
	created   []string
	gets      []string
	deletes   []string
	createErr error
	getErr    error
	deleteErr error
	repo      *github.Repository
}

func (f *fakeSource) CreateRepository(_ context.Context, name, description string, private bool) (*github.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, name)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.repo != nil {
		cp := *f.repo
		return &cp, nil
	}
	return &github.Repository{
		ID:       42,
		Name:     name,
		FullName: "acme/" + name,
		Owner:    "acme",
		CloneURL: "https://github.com/acme/" + name + ".git",
		HTMLURL:  "https://github.com/acme/" + name,
		Private:  private,
	}, nil
}

func (f *fakeSource) GetRepository(_ context.Context, owner, repo string) (*github.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, owner+"/"+repo)
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.repo != nil {
		cp := *f.repo
		return &cp, nil
	}
	return &github.Repository{ID: 77, FullName: owner + "/" + repo, HTMLURL: "https://github.com/" + owner + "/" + repo}, nil
}

func (f *fakeSource) DeleteRepository(_ context.Context, owner, repo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, owner+"/"+repo)
	return f.deleteErr
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created) + len(f.gets) + len(f.deletes)
}

type fakeHosting struct {
	mu        sync.Mutex
	requests  []vercel.DeploymentRequest
	deletes   []string
	resp      *vercel.Deployment
	err       error
	deleteErr error
}

func (f *fakeHosting) CreateDeployment(_ context.Context, req vercel.DeploymentRequest) (*vercel.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &vercel.Deployment{ID: "dpl_1", ProjectID: "prj_1"}, nil
}

func (f *fakeHosting) DeleteProject(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

func (f *fakeHosting) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests) + len(f.deletes)
}

type fakeEvents struct {
	mu     sync.Mutex
	events []domain.Event
}

func (f *fakeEvents) Publish(_ context.Context, ev domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type harness struct {
	store     *fakeStore
	extractor *fakeExtractor
	git       *fakeGit
	source    *fakeSource
	hosting   *fakeHosting
	events    *fakeEvents
	settings  Settings
}

func newHarness(t *testing.T, projects ...*domain.Project) *harness {
	return &harness{
		store:     newFakeStore(projects...),
		extractor: &fakeExtractor{files: map[string]string{"index.html": "<h1>demo</h1>"}},
		git:       &fakeGit{},
		source:    &fakeSource{},
		hosting:   &fakeHosting{},
		events:    &fakeEvents{},
		settings: Settings{
			StagingDir: t.TempDir(),
			RepoOwner:  "acme",
			PushToken:  "ghp_secret",
		},
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Store:     h.store,
		Extractor: h.extractor,
		Git:       h.git,
		Source:    h.source,
		Hosting:   h.hosting,
		Events:    h.events,
	}
}

func (h *harness) coordinator() *Coordinator {
	return NewCoordinator(h.deps(), h.settings)
}

// writeUpload creates a real zip upload so cleanup of the file can be observed.
func writeUpload(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "1700000000000-demo.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, body := range entries {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func logMessages(p *domain.Project) []string {
	out := make([]string, 0, len(p.Logs))
	for _, l := range p.Logs {
		out = append(out, l.Message)
	}
	return out
}
