package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kenz1481/web-deployment-website/internal/metrics"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

func deployedProject() *domain.Project {
	return &domain.Project{
		ID:              "p1",
		Name:            "Demo",
		Status:          domain.StatusDeployed,
		DeploymentURL:   "https://demo.vercel.app",
		VercelProjectID: "prj_1",
		GithubRepoName:  "acme/wz-demo-12345",
		GithubRepoID:    42,
	}
}

func TestTeardown_DeletesEverything(t *testing.T) {
	h := newHarness(t, deployedProject())
	staging := filepath.Join(h.settings.StagingDir, "p1")
	require.NoError(t, os.MkdirAll(staging, 0o755))

	td := NewTeardown(h.deps(), h.settings)
	p := h.store.get(t, "p1")

	report, err := td.Run(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, report.Failed())

	assert.Equal(t, []string{"prj_1"}, h.hosting.deletes)
	assert.Equal(t, []string{"acme/wz-demo-12345"}, h.source.deletes)
	_, err = h.store.FindByID(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, statErr := os.Stat(staging)
	assert.True(t, os.IsNotExist(statErr))

	last := h.events.events[len(h.events.events)-1]
	assert.Equal(t, domain.EventDeleted, last.Kind)
}

func TestTeardown_RemoteFailuresDoNotStopDeletion(t *testing.T) {
	h := newHarness(t, deployedProject())
	h.hosting.deleteErr = errors.New("Project not found")
	h.source.deleteErr = errors.New("github: unauthorized")

	td := NewTeardown(h.deps(), h.settings)
	report, err := td.Run(context.Background(), h.store.get(t, "p1"))
	require.NoError(t, err)
	assert.True(t, report.Failed())

	assert.Len(t, h.hosting.deletes, 1)
	assert.Len(t, h.source.deletes, 1)
	_, err = h.store.FindByID(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	outcomes := map[string]string{}
	for _, s := range report.Steps {
		outcomes[s.Step] = s.Outcome
	}
	assert.Equal(t, metrics.OutcomeFailure, outcomes[stepHosting])
	assert.Equal(t, metrics.OutcomeFailure, outcomes[stepRepository])
	assert.Equal(t, metrics.OutcomeSuccess, outcomes[stepRecord])
}

func TestTeardown_KeepsReferencedRepository(t *testing.T) {
	p := deployedProject()
	p.GithubRepoName = "acme/widgets"
	h := newHarness(t, p)

	_, err := NewTeardown(h.deps(), h.settings).Run(context.Background(), h.store.get(t, "p1"))
	require.NoError(t, err)
	assert.Empty(t, h.source.deletes)
	assert.Len(t, h.hosting.deletes, 1)
}

func TestTeardown_NothingProvisioned(t *testing.T) {
	upload := writeUpload(t, map[string]string{"a": "a"})
	h := newHarness(t, &domain.Project{ID: "p1", Name: "Fresh", FilePath: upload})

	report, err := NewTeardown(h.deps(), h.settings).Run(context.Background(), h.store.get(t, "p1"))
	require.NoError(t, err)
	assert.Zero(t, h.hosting.calls())
	assert.Zero(t, h.source.calls())
	_, statErr := os.Stat(upload)
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, metrics.OutcomeSkipped, report.Steps[0].Outcome)
}

func TestTeardown_RecordAlreadyGone(t *testing.T) {
	h := newHarness(t)
	_, err := NewTeardown(h.deps(), h.settings).Run(context.Background(), &domain.Project{ID: "gone", Name: "Gone"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOwnsRepository(t *testing.T) {
	td := NewTeardown(Deps{}, Settings{RepoOwner: "acme"})
	assert.True(t, td.OwnsRepository("acme/wz-demo-12345"))
	assert.True(t, td.OwnsRepository("ACME/wz-demo-12345"))
	assert.False(t, td.OwnsRepository("someone/wz-demo-12345"))
	assert.False(t, td.OwnsRepository("acme/widgets"))
	assert.False(t, td.OwnsRepository("wz-demo"))

	anyOwner := NewTeardown(Deps{}, Settings{})
	assert.True(t, anyOwner.OwnsRepository("someone/wz-demo-12345"))
}
