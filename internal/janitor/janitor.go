// Package janitor removes staging directories and uploaded archives left
// behind by pipeline runs that never reached their cleanup step.
package janitor

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

// ProjectLister is the slice of the project repository the janitor reads.
type ProjectLister interface {
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Project, error)
}

type Config struct {
	StagingDir string
	UploadsDir string
	MaxAge     time.Duration
	// Schedule is a six-field cron spec (seconds first).
	Schedule string
}

// Result counts what one sweep removed.
type Result struct {
	StagingRemoved int
	UploadsRemoved int
	Errors         int
}

type Janitor struct {
	cfg      Config
	projects ProjectLister
	now      func() time.Time
	cron     *cron.Cron
}

func New(cfg Config, projects ProjectLister) *Janitor {
	return &Janitor{cfg: cfg, projects: projects, now: time.Now}
}

// Sweep removes staging directories and uploads older than MaxAge unless
// they still belong to a project whose pipeline has not finished.
func (j *Janitor) Sweep(ctx context.Context) (Result, error) {
	var res Result

	items, err := j.projects.List(ctx, domain.ListFilter{})
	if err != nil {
		return res, err
	}
	active := make(map[string]bool, len(items))
	activeUploads := make(map[string]bool)
	for _, p := range items {
		if p.Status.IsTerminal() {
			continue
		}
		active[p.ID] = true
		if p.FilePath != "" {
			activeUploads[filepath.Base(p.FilePath)] = true
		}
	}

	cutoff := j.now().Add(-j.cfg.MaxAge)
	res.StagingRemoved, res.Errors = j.sweepDir(j.cfg.StagingDir, cutoff, active, true)
	removed, errs := j.sweepDir(j.cfg.UploadsDir, cutoff, activeUploads, false)
	res.UploadsRemoved = removed
	res.Errors += errs

	log.Printf("[info] operation=janitor_sweep staging_removed=%d uploads_removed=%d errors=%d",
		res.StagingRemoved, res.UploadsRemoved, res.Errors)
	return res, nil
}

func (j *Janitor) sweepDir(dir string, cutoff time.Time, keep map[string]bool, wantDir bool) (removed, errs int) {
	if dir == "" {
		return 0, 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[warn] operation=janitor_sweep dir=%s error=%v", dir, err)
			errs++
		}
		return 0, errs
	}
	for _, e := range entries {
		if e.IsDir() != wantDir || keep[e.Name()] {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Printf("[warn] operation=janitor_sweep path=%s error=%v", path, err)
			errs++
			continue
		}
		removed++
	}
	return removed, errs
}

// Start schedules Sweep on the configured cron spec.
func (j *Janitor) Start() error {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(j.cfg.Schedule, func() {
		if _, err := j.Sweep(context.Background()); err != nil {
			log.Printf("[error] operation=janitor_sweep error=%v", err)
		}
	})
	if err != nil {
		return err
	}

	log.Printf("Janitor scheduled (%s, max age %s)", j.cfg.Schedule, j.cfg.MaxAge)
	j.cron = c
	c.Start()
	return nil
}

// Stop halts scheduling and waits for a running sweep.
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}
