package pipeline

import (
	"context"
	"os"
)

// workspace holds the local resources of one run: the staging directory and
// the uploaded archive. release is deferred on every exit path of a run.
type workspace struct {
	stagingDir string
	uploadPath string
}

func newWorkspace(stagingRoot, projectID, uploadPath string) (*workspace, error) {
	dir, err := StagingPath(stagingRoot, projectID)
	if err != nil {
		return nil, err
	}
	return &workspace{stagingDir: dir, uploadPath: uploadPath}, nil
}

// prepare leaves an empty staging directory, clearing anything left from an
// earlier attempt.
func (w *workspace) prepare() error {
	if err := os.RemoveAll(w.stagingDir); err != nil {
		return err
	}
	return os.MkdirAll(w.stagingDir, 0o755)
}

// release removes the upload and the staging directory. Failures are
// recorded as warnings and never returned.
func (w *workspace) release(ctx context.Context, rec *recorder) {
	if w.uploadPath != "" {
		if err := os.Remove(w.uploadPath); err != nil && !os.IsNotExist(err) {
			rec.logger.LogError("cleanup_upload", err)
			rec.warn(ctx, "Warning: Could not remove uploaded file %s.", w.uploadPath)
		}
	}
	if err := os.RemoveAll(w.stagingDir); err != nil {
		rec.logger.LogError("cleanup_staging", err)
		rec.warn(ctx, "Warning: Could not remove staging directory %s.", w.stagingDir)
	}
}
