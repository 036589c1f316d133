package pipeline

import (
	"context"
	"time"

	"github.com/Kenz1481/web-deployment-website/internal/metrics"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
	"github.com/Kenz1481/web-deployment-website/internal/vcs"
)

const (
	stageStage     = "stage"
	stageProvision = "provision"
	stagePush      = "push"
	stageDeploy    = "deploy"
)

// SourceKind says where a project's code comes from.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceArchive
	SourceReference
)

func (k SourceKind) String() string {
	switch k {
	case SourceArchive:
		return "archive"
	case SourceReference:
		return "reference"
	default:
		return "none"
	}
}

// Source is the output of staging.
type Source struct {
	Kind SourceKind
	// Dir holds the extracted tree for SourceArchive.
	Dir string
	// Ref is the parsed repository for SourceReference.
	Ref vcs.Reference
}

// Stager materializes a project's source.
type Stager struct {
	extractor Extractor
	host      string
}

// Stage extracts the archive into ws, or validates the repository reference.
// A project with neither source ends in pending_manual_setup and returns SourceNone.
func (s *Stager) Stage(ctx context.Context, rec *recorder, p *domain.Project, ws *workspace) (*Source, error) {
	defer metrics.ObserveStage(stageStage, time.Now())

	switch {
	case p.HasArchive():
		if err := rec.advance(ctx, domain.StatusProcessingZip, domain.ProjectUpdate{}); err != nil {
			return nil, err
		}
		rec.info(ctx, "Processing uploaded ZIP file.")

		if err := ws.prepare(); err != nil {
			return nil, stageErr(stageStage, domain.StatusErrorZipExtraction, err,
				"Failed to extract ZIP: %v", err)
		}
		if err := s.extractor.ExtractAll(p.FilePath, ws.stagingDir); err != nil {
			return nil, stageErr(stageStage, domain.StatusErrorZipExtraction, err,
				"Failed to extract ZIP: %v", err)
		}
		rec.info(ctx, "ZIP file extracted to %s.", ws.stagingDir)
		return &Source{Kind: SourceArchive, Dir: ws.stagingDir}, nil

	case p.HasRepoReference():
		if err := rec.advance(ctx, domain.StatusLinkingRepo, domain.ProjectUpdate{}); err != nil {
			return nil, err
		}
		ref, err := vcs.ParseReference(p.RepoURL, s.host)
		if err != nil {
			return nil, stageErr(stageStage, domain.StatusErrorInvalidRepoURL, err,
				"Invalid GitHub repository URL: %s", vcs.SafeURL(p.RepoURL))
		}
		return &Source{Kind: SourceReference, Ref: ref}, nil

	default:
		rec.warn(ctx, "No ZIP file or GitHub repository URL provided.")
		if err := rec.advance(ctx, domain.StatusPendingManualSetup, domain.ProjectUpdate{}); err != nil {
			return nil, err
		}
		return &Source{Kind: SourceNone}, nil
	}
}
