package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
	"github.com/Kenz1481/web-deployment-website/internal/projects/service"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// UploadName is the stored file name for an uploaded archive.
func UploadName(unixMillis int64, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	return fmt.Sprintf("%d-%s", unixMillis, reWhitespace.ReplaceAllString(base, "_"))
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	req := domain.CreateProjectRequest{
		Name:        c.PostForm("projectName"),
		Description: c.PostForm("description"),
		RepoURL:     c.PostForm("repoUrl"),
		Subdomain:   c.PostForm("subdomain"),
		RequestedBy: "admin",
	}

	fh, err := c.FormFile("projectFile")
	switch {
	case err == nil:
		path, err := h.saveUpload(fh)
		if err != nil {
			log.Printf("[error] operation=save_upload error=%v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to store upload"})
			return
		}
		req.FilePath = path
		req.OriginalFilename = fh.Filename
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid multipart body"})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		if req.FilePath != "" {
			_ = os.Remove(req.FilePath)
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) saveUpload(fh *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst := filepath.Join(h.uploadsDir, UploadName(h.now().UnixMilli(), fh.Filename))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}

func (h *Handler) listPublic(c *gin.Context) {
	items, err := h.svc.ListPublic(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": nonNil(items)})
}

func (h *Handler) listAll(c *gin.Context) {
	items, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": nonNil(items)})
}

func (h *Handler) getPublic(c *gin.Context) {
	p, err := h.svc.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), service.UpdateRequest{
		Name:        req.ProjectName,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) addReview(c *gin.Context) {
	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	rv, err := h.svc.AddReview(c.Request.Context(), c.Param("id"), domain.CreateReviewRequest{
		ReviewerName: req.ReviewerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "review": rv})
}

func (h *Handler) delete(c *gin.Context) {
	report, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	msg := "Project deleted."
	if report.Failed() {
		msg = "Project deleted; some remote resources could not be removed."
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": msg, "report": report})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrInvalidRepoURL),
		errors.Is(err, domain.ErrInvalidRating):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSubdomainTaken):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrEventsDisabled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("[error] request_id=%s path=%s error=%v", c.GetString("request_id"), c.Request.URL.Path, err)
		c.JSON(status, gin.H{"ok": false, "error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"ok": false, "error": err.Error()})
}

func nonNil(items []domain.Project) []domain.Project {
	if items == nil {
		return []domain.Project{}
	}
	return items
}
