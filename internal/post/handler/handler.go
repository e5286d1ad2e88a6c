package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/blogdraft/internal/export"
	"github.com/gogotex/blogdraft/internal/post"
	"github.com/gogotex/blogdraft/internal/post/repository"
	"github.com/gogotex/blogdraft/internal/post/service"
	"github.com/gogotex/blogdraft/pkg/logger"
)

// maxImageBytes caps an embedded image upload.
const maxImageBytes = 10 << 20

// linker is implemented by savers that can hand out a download URL.
type linker interface {
	Link(ctx context.Context, filename string, expires time.Duration) (string, error)
}

type postHandler struct {
	svc      service.Service
	pipeline *export.Pipeline
	saver    export.BlobSaver
}

// RegisterPostRoutes wires the list, editor and export endpoints. saver may
// be nil, in which case the save-to-storage route is not registered.
func RegisterPostRoutes(r gin.IRouter, svc service.Service, pipeline *export.Pipeline, saver export.BlobSaver) {
	h := &postHandler{svc: svc, pipeline: pipeline, saver: saver}

	r.GET("/api/posts", h.list)
	r.POST("/api/posts", h.save)
	r.GET("/api/posts/:id", h.get)
	r.DELETE("/api/posts/:id", h.delete)
	r.GET("/api/posts/:id/export/:format", h.exportStored)

	r.GET("/api/editor", h.open)
	r.GET("/api/editor/:id", h.open)
	r.POST("/api/editor/clear", h.clear)
	r.POST("/api/editor/preview", h.preview)

	r.POST("/api/export/:format", h.exportDraft)
	if saver != nil {
		r.POST("/api/export/:format/save", h.saveExport)
	}
	r.POST("/api/images", h.embedImage)
}

func summary(p *post.Post) gin.H {
	return gin.H{
		"id":           p.ID,
		"title":        p.Title,
		"displayTitle": p.DisplayTitle(),
		"tags":         p.Tags,
		"contentHtml":  p.ContentHTML,
		"images":       post.ImageTags(p.ContentHTML),
		"published":    p.Published,
		"updatedAt":    p.UpdatedAt,
	}
}

func (h *postHandler) list(c *gin.Context) {
	list := h.svc.List(c.Request.Context())
	out := make([]gin.H, 0, len(list))
	for _, p := range list {
		out = append(out, summary(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *postHandler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, summary(p))
}

func (h *postHandler) open(c *gin.Context) {
	d := h.svc.Open(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"draft": d, "isNew": d.IsNew()})
}

func (h *postHandler) clear(c *gin.Context) {
	var d post.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d.Clear()
	c.JSON(http.StatusOK, gin.H{"draft": d, "isNew": d.IsNew()})
}

// preview flips the draft between editing and preview. Entering preview
// also returns the draft rendered the way exports lay it out.
func (h *postHandler) preview(c *gin.Context) {
	var d post.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"preview": d.TogglePreview()}
	if d.Preview {
		l, err := export.BuildLayout(export.FromDraft(&d))
		if err == nil {
			resp["html"], err = l.HTML()
		}
		if err != nil {
			logger.Errorf("preview %q: %v", d.Title, err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
	}
	resp["draft"] = d
	c.JSON(http.StatusOK, resp)
}

// save handles both Save Draft and Publish; the body's published flag picks.
func (h *postHandler) save(c *gin.Context) {
	var d post.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Save(c.Request.Context(), &d, d.Published)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrStorageWrite) || errors.Is(err, repository.ErrStorageRead) {
			status = http.StatusServiceUnavailable
		}
		logger.Warnf("save post %q: %v", d.Title, err)
		// echo the draft so the client keeps the unsaved edit
		c.JSON(status, gin.H{"error": "post was not saved, your draft is unchanged", "draft": d})
		return
	}
	c.JSON(http.StatusOK, summary(p))
}

func (h *postHandler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		logger.Warnf("delete post %s: %v", c.Param("id"), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "post was not deleted"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *postHandler) exportStored(c *gin.Context) {
	f, ok := parseFormat(c)
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.download(c, export.FromPost(p), f)
}

func (h *postHandler) exportDraft(c *gin.Context) {
	f, ok := parseFormat(c)
	if !ok {
		return
	}
	var d post.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.download(c, export.FromDraft(&d), f)
}

func (h *postHandler) download(c *gin.Context, src export.Source, f export.Format) {
	a, err := h.pipeline.Export(src, f)
	if err != nil {
		logger.Errorf("export %s: %v", f, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	c.Data(http.StatusOK, a.ContentType, a.Data)
}

// saveExport hands the artifact to the configured file-save collaborator.
// Fixed-layout renders are fire-and-forget and answer 202 immediately.
func (h *postHandler) saveExport(c *gin.Context) {
	f, ok := parseFormat(c)
	if !ok {
		return
	}
	var d post.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src := export.FromDraft(&d)
	filename := export.Filename(src.Title, f)

	if f == export.FixedLayout {
		h.pipeline.DeliverAsync(src, f, h.saver)
		c.JSON(http.StatusAccepted, gin.H{"filename": filename, "status": "rendering"})
		return
	}

	a, err := h.pipeline.Deliver(c.Request.Context(), src, f, h.saver)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, export.ErrDelivery) {
			status = http.StatusBadGateway
		}
		logger.Errorf("save export %s: %v", filename, err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"filename": a.Filename, "status": "saved"}
	if l, ok := h.saver.(linker); ok {
		if u, err := l.Link(c.Request.Context(), a.Filename, 24*time.Hour); err == nil {
			resp["url"] = u
		}
	}
	c.JSON(http.StatusCreated, resp)
}

// embedImage turns an uploaded image into a data URI for the editor's
// image handler. When the form also carries an offset, the image is
// spliced into the form's content there and the new content returned.
func (h *postHandler) embedImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fh.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	uri := post.ImageDataURI(data)
	if !post.IsImageDataURI(uri) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "not an image"})
		return
	}
	resp := gin.H{"dataUri": uri}
	if raw, ok := c.GetPostForm("offset"); ok {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be an integer"})
			return
		}
		d := post.Draft{Content: c.PostForm("content")}
		d.InsertImage(offset, uri)
		resp["content"] = d.Content
	}
	c.JSON(http.StatusOK, resp)
}

func parseFormat(c *gin.Context) (export.Format, bool) {
	f, err := export.ParseFormat(strings.TrimPrefix(c.Param("format"), "."))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	return f, true
}
