package site

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dosym/pagebox/internal/auth"
	"github.com/dosym/pagebox/internal/metrics"
	"github.com/dosym/pagebox/internal/policy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes mounts site and file operations under the provided group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/sites", handler.createSite)
	group.GET("/sites", handler.listSites)
	group.DELETE("/sites", handler.deleteSites)
	group.GET("/sites/:siteID", handler.getSite)
	group.PATCH("/sites/:siteID", handler.updateSite)
	group.DELETE("/sites/:siteID", handler.deleteSite)
	group.POST("/sites/:siteID/files", handler.uploadFiles)
	group.GET("/sites/:siteID/files", handler.listFiles)
	group.GET("/sites/:siteID/files/tree", handler.fileTree)
	group.DELETE("/sites/:siteID/files/*path", handler.deleteFile)
}

type httpHandler struct {
	service *Service
}

func (h *httpHandler) createSite(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}

	name := formValue(form, "name")
	slug := formValue(form, "slug")
	var description *string
	if d := formValue(form, "description"); d != "" {
		description = &d
	}
	if name == "" || slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and slug are required"})
		return
	}

	files, err := collectFiles(form)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded files"})
		return
	}

	created, err := h.service.CreateWithFiles(c.Request.Context(), ownerID, name, slug, description, files)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	metrics.SiteUploads.Inc()
	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) listSites(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sites, err := h.service.ListSites(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sites": sites})
}

func (h *httpHandler) getSite(c *gin.Context) {
	ownerID, siteID, ok := requireSiteParams(c)
	if !ok {
		return
	}

	found, err := h.service.GetSite(c.Request.Context(), ownerID, siteID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	usage, err := h.service.Usage(c.Request.Context(), ownerID, siteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute usage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"site": found, "usage": usage})
}

type updateSiteRequest struct {
	Name        string  `json:"name" binding:"required,max=128"`
	Description *string `json:"description" binding:"omitempty,max=512"`
}

func (h *httpHandler) updateSite(c *gin.Context) {
	ownerID, siteID, ok := requireSiteParams(c)
	if !ok {
		return
	}

	var req updateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdateSite(c.Request.Context(), ownerID, siteID, req.Name, req.Description)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) deleteSite(c *gin.Context) {
	ownerID, siteID, ok := requireSiteParams(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), ownerID, siteID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type deleteSitesRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

func (h *httpHandler) deleteSites(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req deleteSitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid site id"})
			return
		}
		ids = append(ids, id)
	}

	if err := h.service.DeleteMany(c.Request.Context(), ownerID, ids); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(ids)})
}

func (h *httpHandler) uploadFiles(c *gin.Context) {
	ownerID, siteID, ok := requireSiteParams(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}

	files, err := collectFiles(form)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded files"})
		return
	}

	if err := h.service.UploadFiles(c.Request.Context(), ownerID, siteID, files); err != nil {
		writeServiceError(c, err)
		return
	}
	metrics.SiteUploads.Inc()
	c.JSON(http.StatusOK, gin.H{"uploaded": len(files)})
}

func (h *httpHandler) listFiles(c *gin.Context) {
	ownerID, siteID, ok := requireSiteParams(c)
	if !ok {
		return
	}

	files, err := h.service.ListFiles(c.Request.Context(), ownerID, siteID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *httpHandler) fileTree(c *gin.Context) {
	ownerID, siteID, ok := requireSiteParams(c)
	if !ok {
		return
	}

	tree, err := h.service.FileTree(c.Request.Context(), ownerID, siteID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tree": tree})
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	ownerID, siteID, ok := requireSiteParams(c)
	if !ok {
		return
	}

	relativePath := strings.TrimPrefix(c.Param("path"), "/")
	if err := h.service.DeleteFile(c.Request.Context(), ownerID, siteID, relativePath); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func requireSiteParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	siteID, err := uuid.Parse(c.Param("siteID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid site id"})
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, siteID, true
}

// collectFiles reads every "file" part of the form; a part's relative path
// comes from the matching "path-<filename>" field, defaulting to the filename.
func collectFiles(form *multipart.Form) ([]IncomingFile, error) {
	headers := form.File["file"]
	files := make([]IncomingFile, 0, len(headers))
	for _, header := range headers {
		content, err := readPart(header)
		if err != nil {
			return nil, err
		}
		relativePath := header.Filename
		if declared := formValue(form, "path-"+header.Filename); declared != "" {
			relativePath = declared
		}
		files = append(files, IncomingFile{
			Name:         header.Filename,
			RelativePath: relativePath,
			Content:      content,
		})
	}
	return files, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	part, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer part.Close()
	return io.ReadAll(part)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSiteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "site not found"})
	case errors.Is(err, ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
	case errors.Is(err, ErrInvalidSlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug may contain lowercase letters, digits and hyphens"})
	case errors.Is(err, ErrNoEntryPoint):
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one HTML file is required"})
	case errors.Is(err, ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
	case errors.Is(err, policy.ErrUnsupportedType),
		errors.Is(err, policy.ErrFileTooLarge),
		errors.Is(err, policy.ErrSiteQuotaExceeded),
		errors.Is(err, policy.ErrPathRejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUploadFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
