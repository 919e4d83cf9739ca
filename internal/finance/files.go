package finance

import (
	"errors"
	"net/http"

	"fintrack/internal/objectstore"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
)

// File handler functions

// @Summary Upload file
// @Description Stores a receipt or attachment under a generated name
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param bucket path string true "Bucket (receipts, goal-images, user-profiles, exports, backups)"
// @Param file formData file true "File to upload"
// @Success 201 {object} map[string]interface{} "File uploaded successfully"
// @Failure 400 {object} map[string]interface{} "Invalid bucket name or missing file"
// @Router /finance/files/{bucket} [post]
func (h *Handler) uploadFile(c *gin.Context) {
	bucket := c.Param("bucket")
	if !objectstore.ValidBucket(bucket) {
		web.Fail(c, http.StatusBadRequest, "Invalid bucket name")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "No file uploaded")
		return
	}
	if header.Size == 0 {
		web.Fail(c, http.StatusBadRequest, "File is empty")
		return
	}

	file, err := header.Open()
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	filename := objectstore.GenerateName(header.Filename)

	if err := h.files.Put(c.Request.Context(), bucket, filename, file, header.Size, contentType); err != nil {
		web.AbortWithStoreError(c, "uploading file", err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "File uploaded successfully",
		"bucket":      bucket,
		"filename":    filename,
		"size":        header.Size,
		"contentType": contentType,
	})
}

// @Summary Download file
// @Tags files
// @Produce octet-stream
// @Param bucket path string true "Bucket"
// @Param filename path string true "Stored filename"
// @Success 200 {file} file
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /finance/files/{bucket}/{filename} [get]
func (h *Handler) downloadFile(c *gin.Context) {
	bucket := c.Param("bucket")
	if !objectstore.ValidBucket(bucket) {
		web.Fail(c, http.StatusBadRequest, "Invalid bucket name")
		return
	}

	reader, info, err := h.files.Get(c.Request.Context(), bucket, c.Param("filename"))
	if err != nil {
		h.fileError(c, "downloading file", err)
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, reader, map[string]string{
		"Content-Disposition": `attachment; filename="` + info.Name + `"`,
	})
}

// @Summary Delete file
// @Tags files
// @Produce json
// @Param bucket path string true "Bucket"
// @Param filename path string true "Stored filename"
// @Success 200 {object} map[string]interface{} "File deleted successfully"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /finance/files/{bucket}/{filename} [delete]
func (h *Handler) deleteFile(c *gin.Context) {
	bucket := c.Param("bucket")
	if !objectstore.ValidBucket(bucket) {
		web.Fail(c, http.StatusBadRequest, "Invalid bucket name")
		return
	}

	if err := h.files.Delete(c.Request.Context(), bucket, c.Param("filename")); err != nil {
		h.fileError(c, "deleting file", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File deleted successfully",
	})
}

func (h *Handler) fileError(c *gin.Context, action string, err error) {
	if errors.Is(err, objectstore.ErrNotFound) {
		web.Fail(c, http.StatusNotFound, "File not found")
		return
	}
	web.AbortWithStoreError(c, action, err, "File not found")
}
