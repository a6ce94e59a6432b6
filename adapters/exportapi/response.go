package exportapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-shader-export/export"
)

// Response provides a minimal response interface for transport adapters.
// Headers must be set before WriteHeader.
type Response interface {
	SetHeader(name, value string)
	WriteHeader(status int)
	Write(data []byte) (int, error)
	WriteJSON(status int, payload any) error
}

// ErrorResponse describes JSON error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WriteError writes err as a JSON error with a matching status code.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := export.AsGoError(err)
	writeJSON(res, statusForError(ge), ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	})
}

// WriteDownloads writes saved downloads as the response body. One download
// is sent as an attachment; several are sent as multipart/mixed parts.
func WriteDownloads(res Response, exportID string, downloads []export.Download) error {
	switch len(downloads) {
	case 0:
		return export.NewError(export.KindInternal, "export produced no downloads", nil)
	case 1:
		d := downloads[0]
		setDownloadHeaders(res, exportID, d.Filename, d.ContentType)
		res.SetHeader("Content-Length", strconv.Itoa(len(d.Data)))
		res.WriteHeader(http.StatusOK)
		_, err := res.Write(d.Data)
		return err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, d := range downloads {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", contentTypeOrDefault(d.ContentType))
		header.Set("Content-Disposition", attachment(d.Filename))
		part, err := mw.CreatePart(header)
		if err != nil {
			return err
		}
		if _, err := part.Write(d.Data); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}

	res.SetHeader("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	res.SetHeader("Content-Length", strconv.Itoa(buf.Len()))
	res.SetHeader("X-Export-Fallback", "true")
	if exportID != "" {
		res.SetHeader("X-Export-Id", exportID)
	}
	res.WriteHeader(http.StatusOK)
	_, err := res.Write(buf.Bytes())
	return err
}

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

func writeNotFound(res Response) {
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	res.SetHeader("X-Content-Type-Options", "nosniff")
	res.WriteHeader(http.StatusNotFound)
	_, _ = res.Write([]byte("404 page not found\n"))
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func sanitizeFilename(filename string) string {
	name := strings.TrimSpace(filename)
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "shader"
	}
	return name
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=\"%s\"", sanitizeFilename(filename))
}

func contentTypeOrDefault(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

func setDownloadHeaders(res Response, exportID, filename, contentType string) {
	res.SetHeader("Content-Type", contentTypeOrDefault(contentType))
	res.SetHeader("Content-Disposition", attachment(filename))
	if exportID != "" {
		res.SetHeader("X-Export-Id", exportID)
	}
}
