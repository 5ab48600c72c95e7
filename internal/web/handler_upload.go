package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore"
)

// allowedImageTypes is the set of MIME types accepted for uploaded photos.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniff spec (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// videoMIME returns the video type of data. Sniffing wins; containers the
// stdlib cannot sniff (QuickTime, Matroska) fall back to the declared type.
func videoMIME(data []byte, declared string) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "video/") {
		return sniffed, true
	}
	declared = strings.ToLower(strings.TrimSpace(declared))
	if strings.HasPrefix(declared, "video/") {
		return declared, true
	}
	return "", false
}

// uploadedFile is one file part of a multipart request, read into memory.
type uploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// parseMultipart parses a multipart body capped at the configured upload
// size. It writes the error response itself and reports whether to go on.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return false
		}
		s.writeError(w, http.StatusBadRequest, "failed to parse form")
		return false
	}
	return true
}

// formFiles reads every file sent under field. Call parseMultipart first.
func (s *Server) formFiles(r *http.Request, field string) ([]uploadedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	files := make([]uploadedFile, 0, len(headers))
	for _, fh := range headers {
		data, err := s.readFormFile(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, uploadedFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func (s *Server) readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer closeWithLog(f, "upload file", s.logger)
	return io.ReadAll(f)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.NotFound(w, r)
		return
	}

	reader, mimeType, err := s.photoStore.Get(r.Context(), key)
	if errors.Is(err, photostore.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Photo not found")
		return
	}
	if err != nil {
		s.logger.Error("get photo failed", "key", key, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to load photo")
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "key", key, "error", err)
	}
}
