package web

import (
	"fmt"
	"net/http"

	"github.com/Dhruvp18/pharma-grid-landing/internal/llm"
)

func (s *Server) handleAuditItem(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	files, err := s.formFiles(r, "images")
	if err != nil {
		s.logger.Error("read audit images failed", "error", err)
		s.writeError(w, http.StatusBadRequest, "failed to read images")
		return
	}

	images := make([]llm.Media, 0, len(files))
	for _, f := range files {
		mimeType, ok := allowedImageMIME(f.Data)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unsupported image format: "+f.Filename)
			return
		}
		images = append(images, llm.Media{Data: f.Data, MimeType: mimeType})
	}

	verdict, err := s.inspection.AuditItem(r.Context(), images)
	if err != nil {
		s.fail(w, r, err, "Audit Failed")
		return
	}
	s.writeJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleAnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	files, err := s.formFiles(r, "video")
	if err != nil {
		s.logger.Error("read video failed", "error", err)
		s.writeError(w, http.StatusBadRequest, "failed to read video")
		return
	}
	if len(files) == 0 {
		s.writeError(w, http.StatusBadRequest, "No video file uploaded")
		return
	}

	video := files[0]
	if int64(len(video.Data)) > s.maxVideo {
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("video too large, limit is %d MB", s.maxVideo>>20))
		return
	}
	mimeType, ok := videoMIME(video.Data, video.ContentType)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unsupported video format")
		return
	}

	verdict, err := s.inspection.AnalyzeVideo(r.Context(), llm.Media{Data: video.Data, MimeType: mimeType})
	if err != nil {
		s.fail(w, r, err, "Video Analysis Failed")
		return
	}
	s.writeJSON(w, http.StatusOK, verdict)
}
