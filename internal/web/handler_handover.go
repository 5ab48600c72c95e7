package web

import (
	"errors"
	"net/http"

	"github.com/Dhruvp18/pharma-grid-landing/internal/domain"
)

type scanResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Status  domain.BookingStatus `json:"status,omitempty"`
}

func (s *Server) handleGenerateHandover(w http.ResponseWriter, r *http.Request) {
	var req generateHandoverRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "")
		return
	}

	code, err := s.handover.Generate(r.Context(), string(req.BookingID), req.HandoverType)
	if err != nil {
		s.fail(w, r, err, "Failed to generate handover code")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"qrData": code})
}

func (s *Server) handleScanHandover(w http.ResponseWriter, r *http.Request) {
	var req scanHandoverRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "")
		return
	}

	status, err := s.handover.Scan(r.Context(), string(req.BookingID), string(req.ScannedCode), req.HandoverType)
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		s.writeJSON(w, http.StatusBadRequest, scanResponse{Message: "Invalid QR Code"})
		return
	case errors.Is(err, domain.ErrCodeExpired):
		s.writeJSON(w, http.StatusBadRequest, scanResponse{Message: "QR Code expired, ask for a new one"})
		return
	case err != nil:
		s.fail(w, r, err, "Failed to verify handover")
		return
	}

	s.writeJSON(w, http.StatusOK, scanResponse{
		Success: true,
		Message: "Handover Complete!",
		Status:  status,
	})
}
