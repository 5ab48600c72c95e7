package web

import (
	"net/http"

	"github.com/Dhruvp18/pharma-grid-landing/internal/service"
)

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "")
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}

	booking, err := s.bookings.Create(r.Context(), service.BookingInput{
		ItemID:    req.ItemID,
		RenterID:  req.RenterID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		s.fail(w, r, err, "Failed to create booking")
		return
	}
	s.writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := s.bookings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "Failed to load booking")
		return
	}
	s.writeJSON(w, http.StatusOK, booking)
}
