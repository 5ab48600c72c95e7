package web

import (
	"net/http"

	"github.com/Dhruvp18/pharma-grid-landing/internal/service"
)

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "")
		return
	}

	review, err := s.reviews.Create(r.Context(), service.ReviewInput{
		ItemID:     req.ItemID,
		ReviewerID: req.ReviewerID,
		BookingID:  req.BookingID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		s.fail(w, r, err, "Failed to submit review")
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"review": review})
}

func (s *Server) handleItemReviews(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reviews.ListForItem(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch reviews")
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleOwnerReviews(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reviews.ListForOwner(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch reviews")
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.reviews.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err, "Failed to fetch profile")
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}
