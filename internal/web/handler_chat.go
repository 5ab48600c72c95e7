package web

import "net/http"

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "")
		return
	}

	reply, err := s.chat.Reply(r.Context(), req.Message, req.Context)
	if err != nil {
		s.fail(w, r, err, "Failed to get AI response")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
