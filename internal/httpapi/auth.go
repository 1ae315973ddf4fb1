package httpapi

import (
	"net/http"

	"booking-api/internal/handler"
)

// POST /auth/login (form: username, password)
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	resp, err := s.h.Login(r.Context(), handler.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Origin:   r.RemoteAddr,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}
