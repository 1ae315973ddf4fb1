package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"booking-api/internal/handler"
	"booking-api/internal/model"
)

type clientInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Address     string `json:"address"`
}

// clientView is the public projection of a client; the password hash never
// leaves the store.
type clientView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Address     string    `json:"address"`
	DateJoined  time.Time `json:"date_joined"`
}

func toClientView(c *model.Client) clientView {
	return clientView{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
		DateJoined:  c.DateJoined,
	}
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var in clientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "Data format invalid")
		return
	}
	phone := in.PhoneNumber
	if phone == "" {
		phone = in.Phone
	}

	c, err := s.h.CreateClient(r.Context(), handler.CreateClientRequest{
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: phone,
		Password:    in.Password,
		Address:     in.Address,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientView(c))
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := queryInt(r, "id")
	if !ok {
		invalidParam(w, "id")
		return
	}
	c, err := s.h.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientView(c))
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := queryInt(r, "id")
	if !ok {
		invalidParam(w, "id")
		return
	}
	if err := s.h.DeleteClient(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
