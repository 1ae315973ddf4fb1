package httpapi

import (
	"encoding/json"
	"net/http"

	"booking-api/internal/handler"
	"booking-api/internal/model"
)

const dateLayout = "2006-01-02"

type appointmentInput struct {
	Date        *float64 `json:"date"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	ClientID    *int64   `json:"client_id"`
	Paid        *bool    `json:"paid"`
}

type appointmentView struct {
	ID          int64   `json:"id"`
	ClientID    int64   `json:"client_id"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Paid        bool    `json:"paid"`
}

func toAppointmentView(a *model.Appointment) appointmentView {
	return appointmentView{
		ID:          a.ID,
		ClientID:    a.ClientID,
		Date:        a.Date.Format(dateLayout),
		Description: a.Description,
		Price:       a.Price,
		Paid:        a.Paid,
	}
}

// GET /appointment?client_id&appointment_id&before&after&paid
func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	var req handler.ListAppointmentsRequest
	var ok bool
	if req.ClientID, ok = queryInt(r, "client_id"); !ok {
		invalidParam(w, "client_id")
		return
	}
	if req.AppointmentID, ok = queryInt(r, "appointment_id"); !ok {
		invalidParam(w, "appointment_id")
		return
	}
	if req.Before, ok = queryTime(r, "before"); !ok {
		invalidParam(w, "before")
		return
	}
	if req.After, ok = queryTime(r, "after"); !ok {
		invalidParam(w, "after")
		return
	}
	if req.Paid, ok = queryBool(r, "paid"); !ok {
		invalidParam(w, "paid")
		return
	}

	apts, err := s.h.ListAppointments(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]appointmentView, len(apts))
	for i := range apts {
		out[i] = toAppointmentView(&apts[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var in appointmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "Invalid request body")
		return
	}
	req := handler.CreateAppointmentRequest{
		ClientID:    in.ClientID,
		Description: in.Description,
		Price:       in.Price,
		Paid:        in.Paid,
	}
	if in.Date != nil {
		d := handler.EpochSeconds(*in.Date)
		req.Date = &d
	}

	apt, err := s.h.CreateAppointment(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentView(apt))
}

// DELETE /appointment?id=&client_id=
func (s *Server) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	var req handler.CancelAppointmentRequest
	var ok bool
	if req.ID, ok = queryInt(r, "id"); !ok {
		invalidParam(w, "id")
		return
	}
	if req.ClientID, ok = queryInt(r, "client_id"); !ok {
		invalidParam(w, "client_id")
		return
	}
	if err := s.h.CancelAppointment(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
