package store

import (
	"context"
	"strconv"

	"booking-api/internal/model"
)

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (date, client_id, description, price, paid)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id`,
		model.Day(a.Date), a.ClientID, a.Description, a.Price, a.Paid,
	).Scan(&a.ID)
	switch {
	case uniqueViolation(err, "appointments_client_date_key"):
		return ErrAppointmentExists
	case foreignKeyViolation(err):
		return ErrNotFound
	}
	return err
}

func (s *Store) ListAppointments(ctx context.Context, clientID int64, f model.AppointmentFilter) ([]model.Appointment, error) {
	q := `SELECT id, client_id, date, description, price, paid
		 FROM appointments
		 WHERE client_id = $1`
	args := []any{clientID}

	// before/after compare the start (UTC midnight) of the appointment day
	add := func(cond string, v any) {
		args = append(args, v)
		q += ` AND ` + cond + ` $` + strconv.Itoa(len(args))
	}
	if f.ID != nil {
		add(`id =`, *f.ID)
	}
	if f.Before != nil {
		add(`(date::timestamp AT TIME ZONE 'UTC') <`, *f.Before)
	}
	if f.After != nil {
		add(`(date::timestamp AT TIME ZONE 'UTC') >`, *f.After)
	}
	if f.Paid != nil {
		add(`paid =`, *f.Paid)
	}
	q += ` ORDER BY date, id`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.ClientID, &a.Date, &a.Description, &a.Price, &a.Paid); err != nil {
			return nil, err
		}
		a.Date = model.Day(a.Date)
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteAppointment removes appointment id only if clientID owns it.
func (s *Store) DeleteAppointment(ctx context.Context, id, clientID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM appointments WHERE id = $1 AND client_id = $2`, id, clientID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
