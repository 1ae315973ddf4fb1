package store

import (
	"context"

	"booking-api/internal/model"
)

// CreateClient inserts c and fills in its id and join date.
func (s *Store) CreateClient(ctx context.Context, c *model.Client) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO clients (name, email, phone_number, password, address)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id, date_joined`,
		c.Name, c.Email, c.PhoneNumber, c.PasswordHash, c.Address,
	).Scan(&c.ID, &c.DateJoined)
	if uniqueViolation(err, "clients_email_key") {
		return ErrEmailInUse
	}
	return err
}

func (s *Store) ClientByID(ctx context.Context, id int64) (*model.Client, error) {
	return s.clientWhere(ctx, `id = $1`, id)
}

func (s *Store) ClientByEmail(ctx context.Context, email string) (*model.Client, error) {
	return s.clientWhere(ctx, `email = $1`, email)
}

func (s *Store) clientWhere(ctx context.Context, cond string, arg any) (*model.Client, error) {
	c := &model.Client{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, date_joined, name, email, phone_number, password, address
		 FROM clients WHERE `+cond, arg,
	).Scan(&c.ID, &c.DateJoined, &c.Name, &c.Email, &c.PhoneNumber, &c.PasswordHash, &c.Address)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// DeleteClient removes the client; its appointments go with it (FK cascade).
func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
