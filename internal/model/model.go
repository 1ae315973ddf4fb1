package model

import "time"

// AdminID is the identity claim reserved for the administrator.
const AdminID int64 = 0

type Client struct {
	ID           int64
	DateJoined   time.Time
	Name         string
	Email        string
	PhoneNumber  string
	PasswordHash string
	Address      string
}

// Appointment is owned by exactly one client. Date is a UTC calendar day.
type Appointment struct {
	ID          int64
	ClientID    int64
	Date        time.Time
	Description string
	Price       float64
	Paid        bool
}

// AppointmentFilter narrows a client's appointment list. Nil fields are ignored.
type AppointmentFilter struct {
	ID     *int64
	Before *time.Time
	After  *time.Time
	Paid   *bool
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
