package store

import (
	"context"
	"fmt"
	"time"
)

type Enquiry struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Subject    string
	Message    string
	RemoteAddr string
	CreatedAt  time.Time
}

func (s *Store) InsertEnquiry(ctx context.Context, e Enquiry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.DB.ExecContext(ctx, s.rebind(`
        INSERT INTO enquiries (id, name, email, phone, subject, message, remote_addr, created_at)
        VALUES (?,?,?,?,?,?,?,?)`),
		e.ID, e.Name, e.Email, e.Phone, e.Subject, e.Message, e.RemoteAddr, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert enquiry %s: %w", e.ID, err)
	}
	return nil
}

func (s *Store) CountEnquiries(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM enquiries`).Scan(&n)
	return n, err
}
