package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"asistencia-backend/internal/platform/db"
)

const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

type Employee struct {
	ID           int64
	Name         string
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

type AccountStore interface {
	GetByUsername(ctx context.Context, username string) (*Employee, error)
	GetByID(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	Create(ctx context.Context, e *Employee) (int64, error)
	UpdatePassword(ctx context.Context, id int64, hash string) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type Store struct{ db db.DBTX }

func NewStore(conn db.DBTX) *Store {
	return &Store{db: conn}
}

const selectEmployee = `
SELECT id, name, username, password_hash, role, created_at
FROM employees
`

func scanEmployee(row interface{ Scan(dest ...any) error }) (*Employee, error) {
	var e Employee
	var createdAt int64
	if err := row.Scan(&e.ID, &e.Name, &e.Username, &e.PasswordHash, &e.Role, &createdAt); err != nil {
		return nil, err
	}
	e.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &e, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*Employee, error) {
	e, err := scanEmployee(s.db.QueryRowContext(ctx, selectEmployee+`WHERE username = ? LIMIT 1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Employee, error) {
	e, err := scanEmployee(s.db.QueryRowContext(ctx, selectEmployee+`WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.db.QueryContext(ctx, selectEmployee+`ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, e *Employee) (int64, error) {
	const q = `
INSERT INTO employees (name, username, password_hash, role, created_at)
VALUES (?, ?, ?, ?, ?)
`
	res, err := s.db.ExecContext(ctx, q, e.Name, e.Username, e.PasswordHash, e.Role, e.CreatedAt.UTC().UnixMilli())
	if err != nil {
		if db.IsDuplicateKey(err) {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE employees SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete: attendance_events は ON DELETE CASCADE で一緒に消える
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
