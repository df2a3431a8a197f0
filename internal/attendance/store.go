package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"asistencia-backend/internal/platform/db"
)

type EventStore interface {
	Append(ctx context.Context, e Event) (Event, error)
	// QueryEvents: [from, to] 両端含む。recorded_at ASC, event_id ASC
	QueryEvents(ctx context.Context, employeeID int64, from, to time.Time) ([]Event, error)
	LatestEvent(ctx context.Context, employeeID int64) (*Event, error)
	ListNamedEvents(ctx context.Context, from, to time.Time) ([]NamedEvent, error)
	EmployeeName(ctx context.Context, employeeID int64) (string, error)
}

// Snapshotter: 複数の読み取りを同一スナップショットで行えるストア
type Snapshotter interface {
	Snapshot(ctx context.Context, fn func(store EventStore) error) error
}

type Store struct {
	db   db.DBTX
	conn *sql.DB // Tx 内の Store では nil
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn, conn: conn} }

func (s *Store) Snapshot(ctx context.Context, fn func(store EventStore) error) error {
	if s.conn == nil {
		return fn(s)
	}
	return db.ReadOnly(ctx, s.conn, func(ctx context.Context, tx db.DBTX) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Append(ctx context.Context, e Event) (Event, error) {
	const q = `
	INSERT INTO attendance_events (employee_id, recorded_at, kind, evidence_ref)
	VALUES (?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, q, e.EmployeeID, e.At.UTC().UnixMilli(), string(e.Kind), e.EvidenceRef)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return Event{}, ErrNotFound("employee not found")
		}
		return Event{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Event{}, err
	}
	e.ID = id
	e.At = time.UnixMilli(e.At.UTC().UnixMilli()).UTC()
	return e, nil
}

func (s *Store) QueryEvents(ctx context.Context, employeeID int64, from, to time.Time) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT event_id, employee_id, recorded_at, kind, evidence_ref
	FROM attendance_events
	WHERE employee_id = ? AND recorded_at BETWEEN ? AND ?
	ORDER BY recorded_at ASC, event_id ASC`,
		employeeID, from.UTC().UnixMilli(), to.UTC().UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var r eventRow
		if err := rows.Scan(&r.EventID, &r.EmployeeID, &r.RecordedAt, &r.Kind, &r.EvidenceRef); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

// LatestEvent: 同時刻なら後から入った方（event_id が大きい方）
func (s *Store) LatestEvent(ctx context.Context, employeeID int64) (*Event, error) {
	var r eventRow
	err := s.db.QueryRowContext(ctx, `
	SELECT event_id, employee_id, recorded_at, kind, evidence_ref
	FROM attendance_events
	WHERE employee_id = ?
	ORDER BY recorded_at DESC, event_id DESC
	LIMIT 1`, employeeID,
	).Scan(&r.EventID, &r.EmployeeID, &r.RecordedAt, &r.Kind, &r.EvidenceRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e := r.toModel()
	return &e, nil
}

func (s *Store) ListNamedEvents(ctx context.Context, from, to time.Time) ([]NamedEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT r.event_id, r.employee_id, r.recorded_at, r.kind, r.evidence_ref, u.name
	FROM attendance_events r
	JOIN employees u ON r.employee_id = u.id
	WHERE r.recorded_at BETWEEN ? AND ?
	ORDER BY u.name ASC, r.recorded_at ASC, r.event_id ASC`,
		from.UTC().UnixMilli(), to.UTC().UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []NamedEvent{}
	for rows.Next() {
		var r eventRow
		var name string
		if err := rows.Scan(&r.EventID, &r.EmployeeID, &r.RecordedAt, &r.Kind, &r.EvidenceRef, &name); err != nil {
			return nil, err
		}
		out = append(out, NamedEvent{Event: r.toModel(), EmployeeName: name})
	}
	return out, rows.Err()
}

func (s *Store) EmployeeName(ctx context.Context, employeeID int64) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM employees WHERE id = ? LIMIT 1`, employeeID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound("employee not found")
	}
	return name, err
}
