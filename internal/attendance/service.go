package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"asistencia-backend/internal/platform/evidence"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type Options struct {
	MaxUploadBytes int64
	MaxPhotoPx     int
}

// ===== Service本体 =====

type Service struct {
	store    EventStore
	evidence evidence.Store
	clock    Clock
	opts     Options
}

func NewService(conn *sql.DB, ev evidence.Store, opts Options) *Service {
	return newService(NewStore(conn), ev, realClock{}, opts)
}

func newService(store EventStore, ev evidence.Store, clock Clock, opts Options) *Service {
	return &Service{store: store, evidence: ev, clock: clock, opts: opts}
}

func (s *Service) now() time.Time {
	// 保存精度（ms）に揃える
	return s.clock.Now().UTC().Truncate(time.Millisecond)
}

type PunchInput struct {
	EmployeeID int64
	Kind       string
	Photo      io.Reader // nil なら写真なし
}

// POST /punches
func (s *Service) Punch(ctx context.Context, in PunchInput) (EventResponse, error) {
	if in.EmployeeID <= 0 {
		return EventResponse{}, ErrInvalid("employee id is required")
	}
	kind, err := ParseKind(in.Kind)
	if err != nil {
		return EventResponse{}, ErrInvalid("kind must be 'in' or 'out'")
	}
	if in.Photo == nil {
		return EventResponse{}, ErrInvalid("photo is required")
	}

	photo, err := s.readPhoto(in.Photo)
	if err != nil {
		return EventResponse{}, err
	}
	ref, err := s.evidence.Save(ctx, in.EmployeeID, photo)
	if err != nil {
		return EventResponse{}, fmt.Errorf("save evidence: %w", err)
	}

	ev, err := s.store.Append(ctx, Event{
		EmployeeID:  in.EmployeeID,
		At:          s.now(),
		Kind:        kind,
		EvidenceRef: ref,
	})
	if err != nil {
		return EventResponse{}, err
	}
	return ev.toDTO(), nil
}

func (s *Service) readPhoto(r io.Reader) (evidence.Photo, error) {
	limit := s.opts.MaxUploadBytes
	if limit > 0 {
		raw, err := io.ReadAll(io.LimitReader(r, limit+1))
		if err != nil {
			return evidence.Photo{}, err
		}
		if int64(len(raw)) > limit {
			return evidence.Photo{}, ErrInvalid(fmt.Sprintf("photo exceeds %d bytes", limit))
		}
		if len(raw) == 0 {
			return evidence.Photo{}, ErrInvalid("photo is empty")
		}
		r = bytes.NewReader(raw)
	}
	photo, err := evidence.Normalize(r, s.opts.MaxPhotoPx)
	if err != nil {
		if errors.Is(err, evidence.ErrNotImage) {
			return evidence.Photo{}, ErrInvalid("photo must be a JPEG, PNG, GIF, BMP or TIFF image")
		}
		return evidence.Photo{}, err
	}
	if len(photo.Data) == 0 {
		return evidence.Photo{}, ErrInvalid("photo is empty")
	}
	return photo, nil
}

// GET /state
func (s *Service) State(ctx context.Context, employeeID int64) (StateResponse, error) {
	if employeeID <= 0 {
		return StateResponse{}, ErrInvalid("employee id is required")
	}
	latest, err := s.store.LatestEvent(ctx, employeeID)
	if err != nil {
		return StateResponse{}, err
	}
	out := StateResponse{EmployeeID: employeeID, State: CurrentState(latest)}
	if latest != nil {
		dto := latest.toDTO()
		out.LastEvent = &dto
	}
	return out, nil
}

// GET /reports/monthly
func (s *Service) MonthlyReport(ctx context.Context, q MonthQuery) (MonthlyReportResponse, error) {
	periods, err := s.monthlyPeriods(ctx, s.store, q)
	if err != nil {
		return MonthlyReportResponse{}, err
	}
	return buildMonthlyReport(q, periods), nil
}

// 未完了の勤務（OpenCheckIn）は月次には含めない
func (s *Service) monthlyPeriods(ctx context.Context, store EventStore, q MonthQuery) ([]WorkPeriod, error) {
	from, to := q.Window()
	events, err := store.QueryEvents(ctx, q.EmployeeID, from, to)
	if err != nil {
		return nil, err
	}
	res := Reconcile(events)
	if res.Anomalies.Any() {
		log.Printf("[WARN] reconcile employee=%d %04d-%02d: duplicate_in=%d orphan_out=%d negative=%d",
			q.EmployeeID, q.Year, int(q.Month),
			res.Anomalies.DuplicateCheckIns, res.Anomalies.OrphanCheckOuts, res.Anomalies.NegativePairs)
	}
	return res.Periods, nil
}

// ParseDay: "YYYY-MM-DD" または "today"
func (s *Service) ParseDay(v string) (time.Time, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return time.Time{}, ErrInvalid("date is required")
	}
	if v == "today" {
		return s.now(), nil
	}
	d, err := time.ParseInLocation(DateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalid("date must be YYYY-MM-DD or 'today'")
	}
	return d, nil
}

// GET /reports/daily
func (s *Service) DailyReport(ctx context.Context, day time.Time) (DailyReportResponse, error) {
	if day.IsZero() {
		return DailyReportResponse{}, ErrInvalid("date is required")
	}
	from, to := DayWindow(day)
	rows, err := s.store.ListNamedEvents(ctx, from, to)
	if err != nil {
		return DailyReportResponse{}, err
	}
	sortDaily(rows)

	out := DailyReportResponse{Date: from.Format(DateLayout), Events: make([]DailyRowResponse, 0, len(rows))}
	for _, r := range rows {
		out.Events = append(out.Events, r.toDTO())
	}
	return out, nil
}

// GET /reports/monthly/export
func (s *Service) ExportMonthly(ctx context.Context, req ExportRequest) (Table, error) {
	view := req.View
	if view == "" {
		view = ViewEvents
	}
	if view != ViewEvents && view != ViewPeriods {
		return Table{}, ErrInvalid("view must be 'events' or 'periods'")
	}
	if _, err := encoderFor(req.Charset); err != nil {
		return Table{}, err
	}

	var table Table
	read := func(store EventStore) error {
		name, err := store.EmployeeName(ctx, req.Query.EmployeeID)
		if err != nil {
			return err
		}
		if view == ViewPeriods {
			periods, err := s.monthlyPeriods(ctx, store, req.Query)
			if err != nil {
				return err
			}
			rows := make([]NamedPeriod, 0, len(periods))
			for _, p := range periods {
				rows = append(rows, NamedPeriod{WorkPeriod: p, EmployeeName: name})
			}
			table = ToTabular(rows, PeriodColumns)
			return nil
		}

		from, to := req.Query.Window()
		events, err := store.QueryEvents(ctx, req.Query.EmployeeID, from, to)
		if err != nil {
			return err
		}
		rows := make([]NamedEvent, 0, len(events))
		for _, e := range events {
			rows = append(rows, NamedEvent{Event: e, EmployeeName: name})
		}
		table = ToTabular(rows, EventColumns)
		return nil
	}

	var err error
	if snap, ok := s.store.(Snapshotter); ok {
		err = snap.Snapshot(ctx, read)
	} else {
		err = read(s.store)
	}
	if err != nil {
		return Table{}, err
	}
	return table, nil
}

// ExportFilename: informe-<year>-<month>-empleado-<id>.csv
func ExportFilename(q MonthQuery, view string) string {
	if view == ViewPeriods {
		return fmt.Sprintf("informe-%d-%d-empleado-%d-periodos.csv", q.Year, int(q.Month), q.EmployeeID)
	}
	return fmt.Sprintf("informe-%d-%d-empleado-%d.csv", q.Year, int(q.Month), q.EmployeeID)
}
