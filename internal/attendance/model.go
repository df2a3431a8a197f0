package attendance

import (
	"fmt"
	"strings"
	"time"
)

// Kind: 打刻種別。in/out 以外は存在しない
type Kind string

const (
	CheckIn  Kind = "in"
	CheckOut Kind = "out"
)

// ParseKind は旧クライアントの "entrada"/"salida" も受け付ける
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "check_in", "checkin", "entrada":
		return CheckIn, nil
	case "out", "check_out", "checkout", "salida":
		return CheckOut, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

type State string

const (
	CheckedIn  State = "checked_in"
	CheckedOut State = "checked_out"
)

// Event: attendance_events の1行。追記のみで更新・削除はしない
type Event struct {
	ID          int64
	EmployeeID  int64
	At          time.Time
	Kind        Kind
	EvidenceRef string
}

// NamedEvent: 日次レポート・CSV 用に従業員名を付けたもの
type NamedEvent struct {
	Event
	EmployeeName string
}

// WorkPeriod: in/out の組から導出される勤務区間（保存しない）
type WorkPeriod struct {
	EmployeeID      int64
	Start           time.Time
	End             time.Time
	DurationSeconds int64
}

// Date: 区間を日付で束ねるときのキー（開始時刻の UTC 日付）
func (p WorkPeriod) Date() string {
	return p.Start.UTC().Format(DateLayout)
}

// DB行に対応（スキャン用）
type eventRow struct {
	EventID     int64
	EmployeeID  int64
	RecordedAt  int64 // unix ms
	Kind        string
	EvidenceRef string
}

func (r eventRow) toModel() Event {
	return Event{
		ID:          r.EventID,
		EmployeeID:  r.EmployeeID,
		At:          time.UnixMilli(r.RecordedAt).UTC(),
		Kind:        Kind(r.Kind),
		EvidenceRef: r.EvidenceRef,
	}
}

func (e Event) toDTO() EventResponse {
	return EventResponse{
		EventID:     e.ID,
		EmployeeID:  e.EmployeeID,
		Kind:        e.Kind,
		RecordedAt:  e.At.UTC(),
		EvidenceRef: e.EvidenceRef,
	}
}

func (e NamedEvent) toDTO() DailyRowResponse {
	return DailyRowResponse{
		EventResponse: e.Event.toDTO(),
		EmployeeName:  e.EmployeeName,
	}
}

func (p WorkPeriod) toDTO() PeriodResponse {
	return PeriodResponse{
		Date:            p.Date(),
		Start:           p.Start.UTC(),
		End:             p.End.UTC(),
		DurationSeconds: p.DurationSeconds,
	}
}
