package attendance

import (
	"mime/multipart"
	"time"
)

const (
	DateLayout = "2006-01-02"

	ViewEvents  = "events"
	ViewPeriods = "periods"

	CharsetUTF8        = "utf-8"
	CharsetUTF8BOM     = "utf-8-bom"
	CharsetWindows1252 = "windows-1252"

	MinYear = 1970
	MaxYear = 9999
)

// multipart: kind + photo
type PunchForm struct {
	Kind  string                `form:"kind" binding:"required,punchkind"`
	Photo *multipart.FileHeader `form:"photo"`
}

type EventResponse struct {
	EventID     int64     `json:"event_id"`
	EmployeeID  int64     `json:"employee_id"`
	Kind        Kind      `json:"kind"`
	RecordedAt  time.Time `json:"recorded_at"`
	EvidenceRef string    `json:"evidence_ref"`
}

type StateResponse struct {
	EmployeeID int64          `json:"employee_id"`
	State      State          `json:"state"`
	LastEvent  *EventResponse `json:"last_event,omitempty"`
}

type PeriodResponse struct {
	Date            string    `json:"date"` // YYYY-MM-DD（開始時刻基準）
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"duration_seconds"`
}

type DaySummary struct {
	Date         string `json:"date"`
	Periods      int    `json:"periods"`
	TotalSeconds int64  `json:"total_seconds"`
}

type MonthlyReportResponse struct {
	EmployeeID   int64            `json:"employee_id"`
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	Periods      []PeriodResponse `json:"periods"`
	Days         []DaySummary     `json:"days"`
	TotalSeconds int64            `json:"total_seconds"`
}

type DailyRowResponse struct {
	EventResponse
	EmployeeName string `json:"employee_name"`
}

type DailyReportResponse struct {
	Date   string             `json:"date"`
	Events []DailyRowResponse `json:"events"`
}

// MonthQuery: 検証済みの月次クエリ
type MonthQuery struct {
	EmployeeID int64
	Year       int
	Month      time.Month
}

type ExportRequest struct {
	Query   MonthQuery
	View    string
	Charset string
}
