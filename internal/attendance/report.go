package attendance

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ParseMonthQuery: ストアに触る前に employee_id/year/month を検証する
func ParseMonthQuery(employeeID, year, month string) (MonthQuery, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(employeeID), 10, 64)
	if err != nil || id <= 0 {
		return MonthQuery{}, ErrInvalid("employee_id must be a positive integer")
	}
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < MinYear || y > MaxYear {
		return MonthQuery{}, ErrInvalid("year must be YYYY")
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return MonthQuery{}, ErrInvalid("month must be 1-12")
	}
	return MonthQuery{EmployeeID: id, Year: y, Month: time.Month(m)}, nil
}

// Window: 暦月の最初の瞬間〜最後の瞬間（両端含む, UTC）
func (q MonthQuery) Window() (from, to time.Time) {
	from = time.Date(q.Year, q.Month, 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return from, to
}

// DayWindow: 1日分（両端含む, UTC）
func DayWindow(day time.Time) (from, to time.Time) {
	y, m, d := day.UTC().Date()
	from = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return from, to
}

// Summarize: 区間を開始日ごとに束ねて合計する
func Summarize(periods []WorkPeriod) ([]DaySummary, int64) {
	days := []DaySummary{}
	idx := make(map[string]int)
	var total int64
	for _, p := range periods {
		total += p.DurationSeconds
		date := p.Date()
		if i, ok := idx[date]; ok {
			days[i].Periods++
			days[i].TotalSeconds += p.DurationSeconds
			continue
		}
		idx[date] = len(days)
		days = append(days, DaySummary{Date: date, Periods: 1, TotalSeconds: p.DurationSeconds})
	}
	return days, total
}

func buildMonthlyReport(q MonthQuery, periods []WorkPeriod) MonthlyReportResponse {
	out := MonthlyReportResponse{
		EmployeeID: q.EmployeeID,
		Year:       q.Year,
		Month:      int(q.Month),
		Periods:    make([]PeriodResponse, 0, len(periods)),
	}
	for _, p := range periods {
		out.Periods = append(out.Periods, p.toDTO())
	}
	out.Days, out.TotalSeconds = Summarize(periods)
	return out
}

// sortDaily: 従業員名（スペイン語照合, 大文字小文字無視）→ 時刻 → event_id
func sortDaily(rows []NamedEvent) {
	col := collate.New(language.Spanish, collate.IgnoreCase)
	slices.SortStableFunc(rows, func(a, b NamedEvent) int {
		if c := col.CompareString(a.EmployeeName, b.EmployeeName); c != 0 {
			return c
		}
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
