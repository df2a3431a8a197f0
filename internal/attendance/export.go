package attendance

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column: 1列分の射影。Header が列名、Value が行から値を取り出す
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// Table: ヘッダ + 平坦なレコード
type Table struct {
	Header  []string
	Records [][]string
}

// ToTabular: 列順は cols の順で固定。rows が空ならヘッダだけ返す
func ToTabular[T any](rows []T, cols []Column[T]) Table {
	t := Table{
		Header:  make([]string, len(cols)),
		Records: make([][]string, 0, len(rows)),
	}
	for i, c := range cols {
		t.Header[i] = c.Header
	}
	for _, r := range rows {
		rec := make([]string, len(cols))
		for i, c := range cols {
			rec[i] = c.Value(r)
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// EventColumns: 打刻の生データ（名前, 日時, 種別）
var EventColumns = []Column[NamedEvent]{
	{Header: "name", Value: func(e NamedEvent) string { return e.EmployeeName }},
	{Header: "timestamp", Value: func(e NamedEvent) string { return formatTime(e.At) }},
	{Header: "kind", Value: func(e NamedEvent) string { return string(e.Kind) }},
}

type NamedPeriod struct {
	WorkPeriod
	EmployeeName string
}

var PeriodColumns = []Column[NamedPeriod]{
	{Header: "name", Value: func(p NamedPeriod) string { return p.EmployeeName }},
	{Header: "date", Value: func(p NamedPeriod) string { return p.Date() }},
	{Header: "start", Value: func(p NamedPeriod) string { return formatTime(p.Start) }},
	{Header: "end", Value: func(p NamedPeriod) string { return formatTime(p.End) }},
	{Header: "duration_seconds", Value: func(p NamedPeriod) string { return strconv.FormatInt(p.DurationSeconds, 10) }},
}

func encoderFor(charset string) (*encoding.Encoder, error) {
	switch charset {
	case "", CharsetUTF8:
		return nil, nil
	case CharsetUTF8BOM:
		return unicode.UTF8BOM.NewEncoder(), nil
	case CharsetWindows1252:
		// 表現できない文字は置換（エラーにしない）
		return encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()), nil
	default:
		return nil, ErrInvalid("charset must be utf-8, utf-8-bom or windows-1252")
	}
}

// WriteCSV: Table を CSV に書き出す。charset は Excel 向けの変換用
func WriteCSV(w io.Writer, t Table, charset string) error {
	enc, err := encoderFor(charset)
	if err != nil {
		return err
	}
	var tw *transform.Writer
	if enc != nil {
		tw = transform.NewWriter(w, enc)
		w = tw
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Records); err != nil {
		return err
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}
