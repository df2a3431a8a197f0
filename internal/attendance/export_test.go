package attendance

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTabularEmptyKeepsHeader(t *testing.T) {
	table := ToTabular([]NamedEvent{}, EventColumns)
	assert.Equal(t, []string{"name", "timestamp", "kind"}, table.Header)
	assert.Empty(t, table.Records)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table, CharsetUTF8))
	assert.Equal(t, "name,timestamp,kind\n", buf.String())
}

func TestToTabularColumnOrderFollowsCaller(t *testing.T) {
	type row struct{ a, b string }
	cols := []Column[row]{
		{Header: "second", Value: func(r row) string { return r.b }},
		{Header: "first", Value: func(r row) string { return r.a }},
	}
	table := ToTabular([]row{{"1", "2"}, {"3", "4"}}, cols)
	assert.Equal(t, []string{"second", "first"}, table.Header)
	assert.Equal(t, [][]string{{"2", "1"}, {"4", "3"}}, table.Records)
}

func TestWriteCSVCharsets(t *testing.T) {
	table := Table{
		Header:  []string{"name"},
		Records: [][]string{{"José, Núñez"}},
	}

	t.Run("utf-8", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, table, ""))
		assert.Equal(t, "name\n\"José, Núñez\"\n", buf.String())
	})

	t.Run("utf-8 with BOM", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, table, CharsetUTF8BOM))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
		assert.Equal(t, "name\n\"José, Núñez\"\n", string(buf.Bytes()[3:]))
	})

	t.Run("windows-1252", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, table, CharsetWindows1252))
		// é=0xE9, ú=0xFA, ñ=0xF1
		want := []byte("name\n\"Jos\xe9, N\xfa\xf1ez\"\n")
		assert.Equal(t, want, buf.Bytes())
	})

	t.Run("unsupported", func(t *testing.T) {
		var buf bytes.Buffer
		err := WriteCSV(&buf, table, "shift_jis")
		assert.Equal(t, 400, ToHTTPStatus(err))
		assert.Zero(t, buf.Len())
	})
}

func TestSummarizeGroupsByStartDate(t *testing.T) {
	periods := Reconcile(evs(CheckIn, "09:00", CheckOut, "10:00", CheckIn, "11:00", CheckOut, "11:30")).Periods
	days, total := Summarize(periods)
	assert.Equal(t, int64(5400), total)
	assert.Equal(t, []DaySummary{{Date: "2024-03-04", Periods: 2, TotalSeconds: 5400}}, days)

	days, total = Summarize(nil)
	assert.NotNil(t, days)
	assert.Empty(t, days)
	assert.Zero(t, total)
}
