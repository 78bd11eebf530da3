package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/pilates-studio/internal/model"
)

func TestWriteRoster(t *testing.T) {
	class := model.Class{
		ID:       3,
		Name:     "Reformer: Advanced / Flow",
		StartsAt: time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC),
		Capacity: 8,
	}
	note := "knee injury"
	booked := time.Date(2030, 2, 20, 10, 30, 0, 0, time.UTC)
	entries := []model.RosterEntry{
		{BookingID: 11, CustomerName: "Jane Doe", CustomerEmail: "jane@example.com", Status: model.BookingConfirmed, Notes: &note, BookedAt: booked},
		{BookingID: 12, CustomerName: "John Roe", CustomerEmail: "john@example.com", Status: model.BookingCancelled, BookedAt: booked},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRoster(&buf, class, entries))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 1)
	assert.LessOrEqual(t, len([]rune(sheets[0])), 31)
	assert.NotContains(t, sheets[0], ":")
	assert.NotContains(t, sheets[0], "/")

	rows, err := f.GetRows(sheets[0])
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, rosterColumns, rows[0])
	assert.Equal(t, []string{"11", "Jane Doe", "jane@example.com", "", "CONFIRMED", "2030-02-20 10:30", "knee injury"}, rows[1])
	assert.Equal(t, "CANCELLED", rows[2][4])
	assert.Equal(t, []string{"Confirmed", "1 / 8"}, rows[4])
}

func TestWriteRosterEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRoster(&buf, model.Class{Name: "Mat", Capacity: 10}, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	assert.Equal(t, rosterColumns, rows[0])
	assert.Equal(t, []string{"Confirmed", "0 / 10"}, rows[len(rows)-1])
}
