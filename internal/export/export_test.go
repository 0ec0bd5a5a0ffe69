package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/lead-scout/internal/model"
)

func sampleTargets() *model.TargetList {
	return &model.TargetList{
		Leads: []model.Lead{
			{
				Name: "Ace Roofing", Rating: 4.95, CleanPhone: "+12145550100", Email: "N/A",
				Tier: model.TierElite, OutreachMessage: "Hey Ace Roofing, saw your perfect rating in Dallas.",
			},
			{
				Name: "Dallas \"Top\" Roofs, LLC", Rating: 4, CleanPhone: "+19725550101", Email: "a@b.co",
				Tier: model.TierGrowth, OutreachMessage: "Hey Dallas Top Roofs, LLC, I did a revenue audit",
			},
			{
				Name: "Perfect Co", Rating: 5, CleanPhone: "+14695550102", Email: "N/A",
				Tier: model.TierElite, OutreachMessage: "Hey Perfect Co",
			},
		},
		Counters: model.Counters{Fetched: 6, DroppedLandline: 2, DroppedLowRating: 1},
	}
}

func TestWriteCSV_Contract(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTargets().Leads))

	want := "Name,Rating,Clean_Phone,Email,SMS_Script\n" +
		"Ace Roofing,4.95,+12145550100,N/A,\"Hey Ace Roofing, saw your perfect rating in Dallas.\"\n" +
		"\"Dallas \"\"Top\"\" Roofs, LLC\",4.0,+19725550101,a@b.co,\"Hey Dallas Top Roofs, LLC, I did a revenue audit\"\n" +
		"Perfect Co,5.0,+14695550102,N/A,Hey Perfect Co\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Name,Rating,Clean_Phone,Email,SMS_Script\n", buf.String())
}

func TestWriteCSV_UTF8(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []model.Lead{{Name: "Café Roofing", Rating: 4.5, Email: "N/A"}}))
	assert.Contains(t, buf.String(), "Café Roofing,4.5,,N/A,\n")
}

func TestFormatRating(t *testing.T) {
	tests := map[float64]string{
		0:       "0.0",
		4:       "4.0",
		5:       "5.0",
		4.9:     "4.9",
		4.95:    "4.95",
		4.89999: "4.89999",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatRating(in), "rating %v", in)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTargets()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)
	assert.Equal(t, "Elite", f.Sheets[0].Name)
	assert.Equal(t, "Growth", f.Sheets[1].Name)
	assert.Equal(t, SheetSummary, f.Sheets[2].Name)

	elite := f.Sheet["Elite"]
	require.Len(t, elite.Rows, 3)
	for i, col := range Columns {
		assert.Equal(t, col, elite.Rows[0].Cells[i].String())
	}
	assert.Equal(t, "Ace Roofing", elite.Rows[1].Cells[0].String())
	rating, err := elite.Rows[1].Cells[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 4.95, rating, 1e-9)
	assert.Equal(t, "Perfect Co", elite.Rows[2].Cells[0].String())

	growth := f.Sheet["Growth"]
	require.Len(t, growth.Rows, 2)
	assert.Equal(t, "+19725550101", growth.Rows[1].Cells[2].String())

	summary := f.Sheet[SheetSummary]
	got := map[string]int{}
	for _, r := range summary.Rows {
		n, err := r.Cells[1].Int()
		require.NoError(t, err)
		got[r.Cells[0].String()] = n
	}
	assert.Equal(t, 6, got["Fetched"])
	assert.Equal(t, 3, got["Targets"])
	assert.Equal(t, 2, got["Elite"])
	assert.Equal(t, 1, got["Growth"])
	assert.Equal(t, 2, got["Dropped: landline"])
}

func TestWriteXLSX_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, f.Sheet["Elite"].Rows, 1)
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "scout_roofers_dallas_2026-03-01.csv",
		FileName(model.ScanQuery{SearchTerm: "Roofers", Location: "Dallas"}, "csv", at))
	assert.Equal(t, "scout_hvac-repair_fort-worth-tx_2026-03-01.xlsx",
		FileName(model.ScanQuery{SearchTerm: "HVAC repair", Location: "Fort Worth, TX"}, ".xlsx", at))
	assert.Equal(t, "scout_cafes_montreal_2026-03-01.csv",
		FileName(model.ScanQuery{SearchTerm: "Cafés", Location: "Montréal"}, "csv", at))
	assert.Equal(t, "scout_all_all_2026-03-01.csv",
		FileName(model.ScanQuery{SearchTerm: "  ", Location: "!!"}, "csv", at))
}
