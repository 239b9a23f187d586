package ingest

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/lucasjlepore/stepcadence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"
)

type cadenceRun struct {
	start   time.Time
	seconds int
	cadence uint8
}

func buildCadenceFIT(t *testing.T, runs ...cadenceRun) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)
	activity, err := file.Activity()
	require.NoError(t, err)

	for _, run := range runs {
		event := fit.NewEventMsg()
		event.Timestamp = run.start
		event.Event = fit.EventTimer
		event.EventType = fit.EventTypeStart
		activity.Events = append(activity.Events, event)

		for s := 0; s <= run.seconds; s++ {
			record := fit.NewRecordMsg()
			record.Timestamp = run.start.Add(time.Duration(s) * time.Second)
			record.Cadence = run.cadence
			activity.Records = append(activity.Records, record)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

func TestFromFITBucketsCadence(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)
	data := buildCadenceFIT(t,
		cadenceRun{start: day1, seconds: 60, cadence: 100},
		cadenceRun{start: day3, seconds: 30, cadence: 40},
	)

	table, err := FromFIT(FITOptions{UserID: "runner", Region: stepcadence.Region{CountyCode: "GBR"}}, bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []stepcadence.Day{1, 2, 3}, table.Days)
	require.Len(t, table.Users, 1)
	u := table.Users[0]
	assert.Equal(t, "runner", u.UserID)
	require.Len(t, u.Days, 3)

	assert.Equal(t, stepcadence.NumberCell(100), u.Days[0].Cells[stepcadence.MetricSteps])
	assert.Equal(t, stepcadence.NumberCell(100), u.Days[0].Cells[stepcadence.MetricCadence90])
	assert.Empty(t, u.Days[1].Cells)
	assert.Equal(t, stepcadence.NumberCell(20), u.Days[2].Cells[stepcadence.MetricSteps])
	assert.Equal(t, stepcadence.NumberCell(20), u.Days[2].Cells[stepcadence.MetricCadence30])
	require.NoError(t, table.Validate())
}

func TestFromFITStrideCadence(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	data := buildCadenceFIT(t, cadenceRun{start: start, seconds: 60, cadence: 80})

	table, err := FromFIT(FITOptions{UserID: "u", StrideCadence: true}, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, stepcadence.NumberCell(160), table.Users[0].Days[0].Cells[stepcadence.MetricCadence150])
}

func TestFromFITWithoutRecords(t *testing.T) {
	table, err := FromFIT(FITOptions{UserID: "idle"})
	require.NoError(t, err)
	require.Len(t, table.Users, 1)
	assert.Empty(t, table.Users[0].Days)
	assert.Empty(t, table.Days)
}

func TestFromFITRequiresUser(t *testing.T) {
	_, err := FromFIT(FITOptions{})
	assert.Error(t, err)
}

func TestCadenceBucket(t *testing.T) {
	tests := []struct {
		spm  float64
		want stepcadence.Metric
		ok   bool
	}{
		{29.9, "", false},
		{30, stepcadence.MetricCadence30, true},
		{89.5, stepcadence.MetricCadence60, true},
		{90, stepcadence.MetricCadence90, true},
		{329, stepcadence.MetricCadence300, true},
		{330, stepcadence.MetricCadenceAbove, true},
		{600, stepcadence.MetricCadenceAbove, true},
	}
	for _, tt := range tests {
		got, ok := CadenceBucket(tt.spm)
		assert.Equal(t, tt.ok, ok, "spm %v", tt.spm)
		assert.Equal(t, tt.want, got, "spm %v", tt.spm)
	}
}
