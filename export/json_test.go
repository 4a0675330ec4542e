package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.einride.tech/can"

	"j1939-dbc-core/canlog"
	"j1939-dbc-core/j1939"
	"j1939-dbc-core/sim"
)

func exportCodec(t *testing.T) *j1939.Codec {
	t.Helper()
	db, err := sim.StandardDatabase()
	require.NoError(t, err)
	return j1939.NewCodec(db)
}

func eec1Record() canlog.Record {
	// EngineSpeed 2000 rpm at bytes 3..4, everything else left at the
	// not-available pattern.
	return canlog.Record{
		Timestamp: 1.25,
		Channel:   "can0",
		Frame: can.Frame{
			ID:         0x0CF00400,
			Length:     8,
			IsExtended: true,
			Data:       [8]byte{0xFF, 0xFF, 0xFF, 0x80, 0x3E, 0xFF, 0xFF, 0xFF},
		},
	}
}

func TestNewFrameReport(t *testing.T) {
	rep := NewFrameReport(exportCodec(t), eec1Record())

	assert.Equal(t, 1.25, rep.Timestamp)
	assert.Equal(t, "0CF00400", rep.ID)
	assert.Equal(t, uint32(61444), rep.PGN)
	assert.Equal(t, uint8(0), rep.Source)
	assert.Equal(t, "EEC1", rep.Message)
	assert.Equal(t, "FFFFFF803EFFFFFF", rep.Raw)
	assert.Empty(t, rep.Errors)

	rpm := rep.Signals["EngineSpeed"]
	require.NotNil(t, rpm.Value)
	assert.InDelta(t, 2000, *rpm.Value, 0.01)
	assert.Equal(t, "valid", rpm.Status)
	assert.Equal(t, "rpm", rpm.Unit)

	demand := rep.Signals["DriverDemandTorque"]
	assert.Nil(t, demand.Value)
	assert.Equal(t, "not available", demand.Status)
}

func TestNewFrameReportUnknownPGN(t *testing.T) {
	rec := eec1Record()
	rec.Frame.ID = 0x18FFFF00 // proprietary B, not in the schema

	rep := NewFrameReport(exportCodec(t), rec)
	assert.Empty(t, rep.Message)
	assert.Empty(t, rep.Signals)
	assert.Equal(t, uint32(65535), rep.PGN)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, exportCodec(t), []canlog.Record{eec1Record(), eec1Record()})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var rep FrameReport
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rep))
	assert.Equal(t, "EEC1", rep.Message)
	require.NotNil(t, rep.Signals["EngineSpeed"].Value)
	assert.InDelta(t, 2000, *rep.Signals["EngineSpeed"].Value, 0.01)
}
