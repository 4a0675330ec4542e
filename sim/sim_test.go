package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.einride.tech/can"

	"j1939-dbc-core/canlog"
	"j1939-dbc-core/j1939"
)

func TestStandardDatabaseBuilds(t *testing.T) {
	db, err := StandardDatabase()
	require.NoError(t, err)
	assert.Len(t, db.Messages(), 14)

	eec1, err := db.MessageByID(IDEEC1)
	require.NoError(t, err)
	rpm, ok := eec1.Signal("EngineSpeed")
	require.True(t, ok)
	assert.Equal(t, 24, rpm.StartBit)
	assert.Equal(t, 16, rpm.BitLength)
	assert.Equal(t, 0.125, rpm.Scale)
}

func TestStandardDatabasePGNsResolve(t *testing.T) {
	db, err := StandardDatabase()
	require.NoError(t, err)

	want := map[string]uint32{
		"EEC1": 61444, "EEC2": 61443, "ETC2": 61445,
		"ET1": 65262, "EFLP1": 65263, "CCVS": 65265, "LFE": 65266,
		"AMB": 65269, "IC1": 65270, "VEP1": 65271, "TRF1": 65272,
		"DD": 65276, "HOURS": 65253, "DM1": 65226,
	}
	for _, m := range db.Messages() {
		assert.Equal(t, want[m.Name], j1939.ResolvePGN(m.ID).Number, m.Name)
	}
}

func TestParseScenario(t *testing.T) {
	for _, name := range []string{"idle", "highway", "acceleration", "cold_start"} {
		sc, err := ParseScenario(name)
		require.NoError(t, err)
		assert.Equal(t, Scenario(name), sc)
	}
	_, err := ParseScenario("drag_race")
	assert.Error(t, err)
}

func TestGenerateIdle(t *testing.T) {
	g, err := NewGenerator(1)
	require.NoError(t, err)

	records, err := g.Generate(ScenarioIdle, 2*time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, records)

	// Timestamps never go backwards and frames are always extended.
	last := -1.0
	counts := map[uint32]int{}
	for _, r := range records {
		require.GreaterOrEqual(t, r.Timestamp, last)
		last = r.Timestamp
		assert.True(t, r.Frame.IsExtended)
		counts[j1939.ResolvePGN(r.Frame.ID).Number]++
	}

	// 2 s of traffic: EEC1 every 20 ms, ET1 once a second.
	assert.Equal(t, 100, counts[61444])
	assert.Equal(t, 2, counts[65262])
	assert.Equal(t, 20, counts[65265])
}

func TestGenerateRecordsDecode(t *testing.T) {
	g, err := NewGenerator(7)
	require.NoError(t, err)

	records, err := g.Generate(ScenarioHighway, 3*time.Second)
	require.NoError(t, err)

	var sawSpeed, sawRPM bool
	for _, r := range records {
		msg, values, err := g.Codec().DecodeFrame(r.Frame)
		require.NoError(t, err, msg.Name)
		switch msg.Name {
		case "CCVS":
			v := values["WheelBasedVehicleSpeed"]
			require.Equal(t, j1939.Valid, v.Kind)
			assert.InDelta(t, 105, v.Physical, 110) // ramping up from 0
			sawSpeed = true
		case "EEC1":
			v := values["EngineSpeed"]
			require.Equal(t, j1939.Valid, v.Kind)
			assert.Less(t, v.Physical, 2500.0)
			sawRPM = true
		}
	}
	assert.True(t, sawSpeed)
	assert.True(t, sawRPM)

	// By the end of the run the state has converged near the targets.
	lastSpeed := -1.0
	for _, r := range records {
		if j1939.ResolvePGN(r.Frame.ID).Number == 65265 {
			_, values, err := g.Codec().DecodeFrame(r.Frame)
			require.NoError(t, err)
			lastSpeed = values["WheelBasedVehicleSpeed"].Physical
		}
	}
	assert.Greater(t, lastSpeed, 80.0)
}

func TestGenerateDeterministic(t *testing.T) {
	g1, err := NewGenerator(42)
	require.NoError(t, err)
	g2, err := NewGenerator(42)
	require.NoError(t, err)

	r1, err := g1.Generate(ScenarioColdStart, time.Second)
	require.NoError(t, err)
	r2, err := g2.Generate(ScenarioColdStart, time.Second)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	g3, err := NewGenerator(43)
	require.NoError(t, err)
	r3, err := g3.Generate(ScenarioColdStart, time.Second)
	require.NoError(t, err)
	assert.NotEqual(t, r1, r3)
}

func TestGenerateColdStartCranking(t *testing.T) {
	g, err := NewGenerator(5)
	require.NoError(t, err)

	records, err := g.Generate(ScenarioColdStart, 4*time.Second)
	require.NoError(t, err)

	for _, r := range records {
		if j1939.ResolvePGN(r.Frame.ID).Number != 61444 {
			continue
		}
		_, values, err := g.Codec().DecodeFrame(r.Frame)
		require.NoError(t, err)
		rpm := values["EngineSpeed"].Physical
		if r.Timestamp < 2 {
			assert.Less(t, rpm, 400.0, "cranking speed at %.2fs", r.Timestamp)
		}
	}
}

func TestGenerateFaultInjection(t *testing.T) {
	g, err := NewGenerator(3)
	require.NoError(t, err)
	g.InjectFault(Fault{At: time.Second, SPN: 110, FMI: 0, OC: 1})
	g.InjectFault(Fault{At: time.Minute, SPN: 629, FMI: 12, OC: 1}) // past the capture end, dropped

	records, err := g.Generate(ScenarioIdle, 2*time.Second)
	require.NoError(t, err)

	last := -1.0
	var dm1 []canlog.Record
	for _, r := range records {
		require.GreaterOrEqual(t, r.Timestamp, last, "fault insertion must keep timestamp order")
		last = r.Timestamp
		if j1939.ResolvePGN(r.Frame.ID).Number == 65226 {
			dm1 = append(dm1, r)
		}
	}
	require.Len(t, dm1, 1)
	rec := dm1[0]
	assert.Equal(t, 1.0, rec.Timestamp)

	// Lamp bytes, SPN low word, SPN high bits over the FMI, occurrence
	// count, then padding.
	assert.Equal(t, can.Data{0x00, 0x10, 0x6E, 0x00, 0x00, 0x01, 0xFF, 0xFF}, rec.Frame.Data)

	msg, values, err := g.Codec().DecodeFrame(rec.Frame)
	require.NoError(t, err)
	assert.Equal(t, "DM1", msg.Name)
	spn := uint32(values["SPNHigh"].Raw)<<16 | uint32(values["SPNLow"].Raw)
	assert.Equal(t, uint32(110), spn)
	assert.Equal(t, int64(0), values["FMI"].Raw)
	assert.Equal(t, int64(1), values["OccurrenceCount"].Raw)
	assert.Equal(t, int64(lampMIL), values["LampFlash"].Raw)
}

func TestGenerateFaultWideSPN(t *testing.T) {
	g, err := NewGenerator(3)
	require.NoError(t, err)
	// SPN 520192 = 0x7F000 exercises the high bits above the FMI.
	g.InjectFault(Fault{At: time.Second, SPN: 0x7F000, FMI: 31, OC: 127})

	records, err := g.Generate(ScenarioIdle, 2*time.Second)
	require.NoError(t, err)

	for _, r := range records {
		if j1939.ResolvePGN(r.Frame.ID).Number != 65226 {
			continue
		}
		// byte 4: SPN bits 18..16 (0b111) over FMI 31.
		assert.Equal(t, byte(0xFF), r.Frame.Data[4])
		assert.Equal(t, byte(0x7F), r.Frame.Data[5])
		return
	}
	t.Fatal("no DM1 frame in capture")
}

func TestGenerateFaultValidation(t *testing.T) {
	g, err := NewGenerator(0)
	require.NoError(t, err)
	g.InjectFault(Fault{At: time.Second, SPN: 1 << 19, FMI: 0, OC: 1})
	_, err = g.Generate(ScenarioIdle, 2*time.Second)
	assert.Error(t, err)
}

func TestGenerateUnknownScenario(t *testing.T) {
	g, err := NewGenerator(0)
	require.NoError(t, err)
	_, err = g.Generate(Scenario("warp"), time.Second)
	assert.Error(t, err)
}
