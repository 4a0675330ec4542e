package dbc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDBC = `VERSION "1.0"

NS_ :
	NS_DESC_
	CM_
	BA_

BS_:

BU_: Engine Transmission Dash

BO_ 2364539904 EEC1: 8 Engine
 SG_ EngineTorqueMode : 0|4@1+ (1,0) [0|15] "" Dash
 SG_ DriverDemandTorque : 8|8@1+ (1,-125) [-125|125] "%" Dash
 SG_ EngineSpeed : 24|16@1+ (0.125,0) [0|8031.875] "rpm" Dash,Transmission

BO_ 2566843904 ET1: 8 Engine
 SG_ CoolantTemp : 0|8@1+ (1,-40) [-40|210] "degC" Dash
 SG_ TransOilTempMSB : 7|16@0+ (0.03125,-273) [-273|1735] "degC" Dash

BO_ 2364540160 ETC2: 8 Transmission
 SG_ CurrentGear : 24|8@1- (1,0) [-125|125] "" Dash

CM_ BO_ 2364539904 "Electronic Engine Controller 1";
CM_ SG_ 2364539904 EngineSpeed "Actual engine speed";
BA_ "GenMsgCycleTime" BO_ 2364539904 20;
VAL_ 2364539904 EngineTorqueMode 0 "Low idle governor" 1 "Accelerator pedal" 5 "ASR control" ;
`

func TestParseSampleDBC(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleDBC))
	require.NoError(t, err)

	assert.Equal(t, "1.0", db.Version)
	assert.Equal(t, []string{"Engine", "Transmission", "Dash"}, db.Nodes)
	require.Len(t, db.Messages(), 3)

	// DBC stores extended frames with bit 31 set: 2364539904 = 0x8CF00400
	eec1, err := db.MessageByID(0x0CF00400)
	require.NoError(t, err)
	assert.Equal(t, "EEC1", eec1.Name)
	assert.Equal(t, 8, eec1.Length)
	assert.Equal(t, "Engine", eec1.Transmitter)
	assert.Equal(t, 20, eec1.CycleMS)
	assert.Equal(t, "Electronic Engine Controller 1", eec1.Comment)
	require.Len(t, eec1.Signals, 3)
}

func TestParseSignalFields(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleDBC))
	require.NoError(t, err)

	eec1, err := db.MessageByName("EEC1")
	require.NoError(t, err)

	speed, ok := eec1.Signal("EngineSpeed")
	require.True(t, ok)
	assert.Equal(t, 24, speed.StartBit)
	assert.Equal(t, 16, speed.BitLength)
	assert.Equal(t, LittleEndian, speed.ByteOrder)
	assert.False(t, speed.Signed)
	assert.Equal(t, 0.125, speed.Scale)
	assert.Equal(t, 0.0, speed.Offset)
	assert.Equal(t, 8031.875, speed.Max)
	assert.Equal(t, "rpm", speed.Unit)
	assert.Equal(t, []string{"Dash", "Transmission"}, speed.Receivers)
	assert.Equal(t, "Actual engine speed", speed.Comment)

	demand, ok := eec1.Signal("DriverDemandTorque")
	require.True(t, ok)
	assert.Equal(t, -125.0, demand.Offset)

	et1, err := db.MessageByName("ET1")
	require.NoError(t, err)
	oil, ok := et1.Signal("TransOilTempMSB")
	require.True(t, ok)
	assert.Equal(t, BigEndian, oil.ByteOrder, "@0 is Motorola")
	assert.Equal(t, 7, oil.StartBit)

	etc2, err := db.MessageByName("ETC2")
	require.NoError(t, err)
	gear, ok := etc2.Signal("CurrentGear")
	require.True(t, ok)
	assert.True(t, gear.Signed)
}

func TestParseValueDescriptions(t *testing.T) {
	db, err := Parse(strings.NewReader(sampleDBC))
	require.NoError(t, err)

	eec1, err := db.MessageByName("EEC1")
	require.NoError(t, err)
	mode, ok := eec1.Signal("EngineTorqueMode")
	require.True(t, ok)
	assert.Equal(t, map[uint64]string{
		0: "Low idle governor",
		1: "Accelerator pedal",
		5: "ASR control",
	}, mode.Values)
}

func TestParseRejectsMalformedSignal(t *testing.T) {
	src := `BO_ 123 M1: 8 Node
 SG_ Broken : not|a|signal
`
	_, err := Parse(strings.NewReader(src))
	assert.Error(t, err)
}

func TestParseRejectsOrphanSignal(t *testing.T) {
	src := ` SG_ Orphan : 0|8@1+ (1,0) [0|255] "" Node
`
	_, err := Parse(strings.NewReader(src))
	assert.Error(t, err)
}

func TestParseRejectsInvalidSpan(t *testing.T) {
	// 16 bits at start bit 56 run past the 8-byte payload
	src := `BO_ 123 M1: 8 Node
 SG_ TooWide : 56|16@1+ (1,0) [0|65535] "" Node
`
	_, err := Parse(strings.NewReader(src))
	assert.Error(t, err)
}
