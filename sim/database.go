// Package sim generates realistic J1939 traffic for testing decoders
// without physical hardware. Vehicle state evolves per driving scenario
// and every frame is produced through the schema codec, so the fixture
// bytes and the decoder can never disagree on signal layout.
package sim

import (
	"fmt"

	"j1939-dbc-core/dbc"
)

// Standard CAN IDs of the generated parameter groups (priority, PGN and
// the transmitting node's source address baked in).
const (
	IDEEC1  = 0x0CF00400 // Electronic Engine Controller 1
	IDEEC2  = 0x0CF00300 // Electronic Engine Controller 2
	IDETC2  = 0x18F00503 // Electronic Transmission Controller 2
	IDET1   = 0x18FEEE00 // Engine Temperature 1
	IDEFLP1 = 0x18FEEF00 // Engine Fluid Level/Pressure 1
	IDCCVS  = 0x18FEF100 // Cruise Control/Vehicle Speed
	IDLFE   = 0x18FEF200 // Fuel Economy
	IDAMB   = 0x18FEF500 // Ambient Conditions
	IDIC1   = 0x18FEF600 // Intake/Exhaust Conditions 1
	IDVEP1  = 0x18FEF700 // Vehicle Electrical Power 1
	IDTRF1  = 0x18FEF800 // Transmission Fluids 1
	IDDD    = 0x18FEFC00 // Dash Display
	IDHOURS = 0x18FEE500 // Engine Hours, Revolutions
	IDDM1   = 0x18FECA00 // Active Diagnostic Trouble Codes
)

// StandardDatabase builds the J1939-71 subset used by the simulator:
// the engine, transmission and dash parameter groups of a typical
// truck. Little-endian throughout, as J1939-71 specifies.
func StandardDatabase() (*dbc.Database, error) {
	le := dbc.LittleEndian
	b := dbc.NewBuilder().SetVersion("j1939-71 subset").AddNodes("Engine", "Transmission", "Dash")

	b.AddMessage(dbc.Message{
		ID: IDEEC1, Name: "EEC1", Length: 8, Transmitter: "Engine", CycleMS: 20,
		Comment: "Electronic Engine Controller 1",
		Signals: []dbc.Signal{
			{Name: "EngineTorqueMode", StartBit: 0, BitLength: 4, ByteOrder: le, Scale: 1, Max: 15},
			{Name: "DriverDemandTorque", StartBit: 8, BitLength: 8, ByteOrder: le, Scale: 1, Offset: -125, Min: -125, Max: 125, Unit: "%"},
			{Name: "ActualEngineTorque", StartBit: 16, BitLength: 8, ByteOrder: le, Scale: 1, Offset: -125, Min: -125, Max: 125, Unit: "%"},
			{Name: "EngineSpeed", StartBit: 24, BitLength: 16, ByteOrder: le, Scale: 0.125, Max: 8031.875, Unit: "rpm"},
			{Name: "SourceAddressOfController", StartBit: 40, BitLength: 8, ByteOrder: le, Scale: 1, Max: 255},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDEEC2, Name: "EEC2", Length: 8, Transmitter: "Engine", CycleMS: 50,
		Comment: "Electronic Engine Controller 2",
		Signals: []dbc.Signal{
			{Name: "AccelPedalPosition", StartBit: 8, BitLength: 8, ByteOrder: le, Scale: 0.4, Max: 100, Unit: "%"},
			{Name: "EngineLoad", StartBit: 16, BitLength: 8, ByteOrder: le, Scale: 1, Max: 125, Unit: "%"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDETC2, Name: "ETC2", Length: 8, Transmitter: "Transmission", CycleMS: 100,
		Comment: "Electronic Transmission Controller 2",
		Signals: []dbc.Signal{
			{Name: "SelectedGear", StartBit: 0, BitLength: 8, ByteOrder: le, Scale: 1, Offset: -125, Min: -125, Max: 125},
			{Name: "CurrentGear", StartBit: 24, BitLength: 8, ByteOrder: le, Scale: 1, Offset: -125, Min: -125, Max: 125},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDET1, Name: "ET1", Length: 8, Transmitter: "Engine", CycleMS: 1000,
		Comment: "Engine Temperature 1",
		Signals: []dbc.Signal{
			{Name: "CoolantTemp", StartBit: 0, BitLength: 8, ByteOrder: le, Scale: 1, Offset: -40, Min: -40, Max: 210, Unit: "degC"},
			{Name: "FuelTemp", StartBit: 8, BitLength: 8, ByteOrder: le, Scale: 1, Offset: -40, Min: -40, Max: 210, Unit: "degC"},
			{Name: "EngineOilTemp", StartBit: 16, BitLength: 16, ByteOrder: le, Scale: 0.03125, Offset: -273, Min: -273, Max: 1735, Unit: "degC"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDEFLP1, Name: "EFLP1", Length: 8, Transmitter: "Engine", CycleMS: 500,
		Comment: "Engine Fluid Level/Pressure 1",
		Signals: []dbc.Signal{
			{Name: "EngineOilPressure", StartBit: 24, BitLength: 8, ByteOrder: le, Scale: 4, Max: 1000, Unit: "kPa"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDCCVS, Name: "CCVS", Length: 8, Transmitter: "Engine", CycleMS: 100,
		Comment: "Cruise Control/Vehicle Speed",
		Signals: []dbc.Signal{
			{Name: "WheelBasedVehicleSpeed", StartBit: 8, BitLength: 16, ByteOrder: le, Scale: 0.00390625, Max: 250.996, Unit: "km/h"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDLFE, Name: "LFE", Length: 8, Transmitter: "Engine", CycleMS: 100,
		Comment: "Fuel Economy",
		Signals: []dbc.Signal{
			{Name: "FuelRate", StartBit: 0, BitLength: 16, ByteOrder: le, Scale: 0.05, Max: 3212.75, Unit: "L/h"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDAMB, Name: "AMB", Length: 8, Transmitter: "Engine", CycleMS: 1000,
		Comment: "Ambient Conditions",
		Signals: []dbc.Signal{
			{Name: "BarometricPressure", StartBit: 0, BitLength: 8, ByteOrder: le, Scale: 0.5, Max: 125, Unit: "kPa"},
			{Name: "AmbientAirTemp", StartBit: 24, BitLength: 16, ByteOrder: le, Scale: 0.03125, Offset: -273, Min: -273, Max: 1735, Unit: "degC"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDIC1, Name: "IC1", Length: 8, Transmitter: "Engine", CycleMS: 500,
		Comment: "Intake/Exhaust Conditions 1",
		Signals: []dbc.Signal{
			{Name: "BoostPressure", StartBit: 8, BitLength: 8, ByteOrder: le, Scale: 2, Max: 500, Unit: "kPa"},
			{Name: "IntakeManifoldTemp", StartBit: 16, BitLength: 8, ByteOrder: le, Scale: 1, Offset: -40, Min: -40, Max: 210, Unit: "degC"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDVEP1, Name: "VEP1", Length: 8, Transmitter: "Engine", CycleMS: 1000,
		Comment: "Vehicle Electrical Power 1",
		Signals: []dbc.Signal{
			{Name: "BatteryVoltage", StartBit: 48, BitLength: 16, ByteOrder: le, Scale: 0.05, Max: 3212.75, Unit: "V"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDTRF1, Name: "TRF1", Length: 8, Transmitter: "Transmission", CycleMS: 1000,
		Comment: "Transmission Fluids 1",
		Signals: []dbc.Signal{
			{Name: "TransOilTemp", StartBit: 32, BitLength: 16, ByteOrder: le, Scale: 0.03125, Offset: -273, Min: -273, Max: 1735, Unit: "degC"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDDD, Name: "DD", Length: 8, Transmitter: "Engine", CycleMS: 1000,
		Comment: "Dash Display",
		Signals: []dbc.Signal{
			{Name: "FuelLevel", StartBit: 8, BitLength: 8, ByteOrder: le, Scale: 0.4, Max: 100, Unit: "%"},
		},
	})
	b.AddMessage(dbc.Message{
		ID: IDHOURS, Name: "HOURS", Length: 8, Transmitter: "Engine", CycleMS: 10000,
		Comment: "Engine Hours, Revolutions",
		Signals: []dbc.Signal{
			{Name: "EngineHours", StartBit: 0, BitLength: 32, ByteOrder: le, Scale: 0.05, Max: 210554060.75, Unit: "h"},
		},
	})

	// DM1's trouble code splits the 19-bit SPN across a contiguous low
	// word and three high bits above the FMI, so it is carried as two
	// schema signals. Event-driven, no cycle time.
	b.AddMessage(dbc.Message{
		ID: IDDM1, Name: "DM1", Length: 8, Transmitter: "Engine",
		Comment: "Active Diagnostic Trouble Codes",
		Signals: []dbc.Signal{
			{Name: "LampStatus", StartBit: 0, BitLength: 8, ByteOrder: le, Scale: 1, Max: 255},
			{Name: "LampFlash", StartBit: 8, BitLength: 8, ByteOrder: le, Scale: 1, Max: 255},
			{Name: "SPNLow", StartBit: 16, BitLength: 16, ByteOrder: le, Scale: 1, Max: 65535},
			{Name: "FMI", StartBit: 32, BitLength: 5, ByteOrder: le, Scale: 1, Max: 31},
			{Name: "SPNHigh", StartBit: 37, BitLength: 3, ByteOrder: le, Scale: 1, Max: 7},
			{Name: "OccurrenceCount", StartBit: 40, BitLength: 7, ByteOrder: le, Scale: 1, Max: 127},
			{Name: "SPNConversionMethod", StartBit: 47, BitLength: 1, ByteOrder: le, Scale: 1, Max: 1},
		},
	})

	db, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("standard database: %w", err)
	}
	return db, nil
}
