package sim

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"j1939-dbc-core/canlog"
	"j1939-dbc-core/j1939"
)

// Source addresses of the simulated nodes.
const (
	sourceEngine       = 0x00
	sourceTransmission = 0x03
)

// stepMS is the generator's base tick. Every message cycle time in the
// standard database is a multiple of it.
const stepMS = 10

// Generator produces timestamped CAN records for a driving scenario.
// All payloads go through the schema codec, never hand-packed bytes.
type Generator struct {
	codec   *j1939.Codec
	rnd     *rand.Rand
	state   VehicleState
	channel string
	faults  []Fault
}

// NewGenerator builds a generator over the standard database. The seed
// fixes the noise source so identical seeds give identical captures.
func NewGenerator(seed int64) (*Generator, error) {
	db, err := StandardDatabase()
	if err != nil {
		return nil, err
	}
	return &Generator{
		codec:   j1939.NewCodec(db),
		rnd:     rand.New(rand.NewSource(seed)),
		state:   newVehicleState(),
		channel: "can0",
	}, nil
}

// Codec exposes the generator's codec, so callers can decode the
// records they just generated against the same schema.
func (g *Generator) Codec() *j1939.Codec { return g.codec }

// Generate runs the scenario for the given duration and returns the
// emitted records in timestamp order.
func (g *Generator) Generate(scenario Scenario, duration time.Duration) ([]canlog.Record, error) {
	if _, err := ParseScenario(string(scenario)); err != nil {
		return nil, err
	}

	steps := int(duration.Milliseconds()) / stepMS
	var records []canlog.Record
	for tick := 0; tick < steps; tick++ {
		elapsedMS := tick * stepMS
		elapsed := float64(elapsedMS) / 1000
		g.state.update(scenario, elapsed, g.rnd)
		g.state.EngineHours += float64(stepMS) / 1000 / 3600

		for _, sched := range g.schedule() {
			if elapsedMS%sched.cycleMS != 0 {
				continue
			}
			frame, err := g.codec.EncodeFrame(sched.message, sched.values, sched.source)
			if err != nil {
				return nil, fmt.Errorf("scenario %s at %.3fs: %w", scenario, elapsed, err)
			}
			records = append(records, canlog.Record{
				Timestamp: elapsed,
				Channel:   g.channel,
				Frame:     frame,
			})
		}
	}

	for _, fault := range g.faults {
		if fault.At < 0 || fault.At >= duration {
			continue
		}
		if err := fault.validate(); err != nil {
			return nil, err
		}
		frame, err := g.codec.EncodeFrame("DM1", fault.values(), sourceEngine)
		if err != nil {
			return nil, fmt.Errorf("fault at %s: %w", fault.At, err)
		}
		records = append(records, canlog.Record{
			Timestamp: fault.At.Seconds(),
			Channel:   g.channel,
			Frame:     frame,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp < records[j].Timestamp
	})
	return records, nil
}

type emission struct {
	message string
	cycleMS int
	source  uint8
	values  map[string]float64
}

// schedule maps the current vehicle state onto the periodic messages.
// Cycle times follow the database entries.
func (g *Generator) schedule() []emission {
	s := &g.state
	return []emission{
		{"EEC1", 20, sourceEngine, map[string]float64{
			"EngineTorqueMode":          0,
			"DriverDemandTorque":        clampPct(s.PedalPosition),
			"ActualEngineTorque":        clampPct(s.EngineLoad),
			"EngineSpeed":               s.EngineSpeed,
			"SourceAddressOfController": sourceEngine,
		}},
		{"EEC2", 50, sourceEngine, map[string]float64{
			"AccelPedalPosition": clampPct(s.PedalPosition),
			"EngineLoad":         clampPct(s.EngineLoad),
		}},
		{"ETC2", 100, sourceTransmission, map[string]float64{
			"SelectedGear": float64(s.Gear),
			"CurrentGear":  float64(s.Gear),
		}},
		{"CCVS", 100, sourceEngine, map[string]float64{
			"WheelBasedVehicleSpeed": s.VehicleSpeed,
		}},
		{"LFE", 100, sourceEngine, map[string]float64{
			"FuelRate": s.FuelRate,
		}},
		{"EFLP1", 500, sourceEngine, map[string]float64{
			"EngineOilPressure": s.OilPressure,
		}},
		{"IC1", 500, sourceEngine, map[string]float64{
			"BoostPressure":      s.BoostPressure,
			"IntakeManifoldTemp": s.IntakeTemp,
		}},
		{"ET1", 1000, sourceEngine, map[string]float64{
			"CoolantTemp":   s.CoolantTemp,
			"FuelTemp":      s.FuelTemp,
			"EngineOilTemp": s.OilTemp,
		}},
		{"AMB", 1000, sourceEngine, map[string]float64{
			"BarometricPressure": s.BaroPressure,
			"AmbientAirTemp":     s.AmbientTemp,
		}},
		{"VEP1", 1000, sourceEngine, map[string]float64{
			"BatteryVoltage": s.Battery,
		}},
		{"TRF1", 1000, sourceTransmission, map[string]float64{
			"TransOilTemp": s.TransOilTemp,
		}},
		{"DD", 1000, sourceEngine, map[string]float64{
			"FuelLevel": s.FuelLevel,
		}},
		{"HOURS", 10000, sourceEngine, map[string]float64{
			"EngineHours": s.EngineHours,
		}},
	}
}

// clampPct keeps noisy percentages inside the encodable 0..100 range.
func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
