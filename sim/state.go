package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// Scenario names a driving profile for the traffic generator.
type Scenario string

const (
	ScenarioIdle         Scenario = "idle"
	ScenarioHighway      Scenario = "highway"
	ScenarioAcceleration Scenario = "acceleration"
	ScenarioColdStart    Scenario = "cold_start"
)

// ParseScenario maps a user-supplied name to a Scenario.
func ParseScenario(name string) (Scenario, error) {
	switch Scenario(name) {
	case ScenarioIdle, ScenarioHighway, ScenarioAcceleration, ScenarioColdStart:
		return Scenario(name), nil
	}
	return "", fmt.Errorf("unknown scenario %q", name)
}

// VehicleState holds the physical quantities the generated frames are
// derived from. Units match the schema signals (rpm, km/h, degC, kPa).
type VehicleState struct {
	EngineSpeed   float64
	VehicleSpeed  float64
	CoolantTemp   float64
	FuelTemp      float64
	OilTemp       float64
	OilPressure   float64
	IntakeTemp    float64
	BoostPressure float64
	BaroPressure  float64
	AmbientTemp   float64
	TransOilTemp  float64
	Battery       float64
	FuelLevel     float64
	FuelRate      float64
	PedalPosition float64
	EngineLoad    float64
	Gear          int
	EngineHours   float64
}

// newVehicleState returns the key-on, engine-off baseline.
func newVehicleState() VehicleState {
	return VehicleState{
		CoolantTemp:  20,
		FuelTemp:     20,
		OilTemp:      20,
		IntakeTemp:   20,
		AmbientTemp:  20,
		TransOilTemp: 20,
		BaroPressure: 101,
		Battery:      24.5,
		FuelLevel:    75,
		EngineHours:  1234.5,
	}
}

// update advances the state by one step. elapsed is the time since the
// scenario started, in seconds. Noise comes from rnd so runs with the
// same seed reproduce byte-identical captures.
func (s *VehicleState) update(scenario Scenario, elapsed float64, rnd *rand.Rand) {
	jitter := func(span float64) float64 { return (rnd.Float64()*2 - 1) * span }

	switch scenario {
	case ScenarioIdle:
		s.EngineSpeed = approach(s.EngineSpeed, 650+jitter(15), 0.3)
		s.VehicleSpeed = 0
		s.Gear = 0
		s.PedalPosition = 0
		s.EngineLoad = 10 + jitter(3)
		s.CoolantTemp = approach(s.CoolantTemp, 85, 0.01)
		s.FuelRate = 2.5 + jitter(0.3)
		s.BoostPressure = 0

	case ScenarioHighway:
		s.EngineSpeed = approach(s.EngineSpeed, 1500+jitter(30), 0.2)
		s.VehicleSpeed = approach(s.VehicleSpeed, 105+jitter(2), 0.1)
		s.Gear = 10
		s.PedalPosition = 35 + jitter(5)
		s.EngineLoad = 55 + jitter(8)
		s.CoolantTemp = approach(s.CoolantTemp, 88, 0.01)
		s.FuelRate = 28 + jitter(3)
		s.BoostPressure = 120 + jitter(15)

	case ScenarioAcceleration:
		// Full-pedal pull over 30 s from standstill to cruise.
		progress := math.Min(elapsed/30, 1)
		s.EngineSpeed = 700 + progress*1400 + jitter(50)
		s.VehicleSpeed = progress * 90
		s.Gear = 1 + int(progress*9)
		s.PedalPosition = 90 + jitter(5)
		s.EngineLoad = 85 + jitter(10)
		s.CoolantTemp = approach(s.CoolantTemp, 90, 0.02)
		s.FuelRate = 10 + progress*35
		s.BoostPressure = progress*180 + jitter(10)

	case ScenarioColdStart:
		if elapsed < 2 {
			// Cranking.
			s.EngineSpeed = 200 + jitter(30)
			s.FuelRate = 1
		} else {
			// Fast idle while warming up.
			s.EngineSpeed = approach(s.EngineSpeed, 900+jitter(20), 0.3)
			s.CoolantTemp = approach(s.CoolantTemp, 85, 0.005)
			s.OilTemp = approach(s.OilTemp, 80, 0.004)
			s.FuelRate = 4 + jitter(0.5)
		}
		s.VehicleSpeed = 0
		s.Gear = 0
		s.EngineLoad = 20 + jitter(5)
		s.Battery = approach(s.Battery, 27.8, 0.05)
	}

	// Derived quantities common to all scenarios.
	s.OilPressure = math.Min(200+s.EngineSpeed*0.12+jitter(5), 800)
	s.OilTemp = approach(s.OilTemp, s.CoolantTemp+5, 0.01)
	s.TransOilTemp = approach(s.TransOilTemp, s.CoolantTemp-10, 0.005)
	s.IntakeTemp = s.AmbientTemp + s.BoostPressure*0.15
	s.FuelTemp = approach(s.FuelTemp, s.AmbientTemp+10, 0.002)
}

// approach moves cur toward target by the given fraction of the gap.
func approach(cur, target, rate float64) float64 {
	return cur + (target-cur)*rate
}
