package sensor

import (
	"math"
	"math/rand"
)

// SimSource produces slowly drifting synthetic readings for bench runs
// without hardware. Each read advances the simulation by one step.
type SimSource struct {
	rng  *rand.Rand
	step float64
}

// NewSimSource creates a simulator with a fixed seed.
func NewSimSource(seed int64) *SimSource {
	return &SimSource{rng: rand.New(rand.NewSource(seed))}
}

// ReadTemperatureHumidity swings temperature across the lamp deadband and
// humidity across the pump setpoint. Roughly one read in fifty fails the
// way a DHT11 checksum error does.
func (s *SimSource) ReadTemperatureHumidity() (float64, float64, error) {
	s.step += 0.02
	if s.rng.Intn(50) == 0 {
		return math.NaN(), math.NaN(), nil
	}
	temp := 40 + 5*math.Sin(s.step) + s.rng.NormFloat64()*0.3
	hum := 50 + 10*math.Cos(s.step/2) + s.rng.NormFloat64()*0.8
	return temp, hum, nil
}

// ReadAnalog returns noisy values around plausible compost levels.
func (s *SimSource) ReadAnalog(ch Channel) (int, error) {
	var base, swing float64
	switch ch {
	case Gas1:
		base, swing = 300, 80
	case Gas2:
		base, swing = 450, 120
	case Gas3:
		base, swing = 150, 40
	case PH:
		base, swing = 500, 20 // ≈ pH 6.8
	case SoilMoisture:
		base, swing = 700, 60
	default:
		return 0, ErrUnknownChannel
	}
	v := base + swing*math.Sin(s.step+float64(ch)) + s.rng.NormFloat64()*5
	return int(math.Max(0, math.Min(1023, v))), nil
}
