package logic

// Compound is a gas whose concentration is estimated from a sensor channel.
type Compound string

// Compound names as they appear on the wire.
const (
	Methane      Compound = "Metano"
	Hydrogen     Compound = "Hidrogênio"
	Alcohol      Compound = "Álcool"
	Smoke        Compound = "Fumaça"
	Ammonia      Compound = "Amônia"
	Benzene      Compound = "Benzeno"
	Formaldehyde Compound = "Formaldeído"
	CO           Compound = "CO"
	CO2          Compound = "CO2"
	H2S          Compound = "H2S"
	SO2          Compound = "SO2"
)

// GasChannel identifies one of the three gas sensors.
type GasChannel int

const (
	Gas1 GasChannel = iota // MQ-2: combustibles and smoke
	Gas2                   // MQ-135: air quality
	Gas3                   // MQ-136: sulphur compounds
)

// GasWeight is the fixed fraction of a channel attributed to a compound.
type GasWeight struct {
	Compound Compound
	Channel  GasChannel
	Weight   float64
}

// GasWeights is the estimation table in output order. Weights on a shared
// channel are independent estimates and are not normalized.
var GasWeights = []GasWeight{
	{Methane, Gas1, 0.4},
	{Hydrogen, Gas1, 0.3},
	{Alcohol, Gas1, 0.2},
	{Smoke, Gas1, 0.1},
	{Ammonia, Gas2, 0.3},
	{Benzene, Gas2, 0.2},
	{Formaldehyde, Gas2, 0.2},
	{CO, Gas2, 0.2},
	{CO2, Gas2, 0.1},
	{H2S, Gas3, 0.6},
	{SO2, Gas3, 0.4},
}

// GasEstimate is the derived concentration of one compound.
type GasEstimate struct {
	Compound Compound
	PPM      float64
}

// Breakdown estimates compound concentrations from three channel values in
// the [0,1000] range. The result follows the order of GasWeights.
func Breakdown(gas1, gas2, gas3 float64) []GasEstimate {
	channels := [...]float64{Gas1: gas1, Gas2: gas2, Gas3: gas3}
	out := make([]GasEstimate, len(GasWeights))
	for i, w := range GasWeights {
		out[i] = GasEstimate{Compound: w.Compound, PPM: channels[w.Channel] * w.Weight}
	}
	return out
}

// Lookup returns the estimate for c, if present.
func Lookup(estimates []GasEstimate, c Compound) (float64, bool) {
	for _, e := range estimates {
		if e.Compound == c {
			return e.PPM, true
		}
	}
	return 0, false
}
