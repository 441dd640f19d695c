// Package sensor acquires raw enclosure measurements.
package sensor

import "github.com/pkg/errors"

// Channel identifies an analog input.
type Channel int

const (
	Gas1 Channel = iota // MQ-2
	Gas2                // MQ-135
	Gas3                // MQ-136
	PH
	SoilMoisture
)

var channelNames = map[Channel]string{
	Gas1:         "gas1",
	Gas2:         "gas2",
	Gas3:         "gas3",
	PH:           "ph",
	SoilMoisture: "soil",
}

func (c Channel) String() string {
	if n, ok := channelNames[c]; ok {
		return n
	}
	return "unknown"
}

// AllChannels lists the analog inputs.
var AllChannels = []Channel{Gas1, Gas2, Gas3, PH, SoilMoisture}

// ErrUnknownChannel is returned for a channel a source does not wire.
var ErrUnknownChannel = errors.New("sensor: unknown channel")

// Source reads raw measurements.
type Source interface {
	// ReadTemperatureHumidity returns °C and %RH. A failed conversion
	// returns an error or NaN values.
	ReadTemperatureHumidity() (temp, humidity float64, err error)

	// ReadAnalog returns the raw 10-bit value (0..1023) of a channel.
	ReadAnalog(ch Channel) (int, error)
}

// Raw is one full acquisition.
type Raw struct {
	Temperature float64
	Humidity    float64
	Analog      map[Channel]int
}

// ReadAll reads temperature, humidity and every analog channel.
// It stops at the first error.
func ReadAll(s Source) (Raw, error) {
	temp, hum, err := s.ReadTemperatureHumidity()
	if err != nil {
		return Raw{}, errors.Wrap(err, "read temperature/humidity")
	}
	r := Raw{Temperature: temp, Humidity: hum, Analog: make(map[Channel]int, len(AllChannels))}
	for _, ch := range AllChannels {
		v, err := s.ReadAnalog(ch)
		if err != nil {
			return Raw{}, errors.Wrapf(err, "read %s", ch)
		}
		r.Analog[ch] = v
	}
	return r, nil
}
