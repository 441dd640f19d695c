// Package telemetry encodes the per-tick enclosure message consumed by the
// downstream bridge.
package telemetry

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/sweeney/compost-controller/internal/logic"
)

// Fixed2 is a float rendered as a JSON number with exactly two decimals.
type Fixed2 float64

// MarshalJSON renders f as e.g. 200.00.
func (f Fixed2) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.Errorf("telemetry: cannot encode %v", v)
	}
	return strconv.AppendFloat(nil, v, 'f', 2, 64), nil
}

// Message is the telemetry record. Field and compound names are fixed by the
// existing consumer.
type Message struct {
	Temperature  Fixed2 `json:"temperatura"`
	Humidity     Fixed2 `json:"umidade"`
	PH           Fixed2 `json:"ph"`
	SoilMoisture int    `json:"umidSolo"`
	Gases        []Gas  `json:"gases"`
}

// Gas is one compound estimate.
type Gas struct {
	Compound string `json:"composto"`
	PPM      Fixed2 `json:"ppm"`
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// New builds the message for one tick.
func New(r logic.Readings, gases []logic.GasEstimate) Message {
	m := Message{
		Temperature:  Fixed2(Round2(r.Temperature)),
		Humidity:     Fixed2(Round2(r.Humidity)),
		PH:           Fixed2(Round2(r.PH)),
		SoilMoisture: r.SoilMoisture,
		Gases:        make([]Gas, len(gases)),
	}
	for i, g := range gases {
		m.Gases[i] = Gas{Compound: string(g.Compound), PPM: Fixed2(Round2(g.PPM))}
	}
	return m
}

// Encode renders m as a single JSON line without the trailing newline.
func Encode(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "encode telemetry")
	}
	return data, nil
}
