package sensor

import "errors"

// Sample is one scripted acquisition.
type Sample struct {
	Temperature float64
	Humidity    float64
	Analog      map[Channel]int
	// Err, if set, is returned by ReadTemperatureHumidity for this sample.
	Err error
}

// FakeSource is a test double that returns scripted samples.
// Each call to ReadTemperatureHumidity advances to the next sample; analog
// reads return values from the current sample. Once exhausted, the last
// sample repeats.
type FakeSource struct {
	Samples []Sample
	index   int
	current *Sample

	// AnalogError, if set, is returned by ReadAnalog.
	AnalogError error
}

// NewFakeSource creates a FakeSource with the given samples.
func NewFakeSource(samples ...Sample) *FakeSource {
	return &FakeSource{Samples: samples}
}

// ReadTemperatureHumidity returns the next scripted sample.
func (f *FakeSource) ReadTemperatureHumidity() (float64, float64, error) {
	if len(f.Samples) == 0 {
		return 0, 0, errors.New("no samples configured")
	}
	s := &f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	f.current = s
	if s.Err != nil {
		return 0, 0, s.Err
	}
	return s.Temperature, s.Humidity, nil
}

// ReadAnalog returns the channel value of the current sample.
// Unset channels read 0.
func (f *FakeSource) ReadAnalog(ch Channel) (int, error) {
	if f.AnalogError != nil {
		return 0, f.AnalogError
	}
	if f.current == nil {
		return 0, errors.New("analog read before temperature read")
	}
	return f.current.Analog[ch], nil
}
