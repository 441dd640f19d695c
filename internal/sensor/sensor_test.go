package sensor

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newIIO(t *testing.T) (*IIOSource, string, string) {
	t.Helper()
	dht, adc := t.TempDir(), t.TempDir()
	cfg := DefaultIIOConfig()
	cfg.DHTDevice = dht
	cfg.ADCDevice = adc
	s, err := NewIIOSource(cfg)
	require.NoError(t, err)
	return s, dht, adc
}

func TestIIOTemperatureHumidity(t *testing.T) {
	s, dht, _ := newIIO(t)
	writeFile(t, dht, "in_temp_input", "38500\n")
	writeFile(t, dht, "in_humidityrelative_input", "61000\n")

	temp, hum, err := s.ReadTemperatureHumidity()
	require.NoError(t, err)
	assert.InDelta(t, 38.5, temp, 1e-9)
	assert.InDelta(t, 61.0, hum, 1e-9)
}

func TestIIOTemperatureMissing(t *testing.T) {
	s, _, _ := newIIO(t)
	_, _, err := s.ReadTemperatureHumidity()
	assert.Error(t, err)
}

func TestIIOTemperatureGarbage(t *testing.T) {
	s, dht, _ := newIIO(t)
	writeFile(t, dht, "in_temp_input", "oops")
	_, _, err := s.ReadTemperatureHumidity()
	assert.Error(t, err)
}

func TestIIOAnalogRescalesTo10Bits(t *testing.T) {
	s, _, adc := newIIO(t)
	writeFile(t, adc, "in_voltage0_raw", "4095\n")
	writeFile(t, adc, "in_voltage4_raw", "2048\n")

	v, err := s.ReadAnalog(Gas1)
	require.NoError(t, err)
	assert.Equal(t, 1023, v)

	v, err = s.ReadAnalog(SoilMoisture)
	require.NoError(t, err)
	assert.Equal(t, 512, v)
}

func TestIIOAnalogUnknownChannel(t *testing.T) {
	s, _, _ := newIIO(t)
	_, err := s.ReadAnalog(Channel(42))
	assert.True(t, errors.Is(err, ErrUnknownChannel))
}

func TestNewIIOSourceMissingDevice(t *testing.T) {
	cfg := DefaultIIOConfig()
	cfg.DHTDevice = filepath.Join(t.TempDir(), "nope")
	cfg.ADCDevice = t.TempDir()
	_, err := NewIIOSource(cfg)
	assert.Error(t, err)
}

func TestNewIIOSourceLowResolution(t *testing.T) {
	cfg := DefaultIIOConfig()
	cfg.DHTDevice = t.TempDir()
	cfg.ADCDevice = t.TempDir()
	cfg.ADCBits = 8
	_, err := NewIIOSource(cfg)
	assert.Error(t, err)
}

func TestReadAll(t *testing.T) {
	f := NewFakeSource(Sample{
		Temperature: 30, Humidity: 40,
		Analog: map[Channel]int{Gas1: 1, Gas2: 2, Gas3: 3, PH: 4, SoilMoisture: 5},
	})
	raw, err := ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, 30.0, raw.Temperature)
	assert.Equal(t, 40.0, raw.Humidity)
	assert.Equal(t, 5, raw.Analog[SoilMoisture])
	assert.Len(t, raw.Analog, len(AllChannels))
}

func TestReadAllStopsOnError(t *testing.T) {
	f := NewFakeSource(Sample{Err: errors.New("checksum")})
	_, err := ReadAll(f)
	assert.Error(t, err)

	f = NewFakeSource(Sample{Temperature: 1})
	f.AnalogError = errors.New("adc busy")
	_, err = ReadAll(f)
	assert.ErrorContains(t, err, "adc busy")
}

func TestFakeSourceRepeatsLast(t *testing.T) {
	f := NewFakeSource(Sample{Temperature: 1}, Sample{Temperature: 2})
	for _, want := range []float64{1, 2, 2} {
		got, _, err := f.ReadTemperatureHumidity()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestSimSourceRanges(t *testing.T) {
	s := NewSimSource(7)
	sawNaN := false
	for i := 0; i < 500; i++ {
		temp, hum, err := s.ReadTemperatureHumidity()
		require.NoError(t, err)
		if math.IsNaN(temp) {
			sawNaN = true
			continue
		}
		assert.InDelta(t, 40, temp, 8)
		assert.InDelta(t, 50, hum, 15)
		for _, ch := range AllChannels {
			v, err := s.ReadAnalog(ch)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 1023)
		}
	}
	assert.True(t, sawNaN, "simulator should inject invalid readings")
}

func TestChannelString(t *testing.T) {
	assert.Equal(t, "gas1", Gas1.String())
	assert.Equal(t, "soil", SoilMoisture.String())
	assert.Equal(t, "unknown", Channel(99).String())
}
