package sensor

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// IIOConfig locates the Linux Industrial I/O devices.
type IIOConfig struct {
	// DHTDevice is the dht11 driver directory, e.g. /sys/bus/iio/devices/iio:device0.
	DHTDevice string
	// ADCDevice is the ADC driver directory, e.g. /sys/bus/iio/devices/iio:device1.
	ADCDevice string
	// ADCBits is the ADC resolution; raw values are rescaled to 10 bits.
	ADCBits int
	// Inputs maps each channel to its in_voltageN_raw index.
	Inputs map[Channel]int
}

// DefaultIIOConfig wires an ADS1015-class ADC with channels 0..4.
func DefaultIIOConfig() IIOConfig {
	return IIOConfig{
		DHTDevice: "/sys/bus/iio/devices/iio:device0",
		ADCDevice: "/sys/bus/iio/devices/iio:device1",
		ADCBits:   12,
		Inputs: map[Channel]int{
			Gas1:         0,
			Gas2:         1,
			Gas3:         2,
			PH:           3,
			SoilMoisture: 4,
		},
	}
}

// IIOSource reads the dht11 and ADC kernel drivers through sysfs.
type IIOSource struct {
	cfg IIOConfig
}

// NewIIOSource checks that the device directories exist.
func NewIIOSource(cfg IIOConfig) (*IIOSource, error) {
	for _, dir := range []string{cfg.DHTDevice, cfg.ADCDevice} {
		if _, err := os.Stat(dir); err != nil {
			return nil, errors.Wrap(err, "iio device")
		}
	}
	if cfg.ADCBits < 10 {
		return nil, errors.Errorf("iio: ADC resolution %d bits is below 10", cfg.ADCBits)
	}
	return &IIOSource{cfg: cfg}, nil
}

// ReadTemperatureHumidity reads the dht11 driver. The driver reports
// milli-degrees and milli-percent and fails with EIO on a bad checksum.
func (s *IIOSource) ReadTemperatureHumidity() (float64, float64, error) {
	t, err := readInt(filepath.Join(s.cfg.DHTDevice, "in_temp_input"))
	if err != nil {
		return 0, 0, err
	}
	h, err := readInt(filepath.Join(s.cfg.DHTDevice, "in_humidityrelative_input"))
	if err != nil {
		return 0, 0, err
	}
	return float64(t) / 1000, float64(h) / 1000, nil
}

// ReadAnalog reads in_voltageN_raw and rescales it to 0..1023.
func (s *IIOSource) ReadAnalog(ch Channel) (int, error) {
	idx, ok := s.cfg.Inputs[ch]
	if !ok {
		return 0, errors.Wrap(ErrUnknownChannel, ch.String())
	}
	v, err := readInt(filepath.Join(s.cfg.ADCDevice, "in_voltage"+strconv.Itoa(idx)+"_raw"))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = 0
	}
	return int(v >> uint(s.cfg.ADCBits-10)), nil
}

func readInt(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "iio read")
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "iio parse %s", path)
	}
	return v, nil
}
