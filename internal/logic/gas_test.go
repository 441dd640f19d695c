package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdownOrderAndNames(t *testing.T) {
	got := Breakdown(0, 0, 0)
	want := []Compound{Methane, Hydrogen, Alcohol, Smoke, Ammonia, Benzene, Formaldehyde, CO, CO2, H2S, SO2}
	require.Len(t, got, len(want))
	for i, c := range want {
		assert.Equal(t, c, got[i].Compound, "index %d", i)
		assert.Zero(t, got[i].PPM)
	}
}

func TestBreakdownGas1(t *testing.T) {
	got := Breakdown(500, 0, 0)
	assert.InDelta(t, 200.0, got[0].PPM, 1e-9)
	assert.InDelta(t, 150.0, got[1].PPM, 1e-9)
	assert.InDelta(t, 100.0, got[2].PPM, 1e-9)
	assert.InDelta(t, 50.0, got[3].PPM, 1e-9)
	for _, e := range got[4:] {
		assert.Zero(t, e.PPM, string(e.Compound))
	}
}

func TestBreakdownChannels(t *testing.T) {
	got := Breakdown(0, 1000, 250)
	for _, c := range []struct {
		compound Compound
		want     float64
	}{
		{Ammonia, 300}, {Benzene, 200}, {Formaldehyde, 200}, {CO, 200}, {CO2, 100},
		{H2S, 150}, {SO2, 100}, {Methane, 0},
	} {
		ppm, ok := Lookup(got, c.compound)
		require.True(t, ok, string(c.compound))
		assert.InDelta(t, c.want, ppm, 1e-9, string(c.compound))
	}
}

func TestBreakdownLinearInGas1(t *testing.T) {
	base := Breakdown(123.4, 567.8, 910.1)
	doubled := Breakdown(2*123.4, 567.8, 910.1)
	for i := range base {
		if GasWeights[i].Channel == Gas1 {
			assert.Equal(t, 2*base[i].PPM, doubled[i].PPM, string(base[i].Compound))
		} else {
			assert.Equal(t, base[i].PPM, doubled[i].PPM, string(base[i].Compound))
		}
	}
}

func TestBreakdownBoundedByInput(t *testing.T) {
	for _, e := range Breakdown(1000, 1000, 1000) {
		assert.LessOrEqual(t, e.PPM, 1000.0)
		assert.GreaterOrEqual(t, e.PPM, 0.0)
	}
}

func TestLookupMissing(t *testing.T) {
	_, ok := Lookup(nil, Methane)
	assert.False(t, ok)
}
