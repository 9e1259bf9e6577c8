package contour

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalLevels(t *testing.T) {
	cases := []struct {
		name           string
		interval, base float64
		lo, hi         float64
		want           []float64
	}{
		{"inclusive bounds", 10, 0, 0, 25, []float64{0, 10, 20}},
		{"offset base", 10, 5, 0, 25, []float64{5, 15, 25}},
		{"negative range", 2.5, 0, -3, 3, []float64{-2.5, 0, 2.5}},
		{"no level inside", 10, 0, 1, 9, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := IntervalLevels(c.interval, c.base, c.lo, c.hi)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}

	_, err := IntervalLevels(0, 0, 0, 1)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = IntervalLevels(1e-9, 0, 0, 1e6)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestResolveLevels(t *testing.T) {
	o := DefaultOptions()
	o.Interval = 10
	o.ExceedLevels = []float64{12, 20}
	levels, err := ResolveLevels(&o, 0, 25, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 12, 20}, levels)

	levels, err = ResolveLevels(&o, 0, 0, false)
	require.NoError(t, err)
	assert.Empty(t, levels)

	o = DefaultOptions()
	o.FixedLevels = []float64{25, 10, 20, 10}
	levels, err = ResolveLevels(&o, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 25}, levels)
}

func TestBands(t *testing.T) {
	assert.Nil(t, Bands(nil))

	bands := Bands([]float64{10, 20})
	require.Len(t, bands, 3)
	assert.True(t, bands[0].OpenBelow())
	assert.Equal(t, 10.0, bands[0].Max)
	assert.Equal(t, Band{Min: 10, Max: 20}, bands[1])
	assert.True(t, bands[2].OpenAbove())
	assert.Equal(t, 20.0, bands[2].Min)

	assert.True(t, bands[1].Contains(10))
	assert.False(t, bands[1].Contains(20))
	assert.True(t, bands[2].Contains(math.MaxFloat64))

	levels := []float64{10, 20}
	assert.Equal(t, 0, bandIndex(levels, 9.9))
	assert.Equal(t, 1, bandIndex(levels, 10))
	assert.Equal(t, 2, bandIndex(levels, 25))
}

func TestValidate(t *testing.T) {
	nan := math.NaN()
	cases := []struct {
		name   string
		modify func(o *Options)
	}{
		{"neither mode", func(o *Options) {}},
		{"both modes", func(o *Options) { o.Interval = 10; o.FixedLevels = []float64{1} }},
		{"negative interval", func(o *Options) { o.Interval = -5 }},
		{"nan level", func(o *Options) { o.FixedLevels = []float64{1, nan} }},
		{"nan exceed", func(o *Options) { o.Interval = 1; o.ExceedLevels = []float64{nan} }},
		{"negative cycles", func(o *Options) { o.Interval = 1; o.Smooth.Cycles = -1 }},
		{"slide out of range", func(o *Options) { o.Interval = 1; o.Smooth.Cycles = 1; o.Smooth.Slide = 2 }},
		{"zero look ahead", func(o *Options) { o.Interval = 1; o.Smooth.Cycles = 1; o.Smooth.LookAhead = 0 }},
		{"shared field slot", func(o *Options) { o.Interval = 1; o.IDField = 0; o.ElevField = 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o := DefaultOptions()
			c.modify(&o)
			assert.ErrorIs(t, o.Validate(), ErrConfiguration)
		})
	}

	o := DefaultOptions()
	o.FixedLevels = []float64{10}
	o.IDField, o.ElevField = 0, 1
	o.Smooth.Cycles = 2
	assert.NoError(t, o.Validate())

	// 线模式忽略区间字段槽位
	o.ElevMinField = 1
	assert.NoError(t, o.Validate())
}

func TestParseOptions(t *testing.T) {
	o, err := ParseOptions([]string{
		"FIXED_LEVELS=10, 20,25",
		"id_field=0",
		"ELEV_FIELD_MIN=1",
		"ELEV_FIELD_MAX=2",
		"POLYGONIZE=YES",
		"NODATA=-9999",
		"ID_BASE=100",
		"ELEV_SMOOTH_CYCLES=2",
		"ELEV_SMOOTH_LOOK_AHEAD=5",
		"ELEV_SMOOTH_SLIDE=0.5",
		"ELEV_SMOOTH_LOOP_SUPPORT=ON",
		"ELEV_SMOOTH_MIN_POINTS=4",
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20, 25}, o.FixedLevels)
	assert.Equal(t, 0, o.IDField)
	assert.Equal(t, -1, o.ElevField)
	assert.Equal(t, 1, o.ElevMinField)
	assert.Equal(t, 2, o.ElevMaxField)
	assert.True(t, o.Polygonize)
	require.NotNil(t, o.NoData)
	assert.Equal(t, -9999.0, *o.NoData)
	assert.Equal(t, int64(100), o.IDBase)
	assert.Equal(t, SmoothOptions{Cycles: 2, LookAhead: 5, Slide: 0.5, LoopSupport: true, MinPoints: 4}, o.Smooth)
	assert.NoError(t, o.Validate())

	for _, bad := range [][]string{
		{"LEVEL_EXP_BASE=2"},
		{"UNKNOWN=1"},
		{"POLYGONIZE=maybe"},
		{"LEVEL_INTERVAL=ten"},
		{"FIXED_LEVELS=1,x"},
		{"ID_FIELD"},
	} {
		_, err := ParseOptions(bad)
		assert.ErrorIs(t, err, ErrConfiguration, bad)
	}
}
