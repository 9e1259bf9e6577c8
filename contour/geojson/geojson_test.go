package geojson

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wgdzlh/gdalcontour/contour"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampRaster() *contour.MemRaster {
	r := contour.NewMemRaster(10, 10)
	r.Transform = [6]float64{100, 1, 0, 20, 0, -1}
	for row := 0; row < 10; row++ {
		for col := 0; col < 10; col++ {
			r.Set(row, col, float64(col+row))
		}
	}
	return r
}

func TestSinkBands(t *testing.T) {
	o := contour.DefaultOptions()
	o.FixedLevels = []float64{5, 12}
	o.Polygonize = true
	o.IDField, o.ElevMinField, o.ElevMaxField = 0, 1, 2
	schema := o.Schema()

	sink := NewSink(schema)
	st, err := contour.Generate(context.Background(), rampRaster(), sink, o)
	require.NoError(t, err)
	require.Equal(t, 3, st.Features)
	assert.Len(t, sink.Collection().Features, 3)
	assert.Equal(t, orb.Bound{Min: orb.Point{100, 10}, Max: orb.Point{110, 20}}, sink.Bound())

	var buf bytes.Buffer
	_, err = sink.WriteTo(&buf)
	require.NoError(t, err)

	feats, err := Read(&buf, schema)
	require.NoError(t, err)
	require.Len(t, feats, 3)
	var total float64
	for i, f := range feats {
		assert.Equal(t, int64(i), f.ID)
		assert.True(t, f.Polygon)
		total += planar.Area(f.Geometry.(orb.MultiPolygon))
	}
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.Equal(t, -contour.OpenBandValue, feats[0].ElevMin())
	assert.Equal(t, 5.0, feats[0].Band.Max)
	assert.Equal(t, 12.0, feats[2].Band.Min)
	assert.Equal(t, contour.OpenBandValue, feats[2].ElevMax())
}

func TestSinkLinesFile(t *testing.T) {
	o := contour.DefaultOptions()
	o.Interval = 4
	o.ElevField = 0
	schema := o.Schema()

	sink := NewSink(schema)
	_, err := contour.Generate(context.Background(), rampRaster(), sink, o)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "contour.json")
	require.NoError(t, sink.WriteFile(path))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	feats, err := Read(f, schema)
	require.NoError(t, err)
	// 高程0为栅格最小值，不产生等值线
	levels := map[float64]int{}
	for _, f := range feats {
		levels[f.Level]++
		_, ok := f.Geometry.(orb.LineString)
		assert.True(t, ok)
	}
	assert.Equal(t, map[float64]int{4: 1, 8: 1, 12: 1, 16: 1}, levels)

	_, err = Read(strings.NewReader(`{"type":"FeatureCollection","features":[{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{}}]}`), schema)
	assert.ErrorIs(t, err, ErrMissingProperty)
}

func TestNormalize(t *testing.T) {
	_, err := Normalize(nil)
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
	_, err = Normalize(orb.Point{1, 2})
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)

	sq := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	g, err := Normalize(sq)
	require.NoError(t, err)
	assert.Equal(t, orb.MultiPolygon{sq}, g)

	_, err = NewSink(contour.Schema{}).CreateFeature(&contour.Feature{Geometry: orb.Point{1, 2}})
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
}
