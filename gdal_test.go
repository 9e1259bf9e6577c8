package gdalcontour

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/wgdzlh/gdalcontour/contour"
	"github.com/wgdzlh/gdalcontour/contour/geojson"

	gdal "github.com/airbusgeo/godal"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rampGt = [6]float64{100, 1, 0, 20, 0, -1}

// v = col + row
func rampRows() [][]float64 {
	rows := make([][]float64, 10)
	for r := range rows {
		rows[r] = make([]float64, 10)
		for c := range rows[r] {
			rows[r][c] = float64(c + r)
		}
	}
	return rows
}

func writeRampTif(t *testing.T, dir string) string {
	t.Helper()
	registerRasterDrivers()
	tif := filepath.Join(dir, "ramp.tif")
	ds, err := gdal.Create(gdal.GTiff, tif, 1, gdal.Float64, 10, 10)
	require.NoError(t, err)
	buf := make([]float64, 0, 100)
	for _, row := range rampRows() {
		buf = append(buf, row...)
	}
	require.NoError(t, ds.Bands()[0].Write(0, 0, buf, 10, 10))
	require.NoError(t, ds.SetGeoTransform(rampGt))
	sr, err := gdal.NewSpatialRefFromEPSG(UNIVERSAL_SRID)
	require.NoError(t, err)
	defer sr.Close()
	require.NoError(t, ds.SetSpatialRef(sr))
	require.NoError(t, ds.Close())
	return tif
}

func lineOptions(interval float64) contour.Options {
	o := contour.DefaultOptions()
	o.Interval = interval
	o.IDField = 0
	o.ElevField = 1
	return o
}

func TestRasterBand(t *testing.T) {
	nd := -9999.0
	rows := rampRows()
	rows[3][4] = nd
	rb, err := NewMemRasterBand(rows, rampGt, &nd)
	require.NoError(t, err)
	defer rb.Close()

	w, h := rb.Size()
	assert.Equal(t, 10, w)
	assert.Equal(t, 10, h)
	assert.Equal(t, rampGt, rb.GeoTransform())
	v, ok := rb.NoData()
	assert.True(t, ok)
	assert.Equal(t, nd, v)

	buf := make([]float64, 12)
	require.NoError(t, rb.ReadRow(3, buf))
	assert.Equal(t, []float64{3, 4, 5, 6, nd, 8, 9, 10, 11, 12}, buf[:10])
	assert.ErrorIs(t, rb.ReadRow(10, buf), ErrTifReadFailed)

	_, err = NewRasterBand(rb.Dataset, 2)
	assert.ErrorIs(t, err, ErrWrongBand)

	env := RasterEnvelope(rb.GeoTransform(), w, h)
	assert.Equal(t, orb.Bound{Min: orb.Point{100, 10}, Max: orb.Point{110, 20}}, env)
	assert.Equal(t, "POLYGON((100.000000 10.000000, 100.000000 20.000000, 110.000000 20.000000, 110.000000 10.000000, 100.000000 10.000000))", EnvelopeToWkt(env))
	assert.Equal(t, "POLYGON EMPTY", EnvelopeToWkt(orb.Bound{Min: orb.Point{1, 0}, Max: orb.Point{0, 0}}))
}

func TestContourToMemory(t *testing.T) {
	g := NewGdalToolbox()
	defer g.Close()
	rb, err := NewMemRasterBand(rampRows(), rampGt, nil)
	require.NoError(t, err)
	defer rb.Close()

	s, st, err := g.ContourToMemory(context.Background(), rb, lineOptions(4))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 4, st.Levels)
	assert.Equal(t, 4, st.Features)
	assert.Equal(t, 4, s.Count())

	all, err := s.Features()
	require.NoError(t, err)
	require.Len(t, all, 4)
	for _, f := range all {
		assert.GreaterOrEqual(t, f.Bound.Min[0], 100.0)
		assert.LessOrEqual(t, f.Bound.Max[0], 110.0)
		assert.GreaterOrEqual(t, f.Points, 2)
		assert.Contains(t, f.Wkt, "LINESTRING")
	}

	got, err := s.FilterLevel(8)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 8.0, got[0].Level)

	got, err = s.FilterLevel(9)
	require.NoError(t, err)
	assert.Empty(t, got)

	// 过滤条件在查询后清除
	all, err = s.Features()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestContourToMemoryBands(t *testing.T) {
	g := NewGdalToolbox()
	defer g.Close()
	rb, err := NewMemRasterBand(rampRows(), rampGt, nil)
	require.NoError(t, err)
	defer rb.Close()

	o := contour.DefaultOptions()
	o.FixedLevels = []float64{5, 12}
	o.Polygonize = true
	o.ElevMinField = 0
	o.ElevMaxField = 1
	s, st, err := g.ContourToMemory(context.Background(), rb, o)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 3, st.Features)

	got, err := s.FilterLevel(7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].Min)
	assert.Equal(t, 12.0, got[0].Max)
	assert.Contains(t, got[0].Wkt, "MULTIPOLYGON")

	got, err = s.FilterLevel(15)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 12.0, got[0].Min)
	assert.Equal(t, contour.OpenBandValue, got[0].Max)

	_, _, err = g.ContourToMemory(context.Background(), rb, contour.DefaultOptions())
	assert.ErrorIs(t, err, contour.ErrConfiguration)
}

func TestRunContourJob(t *testing.T) {
	dir := t.TempDir()
	tif := writeRampTif(t, dir)
	g := NewGdalToolbox(dir)
	defer g.Close()

	srid, err := g.GetSridOfRaster(tif)
	require.NoError(t, err)
	assert.Equal(t, UNIVERSAL_SRID, srid)

	shp := filepath.Join(dir, "lines.shp")
	st, err := g.ContourToShapefile(context.Background(), tif, 1, shp, 0, lineOptions(4))
	require.NoError(t, err)
	assert.Equal(t, 4, st.Features)
	_, err = os.Stat(shp)
	require.NoError(t, err)

	out := filepath.Join(dir, "lines.geojson")
	_, err = g.ContourToGeoJSON(context.Background(), tif, 1, out, lineOptions(4))
	require.NoError(t, err)
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	o := lineOptions(4)
	feats, err := geojson.Read(f, o.Schema())
	require.NoError(t, err)
	require.Len(t, feats, 4)
	for i, ft := range feats {
		assert.EqualValues(t, i, ft.ID)
		assert.Equal(t, float64(4*(i+1)), ft.Level)
	}

	// 未指定输出时写入临时目录
	def, _, err := g.RunContourJob(context.Background(), ContourJob{Src: tif, Options: lineOptions(4)})
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_OUTPUT_FILE, filepath.Base(def))
	assert.Equal(t, dir, filepath.Dir(filepath.Dir(def)))

	_, _, err = g.RunContourJob(context.Background(), ContourJob{Src: tif, Band: 2, Options: lineOptions(4)})
	assert.ErrorIs(t, err, ErrWrongBand)
	_, _, err = g.RunContourJob(context.Background(), ContourJob{Src: filepath.Join(dir, "none.tif"), Options: lineOptions(4)})
	assert.ErrorIs(t, err, ErrInvalidTif)
	_, _, err = g.RunContourJob(context.Background(), ContourJob{Src: tif, Dst: filepath.Join(dir, "x.shp"), Format: "NoSuchDriver", Options: lineOptions(4)})
	assert.ErrorIs(t, err, ErrGdalDriverCreate)
}

func TestOutputFormat(t *testing.T) {
	assert.Equal(t, SHP_DRIVER_NAME, outputFormat("", "a.shp"))
	assert.Equal(t, SHP_DRIVER_NAME, outputFormat("", ""))
	assert.Equal(t, GEOJSON_FORMAT, outputFormat("", "a.GeoJSON"))
	assert.Equal(t, GEOJSON_FORMAT, outputFormat("", "a.json"))
	assert.Equal(t, GEOJSON_FORMAT, outputFormat("geojson", "a.shp"))
	assert.Equal(t, "GPKG", outputFormat("GPKG", "a.gpkg"))
}
