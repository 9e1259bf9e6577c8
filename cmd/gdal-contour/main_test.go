package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wgdzlh/gdalcontour/contour"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCmd(t *testing.T, args ...string) (*cobra.Command, *flags) {
	t.Helper()
	var f flags
	cmd := newRootCmd(&f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, &f
}

func TestBuildJobFlags(t *testing.T) {
	cmd, f := newTestCmd(t, "-b", "2", "--fid", "ID", "-a", "height", "-i", "10", "--off", "5",
		"--snodata", "-9999", "--3d", "--nln", "lines", "--smooth-cycles", "3", "in.tif", "out.shp")
	job, err := buildJob(cmd, f, cmd.Flags().Args())
	require.NoError(t, err)

	assert.Equal(t, "in.tif", job.Src)
	assert.Equal(t, "out.shp", job.Dst)
	assert.Equal(t, 2, job.Band)
	assert.Equal(t, "lines", job.LayerName)
	o := job.Options
	assert.Equal(t, 10.0, o.Interval)
	assert.Equal(t, 5.0, o.Base)
	require.NotNil(t, o.NoData)
	assert.Equal(t, -9999.0, *o.NoData)
	assert.True(t, o.ThreeD)
	assert.Equal(t, 0, o.IDField)
	assert.Equal(t, 1, o.ElevField)
	assert.Equal(t, -1, o.ElevMinField)
	assert.Equal(t, "height", o.FieldNames.Elev)
	assert.Equal(t, 3, o.Smooth.Cycles)
	assert.Equal(t, contour.DefaultLookAhead, o.Smooth.LookAhead)
}

func TestBuildJobPolygons(t *testing.T) {
	cmd, f := newTestCmd(t, "-p", "--amin", "lo", "--amax", "hi", "--fl", "10,20,30", "--co", "ID_BASE=100", "dem.tif")
	job, err := buildJob(cmd, f, cmd.Flags().Args())
	require.NoError(t, err)

	o := job.Options
	assert.True(t, o.Polygonize)
	assert.Equal(t, []float64{10, 20, 30}, o.FixedLevels)
	assert.Equal(t, -1, o.IDField)
	assert.Equal(t, 0, o.ElevMinField)
	assert.Equal(t, 1, o.ElevMaxField)
	assert.Equal(t, "lo", o.FieldNames.ElevMin)
	assert.Equal(t, "hi", o.FieldNames.ElevMax)
	assert.EqualValues(t, 100, o.IDBase)
	assert.Equal(t, 1, job.Band)
	assert.Empty(t, job.Dst)
}

func TestBuildJobConfig(t *testing.T) {
	conf := filepath.Join(t.TempDir(), "job.toml")
	require.NoError(t, os.WriteFile(conf, []byte(`
src = "dem.tif"
dst = "out.geojson"
band = 3
layer_name = "等高线"

[options]
interval = 25.0
elev_field = 0

[options.smooth]
cycles = 2
look_ahead = 5
`), 0o644))

	cmd, f := newTestCmd(t, "-c", conf, "-b", "1")
	job, err := buildJob(cmd, f, cmd.Flags().Args())
	require.NoError(t, err)

	assert.Equal(t, "dem.tif", job.Src)
	assert.Equal(t, "out.geojson", job.Dst)
	assert.Equal(t, 1, job.Band)
	assert.Equal(t, "等高线", job.LayerName)
	assert.Equal(t, 25.0, job.Options.Interval)
	assert.Equal(t, 0, job.Options.ElevField)
	assert.Equal(t, 2, job.Options.Smooth.Cycles)
	assert.Equal(t, 5, job.Options.Smooth.LookAhead)
	assert.Equal(t, contour.DefaultSlide, job.Options.Smooth.Slide)
}

func TestBuildJobErrors(t *testing.T) {
	cases := [][]string{
		{"-i", "10"},
		{"in.tif"},
		{"-i", "10", "--fl", "1,2", "in.tif"},
		{"--fl", "1,x", "in.tif"},
		{"-i", "10", "--co", "LEVEL_EXP_BASE=2", "in.tif"},
		{"-i", "10", "-c", "/not/exist.toml", "in.tif"},
	}
	for _, args := range cases {
		cmd, f := newTestCmd(t, args...)
		_, err := buildJob(cmd, f, cmd.Flags().Args())
		assert.Error(t, err, "%v", args)
	}
}
