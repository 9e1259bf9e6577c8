package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	gc "github.com/wgdzlh/gdalcontour"
	"github.com/wgdzlh/gdalcontour/contour"
	"github.com/wgdzlh/gdalcontour/log"
	"github.com/wgdzlh/gdalcontour/utils"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(&flags{}).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type flags struct {
	config      string
	verbose     bool
	band        int
	elev        string
	elevMin     string
	elevMax     string
	id          string
	idBase      int64
	interval    float64
	offset      float64
	fixedLevels string
	exceed      string
	nodata      float64
	threeD      bool
	polygonize  bool
	layerName   string
	format      string
	srid        int
	tmpDir      string
	smoothCycle int
	lookAhead   int
	slide       float64
	loopSupport bool
	minPoints   int
	options     []string
}

func newRootCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gdal-contour [flags] SRC [DST]",
		Short:        "Generate contour lines or polygons from a raster band",
		Args:         cobra.RangeArgs(0, 2),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := log.New(f.verbose)
			if err != nil {
				return err
			}
			log.SetLogger(l)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer log.Sync()
			job, err := buildJob(cmd, f, args)
			if err != nil {
				return err
			}
			g := gc.NewGdalToolbox(f.tmpDir)
			defer g.Close()
			out, st, err := g.RunContourJob(cmd.Context(), job)
			if err != nil {
				return err
			}
			log.Info("contours written", zap.String("out", out), zap.Int("features", st.Features))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "TOML job file, flags override its values")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable verbose logging")
	fs.IntVarP(&f.band, "band", "b", 1, "band number, starting from 1")
	fs.StringVarP(&f.elev, "attr", "a", "", "elevation attribute name (line mode)")
	fs.StringVar(&f.elevMin, "amin", "", "minimum elevation attribute name (polygon mode)")
	fs.StringVar(&f.elevMax, "amax", "", "maximum elevation attribute name (polygon mode)")
	fs.StringVar(&f.id, "fid", "", "id attribute name")
	fs.Int64Var(&f.idBase, "id-base", 0, "first feature id")
	fs.Float64VarP(&f.interval, "interval", "i", 0, "elevation interval between contours")
	fs.Float64Var(&f.offset, "off", 0, "offset from zero relative to which to interpret intervals")
	fs.StringVar(&f.fixedLevels, "fl", "", "comma separated fixed levels")
	fs.StringVar(&f.exceed, "exceed", "", "comma separated levels added to interval levels")
	fs.Float64Var(&f.nodata, "snodata", 0, "input pixel value to treat as nodata")
	fs.BoolVar(&f.threeD, "3d", false, "write 3D lines with the level as Z")
	fs.BoolVarP(&f.polygonize, "polygonize", "p", false, "generate contour polygons instead of lines")
	fs.StringVar(&f.layerName, "nln", "", "output layer name")
	fs.StringVarP(&f.format, "format", "f", "", "output OGR driver name or GeoJSON, guessed from DST when empty")
	fs.IntVar(&f.srid, "srid", 0, "output EPSG code, 0 keeps the raster one")
	fs.StringVar(&f.tmpDir, "tmp-dir", "", "parent directory of the default output")
	fs.IntVar(&f.smoothCycle, "smooth-cycles", 0, "smoothing passes over each line, 0 disables")
	fs.IntVar(&f.lookAhead, "smooth-look-ahead", contour.DefaultLookAhead, "smoothing window size")
	fs.Float64Var(&f.slide, "smooth-slide", contour.DefaultSlide, "smoothing blend factor in [0,1]")
	fs.BoolVar(&f.loopSupport, "smooth-loops", false, "smooth closed lines as loops")
	fs.IntVar(&f.minPoints, "smooth-min-points", 0, "skip smoothing lines with fewer points")
	fs.StringArrayVar(&f.options, "co", nil, "contour option KEY=VALUE, may be repeated")
	return cmd
}

// 合并配置文件、KEY=VALUE选项和命令行参数
func buildJob(cmd *cobra.Command, f *flags, args []string) (job gc.ContourJob, err error) {
	job.Options = contour.DefaultOptions()
	if f.config != "" {
		if err = loadConfig(f.config, &job); err != nil {
			return
		}
	}
	if err = job.Options.Apply(f.options); err != nil {
		return
	}
	if len(args) > 0 {
		job.Src = args[0]
	}
	if len(args) > 1 {
		job.Dst = args[1]
	}
	if job.Src == "" {
		err = fmt.Errorf("%w: no source raster", contour.ErrConfiguration)
		return
	}
	fs := cmd.Flags()
	if fs.Changed("band") || job.Band == 0 {
		job.Band = f.band
	}
	if fs.Changed("format") {
		job.Format = f.format
	}
	if fs.Changed("nln") {
		job.LayerName = utils.PurifyForUtf8(f.layerName)
	}
	if fs.Changed("srid") {
		job.Srid = f.srid
	}

	o := &job.Options
	if fs.Changed("interval") {
		o.Interval = f.interval
	}
	if fs.Changed("off") {
		o.Base = f.offset
	}
	if fs.Changed("fl") {
		if o.FixedLevels, err = contour.ParseLevels(f.fixedLevels); err != nil {
			return
		}
	}
	if fs.Changed("exceed") {
		if o.ExceedLevels, err = contour.ParseLevels(f.exceed); err != nil {
			return
		}
	}
	if fs.Changed("snodata") {
		v := f.nodata
		o.NoData = &v
	}
	if fs.Changed("3d") {
		o.ThreeD = f.threeD
	}
	if fs.Changed("polygonize") {
		o.Polygonize = f.polygonize
	}
	if fs.Changed("id-base") {
		o.IDBase = f.idBase
	}

	// 字段槽位依次分配：ID、elev（或elevMin、elevMax）
	next := 0
	slot := func(name string, idx *int, dst *string) {
		if name == "" {
			if *idx >= next {
				next = *idx + 1
			}
			return
		}
		*dst = name
		*idx = next
		next++
	}
	slot(f.id, &o.IDField, &o.FieldNames.ID)
	if o.Polygonize {
		slot(f.elevMin, &o.ElevMinField, &o.FieldNames.ElevMin)
		slot(f.elevMax, &o.ElevMaxField, &o.FieldNames.ElevMax)
	} else {
		slot(f.elev, &o.ElevField, &o.FieldNames.Elev)
	}

	if fs.Changed("smooth-cycles") {
		o.Smooth.Cycles = f.smoothCycle
	}
	if fs.Changed("smooth-look-ahead") {
		o.Smooth.LookAhead = f.lookAhead
	}
	if fs.Changed("smooth-slide") {
		o.Smooth.Slide = f.slide
	}
	if fs.Changed("smooth-loops") {
		o.Smooth.LoopSupport = f.loopSupport
	}
	if fs.Changed("smooth-min-points") {
		o.Smooth.MinPoints = f.minPoints
	}
	err = o.Validate()
	return
}

func loadConfig(path string, job *gc.ContourJob) (err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	text, err := utils.DecodeText(data)
	if err != nil {
		return
	}
	if _, err = toml.Decode(text, job); err != nil {
		err = fmt.Errorf("%w: %s: %w", contour.ErrConfiguration, path, err)
	}
	return
}
