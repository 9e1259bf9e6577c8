package contour

import (
	"context"

	"github.com/wgdzlh/gdalcontour/log"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

const logTag = "Contour:"

// 一次生成的统计
type Stats struct {
	Levels           int
	Features         int
	Segments         int
	OpenLines        int
	TopologyWarnings int
}

// 由栅格波段生成等值线写入sink。参数错误在读取栅格前返回，栅格读取或写出失败时中止
func Generate(ctx context.Context, r Raster, sink Sink, opts Options) (st Stats, err error) {
	if err = opts.Validate(); err != nil {
		return
	}
	s, err := NewSampler(r, opts.NoData)
	if err != nil {
		return
	}
	if len(opts.FixedLevels) > 0 && len(opts.ExceedLevels) > 0 {
		log.Warn(logTag+"exceed levels ignored with fixed levels", zap.Float64s("exceed", opts.ExceedLevels))
	}
	var (
		lo, hi  float64
		hasData = true
	)
	if opts.Interval > 0 {
		if lo, hi, hasData, err = s.Range(ctx); err != nil {
			return
		}
	}
	levels, err := ResolveLevels(&opts, lo, hi, hasData)
	if err != nil {
		return
	}
	st.Levels = len(levels)
	w, h := s.Size()
	log.Debug(logTag+"levels resolved", zap.Int("width", w), zap.Int("height", h),
		zap.Float64s("levels", levels), zap.Bool("polygonize", opts.Polygonize))
	if len(levels) == 0 {
		log.Info(logTag+"no level within data range", zap.Float64("min", lo), zap.Float64("max", hi), zap.Bool("hasData", hasData))
		return
	}

	t := newTracer(newGrid(s, opts.Polygonize), levels, opts.Polygonize)
	if err = t.run(ctx); err != nil {
		return
	}
	st.Segments = t.count

	toWorld := func(p orb.Point) orb.Point {
		x, y := s.ToWorld(p[0], p[1])
		return orb.Point{x, y}
	}
	em := NewEmitter(sink, opts.Schema(), opts.IDBase)
	defer func() {
		st.Features = em.Count()
	}()
	if opts.Polygonize {
		err = emitBands(ctx, t, em, levels, toWorld, &st)
	} else {
		err = emitLines(ctx, t, em, levels, toWorld, NewSmoother(opts.Smooth), &st)
	}
	if err != nil {
		log.Error(logTag+"generate contours failed", zap.Int("emitted", em.Count()), zap.Error(err))
	}
	return
}

func emitLines(ctx context.Context, t *tracer, em *Emitter, levels []float64, toWorld func(orb.Point) orb.Point, sm *Smoother, st *Stats) error {
	for li, level := range levels {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := t.assembleLines(li, toWorld)
		st.OpenLines += res.open
		if res.warnings > 0 {
			st.TopologyWarnings += res.warnings
			log.Warn(logTag+"open lines away from raster border", zap.Float64("level", level), zap.Int("count", res.warnings))
		}
		for _, ls := range res.lines {
			if err := em.EmitLine(level, sm.Smooth(ls)); err != nil {
				return err
			}
		}
	}
	return nil
}

func emitBands(ctx context.Context, t *tracer, em *Emitter, levels []float64, toWorld func(orb.Point) orb.Point, st *Stats) error {
	for bi, band := range Bands(levels) {
		if err := ctx.Err(); err != nil {
			return err
		}
		rings, warnings := t.assembleRings(bi)
		orphans := nestRings(rings)
		if n := warnings + len(orphans); n > 0 {
			st.TopologyWarnings += n
			log.Warn(logTag+"band rings not closed or nested", zap.Float64("min", band.Min), zap.Float64("max", band.Max),
				zap.Int("open", warnings), zap.Int("orphanHoles", len(orphans)))
		}
		mp := buildMultiPolygon(rings, orphans, toWorld)
		if len(mp) == 0 {
			continue
		}
		if err := em.EmitBand(band, mp); err != nil {
			return err
		}
	}
	return nil
}
