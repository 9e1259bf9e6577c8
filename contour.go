package gdalcontour

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wgdzlh/gdalcontour/contour"
	"github.com/wgdzlh/gdalcontour/contour/geojson"
	"github.com/wgdzlh/gdalcontour/log"
	"github.com/wgdzlh/gdalcontour/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 执行等值线任务，返回输出文件路径和统计信息
func (g *GdalToolbox) RunContourJob(ctx context.Context, job ContourJob) (out string, st contour.Stats, err error) {
	if err = job.Options.Validate(); err != nil {
		return
	}
	if job.Band <= 0 {
		job.Band = 1
	}
	rb, err := g.OpenRasterBand(job.Src, job.Band)
	if err != nil {
		return
	}
	defer rb.Close()

	format := outputFormat(job.Format, job.Dst)
	if out = job.Dst; out == "" {
		if out, err = g.defaultOutput(format); err != nil {
			return
		}
	}
	layerName := job.LayerName
	if layerName == "" {
		layerName = DEFAULT_LAYER_NAME
	}
	w, h := rb.Size()
	log.Info(g.logTag+"start contour job", zap.String("src", job.Src), zap.Int("band", job.Band), zap.String("out", out),
		zap.String("format", format), zap.String("extent", EnvelopeToWkt(RasterEnvelope(rb.GeoTransform(), w, h))))

	if format == GEOJSON_FORMAT {
		st, err = g.contourToGeoJSON(ctx, rb, out, job.Srid, job.Options)
	} else {
		st, err = g.contourToLayer(ctx, rb, out, format, layerName, job.Srid, job.Options)
	}
	if err != nil {
		log.Error(g.logTag+"contour job failed", zap.String("src", job.Src), zap.Error(err))
		return
	}
	log.Info(g.logTag+"end contour job", zap.String("out", out), zap.Int("levels", st.Levels), zap.Int("features", st.Features),
		zap.Int("openLines", st.OpenLines), zap.Int("topologyWarnings", st.TopologyWarnings))
	return
}

// 由栅格生成等值线shp，srid为0时沿用栅格坐标系
func (g *GdalToolbox) ContourToShapefile(ctx context.Context, tif string, band int, shp string, srid int, opts contour.Options) (st contour.Stats, err error) {
	_, st, err = g.RunContourJob(ctx, ContourJob{
		Src:     tif,
		Band:    band,
		Dst:     shp,
		Format:  SHP_DRIVER_NAME,
		Srid:    srid,
		Options: opts,
	})
	return
}

// 由栅格生成等值线GeoJSON文件（坐标与栅格一致）
func (g *GdalToolbox) ContourToGeoJSON(ctx context.Context, tif string, band int, out string, opts contour.Options) (st contour.Stats, err error) {
	_, st, err = g.RunContourJob(ctx, ContourJob{
		Src:     tif,
		Band:    band,
		Dst:     out,
		Format:  GEOJSON_FORMAT,
		Options: opts,
	})
	return
}

// 生成等值线到内存图层，使用完需Close
func (g *GdalToolbox) ContourToMemory(ctx context.Context, rb *RasterBand, opts contour.Options) (s *LayerSink, st contour.Stats, err error) {
	if err = opts.Validate(); err != nil {
		return
	}
	ref, src, err := g.layerRefs(rb, 0)
	if err != nil {
		return
	}
	name := fmt.Sprintf(TMP_LAYER_NAME, uuid.NewString())
	if s, err = g.CreateLayerSink(name, MEMORY_DRIVER_NAME, name, ref, opts.Schema()); err != nil {
		return
	}
	s.TransformFrom(src)
	if st, err = contour.Generate(ctx, rb, s, opts); err != nil {
		s.Close()
		s = nil
	}
	return
}

func (g *GdalToolbox) contourToLayer(ctx context.Context, rb *RasterBand, out, driver, layerName string, srid int, opts contour.Options) (st contour.Stats, err error) {
	ref, src, err := g.layerRefs(rb, srid)
	if err != nil {
		return
	}
	s, err := g.CreateLayerSink(out, driver, layerName, ref, opts.Schema())
	if err != nil {
		return
	}
	defer s.Close() // 生成文件 + 释放资源
	s.TransformFrom(src)
	return contour.Generate(ctx, rb, s, opts)
}

func (g *GdalToolbox) contourToGeoJSON(ctx context.Context, rb *RasterBand, out string, srid int, opts contour.Options) (st contour.Stats, err error) {
	if srid > 0 {
		if rSrid, e := g.getSrid(rb.Projection()); e != nil || rSrid != srid {
			log.Warn(g.logTag+"GeoJSON output keeps raster coordinates", zap.Int("srid", srid))
		}
	}
	s := geojson.NewSink(opts.Schema())
	if st, err = contour.Generate(ctx, rb, s, opts); err != nil {
		return
	}
	if err = s.WriteFile(out); err != nil {
		err = fmt.Errorf("%w: %s: %w", contour.ErrSinkWrite, out, err)
		return
	}
	b := s.Bound()
	log.Info(g.logTag+"GeoJSON written", zap.String("out", out), zap.String("bound", PointsToWkt(b.Min[0], b.Max[0], b.Min[1], b.Max[1])))
	return
}

func (g *GdalToolbox) defaultOutput(format string) (out string, err error) {
	parent := g.tmpDir
	if parent == "" {
		parent = "."
	}
	dir, err := utils.GetUniqSubDir(parent)
	if err != nil {
		return
	}
	name := DEFAULT_OUTPUT_FILE
	if format == GEOJSON_FORMAT {
		name = utils.GetFilenameWithoutExt(name) + FILE_EXT_GEOJSON
	}
	out = filepath.Join(dir, name)
	return
}

// 未指定格式时按扩展名判断，默认输出shp
func outputFormat(format, dst string) string {
	if format != "" {
		if strings.EqualFold(format, GEOJSON_FORMAT) {
			return GEOJSON_FORMAT
		}
		return format
	}
	switch strings.ToLower(filepath.Ext(dst)) {
	case FILE_EXT_JSON, FILE_EXT_GEOJSON:
		return GEOJSON_FORMAT
	}
	return SHP_DRIVER_NAME
}
