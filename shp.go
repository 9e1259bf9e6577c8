package gdalcontour

import (
	"fmt"
	"strconv"

	"github.com/wgdzlh/gdalcontour/contour"
	"github.com/wgdzlh/gdalcontour/log"

	"github.com/lukeroth/gdal"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// 将等值线要素写入OGR图层（shp、内存图层或其它矢量驱动）
type LayerSink struct {
	ds       gdal.DataSource
	layer    gdal.Layer
	ref      gdal.SpatialReference
	srcRef   *gdal.SpatialReference // 不为nil时，写入前由该坐标系转换到图层坐标系
	schema   contour.Schema
	fieldIdx []int // 与schema.Fields()一一对应的图层字段序号
	count    int
	logTag   string
}

// 创建输出数据源和图层，字段按槽位顺序创建
func (g *GdalToolbox) CreateLayerSink(dst, driverName, layerName string, ref gdal.SpatialReference, schema contour.Schema) (s *LayerSink, err error) {
	log.Info(g.logTag+"create contour layer", zap.String("dst", dst), zap.String("driver", driverName), zap.String("layer", layerName))
	driver := gdal.OGRDriverByName(driverName)
	if driver == (gdal.OGRDriver{}) {
		err = fmt.Errorf("%w: unknown driver %s", ErrGdalDriverCreate, driverName)
		return
	}
	ds, ok := driver.Create(dst, nil)
	if !ok {
		err = fmt.Errorf("%w: %s", ErrGdalDriverCreate, driverName)
		return
	}
	geoType := gdal.GT_LineString
	if schema.Polygonize {
		geoType = gdal.GT_MultiPolygon
	} else if schema.ThreeD {
		geoType = gdal.GT_LineString25D
	}
	var opts []string
	if driverName == SHP_DRIVER_NAME {
		opts = []string{ENCODING_OPTION}
	}
	s = &LayerSink{
		ds:     ds,
		layer:  ds.CreateLayer(layerName, ref, geoType, opts),
		ref:    ref,
		schema: schema,
		logTag: g.logTag,
	}
	if err = s.initFields(); err != nil {
		ds.Destroy()
		s = nil
	}
	return
}

// 设置要素的源坐标系
func (s *LayerSink) TransformFrom(src *gdal.SpatialReference) {
	s.srcRef = src
}

func (s *LayerSink) initFields() (err error) {
	defs := s.schema.Fields()
	for _, d := range defs {
		var fd gdal.FieldDefinition
		if d.Kind == contour.FieldInteger {
			fd = gdal.CreateFieldDefinition(d.Name, gdal.FT_Integer)
		} else {
			fd = gdal.CreateFieldDefinition(d.Name, gdal.FT_Real)
			fd.SetWidth(ElevFieldWidth)
			fd.SetPrecision(ElevFieldPrecision)
		}
		err = s.layer.CreateField(fd, false)
		fd.Destroy()
		if err != nil {
			log.Error(s.logTag+"create field failed", zap.String("field", d.Name), zap.Error(err))
			return fmt.Errorf("%w: field %s: %w", ErrGdalLayerCreate, d.Name, err)
		}
	}
	def := s.layer.Definition()
	s.fieldIdx = make([]int, len(defs))
	for i, d := range defs {
		if s.fieldIdx[i] = def.FieldIndex(d.Name); s.fieldIdx[i] < 0 {
			return fmt.Errorf("%w: field %s missing", ErrGdalLayerCreate, d.Name)
		}
	}
	return
}

// 实现contour.Sink
func (s *LayerSink) CreateFeature(f *contour.Feature) (fid int64, err error) {
	geo, err := toOgrGeometry(f)
	if err != nil {
		return
	}
	if s.srcRef != nil {
		geo.SetSpatialReference(*s.srcRef)
		if err = geo.TransformTo(s.ref); err != nil {
			log.Error(s.logTag+"geo transform failed", zap.Error(err))
			geo.Destroy()
			return
		}
	}
	feature := s.layer.Definition().Create()
	defer feature.Destroy()
	if err = feature.SetFID(f.ID); err != nil {
		geo.Destroy()
		return
	}
	for i, v := range s.schema.Values(f) {
		if v.Kind == contour.FieldInteger {
			feature.SetFieldInteger(s.fieldIdx[i], int(v.Int))
		} else {
			feature.SetFieldFloat64(s.fieldIdx[i], v.Real)
		}
	}
	if err = feature.SetGeometryDirectly(geo); err != nil {
		geo.Destroy()
		return
	}
	if err = s.layer.Create(feature); err != nil {
		return
	}
	s.count++
	fid = feature.FID()
	return
}

func (s *LayerSink) Count() int {
	return s.count
}

// 写入并释放数据源
func (s *LayerSink) Close() {
	if s.ds != (gdal.DataSource{}) {
		s.ds.Destroy()
		s.ds = gdal.DataSource{}
	}
}

// 按高程筛选要素：线模式匹配elev字段，面模式匹配包含该高程的区间
func (s *LayerSink) FilterLevel(v float64) (ret []LayerFeature, err error) {
	var filter string
	val := strconv.FormatFloat(v, 'g', -1, 64)
	if s.schema.Polygonize {
		if s.schema.ElevMinField < 0 || s.schema.ElevMaxField < 0 {
			err = ErrInvalidAttrFilter
			return
		}
		filter = fmt.Sprintf("%s <= %s AND %s > %s", s.schema.Names.ElevMin, val, s.schema.Names.ElevMax, val)
	} else {
		if s.schema.ElevField < 0 {
			err = ErrInvalidAttrFilter
			return
		}
		filter = fmt.Sprintf("%s = %s", s.schema.Names.Elev, val)
	}
	if err = s.layer.SetAttributeFilter(filter); err != nil {
		log.Error(s.logTag+"set attribute filter failed", zap.String("filter", filter), zap.Error(err))
		err = fmt.Errorf("%w: %s", ErrInvalidAttrFilter, filter)
		return
	}
	defer s.layer.SetAttributeFilter("")
	return readLayerFeatures(s.layer, s.schema)
}

// 读出图层中的全部要素
func (s *LayerSink) Features() ([]LayerFeature, error) {
	return readLayerFeatures(s.layer, s.schema)
}

func readLayerFeatures(layer gdal.Layer, schema contour.Schema) (ret []LayerFeature, err error) {
	def := layer.Definition()
	var (
		elevIdx    = fieldIndex(def, schema.ElevField, schema.Names.Elev)
		elevMinIdx = fieldIndex(def, schema.ElevMinField, schema.Names.ElevMin)
		elevMaxIdx = fieldIndex(def, schema.ElevMaxField, schema.Names.ElevMax)
		feature    *gdal.Feature
		gc         []destroyable
	)
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	layer.ResetReading()
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		gc = append(gc, *feature)
		geo := feature.Geometry()
		env := geo.Envelope()
		lf := LayerFeature{
			FID: feature.FID(),
			Bound: orb.Bound{
				Min: orb.Point{env.MinX(), env.MinY()},
				Max: orb.Point{env.MaxX(), env.MaxY()},
			},
			Points: countPoints(geo),
		}
		if elevIdx >= 0 {
			lf.Level = feature.FieldAsFloat64(elevIdx)
		}
		if elevMinIdx >= 0 {
			lf.Min = feature.FieldAsFloat64(elevMinIdx)
		}
		if elevMaxIdx >= 0 {
			lf.Max = feature.FieldAsFloat64(elevMaxIdx)
		}
		if lf.Wkt, err = geo.ToWKT(); err != nil {
			return
		}
		ret = append(ret, lf)
	}
	return
}

func fieldIndex(def gdal.FeatureDefinition, slot int, name string) int {
	if slot < 0 {
		return -1
	}
	return def.FieldIndex(name)
}

func countPoints(geo gdal.Geometry) (n int) {
	if c := geo.GeometryCount(); c > 0 {
		for i := 0; i < c; i++ {
			n += countPoints(geo.Geometry(i))
		}
		return
	}
	return geo.PointCount()
}

// 转换为OGR几何对象，调用方负责回收。3D线的Z值取要素高程
func toOgrGeometry(f *contour.Feature) (geo gdal.Geometry, err error) {
	switch v := f.Geometry.(type) {
	case orb.LineString:
		if f.ThreeD {
			geo = gdal.Create(gdal.GT_LineString25D)
			for _, p := range v {
				geo.AddPoint(p[0], p[1], f.Level)
			}
		} else {
			geo = gdal.Create(gdal.GT_LineString)
			addPoints(geo, v)
		}
	case orb.MultiPolygon:
		geo = gdal.Create(gdal.GT_MultiPolygon)
		for _, p := range v {
			poly := gdal.Create(gdal.GT_Polygon)
			for _, r := range p {
				ring := gdal.Create(gdal.GT_LinearRing)
				addPoints(ring, orb.LineString(r))
				if err = poly.AddGeometryDirectly(ring); err != nil {
					ring.Destroy()
					break
				}
			}
			if err == nil {
				err = geo.AddGeometryDirectly(poly)
			}
			if err != nil {
				poly.Destroy()
				geo.Destroy()
				return
			}
		}
	default:
		err = fmt.Errorf("%w: %T", ErrGdalWrongGeoType, f.Geometry)
	}
	return
}

func addPoints(geo gdal.Geometry, pts orb.LineString) {
	for _, p := range pts {
		geo.AddPoint2D(p[0], p[1])
	}
}
