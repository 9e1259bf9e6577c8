// 等值线要素与GeoJSON FeatureCollection之间的读写
package geojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wgdzlh/gdalcontour/contour"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	ErrUnsupportedGeometry = errors.New("geojson: unsupported geometry")
	ErrMissingProperty     = errors.New("geojson: missing property")
)

// 在内存中收集要素；GeoJSON不写Z，3D线按二维输出
type Sink struct {
	schema contour.Schema
	fc     *geojson.FeatureCollection
}

func NewSink(schema contour.Schema) *Sink {
	return &Sink{schema: schema, fc: geojson.NewFeatureCollection()}
}

func (s *Sink) CreateFeature(f *contour.Feature) (int64, error) {
	g, err := Normalize(f.Geometry)
	if err != nil {
		return 0, err
	}
	gf := geojson.NewFeature(g)
	gf.ID = f.ID
	for _, v := range s.schema.Values(f) {
		if v.Kind == contour.FieldInteger {
			gf.Properties[v.Name] = v.Int
		} else {
			gf.Properties[v.Name] = v.Real
		}
	}
	s.fc.Append(gf)
	return f.ID, nil
}

func (s *Sink) Collection() *geojson.FeatureCollection {
	return s.fc
}

// 全部要素的外包范围
func (s *Sink) Bound() (b orb.Bound) {
	for i, f := range s.fc.Features {
		if i == 0 {
			b = f.Geometry.Bound()
		} else {
			b = b.Union(f.Geometry.Bound())
		}
	}
	return
}

func (s *Sink) WriteTo(w io.Writer) (int64, error) {
	data, err := json.Marshal(s.fc)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (s *Sink) WriteFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = s.WriteTo(f)
	return
}

// 只接受线和多面，单个面转为多面
func Normalize(g orb.Geometry) (orb.Geometry, error) {
	switch t := g.(type) {
	case orb.LineString, orb.MultiPolygon:
		return t, nil
	case orb.Polygon:
		return orb.MultiPolygon{t}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
}

// 读取Sink写出的FeatureCollection，属性按schema字段名查找，未配置ID字段时取"id"成员
func Read(r io.Reader, schema contour.Schema) (feats []*contour.Feature, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return
	}
	for i, gf := range fc.Features {
		var f *contour.Feature
		if f, err = fromFeature(gf, schema); err != nil {
			err = fmt.Errorf("feature %d: %w", i, err)
			return
		}
		feats = append(feats, f)
	}
	return
}

func fromFeature(gf *geojson.Feature, schema contour.Schema) (*contour.Feature, error) {
	g, err := Normalize(gf.Geometry)
	if err != nil {
		return nil, err
	}
	f := &contour.Feature{Geometry: g, Polygon: schema.Polygonize}
	if id, ok := gf.ID.(float64); ok {
		f.ID = int64(id)
	}
	for _, d := range schema.Fields() {
		if _, ok := gf.Properties[d.Name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingProperty, d.Name)
		}
		v := gf.Properties.MustFloat64(d.Name)
		switch d.Index {
		case schema.IDField:
			f.ID = int64(v)
		case schema.ElevField:
			f.Level = v
		case schema.ElevMinField:
			f.Band.Min = v
		case schema.ElevMaxField:
			f.Band.Max = v
		}
	}
	return f, nil
}
