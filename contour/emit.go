package contour

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// 最低、最高区间无穷边界的写出值
const OpenBandValue = math.MaxFloat64

type FieldKind int

const (
	FieldInteger FieldKind = iota
	FieldReal
)

func (k FieldKind) String() string {
	if k == FieldInteger {
		return "Integer"
	}
	return "Real"
}

// 图层字段名
type FieldNames struct {
	ID      string `toml:"id"`
	Elev    string `toml:"elev"`
	ElevMin string `toml:"elev_min"`
	ElevMax string `toml:"elev_max"`
}

func DefaultFieldNames() FieldNames {
	return FieldNames{
		ID:      "ID",
		Elev:    "elev",
		ElevMin: "elevMin",
		ElevMax: "elevMax",
	}
}

func (n FieldNames) withDefaults() FieldNames {
	d := DefaultFieldNames()
	if n.ID == "" {
		n.ID = d.ID
	}
	if n.Elev == "" {
		n.Elev = d.Elev
	}
	if n.ElevMin == "" {
		n.ElevMin = d.ElevMin
	}
	if n.ElevMax == "" {
		n.ElevMax = d.ElevMax
	}
	return n
}

// 一个启用的字段槽位
type FieldDef struct {
	Index int
	Name  string
	Kind  FieldKind
}

// 槽位取值：整型字段用Int，其余用Real
type FieldValue struct {
	FieldDef
	Int  int64
	Real float64
}

func (v FieldValue) String() string {
	if v.Kind == FieldInteger {
		return fmt.Sprintf("%s=%d", v.Name, v.Int)
	}
	return fmt.Sprintf("%s=%g", v.Name, v.Real)
}

// 一次生成的字段布局，槽位为-1表示不输出
type Schema struct {
	IDField      int
	ElevField    int
	ElevMinField int
	ElevMaxField int
	Names        FieldNames
	Polygonize   bool
	ThreeD       bool
}

func (s Schema) validate() error {
	seen := map[int]string{}
	for _, f := range s.Fields() {
		if prev, ok := seen[f.Index]; ok {
			return configErr("fields %s and %s share slot %d", prev, f.Name, f.Index)
		}
		seen[f.Index] = f.Name
	}
	return nil
}

// 按槽位序号排列的启用字段
func (s Schema) Fields() (defs []FieldDef) {
	add := func(idx int, name string, kind FieldKind) {
		if idx >= 0 {
			defs = append(defs, FieldDef{Index: idx, Name: name, Kind: kind})
		}
	}
	add(s.IDField, s.Names.ID, FieldInteger)
	if s.Polygonize {
		add(s.ElevMinField, s.Names.ElevMin, FieldReal)
		add(s.ElevMaxField, s.Names.ElevMax, FieldReal)
	} else {
		add(s.ElevField, s.Names.Elev, FieldReal)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Index < defs[j].Index })
	return
}

// 按Fields顺序返回f的字段值
func (s Schema) Values(f *Feature) []FieldValue {
	defs := s.Fields()
	out := make([]FieldValue, len(defs))
	for i, d := range defs {
		out[i].FieldDef = d
		switch d.Index {
		case s.IDField:
			out[i].Int = f.ID
		case s.ElevField:
			out[i].Real = f.Level
		case s.ElevMinField:
			out[i].Real = f.ElevMin()
		case s.ElevMaxField:
			out[i].Real = f.ElevMax()
		}
	}
	return out
}

// 一条等值线（Level有效）或一个高程区间的多面（Band有效，Polygon为true）。
// ThreeD时输出图层以Level作为顶点Z值
type Feature struct {
	ID       int64
	Level    float64
	Band     Band
	Polygon  bool
	ThreeD   bool
	Geometry Geometry
}

func (f *Feature) ElevMin() float64 {
	if f.Band.OpenBelow() {
		return -OpenBandValue
	}
	return f.Band.Min
}

func (f *Feature) ElevMax() float64 {
	if f.Band.OpenAbove() {
		return OpenBandValue
	}
	return f.Band.Max
}

func (f *Feature) String() string {
	if f.Polygon {
		return fmt.Sprintf("feature %d band [%g,%g) %d points", f.ID, f.ElevMin(), f.ElevMax(), NumPoints(f.Geometry))
	}
	return fmt.Sprintf("feature %d level %g %d points", f.ID, f.Level, NumPoints(f.Geometry))
}

// 接收生成的要素，返回写入后的要素ID
type Sink interface {
	CreateFeature(f *Feature) (int64, error)
}

// 按顺序编号并写出要素
type Emitter struct {
	sink   Sink
	schema Schema
	next   int64
	count  int
}

func NewEmitter(sink Sink, schema Schema, idBase int64) *Emitter {
	return &Emitter{sink: sink, schema: schema, next: idBase}
}

func (e *Emitter) Count() int {
	return e.count
}

// 写出一条等值线
func (e *Emitter) EmitLine(level float64, ls orb.LineString) error {
	return e.emit(&Feature{Level: level, ThreeD: e.schema.ThreeD, Geometry: ls})
}

// 一个高程区间的所有面写为一个要素
func (e *Emitter) EmitBand(band Band, mp orb.MultiPolygon) error {
	return e.emit(&Feature{Band: band, Polygon: true, Geometry: mp})
}

func (e *Emitter) emit(f *Feature) error {
	f.ID = e.next
	if _, err := e.sink.CreateFeature(f); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSinkWrite, f, err)
	}
	e.next++
	e.count++
	return nil
}
