package contour

import (
	"errors"
	"fmt"
	"sort"
)

var errRowUnavailable = errors.New("row unavailable")

// 内存栅格，按行存储
type MemRaster struct {
	Width, Height int
	Data          []float64
	Transform     [6]float64
	NoDataValue   float64
	HasNoData     bool
	// 不小于0时读取该行返回错误
	FailRow int
}

func NewMemRaster(width, height int) *MemRaster {
	return &MemRaster{
		Width:     width,
		Height:    height,
		Data:      make([]float64, width*height),
		Transform: identityTransform,
		FailRow:   -1,
	}
}

// 由等长的行构建栅格
func MemRasterFromRows(rows [][]float64) *MemRaster {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}
	m := NewMemRaster(w, h)
	for r, row := range rows {
		copy(m.Data[r*w:(r+1)*w], row)
	}
	return m
}

func (m *MemRaster) Size() (int, int) {
	return m.Width, m.Height
}

func (m *MemRaster) ReadRow(row int, buf []float64) error {
	if row == m.FailRow || row < 0 || row >= m.Height {
		return fmt.Errorf("mem raster row %d: %w", row, errRowUnavailable)
	}
	copy(buf, m.Data[row*m.Width:(row+1)*m.Width])
	return nil
}

func (m *MemRaster) NoData() (float64, bool) {
	return m.NoDataValue, m.HasNoData
}

func (m *MemRaster) GeoTransform() [6]float64 {
	return m.Transform
}

func (m *MemRaster) SetNoData(v float64) {
	m.NoDataValue, m.HasNoData = v, true
}

func (m *MemRaster) Set(row, col int, v float64) {
	m.Data[row*m.Width+col] = v
}

func (m *MemRaster) At(row, col int) float64 {
	return m.Data[row*m.Width+col]
}

// 以(row, col)为左上角填充rows行cols列
func (m *MemRaster) Fill(row, col, rows, cols int, v float64) {
	for r := row; r < row+rows; r++ {
		for c := col; c < col+cols; c++ {
			m.Set(r, c, v)
		}
	}
}

// 保存全部要素的内存图层
type MemLayer struct {
	Schema   Schema
	Features []*Feature
}

func NewMemLayer(schema Schema) *MemLayer {
	return &MemLayer{Schema: schema}
}

func (l *MemLayer) CreateFeature(f *Feature) (int64, error) {
	l.Features = append(l.Features, f)
	return f.ID, nil
}

func (l *MemLayer) Count() int {
	return len(l.Features)
}

// 高程等于v的线要素，相当于属性过滤`elev = v`
func (l *MemLayer) FilterLevel(v float64) (out []*Feature) {
	for _, f := range l.Features {
		if !f.Polygon && f.Level == v {
			out = append(out, f)
		}
	}
	return
}

// 按高程（面模式按区间下限）排序，相同时按ID
func (l *MemLayer) SortedByLevel() []*Feature {
	out := make([]*Feature, len(l.Features))
	copy(out, l.Features)
	key := func(f *Feature) float64 {
		if f.Polygon {
			return f.Band.Min
		}
		return f.Level
	}
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := key(out[i]), key(out[j])
		if ki != kj {
			return ki < kj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (l *MemLayer) Values(f *Feature) []FieldValue {
	return l.Schema.Values(f)
}
