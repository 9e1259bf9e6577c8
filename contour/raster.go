package contour

import (
	"context"
	"fmt"
	"math"
)

// 栅格单波段的读取接口
type Raster interface {
	// 宽、高（像素）
	Size() (width, height int)
	// 读取一行到buf（长度不小于宽度）
	ReadRow(row int, buf []float64) error
	// 无效值
	NoData() (float64, bool)
	// 仿射变换：x = gt[0] + px*gt[1] + py*gt[2], y = gt[3] + px*gt[4] + py*gt[5]
	GeoTransform() [6]float64
}

var identityTransform = [6]float64{0, 1, 0, 0, 0, 1}

// 带两行缓存的采样器，负责无效值判断和像素到地理坐标的转换
type Sampler struct {
	r         Raster
	width     int
	height    int
	gt        [6]float64
	nodata    float64
	hasNoData bool

	rows   [2][]float64
	rowIdx [2]int
	next   int
}

// override不为nil时替代栅格自带的无效值
func NewSampler(r Raster, override *float64) (*Sampler, error) {
	w, h := r.Size()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: invalid raster size %dx%d", ErrRasterAccess, w, h)
	}
	s := &Sampler{
		r:      r,
		width:  w,
		height: h,
		gt:     r.GeoTransform(),
		rowIdx: [2]int{-1, -1},
	}
	if s.gt == ([6]float64{}) {
		s.gt = identityTransform
	}
	if override != nil {
		s.nodata, s.hasNoData = *override, true
	} else {
		s.nodata, s.hasNoData = r.NoData()
	}
	for i := range s.rows {
		s.rows[i] = make([]float64, w)
	}
	return s, nil
}

func (s *Sampler) Size() (int, int) {
	return s.width, s.height
}

// NaN和无效值均视为无数据
func (s *Sampler) IsNoData(v float64) bool {
	return math.IsNaN(v) || (s.hasNoData && v == s.nodata)
}

// 返回一行数据，在读取另外两行之前有效
func (s *Sampler) Row(row int) ([]float64, error) {
	if row < 0 || row >= s.height {
		return nil, fmt.Errorf("%w: row %d out of range [0,%d)", ErrRasterAccess, row, s.height)
	}
	for i, idx := range s.rowIdx {
		if idx == row {
			return s.rows[i], nil
		}
	}
	slot := s.next
	s.next ^= 1
	s.rowIdx[slot] = -1
	if err := s.r.ReadRow(row, s.rows[slot]); err != nil {
		return nil, fmt.Errorf("%w: read row %d: %w", ErrRasterAccess, row, err)
	}
	s.rowIdx[slot] = row
	return s.rows[slot], nil
}

func (s *Sampler) Sample(row, col int) (v float64, nodata bool, err error) {
	if col < 0 || col >= s.width {
		err = fmt.Errorf("%w: col %d out of range [0,%d)", ErrRasterAccess, col, s.width)
		return
	}
	buf, err := s.Row(row)
	if err != nil {
		return
	}
	v = buf[col]
	nodata = s.IsNoData(v)
	return
}

// 像素坐标转地理坐标
func (s *Sampler) ToWorld(px, py float64) (x, y float64) {
	x = s.gt[0] + px*s.gt[1] + py*s.gt[2]
	y = s.gt[3] + px*s.gt[4] + py*s.gt[5]
	return
}

// 扫描整个波段，求有效值的最小、最大值
func (s *Sampler) Range(ctx context.Context) (lo, hi float64, ok bool, err error) {
	lo, hi = math.Inf(1), math.Inf(-1)
	var buf []float64
	for row := 0; row < s.height; row++ {
		if err = ctx.Err(); err != nil {
			return
		}
		if buf, err = s.Row(row); err != nil {
			return
		}
		for _, v := range buf {
			if s.IsNoData(v) {
				continue
			}
			ok = true
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return
}
