package contour

import (
	"math"
	"sort"
)

// 等间距模式下高程数的上限
const maxLevels = 1 << 20

// 相邻高程间的半开区间[Min, Max)，最低区间Min为-Inf，最高区间Max为+Inf
type Band struct {
	Min, Max float64
}

func (b Band) OpenBelow() bool {
	return math.IsInf(b.Min, -1)
}

func (b Band) OpenAbove() bool {
	return math.IsInf(b.Max, 1)
}

// 等于高程的值归入其上方区间，与追踪一致
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// 升序排列，去掉重复值和NaN
func normalizeLevels(in []float64) []float64 {
	out := make([]float64, 0, len(in))
	for _, v := range in {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

// [lo, hi]内所有 base + k*interval 形式的高程
func IntervalLevels(interval, base, lo, hi float64) ([]float64, error) {
	if !(interval > 0) {
		return nil, configErr("interval must be a positive number, got %v", interval)
	}
	if lo > hi {
		return nil, nil
	}
	k0 := math.Ceil((lo - base) / interval)
	k1 := math.Floor((hi - base) / interval)
	if k1-k0+1 > maxLevels {
		return nil, configErr("interval %v yields more than %d levels over [%v, %v]", interval, maxLevels, lo, hi)
	}
	var levels []float64
	for k := k0; k <= k1; k++ {
		levels = append(levels, base+k*interval)
	}
	return levels, nil
}

// 生成有序高程集合。lo/hi为数据范围，仅等间距模式使用；hasData为false表示波段没有有效值
func ResolveLevels(o *Options, lo, hi float64, hasData bool) ([]float64, error) {
	if len(o.FixedLevels) > 0 {
		return normalizeLevels(o.FixedLevels), nil
	}
	if !hasData {
		return nil, nil
	}
	levels, err := IntervalLevels(o.Interval, o.Base, lo, hi)
	if err != nil {
		return nil, err
	}
	return normalizeLevels(append(levels, o.ExceedLevels...)), nil
}

// 按高程划分出len(levels)+1个区间
func Bands(levels []float64) []Band {
	if len(levels) == 0 {
		return nil
	}
	bands := make([]Band, len(levels)+1)
	prev := math.Inf(-1)
	for i, l := range levels {
		bands[i] = Band{Min: prev, Max: l}
		prev = l
	}
	bands[len(levels)] = Band{Min: prev, Max: math.Inf(1)}
	return bands
}

// 不大于v的高程个数
func bandIndex(levels []float64, v float64) int {
	return sort.Search(len(levels), func(i int) bool { return levels[i] > v })
}
