package contour

import "github.com/paulmach/orb"

// 等值线平滑：按距离加权的滑动平均。
// 每轮把顶点替换为 p*(1-slide) + avg*slide，avg取两侧各LookAhead/2个顶点，
// 权重为half+1-距离。开放线在两端缩小窗口且端点不动；LoopSupport时闭合线
// 跨过首尾连续平滑。顶点数不变
type Smoother struct {
	opts SmoothOptions
}

func NewSmoother(opts SmoothOptions) *Smoother {
	return &Smoother{opts: opts}
}

func (s *Smoother) Enabled() bool {
	return s != nil && s.opts.Cycles > 0 && s.opts.LookAhead >= 2 && s.opts.Slide > 0
}

// 返回平滑后的副本，不需平滑时原样返回
func (s *Smoother) Smooth(ls orb.LineString) orb.LineString {
	n := len(ls)
	if !s.Enabled() || n < s.opts.MinPoints || s.opts.LookAhead >= n || n < 3 {
		return ls
	}
	half := s.opts.LookAhead / 2
	loop := s.opts.LoopSupport && Closed(ls)
	cur := ls.Clone()
	next := make(orb.LineString, n)
	for c := 0; c < s.opts.Cycles; c++ {
		copy(next, cur)
		if loop {
			s.cycleLoop(cur, next, half)
		} else {
			s.cycleOpen(cur, next, half)
		}
		cur, next = next, cur
	}
	return cur
}

func (s *Smoother) blend(p orb.Point, sx, sy, sw float64) orb.Point {
	k := s.opts.Slide
	return orb.Point{p[0]*(1-k) + sx/sw*k, p[1]*(1-k) + sy/sw*k}
}

func (s *Smoother) cycleOpen(src, dst orb.LineString, half int) {
	n := len(src)
	for i := 1; i < n-1; i++ {
		h := half
		if i < h {
			h = i
		}
		if n-1-i < h {
			h = n - 1 - i
		}
		var sx, sy, sw float64
		for d := -h; d <= h; d++ {
			w := float64(h + 1 - abs(d))
			sx += src[i+d][0] * w
			sy += src[i+d][1] * w
			sw += w
		}
		dst[i] = s.blend(src[i], sx, sy, sw)
	}
}

// 闭合线去掉闭合点后按环平滑
func (s *Smoother) cycleLoop(src, dst orb.LineString, half int) {
	m := len(src) - 1
	if 2*half+1 > m {
		half = (m - 1) / 2
	}
	for i := 0; i < m; i++ {
		var sx, sy, sw float64
		for d := -half; d <= half; d++ {
			w := float64(half + 1 - abs(d))
			p := src[((i+d)%m+m)%m]
			sx += p[0] * w
			sy += p[1] * w
			sw += w
		}
		dst[i] = s.blend(src[i], sx, sy, sw)
	}
	dst[m] = dst[0]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
