package contour

import (
	"math"

	"github.com/paulmach/orb"
)

// 像素坐标下的顶点链
type path struct {
	pts    []orb.Point
	ends   [2]vkey
	closed bool
}

// 连接首尾相接的线段。先从没有入边的顶点出发，剩下的都是环；
// 按线段顺序遍历，输出稳定
func chain(segs []segment) (paths [][]vkey) {
	out := make(map[vkey][]int, len(segs))
	in := make(map[vkey]int, len(segs))
	for i, s := range segs {
		out[s.a] = append(out[s.a], i)
		in[s.b]++
	}
	used := make([]bool, len(segs))
	next := func(k vkey, cell int) int {
		found := -1
		for _, i := range out[k] {
			if used[i] {
				continue
			}
			if segs[i].cell == cell {
				return i
			}
			if found < 0 {
				found = i
			}
		}
		return found
	}
	walk := func(start int) []vkey {
		keys := []vkey{segs[start].a}
		for i := start; i >= 0; i = next(segs[i].b, segs[i].cell) {
			used[i] = true
			keys = append(keys, segs[i].b)
		}
		return keys
	}
	for i, s := range segs {
		if !used[i] && in[s.a] == 0 {
			paths = append(paths, walk(i))
		}
	}
	for i := range segs {
		if !used[i] {
			paths = append(paths, walk(i))
		}
	}
	return
}

// 取顶点坐标并去掉相邻的重复点
func (t *tracer) toPath(keys []vkey) path {
	p := path{ends: [2]vkey{keys[0], keys[len(keys)-1]}}
	p.closed = p.ends[0] == p.ends[1]
	p.pts = make([]orb.Point, 0, len(keys))
	for _, k := range keys {
		v := t.pos(k)
		if n := len(p.pts); n > 0 && p.pts[n-1] == v {
			continue
		}
		p.pts = append(p.pts, v)
	}
	if p.closed && len(p.pts) > 1 && p.pts[0] != p.pts[len(p.pts)-1] {
		p.pts = append(p.pts, p.pts[0])
	}
	return p
}

// 不含闭合点的顶点数
func (p path) distinct() int {
	if p.closed && len(p.pts) > 0 {
		return len(p.pts) - 1
	}
	return len(p.pts)
}

// 退化的链丢弃：线少于2个点，环少于3个不同点
func (p path) degenerate() bool {
	if p.closed {
		return p.distinct() < 3
	}
	return len(p.pts) < 2
}

// 开放线的端点是否在有效区域边界上
func (t *tracer) onBoundary(k vkey) bool {
	return k.lvl >= 0 && t.boundary[k.id]
}

// 线模式下一个高程的组装结果
type lineResult struct {
	lines    []orb.LineString
	open     int
	warnings int
}

// 将第li个高程的线段连接为地理坐标下的等值线
func (t *tracer) assembleLines(li int, toWorld func(orb.Point) orb.Point) (res lineResult) {
	for _, keys := range chain(t.segs[li]) {
		p := t.toPath(keys)
		if p.degenerate() {
			continue
		}
		if !p.closed {
			res.open++
			if !t.onBoundary(p.ends[0]) || !t.onBoundary(p.ends[1]) {
				res.warnings++
			}
		}
		ls := make(orb.LineString, len(p.pts))
		for i, v := range p.pts {
			ls[i] = toWorld(v)
		}
		res.lines = append(res.lines, ls)
	}
	return
}

// 像素面积小于该值的环视为空
const minRingArea = 1e-9

// 将第bi个高程区间的线段连接为闭合环。
// 面模式下不应出现开放链，出现时自行闭合并计数
func (t *tracer) assembleRings(bi int) (rings []ring, warnings int) {
	for _, keys := range chain(t.segs[bi]) {
		p := t.toPath(keys)
		if !p.closed {
			warnings++
			if len(p.pts) > 1 {
				p.pts = append(p.pts, p.pts[0])
				p.closed = true
			}
		}
		if p.degenerate() {
			continue
		}
		r := orb.Ring(p.pts)
		a := SignedArea(r)
		if math.Abs(a) < minRingArea {
			continue
		}
		rings = append(rings, ring{pts: r, area: a, parent: -1})
	}
	return
}
