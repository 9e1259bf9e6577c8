package contour

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 像素坐标下的闭合环。面积为正（按角点顺序绕行）是外环，为负是内环；
// parent为容纳该内环的外环序号
type ring struct {
	pts    orb.Ring
	area   float64
	parent int
}

func (r ring) exterior() bool {
	return r.area > 0
}

// 为每个内环找到容纳它的最小外环，返回找不到外环的内环
func nestRings(rings []ring) (orphans []int) {
	var exteriors []int
	for i, r := range rings {
		if r.exterior() {
			exteriors = append(exteriors, i)
		}
	}
	sort.SliceStable(exteriors, func(a, b int) bool {
		return rings[exteriors[a]].area < rings[exteriors[b]].area
	})
	for i := range rings {
		h := &rings[i]
		if h.exterior() {
			continue
		}
		for _, e := range exteriors {
			if rings[e].area < -h.area {
				continue
			}
			if holds(rings[e].pts, h.pts) {
				h.parent = e
				break
			}
		}
		if h.parent < 0 {
			orphans = append(orphans, i)
		}
	}
	return
}

// 按内环各边中点的多数判断，相切的顶点不参与
func holds(outer, inner orb.Ring) bool {
	n := len(inner) - 1
	if n < 1 {
		return false
	}
	in := 0
	for i := 0; i < n; i++ {
		a, b := inner[i], inner[i+1]
		if planar.RingContains(outer, orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}) {
			in++
		}
	}
	return 2*in > n
}

// 转为地理坐标的多面：外环逆时针，内环顺时针，孤立内环单独成面
func buildMultiPolygon(rings []ring, orphans []int, toWorld func(orb.Point) orb.Point) orb.MultiPolygon {
	var mp orb.MultiPolygon
	index := map[int]int{}
	for i, r := range rings {
		if r.exterior() {
			index[i] = len(mp)
			mp = append(mp, orb.Polygon{worldRing(r.pts, toWorld, orb.CCW)})
		}
	}
	for _, r := range rings {
		if !r.exterior() && r.parent >= 0 {
			p := index[r.parent]
			mp[p] = append(mp[p], worldRing(r.pts, toWorld, orb.CW))
		}
	}
	for _, i := range orphans {
		mp = append(mp, orb.Polygon{worldRing(rings[i].pts, toWorld, orb.CCW)})
	}
	return mp
}

func worldRing(pts orb.Ring, toWorld func(orb.Point) orb.Point, o orb.Orientation) orb.Ring {
	r := make(orb.Ring, len(pts))
	for i, p := range pts {
		r[i] = toWorld(p)
	}
	if r.Orientation() != o {
		r.Reverse()
	}
	return r
}
