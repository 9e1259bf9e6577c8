package contour

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// 要素几何：线模式为orb.LineString，面模式为orb.MultiPolygon。
// 坐标均为二维，3D输出的Z值即要素的高程，由图层写入时补上
type Geometry = orb.Geometry

// 几何的顶点总数
func NumPoints(g orb.Geometry) (n int) {
	switch v := g.(type) {
	case orb.LineString:
		n = len(v)
	case orb.Ring:
		n = len(v)
	case orb.Polygon:
		for _, r := range v {
			n += len(r)
		}
	case orb.MultiPolygon:
		for _, p := range v {
			n += NumPoints(p)
		}
	}
	return
}

// 带符号面积，逆时针（y轴向上）为正
func SignedArea(r orb.Ring) float64 {
	return math.Abs(planar.Area(r)) * float64(r.Orientation())
}

// 首尾点重合的线
func Closed(ls orb.LineString) bool {
	return len(ls) > 2 && orb.Ring(ls).Closed()
}
