package gdalcontour

import (
	"fmt"

	"github.com/paulmach/orb"
)

func PointsToWkt(lon1, lon2, lat1, lat2 float64) string {
	return fmt.Sprintf("POLYGON((%[1]f %[3]f, %[1]f %[4]f, %[2]f %[4]f, %[2]f %[3]f, %[1]f %[3]f))", lon1, lon2, lat1, lat2)
}

func SpanToWkt(span [4]float64) string {
	return PointsToWkt(span[0], span[1], span[2], span[3])
}

// 空范围返回空多边形
func EnvelopeToWkt(b orb.Bound) string {
	if b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] {
		return "POLYGON EMPTY"
	}
	return SpanToWkt([4]float64{b.Min[0], b.Max[0], b.Min[1], b.Max[1]})
}

// 栅格四角经仿射变换后的外包范围
func RasterEnvelope(gt [6]float64, width, height int) orb.Bound {
	var corners orb.MultiPoint
	for _, c := range [4][2]float64{{0, 0}, {float64(width), 0}, {0, float64(height)}, {float64(width), float64(height)}} {
		corners = append(corners, orb.Point{gt[0] + c[0]*gt[1] + c[1]*gt[2], gt[3] + c[0]*gt[4] + c[1]*gt[5]})
	}
	return corners.Bound()
}
