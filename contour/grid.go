package contour

import (
	"math"

	"github.com/paulmach/orb"
)

// 等值线追踪的节点网格。
// 线模式下节点位于像素中心；面模式在栅格四边再加一圈节点，取边缘像素的值，
// 使高程区间覆盖整个栅格范围
type grid struct {
	s      *Sampler
	frame  bool
	cols   int
	rows   int
	width  int
	height int
}

func newGrid(s *Sampler, frame bool) *grid {
	w, h := s.Size()
	g := &grid{s: s, frame: frame, width: w, height: h, cols: w, rows: h}
	if frame {
		g.cols, g.rows = w+2, h+2
	}
	return g
}

func (g *grid) node(i, j int) int {
	return j*g.cols + i
}

// 连接节点(i,j)和(i+1,j)的边
func (g *grid) hEdge(i, j int) int {
	return j*(g.cols-1) + i
}

// 连接节点(i,j)和(i,j+1)的边
func (g *grid) vEdge(i, j int) int {
	return g.rows*(g.cols-1) + j*g.cols + i
}

// 节点行列号对应的像素行列号
func (g *grid) dataIndex(i, n int) int {
	if !g.frame {
		return i
	}
	return clampInt(i-1, 0, n-1)
}

// 节点在n个像素长的轴上的像素坐标
func (g *grid) coord(i, n int) float64 {
	if !g.frame {
		return float64(i) + 0.5
	}
	switch i {
	case 0:
		return 0
	case n + 1:
		return float64(n)
	}
	return float64(i) - 0.5
}

func (g *grid) nodePos(id int) orb.Point {
	i, j := id%g.cols, id/g.cols
	return orb.Point{g.coord(i, g.width), g.coord(j, g.height)}
}

// 读取第j行节点的值，无效值记为NaN
func (g *grid) loadRow(j int, dst []float64) error {
	buf, err := g.s.Row(g.dataIndex(j, g.height))
	if err != nil {
		return err
	}
	for i := range dst {
		v := buf[g.dataIndex(i, g.width)]
		if g.s.IsNoData(v) {
			v = math.NaN()
		}
		dst[i] = v
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
