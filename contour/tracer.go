package contour

import (
	"context"
	"math"

	"github.com/paulmach/orb"
)

// 链顶点：网格边上某高程的交点，或网格节点（lvl为-1）
type vkey struct {
	id  int
	lvl int
}

// 由a到b的线段；cell为生成它的单元序号(row*(cols-1)+col)，
// 两个单元共用节点时据此选择出路
type segment struct {
	a, b vkey
	cell int
}

// 按行一次扫描完成所有高程的marching squares。
// 线模式按高程收集线段，面模式按高程区间收集
type tracer struct {
	g      *grid
	levels []float64
	bands  bool

	pts      map[vkey]orb.Point
	segs     [][]segment
	boundary map[int]bool
	count    int
}

func newTracer(g *grid, levels []float64, bands bool) *tracer {
	n := len(levels)
	if bands {
		n++
	}
	return &tracer{
		g:        g,
		levels:   levels,
		bands:    bands,
		pts:      map[vkey]orb.Point{},
		segs:     make([][]segment, n),
		boundary: map[int]bool{},
	}
}

// 第li个高程与节点a、b之间边的交点，从低于该高程的节点向高的节点插值
func (t *tracer) crossing(edge, li, a, b int, va, vb float64) vkey {
	k := vkey{edge, li}
	if _, ok := t.pts[k]; ok {
		return k
	}
	if va < vb {
		a, b, va, vb = b, a, vb, va
	}
	pa, pb := t.g.nodePos(a), t.g.nodePos(b)
	f := (t.levels[li] - vb) / (va - vb)
	t.pts[k] = orb.Point{pb[0] + (pa[0]-pb[0])*f, pb[1] + (pa[1]-pb[1])*f}
	return k
}

func (t *tracer) pos(k vkey) orb.Point {
	if k.lvl < 0 {
		return t.g.nodePos(k.id)
	}
	return t.pts[k]
}

func (t *tracer) add(slot int, s segment) {
	t.segs[slot] = append(t.segs[slot], s)
	t.count++
}

// 落在(lo, hi]内的高程序号区间[i, j)
func (t *tracer) levelRange(lo, hi float64) (int, int) {
	return bandIndex(t.levels, lo), bandIndex(t.levels, hi)
}

// 扫描全部单元，每行检查一次ctx
func (t *tracer) run(ctx context.Context) error {
	g := t.g
	if g.cols < 2 || g.rows < 2 {
		return nil
	}
	top := make([]float64, g.cols)
	bottom := make([]float64, g.cols)
	prevValid := make([]bool, g.cols-1)
	valid := make([]bool, g.cols-1)
	if err := g.loadRow(0, top); err != nil {
		return err
	}
	for r := 0; r < g.rows-1; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.loadRow(r+1, bottom); err != nil {
			return err
		}
		for i := 0; i < g.cols-1; i++ {
			vs := [4]float64{top[i], top[i+1], bottom[i+1], bottom[i]}
			valid[i] = !(math.IsNaN(vs[0]) || math.IsNaN(vs[1]) || math.IsNaN(vs[2]) || math.IsNaN(vs[3]))
			if valid[i] {
				t.cell(i, r, vs)
			}
		}
		t.border(r, top, bottom, prevValid, valid)
		top, bottom = bottom, top
		prevValid, valid = valid, prevValid
	}
	last := g.rows - 1
	for i := 0; i < g.cols-1; i++ {
		if prevValid[i] {
			t.borderEdge((last-1)*(g.cols-1)+i, g.hEdge(i, last), g.node(i+1, last), g.node(i, last), top[i+1], top[i])
		}
	}
	return nil
}

// 追踪左上节点为(i, r)的单元，角点和边按左上、右上、右下、左下的顺序绕行。
// 由高于高程的角点走向低的角点为出口，反之为入口。单元均值不低于高程时
// 出口连向下一个入口，否则连向上一个入口，鞍点由此确定
func (t *tracer) cell(i, r int, vs [4]float64) {
	g := t.g
	nodes := [4]int{g.node(i, r), g.node(i+1, r), g.node(i+1, r+1), g.node(i, r+1)}
	edges := [4]int{g.hEdge(i, r), g.vEdge(i+1, r), g.hEdge(i, r+1), g.vEdge(i, r)}
	vmin, vmax := vs[0], vs[0]
	for _, v := range vs[1:] {
		vmin = math.Min(vmin, v)
		vmax = math.Max(vmax, v)
	}
	lo, hi := t.levelRange(vmin, vmax)
	if lo >= hi {
		return
	}
	mean := (vs[0] + vs[1] + vs[2] + vs[3]) / 4
	cellID := r*(g.cols-1) + i

	var (
		xs    [4]vkey
		exit  [4]bool
		cross [4]bool
	)
	for li := lo; li < hi; li++ {
		l := t.levels[li]
		for k := 0; k < 4; k++ {
			a, b := vs[k] >= l, vs[(k+1)%4] >= l
			cross[k] = a != b
			if cross[k] {
				exit[k] = a
				xs[k] = t.crossing(edges[k], li, nodes[k], nodes[(k+1)%4], vs[k], vs[(k+1)%4])
			}
		}
		step := 1
		if mean < l {
			step = 3
		}
		for k := 0; k < 4; k++ {
			if !cross[k] || !exit[k] {
				continue
			}
			e := (k + step) % 4
			for !cross[e] || exit[e] {
				e = (e + step) % 4
			}
			t.chord(li, segment{xs[k], xs[e], cellID})
		}
	}
}

// 保存一条等值线段。面模式下原方向归入上方区间，反向归入下方区间
func (t *tracer) chord(li int, s segment) {
	if !t.bands {
		t.add(li, s)
		return
	}
	t.add(li+1, s)
	t.add(li, segment{s.b, s.a, s.cell})
}

// 第r行单元中分隔有效单元与无效单元（或栅格外）的边，方向与有效单元的绕行一致
func (t *tracer) border(r int, top, bottom []float64, prevValid, valid []bool) {
	g := t.g
	row := r * (g.cols - 1)
	for i := 0; i < g.cols-1; i++ {
		above := r > 0 && prevValid[i]
		switch {
		case valid[i] && !above:
			t.borderEdge(row+i, g.hEdge(i, r), g.node(i, r), g.node(i+1, r), top[i], top[i+1])
		case above && !valid[i]:
			t.borderEdge(row-(g.cols-1)+i, g.hEdge(i, r), g.node(i+1, r), g.node(i, r), top[i+1], top[i])
		}
	}
	for i := 0; i < g.cols; i++ {
		left := i > 0 && valid[i-1]
		right := i < g.cols-1 && valid[i]
		switch {
		case right && !left:
			t.borderEdge(row+i, g.vEdge(i, r), g.node(i, r+1), g.node(i, r), bottom[i], top[i])
		case left && !right:
			t.borderEdge(row+i-1, g.vEdge(i, r), g.node(i, r), g.node(i, r+1), top[i], bottom[i])
		}
	}
}

// 记录由节点a到b的边界边。面模式下在各高程交点处切开，每段归入所在区间
func (t *tracer) borderEdge(cell, edge, a, b int, va, vb float64) {
	t.boundary[edge] = true
	if !t.bands {
		return
	}
	band := bandIndex(t.levels, va)
	from := vkey{a, -1}
	if va < vb {
		lo, hi := t.levelRange(va, vb)
		for li := lo; li < hi; li++ {
			x := t.crossing(edge, li, a, b, va, vb)
			t.add(band, segment{from, x, cell})
			from = x
			band++
		}
	} else {
		lo, hi := t.levelRange(vb, va)
		for li := hi - 1; li >= lo; li-- {
			x := t.crossing(edge, li, a, b, va, vb)
			t.add(band, segment{from, x, cell})
			from = x
			band--
		}
	}
	t.add(band, segment{from, vkey{b, -1}, cell})
}
