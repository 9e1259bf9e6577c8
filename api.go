package gdalcontour

import (
	"github.com/wgdzlh/gdalcontour/contour"

	"github.com/paulmach/orb"
)

// 等值线任务
type ContourJob struct {
	Src       string          `json:"src" toml:"src"`               // 输入栅格
	Band      int             `json:"band" toml:"band"`             // 波段序号，从1开始
	Dst       string          `json:"dst" toml:"dst"`               // 输出文件，为空时写入临时目录
	Format    string          `json:"format" toml:"format"`         // OGR驱动名或GeoJSON，为空时按扩展名判断
	LayerName string          `json:"layer_name" toml:"layer_name"` // 输出图层名
	Srid      int             `json:"srid" toml:"srid"`             // 输出坐标系，0表示沿用栅格坐标系
	Options   contour.Options `json:"-" toml:"options"`
}

// 图层中的一个等值线要素
type LayerFeature struct {
	FID      int64
	Level    float64 // 等值线高程（线模式）
	Min, Max float64 // 高程区间（面模式）
	Bound    orb.Bound
	Points   int
	Wkt      string
}
