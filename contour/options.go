package contour

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultLookAhead = 7
	DefaultSlide     = 1.0
)

// 平滑参数，Cycles为0时不平滑
type SmoothOptions struct {
	Cycles      int     `toml:"cycles"`
	LookAhead   int     `toml:"look_ahead"`
	Slide       float64 `toml:"slide"`
	LoopSupport bool    `toml:"loop_support"`
	MinPoints   int     `toml:"min_points"`
}

// 一次等值线生成的参数
type Options struct {
	// 大于0时为等间距模式：数据范围内的 Base + k*Interval
	Interval float64 `toml:"interval"`
	Base     float64 `toml:"base"`
	// 并入等间距高程的额外高程
	ExceedLevels []float64 `toml:"exceed_levels"`
	// 固定高程模式
	FixedLevels []float64 `toml:"fixed_levels"`

	// 替代栅格自带的无效值
	NoData *float64 `toml:"nodata"`

	// 字段槽位，-1表示不输出
	IDField      int        `toml:"id_field"`
	ElevField    int        `toml:"elev_field"`
	ElevMinField int        `toml:"elev_min_field"`
	ElevMaxField int        `toml:"elev_max_field"`
	FieldNames   FieldNames `toml:"field_names"`
	IDBase       int64      `toml:"id_base"`

	Polygonize bool          `toml:"polygonize"`
	ThreeD     bool          `toml:"three_d"`
	Smooth     SmoothOptions `toml:"smooth"`
}

func DefaultOptions() Options {
	return Options{
		IDField:      -1,
		ElevField:    -1,
		ElevMinField: -1,
		ElevMaxField: -1,
		FieldNames:   DefaultFieldNames(),
		Smooth: SmoothOptions{
			LookAhead: DefaultLookAhead,
			Slide:     DefaultSlide,
		},
	}
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// 参数冲突或缺失时返回ErrConfiguration
func (o *Options) Validate() error {
	hasInterval := o.Interval != 0
	hasFixed := len(o.FixedLevels) > 0
	switch {
	case hasInterval && hasFixed:
		return configErr("both interval (%v) and fixed levels given", o.Interval)
	case !hasInterval && !hasFixed:
		return configErr("neither interval nor fixed levels given")
	case hasInterval && (o.Interval < 0 || math.IsNaN(o.Interval) || math.IsInf(o.Interval, 0)):
		return configErr("interval must be a positive number, got %v", o.Interval)
	case math.IsNaN(o.Base) || math.IsInf(o.Base, 0):
		return configErr("invalid level base %v", o.Base)
	}
	for _, l := range append(append([]float64{}, o.FixedLevels...), o.ExceedLevels...) {
		if math.IsNaN(l) || math.IsInf(l, 0) {
			return configErr("invalid level %v", l)
		}
	}
	if o.NoData != nil && math.IsInf(*o.NoData, 0) {
		return configErr("invalid nodata %v", *o.NoData)
	}
	if err := o.Smooth.validate(); err != nil {
		return err
	}
	return o.Schema().validate()
}

func (s *SmoothOptions) validate() error {
	if s.Cycles < 0 {
		return configErr("smooth cycles must be >= 0, got %d", s.Cycles)
	}
	if s.Cycles == 0 {
		return nil
	}
	if s.LookAhead < 1 {
		return configErr("smooth look ahead must be >= 1, got %d", s.LookAhead)
	}
	if !(s.Slide >= 0 && s.Slide <= 1) {
		return configErr("smooth slide must be in [0,1], got %v", s.Slide)
	}
	if s.MinPoints < 0 {
		return configErr("smooth min points must be >= 0, got %d", s.MinPoints)
	}
	return nil
}

// 确定本次生成的字段布局
func (o *Options) Schema() Schema {
	s := Schema{
		IDField:      o.IDField,
		ElevField:    o.ElevField,
		ElevMinField: o.ElevMinField,
		ElevMaxField: o.ElevMaxField,
		Names:        o.FieldNames.withDefaults(),
		Polygonize:   o.Polygonize,
		ThreeD:       o.ThreeD && !o.Polygonize,
	}
	if s.Polygonize {
		s.ElevField = -1
	} else {
		s.ElevMinField, s.ElevMaxField = -1, -1
	}
	return s
}

// 在DefaultOptions基础上解析GDAL风格的KEY=VALUE参数
func ParseOptions(kvs []string) (o Options, err error) {
	o = DefaultOptions()
	err = o.Apply(kvs)
	return
}

// 将KEY=VALUE参数设置到o
func (o *Options) Apply(kvs []string) (err error) {
	for _, kv := range kvs {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return configErr("option %q is not KEY=VALUE", kv)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if err = o.set(key, val); err != nil {
			return
		}
	}
	return
}

func (o *Options) set(key, val string) (err error) {
	switch key {
	case "LEVEL_INTERVAL":
		o.Interval, err = parseFloat(key, val)
	case "LEVEL_BASE":
		o.Base, err = parseFloat(key, val)
	case "LEVEL_EXP_BASE":
		err = configErr("%s is not supported", key)
	case "FIXED_LEVELS":
		o.FixedLevels, err = ParseLevels(val)
	case "EXCEED_LEVELS":
		o.ExceedLevels, err = ParseLevels(val)
	case "NODATA":
		var v float64
		if v, err = parseFloat(key, val); err == nil {
			o.NoData = &v
		}
	case "ID_FIELD":
		o.IDField, err = parseInt(key, val)
	case "ELEV_FIELD":
		o.ElevField, err = parseInt(key, val)
	case "ELEV_FIELD_MIN":
		o.ElevMinField, err = parseInt(key, val)
	case "ELEV_FIELD_MAX":
		o.ElevMaxField, err = parseInt(key, val)
	case "ID_BASE":
		var v int
		v, err = parseInt(key, val)
		o.IDBase = int64(v)
	case "POLYGONIZE":
		o.Polygonize, err = parseBool(key, val)
	case "THREE_D", "3D":
		o.ThreeD, err = parseBool(key, val)
	case "ELEV_SMOOTH_CYCLES":
		o.Smooth.Cycles, err = parseInt(key, val)
	case "ELEV_SMOOTH_LOOK_AHEAD":
		o.Smooth.LookAhead, err = parseInt(key, val)
	case "ELEV_SMOOTH_SLIDE":
		o.Smooth.Slide, err = parseFloat(key, val)
	case "ELEV_SMOOTH_LOOP_SUPPORT":
		o.Smooth.LoopSupport, err = parseBool(key, val)
	case "ELEV_SMOOTH_MIN_POINTS":
		o.Smooth.MinPoints, err = parseInt(key, val)
	default:
		err = configErr("unknown option %s", key)
	}
	return
}

// 解析逗号分隔的高程列表，如"10,20,25"
func ParseLevels(s string) (levels []float64, err error) {
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		var v float64
		if v, err = strconv.ParseFloat(f, 64); err != nil {
			err = configErr("invalid level %q", f)
			return
		}
		levels = append(levels, v)
	}
	return
}

func parseFloat(key, val string) (float64, error) {
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, configErr("%s: invalid number %q", key, val)
	}
	return v, nil
}

func parseInt(key, val string) (int, error) {
	v, err := strconv.Atoi(val)
	if err != nil {
		return 0, configErr("%s: invalid integer %q", key, val)
	}
	return v, nil
}

func parseBool(key, val string) (bool, error) {
	switch strings.ToUpper(val) {
	case "YES", "TRUE", "ON", "1":
		return true, nil
	case "NO", "FALSE", "OFF", "0":
		return false, nil
	}
	return false, configErr("%s: invalid boolean %q", key, val)
}
