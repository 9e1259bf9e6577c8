package gdalcontour

import (
	"strconv"
	"strings"
	"sync"

	"github.com/wgdzlh/gdalcontour/log"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

type GdalToolbox struct {
	refMap map[int]gdal.SpatialReference
	rLock  sync.Mutex
	tmpDir string
	logTag string
}

// 由GDAL库C语言创建的内存对象，需要手动调用Destroy回收
type destroyable interface {
	Destroy()
}

// 初始化GDAL工具箱，tmpDir为可选的临时目录路径（未提供的话为当前目录）
func NewGdalToolbox(tmpDir ...string) *GdalToolbox {
	registerRasterDrivers()
	g := &GdalToolbox{
		refMap: map[int]gdal.SpatialReference{},
		logTag: "GdalToolbox:",
	}
	if len(tmpDir) > 0 && tmpDir[0] != "" {
		g.tmpDir = tmpDir[0]
	}
	return g
}

// 获取srid对应的坐标系（可复用，故无需回收）
func (g *GdalToolbox) getSridRef(srid int) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[srid]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromEPSG(srid); err != nil { // 设定坐标系ID
		log.Error(g.logTag+"set ref srid failed", zap.Int("srid", srid), zap.Error(err))
		ref.Destroy()
		return
	}
	// 数据轴次序固定为(经度,纬度)，与栅格仿射变换输出的(x,y)一致
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[srid] = ref
	return
}

// 从栅格的WKT投影获取srid
func (g *GdalToolbox) getSrid(wkt string) (srid int, err error) {
	if wkt == "" {
		err = ErrVoidSrid
		return
	}
	sp := gdal.CreateSpatialReference(wkt)
	defer sp.Destroy()
	rawId, ok := sp.AttrValue("AUTHORITY", 1)
	if !ok {
		if strings.Contains(wkt, "CGCS_2000") || strings.Contains(wkt, "China Geodetic Coordinate System 2000") {
			rawId = strconv.Itoa(CGCS2000_SRID)
		} else {
			err = ErrVoidSrid
			return
		}
	}
	srid, err = strconv.Atoi(rawId)
	log.Info(g.logTag+"got srid from raster", zap.String("id", rawId))
	return
}

// 输出图层的坐标系：srid>0时使用对应EPSG，否则沿用栅格投影；
// 两者不同时返回栅格坐标系作为转换的源坐标系
func (g *GdalToolbox) layerRefs(rb *RasterBand, srid int) (dst gdal.SpatialReference, src *gdal.SpatialReference, err error) {
	rSrid, e := g.getSrid(rb.Projection())
	if srid <= 0 {
		if e != nil {
			log.Info(g.logTag + "raster without srid, output layer has no spatial ref")
			return
		}
		srid = rSrid
	}
	if dst, err = g.getSridRef(srid); err != nil {
		return
	}
	if e == nil && rSrid != srid {
		var ref gdal.SpatialReference
		if ref, err = g.getSridRef(rSrid); err != nil {
			return
		}
		src = &ref
		log.Info(g.logTag+"contours will be transformed", zap.Int("from", rSrid), zap.Int("to", srid))
	}
	return
}

// 获取栅格的srid
func (g *GdalToolbox) GetSridOfRaster(tif string) (srid int, err error) {
	rb, err := g.OpenRasterBand(tif, 1)
	if err != nil {
		return
	}
	defer rb.Close()
	return g.getSrid(rb.Projection())
}

// 释放缓存的坐标系
func (g *GdalToolbox) Close() {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	for srid, ref := range g.refMap {
		ref.Destroy()
		delete(g.refMap, srid)
	}
}
