package gdalcontour

import (
	"fmt"
	"sync"

	"github.com/wgdzlh/gdalcontour/log"

	gdal "github.com/airbusgeo/godal"
	"go.uber.org/zap"
)

var registerOnce sync.Once

func registerRasterDrivers() {
	registerOnce.Do(gdal.RegisterAll)
}

// RasterBand 将GDAL栅格的一个波段包装为contour.Raster
type RasterBand struct {
	gdal.Band
	Dataset *gdal.Dataset
	owned   bool
	width   int
	height  int
	gt      [6]float64
}

// 打开栅格并获取第bandNo个波段（从1开始），使用完需Close
func (g *GdalToolbox) OpenRasterBand(tif string, bandNo int) (rb *RasterBand, err error) {
	ds, err := gdal.Open(tif, gdal.RasterOnly())
	if err != nil {
		log.Error(g.logTag+"open tif failed", zap.String("tif", tif), zap.Error(err))
		err = fmt.Errorf("%w: %s", ErrInvalidTif, tif)
		return
	}
	if rb, err = NewRasterBand(ds, bandNo); err != nil {
		log.Error(g.logTag+"get tif band failed", zap.String("tif", tif), zap.Int("band", bandNo), zap.Error(err))
		ds.Close()
		return
	}
	rb.owned = true
	log.Info(g.logTag+"open tif band", zap.String("tif", tif), zap.Int("band", bandNo), zap.Int("width", rb.width), zap.Int("height", rb.height))
	return
}

// 包装已打开数据集的波段，数据集由调用方关闭
func NewRasterBand(ds *gdal.Dataset, bandNo int) (rb *RasterBand, err error) {
	bands := ds.Bands()
	if bandNo < 1 || bandNo > len(bands) {
		err = fmt.Errorf("%w: %d of %d", ErrWrongBand, bandNo, len(bands))
		return
	}
	band := bands[bandNo-1]
	st := band.Structure()
	rb = &RasterBand{
		Band:    band,
		Dataset: ds,
		width:   st.SizeX,
		height:  st.SizeY,
	}
	if rb.gt, err = ds.GeoTransform(); err != nil {
		// 无地理参考时按像素坐标输出
		rb.gt = [6]float64{0, 1, 0, 0, 0, 1}
		err = nil
	}
	return
}

func (rb *RasterBand) Size() (int, int) {
	return rb.width, rb.height
}

func (rb *RasterBand) ReadRow(row int, buf []float64) error {
	if err := rb.Band.Read(0, row, buf[:rb.width], rb.width, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrTifReadFailed, err)
	}
	return nil
}

func (rb *RasterBand) NoData() (float64, bool) {
	return rb.Band.NoData()
}

func (rb *RasterBand) GeoTransform() [6]float64 {
	return rb.gt
}

func (rb *RasterBand) Projection() string {
	return rb.Dataset.Projection()
}

func (rb *RasterBand) Close() {
	if rb.owned && rb.Dataset != nil {
		rb.Dataset.Close()
		rb.Dataset = nil
	}
}

// 由行数据创建内存栅格（Float64单波段），用于测试和嵌入调用
func NewMemRasterBand(rows [][]float64, gt [6]float64, nodata *float64) (rb *RasterBand, err error) {
	registerRasterDrivers()
	h := len(rows)
	if h == 0 || len(rows[0]) == 0 {
		err = ErrInvalidTif
		return
	}
	w := len(rows[0])
	ds, err := gdal.Create(gdal.Memory, "", 1, gdal.Float64, w, h)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			ds.Close()
		}
	}()
	buf := make([]float64, 0, w*h)
	for _, row := range rows {
		buf = append(buf, row[:w]...)
	}
	band := ds.Bands()[0]
	if err = band.Write(0, 0, buf, w, h); err != nil {
		return
	}
	if err = ds.SetGeoTransform(gt); err != nil {
		return
	}
	if nodata != nil {
		if err = band.SetNoData(*nodata); err != nil {
			return
		}
	}
	if rb, err = NewRasterBand(ds, 1); err != nil {
		return
	}
	rb.owned = true
	return
}
