package gdalcontour

import "errors"

var (
	ErrGdalDriverCreate  = errors.New("gdal driver create err")
	ErrGdalLayerCreate   = errors.New("gdal layer create err")
	ErrVoidSrid          = errors.New("gdal raster with void srid")
	ErrGdalWrongGeoType  = errors.New("gdal wrong geo type")
	ErrInvalidTif        = errors.New("invalid tif")
	ErrWrongBand         = errors.New("tif band not found")
	ErrTifReadFailed     = errors.New("tif read failed")
	ErrInvalidAttrFilter = errors.New("invalid attribute filter")
)
