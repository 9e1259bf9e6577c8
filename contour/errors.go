package contour

import "errors"

var (
	// 等值线参数错误，在读取栅格前返回
	ErrConfiguration = errors.New("contour configuration error")
	// 栅格读取失败，中止生成
	ErrRasterAccess = errors.New("raster access error")
	// 输出图层拒绝写入要素，中止生成
	ErrSinkWrite = errors.New("sink write error")
)
