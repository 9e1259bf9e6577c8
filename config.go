package gdalcontour

const (
	FILE_EXT_SHP        = ".shp"
	FILE_EXT_JSON       = ".json"
	FILE_EXT_GEOJSON    = ".geojson"
	SHAPE_ENCODING      = "UTF-8"
	SHP_DRIVER_NAME     = "ESRI Shapefile"
	MEMORY_DRIVER_NAME  = "Memory"
	GEOJSON_FORMAT      = "GeoJSON"
	ENCODING_OPTION     = "ENCODING=" + SHAPE_ENCODING
	UNIVERSAL_SRID      = 4326
	CGCS2000_SRID       = 4490
	DEFAULT_LAYER_NAME  = "contour"
	DEFAULT_OUTPUT_FILE = "contour" + FILE_EXT_SHP

	TMP_LAYER_NAME = "contour_%s"

	ElevFieldWidth     = 24
	ElevFieldPrecision = 6
)
