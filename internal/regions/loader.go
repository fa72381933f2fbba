// Package regions loads geofence region definitions from files.
//
// Supported formats are GeoJSON point features, ESRI shapefiles, XLSX
// spreadsheets, and YAML documents. Every loader returns validated
// model.Region values; a file containing any invalid region fails as a
// whole.
package regions

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geofencer/internal/model"
)

// ErrUnsupportedFormat is returned when a file extension has no loader.
var ErrUnsupportedFormat = eris.New("regions: unsupported file format")

// Load reads regions from path, dispatching on the file extension.
func Load(path string) ([]model.Region, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return LoadGeoJSON(path)
	case ".shp":
		return LoadShapefile(path)
	case ".xlsx":
		return LoadXLSX(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "regions: %s", path)
	}
}

// validateAll checks every region and rejects duplicate ids within the file.
func validateAll(regions []model.Region) error {
	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return eris.Wrapf(err, "regions: region %q", r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return eris.Errorf("regions: duplicate region id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
