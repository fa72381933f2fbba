package regions

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/geofencer/internal/model"
)

// LoadGeoJSON reads a GeoJSON FeatureCollection of Point features. Each
// feature must carry a numeric "radius" property (meters); the region id
// comes from an "id" or "name" property, falling back to the feature id.
func LoadGeoJSON(path string) ([]model.Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "regions: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "regions: parse geojson %s", path)
	}

	regions := make([]model.Region, 0, len(fc.Features))
	for i, feat := range fc.Features {
		point, ok := feat.Geometry.(*geom.Point)
		if !ok {
			return nil, eris.Errorf("regions: feature %d is not a Point geometry", i)
		}
		coords := point.Coords()

		radius, ok := numericProperty(feat.Properties, "radius")
		if !ok {
			return nil, eris.Errorf("regions: feature %d is missing a numeric radius property", i)
		}

		id := stringProperty(feat.Properties, "id")
		if id == "" {
			id = stringProperty(feat.Properties, "name")
		}
		if id == "" {
			id = feat.ID
		}

		regions = append(regions, model.Region{
			ID: id,
			Center: model.Coordinate{
				Latitude:  coords.Y(),
				Longitude: coords.X(),
			},
			Radius: radius,
		})
	}

	if err := validateAll(regions); err != nil {
		return nil, err
	}
	return regions, nil
}

func numericProperty(props map[string]any, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func stringProperty(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	if v, ok := props[key]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
