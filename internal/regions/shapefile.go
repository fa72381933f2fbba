package regions

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"

	"github.com/sells-group/geofencer/internal/model"
)

// LoadShapefile reads point records from an ESRI shapefile. The region id
// comes from an ID or NAME attribute and the radius in meters from a
// RADIUS attribute. DBF text is decoded from Latin-1, the format's usual
// legacy encoding.
func LoadShapefile(path string) ([]model.Region, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "regions: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	idIdx, ok := fieldIdx["id"]
	if !ok {
		idIdx, ok = fieldIdx["name"]
	}
	if !ok {
		return nil, eris.New("regions: shapefile has no ID or NAME attribute")
	}
	radiusIdx, ok := fieldIdx["radius"]
	if !ok {
		return nil, eris.New("regions: shapefile has no RADIUS attribute")
	}

	decoder := charmap.ISO8859_1.NewDecoder()
	attribute := func(idx int) (string, error) {
		raw := strings.TrimRight(reader.Attribute(idx), "\x00")
		decoded, err := decoder.String(raw)
		if err != nil {
			return "", eris.Wrap(err, "regions: decode DBF attribute")
		}
		return strings.TrimSpace(decoded), nil
	}

	var regions []model.Region
	record := 0
	for reader.Next() {
		_, shape := reader.Shape()
		point, ok := shape.(*shp.Point)
		if !ok {
			return nil, eris.Errorf("regions: shapefile record %d is not a point", record)
		}

		id, err := attribute(idIdx)
		if err != nil {
			return nil, err
		}
		radiusText, err := attribute(radiusIdx)
		if err != nil {
			return nil, err
		}
		radius, err := strconv.ParseFloat(radiusText, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "regions: shapefile record %d has invalid radius %q", record, radiusText)
		}

		regions = append(regions, model.Region{
			ID: id,
			Center: model.Coordinate{
				Latitude:  point.Y,
				Longitude: point.X,
			},
			Radius: radius,
		})
		record++
	}

	if err := validateAll(regions); err != nil {
		return nil, err
	}
	return regions, nil
}
