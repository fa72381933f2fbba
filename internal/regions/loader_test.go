package regions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/geofencer/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-104.9903, 39.7392]},
			"properties": {"id": "office", "radius": 150}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-105.0, 39.75]},
			"properties": {"name": "warehouse", "radius": 300.5}
		}
	]
}`

func TestLoadGeoJSON(t *testing.T) {
	path := writeFile(t, "regions.geojson", sampleGeoJSON)

	regions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, "office", regions[0].ID)
	assert.InDelta(t, 39.7392, regions[0].Center.Latitude, 1e-9)
	assert.InDelta(t, -104.9903, regions[0].Center.Longitude, 1e-9)
	assert.InDelta(t, 150.0, regions[0].Radius, 1e-9)

	assert.Equal(t, "warehouse", regions[1].ID)
	assert.InDelta(t, 300.5, regions[1].Radius, 1e-9)
}

func TestLoadGeoJSONRejectsNonPoint(t *testing.T) {
	path := writeFile(t, "lines.geojson", `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]},
			"properties": {"id": "route", "radius": 10}
		}]
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a Point")
}

func TestLoadGeoJSONRequiresRadius(t *testing.T) {
	path := writeFile(t, "noradius.geojson", `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [0, 0]},
			"properties": {"id": "office"}
		}]
	}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radius")
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "regions.yaml", `
regions:
  - id: office
    latitude: 39.7392
    longitude: -104.9903
    radius: 150
  - id: warehouse
    latitude: 39.75
    longitude: -105.0
    radius: 300
`)

	regions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "office", regions[0].ID)
	assert.InDelta(t, 300.0, regions[1].Radius, 1e-9)
}

func TestLoadYAMLRejectsInvalidRegion(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
regions:
  - id: office
    latitude: 120
    longitude: 0
    radius: 50
`)

	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrInvalidRegion)
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	path := writeFile(t, "dup.yaml", `
regions:
  - id: office
    latitude: 1
    longitude: 1
    radius: 50
  - id: office
    latitude: 2
    longitude: 2
    radius: 60
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate region id")
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("regions.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadXLSX(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Regions")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"Name", "Lat", "Lon", "Radius"} {
		header.AddCell().SetString(h)
	}
	row := sheet.AddRow()
	row.AddCell().SetString("office")
	row.AddCell().SetFloat(39.7392)
	row.AddCell().SetFloat(-104.9903)
	row.AddCell().SetFloat(150)

	path := filepath.Join(t.TempDir(), "regions.xlsx")
	require.NoError(t, file.Save(path))

	regions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, "office", regions[0].ID)
	assert.InDelta(t, 39.7392, regions[0].Center.Latitude, 1e-6)
	assert.InDelta(t, -104.9903, regions[0].Center.Longitude, 1e-6)
	assert.InDelta(t, 150.0, regions[0].Radius, 1e-6)
}

func TestLoadXLSXMissingColumn(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Regions")
	require.NoError(t, err)
	header := sheet.AddRow()
	for _, h := range []string{"Name", "Lat", "Lon"} {
		header.AddCell().SetString(h)
	}

	path := filepath.Join(t.TempDir(), "partial.xlsx")
	require.NoError(t, file.Save(path))

	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radius column")
}

func TestLoadShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.shp")

	writer, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, writer.SetFields([]shp.Field{
		shp.StringField("NAME", 25),
		shp.FloatField("RADIUS", 16, 4),
	}))
	writer.Write(&shp.Point{X: -104.9903, Y: 39.7392})
	require.NoError(t, writer.WriteAttribute(0, 0, "office"))
	require.NoError(t, writer.WriteAttribute(0, 1, 150.0))
	writer.Write(&shp.Point{X: -105.0, Y: 39.75})
	require.NoError(t, writer.WriteAttribute(1, 0, "warehouse"))
	require.NoError(t, writer.WriteAttribute(1, 1, 300.0))
	writer.Close()

	regions, err := Load(path)
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "office", regions[0].ID)
	assert.InDelta(t, 39.7392, regions[0].Center.Latitude, 1e-6)
	assert.InDelta(t, 150.0, regions[0].Radius, 1e-3)
	assert.Equal(t, "warehouse", regions[1].ID)
}

func TestLoadShapefileMissingRadiusField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noradius.shp")

	writer, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, writer.SetFields([]shp.Field{
		shp.StringField("NAME", 25),
	}))
	writer.Write(&shp.Point{X: 0, Y: 0})
	require.NoError(t, writer.WriteAttribute(0, 0, "office"))
	writer.Close()

	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RADIUS")
}
