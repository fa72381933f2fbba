package regions

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/geofencer/internal/model"
)

// xlsx header synonyms accepted per column.
var xlsxColumns = map[string][]string{
	"id":        {"id", "name", "region"},
	"latitude":  {"latitude", "lat"},
	"longitude": {"longitude", "lon", "lng"},
	"radius":    {"radius", "radius_m"},
}

// LoadXLSX reads regions from the first sheet of a spreadsheet. The first
// row must be a header naming id, latitude, longitude and radius columns.
func LoadXLSX(path string) ([]model.Region, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "regions: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("regions: xlsx %s has no sheets", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("regions: xlsx %s has no header row", path)
	}

	idx, err := mapHeader(sheet.Rows[0])
	if err != nil {
		return nil, err
	}

	var regions []model.Region
	for rowNum, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if blankRow(cells) {
			continue
		}

		lat, err := cellFloat(cells, idx["latitude"], rowNum, "latitude")
		if err != nil {
			return nil, err
		}
		lon, err := cellFloat(cells, idx["longitude"], rowNum, "longitude")
		if err != nil {
			return nil, err
		}
		radius, err := cellFloat(cells, idx["radius"], rowNum, "radius")
		if err != nil {
			return nil, err
		}

		regions = append(regions, model.Region{
			ID:     cellString(cells, idx["id"]),
			Center: model.Coordinate{Latitude: lat, Longitude: lon},
			Radius: radius,
		})
	}

	if err := validateAll(regions); err != nil {
		return nil, err
	}
	return regions, nil
}

func mapHeader(row *xlsx.Row) (map[string]int, error) {
	header := rowToStrings(row)
	idx := make(map[string]int, len(xlsxColumns))
	for col, synonyms := range xlsxColumns {
		for i, cell := range header {
			if matchHeader(cell, synonyms) {
				idx[col] = i
				break
			}
		}
		if _, ok := idx[col]; !ok {
			return nil, eris.Errorf("regions: xlsx header is missing a %s column", col)
		}
	}
	return idx, nil
}

func matchHeader(cell string, synonyms []string) bool {
	name := strings.ToLower(strings.TrimSpace(cell))
	for _, s := range synonyms {
		if name == s {
			return true
		}
	}
	return false
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellString(cells []string, idx int) string {
	if idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func cellFloat(cells []string, idx, rowNum int, col string) (float64, error) {
	text := cellString(cells, idx)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "regions: xlsx row %d has invalid %s %q", rowNum+2, col, text)
	}
	return v, nil
}
