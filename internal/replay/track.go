// Package replay feeds recorded position tracks into a monitoring
// coordinator, standing in for a live platform location service.
package replay

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geofencer/internal/model"
)

// LoadTrack reads a CSV position track. The header must name latitude and
// longitude columns; timestamp (RFC 3339), altitude, accuracy, speed and
// course columns are optional. Missing optional values replay as unknown.
func LoadTrack(path string) ([]model.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "replay: open track %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "replay: read track header %s", path)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	latIdx, ok := cols["latitude"]
	if !ok {
		latIdx, ok = cols["lat"]
	}
	if !ok {
		return nil, eris.New("replay: track has no latitude column")
	}
	lonIdx, ok := cols["longitude"]
	if !ok {
		lonIdx, ok = cols["lon"]
	}
	if !ok {
		return nil, eris.New("replay: track has no longitude column")
	}

	var track []model.Position
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "replay: read track %s", path)
		}
		line++

		pos := model.Position{
			Altitude: model.ValueUnknown,
			Accuracy: model.ValueUnknown,
			Speed:    model.ValueUnknown,
			Course:   model.ValueUnknown,
		}
		pos.Latitude, err = parseField(record, latIdx, line, "latitude")
		if err != nil {
			return nil, err
		}
		pos.Longitude, err = parseField(record, lonIdx, line, "longitude")
		if err != nil {
			return nil, err
		}

		for col, dst := range map[string]*float64{
			"altitude": &pos.Altitude,
			"accuracy": &pos.Accuracy,
			"speed":    &pos.Speed,
			"course":   &pos.Course,
		} {
			idx, ok := cols[col]
			if !ok || idx >= len(record) || strings.TrimSpace(record[idx]) == "" {
				continue
			}
			*dst, err = parseField(record, idx, line, col)
			if err != nil {
				return nil, err
			}
		}

		if idx, ok := cols["timestamp"]; ok && idx < len(record) && strings.TrimSpace(record[idx]) != "" {
			ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[idx]))
			if err != nil {
				return nil, eris.Wrapf(err, "replay: track line %d has invalid timestamp", line)
			}
			pos.Timestamp = ts
		}

		track = append(track, pos)
	}

	if len(track) == 0 {
		return nil, eris.Errorf("replay: track %s has no positions", path)
	}
	return track, nil
}

func parseField(record []string, idx, line int, col string) (float64, error) {
	if idx >= len(record) {
		return 0, eris.Errorf("replay: track line %d is missing %s", line, col)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
	if err != nil {
		return 0, eris.Wrapf(err, "replay: track line %d has invalid %s", line, col)
	}
	return v, nil
}
