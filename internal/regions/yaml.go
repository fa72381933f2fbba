package regions

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geofencer/internal/model"
)

type yamlRegion struct {
	ID        string  `yaml:"id"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Radius    float64 `yaml:"radius"`
}

type yamlFile struct {
	Regions []yamlRegion `yaml:"regions"`
}

// LoadYAML reads regions from a YAML document with a top-level "regions" list.
func LoadYAML(path string) ([]model.Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "regions: read %s", path)
	}

	var doc yamlFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "regions: parse yaml %s", path)
	}

	regions := make([]model.Region, 0, len(doc.Regions))
	for _, r := range doc.Regions {
		regions = append(regions, model.Region{
			ID:     r.ID,
			Center: model.Coordinate{Latitude: r.Latitude, Longitude: r.Longitude},
			Radius: r.Radius,
		})
	}

	if err := validateAll(regions); err != nil {
		return nil, err
	}
	return regions, nil
}
