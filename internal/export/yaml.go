package export

import (
	"bytes"
	"fmt"

	"github.com/alexanderramin/itinera/internal/domain"
	"gopkg.in/yaml.v3"
)

type yamlItinerary struct {
	Journey     string    `yaml:"journey"`
	Destination string    `yaml:"destination"`
	Origin      string    `yaml:"origin,omitempty"`
	Style       string    `yaml:"style"`
	Status      string    `yaml:"status"`
	Start       string    `yaml:"start,omitempty"`
	Nights      int       `yaml:"nights"`
	Proposal    string    `yaml:"proposal"`
	Summary     string    `yaml:"summary,omitempty"`
	Days        []yamlDay `yaml:"days"`
}

type yamlDay struct {
	Day         int            `yaml:"day"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description,omitempty"`
	Planned     bool           `yaml:"planned"`
	Activities  []yamlActivity `yaml:"activities,omitempty"`
}

type yamlActivity struct {
	Slot        string `yaml:"slot"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description"`
}

// YAML renders the itinerary as a YAML document for other tools to read.
// Placeholder days are listed with planned: false and no activities.
func YAML(j *domain.Journey) (string, error) {
	p, ok := j.Itinerary()
	if !ok || len(p.Days) == 0 {
		return "", ErrNothingToExport
	}

	doc := yamlItinerary{
		Journey:     j.Name,
		Destination: j.Destination,
		Origin:      j.Origin,
		Style:       string(j.Style),
		Status:      string(j.Status),
		Nights:      len(p.Days) - 1,
		Proposal:    p.Name,
		Summary:     p.Summary,
	}
	if j.StartDate != nil {
		doc.Start = j.StartDate.Format("2006-01-02")
	}
	for _, d := range p.Days {
		yd := yamlDay{Day: d.Number, Title: d.Title, Description: d.Description, Planned: !d.IsPlaceholder()}
		if yd.Planned {
			for _, a := range d.Activities {
				yd.Activities = append(yd.Activities, yamlActivity{Slot: string(a.Time), Name: a.Name, Description: a.Description})
			}
		}
		doc.Days = append(doc.Days, yd)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding yaml: %w", err)
	}
	return buf.String(), nil
}
