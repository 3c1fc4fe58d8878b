package upload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/claude/clientportal/internal/models"
)

// Manifest describes one client's document: who the professionals are, which
// services they provide and which workbooks back each service.
type Manifest struct {
	ClientEmail   string                 `yaml:"client_email"`
	ClientName    string                 `yaml:"client_name"`
	Professionals []ManifestProfessional `yaml:"professionals"`
}

type ManifestProfessional struct {
	ID       string            `yaml:"id"`
	Email    string            `yaml:"email"`
	Name     string            `yaml:"name"`
	Photo    string            `yaml:"photo"`
	Services []ManifestService `yaml:"services"`
}

type ManifestService struct {
	ID        string             `yaml:"id"`
	Name      string             `yaml:"name"`
	Type      string             `yaml:"type"`
	Workbooks []ManifestWorkbook `yaml:"workbooks"`
}

// ManifestWorkbook is either a local file (Path, .xlsx or .csv) whose grids
// are uploaded, or a Google Sheets URL that the server fetches on refresh.
// Sheets selects tabs; empty means every visible tab of a local workbook, or
// the first tab of a URL.
type ManifestWorkbook struct {
	Path   string   `yaml:"path"`
	URL    string   `yaml:"url"`
	Sheets []string `yaml:"sheets"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.ClientEmail == "" {
		return fmt.Errorf("client_email is required")
	}
	seen := map[string]bool{}
	for i, p := range m.Professionals {
		if p.Name == "" {
			return fmt.Errorf("professionals[%d]: name is required", i)
		}
		for j, s := range p.Services {
			if s.ID == "" {
				return fmt.Errorf("professionals[%d].services[%d]: id is required", i, j)
			}
			if seen[s.ID] {
				return fmt.Errorf("duplicate service id %q", s.ID)
			}
			seen[s.ID] = true
			for k, wb := range s.Workbooks {
				if (wb.Path == "") == (wb.URL == "") {
					return fmt.Errorf("service %q workbooks[%d]: exactly one of path or url is required", s.ID, k)
				}
			}
		}
	}
	return nil
}

// skeleton returns the document without any spreadsheets.
func (m *Manifest) skeleton() models.ClientData {
	c := models.ClientData{
		ClientEmail:   m.ClientEmail,
		ClientName:    m.ClientName,
		Professionals: []models.Professional{},
	}
	for _, p := range m.Professionals {
		prof := models.Professional{
			ProfessionalID:    p.ID,
			ProfessionalEmail: p.Email,
			ProfessionalName:  p.Name,
			ProfessionalPhoto: p.Photo,
			Services:          []models.Service{},
		}
		for _, s := range p.Services {
			name := s.Name
			if name == "" {
				name = s.ID
			}
			prof.Services = append(prof.Services, models.Service{
				ServiceID:    s.ID,
				ServiceName:  name,
				ServiceType:  models.ParseServiceType(s.Type),
				Spreadsheets: []models.SheetData{},
			})
		}
		c.Professionals = append(c.Professionals, prof)
	}
	return c
}
