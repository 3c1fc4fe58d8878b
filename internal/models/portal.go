package models

import "time"

// ServiceType selects which classifier renders a service's grids.
type ServiceType string

const (
	ServicePersonal  ServiceType = "personal"
	ServiceNutrition ServiceType = "nutricao"
	ServiceCoach     ServiceType = "coach"
	ServiceOther     ServiceType = "other"
)

// ParseServiceType maps a tag to a ServiceType. Unknown tags become
// ServiceOther, which renders the raw grid.
func ParseServiceType(s string) ServiceType {
	switch ServiceType(s) {
	case ServicePersonal, ServiceNutrition, ServiceCoach:
		return ServiceType(s)
	default:
		return ServiceOther
	}
}

// SheetData is one named grid attached to a service.
type SheetData struct {
	SheetID    string    `json:"sheetId"`
	SheetURL   string    `json:"sheetUrl"`
	SheetTitle string    `json:"sheetTitle"`
	Data       Grid      `json:"data"`
	RowCount   int       `json:"rowCount"`
	CreatedAt  time.Time `json:"createdAt"`
	Error      string    `json:"error,omitempty"`
}

// Service is one engagement with a professional, tagged by type.
type Service struct {
	ServiceID    string      `json:"serviceId"`
	ServiceName  string      `json:"serviceName"`
	ServiceType  ServiceType `json:"serviceType"`
	Spreadsheets []SheetData `json:"spreadsheets"`
}

// Professional groups the services a single professional provides.
type Professional struct {
	ProfessionalID    string    `json:"professionalId"`
	ProfessionalEmail string    `json:"professionalEmail"`
	ProfessionalName  string    `json:"professionalName"`
	ProfessionalPhoto string    `json:"professionalPhoto,omitempty"`
	Services          []Service `json:"services"`
}

// ClientData is the full document served to one client.
type ClientData struct {
	ClientEmail       string         `json:"clientEmail"`
	ClientName        string         `json:"clientName"`
	TotalSpreadsheets int            `json:"totalSpreadsheets"`
	Professionals     []Professional `json:"professionals"`
	LastUpdated       time.Time      `json:"lastUpdated"`
}

// FindService returns a pointer into the document for the given service ID,
// along with its professional.
func (c *ClientData) FindService(serviceID string) (*Professional, *Service) {
	for i := range c.Professionals {
		p := &c.Professionals[i]
		for j := range p.Services {
			if p.Services[j].ServiceID == serviceID {
				return p, &p.Services[j]
			}
		}
	}
	return nil, nil
}

// CountSpreadsheets recomputes TotalSpreadsheets and each sheet's RowCount.
func (c *ClientData) CountSpreadsheets() {
	total := 0
	for i := range c.Professionals {
		for j := range c.Professionals[i].Services {
			sheets := c.Professionals[i].Services[j].Spreadsheets
			for k := range sheets {
				sheets[k].RowCount = len(sheets[k].Data)
			}
			total += len(sheets)
		}
	}
	c.TotalSpreadsheets = total
}

// ReplaceService swaps in s for the service with the same ID. It reports
// false when no such service exists.
func (c *ClientData) ReplaceService(s Service) bool {
	_, old := c.FindService(s.ServiceID)
	if old == nil {
		return false
	}
	*old = s
	c.CountSpreadsheets()
	return true
}
