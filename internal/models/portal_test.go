package models

import "testing"

func sampleClient() ClientData {
	return ClientData{
		ClientEmail: "cliente@exemplo.com",
		Professionals: []Professional{
			{ProfessionalID: "prof-1", Services: []Service{
				{ServiceID: "service-1", ServiceType: ServicePersonal, Spreadsheets: []SheetData{
					{SheetID: "a", Data: Grid{Row{Text("h")}, Row{Text("x")}}},
				}},
			}},
			{ProfessionalID: "prof-2", Services: []Service{
				{ServiceID: "service-2", ServiceType: ServiceNutrition, Spreadsheets: []SheetData{{SheetID: "b"}, {SheetID: "c"}}},
			}},
		},
	}
}

// TestFindService verifies lookup by ID returns pointers into the document.
func TestFindService(t *testing.T) {
	c := sampleClient()
	p, s := c.FindService("service-2")
	if p == nil || s == nil {
		t.Fatal("service-2 not found")
	}
	if p.ProfessionalID != "prof-2" {
		t.Errorf("professional = %q, want prof-2", p.ProfessionalID)
	}
	s.ServiceName = "edited"
	if c.Professionals[1].Services[0].ServiceName != "edited" {
		t.Error("FindService returned a copy, want a pointer into the document")
	}
	if _, s := c.FindService("missing"); s != nil {
		t.Error("missing service found")
	}
}

// TestCountSpreadsheets verifies totals and row counts are recomputed.
func TestCountSpreadsheets(t *testing.T) {
	c := sampleClient()
	c.CountSpreadsheets()
	if c.TotalSpreadsheets != 3 {
		t.Errorf("TotalSpreadsheets = %d, want 3", c.TotalSpreadsheets)
	}
	if got := c.Professionals[0].Services[0].Spreadsheets[0].RowCount; got != 2 {
		t.Errorf("RowCount = %d, want 2", got)
	}
}

// TestParseServiceType verifies unknown tags map to other.
func TestParseServiceType(t *testing.T) {
	cases := map[string]ServiceType{
		"personal": ServicePersonal,
		"nutricao": ServiceNutrition,
		"coach":    ServiceCoach,
		"other":    ServiceOther,
		"yoga":     ServiceOther,
		"":         ServiceOther,
	}
	for in, want := range cases {
		if got := ParseServiceType(in); got != want {
			t.Errorf("ParseServiceType(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestReplaceService verifies a service is swapped in place and totals follow.
func TestReplaceService(t *testing.T) {
	c := sampleClient()
	ok := c.ReplaceService(Service{ServiceID: "service-2", ServiceName: "Dieta", Spreadsheets: []SheetData{{SheetID: "b"}}})
	if !ok {
		t.Fatal("ReplaceService returned false")
	}
	if c.Professionals[1].Services[0].ServiceName != "Dieta" {
		t.Error("service not replaced")
	}
	if c.TotalSpreadsheets != 2 {
		t.Errorf("TotalSpreadsheets = %d, want 2", c.TotalSpreadsheets)
	}
	if c.ReplaceService(Service{ServiceID: "missing"}) {
		t.Error("ReplaceService of missing service returned true")
	}
}
