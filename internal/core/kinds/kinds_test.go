package kinds

import (
	"testing"

	"github.com/JonMunkholm/placemap/internal/core"
)

func row(number int, values map[string]string) core.RawRow {
	return core.RawRow{Number: number, Values: values}
}

func TestValidateCategoryRow(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]string
		wantErr bool
	}{
		{"valid short hex", map[string]string{"name": "Food", "icon": "Utensils", "color": "#f00"}, false},
		{"valid long hex", map[string]string{"name": "Food", "icon": "Utensils", "color": "#FF0000"}, false},
		{"missing name", map[string]string{"icon": "Utensils", "color": "#f00"}, true},
		{"blank icon", map[string]string{"name": "Food", "icon": "", "color": "#f00"}, true},
		{"named color", map[string]string{"name": "Food", "icon": "Utensils", "color": "red"}, true},
		{"four digit hex", map[string]string{"name": "Food", "icon": "Utensils", "color": "#f00f"}, true},
		{"missing color column", map[string]string{"name": "Food", "icon": "Utensils"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, rowErr := ValidateCategoryRow(row(7, tt.values))
			if tt.wantErr {
				if rowErr == nil {
					t.Fatalf("expected row error, got record %+v", rec)
				}
				if rowErr.Row != 7 {
					t.Errorf("Row = %d, want 7", rowErr.Row)
				}
				if rowErr.Message != "Invalid or missing fields" {
					t.Errorf("Message = %q", rowErr.Message)
				}
				if len(rowErr.Violations) == 0 {
					t.Error("expected violations to be recorded")
				}
				return
			}
			if rowErr != nil {
				t.Fatalf("unexpected row error: %+v", rowErr)
			}
			if rec.Name != tt.values["name"] || rec.Color != tt.values["color"] {
				t.Errorf("record = %+v", rec)
			}
		})
	}
}

func TestValidatePlaceRow(t *testing.T) {
	base := func() map[string]string {
		return map[string]string{
			"name":      "Cafe",
			"category":  "Food",
			"address":   "1 Main St",
			"latitude":  "40.7128",
			"longitude": "-74.0060",
		}
	}

	tests := []struct {
		name    string
		mutate  func(map[string]string)
		wantErr bool
	}{
		{"valid minimal", func(map[string]string) {}, false},
		{"valid with optional fields", func(v map[string]string) {
			v["description"] = "Coffee"
			v["website"] = "https://example.com"
			v["phone"] = "555-0100"
			v["image"] = "cafe.png"
		}, false},
		{"missing name", func(v map[string]string) { delete(v, "name") }, true},
		{"blank category", func(v map[string]string) { v["category"] = "" }, true},
		{"missing address", func(v map[string]string) { delete(v, "address") }, true},
		{"non-numeric latitude", func(v map[string]string) { v["latitude"] = "abc" }, true},
		{"empty longitude", func(v map[string]string) { v["longitude"] = "" }, true},
		{"NaN latitude", func(v map[string]string) { v["latitude"] = "NaN" }, true},
		{"infinite longitude", func(v map[string]string) { v["longitude"] = "+Inf" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := base()
			tt.mutate(values)

			rec, rowErr := ValidatePlaceRow(row(3, values))
			if tt.wantErr {
				if rowErr == nil {
					t.Fatalf("expected row error, got record %+v", rec)
				}
				if rowErr.Row != 3 {
					t.Errorf("Row = %d, want 3", rowErr.Row)
				}
				if rowErr.Message != "Missing required fields or invalid coordinates" {
					t.Errorf("Message = %q", rowErr.Message)
				}
				return
			}
			if rowErr != nil {
				t.Fatalf("unexpected row error: %+v", rowErr)
			}
			if rec.Latitude != 40.7128 || rec.Longitude != -74.006 {
				t.Errorf("coordinates = %v,%v", rec.Latitude, rec.Longitude)
			}
			if rec.Description != values["description"] {
				t.Errorf("Description = %q", rec.Description)
			}
		})
	}
}

func TestValidatePlaceRow_ReportsEveryViolation(t *testing.T) {
	_, rowErr := ValidatePlaceRow(row(2, map[string]string{"latitude": "x"}))
	if rowErr == nil {
		t.Fatal("expected row error")
	}
	// name, category, address, latitude, longitude
	if got := len(rowErr.Violations); got != 5 {
		t.Errorf("violations = %d, want 5: %v", got, rowErr.Violations)
	}
}

func TestRegisteredKinds(t *testing.T) {
	tests := []struct {
		kind        core.Kind
		table       string
		reject422   bool
		hasResolve  bool
		unsupported string
		failure     string
	}{
		{core.KindCategory, "categories", false, false, "Only .csv or .xlsx files are supported", "Server error during import"},
		{core.KindPlace, "locations", true, true, "Only .csv or .xlsx files supported", "Failed to import listings"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			def, ok := core.Get(tt.kind)
			if !ok {
				t.Fatalf("kind %s not registered", tt.kind)
			}
			if def.Info.Table != tt.table {
				t.Errorf("Table = %q, want %q", def.Info.Table, tt.table)
			}
			if def.Info.RejectWhenNoValidRows != tt.reject422 {
				t.Errorf("RejectWhenNoValidRows = %v", def.Info.RejectWhenNoValidRows)
			}
			if (def.Resolve != nil) != tt.hasResolve {
				t.Errorf("Resolve set = %v, want %v", def.Resolve != nil, tt.hasResolve)
			}
			if def.Info.UnsupportedFormatMessage != tt.unsupported {
				t.Errorf("UnsupportedFormatMessage = %q", def.Info.UnsupportedFormatMessage)
			}
			if def.Info.FailureMessage != tt.failure {
				t.Errorf("FailureMessage = %q", def.Info.FailureMessage)
			}
		})
	}

	if got := core.KindCount(); got != 2 {
		t.Errorf("KindCount = %d, want 2", got)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("registering a kind twice should panic")
		}
	}()
	registerCategories()
}
