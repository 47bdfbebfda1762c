package kinds

import (
	"context"

	"github.com/JonMunkholm/placemap/internal/core"
)

const placeRowError = "Missing required fields or invalid coordinates"

func init() {
	registerPlaces()
}

func registerPlaces() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Kind:  core.KindPlace,
			Table: "locations",
			Label: "Listings",
			Columns: []string{
				"name", "description", "website", "category", "image",
				"address", "phone", "latitude", "longitude",
			},
			RowErrorMessage:          placeRowError,
			UnsupportedFormatMessage: "Only .csv or .xlsx files supported",
			FailureMessage:           "Failed to import listings",
			RejectWhenNoValidRows:    true,
		},
		Validate: func(raw core.RawRow) (any, *core.RowError) {
			rec, rowErr := ValidatePlaceRow(raw)
			if rowErr != nil {
				return nil, rowErr
			}
			return rec, nil
		},
		Resolve: func(ctx context.Context, store core.Store, records []any) (int, error) {
			return core.ResolveCategories(ctx, store, toPlaces(records))
		},
		Write: func(ctx context.Context, store core.Store, records []any) (int64, error) {
			return store.InsertPlaces(ctx, toPlaces(records))
		},
	})
}

// ValidatePlaceRow checks one place row. Name, category and address must be
// present, and both coordinates must parse as finite numbers.
func ValidatePlaceRow(raw core.RawRow) (core.PlaceRecord, *core.RowError) {
	rec := core.PlaceRecord{
		Name:        raw.Get("name"),
		Description: raw.Get("description"),
		Website:     raw.Get("website"),
		Category:    raw.Get("category"),
		Image:       raw.Get("image"),
		Address:     raw.Get("address"),
		Phone:       raw.Get("phone"),
	}

	violations := core.CheckStruct(rec)

	var ok bool
	if rec.Latitude, ok = core.ParseCoordinate(raw.Get("latitude")); !ok {
		violations = append(violations, core.FieldViolation{
			Field: "Latitude", Value: raw.Get("latitude"), Message: "finite number",
		})
	}
	if rec.Longitude, ok = core.ParseCoordinate(raw.Get("longitude")); !ok {
		violations = append(violations, core.FieldViolation{
			Field: "Longitude", Value: raw.Get("longitude"), Message: "finite number",
		})
	}

	if len(violations) > 0 {
		return core.PlaceRecord{}, core.NewRowError(raw, placeRowError, violations)
	}
	return rec, nil
}

func toPlaces(records []any) []core.PlaceRecord {
	out := make([]core.PlaceRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.(core.PlaceRecord))
	}
	return out
}
