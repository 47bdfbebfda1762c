package kinds

import (
	"context"

	"github.com/JonMunkholm/placemap/internal/core"
)

const categoryRowError = "Invalid or missing fields"

func init() {
	registerCategories()
}

func registerCategories() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Kind:                     core.KindCategory,
			Table:                    "categories",
			Label:                    "Categories",
			Columns:                  []string{"name", "icon", "color"},
			RowErrorMessage:          categoryRowError,
			UnsupportedFormatMessage: "Only .csv or .xlsx files are supported",
			FailureMessage:           "Server error during import",
		},
		Validate: func(raw core.RawRow) (any, *core.RowError) {
			rec, rowErr := ValidateCategoryRow(raw)
			if rowErr != nil {
				return nil, rowErr
			}
			return rec, nil
		},
		Write: func(ctx context.Context, store core.Store, records []any) (int64, error) {
			return store.InsertCategories(ctx, toCategories(records))
		},
	})
}

// ValidateCategoryRow checks one category row. Name and icon must be
// present and color must be #RGB or #RRGGBB.
func ValidateCategoryRow(raw core.RawRow) (core.CategoryRecord, *core.RowError) {
	rec := core.CategoryRecord{
		Name:  raw.Get("name"),
		Icon:  raw.Get("icon"),
		Color: raw.Get("color"),
	}
	if violations := core.CheckStruct(rec); len(violations) > 0 {
		return core.CategoryRecord{}, core.NewRowError(raw, categoryRowError, violations)
	}
	return rec, nil
}

func toCategories(records []any) []core.CategoryRecord {
	out := make([]core.CategoryRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.(core.CategoryRecord))
	}
	return out
}
