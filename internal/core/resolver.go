package core

import (
	"context"
	"fmt"
)

// Categories created on behalf of a place import always get these values.
const (
	DefaultCategoryIcon  = "MapPin"
	DefaultCategoryColor = "#6B7280"
)

// MissingCategoryNames returns the distinct category names referenced by
// places that are not in existing, in first-seen order.
func MissingCategoryNames(places []PlaceRecord, existing []string) []string {
	have := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		have[name] = struct{}{}
	}

	var missing []string
	for _, name := range distinctCategoryNames(places) {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// ResolveCategories makes sure every category referenced by places exists.
// Missing names are created in one batched, conflict-safe insert with the
// default icon and color, so two runs racing on the same new name leave
// exactly one row. Returns the number of categories this call created.
func ResolveCategories(ctx context.Context, store Store, places []PlaceRecord) (int, error) {
	names := distinctCategoryNames(places)
	if len(names) == 0 {
		return 0, nil
	}

	existing, err := store.ExistingCategoryNames(ctx, names)
	if err != nil {
		return 0, fmt.Errorf("check existing categories: %w", err)
	}

	missing := MissingCategoryNames(places, existing)
	if len(missing) == 0 {
		return 0, nil
	}

	records := make([]CategoryRecord, len(missing))
	for i, name := range missing {
		records[i] = CategoryRecord{
			Name:  name,
			Icon:  DefaultCategoryIcon,
			Color: DefaultCategoryColor,
		}
	}

	created, err := store.InsertCategories(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("create missing categories: %w", err)
	}
	return int(created), nil
}

func distinctCategoryNames(places []PlaceRecord) []string {
	seen := make(map[string]struct{}, len(places))
	var names []string
	for _, p := range places {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		names = append(names, p.Category)
	}
	return names
}
