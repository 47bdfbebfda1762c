// Package kinds registers the category and place import definitions with the
// core registry. Import this package for its side effects.
package kinds

