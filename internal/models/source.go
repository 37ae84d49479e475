package models

import "fmt"

// SourceMethod names where the bridge table is loaded from.
type SourceMethod string

const (
	SourceMethodCSV        SourceMethod = "csv"
	SourceMethodPocketBase SourceMethod = "pocketbase"
)

// ValidateSourceMethod checks if the source method is valid
func ValidateSourceMethod(method SourceMethod) error {
	switch method {
	case SourceMethodCSV, SourceMethodPocketBase:
		return nil
	default:
		return fmt.Errorf("invalid source method: %s", method)
	}
}
