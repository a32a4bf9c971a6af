// Package utils contains small helpers shared across the library.
package utils

import "fmt"

// AttributeMap is a bag of loosely typed configuration attributes, as
// decoded from JSON.
type AttributeMap map[string]interface{}

// Has reports whether name is present.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// Float64 returns the named attribute as a float64, or def when the
// attribute is absent. Integers are widened since JSON decoding may
// produce either.
func (am AttributeMap) Float64(name string, def float64) float64 {
	x, has := am[name]
	if !has {
		return def
	}
	switch v := x.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	panic(fmt.Errorf("wanted a float64 for (%s) but got (%v) %T", name, x, x))
}

// String returns the named attribute as a string, or "" when absent.
func (am AttributeMap) String(name string) string {
	x, has := am[name]
	if !has {
		return ""
	}
	if s, ok := x.(string); ok {
		return s
	}
	panic(fmt.Errorf("wanted a string for (%s) but got (%v) %T", name, x, x))
}
