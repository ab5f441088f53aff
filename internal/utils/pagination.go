// Package utils provides small, generic helper functions used across
// different layers of the engine. These utilities are independent of domain
// or business logic.
package utils

import "strconv"

// MaxPageSize caps how many orders a host may render per listing.
const MaxPageSize = 30

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampPageSize forces a listing page size into [1, MaxPageSize]. Hosts pass
// a queue's DefaultOrderNum through this before rendering.
func ClampPageSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
