// Package model defines shared data types used across the pricing service.
//
// Conventions:
//   - Prices: float64 EUR, always > 0 once stored; 0 means unresolved
//   - Keys: normalized market hash names (see internal/normalize)
//   - IDs: uuid.UUID for catalog items and refresh runs
package model
