// Package config loads and validates the priced YAML configuration.
//
// Files may reference environment variables with ${VAR} syntax; they are
// expanded before parsing. Defaults are applied for every optional field so
// a minimal config only needs the database section and the provider URLs.
package config
