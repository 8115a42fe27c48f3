// Package envcfg centralizes the environment variables this gateway reads,
// the way the teacher's internal/config centralizes its JSON config reads —
// except every source here is os.Getenv, since this server carries no
// persistent configuration file.
package envcfg

import (
	"os"
	"strconv"
	"strings"
)

// Bool is a tri-state parse result for an environment-variable boolean.
type Bool int

const (
	// Unset means the variable was empty or absent.
	Unset Bool = iota
	// True means the variable parsed to a truthy value.
	True
	// False means the variable parsed to a falsy value.
	False
	// Invalid means the variable was set to something not in either set.
	Invalid
)

var truthy = map[string]bool{
	"1": true, "true": true, "yes": true, "y": true,
	"on": true, "t": true, "enable": true, "enabled": true,
}

var falsy = map[string]bool{
	"0": true, "false": true, "no": true, "n": true,
	"off": true, "f": true, "disable": true, "disabled": true,
}

// ParseBool implements the universal truthy/falsy vocabulary shared by every
// env-var boolean in this gateway: case-insensitive, trimmed.
func ParseBool(raw string) Bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Unset
	}
	if truthy[v] {
		return True
	}
	if falsy[v] {
		return False
	}
	return Invalid
}

// LookupBool reads name from the environment and parses it with ParseBool.
func LookupBool(name string) (Bool, string) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return Unset, raw
	}
	return ParseBool(raw), raw
}

// Get returns the raw string value of name, or def if unset or empty.
func Get(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}

// GetUint64 parses name as a base-10 unsigned integer. present is false if
// the variable is unset/empty (not an error — caller supplies the default);
// parseErr is true if it is set but unparseable (caller should warn).
func GetUint64(name string) (value uint64, present bool, parseErr bool) {
	raw, ok := os.LookupEnv(name)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return 0, false, false
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, true, true
	}
	return n, true, false
}

// GetFloat64 parses name as a float64, returning def if unset/empty/unparseable.
func GetFloat64(name string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return f
}

// GetInt parses name as an int, returning def if unset/empty/unparseable.
func GetInt(name string, def int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
