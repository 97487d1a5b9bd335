package config

import "os"

// ExpandEnv expands ${VAR} and $VAR references in a raw config value using
// the standard shell-style syntax. Missing variables expand to the empty
// string; validation is responsible for catching required fields left empty.
func ExpandEnv(raw string) string {
	return os.ExpandEnv(raw)
}
