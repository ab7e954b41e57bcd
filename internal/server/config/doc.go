// Package config holds the tinykv-server configuration schema.
//
// Default supplies the baseline, internal/infra/confloader layers the YAML
// file, .env files, TINYKV_* variables and flags on top, and Verify rejects
// the result if any setting is unusable.
package config
