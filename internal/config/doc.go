// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Map regions are keyed by an enumerated tag (ireland, dublin, cork) and resolve to a
// plain record of output directory, centre point and zoom.
package config
