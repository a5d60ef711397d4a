// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config.yaml file. It provides
// type-safe access to the settings needed by the server while keeping
// configuration details separate from request handling.
package config
