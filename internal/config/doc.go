// Package config loads, parses and validates application settings from
// environment variables, an optional .env file and an optional config.yaml.
// Components receive typed settings from here rather than reading the
// environment themselves.
package config
