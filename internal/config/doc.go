// Package config defines the application configuration model and loads it
// from environment variables.
package config
