// Package cmd implements the command-line interface for consultcal.
//
// This package provides the following commands:
//   - serve: Start the booking HTTP API
//   - slots: Print the free slots for a date
//   - auth-url: Print the Google consent URL for a refresh token
//   - auth-exchange: Exchange a consent code for a refresh token
//   - version: Display version information
//
// Settings are resolved by viper from flags, CONSULTCAL_* environment
// variables, an optional --config YAML file and defaults, in that order.
package cmd
