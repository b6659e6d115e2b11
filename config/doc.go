// Package config loads bridge options.
//
// Options start from DefaultOptions, are overlaid by a YAML file and then by
// environment variables prefixed with OSCBRIDGE_ (for example
// OSCBRIDGE_RECEIVERS=8000,8001 or OSCBRIDGE_SENDERS=127.0.0.1:9000), and are
// validated last.
package config
