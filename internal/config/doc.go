// Package config handles YAML configuration loading with environment variable
// substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation, so secrets like the broker refresh token stay in the
// environment (or a .env file) and never land in the config file itself.
package config
