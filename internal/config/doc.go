// Package config holds asinbot's runtime settings.
//
// Settings come from three layers applied in order: built-in defaults
// (NewConfig), an optional YAML file (.asinbot, see FindConfigFile), and
// the environment, including a .env file in the working directory.
// CLI flags are applied last by package main.
package config
