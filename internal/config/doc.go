// Package config loads and validates the YAML configuration of the mdocx
// command. Files are decoded strictly, so a misspelled key is an error rather
// than a silently ignored setting.
package config
