// Package config loads viewbuffer settings from YAML files. Missing keys keep
// the values from Default, so a file only needs to list what it changes.
package config
