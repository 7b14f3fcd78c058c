// Package config defines the settings model shared by every install step.
//
// A [Schema] is an ordered list of [Setting] values, each with a type,
// an optional validation pattern, a default, and required/sensitive flags.
// Resolving a schema produces a [Record], the flat name-to-value map that
// is persisted to the env file and the structured settings file.
//
// Overrides supplied on the command line, through ADAPT_INSTALL_* environment
// variables, or in a values file are merged by [LoadOverrides]. Viper stays
// inside this package; callers only see the explicit [Overrides] map.
package config
