package model

import (
	"strings"
)

const (
	AppName = "gcesync"

	SourceGCE  = "gce"
	SourceYaml = "yaml"

	LogLevelInfo  = "info"
	LogLevelDebug = "debug"
	LogLevelTrace = "trace"

	// DefaultManagedGroup is the asset group every imported server is placed in,
	// only servers in this group are considered for deletion.
	DefaultManagedGroup = "GCE_crawling"

	// DefaultGroupLabel is the instance label whose value is appended to the server groups.
	DefaultGroupLabel = "group"
)

// SourceKinds returns the supported cloud inventory sources.
func SourceKinds() []string { return []string{SourceGCE, SourceYaml} }

// SourceKind returns the inventory source kind for the --source parameter value.
func SourceKind(source string) string {
	if strings.HasSuffix(source, ".yml") || strings.HasSuffix(source, ".yaml") {
		return SourceYaml
	}

	return source
}

// Mode is the reconcile mode selected on the command line.
type Mode string

const (
	ModeReadOnly   Mode = "read-only"
	ModeImportOnly Mode = "import-only"
	ModeDeleteOnly Mode = "delete-only"
	ModeAll        Mode = "all"
)

// ModeFromFlags returns the Mode for the mutually exclusive sync flags.
func ModeFromFlags(importOnly, deleteOnly, all bool) Mode {
	switch {
	case importOnly:
		return ModeImportOnly
	case deleteOnly:
		return ModeDeleteOnly
	case all:
		return ModeAll
	default:
		return ModeReadOnly
	}
}

// PlansImports returns true when the mode computes the servers to import.
func (m Mode) PlansImports() bool { return m != ModeDeleteOnly }

// PlansDeletes returns true when the mode computes the servers to delete.
func (m Mode) PlansDeletes() bool { return m != ModeImportOnly }

// Applies returns true when the planned changes are to be written to the asset store.
func (m Mode) Applies() bool { return m != ModeReadOnly }
