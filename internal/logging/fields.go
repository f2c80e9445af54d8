package logging

// Standardized attribute keys shared across packages.
const (
	// FieldComponent identifies the subsystem emitting the record. The
	// console handler hoists this into the line prefix.
	FieldComponent = "component"

	// FieldSession is the session name (UUID) a record belongs to.
	FieldSession = "session"

	// FieldState is the fulfillment state a record was emitted from.
	FieldState = "state"

	// FieldVariable is a variable identifier involved in an assignment.
	FieldVariable = "variable"

	// FieldArtifact is a path to an exported artifact.
	FieldArtifact = "artifact"
)
