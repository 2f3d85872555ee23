//go:build diesel2d_debug

package diesel2d

// DefaultValidationMode is the validation mode used when none is configured.
const DefaultValidationMode = ValidationStandard
