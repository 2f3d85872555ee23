//go:build !diesel2d_debug

package diesel2d

// DefaultValidationMode is the validation mode used when none is configured.
// Build with -tags diesel2d_debug to enable validation by default.
const DefaultValidationMode = ValidationDisabled
