package diesel2d

import (
	"fmt"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// ValidationMode selects whether the Khronos validation layer is enabled
// and how much of its output is reported.
type ValidationMode uint32

const (
	ValidationDisabled ValidationMode = iota
	// ValidationStandard reports errors, warnings and performance warnings.
	ValidationStandard
	// ValidationVerbose additionally reports information and debug messages.
	ValidationVerbose
)

func (m ValidationMode) Enabled() bool {
	return m != ValidationDisabled
}

func (m ValidationMode) String() string {
	switch m {
	case ValidationDisabled:
		return "disabled"
	case ValidationStandard:
		return "standard"
	case ValidationVerbose:
		return "verbose"
	}
	return fmt.Sprintf("ValidationMode(%d)", uint32(m))
}

// ParseValidationMode converts the textual form used in config files.
func ParseValidationMode(s string) (ValidationMode, error) {
	switch strings.ToLower(s) {
	case "disabled", "off", "":
		return ValidationDisabled, nil
	case "standard", "on":
		return ValidationStandard, nil
	case "verbose":
		return ValidationVerbose, nil
	}
	return 0, fmt.Errorf("unknown validation mode %q", s)
}

// reportFlags are the debug-report categories the callback subscribes to.
func (m ValidationMode) reportFlags() vk.DebugReportFlags {
	flags := vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit)
	if m == ValidationVerbose {
		flags |= vk.DebugReportFlags(vk.DebugReportInformationBit | vk.DebugReportDebugBit)
	}
	return flags
}

// AppInfo names the application to the Vulkan driver.
type AppInfo struct {
	Name       string
	Version    uint32
	EngineName string
	APIVersion uint32
}

var (
	DefaultAppVersion = uint32(vk.MakeVersion(1, 0, 0))
	DefaultAPIVersion = uint32(vk.MakeVersion(1, 0, 0))
)

func defaultAppInfo() AppInfo {
	return AppInfo{
		Name:       "diesel2d",
		Version:    DefaultAppVersion,
		EngineName: "diesel2d",
		APIVersion: DefaultAPIVersion,
	}
}
