package diesel2d

import (
	"context"
	"log/slog"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// debugLevel maps a debug-report flag onto a log level. Errors win over
// warnings when a report carries several bits.
func debugLevel(flags vk.DebugReportFlags) slog.Level {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return slog.LevelError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0,
		flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		return slog.LevelWarn
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	Logger().Log(context.Background(), debugLevel(flags), pMessage,
		"layer", pLayerPrefix,
		"code", messageCode,
		"object_type", int(objectType),
	)
	return vk.Bool32(vk.False)
}
