package diesel2d

import (
	stderrors "errors"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Error kinds surfaced by the renderer. Match them with errors.Is.
var (
	ErrInit                = stderrors.New("diesel2d: vulkan loader unavailable")
	ErrLayerMissing        = stderrors.New("diesel2d: validation layer missing")
	ErrExtensionMissing    = stderrors.New("diesel2d: required extension missing")
	ErrNoCompatibleDevice  = stderrors.New("diesel2d: no compatible physical device")
	ErrSurfaceLost         = stderrors.New("diesel2d: presentation surface lost")
	ErrDeviceLost          = stderrors.New("diesel2d: device lost")
	ErrOutOfHostMemory     = stderrors.New("diesel2d: out of host memory")
	ErrOutOfDeviceMemory   = stderrors.New("diesel2d: out of device memory")
	ErrDegenerateTransform = stderrors.New("diesel2d: degenerate coordinate transform")

	// errSwapchainStale marks OUT_OF_DATE and SUBOPTIMAL results. Draw
	// recovers from it by rebuilding and never returns it.
	errSwapchainStale = stderrors.New("diesel2d: swapchain stale")
)

// VulkanError carries the raw result code of a failed Vulkan call.
type VulkanError struct {
	Result vk.Result
	kind   error
}

func (e *VulkanError) Error() string {
	return vk.Error(e.Result).Error()
}

// Unwrap exposes the error kind the result maps onto, if any.
func (e *VulkanError) Unwrap() error {
	return e.kind
}

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError converts a Vulkan result into an error. It returns nil for
// vk.Success. Results with a matching error kind unwrap to that kind.
func NewError(ret vk.Result) error {
	if !isError(ret) {
		return nil
	}
	return errors.WithStack(&VulkanError{Result: ret, kind: kindOf(ret)})
}

func kindOf(ret vk.Result) error {
	switch ret {
	case vk.ErrorInitializationFailed, vk.ErrorIncompatibleDriver:
		return ErrInit
	case vk.ErrorLayerNotPresent:
		return ErrLayerMissing
	case vk.ErrorExtensionNotPresent:
		return ErrExtensionMissing
	case vk.ErrorSurfaceLost:
		return ErrSurfaceLost
	case vk.ErrorDeviceLost:
		return ErrDeviceLost
	case vk.ErrorOutOfHostMemory:
		return ErrOutOfHostMemory
	case vk.ErrorOutOfDeviceMemory:
		return ErrOutOfDeviceMemory
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return errSwapchainStale
	}
	return nil
}

// wrapResult annotates a failed call with the operation that produced it.
func wrapResult(ret vk.Result, op string) error {
	if !isError(ret) {
		return nil
	}
	return errors.Wrap(&VulkanError{Result: ret, kind: kindOf(ret)}, op)
}
