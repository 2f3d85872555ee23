package diesel2d

import vk "github.com/vulkan-go/vulkan"

// Option configures a Renderer built by NewRenderer.
type Option func(*rendererConfig)

type rendererConfig struct {
	app          AppInfo
	coordinates  CoordinateSystem
	validation   ValidationMode
	presentModes []vk.PresentMode
	deviceTypes  []vk.PhysicalDeviceType
	plugins      []Plugin
	driver       Driver
	context2D    Context2DFactory
	shaderCode   func() ([]uint32, error)
}

func defaultRendererConfig() rendererConfig {
	return rendererConfig{
		app:          defaultAppInfo(),
		coordinates:  LogicalCoordinates(),
		validation:   DefaultValidationMode,
		presentModes: DefaultPresentModePriority,
		deviceTypes:  DefaultDeviceTypePriority,
		context2D:    NewGGContextFactory(),
		shaderCode:   compositeShaderCode,
	}
}

// WithCoordinateSystem sets the coordinate space installed on the canvas
// before each draw callback. Logical coordinates are the default.
func WithCoordinateSystem(cs CoordinateSystem) Option {
	return func(c *rendererConfig) {
		c.coordinates = cs
	}
}

// WithValidation enables the Khronos validation layer. The default is
// disabled unless built with the diesel2d_debug tag.
func WithValidation(mode ValidationMode) Option {
	return func(c *rendererConfig) {
		c.validation = mode
	}
}

// WithPresentModePriority sets the present modes to try, in order. FIFO is
// used when none of them is supported.
func WithPresentModePriority(modes ...vk.PresentMode) Option {
	return func(c *rendererConfig) {
		c.presentModes = modes
	}
}

// WithDeviceTypePriority sets the preferred physical device types, best
// first. Unlisted types are still accepted with the lowest score.
func WithDeviceTypePriority(types ...vk.PhysicalDeviceType) Option {
	return func(c *rendererConfig) {
		c.deviceTypes = types
	}
}

// WithPlugin registers a plugin. Plugins render in registration order.
func WithPlugin(p Plugin) Option {
	return func(c *rendererConfig) {
		c.plugins = append(c.plugins, p)
	}
}

// WithAppName sets the application name reported to the driver.
func WithAppName(name string) Option {
	return func(c *rendererConfig) {
		c.app.Name = name
	}
}

// WithAppInfo replaces the application info reported to the driver.
func WithAppInfo(info AppInfo) Option {
	return func(c *rendererConfig) {
		c.app = info
	}
}

// WithDriver replaces the Vulkan entry points. By default the system
// loader is used, through the window's proc address when it provides one.
func WithDriver(d Driver) Option {
	return func(c *rendererConfig) {
		c.driver = d
	}
}

// WithContext2D replaces the 2D library backend.
func WithContext2D(f Context2DFactory) Option {
	return func(c *rendererConfig) {
		c.context2D = f
	}
}

func withShaderCode(f func() ([]uint32, error)) Option {
	return func(c *rendererConfig) {
		c.shaderCode = f
	}
}
