package diesel2d

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Instance is the process-wide Vulkan connection. It owns the optional
// debug-report callback and must outlive every Device created from it.
type Instance struct {
	driver        Driver
	handle        vk.Instance
	debugCallback vk.DebugReportCallback
	validation    ValidationMode
	extensions    []string
	layers        []string
}

// NewInstance creates the Vulkan instance. windowExtensions are the surface
// extensions reported by the windowing collaborator; every one of them must
// be available.
func NewInstance(driver Driver, app AppInfo, validation ValidationMode, windowExtensions []string) (*Instance, error) {
	available, err := InstanceExtensions(driver)
	if err != nil {
		return nil, err
	}
	required := append([]string{}, windowExtensions...)
	if validation.Enabled() {
		required = append(required, debugReportExtension)
	}
	extensions, missing := checkExisting(available, required)
	if len(missing) > 0 {
		return nil, errors.Wrapf(ErrExtensionMissing, "instance extensions %v", missing)
	}

	var layers []string
	if validation.Enabled() {
		availableLayers, err := ValidationLayers(driver)
		if err != nil {
			return nil, err
		}
		var missingLayers []string
		layers, missingLayers = checkExisting(availableLayers, []string{validationLayerName})
		if len(missingLayers) > 0 {
			return nil, errors.Wrapf(ErrLayerMissing, "layers %v", missingLayers)
		}
	}

	handle, ret := driver.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         app.APIVersion,
			ApplicationVersion: app.Version,
			PApplicationName:   safeString(app.Name),
			PEngineName:        safeString(app.EngineName),
		},
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	})
	if err := wrapResult(ret, "create instance"); err != nil {
		return nil, err
	}
	inst := &Instance{
		driver:     driver,
		handle:     handle,
		validation: validation,
		extensions: extensions,
		layers:     layers,
	}

	if validation.Enabled() {
		cb, ret := driver.CreateDebugReportCallback(handle, &vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       validation.reportFlags(),
			PfnCallback: dbgCallbackFunc,
		})
		if err := wrapResult(ret, "create debug report callback"); err != nil {
			driver.DestroyInstance(handle)
			return nil, err
		}
		inst.debugCallback = cb
	}
	Logger().Debug("vulkan instance created",
		"extensions", len(extensions),
		"validation", validation.String(),
	)
	return inst, nil
}

func (i *Instance) Handle() vk.Instance {
	return i.handle
}

func (i *Instance) Driver() Driver {
	return i.driver
}

func (i *Instance) Validation() ValidationMode {
	return i.validation
}

// Layers returns the enabled layer names, which are also enabled on the
// logical device for older loaders.
func (i *Instance) Layers() []string {
	return i.layers
}

// Destroy removes the debug callback and then the instance.
func (i *Instance) Destroy() {
	if i.handle == nil {
		return
	}
	if i.debugCallback != vk.NullDebugReportCallback {
		i.driver.DestroyDebugReportCallback(i.handle, i.debugCallback)
		i.debugCallback = vk.NullDebugReportCallback
	}
	i.driver.DestroyInstance(i.handle)
	i.handle = nil
}
