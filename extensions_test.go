package diesel2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckExisting(t *testing.T) {
	actual := []string{"VK_KHR_surface", "VK_KHR_xcb_surface\x00", debugReportExtension}

	existing, missing := checkExisting(actual, []string{"VK_KHR_xcb_surface", "VK_KHR_surface\x00", "VK_KHR_wayland_surface"})
	assert.Equal(t, []string{"VK_KHR_xcb_surface\x00", "VK_KHR_surface\x00"}, existing)
	assert.Equal(t, []string{"VK_KHR_wayland_surface"}, missing)

	existing, missing = checkExisting(actual, nil)
	assert.Nil(t, existing)
	assert.Nil(t, missing)
}
