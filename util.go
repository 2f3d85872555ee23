package diesel2d

import "unsafe"

// safeString returns s terminated with a NUL byte, as vulkan-go expects
// for C string fields.
func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

// trimNul strips the NUL terminator added by safeString.
func trimNul(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\x00' {
		return s[:len(s)-1]
	}
	return s
}

// asBytes views a slice of fixed-size values as raw bytes.
func asBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(zero)))
}
