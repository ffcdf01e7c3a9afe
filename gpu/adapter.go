package gpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// preferredAdapter returns the index of the first adapter whose vendor or name contains preference, ignoring case,
// and 0 when none does. It returns -1 for an empty list.
func preferredAdapter(adapters []gputypes.AdapterInfo, preference string) int {
	if len(adapters) == 0 {
		return -1
	}
	preference = strings.ToLower(strings.TrimSpace(preference))
	if preference == "" {
		return 0
	}
	for i, info := range adapters {
		if strings.Contains(strings.ToLower(info.Vendor), preference) || strings.Contains(strings.ToLower(info.Name), preference) {
			return i
		}
	}
	return 0
}

// sameAdapter reports whether two adapter handles describe the same physical device on the same backend.
func sameAdapter(a, b gputypes.AdapterInfo) bool {
	return a.Name == b.Name && a.Vendor == b.Vendor && a.VendorID == b.VendorID && a.DeviceID == b.DeviceID &&
		a.Backend == b.Backend
}

// requireFloat64 checks that an adapter can run the double precision kernel.
func requireFloat64(features gputypes.Features) error {
	if !features.Contains(gputypes.FeatureShaderFloat64) {
		return fmt.Errorf("%w: adapter lacks %s", ErrKernel, gputypes.FeatureShaderFloat64)
	}
	return nil
}
