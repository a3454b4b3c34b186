package device

import (
	"strings"

	"github.com/clipdr/studio-engine/internal/errors"
)

// Selection is the resolved input device plus an optional warning when a
// preferred device wasn't available and a fallback was used instead.
type Selection struct {
	Device   Info
	Warning  string
	Fallback bool
}

// SelectInput applies preference+fallback policy against a list of
// discovered devices: prefer matches against preferred, fall back to the
// backend's default device if preferred doesn't match or isn't
// available.
func SelectInput(devices []Info, preferred string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.Newf("no input devices found").
			Component("device").
			Category(errors.CategoryNotFound).
			Build()
	}

	preferred = strings.TrimSpace(strings.ToLower(preferred))

	var defaultDevice, byPreference *Info
	for i := range devices {
		dev := &devices[i]
		if dev.Default {
			defaultDevice = dev
		}
		if byPreference == nil && preferred != "" && preferred != "default" && deviceMatches(*dev, preferred) {
			byPreference = dev
		}
	}

	if preferred == "" || preferred == "default" {
		if defaultDevice == nil {
			return Selection{}, errors.Newf("no default input device is available").
				Component("device").
				Category(errors.CategoryNotFound).
				Build()
		}
		return Selection{Device: *defaultDevice}, nil
	}

	if byPreference != nil && byPreference.Available {
		return Selection{Device: *byPreference}, nil
	}

	if defaultDevice == nil || !defaultDevice.Available {
		return Selection{}, errors.Newf("preferred input %q is unavailable and no default device exists", preferred).
			Component("device").
			Category(errors.CategoryNotFound).
			Build()
	}

	reason := "not found"
	if byPreference != nil {
		reason = "unavailable"
	}
	return Selection{
		Device:   *defaultDevice,
		Warning:  "preferred input \"" + preferred + "\" is " + reason + "; falling back to \"" + defaultDevice.ID + "\"",
		Fallback: true,
	}, nil
}

func deviceMatches(dev Info, term string) bool {
	if term == "" {
		return false
	}
	id := strings.ToLower(dev.ID)
	desc := strings.ToLower(dev.Description)
	return strings.Contains(id, term) || strings.Contains(desc, term)
}
