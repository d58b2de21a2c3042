// Package util has small helpers that don't fit anywhere else
package util

import "os"

// containerMarkers are files Docker and Podman create inside containers.
var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

// InContainer reports whether the process runs inside a container.
func InContainer() bool {
	for _, m := range containerMarkers {
		if _, err := os.Stat(m); err == nil {
			return true
		}
	}

	return false
}
