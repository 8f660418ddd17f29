//go:build windows

package preflight

import "os"

// Windows ACLs are not reflected in mode bits, so probe with a real file.
func checkAccess(path string) error {
	probe, err := os.CreateTemp(path, ".oszimport-probe-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
