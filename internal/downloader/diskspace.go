package downloader

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// CheckFreeSpace is a best-effort preflight check: gallery byte sizes are
// rarely known ahead of a crawl, so this only guards against the common
// case of an already-nearly-full destination volume.
func CheckFreeSpace(destPath string, estimatedBytes uint64) error {
	usage, err := disk.Usage(destPath)
	if err != nil {
		// Can't determine usage (e.g. path doesn't exist yet); don't block.
		return nil
	}
	if estimatedBytes > 0 && usage.Free < estimatedBytes {
		return fmt.Errorf("insufficient disk space: %d bytes free, need ~%d", usage.Free, estimatedBytes)
	}
	return nil
}
