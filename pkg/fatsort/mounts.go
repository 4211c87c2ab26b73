package fatsort

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const mountsFile = "/proc/mounts"

// fatFilesystems are the kernel filesystem types fatsort can operate on.
var fatFilesystems = map[string]bool{
	"vfat":   true,
	"msdos":  true,
	"umsdos": true,
	"exfat":  true,
}

// FindDeviceLocations resolves the destination path to the FAT block
// device and mount point containing it. Returns ErrNoFATDevice when the
// destination does not live on a FAT filesystem.
func FindDeviceLocations(ctx context.Context, destination string) (device, mountPoint string, err error) {
	abs, err := filepath.Abs(destination)
	if err != nil {
		return "", "", errors.Errorf("resolving destination %q: %w", destination, err)
	}
	if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
		abs = resolved
	}

	f, err := os.Open(mountsFile)
	if err != nil {
		return "", "", errors.Errorf("reading mount table: %w", err)
	}
	defer f.Close()

	device, mountPoint, err = findInMounts(f, abs)
	if err != nil {
		return "", "", err
	}

	zerolog.Ctx(ctx).Debug().
		Str("destination", abs).
		Str("device", device).
		Str("mount", mountPoint).
		Msg("found FAT device")
	return device, mountPoint, nil
}

// findInMounts scans a mount table in /proc/mounts format and returns the
// FAT entry whose mount point is the longest prefix of dest.
func findInMounts(r io.Reader, dest string) (device, mountPoint string, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		dev := unescapeMountField(fields[0])
		mnt := unescapeMountField(fields[1])
		fstype := fields[2]

		if !fatFilesystems[fstype] {
			continue
		}
		if dest != mnt && !strings.HasPrefix(dest, strings.TrimSuffix(mnt, "/")+"/") {
			continue
		}
		// Longest mount point wins: /mnt/usb/music beats /mnt/usb.
		if len(mnt) > len(mountPoint) {
			device, mountPoint = dev, mnt
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", errors.Errorf("scanning mount table: %w", err)
	}
	if device == "" {
		return "", "", errors.Errorf("%w under %s", ErrNoFATDevice, dest)
	}
	return device, mountPoint, nil
}

// unescapeMountField decodes the octal escapes the kernel uses for
// whitespace and backslashes in mount table fields (\040 for space).
func unescapeMountField(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			b.WriteByte((s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}
