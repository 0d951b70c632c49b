package config

import (
	"github.com/dustin/go-humanize"
)

// ParseSize parses a human-friendly byte quantity (e.g. "5GiB", "512MB",
// "1024") into a byte count. It accepts both IEC (GiB, MiB) and SI (GB, MB)
// suffixes, deferring to humanize's parsing rules, and a bare integer is
// interpreted as a byte count.
func ParseSize(value string) (uint64, error) {
	return humanize.ParseBytes(value)
}

// FormatSize renders a byte count in the same IEC units the configuration
// file and `buildcache --get-config` use, e.g. 5368709120 -> "5.0 GiB".
func FormatSize(bytes uint64) string {
	return humanize.IBytes(bytes)
}
