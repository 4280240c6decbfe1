package progress

import (
	"fmt"
	"math"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n with a 1024 base: whole bytes, two decimals above.
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", max(n, 0))
	}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[i])
}

// FormatSpeed renders a rate in bytes per second.
func FormatSpeed(bytesPerSec float64) string {
	return FormatBytes(int64(math.Round(bytesPerSec))) + "/s"
}

// FormatSeconds renders a duration as "Ns" under a minute and "Mm Ss" above.
func FormatSeconds(sec int64) string {
	if sec < 60 {
		return fmt.Sprintf("%ds", max(sec, 0))
	}
	return fmt.Sprintf("%dm %ds", sec/60, sec%60)
}

// FormatETA is FormatSeconds with "-" for an unknown estimate.
func FormatETA(e Estimate) string {
	if !e.ETAKnown() {
		return "-"
	}
	return FormatSeconds(e.ETASeconds)
}
