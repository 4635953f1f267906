// Package format holds the display helpers shared by the terminal front ends.
package format

import (
	"fmt"
	"time"
)

// Elapsed renders how long the tutor took to answer. Sub-second values are
// whole µs or ms; longer ones are rounded to a tenth of a second, since a
// network round trip is never more precise than that.
func Elapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
