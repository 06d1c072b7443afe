package core

import (
	"fmt"
	"strconv"
)

// FormatXP renders an XP amount the way the platform UI abbreviates it.
// Million-scale values are still divided by 1000 ("2000k", not "2M");
// the dashboard has always displayed them that way.
func FormatXP(xp int64) string {
	switch {
	case xp >= 1_000_000:
		return fmt.Sprintf("%.0fk", float64(xp)/1_000)
	case xp >= 1_000:
		return fmt.Sprintf("%.1fk", float64(xp)/1_000)
	default:
		return strconv.FormatInt(xp, 10)
	}
}
