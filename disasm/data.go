package disasm

import (
	"fmt"
	"math"
	"strings"
)

// formatImage run-length-compresses a globals/statics image into assembly
// directives (§4.9): `.int <value>` for an isolated cell, `.int <count> dup
// (<value>)` for a run of N consecutive equal cells. A cell outside u32 range
// means the program is corrupt and is a hard fatal, per §4.9.
func formatImage(cells []int64) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(cells) {
		v := cells[i]
		if v < 0 || v > math.MaxUint32 {
			return "", fmt.Errorf("disasm: cell value %d exceeds u32 range", v)
		}
		count := 1
		for i+count < len(cells) && cells[i+count] == v {
			count++
		}
		if count == 1 {
			fmt.Fprintf(&b, "  .int %d\n", v)
		} else {
			fmt.Fprintf(&b, "  .int %d dup (%d)\n", count, v)
		}
		i += count
	}
	return b.String(), nil
}
