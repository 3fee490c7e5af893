package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/sys/unix"

	"github.com/yourusername/vornify-cli/internal/codec"
)

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal
func TerminalWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 {
		return 80
	}
	return int(ws.Col)
}

// ProgressLine renders "label [####....] 42% 1.0 MiB/2.4 MiB" to fit width
func ProgressLine(label string, done, total int64, width int) string {
	pct := 100
	if total > 0 {
		pct = int(done * 100 / total)
		if pct > 100 {
			pct = 100
		}
	}
	suffix := fmt.Sprintf(" %3d%% %s/%s", pct, FormatBytes(float64(done)), FormatBytes(float64(total)))

	barWidth := width - len(label) - len(suffix) - 3
	if barWidth < 10 {
		return strings.TrimSpace(label + suffix)
	}
	filled := barWidth * pct / 100
	return fmt.Sprintf("%s [%s%s]%s", label, strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), suffix)
}

// FrameProgress returns a codec.FrameFunc that redraws a progress line on w
// for a source of total bytes. Call the returned done func to end the line.
func FrameProgress(w io.Writer, label string, total int64) (codec.FrameFunc, func()) {
	width := TerminalWidth()
	var seen int64

	onFrame := func(index, size int) {
		seen += int64(size)
		line := ProgressLine(fmt.Sprintf("%s frame %d", label, index+1), seen, total, width)
		if color.NoColor {
			fmt.Fprintf(w, "\r%s", line)
			return
		}
		InfoColor.Fprintf(w, "\r%s", line)
	}
	done := func() {
		if seen > 0 {
			fmt.Fprintln(w)
		}
	}
	return onFrame, done
}
