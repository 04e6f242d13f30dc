package commands

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const dateLayout = "02-Jan-06"

// column flattens text onto one line and pads it to
// width display cells, keeping one cell of separation.
func column(text string, width int) string {
	return runewidth.FillRight(clip(text, width-1), width)
}

// clip flattens text onto one line of at most width
// display cells.
func clip(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")

	return runewidth.Truncate(text, width, "…")
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(dateLayout)
}
