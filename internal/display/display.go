// Package display formats the two-line enclosure summary and provides
// display sinks that do not need hardware.
package display

import (
	"fmt"
	"log/slog"

	"github.com/sweeney/compost-controller/internal/logic"
)

// Width is the character width of each display row.
const Width = 16

// Rows is the number of display rows.
const Rows = 2

// Display shows text on a fixed-size character surface.
// Implementations must not block; failures are swallowed.
type Display interface {
	Line(row int, text string)
}

// Summary returns the two display lines for the given readings.
// Values are shown with one decimal; lines are cut to Width runes.
func Summary(r logic.Readings) [Rows]string {
	return [Rows]string{
		fit(fmt.Sprintf("T:%.1fC U:%.1f%%", r.Temperature, r.Humidity)),
		fit(fmt.Sprintf("pH:%.1f S:%d%%", r.PH, r.SoilMoisture)),
	}
}

// Splash returns the lines shown at power-on.
func Splash() [Rows]string {
	return [Rows]string{"Composteira", "Iniciada"}
}

// Show writes all lines to d.
func Show(d Display, lines [Rows]string) {
	for row, text := range lines {
		d.Line(row, text)
	}
}

func fit(s string) string {
	r := []rune(s)
	if len(r) > Width {
		return string(r[:Width])
	}
	return s
}

// LogDisplay writes display lines to the structured log at debug level.
type LogDisplay struct {
	Logger *slog.Logger
}

// Line logs the row text.
func (d LogDisplay) Line(row int, text string) {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Debug("display", "row", row, "text", text)
}

// Multi fans a line out to several displays.
type Multi []Display

// Line writes the row to every display.
func (m Multi) Line(row int, text string) {
	for _, d := range m {
		d.Line(row, text)
	}
}
