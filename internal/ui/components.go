package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/harmonica"
)

func renderProgressBar(elapsed, total time.Duration, width int) string {
	width = max(width, 10) - 2

	var ratio float64
	if total > 0 {
		ratio = min(max(float64(elapsed)/float64(total), 0), 1)
	}
	filled := int(ratio * float64(width))
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

const volumeMeterWidth = 8

// volumeMeter eases a small level gauge toward the playback volume, one
// spring step per status tick.
type volumeMeter struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
}

func newVolumeMeter(vol float64) volumeMeter {
	return volumeMeter{
		spring: harmonica.NewSpring(harmonica.FPS(int(time.Second/statusInterval)), 8.0, 1.0),
		pos:    vol,
	}
}

func (v volumeMeter) step(target float64) volumeMeter {
	v.pos, v.vel = v.spring.Update(v.pos, v.vel, target)
	if math.Abs(v.pos-target) < 0.001 && math.Abs(v.vel) < 0.001 {
		v.pos, v.vel = target, 0
	}
	return v
}

func (v volumeMeter) level() float64 { return min(max(v.pos, 0), 1) }

func (v volumeMeter) view(vol float64) string {
	filled := int(math.Round(v.level() * volumeMeterWidth))
	return strings.Repeat("▮", filled) + strings.Repeat("▯", volumeMeterWidth-filled) + " " + renderVolumePercent(vol)
}

// renderSampleRate renders a rate badge like [44.1kHz].
func renderSampleRate(hz int) string {
	if hz <= 0 {
		return "[?kHz]"
	}
	return "[" + strconv.FormatFloat(float64(hz)/1000, 'f', -1, 64) + "kHz]"
}

// formatDuration renders m:ss.
func formatDuration(d time.Duration) string {
	total := int(max(d, 0).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
