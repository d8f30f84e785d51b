package config

import (
	"math"
	"sort"

	"github.com/mauros/dxlight/internal/render"
)

// Named aspect-ratio presets. Selecting one crops the letterbox or
// pillarbox bars out of sampling; "" samples the full monitor.
var aspects = map[string][2]float64{
	"":       {0, 0},
	"16:9":   {16, 9},
	"16:10":  {16, 10},
	"21:9":   {21, 9},
	"32:9":   {32, 9},
	"4:3":    {4, 3},
	"2.35:1": {2.35, 1},
	"2.39:1": {2.39, 1},
	"1:1":    {1, 1},
}

// Aspects lists the preset names, full-screen first.
func Aspects() []string {
	out := make([]string, 0, len(aspects))
	for k := range aspects {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return append([]string{""}, out...)
}

// AspectCrop computes the crop fractions that center content of the named
// aspect ratio on a monW x monH monitor. Unknown names and ratios within
// 1% of the monitor's own ratio produce no crop.
func AspectCrop(name string, monW, monH int) render.CropRegion {
	ar, ok := aspects[name]
	if !ok || ar[0] == 0 || monW <= 0 || monH <= 0 {
		return render.CropRegion{}
	}
	target := ar[0] / ar[1]
	mon := float64(monW) / float64(monH)
	if math.Abs(target-mon) < 0.01 {
		return render.CropRegion{}
	}
	if target < mon {
		// Pillarbox: content narrower than the monitor.
		contentW := float64(monH) * target
		pct := (float64(monW) - contentW) / 2.0 / float64(monW)
		return render.CropRegion{Left: pct, Right: pct}
	}
	// Letterbox: content shorter than the monitor.
	contentH := float64(monW) / target
	pct := (float64(monH) - contentH) / 2.0 / float64(monH)
	return render.CropRegion{Top: pct, Bottom: pct}
}
