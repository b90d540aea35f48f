package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"
)

// Series is one named line of a chart.
type Series struct {
	Name   string
	Values []float64
}

// PlotSpeeds charts several speed series against frame index. Empty
// series are skipped.
func PlotSpeeds(series []Series, width, height int) string {
	data := make([][]float64, 0, len(series))
	names := make([]string, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		data = append(data, s.Values)
		names = append(names, s.Name)
	}
	if len(data) == 0 {
		return ""
	}

	colors := []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Blue, asciigraph.Red, asciigraph.Yellow}
	used := make([]asciigraph.AnsiColor, len(data))
	for i := range data {
		used[i] = colors[i%len(colors)]
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(used...),
		asciigraph.Caption(strings.Join(names, " · ")+" (m/s)"),
	)
}
