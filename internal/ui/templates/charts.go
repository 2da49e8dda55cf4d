package templates

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/a-h/templ"

	"supermarket-dashboard/internal/models"
)

var ProductLineColors = map[string]string{
	models.ElectronicAccessories: "#0077FF",
	models.FashionAccessories:    "#FF6F61",
	models.FoodAndBeverages:      "#B5AC49",
	models.HealthAndBeauty:       "#FFDAB9",
	models.HomeAndLifestyle:      "#008080",
	models.SportsAndTravel:       "#FF5733",
}

var (
	MemberColors  = []string{"#00c6c8", "#FFD700"}
	PaymentColors = []string{"#ff6f61", "#2ca02c", "#fdc74f"}
	GenderColors  = []string{"#0077ff", "#ff5733"}
)

const (
	chartWidth  = 360.0
	chartHeight = 220.0
	chartPad    = 8.0
	pieRadius   = 80.0
)

var chartTemplates = template.Must(template.New("charts").Parse(`
{{define "bar"}}<figure id="{{.ID}}" class="chart">
<figcaption>{{.Title}}</figcaption>
<svg viewBox="0 0 {{.Width}} {{.Height}}" role="img" aria-label="{{.Title}}">
{{range .Bars}}<rect x="{{printf "%.2f" .X}}" y="{{printf "%.2f" .Y}}" width="{{printf "%.2f" .W}}" height="{{printf "%.2f" .H}}" fill="{{.Color}}"><title>{{.Key}}: {{printf "%.2f" .Value}}</title></rect>
{{end}}</svg>
<ul class="legend">{{range .Bars}}<li><span class="swatch" style="background: {{.Color}}"></span>{{.Key}}</li>{{end}}</ul>
</figure>{{end}}
{{define "pie"}}<figure id="{{.ID}}" class="chart pie">
<figcaption>{{.Title}}</figcaption>
<svg viewBox="0 0 200 200" role="img" aria-label="{{.Title}}">
{{range .Slices}}{{if .Full}}<circle cx="100" cy="100" r="{{$.Radius}}" fill="{{.Color}}"></circle>{{else}}<path d="{{.Path}}" fill="{{.Color}}"></path>{{end}}
<text x="{{printf "%.2f" .LabelX}}" y="{{printf "%.2f" .LabelY}}" text-anchor="middle">{{printf "%.1f" .Percent}}%</text>
{{end}}</svg>
<ul class="legend">{{range .Slices}}<li><span class="swatch" style="background: {{.Color}}"></span>{{.Key}}</li>{{end}}</ul>
</figure>{{end}}
`))

type bar struct {
	Key        string
	Value      float64
	Color      string
	X, Y, W, H float64
}

type barChart struct {
	ID, Title     string
	Width, Height float64
	Bars          []bar
}

type slice struct {
	Key            string
	Color          string
	Path           string
	Full           bool
	Percent        float64
	LabelX, LabelY float64
}

type pieChart struct {
	ID, Title string
	Radius    float64
	Slices    []slice
}

func componentFor(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return chartTemplates.ExecuteTemplate(w, name, data)
	})
}

func colorsFor(pairs []models.GroupTotal, palette []string) []string {
	colors := make([]string, len(pairs))
	for i, p := range pairs {
		switch {
		case len(palette) > 0:
			colors[i] = palette[i%len(palette)]
		case ProductLineColors[p.Key] != "":
			colors[i] = ProductLineColors[p.Key]
		default:
			colors[i] = "#888888"
		}
	}
	return colors
}

// BarChart renders pairs as vertical bars, or horizontal ones stacked top
// to bottom in pair order. A nil palette colors bars by product line.
func BarChart(id, title string, pairs []models.GroupTotal, palette []string, horizontal bool) templ.Component {
	colors := colorsFor(pairs, palette)

	maxValue := 0.0
	for _, p := range pairs {
		maxValue = math.Max(maxValue, p.Value)
	}
	scale := func(v, length float64) float64 {
		if maxValue == 0 {
			return 0
		}
		return v / maxValue * length
	}

	chart := barChart{ID: id, Title: title, Width: chartWidth, Height: chartHeight}
	if len(pairs) > 0 {
		if horizontal {
			slot := (chartHeight - chartPad) / float64(len(pairs))
			for i, p := range pairs {
				chart.Bars = append(chart.Bars, bar{
					Key: p.Key, Value: p.Value, Color: colors[i],
					X: 0,
					Y: chartPad/2 + float64(i)*slot + slot*0.1,
					W: scale(p.Value, chartWidth-chartPad),
					H: slot * 0.8,
				})
			}
		} else {
			slot := (chartWidth - chartPad) / float64(len(pairs))
			for i, p := range pairs {
				h := scale(p.Value, chartHeight-chartPad)
				chart.Bars = append(chart.Bars, bar{
					Key: p.Key, Value: p.Value, Color: colors[i],
					X: chartPad/2 + float64(i)*slot + slot*0.1,
					Y: chartHeight - h,
					W: slot * 0.8,
					H: h,
				})
			}
		}
	}

	return componentFor("bar", chart)
}

// PieChart renders shares of pairs starting at twelve o'clock and going
// counter-clockwise.
func PieChart(id, title string, pairs []models.GroupTotal, palette []string) templ.Component {
	colors := colorsFor(pairs, palette)

	total := 0.0
	for _, p := range pairs {
		total += p.Value
	}

	chart := pieChart{ID: id, Title: title, Radius: pieRadius}
	const cx, cy = 100.0, 100.0
	angle := math.Pi / 2

	for i, p := range pairs {
		share := 0.0
		if total > 0 {
			share = p.Value / total
		}
		sweep := share * 2 * math.Pi
		mid := angle + sweep/2

		s := slice{
			Key:     p.Key,
			Color:   colors[i],
			Percent: share * 100,
			LabelX:  cx + math.Cos(mid)*pieRadius*0.6,
			LabelY:  cy - math.Sin(mid)*pieRadius*0.6,
		}

		switch {
		case share >= 1:
			s.Full = true
		case share > 0:
			x1, y1 := cx+math.Cos(angle)*pieRadius, cy-math.Sin(angle)*pieRadius
			x2, y2 := cx+math.Cos(angle+sweep)*pieRadius, cy-math.Sin(angle+sweep)*pieRadius
			large := 0
			if sweep > math.Pi {
				large = 1
			}
			s.Path = fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.0f %.0f 0 %d 0 %.2f %.2f Z",
				cx, cy, x1, y1, pieRadius, pieRadius, large, x2, y2)
		}

		chart.Slices = append(chart.Slices, s)
		angle += sweep
	}

	return componentFor("pie", chart)
}
