package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io"
	"strings"
	"unicode"

	"github.com/a-h/templ"

	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/services"
)

// Element IDs patched over SSE.
const (
	RevenueChartID  = "product-revenue-chart"
	QuantityChartID = "product-quantity-chart"
	PaymentChartID  = "payment-chart"
	MemberChartID   = "member-chart"
	GenderChartID   = "gender-chart"
)

const storeDescription = `The growth of supermarkets in most populated cities is increasing and market competition is also high. The dataset consists of historical sales data from a supermarket company recorded across 3 different branches over 3 months. Predictive data analytics methods can be easily applied with this dataset.`

var branches = []string{
	"Branch A, Yangon",
	"Branch B, Mandalay",
	"Branch C, Naypyitaw",
}

// SignalName maps an indicator label to its Datastar signal,
// e.g. "Total Sales" -> "totalSales".
func SignalName(label string) string {
	words := strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if i > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

// ChartFor returns the chart component that displays the series named
// label, or nil for an unknown label.
func ChartFor(label string, pairs []models.GroupTotal) templ.Component {
	switch label {
	case services.LabelRevenueByProductLine:
		return BarChart(RevenueChartID, label, pairs, nil, false)
	case services.LabelQuantityByProductLine:
		return BarChart(QuantityChartID, label, pairs, nil, true)
	case services.LabelPaymentMethods:
		return PieChart(PaymentChartID, label, pairs, PaymentColors)
	case services.LabelCustomerTypes:
		return PieChart(MemberChartID, label, pairs, MemberColors)
	case services.LabelGenders:
		return PieChart(GenderChartID, label, pairs, GenderColors)
	default:
		return nil
	}
}

// Page collects what the dashboard displays. It implements
// services.Presenter.
type Page struct {
	Selected models.Month
	scalars  map[string]string
	charts   map[string]template.HTML
	err      error
}

func NewPage(selected models.Month) *Page {
	return &Page{
		Selected: selected,
		scalars:  make(map[string]string),
		charts:   make(map[string]template.HTML),
	}
}

func (p *Page) DisplayScalar(label string, value float64, format string) {
	p.scalars[label] = services.FormatValue(format, value)
}

func (p *Page) DisplaySeries(label string, pairs []models.GroupTotal) {
	chart := ChartFor(label, pairs)
	if chart == nil {
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(context.Background(), &buf); err != nil {
		p.err = err
		return
	}
	p.charts[label] = template.HTML(buf.String())
}

func (p *Page) Scalar(label string) string {
	return p.scalars[label]
}

type indicator struct {
	Label  string
	Signal string
	Value  string
}

type pageData struct {
	Description string
	Branches    []string
	Economics   []indicator
	Monthly     []indicator
	Months      []models.Month
	Selected    models.Month
	Signals     string
	Charts      map[string]template.HTML
	Labels      map[string]string
}

func (p *Page) data() (pageData, error) {
	mk := func(labels ...string) []indicator {
		out := make([]indicator, 0, len(labels))
		for _, l := range labels {
			out = append(out, indicator{Label: l, Signal: SignalName(l), Value: p.scalars[l]})
		}
		return out
	}

	economics := mk(services.LabelNetRevenue, services.LabelMedianBilling, services.LabelMedianGrossIncome)
	monthly := mk(services.LabelTotalSales, services.LabelGrossIncome, services.LabelOrders)
	signals := map[string]any{"month": string(p.Selected)}
	for _, ind := range append(economics, monthly...) {
		signals[ind.Signal] = ind.Value
	}
	encoded, err := json.Marshal(signals)
	if err != nil {
		return pageData{}, err
	}

	return pageData{
		Description: storeDescription,
		Branches:    branches,
		Economics:   economics,
		Monthly:     monthly,
		Months:      models.KnownMonths,
		Selected:    p.Selected,
		Signals:     string(encoded),
		Charts:      p.charts,
		Labels: map[string]string{
			"revenue":  services.LabelRevenueByProductLine,
			"quantity": services.LabelQuantityByProductLine,
			"payment":  services.LabelPaymentMethods,
			"member":   services.LabelCustomerTypes,
			"gender":   services.LabelGenders,
		},
	}, nil
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Supermarket Sales Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { margin: 0; font-family: sans-serif; background: #B1BDC5; }
.page { display: flex; gap: 12px; }
.sidebar { width: 320px; background: #DADDE2; padding: 6px; font-size: 16pt; text-align: justify; }
.heading { font-size: 50px; font-weight: bold; margin-left: 15px; }
.row { display: flex; gap: 15px; padding: 5px; flex-wrap: wrap; }
.indicator { background: #8685EF; color: white; padding: 3px 10px; border-radius: 10px; }
.indicator.monthly { background: #FAF8FF; color: black; font-size: 24pt; }
.indicator .value { font-size: 2em; display: block; }
.chart svg { width: 100%; max-width: 420px; }
.legend { list-style: none; padding: 0; font-size: 10pt; }
.swatch { display: inline-block; width: 10px; height: 10px; margin-right: 4px; }
select { font-size: 20pt; }
</style>
</head>
<body>
<div class="page" data-signals="{{.Signals}}">
<aside class="sidebar">
<p>{{.Description}}</p>
<h2>Store Locations</h2>
<ul>{{range .Branches}}<li>{{.}}</li>{{end}}</ul>
</aside>
<main>
<div class="heading">Store Economics</div>
<div class="row">{{range .Economics}}<div class="indicator"><span class="label">{{.Label}}</span><span class="value" id="{{.Signal}}" data-text="${{.Signal}}">{{.Value}}</span></div>{{end}}</div>
<section id="monthly-stats">
<div class="row"><strong style="font-size: 28px">Monthly Statistics</strong>
<select id="month-selector" data-bind:month data-on:change="@get('/sse/select-month')">
{{range .Months}}<option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>{{end}}
</select></div>
<div class="row">{{range .Monthly}}<div class="indicator monthly"><span class="label">{{.Label}}</span><span class="value" id="{{.Signal}}" data-text="${{.Signal}}">{{.Value}}</span></div>{{end}}</div>
</section>
{{index .Charts (index .Labels "revenue")}}
<div class="heading">Product Line Statistics</div>
</main>
<section>
<div class="heading">Customer Demographics</div>
<div class="row">{{index .Charts (index .Labels "payment")}}{{index .Charts (index .Labels "member")}}{{index .Charts (index .Labels "gender")}}</div>
{{index .Charts (index .Labels "quantity")}}
</section>
</div>
</body>
</html>
`))

// Dashboard renders the full page from what was presented to p.
func Dashboard(p *Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if p.err != nil {
			return p.err
		}
		data, err := p.data()
		if err != nil {
			return err
		}
		return pageTemplate.Execute(w, data)
	})
}

// RenderDashboard presents the controller's current selection together
// with the all-time overview.
func RenderDashboard(controller *services.Controller) templ.Component {
	page := NewPage(models.AllMonths)
	services.PresentOverview(page, controller.Analytics().Overview())
	page.Selected = controller.Present(page).Month
	return Dashboard(page)
}
