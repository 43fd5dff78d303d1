package render

import (
	"bytes"
	"html/template"
	"os"
	"strings"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// KV is one key/value line for the summary, filters and meta blocks.
type KV struct {
	Key   string
	Value string
}

// ReportView is the data handed to the report HTML template.
type ReportView struct {
	Title   string
	Headers []string
	Rows    [][]string
	Summary []KV
	Filters []KV
	Meta    []KV
	Chart   template.HTML
}

// ReportHTML renders the report template with the CSS inlined.
func ReportHTML(templatePath, cssPath string, view *ReportView) (string, error) {
	tpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", err
	}

	css, err := os.ReadFile(cssPath)
	if err != nil {
		return "", err
	}

	var output bytes.Buffer
	err = tpl.Execute(&output, map[string]interface{}{
		"CSS":    template.CSS(css),
		"Report": view,
	})
	if err != nil {
		return "", err
	}
	return output.String(), nil
}

// RevenuePie renders a pie chart of revenue shares as an embeddable HTML
// snippet. Empty data yields no chart.
func RevenuePie(title string, data map[string]float64) (template.HTML, error) {
	if len(data) == 0 {
		return "", nil
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: title}))

	items := make([]opts.PieData, 0, len(data))
	for k, v := range data {
		items = append(items, opts.PieData{Name: k, Value: v})
	}
	pie.AddSeries("Revenue", items)

	var buf bytes.Buffer
	if err := pie.Render(&buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// HTMLToPDF converts rendered HTML to PDF bytes, landscape A4. Remote
// resources referenced by the template are fetched during conversion.
func HTMLToPDF(html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, err
	}

	pdfg.Orientation.Set(wkhtmltopdf.OrientationLandscape)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	// Remote assets are fetched by default; only local file access needs an
	// explicit switch. Keep it that way.
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, err
	}
	return pdfg.Bytes(), nil
}
