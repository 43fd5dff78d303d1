package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"fundraiser/src/schemas"
	"fundraiser/src/utils/render"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV   = "csv"
	FormatPDF   = "pdf"
	FormatExcel = "excel"
	FormatXLSX  = "xlsx"
)

// Excel refuses sheet titles longer than 31 characters.
const maxSheetTitleLen = 31

type ReportExporterI interface {
	Export(ctx context.Context, payload *schemas.ReportPayload, format, filename string) (*schemas.ExportFile, error)
	PrepareDataset(payload *schemas.ReportPayload) *schemas.ExportDataset
}

// ReportExporter flattens a payload into a tabular dataset and renders it
// to CSV, PDF or XLSX. It depends only on the payload shape.
type ReportExporter struct {
	templatePath string
	cssPath      string
	clock        Clock
}

func NewReportExporter(templatePath, cssPath string, clock Clock) *ReportExporter {
	if clock == nil {
		clock = SystemClock()
	}
	return &ReportExporter{
		templatePath: templatePath,
		cssPath:      cssPath,
		clock:        clock,
	}
}

func (e *ReportExporter) Export(ctx context.Context, payload *schemas.ReportPayload, format, filename string) (*schemas.ExportFile, error) {
	dataset := e.PrepareDataset(payload)

	var (
		content     []byte
		contentType string
		ext         string
		err         error
	)

	switch strings.ToLower(format) {
	case FormatCSV:
		content, err = e.writeCSV(dataset)
		contentType = "text/csv; charset=utf-8"
		ext = "csv"
	case FormatPDF:
		content, err = e.writePDF(dataset)
		contentType = "application/pdf"
		ext = "pdf"
	case FormatExcel, FormatXLSX:
		content, err = e.writeXLSX(dataset)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		ext = "xlsx"
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
	if err != nil {
		return nil, err
	}

	if filename == "" {
		filename = fmt.Sprintf("report_%s_%s.%s", payload.Type, e.clock.Now().Format("2006-01-02_15-04-05"), ext)
	}

	return &schemas.ExportFile{
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	}, nil
}

// datasetBuilder accumulates rows while discovering the header union in
// first-seen key order.
type datasetBuilder struct {
	headers []string
	seen    map[string]bool
	rows    []schemas.ExportRow
}

func newDatasetBuilder() *datasetBuilder {
	return &datasetBuilder{seen: map[string]bool{}}
}

func (b *datasetBuilder) add(keys []string, row schemas.ExportRow) {
	for _, k := range keys {
		if !b.seen[k] {
			b.seen[k] = true
			b.headers = append(b.headers, k)
		}
	}
	b.rows = append(b.rows, row)
}

// PrepareDataset flattens the type-tagged payload tree into row-major form.
func (e *ReportExporter) PrepareDataset(payload *schemas.ReportPayload) *schemas.ExportDataset {
	b := newDatasetBuilder()

	switch data := payload.Data.(type) {
	case schemas.RevenueData:
		addRevenueRows(b, data)
	case schemas.MembersData:
		addMembersRows(b, "members", data)
	case schemas.ProjectsData:
		addProjectsRows(b, "projects", data)
	case schemas.ComprehensiveData:
		if data.Revenue != nil {
			if rev, ok := data.Revenue.Data.(schemas.RevenueData); ok {
				addRevenueRows(b, rev)
			}
		}
		if data.Members != nil {
			if mem, ok := data.Members.Data.(schemas.MembersData); ok {
				addMembersRows(b, "members", mem)
			}
		}
		if data.Projects != nil {
			if proj, ok := data.Projects.Data.(schemas.ProjectsData); ok {
				addProjectsRows(b, "projects", proj)
			}
		}
		if data.Analytics != nil {
			b.add(
				[]string{"section", "conversion_rate", "average_donation", "retention_rate", "growth_rate"},
				schemas.ExportRow{
					"section":          "analytics",
					"conversion_rate":  data.Analytics.ConversionRate,
					"average_donation": data.Analytics.AverageDonation,
					"retention_rate":   data.Analytics.RetentionRate,
					"growth_rate":      data.Analytics.GrowthRate,
				},
			)
		}
	}

	headers := b.headers
	if len(b.rows) == 0 {
		headers = []string{"section", "key", "value"}
	}

	return &schemas.ExportDataset{
		Title:   payload.Title,
		Headers: headers,
		Rows:    b.rows,
		Summary: payload.Summary,
		Filters: payload.Filters.ToMap(),
		Meta:    payload.Meta.ToMap(),
	}
}

func addRevenueRows(b *datasetBuilder, data schemas.RevenueData) {
	for _, g := range data.ByPeriod {
		b.add(
			[]string{"section", "period", "total", "count"},
			schemas.ExportRow{
				"section": "revenue",
				"period":  g.Period,
				"total":   g.Total,
				"count":   g.Count,
			},
		)
	}
}

func addMembersRows(b *datasetBuilder, prefix string, data schemas.MembersData) {
	for _, d := range data.DailyRegistrations {
		b.add(
			[]string{"section", "date", "count"},
			schemas.ExportRow{
				"section": prefix + "_daily_registrations",
				"date":    d.Date,
				"count":   d.Count,
			},
		)
	}
	for _, s := range data.BySource {
		b.add(
			[]string{"section", "source", "count"},
			schemas.ExportRow{
				"section": prefix + "_by_source",
				"source":  s.Source,
				"count":   s.Count,
			},
		)
	}
	b.add(
		[]string{"section", "active_members"},
		schemas.ExportRow{
			"section":        prefix + "_summary",
			"active_members": data.ActiveMembers,
		},
	)
}

func addProjectsRows(b *datasetBuilder, prefix string, data schemas.ProjectsData) {
	for _, s := range data.ByStatus {
		b.add(
			[]string{"section", "status", "count"},
			schemas.ExportRow{
				"section": prefix + "_by_status",
				"status":  s.Status,
				"count":   s.Count,
			},
		)
	}
	for _, f := range data.FundingProgress {
		b.add(
			[]string{"section", "project_id", "title", "target_amount", "collected_amount", "progress_percentage"},
			schemas.ExportRow{
				"section":             prefix + "_funding",
				"project_id":          f.ProjectID,
				"title":               f.Title,
				"target_amount":       f.TargetAmount,
				"collected_amount":    f.CollectedAmount,
				"progress_percentage": f.ProgressPercentage,
			},
		)
	}
	if data.Metrics != nil {
		b.add(
			[]string{"section", "average_funding_time"},
			schemas.ExportRow{
				"section":              prefix + "_metrics",
				"average_funding_time": data.Metrics.AverageFundingTime,
			},
		)
	}
}

// datasetFrame materializes the dataset as a gota dataframe, one string
// series per discovered column with absent keys as empty cells. The CSV and
// PDF paths render from the frame.
func (e *ReportExporter) datasetFrame(dataset *schemas.ExportDataset) dataframe.DataFrame {
	cols := make([]series.Series, 0, len(dataset.Headers))
	for _, header := range dataset.Headers {
		values := make([]string, len(dataset.Rows))
		for i, row := range dataset.Rows {
			if value, ok := row[header]; ok {
				values[i] = stringifyValue(value)
			}
		}
		cols = append(cols, series.New(values, series.String, header))
	}
	return dataframe.New(cols...)
}

func (e *ReportExporter) writeCSV(dataset *schemas.ExportDataset) ([]byte, error) {
	records := [][]string{dataset.Headers}
	if len(dataset.Rows) > 0 {
		df := e.datasetFrame(dataset)
		if df.Err != nil {
			return nil, df.Err
		}
		records = df.Records()
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	for _, record := range records {
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *ReportExporter) writePDF(dataset *schemas.ExportDataset) ([]byte, error) {
	var (
		rows   [][]string
		shares map[string]float64
	)
	if len(dataset.Rows) > 0 {
		df := e.datasetFrame(dataset)
		if df.Err != nil {
			return nil, df.Err
		}
		rows = df.Records()[1:]
		shares = revenueShares(df)
	}

	chart, err := render.RevenuePie(dataset.Title, shares)
	if err != nil {
		return nil, err
	}

	html, err := render.ReportHTML(e.templatePath, e.cssPath, &render.ReportView{
		Title:   dataset.Title,
		Headers: dataset.Headers,
		Rows:    rows,
		Summary: summaryPairs(dataset.Summary),
		Filters: summaryPairs(dataset.Filters),
		Meta:    summaryPairs(dataset.Meta),
		Chart:   chart,
	})
	if err != nil {
		return nil, err
	}

	return render.HTMLToPDF(html)
}

// revenueShares filters the frame down to revenue rows and pulls period
// totals for the pie chart.
func revenueShares(df dataframe.DataFrame) map[string]float64 {
	sub := df.Filter(dataframe.F{Colname: "section", Comparator: series.Eq, Comparando: "revenue"})
	if sub.Err != nil || sub.Nrow() == 0 {
		return nil
	}

	periods := sub.Col("period").Records()
	totals := sub.Col("total").Records()

	shares := make(map[string]float64, len(periods))
	for i, period := range periods {
		if period == "" {
			continue
		}
		if total, err := strconv.ParseFloat(totals[i], 64); err == nil {
			shares[period] = total
		}
	}
	return shares
}

func (e *ReportExporter) writeXLSX(dataset *schemas.ExportDataset) ([]byte, error) {
	f := excelize.NewFile()

	sheet := truncateRunes(dataset.Title, maxSheetTitleLen)
	if sheet == "" {
		sheet = "Report"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6E6"},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil, err
	}

	widths := make([]float64, len(dataset.Headers))
	for col, header := range dataset.Headers {
		cell := fmt.Sprintf("%s1", toAlphaString(col+1))
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
		widths[col] = cellWidth(header, widths[col])
	}
	if len(dataset.Headers) > 0 {
		if err := f.SetCellStyle(sheet, "A1", fmt.Sprintf("%s1", toAlphaString(len(dataset.Headers))), headerStyle); err != nil {
			return nil, err
		}
	}

	rowIndex := 2
	for _, row := range dataset.Rows {
		for col, header := range dataset.Headers {
			value, ok := row[header]
			if !ok {
				continue
			}
			cell := fmt.Sprintf("%s%d", toAlphaString(col+1), rowIndex)
			if err := f.SetCellValue(sheet, cell, cellValue(value)); err != nil {
				return nil, err
			}
			widths[col] = cellWidth(stringifyValue(value), widths[col])
		}
		rowIndex++
	}

	if len(dataset.Summary) > 0 {
		rowIndex++
		lastCol := len(dataset.Headers)
		if lastCol < 2 {
			lastCol = 2
		}
		startCell := fmt.Sprintf("A%d", rowIndex)
		endCell := fmt.Sprintf("%s%d", toAlphaString(lastCol), rowIndex)
		if err := f.MergeCell(sheet, startCell, endCell); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, startCell, "Summary"); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, startCell, endCell, headerStyle); err != nil {
			return nil, err
		}
		rowIndex++

		for _, pair := range summaryPairs(dataset.Summary) {
			if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIndex), humanizeKey(pair.Key)); err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", rowIndex), pair.Value); err != nil {
				return nil, err
			}
			rowIndex++
		}
	}

	for col, width := range widths {
		name := toAlphaString(col + 1)
		if width < 10 {
			width = 10
		}
		if width > 50 {
			width = 50
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cellValue prepares a dataset value for a spreadsheet cell: booleans become
// localized tokens, nested values become JSON, numbers pass through.
func cellValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bool:
		if t {
			return "Да"
		}
		return "Нет"
	case string, int, int64, uint, float64:
		return t
	default:
		return stringifyValue(v)
	}
}

// stringifyValue renders a value for text formats. Nested values are JSON
// with non-ASCII preserved.
func stringifyValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Sprintf("%v", v)
		}
		return strings.TrimRight(buf.String(), "\n")
	}
}

// cellWidth keeps the running column width, with a little padding.
func cellWidth(text string, current float64) float64 {
	w := float64(utf8.RuneCountInString(text)) + 2
	if w > current {
		return w
	}
	return current
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

func humanizeKey(key string) string {
	words := strings.ReplaceAll(key, "_", " ")
	if words == "" {
		return words
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

// summaryPairs orders a scalar map alphabetically for stable rendering.
func summaryPairs(m map[string]interface{}) []render.KV {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]render.KV, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, render.KV{Key: k, Value: stringifyValue(m[k])})
	}
	return pairs
}

func toAlphaString(column int) string {
	result := ""
	for column > 0 {
		column--
		result = string(rune('A'+column%26)) + result
		column /= 26
	}
	return result
}
