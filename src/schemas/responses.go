package schemas

import "fundraiser/src/models"

// ReportPage is one page of report definitions, newest first.
type ReportPage struct {
	Items   []models.Report `json:"items"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// GenerateReportResponse couples the transient payload with the persisted
// run snapshot it produced.
type GenerateReportResponse struct {
	Payload *ReportPayload    `json:"payload"`
	Run     *models.ReportRun `json:"run"`
}
