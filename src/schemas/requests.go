package schemas

import "encoding/json"

// OptionalID distinguishes "key absent" from "key present but empty" in
// update payloads: presence clears the prior association before the new
// value (if any) is applied.
type OptionalID struct {
	Set   bool
	Value *uint
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" || string(data) == `""` || string(data) == "0" {
		o.Value = nil
		return nil
	}
	var v uint
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

type CreateReportRequest struct {
	Type        string        `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Visibility  string        `json:"visibility"`
	Filters     ReportFilters `json:"filters"`
	ProjectID   OptionalID    `json:"project_id"`
	StageID     OptionalID    `json:"stage_id"`
}

type UpdateReportRequest struct {
	ID          uint           `json:"-"`
	Type        *string        `json:"type"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Visibility  *string        `json:"visibility"`
	Filters     *ReportFilters `json:"filters"`
	ProjectID   OptionalID     `json:"project_id"`
	StageID     OptionalID     `json:"stage_id"`
}

type ListReportsQuery struct {
	Type   string
	Status string
	Search string
	Page   int
}

type GenerateReportRequest struct {
	Type      string        `json:"type"`
	Filters   ReportFilters `json:"filters"`
	ReportID  *uint         `json:"report_id,omitempty"`
	ProjectID *uint         `json:"project_id,omitempty"`
	StageID   *uint         `json:"stage_id,omitempty"`
}

type ExportReportRequest struct {
	GenerateReportRequest
	Format   string `json:"format"`
	Filename string `json:"filename,omitempty"`
}

// ReportTypeInfo is one static catalog entry describing a report type.
type ReportTypeInfo struct {
	Type             ReportType    `json:"type"`
	Label            string        `json:"label"`
	Description      string        `json:"description"`
	Icon             string        `json:"icon"`
	DefaultConfig    ReportFilters `json:"default_config"`
	AllowedGroupings []GroupBy     `json:"allowed_groupings"`
}
