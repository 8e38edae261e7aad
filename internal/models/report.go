package models

// FilterAll is the sentinel meaning "do not filter on this dimension".
const FilterAll = "All"

// SubTypeAll is the sentinel sub-type that fans a report out over every
// known sub-type of the selected category.
const SubTypeAll = "ALL"

// ReportRequest is the ephemeral input of the report builder. Field lists
// hold registry keys; empty lists mean the group is not exported.
type ReportRequest struct {
	StudentFields     []string `json:"studentFields"`
	AchievementFields []string `json:"achievementFields"`
	AcademicFields    []string `json:"academicFields"`

	Category string `json:"category"` // achievement type, e.g. "Co-Curricular"
	SubType  string `json:"subType"`  // sub-category or SubTypeAll

	Location  string `json:"location"`
	Level     string `json:"level"`
	Position  string `json:"position"`
	StartYear int    `json:"startYear"` // 0 = open
	EndYear   int    `json:"endYear"`   // 0 = open
}

// Row is one flat record returned by the reporting query.
type Row map[string]any
