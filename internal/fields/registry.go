// Package fields is the static registry of exportable field keys: display
// labels plus the subset of achievement fields applicable per sub-category.
package fields

import "github.com/achievo/achievement-portal/internal/models"

var labels = map[string]string{
	// student group
	"uce":          "UCE Number",
	"student_name": "Student Name",
	"email":        "Email",
	"department":   "Department",
	"semester":     "Semester",

	// academic group
	"exam_type":    "Exam Type",
	"subject":      "Subject",
	"max_marks":    "Max Marks",
	"scored_marks": "Scored Marks",

	// achievement group
	"type":                "Achievement Type",
	"category":            "Category",
	"event_name":          "Event Name",
	"organizer":           "Organizer",
	"location":            "Location",
	"level":               "Level",
	"position":            "Position",
	"prize":               "Prize",
	"start_date":          "Start Date",
	"end_date":            "End Date",
	"title":               "Title",
	"publisher":           "Publisher",
	"indexed":             "Indexed",
	"course_name":         "Course Name",
	"provider":            "Provider",
	"duration_weeks":      "Duration (weeks)",
	"completed_on":        "Completed On",
	"description":         "Description",
	"awarded_on":          "Awarded On",
	"verification_status": "Verification Status",
	"verification_score":  "Verification Score",
	"awarded_points":      "Awarded Points",
	"certificate_path":    "Certificate",
	"marksheet_ref":       "Marksheet",
}

var studentFields = []string{"uce", "student_name", "email", "department", "semester"}

var academicFields = []string{"exam_type", "semester", "subject", "max_marks", "scored_marks"}

// achievementCommon is present for every sub-category.
var achievementCommon = []string{"type", "category", "verification_status", "verification_score", "awarded_points", "certificate_path"}

var achievementByCategory = map[string][]string{
	"Workshop":            {"event_name", "organizer", "location", "level", "start_date", "end_date"},
	"Seminar":             {"event_name", "organizer", "location", "level", "start_date", "end_date"},
	"Webinar":             {"event_name", "organizer", "location", "level", "start_date", "end_date"},
	"Hackathon":           {"event_name", "organizer", "location", "level", "position", "prize", "start_date", "end_date"},
	"Code Competition":    {"event_name", "organizer", "location", "level", "position", "prize", "start_date", "end_date"},
	"Paper Publication":   {"title", "publisher", "indexed", "start_date"},
	"Sports":              {"event_name", "organizer", "location", "level", "position", "prize", "start_date", "end_date"},
	"Cultural Event":      {"event_name", "organizer", "location", "level", "position", "start_date", "end_date"},
	"Volunteering":        {"event_name", "organizer", "location", "start_date", "end_date"},
	"Online Course":       {"course_name", "provider", "duration_weeks", "completed_on"},
	"Certification":       {"course_name", "provider", "completed_on"},
	"Special Achievement": {"title", "description", "awarded_on"},
}

// Label returns the display label for a field key, or the key itself when
// the registry does not know it.
func Label(key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

// Labels returns a copy of the full key→label map.
func Labels() map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// Known reports whether a field key exists in the registry.
func Known(key string) bool {
	_, ok := labels[key]
	return ok
}

// StudentFields returns the ordered student field keys.
func StudentFields() []string { return append([]string(nil), studentFields...) }

// AcademicFields returns the ordered academic field keys.
func AcademicFields() []string { return append([]string(nil), academicFields...) }

// AchievementFieldsFor returns the ordered achievement field keys for one
// sub-category, common fields last. Unknown categories get only the
// common set.
func AchievementFieldsFor(category string) []string {
	out := append([]string(nil), achievementByCategory[category]...)
	return append(out, achievementCommon...)
}

// HasPosition reports whether the sub-category carries a placement field.
func HasPosition(category string) bool {
	for _, f := range achievementByCategory[category] {
		if f == "position" {
			return true
		}
	}
	return false
}

// HasLocation reports whether the sub-category carries a location field.
func HasLocation(category string) bool {
	for _, f := range achievementByCategory[category] {
		if f == "location" {
			return true
		}
	}
	return false
}

// IsCertificateField reports whether the key holds a file reference that
// exports render as a link.
func IsCertificateField(key string) bool {
	return key == "certificate_path" || key == "marksheet_ref"
}

// CategoriesFor returns the known sub-types of an achievement type.
func CategoriesFor(t models.AchievementType) []string {
	return append([]string(nil), models.CategoriesByType[t]...)
}
