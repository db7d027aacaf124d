// Package model contains the records exchanged with the resource API and the
// form structs the console binds user input into.
package model

// ResourceType classifies a resource. In JSON it travels as its upper-case
// name.
type ResourceType string

const (
	TypeNote     ResourceType = "NOTE"
	TypePYQ      ResourceType = "PYQ"
	TypeSyllabus ResourceType = "SYLLABUS"
	TypeVideo    ResourceType = "VIDEO"
)

// ResourceTypes lists the selectable types in display order.
var ResourceTypes = []ResourceType{TypeNote, TypePYQ, TypeSyllabus, TypeVideo}

// Programs, DefaultBranches and Semesters populate the form selectors.
var (
	Programs        = []string{"B.Tech", "B.Pharm", "MCA", "Diploma"}
	DefaultBranches = []string{"CS", "AIML", "AIDS", "IT", "EC", "ME", "CE", "EE"}
	Semesters       = []int{1, 2, 3, 4, 5, 6, 7, 8}
)

// FilterAll disables a filter dimension.
const FilterAll = "All"

// BranchFilters are the subject-code prefixes offered by the resource table.
var BranchFilters = []string{FilterAll, "CS", "BT", "AL", "IT"}

// Resource is a document or video record served to the mobile app. ID and
// Views are owned by the server.
type Resource struct {
	ID          string       `json:"_id,omitempty"`
	Title       string       `json:"title"`
	Type        ResourceType `json:"type"`
	Program     string       `json:"program,omitempty"`
	Branch      string       `json:"branch,omitempty"`
	Semester    int          `json:"semester"`
	SubjectCode string       `json:"subjectCode"`
	SubjectName string       `json:"subjectName"`
	FileURL     string       `json:"fileUrl,omitempty"`
	VideoURL    string       `json:"videoUrl,omitempty"`
	Views       int          `json:"views,omitempty"`
}

// ResourceForm mirrors the editable fields of a Resource. Only presence of
// the required fields is validated.
type ResourceForm struct {
	Title       string       `json:"title" validate:"required"`
	Type        ResourceType `json:"type" validate:"required"`
	Program     string       `json:"program"`
	Branch      string       `json:"branch"`
	Semester    int          `json:"semester"`
	SubjectCode string       `json:"subjectCode" validate:"required"`
	SubjectName string       `json:"subjectName" validate:"required"`
	FileURL     string       `json:"fileUrl,omitempty" validate:"required_unless=Type VIDEO"`
	VideoURL    string       `json:"videoUrl,omitempty" validate:"required_if=Type VIDEO"`
}

// NewResourceForm returns the form in its initial state.
func NewResourceForm() ResourceForm {
	return ResourceForm{
		Type:     TypeNote,
		Program:  Programs[0],
		Branch:   DefaultBranches[0],
		Semester: Semesters[0],
	}
}

// FormFromResource loads a record into a form. A missing semester falls back
// to the first one.
func FormFromResource(r Resource) ResourceForm {
	f := ResourceForm{
		Title:       r.Title,
		Type:        r.Type,
		Program:     r.Program,
		Branch:      r.Branch,
		Semester:    r.Semester,
		SubjectCode: r.SubjectCode,
		SubjectName: r.SubjectName,
		FileURL:     r.FileURL,
		VideoURL:    r.VideoURL,
	}
	if f.Semester == 0 {
		f.Semester = Semesters[0]
	}
	return f
}

// ClearTransient empties the per-document fields and keeps the
// classification selectors.
func (f *ResourceForm) ClearTransient() {
	f.Title = ""
	f.FileURL = ""
	f.VideoURL = ""
	f.SubjectName = ""
	f.SubjectCode = ""
}

// Payload returns the body sent on create and update. Only the link that
// matches the type is carried.
func (f ResourceForm) Payload() ResourceForm {
	p := f
	if p.Type == TypeVideo {
		p.FileURL = ""
	} else {
		p.VideoURL = ""
	}
	return p
}
