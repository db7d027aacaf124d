package console

import (
	"strings"

	"github.com/rgpvpanel/console/internal/model"
)

// DeriveSubjects builds the subject list from resources. Codes keep the order
// of their first appearance; when one code carries several names the last one
// seen wins.
func DeriveSubjects(resources []model.Resource) []model.Subject {
	index := make(map[string]int, len(resources))
	out := make([]model.Subject, 0, len(resources))
	for _, r := range resources {
		if i, ok := index[r.SubjectCode]; ok {
			out[i].Name = r.SubjectName
			continue
		}
		index[r.SubjectCode] = len(out)
		out = append(out, model.Subject{Code: r.SubjectCode, Name: r.SubjectName})
	}
	return out
}

// SubjectRegistry populates the subject selectors. Locally added subjects
// live only until the next resource refresh replaces the list.
type SubjectRegistry struct {
	subjects []model.Subject
}

// NewSubjectRegistry returns an empty registry.
func NewSubjectRegistry() *SubjectRegistry {
	return &SubjectRegistry{}
}

// DeriveFromResources replaces the registry with DeriveSubjects(resources).
func (r *SubjectRegistry) DeriveFromResources(resources []model.Resource) {
	r.subjects = DeriveSubjects(resources)
}

// Subjects returns a copy of the registry.
func (r *SubjectRegistry) Subjects() []model.Subject {
	return append([]model.Subject(nil), r.subjects...)
}

// Lookup returns the subject with exactly this code.
func (r *SubjectRegistry) Lookup(code string) (model.Subject, bool) {
	for _, s := range r.subjects {
		if s.Code == code {
			return s, true
		}
	}
	return model.Subject{}, false
}

// Add appends a subject. Blank fields and an existing code (exact match) are
// rejected with a *model.ValidationError.
func (r *SubjectRegistry) Add(code, name string) error {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return &model.ValidationError{Fields: blankFields(map[string]string{"code": code, "name": name}, "code", "name"), Message: "Please fill in both subject code and name"}
	}
	if _, ok := r.Lookup(code); ok {
		return &model.ValidationError{Fields: []string{"code"}, Message: "Subject code already exists!"}
	}
	r.subjects = append(r.subjects, model.Subject{Code: code, Name: name})
	return nil
}

// Remove drops code after confirmation. It reports whether anything was
// removed. A nil confirm declines. The server is not touched.
func (r *SubjectRegistry) Remove(code string, confirm Confirmer) bool {
	idx := -1
	for i, s := range r.subjects {
		if s.Code == code {
			idx = i
			break
		}
	}
	if idx < 0 || !confirmed(confirm, "Are you sure you want to delete this subject?") {
		return false
	}
	r.subjects = append(r.subjects[:idx], r.subjects[idx+1:]...)
	return true
}

// BranchRegistry holds the branch codes offered by the resource form. It is
// never persisted.
type BranchRegistry struct {
	branches []string
}

// NewBranchRegistry returns a registry seeded with model.DefaultBranches.
func NewBranchRegistry() *BranchRegistry {
	return &BranchRegistry{branches: append([]string(nil), model.DefaultBranches...)}
}

// Branches returns a copy of the registry.
func (r *BranchRegistry) Branches() []string {
	return append([]string(nil), r.branches...)
}

// Contains reports whether code is registered (exact match).
func (r *BranchRegistry) Contains(code string) bool {
	for _, b := range r.branches {
		if b == code {
			return true
		}
	}
	return false
}

// Add upper-cases code and appends it. Blank input and codes already present
// after upper-casing are rejected with a *model.ValidationError.
func (r *BranchRegistry) Add(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return &model.ValidationError{Fields: []string{"code"}, Message: "Please enter a branch code"}
	}
	if r.Contains(code) {
		return &model.ValidationError{Fields: []string{"code"}, Message: "Branch already exists!"}
	}
	r.branches = append(r.branches, code)
	return nil
}

// Remove drops code after confirmation and reports whether it was removed.
func (r *BranchRegistry) Remove(code string, confirm Confirmer) bool {
	idx := -1
	for i, b := range r.branches {
		if b == code {
			idx = i
			break
		}
	}
	if idx < 0 || !confirmed(confirm, "Are you sure you want to delete this branch?") {
		return false
	}
	r.branches = append(r.branches[:idx], r.branches[idx+1:]...)
	return true
}

func blankFields(values map[string]string, order ...string) []string {
	var out []string
	for _, k := range order {
		if values[k] == "" {
			out = append(out, k)
		}
	}
	return out
}
