package server

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rgpvpanel/console/internal/console"
	"github.com/rgpvpanel/console/internal/model"
)

var templateFuncs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"lower":      strings.ToLower,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02 Jan 2006")
	},
}

var semesterFilters = []string{model.FilterAll, "1", "2", "3", "4", "5", "6", "7", "8"}

type loginData struct {
	Error   string
	Notices []console.Notice
}

type confirmPage struct {
	Prompt string
	Action string
	Token  string
	Back   string
}

type dashboardData struct {
	Tab     console.Tab
	Tabs    []console.Tab
	Notices []console.Notice

	Resources       []model.Resource
	BranchFilter    string
	SemesterFilter  string
	BranchFilters   []string
	SemesterFilters []string
	ResourceForm    model.ResourceForm
	EditingResource string
	UploadsEnabled  bool

	Videos       []model.Video
	VideoForm    model.VideoForm
	EditingVideo string

	Subjects []model.Subject
	Branches []string
	Users    []model.User

	Draft   model.Notification
	Preview console.Preview

	ResourceTypes     []model.ResourceType
	Programs          []string
	Semesters         []int
	NotificationTypes []model.NotificationType
}

func (s *Server) loginPage() loginData {
	return loginData{Error: s.router.LoginError(), Notices: s.notices.Drain()}
}

// dashboardPage snapshots the router for rendering. Empty filters mean All.
func (s *Server) dashboardPage(branch, semester string) dashboardData {
	if branch == "" {
		branch = model.FilterAll
	}
	if semester == "" {
		semester = model.FilterAll
	}
	dash := s.router.Dashboard()
	return dashboardData{
		Tab:     s.router.Tab(),
		Tabs:    console.Tabs,
		Notices: s.notices.Drain(),

		Resources:       dash.Resources.Filter(branch, semester),
		BranchFilter:    branch,
		SemesterFilter:  semester,
		BranchFilters:   model.BranchFilters,
		SemesterFilters: semesterFilters,
		ResourceForm:    dash.Resources.Form,
		EditingResource: dash.Resources.EditingID(),
		UploadsEnabled:  s.uploader != nil,

		Videos:       dash.Videos.Videos(),
		VideoForm:    dash.Videos.Form,
		EditingVideo: dash.Videos.EditingID(),

		Subjects: dash.Subjects.Subjects(),
		Branches: dash.Branches.Branches(),
		Users:    dash.Users.Users(),

		Draft:   dash.Composer.Draft,
		Preview: dash.Composer.Preview(),

		ResourceTypes:     model.ResourceTypes,
		Programs:          model.Programs,
		Semesters:         model.Semesters,
		NotificationTypes: model.NotificationTypes,
	}
}

func credentialsFromForm(values url.Values) model.Credentials {
	return model.Credentials{
		Username: strings.TrimSpace(values.Get("username")),
		Password: values.Get("password"),
	}
}

// bindResourceForm copies posted fields into form. Fields absent from the
// post keep their current value.
func bindResourceForm(form *model.ResourceForm, values url.Values) {
	bindString(&form.Title, values, "title")
	if v, ok := formValue(values, "type"); ok {
		form.Type = model.ResourceType(strings.ToUpper(v))
	}
	bindString(&form.Program, values, "program")
	bindString(&form.Branch, values, "branch")
	if v, ok := formValue(values, "semester"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			form.Semester = n
		}
	}
	bindString(&form.SubjectCode, values, "subjectCode")
	bindString(&form.SubjectName, values, "subjectName")
	bindString(&form.FileURL, values, "fileUrl")
	bindString(&form.VideoURL, values, "videoUrl")
}

func bindVideoForm(form *model.VideoForm, values url.Values) {
	bindString(&form.SubjectCode, values, "subjectCode")
	bindString(&form.SubjectName, values, "subjectName")
	bindString(&form.Title, values, "title")
	bindString(&form.YoutubeURL, values, "youtubeUrl")
	bindString(&form.Description, values, "description")
}

func bindDraft(draft *model.Notification, values url.Values) {
	bindString(&draft.Title, values, "title")
	bindString(&draft.Message, values, "message")
	if v, ok := formValue(values, "type"); ok {
		draft.Type = model.NotificationType(v)
	}
}

func bindString(dst *string, values url.Values, key string) {
	if v, ok := formValue(values, key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func formValue(values url.Values, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}
