package console

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/rgpvpanel/console/internal/apiclient"
	"github.com/rgpvpanel/console/internal/apitest"
	"github.com/rgpvpanel/console/internal/model"
	"github.com/rgpvpanel/console/internal/session"
)

// fixture wires views to an in-memory backend with a logged-in session.
type fixture struct {
	env     Env
	backend *apitest.Backend
	notices *Notices
	session *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := apitest.New()
	t.Cleanup(backend.Close)
	sess := session.New(session.NewMemoryStore())
	if err := sess.Set(apitest.Token); err != nil {
		t.Fatalf("set session: %v", err)
	}
	notices := &Notices{}
	log := zaptest.NewLogger(t)
	return &fixture{
		env: Env{
			API:      apiclient.New(backend.URL(), nil, log),
			Session:  sess,
			Notifier: notices,
			Log:      log,
		},
		backend: backend,
		notices: notices,
		session: sess,
	}
}

func sampleResources() []model.Resource {
	return []model.Resource{
		{Title: "DS notes", Type: model.TypeNote, Semester: 3, SubjectCode: "CS-301", SubjectName: "DS", FileURL: "https://f/1"},
		{Title: "OS pyq", Type: model.TypePYQ, Semester: 4, SubjectCode: "IT-401", SubjectName: "OS", FileURL: "https://f/2"},
		{Title: "Maths syllabus", Type: model.TypeSyllabus, Semester: 1, SubjectCode: "BT-101", SubjectName: "Maths", FileURL: "https://f/3"},
		{Title: "lower case", Type: model.TypeNote, Semester: 3, SubjectCode: "cs-302", SubjectName: "DBMS", FileURL: "https://f/4"},
	}
}

func onlyNotice(t *testing.T, n *Notices, level Level) Notice {
	t.Helper()
	got := n.Drain()
	if len(got) != 1 {
		t.Fatalf("expected exactly one notice, got %d: %+v", len(got), got)
	}
	if got[0].Level != level {
		t.Fatalf("expected %s notice, got %+v", level, got[0])
	}
	return got[0]
}
