package server

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/rgpvpanel/console/internal/apiclient"
	"github.com/rgpvpanel/console/internal/apitest"
	"github.com/rgpvpanel/console/internal/config"
	"github.com/rgpvpanel/console/internal/console"
	"github.com/rgpvpanel/console/internal/model"
	"github.com/rgpvpanel/console/internal/session"
	"github.com/rgpvpanel/console/internal/signing"
)

type stubUploader struct {
	calls int
}

func (u *stubUploader) UploadPDF(ctx context.Context, fileName string, reader io.Reader, size int64) (string, error) {
	u.calls++
	return "https://files.example/" + fileName, nil
}

type testServer struct {
	srv     *Server
	handler http.Handler
	backend *apitest.Backend
}

func newTestServer(t *testing.T, uploader Uploader) *testServer {
	t.Helper()
	backend := apitest.New()
	t.Cleanup(backend.Close)
	log := zaptest.NewLogger(t)
	notices := &console.Notices{}
	router := console.NewRouter(console.Env{
		API:      apiclient.New(backend.URL(), nil, log),
		Session:  session.New(session.NewMemoryStore()),
		Notifier: notices,
		Log:      log,
	})
	cfg := &config.Config{Address: ":0", MaxUploadSize: 1 << 20}
	signer := signing.NewSigner([]byte("test-secret"), time.Minute)
	srv, err := New(cfg, router, notices, signer, uploader, log)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv.Start(context.Background())
	return &testServer{srv: srv, handler: srv.Handler(), backend: backend}
}

func (ts *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (ts *testServer) post(t *testing.T, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) login(t *testing.T) {
	t.Helper()
	rec := ts.post(t, "/login", url.Values{"username": {apitest.Username}, "password": {apitest.Password}})
	expectRedirect(t, rec, "/")
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func expectBody(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected body to contain %q, got:\n%s", want, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.get(t, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	expectBody(t, rec, `"status":"ok"`)
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.backend.SeedResources(model.Resource{Title: "DS notes", Type: model.TypeNote, Semester: 3, SubjectCode: "CS-301", SubjectName: "DS", FileURL: "https://f/1"})

	expectBody(t, ts.get(t, "/"), "Admin Login")

	rec := ts.post(t, "/login", url.Values{"username": {apitest.Username}, "password": {"wrong"}})
	expectRedirect(t, rec, "/")
	expectBody(t, ts.get(t, "/"), "Invalid Credentials. Access Denied.")

	ts.login(t)
	page := ts.get(t, "/")
	expectBody(t, page, "DS notes")
	expectBody(t, page, "Logout")

	expectRedirect(t, ts.post(t, "/logout", nil), "/")
	expectBody(t, ts.get(t, "/"), "Admin Login")
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.post(t, "/resources", url.Values{"title": {"x"}})
	expectRedirect(t, rec, "/")
	if n := ts.backend.CountCalls(http.MethodPost, "/api/resources"); n != 0 {
		t.Fatalf("no create expected before login, got %d", n)
	}
	expectRedirect(t, ts.get(t, "/users/export.csv"), "/")
}

func TestUnknownTab(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.login(t)
	if rec := ts.get(t, "/?tab=settings"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tab, got %d", rec.Code)
	}
}

func TestCreateAndEditResource(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.login(t)

	rec := ts.post(t, "/resources", url.Values{
		"title":       {"Compiler notes"},
		"type":        {"NOTE"},
		"program":     {"B.Tech"},
		"branch":      {"CS"},
		"semester":    {"5"},
		"subjectCode": {"CS-501"},
		"subjectName": {"Compilers"},
		"fileUrl":     {"https://drive/x"},
	})
	expectRedirect(t, rec, "/?tab=pdfs")
	stored := ts.backend.Resources()
	if len(stored) != 1 || stored[0].Title != "Compiler notes" || stored[0].Semester != 5 {
		t.Fatalf("unexpected stored resources %+v", stored)
	}
	expectBody(t, ts.get(t, "/?tab=pdfs"), "Successfully Uploaded to App!")

	expectRedirect(t, ts.get(t, "/resources/"+stored[0].ID+"/edit"), "/?tab=pdfs")
	expectBody(t, ts.get(t, "/?tab=pdfs"), "Edit Resource")
	ts.post(t, "/resources", url.Values{"title": {"Compiler notes v2"}})
	if got := ts.backend.Resources()[0].Title; got != "Compiler notes v2" {
		t.Fatalf("expected update, got %q", got)
	}
	if n := ts.backend.CountCalls(http.MethodPost, "/api/resources"); n != 1 {
		t.Fatalf("edit must not create, got %d creates", n)
	}

	if rec := ts.get(t, "/resources/missing/edit"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestDeleteResourceRequiresConfirmation(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.backend.SeedResources(model.Resource{Title: "Old", Type: model.TypePYQ, SubjectCode: "IT-401", SubjectName: "OS", FileURL: "https://f/2"})
	ts.login(t)
	id := ts.backend.Resources()[0].ID

	rec := ts.post(t, "/resources/"+id+"/delete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected confirmation page, got %d", rec.Code)
	}
	expectBody(t, rec, "Are you sure you want to delete this PDF?")
	if n := ts.backend.CountCalls(http.MethodDelete, "/api/resources/"+id); n != 0 {
		t.Fatalf("prompt must not delete, got %d calls", n)
	}

	expectRedirect(t, ts.post(t, "/resources/"+id+"/delete", url.Values{"confirm": {"1.forged"}}), "/?tab=pdfs")
	if len(ts.backend.Resources()) != 1 {
		t.Fatalf("forged token must not delete")
	}
	expectBody(t, ts.get(t, "/?tab=pdfs"), "Confirmation expired")

	token := ts.srv.signer.Token("delete-resource:" + id)
	expectRedirect(t, ts.post(t, "/resources/"+id+"/delete", url.Values{"confirm": {token}}), "/?tab=pdfs")
	if len(ts.backend.Resources()) != 0 {
		t.Fatalf("confirmed delete should remove the resource")
	}
}

func TestVideoCreateAndDelete(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.login(t)
	ts.post(t, "/videos", url.Values{
		"subjectCode": {"CS-301"},
		"subjectName": {"DS"},
		"title":       {"Trees"},
		"youtubeUrl":  {"https://youtu.be/abc"},
	})
	videos := ts.backend.Videos()
	if len(videos) != 1 {
		t.Fatalf("expected one video, got %+v", videos)
	}
	expectBody(t, ts.get(t, "/?tab=videos"), "Video Added Successfully!")

	token := ts.srv.signer.Token("delete-video:" + videos[0].ID)
	ts.post(t, "/videos/"+videos[0].ID+"/delete", url.Values{"confirm": {token}})
	if len(ts.backend.Videos()) != 0 {
		t.Fatalf("video should be deleted")
	}
}

func TestRegistries(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.login(t)

	ts.post(t, "/subjects", url.Values{"code": {"CS-601"}, "name": {"Networks"}})
	expectBody(t, ts.get(t, "/?tab=subjects"), "Networks")

	ts.post(t, "/subjects", url.Values{"code": {""}, "name": {"Nameless"}})
	expectBody(t, ts.get(t, "/?tab=subjects"), "notice error")

	ts.post(t, "/branches", url.Values{"code": {"bt"}})
	if !ts.srv.router.Dashboard().Branches.Contains("BT") {
		t.Fatalf("branch should be added upper-cased")
	}
	token := ts.srv.signer.Token("delete-branch:BT")
	ts.post(t, "/branches/BT/delete", url.Values{"confirm": {token}})
	if ts.srv.router.Dashboard().Branches.Contains("BT") {
		t.Fatalf("branch should be removed")
	}
}

func TestUsersExport(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.backend.SeedUsers(model.User{Name: "Asha", Phone: "99", Program: "B.Tech", Branch: "CS", Semester: 3})
	ts.login(t)
	expectBody(t, ts.get(t, "/?tab=users"), "Asha")

	rec := ts.get(t, "/users/export.csv")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 || lines[0] != "name,phone,program,branch,semester,joinedAt" {
		t.Fatalf("unexpected csv:\n%s", rec.Body.String())
	}
}

func TestNotificationPreviewAndSend(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.login(t)

	rec := ts.post(t, "/notifications/preview", url.Values{"title": {"Exam"}, "type": {"alert"}})
	expectBody(t, rec, "Exam")
	expectBody(t, rec, "Your notification message will appear here...")
	if n := ts.backend.CountCalls(http.MethodPost, "/api/notifications"); n != 0 {
		t.Fatalf("preview must not send, got %d", n)
	}

	ts.post(t, "/notifications", url.Values{"title": {"Exam"}, "message": {"Tomorrow"}, "type": {"alert"}})
	sent := ts.backend.Notifications()
	if len(sent) != 1 || sent[0].Type != model.NotifyAlert {
		t.Fatalf("unexpected notifications %+v", sent)
	}
	expectBody(t, ts.get(t, "/?tab=notifications"), "Notification sent successfully!")
}

func multipartResource(t *testing.T, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fields := map[string]string{
		"title":       "Uploaded",
		"type":        "NOTE",
		"subjectCode": "CS-301",
		"subjectName": "DS",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("file", "notes.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(file)
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestUploadRejected(t *testing.T) {
	cases := []struct {
		name     string
		uploader *stubUploader
		file     []byte
		want     string
	}{
		{name: "storage disabled", file: []byte("%PDF-1.4\n"), want: "file uploads are not configured"},
		{name: "not a pdf", uploader: &stubUploader{}, file: []byte("hello world"), want: "only PDF files supported"},
		{name: "unreadable pdf", uploader: &stubUploader{}, file: []byte("%PDF-1.4\nbroken"), want: "unreadable pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var uploader Uploader
			if tc.uploader != nil {
				uploader = tc.uploader
			}
			ts := newTestServer(t, uploader)
			ts.login(t)
			body, contentType := multipartResource(t, tc.file)
			req := httptest.NewRequest(http.MethodPost, "/resources", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)
			expectRedirect(t, rec, "/?tab=pdfs")
			if n := ts.backend.CountCalls(http.MethodPost, "/api/resources"); n != 0 {
				t.Fatalf("rejected upload must not create, got %d", n)
			}
			if tc.uploader != nil && tc.uploader.calls != 0 {
				t.Fatalf("rejected upload must not reach storage")
			}
			expectBody(t, ts.get(t, "/?tab=pdfs"), tc.want)
		})
	}
}

// firstReadSignal closes started when the handler begins reading the body.
type firstReadSignal struct {
	io.Reader
	once    sync.Once
	started chan struct{}
}

func (r *firstReadSignal) Read(p []byte) (int, error) {
	r.once.Do(func() { close(r.started) })
	return r.Reader.Read(p)
}

func TestLogoutWhileReadingBodyRedirects(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.login(t)

	pr, pw := io.Pipe()
	body := &firstReadSignal{Reader: pr, started: make(chan struct{})}
	req := httptest.NewRequest(http.MethodPost, "/videos", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	done := make(chan any, 1)
	go func() {
		defer func() { done <- recover() }()
		ts.handler.ServeHTTP(rec, req)
	}()

	<-body.started
	expectRedirect(t, ts.post(t, "/logout", nil), "/")
	form := url.Values{"subjectCode": {"CS-301"}, "subjectName": {"DS"}, "title": {"Heaps"}, "youtubeUrl": {"https://youtu.be/h"}}
	io.WriteString(pw, form.Encode())
	pw.Close()

	if p := <-done; p != nil {
		t.Fatalf("handler panicked after logout: %v", p)
	}
	expectRedirect(t, rec, "/")
	if n := ts.backend.CountCalls(http.MethodPost, "/api/videos"); n != 0 {
		t.Fatalf("logged out post must not create, got %d", n)
	}
}

func TestSplitRoute(t *testing.T) {
	cases := []struct {
		path string
		id   string
		verb string
		ok   bool
	}{
		{path: "/subjects/CS-301/delete", id: "CS-301", verb: "delete", ok: true},
		{path: "/subjects/CS%2F301/delete", id: "CS/301", verb: "delete", ok: true},
		{path: "/subjects/A%2520B/delete", id: "A%20B", verb: "delete", ok: true},
		{path: "/subjects/CS/301/delete", ok: false},
		{path: "/subjects//delete", ok: false},
		{path: "/subjects/%zz/delete", ok: false},
		{path: "/videos/id1/delete", ok: false},
	}
	for _, tc := range cases {
		id, verb, ok := splitRoute(tc.path, "/subjects/")
		if ok != tc.ok || id != tc.id || verb != tc.verb {
			t.Fatalf("splitRoute(%q) = %q, %q, %v", tc.path, id, verb, ok)
		}
	}
}

func TestDeleteSubjectWithReservedCharacters(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.login(t)

	for _, code := range []string{"CS/301", "A%20B"} {
		ts.post(t, "/subjects", url.Values{"code": {code}, "name": {"Odd " + code}})
		if _, found := ts.srv.router.Dashboard().Subjects.Lookup(code); !found {
			t.Fatalf("subject %q not added", code)
		}
		target := "/subjects/" + url.PathEscape(code) + "/delete"

		rec := ts.post(t, target, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected confirmation page, got %d", code, rec.Code)
		}
		expectBody(t, rec, "Are you sure you want to delete this subject?")
		expectBody(t, rec, `action="`+target+`"`)

		token := ts.srv.signer.Token("delete-subject:" + code)
		expectRedirect(t, ts.post(t, target, url.Values{"confirm": {token}}), "/?tab=subjects")
		if _, found := ts.srv.router.Dashboard().Subjects.Lookup(code); found {
			t.Fatalf("subject %q should be removed", code)
		}
	}
}
