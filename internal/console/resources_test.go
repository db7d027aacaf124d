package console

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	"github.com/rgpvpanel/console/internal/apiclient"
	"github.com/rgpvpanel/console/internal/model"
)

func TestResourceRefreshIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedResources(sampleResources()...)
	v := NewResourceView(f.env, NewSubjectRegistry())
	ctx := context.Background()
	if err := v.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	first := v.Resources()
	if err := v.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !reflect.DeepEqual(first, v.Resources()) {
		t.Fatalf("consecutive refreshes differ")
	}
	if len(first) != 4 || first[0].Title != "DS notes" {
		t.Fatalf("server order not preserved: %+v", first)
	}
}

func TestResourceSubmitRoundTrip(t *testing.T) {
	f := newFixture(t)
	v := NewResourceView(f.env, NewSubjectRegistry())
	ctx := context.Background()
	v.Form = model.ResourceForm{
		Title: "2023 Solved Paper", Type: model.TypePYQ, Program: "B.Tech", Branch: "CS",
		Semester: 5, SubjectCode: "CS-501", SubjectName: "TOC", FileURL: "https://drive/x",
	}
	submitted := v.Form
	if err := v.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if n := onlyNotice(t, f.notices, LevelInfo); n.Message != msgResourceCreated {
		t.Fatalf("unexpected notice %q", n.Message)
	}
	list := v.Resources()
	if len(list) != 1 {
		t.Fatalf("expected refreshed collection with 1 resource, got %+v", list)
	}
	got := model.FormFromResource(list[0])
	if !reflect.DeepEqual(got, submitted) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, submitted)
	}
	// Transient fields are cleared, selectors kept.
	if v.Form.Title != "" || v.Form.FileURL != "" || v.Form.SubjectCode != "" || v.Form.SubjectName != "" {
		t.Fatalf("transient fields not cleared: %+v", v.Form)
	}
	if v.Form.Type != model.TypePYQ || v.Form.Semester != 5 || v.Form.Branch != "CS" {
		t.Fatalf("selectors should be kept: %+v", v.Form)
	}
}

func TestResourceEditAndUpdate(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedResources(sampleResources()...)
	v := NewResourceView(f.env, NewSubjectRegistry())
	ctx := context.Background()
	_ = v.Refresh(ctx)
	target := v.Resources()[1]
	if err := v.BeginEditByID(target.ID); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if !v.Editing() || v.Form.Title != target.Title {
		t.Fatalf("form not loaded: %+v", v.Form)
	}
	v.Form.Title = "OS pyq 2024"
	if err := v.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if n := onlyNotice(t, f.notices, LevelInfo); n.Message != msgResourceUpdated {
		t.Fatalf("unexpected notice %q", n.Message)
	}
	if v.Editing() {
		t.Fatalf("edit mode should be cleared")
	}
	if v.Resources()[1].Title != "OS pyq 2024" {
		t.Fatalf("update not reflected: %+v", v.Resources()[1])
	}
	if f.backend.CountCalls(http.MethodPost, "/api/resources") != 0 {
		t.Fatalf("edit must not create")
	}
	if err := v.BeginEditByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResourceCancelEdit(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedResources(sampleResources()...)
	v := NewResourceView(f.env, nil)
	_ = v.Refresh(context.Background())
	before := len(f.backend.Calls())
	v.BeginEdit(v.Resources()[0])
	v.CancelEdit()
	if v.Editing() || v.Form.Title != "" || v.Form.FileURL != "" {
		t.Fatalf("cancel should clear edit state: %+v", v.Form)
	}
	if len(f.backend.Calls()) != before {
		t.Fatalf("cancel must not hit the network")
	}
}

func TestResourceSubmitFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedResources(sampleResources()...)
	v := NewResourceView(f.env, NewSubjectRegistry())
	ctx := context.Background()
	_ = v.Refresh(ctx)
	before := v.Resources()

	f.backend.Fail(http.MethodPut, "/api/resources/", http.StatusInternalServerError, "boom")
	v.BeginEdit(before[0])
	v.Form.Title = "changed"
	err := v.Submit(ctx)
	var reqErr *apiclient.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if n := onlyNotice(t, f.notices, LevelError); n.Message != msgResourceSaveFailed {
		t.Fatalf("unexpected notice %q", n.Message)
	}
	if !reflect.DeepEqual(before, v.Resources()) {
		t.Fatalf("collection changed after failed mutation")
	}
	if !v.Editing() || v.Form.Title != "changed" {
		t.Fatalf("form should be preserved for retry: %+v", v.Form)
	}
}

// A 401 is handled like any other failure: one notice, session untouched.
func TestResourceUnauthorizedIsGenericFailure(t *testing.T) {
	f := newFixture(t)
	_ = f.session.Set("expired")
	v := NewResourceView(f.env, nil)
	v.Form = model.ResourceForm{Title: "t", Type: model.TypeNote, SubjectCode: "CS-1", SubjectName: "n", FileURL: "u"}
	if err := v.Submit(context.Background()); err == nil {
		t.Fatalf("expected failure")
	}
	if n := onlyNotice(t, f.notices, LevelError); n.Message != msgResourceSaveFailed {
		t.Fatalf("unexpected notice %q", n.Message)
	}
	if !f.session.Active() {
		t.Fatalf("session must not be cleared on 401")
	}
}

func TestResourceSubmitValidationSkipsNetwork(t *testing.T) {
	f := newFixture(t)
	v := NewResourceView(f.env, nil)
	v.Form.Title = "no subject"
	err := v.Submit(context.Background())
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(f.backend.Calls()) != 0 {
		t.Fatalf("validation failure reached the network")
	}
	onlyNotice(t, f.notices, LevelError)
}

func TestResourceRemove(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedResources(sampleResources()...)
	v := NewResourceView(f.env, nil)
	ctx := context.Background()
	_ = v.Refresh(ctx)
	id := v.Resources()[0].ID

	var prompt string
	ok, err := v.Remove(ctx, id, ConfirmFunc(func(p string) bool { prompt = p; return false }))
	if ok || err != nil {
		t.Fatalf("declined remove: ok=%v err=%v", ok, err)
	}
	if prompt != promptDeleteResource {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if f.backend.CountCalls(http.MethodDelete, "/api/resources/"+id) != 0 {
		t.Fatalf("declined remove reached the network")
	}

	ok, err = v.Remove(ctx, id, Always)
	if !ok || err != nil {
		t.Fatalf("remove: ok=%v err=%v", ok, err)
	}
	if len(v.Resources()) != 3 {
		t.Fatalf("expected refreshed collection of 3, got %d", len(v.Resources()))
	}
	if f.notices.Len() != 0 {
		t.Fatalf("successful delete raises no notice")
	}
}

func TestResourceRemoveFailure(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedResources(sampleResources()...)
	v := NewResourceView(f.env, nil)
	ctx := context.Background()
	_ = v.Refresh(ctx)
	before := v.Resources()
	f.backend.Fail(http.MethodDelete, "/api/resources/", http.StatusServiceUnavailable, "")
	ok, err := v.Remove(ctx, before[0].ID, Always)
	if ok || err == nil {
		t.Fatalf("expected failure, ok=%v err=%v", ok, err)
	}
	if n := onlyNotice(t, f.notices, LevelError); n.Message != msgResourceDelFailed {
		t.Fatalf("unexpected notice %q", n.Message)
	}
	if !reflect.DeepEqual(before, v.Resources()) {
		t.Fatalf("collection changed after failed delete")
	}
}

func TestResourceRefreshReadPolicy(t *testing.T) {
	f := newFixture(t)
	f.backend.SeedResources(sampleResources()...)
	v := NewResourceView(f.env, nil)
	ctx := context.Background()
	_ = v.Refresh(ctx)
	before := v.Resources()

	f.backend.Fail(http.MethodGet, "/api/resources", http.StatusInternalServerError, "")
	if err := v.Refresh(ctx); err == nil {
		t.Fatalf("expected refresh error")
	}
	if f.notices.Len() != 0 {
		t.Fatalf("swallow policy must not raise notices")
	}
	if !reflect.DeepEqual(before, v.Resources()) {
		t.Fatalf("stale collection should be kept")
	}

	f.env.ReadPolicy = ReadSurface
	v = NewResourceView(f.env, nil)
	_ = v.Refresh(ctx)
	if n := onlyNotice(t, f.notices, LevelError); n.Message != "Failed to load resources." {
		t.Fatalf("unexpected notice %q", n.Message)
	}
}

func TestParseReadPolicy(t *testing.T) {
	if p, err := ParseReadPolicy("Surface"); err != nil || p != ReadSurface {
		t.Fatalf("surface: %v %v", p, err)
	}
	if p, err := ParseReadPolicy(""); err != nil || p != ReadSwallow {
		t.Fatalf("default: %v %v", p, err)
	}
	if _, err := ParseReadPolicy("retry"); err == nil {
		t.Fatalf("expected error")
	}
}
