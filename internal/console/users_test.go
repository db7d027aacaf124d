package console

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rgpvpanel/console/internal/model"
)

func TestUsersExportCSV(t *testing.T) {
	f := newFixture(t)
	joined := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	f.backend.SeedUsers(
		model.User{Name: "Asha", Phone: "99999", Program: "B.Tech", Branch: "CS", Semester: 3, JoinedAt: joined},
		model.User{Name: "Ravi, Jr.", Phone: "88888", Program: "MCA", Branch: "IT", Semester: 1},
	)
	v := NewUsersView(f.env)
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	var buf bytes.Buffer
	if err := v.ExportCSV(&buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "name,phone,program,branch,semester,joinedAt\n" +
		"Asha,99999,B.Tech,CS,3,2025-01-02T03:04:05Z\n" +
		"\"Ravi, Jr.\",88888,MCA,IT,1,\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}
