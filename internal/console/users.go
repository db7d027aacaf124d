package console

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rgpvpanel/console/internal/model"
)

// UsersView lists registered app users.
type UsersView struct {
	env   Env
	users []model.User
}

// NewUsersView returns an empty view.
func NewUsersView(env Env) *UsersView {
	return &UsersView{env: env}
}

// Users returns a copy of the loaded list.
func (v *UsersView) Users() []model.User {
	return append([]model.User(nil), v.users...)
}

// Refresh replaces the list with the server's.
func (v *UsersView) Refresh(ctx context.Context) error {
	list, err := v.env.API.ListUsers(ctx)
	if err != nil {
		v.env.readFailed("users", err)
		return err
	}
	v.users = list
	return nil
}

var userCSVHeader = []string{"name", "phone", "program", "branch", "semester", "joinedAt"}

// ExportCSV writes the loaded list as CSV with a header row.
func (v *UsersView) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(userCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, u := range v.users {
		joined := ""
		if !u.JoinedAt.IsZero() {
			joined = u.JoinedAt.UTC().Format(time.RFC3339)
		}
		row := []string{u.Name, u.Phone, u.Program, u.Branch, strconv.Itoa(u.Semester), joined}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
