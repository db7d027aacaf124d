package console

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/model"
)

// State is the top level screen.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Tab is a dashboard section.
type Tab string

const (
	TabPDFs          Tab = "pdfs"
	TabVideos        Tab = "videos"
	TabSubjects      Tab = "subjects"
	TabBranches      Tab = "branches"
	TabUsers         Tab = "users"
	TabNotifications Tab = "notifications"
)

// Tabs lists the dashboard sections in display order.
var Tabs = []Tab{TabPDFs, TabVideos, TabSubjects, TabBranches, TabUsers, TabNotifications}

// ParseTab validates a tab name.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// ErrNotAuthenticated is returned by dashboard operations before login.
var ErrNotAuthenticated = errors.New("not authenticated")

const msgInvalidCredentials = "Invalid Credentials. Access Denied."

// Dashboard groups the views shown after login.
type Dashboard struct {
	Resources *ResourceView
	Videos    *VideoView
	Subjects  *SubjectRegistry
	Branches  *BranchRegistry
	Users     *UsersView
	Composer  *Composer
}

// NewDashboard builds a dashboard with empty collections.
func NewDashboard(env Env) *Dashboard {
	subjects := NewSubjectRegistry()
	return &Dashboard{
		Resources: NewResourceView(env, subjects),
		Videos:    NewVideoView(env),
		Subjects:  subjects,
		Branches:  NewBranchRegistry(),
		Users:     NewUsersView(env),
		Composer:  NewComposer(env),
	}
}

// Mount performs the fetches a freshly shown dashboard makes.
func (d *Dashboard) Mount(ctx context.Context) {
	_ = d.Resources.Refresh(ctx)
	_ = d.Videos.Refresh(ctx)
}

// Router switches between the login screen and the dashboard. A failed
// protected call never forces a return to Unauthenticated.
type Router struct {
	env      Env
	state    State
	tab      Tab
	dash     *Dashboard
	loginErr string
}

// NewRouter returns a router in the Unauthenticated state.
func NewRouter(env Env) *Router {
	return &Router{env: env, tab: TabPDFs}
}

// Start resolves the initial state from the session store. An unreadable
// session file is logged and treated as logged out.
func (r *Router) Start(ctx context.Context) {
	_, ok, err := r.env.Session.Load()
	if err != nil {
		r.env.logger().Warn("session unreadable", zap.Error(err))
	}
	if !ok {
		r.state = Unauthenticated
		return
	}
	r.enter(ctx)
}

// Login exchanges credentials for a token. Rejected credentials are reported
// inline through LoginError.
func (r *Router) Login(ctx context.Context, creds model.Credentials) error {
	if err := model.Validate(creds); err != nil {
		r.loginErr = err.Error()
		return err
	}
	token, err := r.env.API.Login(ctx, creds)
	if err != nil {
		r.env.logger().Info("login rejected", zap.String("username", creds.Username), zap.Error(err))
		r.loginErr = msgInvalidCredentials
		return err
	}
	if err := r.env.Session.Set(token); err != nil {
		// Still active for this run.
		r.env.logger().Error("persist session failed", zap.Error(err))
	}
	r.enter(ctx)
	return nil
}

func (r *Router) enter(ctx context.Context) {
	r.state = Authenticated
	r.tab = TabPDFs
	r.loginErr = ""
	r.dash = NewDashboard(r.env)
	r.dash.Mount(ctx)
}

// Logout clears the session and returns to the login screen.
func (r *Router) Logout() error {
	r.state = Unauthenticated
	r.dash = nil
	r.tab = TabPDFs
	return r.env.Session.Clear()
}

// SelectTab switches the visible section. Only the users tab fetches, and it
// does so every time it is selected.
func (r *Router) SelectTab(ctx context.Context, tab Tab) error {
	if r.state != Authenticated {
		return ErrNotAuthenticated
	}
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}
	r.tab = tab
	if tab == TabUsers {
		_ = r.dash.Users.Refresh(ctx)
	}
	return nil
}

// State is the current top level screen.
func (r *Router) State() State { return r.state }

// Tab is the visible dashboard section.
func (r *Router) Tab() Tab { return r.tab }

// Dashboard returns the dashboard, or nil when logged out.
func (r *Router) Dashboard() *Dashboard { return r.dash }

// LoginError is the message shown on the login form, if any.
func (r *Router) LoginError() string { return r.loginErr }
