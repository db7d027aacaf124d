// Package apitest provides an in-memory stand-in for the resource API so the
// client, the console views and the web server can be exercised end to end.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/rgpvpanel/console/internal/model"
)

// Credentials accepted by a Backend unless overridden.
const (
	Username = "admin"
	Password = "secret"
	Token    = "test-token"
)

// Call records one request seen by the backend.
type Call struct {
	Method string
	Path   string
	Auth   string
}

type failure struct {
	status  int
	message string
}

// Backend keeps resources, videos, users and sent notifications in memory
// behind the same routes as the real API. Bearer-protected routes require
// Token.
type Backend struct {
	mu            sync.RWMutex
	nextID        int
	resources     []model.Resource
	videos        []model.Video
	users         []model.User
	notifications []model.Notification
	calls         []Call
	failures      map[string]failure
	server        *httptest.Server
}

// New starts a Backend. Close it with the returned server's Close.
func New() *Backend {
	b := &Backend{failures: make(map[string]failure)}
	b.server = httptest.NewServer(b.routes())
	return b
}

// URL is the base URL of the running backend.
func (b *Backend) URL() string { return b.server.URL }

// Close stops the backend.
func (b *Backend) Close() { b.server.Close() }

// Fail makes every subsequent request matching method and path prefix return
// status with the given message (an empty message sends no JSON body).
func (b *Backend) Fail(method, pathPrefix string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+pathPrefix] = failure{status: status, message: message}
}

// Recover clears every injected failure.
func (b *Backend) Recover() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]failure)
}

// SeedResources appends records, assigning ids to those without one.
func (b *Backend) SeedResources(rs ...model.Resource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range rs {
		if r.ID == "" {
			r.ID = b.newID()
		}
		b.resources = append(b.resources, r)
	}
}

// SeedVideos appends records, assigning ids to those without one.
func (b *Backend) SeedVideos(vs ...model.Video) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, v := range vs {
		if v.ID == "" {
			v.ID = b.newID()
		}
		b.videos = append(b.videos, v)
	}
}

// SeedUsers appends registered users.
func (b *Backend) SeedUsers(us ...model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users = append(b.users, us...)
}

// Resources returns a copy of the stored resources.
func (b *Backend) Resources() []model.Resource {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Resource(nil), b.resources...)
}

// Videos returns a copy of the stored videos.
func (b *Backend) Videos() []model.Video {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Video(nil), b.videos...)
}

// Notifications returns the broadcasts received so far.
func (b *Backend) Notifications() []model.Notification {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]model.Notification(nil), b.notifications...)
}

// Calls returns every request seen so far.
func (b *Backend) Calls() []Call {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Call(nil), b.calls...)
}

// CountCalls counts requests with the given method and exact path.
func (b *Backend) CountCalls(method, path string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) newID() string {
	b.nextID++
	return "id" + strconv.Itoa(b.nextID)
}

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/login", b.handleLogin)
	mux.HandleFunc("/api/resources", b.handleResources)
	mux.HandleFunc("/api/resources/", b.handleResource)
	mux.HandleFunc("/api/videos", b.handleVideos)
	mux.HandleFunc("/api/videos/", b.handleVideo)
	mux.HandleFunc("/api/users", b.handleUsers)
	mux.HandleFunc("/api/notifications", b.handleNotifications)
	return b.record(mux)
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, Call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")})
		var hit *failure
		for key, f := range b.failures {
			method, prefix, _ := strings.Cut(key, " ")
			if method == r.Method && strings.HasPrefix(r.URL.Path, prefix) {
				f := f
				hit = &f
				break
			}
		}
		b.mu.Unlock()
		if hit != nil {
			if hit.message == "" {
				w.WriteHeader(hit.status)
				return
			}
			respondJSON(w, hit.status, map[string]string{"message": hit.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+Token {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return false
	}
	return true
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	if creds.Username != Username || creds.Password != Password {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": Token})
}

func (b *Backend) handleResources(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, http.StatusOK, b.Resources())
	case http.MethodPost:
		if !b.authorized(w, r) {
			return
		}
		var form model.ResourceForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
			return
		}
		b.mu.Lock()
		rec := resourceFromForm(b.newID(), form, 0)
		b.resources = append(b.resources, rec)
		b.mu.Unlock()
		respondJSON(w, http.StatusCreated, rec)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/resources/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := -1
	for i := range b.resources {
		if b.resources[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Resource not found"})
		return
	}
	switch r.Method {
	case http.MethodPut:
		var form model.ResourceForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
			return
		}
		b.resources[idx] = resourceFromForm(id, form, b.resources[idx].Views)
		respondJSON(w, http.StatusOK, b.resources[idx])
	case http.MethodDelete:
		b.resources = append(b.resources[:idx], b.resources[idx+1:]...)
		respondJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleVideos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		respondJSON(w, http.StatusOK, b.Videos())
	case http.MethodPost:
		if !b.authorized(w, r) {
			return
		}
		var form model.VideoForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
			return
		}
		b.mu.Lock()
		rec := videoFromForm(b.newID(), form)
		b.videos = append(b.videos, rec)
		b.mu.Unlock()
		respondJSON(w, http.StatusCreated, rec)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleVideo(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := -1
	for i := range b.videos {
		if b.videos[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		respondJSON(w, http.StatusNotFound, map[string]string{"message": "Video not found"})
		return
	}
	switch r.Method {
	case http.MethodPut:
		var form model.VideoForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
			return
		}
		b.videos[idx] = videoFromForm(id, form)
		respondJSON(w, http.StatusOK, b.videos[idx])
	case http.MethodDelete:
		b.videos = append(b.videos[:idx], b.videos[idx+1:]...)
		respondJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	b.mu.RLock()
	users := append([]model.User(nil), b.users...)
	b.mu.RUnlock()
	respondJSON(w, http.StatusOK, users)
}

func (b *Backend) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !b.authorized(w, r) {
		return
	}
	var n model.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"message": "bad request"})
		return
	}
	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Notification sent"})
}

func resourceFromForm(id string, f model.ResourceForm, views int) model.Resource {
	return model.Resource{
		ID:          id,
		Title:       f.Title,
		Type:        f.Type,
		Program:     f.Program,
		Branch:      f.Branch,
		Semester:    f.Semester,
		SubjectCode: f.SubjectCode,
		SubjectName: f.SubjectName,
		FileURL:     f.FileURL,
		VideoURL:    f.VideoURL,
		Views:       views,
	}
}

func videoFromForm(id string, f model.VideoForm) model.Video {
	return model.Video{
		ID:          id,
		SubjectCode: f.SubjectCode,
		SubjectName: f.SubjectName,
		Title:       f.Title,
		YoutubeURL:  f.YoutubeURL,
		Description: f.Description,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
