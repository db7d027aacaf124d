package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rgpvpanel/console/internal/console"
)

func (s *Server) handleResourceSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	values, upload, err := s.readForm(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if upload != nil {
		defer upload.cleanup()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	view := dash.Resources
	bindResourceForm(&view.Form, values)
	if upload != nil {
		fileURL, info, err := s.storeUpload(r.Context(), upload)
		if err != nil {
			s.log.Warn("upload rejected", zap.String("file", upload.filename), zap.Error(err))
			s.notices.Notify(console.Notice{Level: console.LevelError, Message: "Upload failed: " + err.Error()})
			redirect(w, r, "/?tab=pdfs")
			return
		}
		view.Form.FileURL = fileURL
		if view.Form.Title == "" {
			view.Form.Title = info.Snippet
		}
	}
	_ = view.Submit(r.Context())
	redirect(w, r, "/?tab=pdfs")
}

func (s *Server) handleResourceRoute(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/resources/cancel" {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if dash, ok := s.dashboard(w, r); ok {
			dash.Resources.CancelEdit()
			redirect(w, r, "/?tab=pdfs")
		}
		return
	}
	id, verb, ok := splitRoute(r.URL.EscapedPath(), "/resources/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	view := dash.Resources
	switch {
	case verb == "edit" && r.Method == http.MethodGet:
		if err := view.BeginEditByID(id); err != nil {
			http.Error(w, "resource not found", http.StatusNotFound)
			return
		}
		redirect(w, r, "/?tab=pdfs")
	case verb == "delete" && r.Method == http.MethodPost:
		s.confirmOrPrompt(w, r, "delete-resource:"+id, "/?tab=pdfs", func(c console.Confirmer) {
			_, _ = view.Remove(r.Context(), id, c)
		})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleVideoSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	view := dash.Videos
	bindVideoForm(&view.Form, r.PostForm)
	_ = view.Submit(r.Context())
	redirect(w, r, "/?tab=videos")
}

func (s *Server) handleVideoRoute(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/videos/cancel" {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if dash, ok := s.dashboard(w, r); ok {
			dash.Videos.CancelEdit()
			redirect(w, r, "/?tab=videos")
		}
		return
	}
	id, verb, ok := splitRoute(r.URL.EscapedPath(), "/videos/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	view := dash.Videos
	switch {
	case verb == "edit" && r.Method == http.MethodGet:
		if err := view.BeginEditByID(id); err != nil {
			http.Error(w, "video not found", http.StatusNotFound)
			return
		}
		redirect(w, r, "/?tab=videos")
	case verb == "delete" && r.Method == http.MethodPost:
		s.confirmOrPrompt(w, r, "delete-video:"+id, "/?tab=videos", func(c console.Confirmer) {
			_, _ = view.Remove(r.Context(), id, c)
		})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSubjectAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	if err := dash.Subjects.Add(r.PostForm.Get("code"), r.PostForm.Get("name")); err != nil {
		s.notices.Notify(console.Notice{Level: console.LevelError, Message: err.Error()})
	}
	redirect(w, r, "/?tab=subjects")
}

func (s *Server) handleSubjectRoute(w http.ResponseWriter, r *http.Request) {
	code, verb, ok := splitRoute(r.URL.EscapedPath(), "/subjects/")
	if !ok || verb != "delete" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	subjects := dash.Subjects
	s.confirmOrPrompt(w, r, "delete-subject:"+code, "/?tab=subjects", func(c console.Confirmer) {
		subjects.Remove(code, c)
	})
}

func (s *Server) handleBranchAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	if err := dash.Branches.Add(r.PostForm.Get("code")); err != nil {
		s.notices.Notify(console.Notice{Level: console.LevelError, Message: err.Error()})
	}
	redirect(w, r, "/?tab=branches")
}

func (s *Server) handleBranchRoute(w http.ResponseWriter, r *http.Request) {
	code, verb, ok := splitRoute(r.URL.EscapedPath(), "/branches/")
	if !ok || verb != "delete" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	branches := dash.Branches
	s.confirmOrPrompt(w, r, "delete-branch:"+code, "/?tab=branches", func(c console.Confirmer) {
		branches.Remove(code, c)
	})
}

func (s *Server) handleUsersExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)
	if err := dash.Users.ExportCSV(w); err != nil {
		s.log.Error("export users", zap.Error(err))
	}
}

func (s *Server) handleNotificationSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	composer := dash.Composer
	bindDraft(&composer.Draft, r.PostForm)
	_ = composer.Send(r.Context())
	redirect(w, r, "/?tab=notifications")
}

// handleNotificationPreview renders the preview card for the posted draft
// without sending anything.
func (s *Server) handleNotificationPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.dashboard(w, r)
	if !ok {
		return
	}
	composer := dash.Composer
	bindDraft(&composer.Draft, r.PostForm)
	s.render(w, "preview", composer.Preview())
}
