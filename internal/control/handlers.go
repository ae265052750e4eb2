package control

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type startTaskRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	var req startTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	id, err := s.sched.StartTask(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"taskId": id})
}

func (s *Server) handleBatchStartTask(w http.ResponseWriter, r *http.Request) {
	var req startTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	ids, err := s.sched.BatchStartTask(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"taskIds": ids})
}

func (s *Server) handleAllTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.All())
}

func (s *Server) handleActiveTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Active())
}

func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.store.ByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, err := s.store.ByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t.Progress)
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok := s.sched.CancelTask(id)
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": ok})
}

func (s *Server) handleRetryTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sched.RetryTask(r.Context(), id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"retried": true})
}

func (s *Server) handleClearTaskHistory(w http.ResponseWriter, r *http.Request) {
	removed := s.store.ClearHistory()
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.history.GetHistory())
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (s *Server) handleHistoryCheckURL(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	status, found, err := s.history.CheckURL(url)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"found": found, "status": status})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"libraries":            s.cfg.Libraries(),
		"active_library":       s.cfg.ActiveLibrary(),
		"output_dir":           s.cfg.OutputDir(),
		"proxy_url":            s.cfg.ProxyURL(),
		"max_concurrent_tasks": s.cfg.MaxConcurrentTasks(),
	})
}

type stringValueRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleSetOutputDir(w http.ResponseWriter, r *http.Request) {
	var req stringValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	if err := s.cfg.SetOutputDir(req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSetProxyURL(w http.ResponseWriter, r *http.Request) {
	var req stringValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	if err := s.cfg.SetProxyURL(req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSetActiveLibrary(w http.ResponseWriter, r *http.Request) {
	var req stringValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	if err := s.cfg.SetActiveLibrary(req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleAddLibrary(w http.ResponseWriter, r *http.Request) {
	var req stringValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	if err := s.cfg.AddLibrary(req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type intValueRequest struct {
	Value int `json:"value"`
}

func (s *Server) handleSetMaxConcurrentTasks(w http.ResponseWriter, r *http.Request) {
	var req intValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value <= 0 {
		writeError(w, http.StatusBadRequest, "value must be a positive integer")
		return
	}
	if err := s.cfg.SetMaxConcurrentTasks(req.Value); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
