package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/recipepocket/content-agent/internal/db"
	"github.com/recipepocket/content-agent/internal/pipeline"
)

// RunRequest is the body of POST /run and POST /run/stream. Zero values fall
// back to the server's configured defaults.
type RunRequest struct {
	Articles    int    `json:"articles" validate:"omitempty,min=1,max=10"`
	UserRequest string `json:"user_request" validate:"omitempty,max=2000"`
	ImageModel  string `json:"image_model" validate:"omitempty,oneof=seedream-4.5 gemini-3-pro-image-preview gemini-2.5-flash-image"`
	SkipImages  *bool  `json:"skip_images"`
	AutoPublish *bool  `json:"auto_publish"`
}

// RunResponse acknowledges a started run.
type RunResponse struct {
	Status string `json:"status"`
}

// RewriteRequest is the body of POST /articles/{id}/rewrite.
type RewriteRequest struct {
	AutoPublish *bool `json:"auto_publish"`
}

// MonthlyReportRequest is the body of POST /reports/monthly.
type MonthlyReportRequest struct {
	Month string `json:"month" validate:"omitempty,len=7"`
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// runOptions merges a request over the server's configured defaults.
func (s *Server) runOptions(req RunRequest) pipeline.RunOptions {
	opts := s.defaults
	if req.Articles > 0 {
		opts.Articles = req.Articles
	}
	if req.UserRequest != "" {
		opts.UserRequest = req.UserRequest
	}
	if req.ImageModel != "" {
		opts.ImageModel = req.ImageModel
	}
	if req.SkipImages != nil {
		opts.SkipImages = *req.SkipImages
	}
	if req.AutoPublish != nil {
		opts.AutoPublish = *req.AutoPublish
	}
	return opts
}

// decodeAndValidate decodes a JSON body into dst and runs validation. A
// missing body is allowed; all request fields are optional.
func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return s.validate.Struct(dst)
}

// handleRun starts a batch run in the background and answers immediately:
// the pipeline can run far longer than any request timeout allows.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	// StartBatch claims the run slot before returning, so the 202 below
	// can never race a second accepted request.
	if _, err := s.runner.StartBatch(context.Background(), s.runOptions(req)); err != nil {
		if errors.Is(err, pipeline.ErrRunActive) {
			s.errorResponse(w, http.StatusConflict, "a pipeline run is already active")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, RunResponse{Status: "started"})
}

// handleRunStream starts a batch run and streams its events as SSE until the
// run reaches a terminal state.
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	// Subscribe before claiming the slot so no early events are missed.
	events, cancel := s.runner.Log().Subscribe()
	defer cancel()

	done, err := s.runner.StartBatch(context.Background(), s.runOptions(req))
	if err != nil {
		if errors.Is(err, pipeline.ErrRunActive) {
			s.errorResponse(w, http.StatusConflict, "a pipeline run is already active")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	sse, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	for {
		select {
		case event := <-events:
			sse.Log(event)
		case result := <-done:
			// Drain buffered events before completing.
			for {
				select {
				case event := <-events:
					sse.Log(event)
					continue
				default:
				}
				break
			}
			runID := ""
			if result != nil {
				sse.Result(result)
				runID = result.RunID
			}
			sse.Complete(runID, "finished")
			return
		case <-r.Context().Done():
			// Client went away; the run keeps going in the background.
			return
		}
	}
}

// handleActiveRun reports whether a run is in flight plus the buffered events
// of the current (or last) run.
func (s *Server) handleActiveRun(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"active": s.runner.Active(),
		"events": s.runner.Log().Events(),
	})
}

// handleManualRewrite triggers the out-of-band rewrite of a persisted article.
func (s *Server) handleManualRewrite(w http.ResponseWriter, r *http.Request) {
	articleID := r.PathValue("id")
	if articleID == "" {
		s.errorResponse(w, http.StatusBadRequest, "article id is required")
		return
	}

	var req RewriteRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	if err := s.runner.StartRewrite(context.Background(), articleID, s.defaults); err != nil {
		if errors.Is(err, pipeline.ErrRunActive) {
			s.errorResponse(w, http.StatusConflict, "a pipeline run is already active")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, RunResponse{Status: "started"})
}

// handleListArticles returns recent articles from the store.
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	if s.database == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	drafts, err := s.database.ListRecentArticles(r.Context(), 20)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"articles": drafts})
}

// handleMonthlyReport runs the monthly reporting cycle synchronously; it is a
// single analytics fetch plus one model call, short enough to await.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	var req MonthlyReportRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	report, err := s.runner.RunMonthlyReport(r.Context(), req.Month)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleGetMonthlyReport returns a stored monthly report.
func (s *Server) handleGetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	if s.database == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "no database configured")
		return
	}

	report, err := s.database.GetMonthlyReport(r.Context(), r.PathValue("month"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
