package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"minijudge/internal/api/middleware"
	"minijudge/internal/app/service"
	"minijudge/internal/common"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

// RegisterRoutes mounts the submission routes. Submitting and viewing
// results is open to anonymous users; history requires an identity.
func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(open chi.Router) {
		open.Use(middleware.OptionalAuthenticator)
		open.Post("/", h.createSubmission)
		open.Get("/{submissionID}", h.getSubmission)
	})

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Get("/mine", h.listMySubmissions)
		authed.Get("/problem/{problemID}/mine", h.listMySubmissionsForProblem)
	})
}

// RegisterSolutionRoutes mounts the accepted-solution lookup.
func (h *SubmissionHandler) RegisterSolutionRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/{problemID}", h.getMySolution)
}

func (h *SubmissionHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	var userID *string
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		userID = &id
	}

	submission, err := h.submissionService.Submit(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, submission)
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	submission, err := h.submissionService.GetSubmission(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, submission)
}

func (h *SubmissionHandler) listMySubmissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	subs, total, err := h.submissionService.ListMySubmissions(r.Context(), userID, limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": subs,
		"total":       total,
	})
}

func (h *SubmissionHandler) listMySubmissionsForProblem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	subs, total, err := h.submissionService.ListMySubmissionsForProblem(r.Context(), userID, chi.URLParam(r, "problemID"), limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": subs,
		"total":       total,
	})
}

func (h *SubmissionHandler) getMySolution(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	solution, err := h.submissionService.GetMySolution(r.Context(), userID, chi.URLParam(r, "problemID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solution)
}
