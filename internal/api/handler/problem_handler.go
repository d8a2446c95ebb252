package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"minijudge/internal/api/middleware"
	"minijudge/internal/app/service"
	"minijudge/internal/common"
	"minijudge/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(problemService *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: problemService}
}

func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(pub chi.Router) {
		pub.Use(middleware.OptionalAuthenticator)
		pub.Get("/", h.listProblems)
		pub.Get("/{slug}", h.getProblem)
	})

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.Authenticator)
		admin.Use(middleware.AdminOnly)
		admin.Post("/", h.createProblem)
		admin.Put("/{problemID}", h.updateProblem)
		admin.Post("/{problemID}/testcases", h.addTestCases)
	})
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	search := r.URL.Query().Get("q")

	problems, total, err := h.problemService.ListProblems(r.Context(), limit, offset, search)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"problems": problems,
		"total":    total,
	})
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	role, _ := middleware.GetUserRoleFromContext(r.Context())
	includeExpected := role == model.RoleAdmin

	problem, err := h.problemService.GetProblemBySlug(r.Context(), slug, includeExpected)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.CreateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	problem, err := h.problemService.CreateProblem(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, problem)
}

func (h *ProblemHandler) updateProblem(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	problem, err := h.problemService.UpdateProblem(r.Context(), chi.URLParam(r, "problemID"), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}

func (h *ProblemHandler) addTestCases(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TestCases []service.TestCaseInput `json:"test_cases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	testCases, err := h.problemService.AddTestCases(r.Context(), chi.URLParam(r, "problemID"), req.TestCases)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, testCases)
}
