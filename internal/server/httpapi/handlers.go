package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/dmitrijs2005/recipebook/internal/server/models"
	"github.com/gorilla/mux"
)

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	RespondWithError(w, http.StatusNotFound, "not found")
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Server started"))
}

// fail writes the client-facing form of err; 5xx causes are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	RespondWithError(w, code, msg)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	token, err := s.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	token, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// principal returns the caller; the auth middleware guarantees it.
func principal(r *http.Request) *models.Principal {
	p, _ := PrincipalFromContext(r.Context())
	return p
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	RespondWithJSON(w, http.StatusOK, meResponse{ID: p.UserID, Email: p.Email})
}

func recipeID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad recipe id", common.ErrorValidation)
	}
	return id, nil
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var owner int64
	if mine, _ := strconv.ParseBool(q.Get("mine")); mine {
		owner = principal(r).UserID
	}

	items, err := s.recipes.List(r.Context(), q.Get("name"), owner)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	recipe, err := s.recipes.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	recipe, err := s.recipes.Create(r.Context(), principal(r), req.toModel())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, recipe)
}

func (s *Server) handleUpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var upd models.RecipeUpdate
	if err := decode(r, &upd); err != nil {
		s.fail(w, r, err)
		return
	}

	recipe, err := s.recipes.Update(r.Context(), principal(r), id, upd)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.recipes.Delete(r.Context(), principal(r), id); err != nil {
		s.fail(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, map[string]int64{"deleted": id})
}

func (s *Server) handleRecipeImage(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	upload, err := s.recipes.PresignImageUpload(r.Context(), principal(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, upload)
}

func (s *Server) handleConfirmImage(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req imageRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	recipe, err := s.recipes.ConfirmImageUpload(r.Context(), principal(r), id, req.ImageURL)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, recipe)
}
