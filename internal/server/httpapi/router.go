package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) newRouter() *mux.Router {
	public := mux.NewRouter()
	public.NotFoundHandler = http.HandlerFunc(handleNotFound)

	// Middleware runs in registration order.
	public.Use(s.recoverMiddleware)
	public.Use(s.loggingMiddleware)
	public.Use(s.bodyLimitMiddleware)

	public.HandleFunc("/", handleRoot).Methods(http.MethodGet)
	public.PathPrefix("/static/").Handler(
		http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir)))).Methods(http.MethodGet)

	public.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	public.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	// Routes below require a valid bearer token.
	protected := public.NewRoute().Subrouter()
	protected.Use(s.authMiddleware)

	protected.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/recipes", s.handleListRecipes).Methods(http.MethodGet)
	protected.HandleFunc("/recipes", s.handleCreateRecipe).Methods(http.MethodPost)
	protected.HandleFunc("/recipes/{id}", s.handleGetRecipe).Methods(http.MethodGet)
	protected.HandleFunc("/recipes/{id}", s.handleUpdateRecipe).Methods(http.MethodPut)
	protected.HandleFunc("/recipes/{id}", s.handleDeleteRecipe).Methods(http.MethodDelete)
	protected.HandleFunc("/recipes/{id}/image", s.handleRecipeImage).Methods(http.MethodPost)
	protected.HandleFunc("/recipes/{id}/image", s.handleConfirmImage).Methods(http.MethodPut)

	return public
}
