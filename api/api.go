// Package api exposes the ticklist auth and todo operations over HTTP.
//
// Absence is answered with a 200 and a JSON null body rather than a
// 404, callers branch on the body. Failures that are the client's
// fault map to 4xx, everything else is a 500 with the detail kept in
// the server log.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/andrebq/ticklist/auth"
	authapi "github.com/andrebq/ticklist/auth/api"
	"github.com/andrebq/ticklist/internal/logutil"
	"github.com/andrebq/ticklist/store"
	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

type (
	handlers struct {
		flow  *auth.Flow
		todos *store.S
	}

	credentialsRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	createTodoRequest struct {
		Title       string  `json:"title" validate:"required"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}

	updateTodoRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}

	userResponse struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}

	tokenResponse struct {
		AccessToken string `json:"access_token"`
	}
)

var validate = validator.New()

// AsHandler mounts the full route table. Everything under /todo sits
// behind the realm, the two /auth routes are reachable without a
// token.
func AsHandler(flow *auth.Flow, todos *store.S, realm *authapi.SecurityRealm) http.Handler {
	h := handlers{flow: flow, todos: todos}
	router := httprouter.New()
	router.HandlerFunc("POST", "/auth/register", h.register)
	router.HandlerFunc("POST", "/auth/login", h.login)
	router.Handler("POST", "/todo", realm.Protect(http.HandlerFunc(h.createTodo)))
	router.Handler("GET", "/todo", realm.Protect(http.HandlerFunc(h.listTodos)))
	router.Handler("GET", "/todo/:id", realm.Protect(http.HandlerFunc(h.getTodo)))
	router.Handler("PATCH", "/todo/:id", realm.Protect(http.HandlerFunc(h.updateTodo)))
	router.Handler("DELETE", "/todo/:id", realm.Protect(http.HandlerFunc(h.deleteTodo)))
	return router
}

func (h handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.flow.Register(r.Context(), req.Username, req.Password)
	var taken store.UsernameTaken
	if errors.As(err, &taken) {
		writeError(w, http.StatusConflict, taken.Error())
		return
	} else if err != nil {
		serverFault(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, userResponse{ID: p.ID, Username: p.Username})
}

func (h handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.flow.ValidateCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		serverFault(w, r, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	token, err := h.flow.Login(r.Context(), *p)
	if err != nil {
		serverFault(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tokenResponse{AccessToken: token})
}

func (h handlers) createTodo(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	completed := false
	if req.Completed != nil {
		completed = *req.Completed
	}
	todo, err := h.todos.CreateTodo(r.Context(), req.Title, req.Description, completed)
	if err != nil {
		serverFault(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, todo)
}

func (h handlers) listTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.todos.ListTodos(r.Context())
	if err != nil {
		serverFault(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, todos)
}

func (h handlers) getTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	todo, err := h.todos.GetTodo(r.Context(), id)
	if err != nil {
		serverFault(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, todo)
}

func (h handlers) updateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	var req updateTodoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	todo, err := h.todos.UpdateTodo(r.Context(), id, store.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		serverFault(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, todo)
}

func (h handlers) deleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}
	todo, err := h.todos.DeleteTodo(r.Context(), id)
	if err != nil {
		serverFault(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, todo)
}

func todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "todo id must be an integer")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(out)
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid json")
		return false
	}
	err = validate.Struct(out)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	buf, err := json.Marshal(body)
	if err != nil {
		serverFault(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(status)
	w.Write(buf)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func serverFault(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed with an unexpected error")
	writeError(w, http.StatusInternalServerError, "server is mis-behaving, try again later")
}
