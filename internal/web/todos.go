package web

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/conorfennell/todoagenda/internal/domain"
	"github.com/conorfennell/todoagenda/internal/storage"
	"github.com/conorfennell/todoagenda/internal/validation"
)

const (
	msgTodoAdded       = "Todo Successfully Added"
	msgTodoDeleted     = "Todo Deleted"
	msgInvalidBody     = "Invalid Request Body"
	msgStatusUpdated   = "Status Updated"
	msgPriorityUpdated = "Priority Updated"
	msgTodoUpdated     = "Todo Updated"
	msgCategoryUpdated = "Category Updated"
	msgDueDateUpdated  = "Due Date Updated"
)

// maxBodyBytes caps request bodies read by the create and update handlers.
const maxBodyBytes = 1 << 20

// createTodoRequest keeps the id raw: it may arrive as a number or a numeric string.
type createTodoRequest struct {
	ID       json.RawMessage `json:"id"`
	Todo     string          `json:"todo"`
	Priority string          `json:"priority"`
	Status   string          `json:"status"`
	Category string          `json:"category"`
	DueDate  string          `json:"dueDate"`
}

// updateTodoRequest carries at most one applied field. A nil field is absent.
type updateTodoRequest struct {
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
	Todo     *string `json:"todo"`
	Category *string `json:"category"`
	DueDate  *string `json:"dueDate"`
}

// handleListTodos lists todos filtered by category, priority, status and search_q.
func (s *Server) handleListTodos() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		category, priority, status := q.Get("category"), q.Get("priority"), q.Get("status")

		if err := validation.Check(
			validation.Category(category),
			validation.Priority(priority),
			validation.Status(status),
		); err != nil {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}

		filter := storage.Filter{
			Search:   optional(q, "search_q"),
			Priority: optional(q, "priority"),
			Status:   optional(q, "status"),
			Category: optional(q, "category"),
		}
		todos, err := s.store.ListTodos(r.Context(), filter)
		if err != nil {
			internalError(w, r, err, "Error listing todos")
			return
		}
		writeJSON(w, r, http.StatusOK, domain.ToResponses(todos))
	}
}

// handleGetTodo returns one todo, or {} when the id matches nothing.
func (s *Server) handleGetTodo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoID(r)
		if !ok {
			writeJSON(w, r, http.StatusOK, struct{}{})
			return
		}

		todo, err := s.store.FindTodoByID(r.Context(), id)
		if err != nil {
			internalError(w, r, err, "Error finding todo")
			return
		}
		if todo == nil {
			writeJSON(w, r, http.StatusOK, struct{}{})
			return
		}
		writeJSON(w, r, http.StatusOK, domain.ToResponse(*todo))
	}
}

// handleGetAgenda lists the todos due on the date query parameter.
func (s *Server) handleGetAgenda() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dueDate, err := validation.NormalizeDueDate(r.URL.Query().Get("date"), s.opts.DatePolicy)
		if err != nil {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}

		todos, err := s.store.FindTodosByDueDate(r.Context(), dueDate)
		if err != nil {
			internalError(w, r, err, "Error getting agenda")
			return
		}
		writeJSON(w, r, http.StatusOK, domain.ToResponses(todos))
	}
}

// handleCreateTodo validates and inserts a new todo.
func (s *Server) handleCreateTodo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTodoRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeText(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		req.Priority = strings.ToUpper(req.Priority)
		req.Status = strings.ToUpper(req.Status)
		req.Category = strings.ToUpper(req.Category)

		if err := validation.Check(
			validation.Category(req.Category),
			validation.Priority(req.Priority),
			validation.Status(req.Status),
		); err != nil {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		dueDate, err := validation.NormalizeDueDate(req.DueDate, s.opts.DatePolicy)
		if err != nil {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		id, ok := bodyID(req.ID)
		if !ok {
			writeText(w, http.StatusBadRequest, (&validation.FieldError{Field: validation.FieldID}).Error())
			return
		}

		todo := domain.Todo{
			ID:       id,
			Text:     req.Todo,
			Priority: domain.Priority(req.Priority),
			Status:   domain.Status(req.Status),
			Category: domain.Category(req.Category),
			DueDate:  dueDate,
		}
		if err := s.store.InsertTodo(r.Context(), todo); err != nil {
			internalError(w, r, err, "Error inserting todo")
			return
		}
		writeText(w, http.StatusOK, msgTodoAdded)
	}
}

// handleUpdateTodo applies the first present field of status, priority,
// todo, category and dueDate. Later fields are ignored.
func (s *Server) handleUpdateTodo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateTodoRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeText(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		col, value, msg, err := s.resolveUpdate(req)
		if err != nil {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}

		// An id that is not an integer matches no row, so there is nothing to update.
		if id, ok := todoID(r); ok {
			if _, err := s.store.UpdateTodoField(r.Context(), id, col, value); err != nil {
				internalError(w, r, err, "Error updating todo")
				return
			}
		}
		writeText(w, http.StatusOK, msg)
	}
}

// resolveUpdate picks the applied field and validates its value.
func (s *Server) resolveUpdate(req updateTodoRequest) (storage.Column, string, string, error) {
	switch {
	case req.Status != nil:
		v := strings.ToUpper(*req.Status)
		return storage.ColumnStatus, v, msgStatusUpdated, validation.Check(validation.Status(v))
	case req.Priority != nil:
		v := strings.ToUpper(*req.Priority)
		return storage.ColumnPriority, v, msgPriorityUpdated, validation.Check(validation.Priority(v))
	case req.Todo != nil:
		return storage.ColumnTodo, *req.Todo, msgTodoUpdated, nil
	case req.Category != nil:
		v := strings.ToUpper(*req.Category)
		return storage.ColumnCategory, v, msgCategoryUpdated, validation.Check(validation.Category(v))
	default:
		if req.DueDate == nil {
			return "", "", "", &validation.FieldError{Field: validation.FieldDueDate}
		}
		v, err := validation.NormalizeDueDate(*req.DueDate, s.opts.DatePolicy)
		return storage.ColumnDueDate, v, msgDueDateUpdated, err
	}
}

// handleDeleteTodo removes a todo. It succeeds whether or not the id exists.
func (s *Server) handleDeleteTodo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := todoID(r); ok {
			if _, err := s.store.DeleteTodo(r.Context(), id); err != nil {
				internalError(w, r, err, "Error deleting todo")
				return
			}
		}
		writeText(w, http.StatusOK, msgTodoDeleted)
	}
}

// decodeBody decodes a JSON request body of at most maxBodyBytes into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// bodyID reads an integer id given as a JSON number or a numeric string.
// An absent or null id is not ok.
func bodyID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}

func todoID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "todoId"), 10, 64)
	return id, err == nil
}

// optional returns nil when the query parameter is absent or empty.
func optional(q url.Values, key string) *string {
	vs, ok := q[key]
	if !ok || len(vs) == 0 || vs[0] == "" {
		return nil
	}
	v := vs[0]
	return &v
}
