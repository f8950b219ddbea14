package domain

// Priority is the urgency of a todo. Stored uppercase.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Status is the progress state of a todo.
type Status string

const (
	StatusToDo       Status = "TO DO"
	StatusInProgress Status = "IN PROGRESS"
	StatusDone       Status = "DONE"
)

// Category groups todos by area of life.
type Category string

const (
	CategoryWork     Category = "WORK"
	CategoryHome     Category = "HOME"
	CategoryLearning Category = "LEARNING"
)

// Priorities, Statuses and Categories list the allowed values in display order.
var (
	Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}
	Statuses   = []Status{StatusToDo, StatusInProgress, StatusDone}
	Categories = []Category{CategoryWork, CategoryHome, CategoryLearning}
)

// Todo is a single row of the todo table.
type Todo struct {
	ID       int64
	Text     string
	Priority Priority
	Status   Status
	Category Category
	DueDate  string // YYYY-MM-DD
}

// Response is the external JSON shape of a todo.
type Response struct {
	ID       int64    `json:"id"`
	Todo     string   `json:"todo"`
	Priority Priority `json:"priority"`
	Category Category `json:"category"`
	Status   Status   `json:"status"`
	DueDate  string   `json:"dueDate"`
}

// ToResponse maps a stored todo to its response shape.
func ToResponse(t Todo) Response {
	return Response{
		ID:       t.ID,
		Todo:     t.Text,
		Priority: t.Priority,
		Category: t.Category,
		Status:   t.Status,
		DueDate:  t.DueDate,
	}
}

// ToResponses maps a slice of todos. The result is never nil so it encodes as [].
func ToResponses(todos []Todo) []Response {
	out := make([]Response, 0, len(todos))
	for _, t := range todos {
		out = append(out, ToResponse(t))
	}
	return out
}
