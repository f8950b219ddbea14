package validation

// Field names an input field that can fail validation.
type Field string

// Fields reported by FieldError.
const (
	FieldID       Field = "id"
	FieldCategory Field = "category"
	FieldPriority Field = "priority"
	FieldStatus   Field = "status"
	FieldDueDate  Field = "dueDate"
)

var fieldMessages = map[Field]string{
	FieldID:       "Invalid Todo Id",
	FieldCategory: "Invalid Todo Category",
	FieldPriority: "Invalid Todo Priority",
	FieldStatus:   "Invalid Todo Status",
	FieldDueDate:  "Invalid Due Date",
}

var fieldChecks = map[Field]func(string) bool{
	FieldCategory: ValidCategory,
	FieldPriority: ValidPriority,
	FieldStatus:   ValidStatus,
}

// FieldError reports which field failed. Its message is the fixed text
// returned to API callers.
type FieldError struct {
	Field Field
}

func (e *FieldError) Error() string {
	if msg, ok := fieldMessages[e.Field]; ok {
		return msg
	}
	return "Invalid " + string(e.Field)
}

// Rule binds a value to the field whose enumeration it must belong to.
type Rule struct {
	Field Field
	Value string
}

// Category, Priority and Status build rules for the matching enumeration.
func Category(v string) Rule { return Rule{Field: FieldCategory, Value: v} }
func Priority(v string) Rule { return Rule{Field: FieldPriority, Value: v} }
func Status(v string) Rule   { return Rule{Field: FieldStatus, Value: v} }

// Check applies rules in order and returns a *FieldError for the first one
// that fails, or nil. A rule for a field with no enumeration always fails.
func Check(rules ...Rule) error {
	for _, r := range rules {
		valid, ok := fieldChecks[r.Field]
		if !ok || !valid(r.Value) {
			return &FieldError{Field: r.Field}
		}
	}
	return nil
}
