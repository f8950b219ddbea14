package validation

import (
	"errors"
	"testing"
)

func TestNormalizeDueDate(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		policy  DatePolicy
		want    string
		wantErr bool
	}{
		{name: "plain", input: "2024-03-15", want: "2024-03-15"},
		{name: "unpadded", input: "2024-3-5", want: "2024-03-05"},
		{name: "month above 12", input: "2024-13-01", wantErr: true},
		{name: "month above 12 strict", input: "2024-13-01", policy: Strict, wantErr: true},
		{name: "non leap overflow", input: "2023-02-30", want: "2023-03-02"},
		{name: "leap overflow", input: "2024-02-30", want: "2024-03-01"},
		{name: "day 32", input: "2024-01-32", want: "2024-02-01"},
		{name: "month zero", input: "2024-0-15", want: "2023-12-15"},
		{name: "day zero", input: "2024-03-00", want: "2024-02-29"},
		{name: "strict overflow", input: "2024-02-30", policy: Strict, wantErr: true},
		{name: "strict leap day", input: "2024-02-29", policy: Strict, want: "2024-02-29"},
		{name: "strict month zero", input: "2024-00-10", policy: Strict, wantErr: true},
		{name: "two digit year", input: "24-01-01", want: "1924-01-01"},
		{name: "padded two digit year", input: "0099-12-31", want: "1999-12-31"},
		{name: "year zero", input: "0-6-1", want: "1900-06-01"},
		{name: "three digit year", input: "100-01-01", want: "0100-01-01"},
		{name: "two digit year rolls back", input: "24-0-15", want: "1923-12-15"},
		{name: "two digit year strict", input: "24-02-29", policy: Strict, want: "1924-02-29"},
		{name: "two digit year strict overflow", input: "23-02-29", policy: Strict, wantErr: true},
		{name: "letters", input: "2024-ab-01", wantErr: true},
		{name: "missing day", input: "2024-03", wantErr: true},
		{name: "empty component", input: "2024--01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "slashes", input: "2024/03/15", wantErr: true},
		{name: "extra component", input: "2024-03-15-01", wantErr: true},
		{name: "signed", input: "2024-+3-15", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeDueDate(tc.input, tc.policy)
			if tc.wantErr {
				var fe *FieldError
				if !errors.As(err, &fe) || fe.Field != FieldDueDate {
					t.Fatalf("Expected due date error for %q, but got %q, %v", tc.input, got, err)
				}
				if err.Error() != "Invalid Due Date" {
					t.Errorf("Expected message 'Invalid Due Date', but got %q", err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeDueDate(%q) returned an unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Expected %q, but got %q", tc.want, got)
			}
		})
	}
}
