// Package validation checks responses against their catalog questions.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"esg-assessment-service/internal/domain"
)

const (
	MaxFileNameLength = 255
	MaxFileSize       = 50 * 1024 * 1024
)

// AllowedFileTypes is the MIME allow-list for evidence uploads.
var AllowedFileTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"text/plain": true,
	"text/csv":   true,
}

// Kind classifies a validation failure.
type Kind string

const (
	KindRequired      Kind = "required"
	KindOutOfRange    Kind = "out_of_range"
	KindInvalidOption Kind = "invalid_option"
	KindInvalidType   Kind = "invalid_type"
	KindInvalidFile   Kind = "invalid_file"
)

// FieldError is a user-facing validation failure for one question.
type FieldError struct {
	QuestionID string
	Kind       Kind
	Message    string
}

func (e *FieldError) Error() string { return e.Message }

// Errors maps question IDs to messages.
type Errors map[string]string

// Check returns the first rule a response breaks, or nil.
func Check(resp domain.Response, q domain.Question) *FieldError {
	fail := func(kind Kind, format string, args ...any) *FieldError {
		return &FieldError{QuestionID: q.ID, Kind: kind, Message: fmt.Sprintf(format, args...)}
	}

	if q.Required && !Answered(resp, q) {
		return fail(KindRequired, "this field is required")
	}
	if len(resp.Files) > 0 {
		if err := ValidateFiles(resp.Files); err != nil {
			return fail(KindInvalidFile, "%s", err.Error())
		}
	}
	if resp.Value.Kind() == domain.KindEmpty {
		return nil
	}

	switch q.Type {
	case domain.NumberInput:
		n, ok := resp.Value.Number()
		if !ok {
			return fail(KindInvalidType, "please enter a number")
		}
		if r := q.Validation; r != nil {
			if r.Min != nil && n < *r.Min {
				return fail(KindOutOfRange, "value must be at least %g", *r.Min)
			}
			if r.Max != nil && n > *r.Max {
				return fail(KindOutOfRange, "value must be at most %g", *r.Max)
			}
		}
	case domain.MultipleChoice, domain.LikertScale:
		if q.MultiSelect && q.Type == domain.MultipleChoice {
			items, ok := resp.Value.Multi()
			if !ok {
				return fail(KindInvalidType, "please select one or more options")
			}
			for _, item := range items {
				if !contains(q.Options, item) {
					return fail(KindInvalidOption, "%q is not a valid option", item)
				}
			}
			return nil
		}
		if q.Type == domain.LikertScale {
			if n, ok := resp.Value.Number(); ok {
				if n != float64(int(n)) || int(n) < 0 || int(n) >= len(q.Options) {
					return fail(KindInvalidOption, "please select a point on the scale")
				}
				return nil
			}
		}
		s, ok := resp.Value.Text()
		if !ok {
			return fail(KindInvalidType, "please select an option")
		}
		if s != "" && !contains(q.Options, s) {
			return fail(KindInvalidOption, "%q is not a valid option", s)
		}
	}
	return nil
}

// ValidateResponse records the outcome in errs under the question ID and reports success.
func ValidateResponse(resp domain.Response, q domain.Question, errs Errors) bool {
	if err := Check(resp, q); err != nil {
		errs[q.ID] = err.Message
		return false
	}
	delete(errs, q.ID)
	return true
}

// ValidateSection passes only if every required question has a non-empty response.
func ValidateSection(responses map[string]domain.Response, questions []domain.Question, errs Errors) bool {
	ok := true
	for _, q := range questions {
		if !q.Required {
			continue
		}
		resp, found := responses[q.ID]
		if !found || !Answered(resp, q) {
			errs[q.ID] = "this field is required"
			ok = false
		}
	}
	return ok
}

// Answered reports whether the response carries something for its question.
func Answered(resp domain.Response, q domain.Question) bool {
	if q.Type == domain.FileUpload && (len(resp.Attachments) > 0 || len(resp.Files) > 0) {
		return true
	}
	return !resp.Value.IsEmpty()
}

// ValidateFiles checks every file and joins the failures into one error.
func ValidateFiles(files []domain.FileHandle) error {
	var problems []string
	for _, f := range files {
		if err := ValidateFile(f.Name, f.Type, f.Size); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(problems, "; "))
}

// ValidateFile checks one file's name, size and MIME type.
func ValidateFile(name, mimeType string, size int64) error {
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%s: file name contains invalid path characters", name)
	}
	if name == "" {
		return fmt.Errorf("file name is required")
	}
	if utf8.RuneCountInString(name) > MaxFileNameLength {
		return fmt.Errorf("%s: file name must be %d characters or less", truncate(name, 32), MaxFileNameLength)
	}
	if size > MaxFileSize {
		return fmt.Errorf("%s: file exceeds the 50MB limit", name)
	}
	if !AllowedFileTypes[strings.ToLower(mimeType)] {
		return fmt.Errorf("%s: file type %q is not allowed", name, mimeType)
	}
	return nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
