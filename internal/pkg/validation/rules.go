package validation

import (
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/studentdesk/internal/app/models"
	"github.com/yigit/studentdesk/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Email validation pattern: something@something.something, no whitespace
	EmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// Field messages shown next to the form inputs
const (
	MsgNameRequired   = "Name is required"
	MsgEmailRequired  = "Email is required"
	MsgEmailInvalid   = "Invalid email format"
	MsgCourseRequired = "Choose a course"
	MsgCourseName     = "Course name is required"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the custom rules registered
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("studentemail", func(fl validator.FieldLevel) bool {
			return IsEmail(fl.Field().String())
		})
	})
	return validate
}

// IsEmail reports whether s looks like local@domain.tld
func IsEmail(s string) bool {
	return CompiledPatterns.Email.MatchString(s)
}

// NormalizeStudentInput trims the free-text fields in place
func NormalizeStudentInput(in *models.StudentInput) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.CourseID = strings.TrimSpace(in.CourseID)
}

// ValidateStudentInput trims and checks a student form.
// It returns a *apperrors.ValidationError listing every failing field.
func ValidateStudentInput(in *models.StudentInput) error {
	NormalizeStudentInput(in)

	err := Validator().Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := apperrors.NewValidationError()
	for _, fe := range fieldErrs {
		switch fe.Field() {
		case "Name":
			out.Add("name", MsgNameRequired)
		case "Email":
			if fe.Tag() == "required" {
				out.Add("email", MsgEmailRequired)
			} else {
				out.Add("email", MsgEmailInvalid)
			}
		case "CourseID":
			out.Add("course", MsgCourseRequired)
		default:
			out.Add(strings.ToLower(fe.Field()), formatValidationError(fe))
		}
	}
	return out
}

// ValidateCourseInput checks a course creation body
func ValidateCourseInput(in *models.CourseInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := Validator().Struct(in); err != nil {
		return apperrors.NewValidationError().Add("name", MsgCourseName)
	}
	return nil
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email", "studentemail":
		return e.Field() + " must be a valid email address"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
