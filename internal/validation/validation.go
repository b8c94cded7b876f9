// Package validation checks user input before it reaches the profile or
// the remote.
package validation

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/brahmapath/internal/constants"
)

var ErrInvalidInput = errors.New("invalid input")

// ProblemType names a class of input problem.
type ProblemType string

const (
	ProblemRequired ProblemType = "required"
	ProblemRange    ProblemType = "out_of_range"
	ProblemFormat   ProblemType = "bad_format"
	ProblemTooShort ProblemType = "too_short"
	ProblemMissing  ProblemType = "missing_file"
)

// Problem is one failed rule.
type Problem struct {
	Type    ProblemType
	Field   string
	Message string
}

// Result collects every problem found in one input.
type Result struct {
	Problems []Problem
}

func (r Result) HasProblems() bool {
	return len(r.Problems) > 0
}

// InputError carries a failed Result. Its text is the first problem's
// message, ready to show inline.
type InputError struct {
	Result Result
}

func (e *InputError) Error() string {
	return e.Result.Problems[0].Message
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Err returns nil for a clean result, otherwise an *InputError.
func (r Result) Err() error {
	if !r.HasProblems() {
		return nil
	}
	return &InputError{Result: r}
}

// FormatReport lists all problems, one per line.
func (r Result) FormatReport() string {
	if !r.HasProblems() {
		return "No problems found."
	}
	var b strings.Builder
	for _, p := range r.Problems {
		fmt.Fprintf(&b, "- %s\n", p.Message)
	}
	return b.String()
}

// Onboarding is the intake form.
type Onboarding struct {
	Age    int    `validate:"gte=15,lte=80"`
	Reason string `validate:"required"`
}

// Credentials is the sign-up / sign-in form. Name is only used on sign-up.
type Credentials struct {
	Name     string `validate:"max=60"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

var (
	validate *validator.Validate
	once     sync.Once
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validator turns validator/v10 failures into user-facing problems.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Onboarding(in Onboarding) Result {
	in.Reason = strings.TrimSpace(in.Reason)
	return v.check(in)
}

func (v *Validator) Credentials(in Credentials) Result {
	in.Email = strings.TrimSpace(in.Email)
	return v.check(in)
}

// Proof checks that the accountability recording exists. The file is
// never opened beyond a stat.
func (v *Validator) Proof(path string) Result {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{Problems: []Problem{{Type: ProblemRequired, Field: "Proof", Message: "Record your video proof and give its path."}}}
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Result{Problems: []Problem{{Type: ProblemMissing, Field: "Proof", Message: fmt.Sprintf("No recording found at %s.", path)}}}
	}
	return Result{}
}

func (v *Validator) check(in any) Result {
	err := instance().Struct(in)
	if err == nil {
		return Result{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Result{Problems: []Problem{{Type: ProblemFormat, Message: err.Error()}}}
	}
	var res Result
	for _, fe := range verrs {
		res.Problems = append(res.Problems, describe(fe))
	}
	return res
}

func describe(fe validator.FieldError) Problem {
	p := Problem{Field: fe.Field()}
	switch fe.Field() + "." + fe.Tag() {
	case "Age.gte", "Age.lte":
		p.Type = ProblemRange
		p.Message = fmt.Sprintf("Age must be between %d and %d.", constants.MinAge, constants.MaxAge)
	case "Reason.required":
		p.Type = ProblemRequired
		p.Message = "Choose why you are starting this path."
	case "Email.required":
		p.Type = ProblemRequired
		p.Message = "Email is required."
	case "Email.email":
		p.Type = ProblemFormat
		p.Message = "Enter a valid email address."
	case "Password.required":
		p.Type = ProblemRequired
		p.Message = "Password is required."
	case "Password.min":
		p.Type = ProblemTooShort
		p.Message = fmt.Sprintf("Password must be at least %d characters.", constants.MinPasswordLen)
	case "Name.max":
		p.Type = ProblemRange
		p.Message = "Name is too long."
	default:
		p.Type = ProblemFormat
		p.Message = fmt.Sprintf("%s is invalid.", fe.Field())
	}
	return p
}
