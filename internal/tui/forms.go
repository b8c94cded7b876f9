package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/brahmapath/internal/constants"
	"github.com/julianstephens/brahmapath/internal/models"
)

// OnboardingFormModel backs the intake form.
type OnboardingFormModel struct {
	Reason string
	Age    string
}

func (fm *OnboardingFormModel) AgeValue() int {
	age, _ := strconv.Atoi(strings.TrimSpace(fm.Age))
	return age
}

type AuthMode string

const (
	AuthSignUp AuthMode = "signup"
	AuthSignIn AuthMode = "signin"
)

// AuthFormModel backs the sign-up / sign-in form.
type AuthFormModel struct {
	Mode     AuthMode
	Name     string
	Email    string
	Password string
}

type ProofFormModel struct {
	Path string
}

// NewOnboardingForm asks why the user is starting and their age.
func NewOnboardingForm(fm *OnboardingFormModel) *huh.Form {
	options := make([]huh.Option[string], 0, len(models.Reasons))
	for _, r := range models.Reasons {
		options = append(options, huh.NewOption(r.Text, r.Text))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Why are you starting this journey?").
				Description("Choose the intention closest to your heart").
				Options(options...).
				Value(&fm.Reason),
			huh.NewInput().
				Title("Your age").
				Value(&fm.Age).
				Validate(func(s string) error {
					age, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("age must be a number")
					}
					if age < constants.MinAge || age > constants.MaxAge {
						return fmt.Errorf("age must be between %d and %d", constants.MinAge, constants.MaxAge)
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewAuthForm collects credentials. The name field only matters on sign-up.
func NewAuthForm(fm *AuthFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[AuthMode]().
				Title("Account").
				Options(
					huh.NewOption("Create account", AuthSignUp),
					huh.NewOption("Sign in", AuthSignIn),
				).
				Value(&fm.Mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Optional").
				Value(&fm.Name),
		).WithHideFunc(func() bool { return fm.Mode != AuthSignUp }),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&fm.Email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fm.Password).
				Validate(func(s string) error {
					if len(s) < constants.MinPasswordLen {
						return fmt.Errorf("password must be at least %d characters", constants.MinPasswordLen)
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewProofForm asks for the recorded accountability video.
func NewProofForm(fm *ProofFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Video proof").
				Description("Path to today's recording. It stays on your device.").
				Value(&fm.Path).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("record your video proof first")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
