package pages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/session"
)

// AuthView is the outcome of the login or register form.
type AuthView struct {
	Title string
	User  *models.User
	Err   error
}

func Login(ctx context.Context, d Deps, phoneNumber string) *AuthView {
	v := &AuthView{Title: "auth.loginTitle"}
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		v.Err = fmt.Errorf("%w: phone number is empty", ErrInvalidInput)
		return v
	}
	res, err := d.Session.Login(ctx, phoneNumber)
	if err != nil {
		v.Err = err
		return v
	}
	v.User = &res.User
	return v
}

func Register(ctx context.Context, d Deps, fullName, phoneNumber string, role models.UserRole) *AuthView {
	v := &AuthView{Title: "auth.registerTitle"}
	fullName, phoneNumber = strings.TrimSpace(fullName), strings.TrimSpace(phoneNumber)
	if fullName == "" || phoneNumber == "" {
		v.Err = fmt.Errorf("%w: name and phone number are required", ErrInvalidInput)
		return v
	}
	res, err := d.Session.Register(ctx, fullName, phoneNumber, models.UserRole(strings.ToUpper(string(role))))
	if err != nil {
		v.Err = err
		return v
	}
	v.User = &res.User
	return v
}

func (v *AuthView) Render(w io.Writer, t *i18n.Translator) error {
	fmt.Fprintf(w, "%s\n\n", t.T(v.Title))
	if v.Err != nil {
		var authErr *session.AuthError
		if errors.As(v.Err, &authErr) && authErr.Status != 0 {
			fmt.Fprintf(w, "! %s\n", t.T("auth.failed"))
			return nil
		}
		fmt.Fprintf(w, "! %s\n", v.Err)
		return nil
	}
	if v.User != nil {
		fmt.Fprintf(w, "%s, %s (%s)\n", t.T("common.success"), v.User.FullName, roleLabel(t, v.User.Role))
	}
	return nil
}

// NotFoundView is rendered for unknown routes.
type NotFoundView struct{ Route string }

func (v NotFoundView) Render(w io.Writer, t *i18n.Translator) error {
	fmt.Fprintf(w, "404 %s: %s\n", t.T("common.notFound"), v.Route)
	return nil
}

// HomeView greets the user and points at the main sections.
type HomeView struct {
	User *models.User
}

func LoadHome(d Deps) *HomeView {
	if u, ok := d.Session.User(); ok {
		return &HomeView{User: &u}
	}
	return &HomeView{}
}

func (v *HomeView) Render(w io.Writer, t *i18n.Translator) error {
	if v.User != nil {
		fmt.Fprintf(w, "%s, %s\n", t.T("auth.loginTitle"), v.User.FullName)
	} else {
		fmt.Fprintf(w, "Hirfa\n")
	}
	fmt.Fprintf(w, "  %s\n  %s\n", t.T("jobs.browseJobs"), t.T("community.title"))
	return nil
}
