package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/session"
)

type ProfileView struct {
	User   models.User
	Nearby []models.ProviderLocation
	Err    error
}

// LoadProfile shows the session's profile. It makes no request.
func LoadProfile(d Deps) (*ProfileView, error) {
	user, ok := d.Session.User()
	if !ok {
		return nil, ErrSignedOut
	}
	return &ProfileView{User: user, Nearby: []models.ProviderLocation{}}, nil
}

// EditProfile merges the update into the session profile.
func EditProfile(ctx context.Context, d Deps, update session.ProfileUpdate) (*ProfileView, error) {
	if update.FullName != nil && strings.TrimSpace(*update.FullName) == "" {
		return nil, fmt.Errorf("%w: name is empty", ErrInvalidInput)
	}
	user, err := d.Session.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: user, Nearby: []models.ProviderLocation{}}, nil
}

// ShareLocation publishes the provider's position for nearby searches.
func ShareLocation(ctx context.Context, d Deps, lat, lon float64) error {
	if !d.Session.IsProvider() {
		return ErrProvidersOnly
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
	}
	_, err := d.API.UpdateLocation(ctx, lat, lon)
	return err
}

// LoadNearby lists providers around a point. A failure is kept on the view.
func LoadNearby(ctx context.Context, d Deps, lat, lon, radius float64) *ProfileView {
	v := &ProfileView{Nearby: []models.ProviderLocation{}}
	if user, ok := d.Session.User(); ok {
		v.User = user
	}
	body, err := d.API.NearbyProviders(ctx, lat, lon, radius)
	if err != nil {
		d.Log.Warn().Err(err).Msg("failed to load nearby providers")
		v.Err = err
		return v
	}
	v.Nearby = decodeList[models.ProviderLocation](body, d.Log)
	return v
}

func (v *ProfileView) Render(w io.Writer, t *i18n.Translator) error {
	u := v.User
	if u.ID != 0 || u.FullName != "" {
		fmt.Fprintf(w, "%s (%s)\n", u.FullName, roleLabel(t, u.Role))
		if u.PhoneNumber != "" {
			fmt.Fprintf(w, "  %s: %s\n", t.T("auth.phoneLabel"), u.PhoneNumber)
		}
		fmt.Fprintf(w, "  %s: %d\n", t.T("profile.fairnessScore"), u.FairnessScore)
		if len(u.Badges) > 0 {
			fmt.Fprintf(w, "  %s: %s\n", t.T("profile.badges"), strings.Join(u.Badges, ", "))
		}
		if u.Verified {
			fmt.Fprintf(w, "  %s\n", t.T("profile.verified"))
		}
	}

	if v.Err != nil {
		errorLine(w, t, v.Err)
		return nil
	}
	if len(v.Nearby) == 0 {
		return nil
	}
	fmt.Fprintf(w, "\n%s\n", t.T("profile.nearby"))
	for _, p := range v.Nearby {
		name := fmt.Sprintf("#%d", p.UserID)
		if p.Provider != nil && p.Provider.FullName != "" {
			name = p.Provider.FullName
		}
		fmt.Fprintf(w, "  %s  %.1f km\n", name, p.DistanceMeters/1000)
	}
	return nil
}

func roleLabel(t *i18n.Translator, role models.UserRole) string {
	switch role {
	case models.UserRoleProvider:
		return t.T("auth.provider.title")
	case models.UserRoleCustomer:
		return t.T("auth.customer.title")
	}
	return string(role)
}
