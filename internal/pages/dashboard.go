package pages

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/models"
)

const dashboardRecent = 3

// DashboardView summarizes the signed-in user's side of the marketplace.
// Providers see open work; customers see their own requests.
type DashboardView struct {
	User      models.User
	Recent    []models.Job
	Active    int
	Completed int
	Available int
	// Err is set when the job list could not be loaded. The profile figures
	// are still shown.
	Err bool
}

func LoadDashboard(ctx context.Context, d Deps) (*DashboardView, error) {
	user, ok := d.Session.User()
	if !ok {
		return nil, ErrSignedOut
	}
	list := LoadJobs(ctx, d, Filter{})
	v := &DashboardView{User: user, Err: list.Err}

	provider := user.Role == models.UserRoleProvider
	var mine []models.Job
	for _, j := range list.Jobs {
		if provider {
			if j.Status == models.JobStatusOpen {
				v.Available++
				mine = append(mine, j)
			}
			continue
		}
		if j.CustomerID != user.ID {
			continue
		}
		switch j.Status {
		case models.JobStatusOpen, models.JobStatusInProgress:
			v.Active++
		case models.JobStatusCompleted:
			v.Completed++
		}
		mine = append(mine, j)
	}
	slices.SortStableFunc(mine, func(a, b models.Job) int { return b.CreatedAt.Compare(a.CreatedAt) })
	v.Recent = mine[:min(len(mine), dashboardRecent)]
	return v, nil
}

func (v *DashboardView) Render(w io.Writer, t *i18n.Translator) error {
	name := v.User.FullName
	if fields := strings.Fields(name); len(fields) > 0 {
		name = fields[0]
	}
	fmt.Fprintf(w, "%s, %s\n\n", t.T("dashboard.welcome"), name)

	heading := "dashboard.recentRequests"
	if v.User.Role == models.UserRoleProvider {
		heading = "dashboard.availableJobs"
		fmt.Fprintf(w, "  %s: %d\n", t.T("dashboard.availableJobs"), v.Available)
	} else {
		fmt.Fprintf(w, "  %s: %d\n", t.T("dashboard.stats.activeJobs"), v.Active)
		fmt.Fprintf(w, "  %s: %d\n", t.T("dashboard.stats.completedJobs"), v.Completed)
	}
	fmt.Fprintf(w, "  %s: %d\n", t.T("profile.fairnessScore"), v.User.FairnessScore)
	if len(v.User.Badges) > 0 {
		fmt.Fprintf(w, "  %s: %s\n", t.T("profile.badges"), strings.Join(v.User.Badges, ", "))
	}

	fmt.Fprintf(w, "\n%s\n", t.T(heading))
	if v.Err {
		errorLine(w, t, nil)
		return nil
	}
	if len(v.Recent) == 0 {
		fmt.Fprintln(w, "  "+t.T("jobs.noJobs"))
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, j := range v.Recent {
		fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\n", j.ID, j.Title, money(t, j.Budget), statusLabel(t, j.Status))
	}
	return tw.Flush()
}
