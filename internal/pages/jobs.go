package pages

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/models"
)

// Filter narrows the job list on the client. It lives only as long as the page.
type Filter struct {
	Search   string
	Category string
}

// Match reports whether job contains Search in its title or description and,
// when Category is set, has exactly that category ignoring case.
func (f Filter) Match(job models.Job) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(job.Title), term) &&
			!strings.Contains(strings.ToLower(job.Description), term) {
			return false
		}
	}
	if f.Category != "" && !strings.EqualFold(job.Category, f.Category) {
		return false
	}
	return true
}

type JobsView struct {
	Jobs   []models.Job
	Filter Filter
	// Err is set when the list could not be loaded; Jobs is empty then.
	Err bool
}

func LoadJobs(ctx context.Context, d Deps, filter Filter) *JobsView {
	v := &JobsView{Filter: filter, Jobs: []models.Job{}}
	body, err := d.API.ListJobs(ctx)
	if err == nil {
		err = d.API.Err()
	}
	if err != nil {
		d.Log.Warn().Err(err).Msg("failed to load jobs")
		v.Err = true
		return v
	}
	v.Jobs = decodeList[models.Job](body, d.Log)
	return v
}

// Visible returns the jobs passing the filter, in server order.
func (v *JobsView) Visible() []models.Job {
	out := make([]models.Job, 0, len(v.Jobs))
	for _, j := range v.Jobs {
		if v.Filter.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

func (v *JobsView) Render(w io.Writer, t *i18n.Translator) error {
	fmt.Fprintf(w, "%s\n\n", t.T("jobs.browseJobs"))
	if v.Err {
		errorLine(w, t, nil)
	}
	jobs := v.Visible()
	if len(jobs) == 0 {
		fmt.Fprintln(w, t.T("jobs.noJobs"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, j := range jobs {
		category := j.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\n", j.ID, j.Title, category, money(t, j.Budget), statusLabel(t, j.Status))
	}
	return tw.Flush()
}

func statusLabel(t *i18n.Translator, status models.JobStatus) string {
	if status == "" {
		status = models.JobStatusOpen
	}
	return t.T("jobs.status." + string(status))
}
