package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/diya-thabet/hirfa/internal/gateway"
	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/models"
)

type JobDetailView struct {
	Job  *models.Job
	Bids []models.Bid
	Err  error
	// CanBid is true for a signed-in provider looking at an open job.
	CanBid bool
}

// LoadJobDetail fetches the job and its bids in parallel. Either failure
// leaves the view with Err set.
func LoadJobDetail(ctx context.Context, d Deps, jobID int64) *JobDetailView {
	v := &JobDetailView{Bids: []models.Bid{}}

	var (
		job  models.Job
		bids []models.Bid
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := d.API.GetJob(gctx, jobID)
		if err != nil {
			return err
		}
		return body.Decode(&job)
	})
	g.Go(func() error {
		body, err := d.API.ListBids(gctx, jobID)
		if err != nil {
			return err
		}
		bids = decodeList[models.Bid](body, d.Log)
		return nil
	})
	if err := g.Wait(); err != nil {
		d.Log.Warn().Err(err).Int64("job_id", jobID).Msg("failed to load job")
		v.Err = err
		return v
	}

	v.Job = &job
	v.Bids = bids
	v.CanBid = job.Status == models.JobStatusOpen && d.Session.IsProvider()
	return v
}

// PlaceBid submits a bid and reloads the page. The server decides whether
// the bid stands; the client only checks what it can see.
func PlaceBid(ctx context.Context, d Deps, jobID int64, amount float64, note string) (*JobDetailView, error) {
	if !d.Session.IsAuthenticated() {
		return nil, ErrSignedOut
	}
	if !d.Session.IsProvider() {
		return nil, ErrProvidersOnly
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	current := LoadJobDetail(ctx, d, jobID)
	if current.Err != nil {
		return current, current.Err
	}
	if current.Job.Status != models.JobStatusOpen {
		return current, ErrJobClosed
	}

	if _, err := d.API.PlaceBid(ctx, jobID, gateway.PlaceBidRequest{
		Amount:  amount,
		Message: strings.TrimSpace(note),
	}); err != nil {
		return current, err
	}
	return LoadJobDetail(ctx, d, jobID), nil
}

func (v *JobDetailView) Render(w io.Writer, t *i18n.Translator) error {
	if v.Err != nil || v.Job == nil {
		errorLine(w, t, v.Err)
		return nil
	}
	j := v.Job
	fmt.Fprintf(w, "#%d %s [%s]\n", j.ID, j.Title, statusLabel(t, j.Status))
	if j.Category != "" {
		fmt.Fprintf(w, "%s\n", j.Category)
	}
	fmt.Fprintf(w, "%s\n", j.Description)
	fmt.Fprintf(w, "%s: %s\n", t.T("jobs.budget"), money(t, j.Budget))
	fmt.Fprintf(w, "%s: %.4f, %.4f\n\n", t.T("jobs.location"), j.Latitude, j.Longitude)

	fmt.Fprintf(w, "%s (%d)\n", t.T("jobs.bids"), len(v.Bids))
	if len(v.Bids) == 0 {
		fmt.Fprintln(w, "  "+t.T("jobs.noBids"))
	}
	for _, b := range v.Bids {
		name := fmt.Sprintf("#%d", b.ProviderID)
		if b.Provider != nil && b.Provider.FullName != "" {
			name = fmt.Sprintf("%s (%d)", b.Provider.FullName, b.Provider.FairnessScore)
		}
		mark := " "
		if b.Accepted {
			mark = "*"
		}
		fmt.Fprintf(w, " %s %s  %s", mark, name, money(t, b.Amount))
		if b.Message != "" {
			fmt.Fprintf(w, "  %q", b.Message)
		}
		fmt.Fprintln(w)
	}

	switch {
	case v.CanBid:
		fmt.Fprintf(w, "\n> %s\n", t.T("jobs.placeBid"))
	case j.Status != models.JobStatusOpen:
		fmt.Fprintf(w, "\n%s\n", t.T("jobs.bidClosed"))
	}
	return nil
}

// JobInput is the post-a-job form.
type JobInput struct {
	Title       string
	Description string
	Category    string
	Budget      float64
	Latitude    float64
	Longitude   float64
}

// PostJob creates a job for the signed-in customer and opens its page.
func PostJob(ctx context.Context, d Deps, in JobInput) (*JobDetailView, error) {
	if !d.Session.IsAuthenticated() {
		return nil, ErrSignedOut
	}
	if !d.Session.IsCustomer() {
		return nil, ErrCustomersOnly
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.Budget <= 0 {
		return nil, fmt.Errorf("%w: a job needs a title and a positive budget", ErrInvalidInput)
	}

	body, err := d.API.CreateJob(ctx, gateway.CreateJobRequest{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Budget:      in.Budget,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
	})
	if err != nil {
		return nil, err
	}
	var job models.Job
	if err := body.Decode(&job); err != nil {
		return nil, err
	}
	return LoadJobDetail(ctx, d, job.ID), nil
}

// AcceptBid asks the server to accept a bid on the customer's job.
func AcceptBid(ctx context.Context, d Deps, jobID, bidID int64) (*JobDetailView, error) {
	if !d.Session.IsCustomer() {
		return nil, ErrCustomersOnly
	}
	if _, err := d.API.AcceptBid(ctx, jobID, bidID); err != nil {
		return nil, err
	}
	return LoadJobDetail(ctx, d, jobID), nil
}

// ChangeStatus moves a job along its lifecycle. Transitions the client can
// already tell are impossible are refused without a request.
func ChangeStatus(ctx context.Context, d Deps, jobID int64, status models.JobStatus) (*JobDetailView, error) {
	if !d.Session.IsAuthenticated() {
		return nil, ErrSignedOut
	}
	status = models.JobStatus(strings.ToUpper(string(status)))
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	current := LoadJobDetail(ctx, d, jobID)
	if current.Err != nil {
		return current, current.Err
	}
	if !current.Job.Status.CanTransitionTo(status) {
		return current, fmt.Errorf("%w: %s to %s", ErrInvalidInput, current.Job.Status, status)
	}
	if _, err := d.API.UpdateJobStatus(ctx, jobID, string(status)); err != nil {
		return current, err
	}
	return LoadJobDetail(ctx, d, jobID), nil
}
