package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/diya-thabet/hirfa/internal/gateway"
	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/models"
)

type ReviewInput struct {
	JobID    int64
	Rating   int
	Comment  string
	PhotoURL string
}

type ReviewView struct {
	Review models.Review
}

func SubmitReview(ctx context.Context, d Deps, in ReviewInput) (*ReviewView, error) {
	if !d.Session.IsAuthenticated() {
		return nil, ErrSignedOut
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	req := gateway.ReviewRequest{
		JobID:   in.JobID,
		Rating:  in.Rating,
		Comment: strings.TrimSpace(in.Comment),
	}
	if photo := strings.TrimSpace(in.PhotoURL); photo != "" {
		req.PhotoURL = &photo
	}
	body, err := d.API.CreateReview(ctx, req)
	if err != nil {
		return nil, err
	}

	v := &ReviewView{}
	if err := body.Decode(&v.Review); err != nil {
		d.Log.Debug().Err(err).Msg("review response not decodable")
		v.Review = models.Review{JobID: in.JobID, Rating: in.Rating, Comment: req.Comment, PhotoURL: req.PhotoURL}
	}
	return v, nil
}

func (v *ReviewView) Render(w io.Writer, t *i18n.Translator) error {
	r := v.Review
	stars := max(0, min(5, r.Rating))
	fmt.Fprintf(w, "%s\n", t.T("review.thanks"))
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat("*", stars), strings.Repeat(".", 5-stars))
	if r.Comment != "" {
		fmt.Fprintf(w, "  %s\n", r.Comment)
	}
	return nil
}
