package pages

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/diya-thabet/hirfa/internal/gateway"
	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/models"
)

type CommunityView struct {
	Stories []models.Story
	Err     error
	now     time.Time
}

func LoadCommunity(ctx context.Context, d Deps) *CommunityView {
	v := &CommunityView{Stories: []models.Story{}, now: time.Now()}
	body, err := d.API.CommunityFeed(ctx)
	if err != nil {
		d.Log.Warn().Err(err).Msg("failed to load feed")
		v.Err = err
		return v
	}
	v.Stories = decodeList[models.Story](body, d.Log)
	return v
}

// StoryInput is a story to share. When File is set it is uploaded first and
// its stored URL replaces MediaURL.
type StoryInput struct {
	MediaURL string
	Caption  string
	Filename string
	File     io.Reader
}

func PostStory(ctx context.Context, d Deps, in StoryInput) (*CommunityView, error) {
	if !d.Session.IsAuthenticated() {
		return nil, ErrSignedOut
	}

	mediaURL := strings.TrimSpace(in.MediaURL)
	if in.File != nil {
		body, err := d.API.UploadMedia(ctx, filepath.Base(in.Filename), in.File)
		if err != nil {
			return nil, err
		}
		mediaURL = body.Payload().Get("url").String()
	}
	if mediaURL == "" {
		return nil, fmt.Errorf("%w: a story needs media", ErrInvalidInput)
	}

	if _, err := d.API.PostStory(ctx, gateway.StoryRequest{
		MediaURL: mediaURL,
		Caption:  strings.TrimSpace(in.Caption),
	}); err != nil {
		return nil, err
	}
	return LoadCommunity(ctx, d), nil
}

func (v *CommunityView) Render(w io.Writer, t *i18n.Translator) error {
	fmt.Fprintf(w, "%s\n\n", t.T("community.title"))
	if v.Err != nil {
		errorLine(w, t, v.Err)
	}
	if len(v.Stories) == 0 {
		fmt.Fprintln(w, t.T("community.empty"))
		return nil
	}
	for _, s := range v.Stories {
		author := fmt.Sprintf("#%d", s.AuthorID)
		if s.User != nil && s.User.FullName != "" {
			author = s.User.FullName
		}
		fmt.Fprintf(w, "%s · %s\n", author, humanize.RelTime(s.CreatedAt, v.now, "ago", "from now"))
		if s.Caption != "" {
			fmt.Fprintf(w, "  %s\n", s.Caption)
		}
		fmt.Fprintf(w, "  %s\n", s.MediaURL)
	}
	return nil
}
