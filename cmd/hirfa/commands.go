package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/diya-thabet/hirfa/internal/app"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/pages"
	"github.com/diya-thabet/hirfa/internal/session"
)

type command func(ctx context.Context, a *app.App, w io.Writer, args []string) error

var commands = map[string]command{
	"open":      openRoute,
	"login":     login,
	"register":  register,
	"logout":    logout,
	"whoami":    whoami,
	"dashboard": dashboard,
	"lang":      lang,
	"jobs":      listJobs,
	"job":       showJob,
	"post-job":  postJob,
	"bid":       bid,
	"accept":    accept,
	"status":    status,
	"feed":      feed,
	"story":     story,
	"chat":      chat,
	"send":      send,
	"review":    review,
	"profile":   profile,
	"location":  location,
	"nearby":    nearby,
}

func dispatch(ctx context.Context, a *app.App, w io.Writer, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return usagef("unknown command %q", name)
	}
	return cmd(ctx, a, w, args)
}

func want(args []string, lo, hi int, form string) error {
	if len(args) < lo || (hi >= 0 && len(args) > hi) {
		return usagef("usage: hirfa %s", form)
	}
	return nil
}

func parseID(s, name string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, usagef("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}

func parseFloat(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, usagef("%s must be a number, got %q", name, s)
	}
	return v, nil
}

// subFlags parses command-local flags and returns the remaining arguments.
func subFlags(name string, args []string, define func(fs *flag.FlagSet)) ([]string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	define(fs)
	if err := fs.Parse(args); err != nil {
		return nil, usagef("%s: %v", name, err)
	}
	return fs.Args(), nil
}

func openRoute(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 1, 1, "open <path>"); err != nil {
		return err
	}
	return a.Router.Navigate(ctx, w, args[0])
}

func login(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 1, 1, "login <phone>"); err != nil {
		return err
	}
	v := pages.Login(ctx, a.Deps, args[0])
	if err := a.Router.Show(w, "/login", v); err != nil {
		return err
	}
	return v.Err
}

func register(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 3, 3, "register <name> <phone> <CUSTOMER|PROVIDER>"); err != nil {
		return err
	}
	v := pages.Register(ctx, a.Deps, args[0], args[1], models.UserRole(args[2]))
	if err := a.Router.Show(w, "/register", v); err != nil {
		return err
	}
	return v.Err
}

func logout(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 0, 0, "logout"); err != nil {
		return err
	}
	if err := a.Deps.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, a.Deps.T.T("nav.logout"))
	return nil
}

func whoami(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 0, 0, "whoami"); err != nil {
		return err
	}
	if _, err := a.Deps.Session.Confirm(ctx); err != nil {
		return err
	}
	return a.Router.Navigate(ctx, w, "/profile")
}

func dashboard(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 0, 0, "dashboard"); err != nil {
		return err
	}
	return a.Router.Navigate(ctx, w, "/dashboard")
}

func lang(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 1, 1, "lang <ar|fr|en>"); err != nil {
		return err
	}
	if err := a.Deps.T.SetLanguage(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%s)\n", a.Deps.T.Language(), a.Deps.T.Direction())
	return nil
}

func listJobs(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	var search, category string
	rest, err := subFlags("jobs", args, func(fs *flag.FlagSet) {
		fs.StringVar(&search, "q", "", "search title and description")
		fs.StringVar(&category, "category", "", "exact category")
	})
	if err != nil {
		return err
	}
	if err := want(rest, 0, 0, "jobs [-q text] [-category c]"); err != nil {
		return err
	}
	q := url.Values{}
	if search != "" {
		q.Set("q", search)
	}
	if category != "" {
		q.Set("category", category)
	}
	target := "/jobs"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	return a.Router.Navigate(ctx, w, target)
}

func showJob(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 1, 1, "job <id>"); err != nil {
		return err
	}
	id, err := parseID(args[0], "job id")
	if err != nil {
		return err
	}
	return a.Router.Navigate(ctx, w, "/jobs/"+strconv.FormatInt(id, 10))
}

func postJob(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	var in pages.JobInput
	rest, err := subFlags("post-job", args, func(fs *flag.FlagSet) {
		fs.StringVar(&in.Title, "title", "", "job title")
		fs.StringVar(&in.Description, "desc", "", "description")
		fs.StringVar(&in.Category, "category", "", "category")
		fs.Float64Var(&in.Budget, "budget", 0, "budget in TND")
		fs.Float64Var(&in.Latitude, "lat", 0, "latitude")
		fs.Float64Var(&in.Longitude, "lon", 0, "longitude")
	})
	if err != nil {
		return err
	}
	if err := want(rest, 0, 0, "post-job -title t -budget b [-desc d] [-category c] [-lat x -lon y]"); err != nil {
		return err
	}
	v, err := pages.PostJob(ctx, a.Deps, in)
	if err != nil {
		return err
	}
	return a.Router.Show(w, "/jobs/:jobId", v)
}

func bid(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 2, -1, "bid <jobId> <amount> [message]"); err != nil {
		return err
	}
	id, err := parseID(args[0], "job id")
	if err != nil {
		return err
	}
	amount, err := parseFloat(args[1], "amount")
	if err != nil {
		return err
	}
	v, err := pages.PlaceBid(ctx, a.Deps, id, amount, strings.Join(args[2:], " "))
	if v != nil {
		if rerr := a.Router.Show(w, "/jobs/:jobId", v); rerr != nil {
			return rerr
		}
	}
	return err
}

func accept(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 2, 2, "accept <jobId> <bidId>"); err != nil {
		return err
	}
	jobID, err := parseID(args[0], "job id")
	if err != nil {
		return err
	}
	bidID, err := parseID(args[1], "bid id")
	if err != nil {
		return err
	}
	v, err := pages.AcceptBid(ctx, a.Deps, jobID, bidID)
	if err != nil {
		return err
	}
	return a.Router.Show(w, "/jobs/:jobId", v)
}

func status(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 2, 2, "status <jobId> <IN_PROGRESS|COMPLETED|CANCELLED>"); err != nil {
		return err
	}
	id, err := parseID(args[0], "job id")
	if err != nil {
		return err
	}
	v, err := pages.ChangeStatus(ctx, a.Deps, id, models.JobStatus(args[1]))
	if v != nil {
		if rerr := a.Router.Show(w, "/jobs/:jobId", v); rerr != nil {
			return rerr
		}
	}
	return err
}

func feed(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 0, 0, "feed"); err != nil {
		return err
	}
	return a.Router.Navigate(ctx, w, "/community")
}

func story(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	var in pages.StoryInput
	var path string
	rest, err := subFlags("story", args, func(fs *flag.FlagSet) {
		fs.StringVar(&in.MediaURL, "media", "", "media URL")
		fs.StringVar(&path, "file", "", "image to upload")
		fs.StringVar(&in.Caption, "caption", "", "caption")
	})
	if err != nil {
		return err
	}
	if err := want(rest, 0, 0, "story [-media url | -file path] [-caption text]"); err != nil {
		return err
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in.File, in.Filename = f, path
	}
	v, err := pages.PostStory(ctx, a.Deps, in)
	if err != nil {
		return err
	}
	return a.Router.Show(w, "/community", v)
}

func chat(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 1, 1, "chat <jobId>"); err != nil {
		return err
	}
	id, err := parseID(args[0], "job id")
	if err != nil {
		return err
	}
	return a.Router.Navigate(ctx, w, "/jobs/"+strconv.FormatInt(id, 10)+"/chat")
}

func send(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 3, -1, "send <jobId> <receiverId> <text>"); err != nil {
		return err
	}
	jobID, err := parseID(args[0], "job id")
	if err != nil {
		return err
	}
	receiverID, err := parseID(args[1], "receiver id")
	if err != nil {
		return err
	}
	v, err := pages.SendChat(ctx, a.Deps, jobID, receiverID, strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	return a.Router.Show(w, "/jobs/:jobId/chat", v)
}

func review(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	var photo string
	rest, err := subFlags("review", args, func(fs *flag.FlagSet) {
		fs.StringVar(&photo, "photo", "", "photo URL")
	})
	if err != nil {
		return err
	}
	if err := want(rest, 2, -1, "review [-photo url] <jobId> <rating> [comment]"); err != nil {
		return err
	}
	jobID, err := parseID(rest[0], "job id")
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(rest[1])
	if err != nil {
		return usagef("rating must be 1 to 5, got %q", rest[1])
	}
	v, err := pages.SubmitReview(ctx, a.Deps, pages.ReviewInput{
		JobID:    jobID,
		Rating:   rating,
		Comment:  strings.Join(rest[2:], " "),
		PhotoURL: photo,
	})
	if err != nil {
		return err
	}
	return a.Router.Show(w, "/reviews", v)
}

func profile(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	var name string
	rest, err := subFlags("profile", args, func(fs *flag.FlagSet) {
		fs.StringVar(&name, "name", "", "new display name")
	})
	if err != nil {
		return err
	}
	if err := want(rest, 0, 0, "profile [-name n]"); err != nil {
		return err
	}
	if name == "" {
		return a.Router.Navigate(ctx, w, "/profile")
	}
	v, err := pages.EditProfile(ctx, a.Deps, session.ProfileUpdate{FullName: &name})
	if err != nil {
		return err
	}
	return a.Router.Show(w, "/profile", v)
}

func location(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 2, 2, "location <lat> <lon>"); err != nil {
		return err
	}
	lat, err := parseFloat(args[0], "lat")
	if err != nil {
		return err
	}
	lon, err := parseFloat(args[1], "lon")
	if err != nil {
		return err
	}
	if err := pages.ShareLocation(ctx, a.Deps, lat, lon); err != nil {
		return err
	}
	fmt.Fprintln(w, a.Deps.T.T("common.success"))
	return nil
}

func nearby(ctx context.Context, a *app.App, w io.Writer, args []string) error {
	if err := want(args, 2, 3, "nearby <lat> <lon> [radius]"); err != nil {
		return err
	}
	q := url.Values{"lat": {args[0]}, "lon": {args[1]}}
	if len(args) == 3 {
		q.Set("radius", args[2])
	}
	return a.Router.Navigate(ctx, w, "/profile?"+q.Encode())
}
