package router

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/diya-thabet/hirfa/internal/pages"
)

// Routes is the client's route table. Unmatched paths render a 404 page.
func Routes() []Route {
	return []Route{
		{Pattern: "/", Layout: Chrome, Load: home},
		{Pattern: "/jobs", Layout: Chrome, Load: jobs},
		{Pattern: "/jobs/:jobId", Layout: Chrome, Load: jobDetail},
		{Pattern: "/jobs/:jobId/chat", Layout: Chrome, Load: chat},
		{Pattern: "/community", Layout: Chrome, Load: community},
		{Pattern: "/dashboard", Layout: Chrome, Load: dashboard},
		{Pattern: "/profile", Layout: Chrome, Load: profile},
		{Pattern: "/login", Layout: Bare, Load: authForm("auth.loginTitle")},
		{Pattern: "/register", Layout: Bare, Load: authForm("auth.registerTitle")},
	}
}

func home(_ context.Context, d pages.Deps, _ Params, _ url.Values) (pages.View, error) {
	return pages.LoadHome(d), nil
}

func jobs(ctx context.Context, d pages.Deps, _ Params, q url.Values) (pages.View, error) {
	return pages.LoadJobs(ctx, d, pages.Filter{Search: q.Get("q"), Category: q.Get("category")}), nil
}

func jobDetail(ctx context.Context, d pages.Deps, p Params, _ url.Values) (pages.View, error) {
	id, err := p.Int64("jobId")
	if err != nil {
		return nil, err
	}
	return pages.LoadJobDetail(ctx, d, id), nil
}

func chat(ctx context.Context, d pages.Deps, p Params, _ url.Values) (pages.View, error) {
	id, err := p.Int64("jobId")
	if err != nil {
		return nil, err
	}
	if !d.Session.IsAuthenticated() {
		return nil, pages.ErrSignedOut
	}
	return pages.LoadChat(ctx, d, id), nil
}

func community(ctx context.Context, d pages.Deps, _ Params, _ url.Values) (pages.View, error) {
	return pages.LoadCommunity(ctx, d), nil
}

func dashboard(ctx context.Context, d pages.Deps, _ Params, _ url.Values) (pages.View, error) {
	return pages.LoadDashboard(ctx, d)
}

// profile shows the signed-in user; with lat and lon it also lists nearby
// providers within radius meters.
func profile(ctx context.Context, d pages.Deps, _ Params, q url.Values) (pages.View, error) {
	if !q.Has("lat") || !q.Has("lon") {
		return pages.LoadProfile(d)
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lat=%q", ErrBadParam, q.Get("lat"))
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lon=%q", ErrBadParam, q.Get("lon"))
	}
	var radius float64
	if r := q.Get("radius"); r != "" {
		if radius, err = strconv.ParseFloat(r, 64); err != nil {
			return nil, fmt.Errorf("%w: radius=%q", ErrBadParam, r)
		}
	}
	return pages.LoadNearby(ctx, d, lat, lon, radius), nil
}

func authForm(title string) Loader {
	return func(context.Context, pages.Deps, Params, url.Values) (pages.View, error) {
		return &pages.AuthView{Title: title}, nil
	}
}
