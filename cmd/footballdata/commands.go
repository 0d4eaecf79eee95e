package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"
	"time"
)

// usageError reports a malformed command line
type usageError struct {
	msg       string
	showUsage bool
}

func (e *usageError) Error() string { return e.msg }

type command struct {
	name    string
	args    string
	help    string
	minArgs int
	maxArgs int
	run     func(a *app, ctx context.Context, args []string) error
}

var commands = []command{
	{name: "competitions", help: "list competitions", run: (*app).competitions},
	{name: "standings", args: "<competition>", help: "league table of a competition", minArgs: 1, maxArgs: 1, run: (*app).standings},
	{name: "matches", args: "<competition> [matchday]", help: "matches of a competition", minArgs: 1, maxArgs: 2, run: (*app).matches},
	{name: "scorers", args: "<competition> [limit]", help: "top scorers of a competition", minArgs: 1, maxArgs: 2, run: (*app).scorers},
	{name: "team-matches", args: "<team> [status]", help: "matches of a team", minArgs: 1, maxArgs: 2, run: (*app).teamMatches},
	{name: "match", args: "<match>", help: "details of a single match", minArgs: 1, maxArgs: 1, run: (*app).match},
	{name: "week", help: "matches around today", run: (*app).week},
	{name: "golden-boot", help: "weighted top scorers across leagues", run: (*app).goldenBoot},
	{name: "crest", args: "<team> <url> <out.png> [size]", help: "save a team crest as PNG", minArgs: 3, maxArgs: 4, run: (*app).crest},
	{name: "sweep", args: "<max-age>", help: "remove cache files older than max-age", minArgs: 1, maxArgs: 1, run: (*app).sweep},
}

const defaultScorersLimit = 10

// lookupCommand finds the command called name and checks its argument count
func lookupCommand(name string, args []string) (*command, error) {
	for i := range commands {
		c := &commands[i]
		if c.name != name {
			continue
		}
		if len(args) < c.minArgs || len(args) > c.maxArgs {
			return nil, &usageError{msg: fmt.Sprintf("usage: %s %s", c.name, c.args)}
		}
		return c, nil
	}
	return nil, &usageError{msg: fmt.Sprintf("unknown command %q", name), showUsage: true}
}

func (a *app) competitions(ctx context.Context, _ []string) error {
	return emit(a.printer, a.client.Competitions(ctx))
}

func (a *app) standings(ctx context.Context, args []string) error {
	return emit(a.printer, a.client.Standings(ctx, args[0]))
}

func (a *app) matches(ctx context.Context, args []string) error {
	matchday, err := optionalInt(args, 1, "matchday", 0)
	if err != nil {
		return err
	}
	return emit(a.printer, a.client.Matches(ctx, args[0], matchday))
}

func (a *app) scorers(ctx context.Context, args []string) error {
	limit, err := optionalInt(args, 1, "limit", defaultScorersLimit)
	if err != nil {
		return err
	}
	return emit(a.printer, a.client.Scorers(ctx, args[0], limit))
}

func (a *app) teamMatches(ctx context.Context, args []string) error {
	teamID, err := parseID(args[0], "team")
	if err != nil {
		return err
	}
	status := ""
	if len(args) > 1 {
		status = args[1]
	}
	return emit(a.printer, a.client.TeamMatches(ctx, teamID, status))
}

func (a *app) match(ctx context.Context, args []string) error {
	matchID, err := parseID(args[0], "match")
	if err != nil {
		return err
	}
	return emit(a.printer, a.client.Match(ctx, matchID))
}

func (a *app) week(ctx context.Context, _ []string) error {
	return emit(a.printer, a.client.MatchesAroundToday(ctx))
}

func (a *app) goldenBoot(ctx context.Context, _ []string) error {
	return emit(a.printer, a.client.GoldenBoot(ctx))
}

func (a *app) crest(ctx context.Context, args []string) error {
	teamID, err := parseID(args[0], "team")
	if err != nil {
		return err
	}
	size, err := optionalInt(args, 3, "size", 0)
	if err != nil {
		return err
	}

	var img image.Image
	var ok bool
	if size > 0 {
		img, ok = a.thumbs.Get(ctx, teamID, args[1], image.Pt(size, size))
	} else {
		img, ok = a.crests.Crest(ctx, teamID, args[1])
	}
	if !ok {
		return fmt.Errorf("no crest available for team %d", teamID)
	}

	out, err := os.Create(args[2])
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", args[2], err)
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to encode crest: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	a.printer.Success(fmt.Sprintf("Saved crest of team %d to %s", teamID, args[2]))
	return nil
}

func (a *app) sweep(_ context.Context, args []string) error {
	maxAge, err := time.ParseDuration(args[0])
	if err != nil || maxAge <= 0 {
		return &usageError{msg: fmt.Sprintf("invalid max-age %q", args[0])}
	}

	docs, err := a.docs.Sweep(maxAge)
	if err != nil {
		return fmt.Errorf("failed to sweep document cache: %w", err)
	}
	images, err := a.images.Sweep(maxAge)
	if err != nil {
		return fmt.Errorf("failed to sweep image cache: %w", err)
	}

	a.printer.Success(fmt.Sprintf("Removed %d documents and %d crests", docs, images))
	return nil
}

func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, &usageError{msg: fmt.Sprintf("invalid %s id %q", what, arg)}
	}
	return id, nil
}

func optionalInt(args []string, i int, what string, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 0 {
		return 0, &usageError{msg: fmt.Sprintf("invalid %s %q", what, args[i])}
	}
	return n, nil
}
