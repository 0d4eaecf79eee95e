package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/iTrooz/footballdata/internal/api"
	"github.com/iTrooz/footballdata/internal/cache"
	"github.com/iTrooz/footballdata/internal/cache/doccache"
	"github.com/iTrooz/footballdata/internal/cache/imagecache"
	"github.com/iTrooz/footballdata/internal/config"
	"github.com/iTrooz/footballdata/internal/crest"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// A .env file is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// app holds everything a command may need
type app struct {
	client  *api.Client
	crests  *crest.Fetcher
	thumbs  *crest.Thumbnails
	docs    *cache.DiskCache
	images  *cache.DiskCache
	printer *printer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("footballdata", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { usage(flags) }
	configPath := flags.String("config", "config.yaml", "path to the YAML configuration file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	p := newPrinter(stdout, stderr)

	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	cmd, err := lookupCommand(flags.Arg(0), flags.Args()[1:])
	if err != nil {
		p.Error(err.Error())
		var usageErr *usageError
		if errors.As(err, &usageErr) && usageErr.showUsage {
			flags.Usage()
			return 2
		}
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		p.Error(fmt.Sprintf("Failed to load config: %v", err))
		return 1
	}
	if err := cfg.Validate(); err != nil {
		p.Error(err.Error())
		return 1
	}

	logrus.SetOutput(stderr)
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	}

	a, err := newApp(cfg, p)
	if err != nil {
		p.Error(err.Error())
		return 1
	}

	if err := cmd.run(a, ctx, flags.Args()[1:]); err != nil {
		p.Error(err.Error())
		return 1
	}
	return 0
}

func newApp(cfg *config.Config, p *printer) (*app, error) {
	docs := cache.NewDisk(cfg.Cache.Folder)
	if err := docs.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize document cache: %w", err)
	}
	images := cache.NewDisk(cfg.Images.Folder)
	if err := images.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize image cache: %w", err)
	}

	client, err := api.New(cfg, doccache.New(docs))
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	crests, err := crest.NewFetcher(cfg, imagecache.New(images))
	if err != nil {
		return nil, fmt.Errorf("failed to create crest fetcher: %w", err)
	}

	logrus.Debugf("Document cache: %s (TTL %s)", docs.Dir(), cfg.Cache.TTL)
	logrus.Debugf("Image cache: %s (TTL %s)", images.Dir(), cfg.Images.TTL)

	return &app{
		client:  client,
		crests:  crests,
		thumbs:  crest.NewThumbnails(crests),
		docs:    docs,
		images:  images,
		printer: p,
	}, nil
}

func usage(flags *flag.FlagSet) {
	out := flags.Output()
	fmt.Fprintln(out, "Usage: footballdata [-config path] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-40s %s\n", c.name+" "+c.args, c.help)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Flags:")
	flags.PrintDefaults()
}
