package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	projectdomain "github.com/listly/listly-backend/internal/projects/domain"
	"github.com/listly/listly-backend/internal/scraping/domain"
	"github.com/listly/listly-backend/internal/scraping/extract"
	"github.com/listly/listly-backend/internal/scraping/scraper"
	"github.com/listly/listly-backend/internal/weburl"
)

var scrapeOpts struct {
	types     []string
	render    bool
	userAgent string
	noRobots  bool
	private   bool
	timeout   time.Duration
	output    string
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape a page and print the extracted items as JSON or YAML",
	Long: `Fetches the page, runs the same extraction as a project scrape and
writes the items to stdout. Nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	names := make([]string, 0, len(projectdomain.DefaultDataTypes))
	for _, dt := range projectdomain.DefaultDataTypes {
		names = append(names, string(dt))
	}
	f := scrapeCmd.Flags()
	f.StringSliceVarP(&scrapeOpts.types, "types", "t", names, "data types to extract (text,links,images,prices,emails,phones)")
	f.BoolVar(&scrapeOpts.render, "render", false, "render the page in headless Chrome")
	f.StringVar(&scrapeOpts.userAgent, "user-agent", scraper.DefaultUserAgent, "User-Agent header and robots.txt agent")
	f.BoolVar(&scrapeOpts.noRobots, "ignore-robots", false, "skip the robots.txt check")
	f.BoolVar(&scrapeOpts.private, "allow-private-networks", false, "allow loopback and internal addresses")
	f.DurationVar(&scrapeOpts.timeout, "timeout", 60*time.Second, "scrape timeout")
	f.StringVarP(&scrapeOpts.output, "output", "o", "json", "output format: json or yaml")
}

func runScrape(cmd *cobra.Command, args []string) error {
	if scrapeOpts.output != "json" && scrapeOpts.output != "yaml" {
		return fmt.Errorf("unknown output format %q", scrapeOpts.output)
	}
	target, err := weburl.Normalize(args[0])
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", args[0], err)
	}

	types := make([]projectdomain.DataType, 0, len(scrapeOpts.types))
	for _, t := range scrapeOpts.types {
		types = append(types, projectdomain.DataType(t))
	}
	types = projectdomain.NormalizeDataTypes(types)
	if len(types) == 0 {
		return fmt.Errorf("no known data types in %s", strings.Join(scrapeOpts.types, ","))
	}

	var sc scraper.Scraper
	if scrapeOpts.render {
		chrome := scraper.NewChromeRenderer(scrapeOpts.userAgent, nil)
		if scrapeOpts.private {
			chrome.AllowPrivateNetworks()
		}
		defer chrome.Close()
		sc = chrome
	} else {
		var opts []scraper.PageOption
		if scrapeOpts.noRobots {
			opts = append(opts, scraper.WithoutRobots())
		}
		if scrapeOpts.private {
			opts = append(opts, scraper.AllowPrivateNetworks())
		}
		sc = scraper.NewPageFetcher(scrapeOpts.userAgent, opts...)
	}

	ctx := cmd.Context()
	if scrapeOpts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, scrapeOpts.timeout)
		defer cancel()
	}

	res, err := sc.Scrape(ctx, target)
	if err != nil {
		return err
	}

	items := extract.BuildItems(extract.Input{
		ProjectID: "cli",
		UserID:    "cli",
		SourceURL: target,
		Result:    res,
		DataTypes: types,
	})
	views := make([]domain.ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, it.View())
	}

	if scrapeOpts.output == "yaml" {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}
