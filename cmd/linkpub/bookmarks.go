package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yuanying/linkpub/internal/bookmarks"
)

func newBookmarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks [FEED_URL]",
		Short: "List saved links from a bookmark feed, optionally converting them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBookmarks,
	}
	addBookFlags(cmd)
	cmd.Flags().Int("limit", 0, "Maximum number of bookmarks (default: from config)")
	cmd.Flags().Bool("convert", false, "Convert the listed bookmarks into one EPUB")
	return cmd
}

func runBookmarks(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	feed := cfg.Bookmarks.FeedURL
	if len(args) == 1 {
		feed = args[0]
	}
	if feed == "" {
		return errors.New("no feed URL given and bookmarks.feed_url is not set")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("invalid --limit %d", limit)
	}
	if limit == 0 {
		limit = cfg.Bookmarks.Limit
	}

	source := bookmarks.NewSource(feedClient(cfg), limit, logger)
	items, err := source.List(contextOf(cmd), feed)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No bookmarks")
		return nil
	}

	doConvert, _ := cmd.Flags().GetBool("convert")
	if !doConvert {
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Title", "URL", "Added"},
			bookmarkRows(items),
			nil,
		))
		return nil
	}

	urls := bookmarks.URLs(items)
	if len(urls) > cfg.Fetch.MaxArticles {
		logger.Warn("bookmark list truncated", "bookmarks", len(urls), "limit", cfg.Fetch.MaxArticles)
		urls = urls[:cfg.Fetch.MaxArticles]
	}
	opts, err := readConvertOptions(cmd, urls)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(cfg, logger, false)
	if err != nil {
		return err
	}
	return convertAndWrite(cmd, pipeline, opts, cfg.EPUB.DefaultVariant)
}

func bookmarkRows(items []bookmarks.Bookmark) [][]string {
	rows := make([][]string, 0, len(items))
	for _, b := range items {
		added := ""
		if !b.Added.IsZero() {
			added = humanize.Time(b.Added)
		}
		rows = append(rows, []string{b.Title, b.URL, added})
	}
	return rows
}
