package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yuanying/linkpub/internal/article"
	"github.com/yuanying/linkpub/internal/convert"
	"github.com/yuanying/linkpub/internal/epub"
	"github.com/yuanying/linkpub/internal/extract"
)

// convertOptions are the validated flags of "linkpub convert".
type convertOptions struct {
	URLs           []string
	OutputPath     string
	Title          string
	Author         string
	Description    string
	Variant        string // empty means the configured default
	CoverImagePath string
	SaveUser       string
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert URL...",
		Short: "Fetch articles and write them as one EPUB",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runConvert,
	}
	addBookFlags(cmd)
	cmd.Flags().String("cover-image", "", "Image file for the cover variant (default: first article's lead image)")
	cmd.Flags().String("user", "", "Also store the book in this user's library")
	return cmd
}

// addBookFlags registers the flags shared by commands that produce a book.
func addBookFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("output", "o", "", "Output file path (default: <title>.epub in the current directory)")
	f.String("title", "", "Book title (default: article title, or \"Web Articles Collection\")")
	f.String("author", "", "Book author (default: from config)")
	f.String("description", "", "Book description (default: article excerpts)")
	f.String("variant", "", "Book layout: plain or cover (default: from config)")
}

func readConvertOptions(cmd *cobra.Command, args []string) (convertOptions, error) {
	f := cmd.Flags()
	output, _ := f.GetString("output")
	title, _ := f.GetString("title")
	author, _ := f.GetString("author")
	description, _ := f.GetString("description")
	variant, _ := f.GetString("variant")
	cover, _ := f.GetString("cover-image")
	user, _ := f.GetString("user")

	if len(args) == 0 {
		return convertOptions{}, convert.ErrNoURLs
	}
	urls := make([]string, 0, len(args))
	for _, arg := range args {
		u, err := extract.ParseURL(arg)
		if err != nil {
			return convertOptions{}, err
		}
		urls = append(urls, u.String())
	}

	variant = strings.TrimSpace(variant)
	if variant != "" {
		v, err := epub.ParseVariant(variant)
		if err != nil {
			return convertOptions{}, fmt.Errorf("invalid --variant: %w", err)
		}
		variant = v.String()
	}
	if cover != "" {
		if variant == epub.VariantPlain.String() {
			return convertOptions{}, errors.New("--cover-image requires --variant cover")
		}
		if _, err := os.Stat(cover); err != nil {
			return convertOptions{}, fmt.Errorf("invalid --cover-image: %w", err)
		}
	}

	return convertOptions{
		URLs:           urls,
		OutputPath:     output,
		Title:          strings.TrimSpace(title),
		Author:         strings.TrimSpace(author),
		Description:    strings.TrimSpace(description),
		Variant:        variant,
		CoverImagePath: cover,
		SaveUser:       strings.TrimSpace(user),
	}, nil
}

// defaultOutputPath names the book after its title in dir.
func defaultOutputPath(dir, title string) string {
	return filepath.Join(dir, article.SanitizeFilename(title)+".epub")
}

// pipelineOptions resolves the variant against the configured default and
// loads the cover image, if any.
func (o convertOptions) pipelineOptions(defaultVariant string) (convert.Options, error) {
	name := o.Variant
	if name == "" {
		name = defaultVariant
	}
	variant, err := epub.ParseVariant(name)
	if err != nil {
		return convert.Options{}, err
	}
	opts := convert.Options{
		Title:       o.Title,
		Author:      o.Author,
		Description: o.Description,
		Variant:     variant,
	}
	if o.CoverImagePath != "" {
		data, err := os.ReadFile(o.CoverImagePath)
		if err != nil {
			return convert.Options{}, fmt.Errorf("read cover image: %w", err)
		}
		opts.CoverImage = data
	}
	return opts, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, err := readConvertOptions(cmd, args)
	if err != nil {
		return err
	}
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	withLibrary := opts.SaveUser != ""
	if withLibrary {
		if err := cfg.EnsureDirectories(); err != nil {
			return err
		}
	}
	pipeline, err := newPipeline(cfg, logger, withLibrary)
	if err != nil {
		return err
	}
	return convertAndWrite(cmd, pipeline, opts, cfg.EPUB.DefaultVariant)
}

// convertAndWrite runs the pipeline and writes the book to disk, reporting
// skipped URLs on stderr.
func convertAndWrite(cmd *cobra.Command, pipeline *convert.Pipeline, opts convertOptions, defaultVariant string) error {
	popts, err := opts.pipelineOptions(defaultVariant)
	if err != nil {
		return err
	}

	res, err := pipeline.Convert(contextOf(cmd), opts.URLs, popts)
	if res != nil {
		reportFailures(cmd.ErrOrStderr(), res.Failures)
	}
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	out := opts.OutputPath
	if out == "" {
		out = defaultOutputPath(".", res.Collection.ResolvedTitle())
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d %s, %s)\n",
		out, res.Collection.Len(), plural(res.Collection.Len(), "article", "articles"),
		humanize.Bytes(uint64(len(res.Data))))

	if opts.SaveUser != "" {
		entry, err := pipeline.Save(opts.SaveUser, res)
		if err != nil {
			return fmt.Errorf("save to library: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s's library as %s\n", opts.SaveUser, entry.Filename)
	}
	return nil
}

func reportFailures(w io.Writer, failures []extract.Failure) {
	for _, f := range failures {
		fmt.Fprintf(w, "skipped %s: %v\n", f.URL, f.Err)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
