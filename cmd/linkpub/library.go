package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yuanying/linkpub/internal/library"
)

func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect and prune stored books",
	}
	cmd.PersistentFlags().StringP("user", "u", "", "Library owner (required)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List a user's books, newest first",
		Args:  cobra.NoArgs,
		RunE:  runLibraryList,
	}
	remove := &cobra.Command{
		Use:     "delete FILENAME...",
		Aliases: []string{"rm"},
		Short:   "Delete books from a user's library",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runLibraryDelete,
	}
	cmd.AddCommand(list, remove)
	return cmd
}

func openLibrary(cmd *cobra.Command) (*library.Store, string, error) {
	user, _ := cmd.Flags().GetString("user")
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, "", errors.New("--user is required")
	}
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	store, err := library.NewStore(cfg.LibraryDir(), logger)
	if err != nil {
		return nil, "", err
	}
	return store, user, nil
}

func runLibraryList(cmd *cobra.Command, _ []string) error {
	store, user, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	entries, err := store.List(user)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No books in %s's library\n", user)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"File", "Title", "Articles", "Variant", "Size", "Created"},
		libraryRows(entries),
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func libraryRows(entries []library.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Filename,
			e.Title,
			strconv.Itoa(len(e.Contents)),
			e.Variant,
			humanize.Bytes(uint64(e.Size)),
			humanize.Time(e.CreatedAt),
		})
	}
	return rows
}

func runLibraryDelete(cmd *cobra.Command, args []string) error {
	store, user, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range args {
		if err := store.Delete(user, name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
	}
	return errors.Join(errs...)
}
