package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yuanying/linkpub/internal/epub"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.epub",
		Short: "Check an EPUB's container and print its metadata and chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			info, err := epub.Inspect(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			printInfo(cmd.OutOrStdout(), info, len(data))
			return nil
		},
	}
}

func printInfo(w io.Writer, info *epub.Info, size int) {
	md := info.OPF.Metadata
	fmt.Fprintf(w, "Title:       %s\n", md.Title)
	fmt.Fprintf(w, "Author:      %s\n", strings.Join(md.Creators, ", "))
	fmt.Fprintf(w, "Identifier:  %s\n", md.Identifier)
	fmt.Fprintf(w, "Language:    %s\n", md.Language)
	fmt.Fprintf(w, "Date:        %s\n", md.Date)
	if md.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", md.Description)
	}
	if md.CoverID != "" {
		fmt.Fprintf(w, "Cover:       %s\n", md.CoverID)
	}
	if info.NCX != nil {
		fmt.Fprintf(w, "Pages:       %d\n", info.NCX.TotalPageCount)
	}
	fmt.Fprintf(w, "Size:        %s (%d entries)\n", humanize.Bytes(uint64(size)), len(info.Entries))

	if len(info.Chapters) == 0 {
		return
	}
	rows := make([][]string, 0, len(info.Chapters))
	for i, ch := range info.Chapters {
		rows = append(rows, []string{strconv.Itoa(i + 1), ch.Title, ch.SiteName, ch.URL})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"#", "Title", "Site", "URL"},
		rows,
		[]columnAlignment{alignRight},
	))
}
