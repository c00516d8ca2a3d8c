package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/datalake-api/internal/config"
	"github.com/tonimelisma/datalake-api/internal/driveops"
	"github.com/tonimelisma/datalake-api/internal/drivetree"
)

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [folder]",
		Short: "List a folder and everything below it",
		Long: `List a folder recursively, parents before children. Without an
argument the drive root (or drive.path_prefix) is listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLs,
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the drive by name and content",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}
}

func newURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <file-path>",
		Short: "Print a short-lived download URL for a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runURL,
	}
}

func newMetadataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata [file-path]",
		Short: "Print the parsed metadata document",
		Long: `Fetch and parse a JSON or YAML document from the drive. Without an
argument the configured metadata file is located per metadata.fallback.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runMetadata,
	}
}

// newService wires a query service to the resolved config. CLI commands
// take a config snapshot; only serve watches the file.
func newService() *driveops.Service {
	logger := buildLogger()
	holder := config.NewHolder(resolvedCfg, "")
	sessions := driveops.NewSessionProvider(holder, defaultHTTPClient(resolvedCfg), logger)

	return driveops.NewService(sessions, holder, logger)
}

func runLs(cmd *cobra.Command, args []string) error {
	folder := ""
	if len(args) > 0 {
		folder = args[0]
	}

	listing, err := newService().List(cmd.Context(), folder)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(os.Stdout, driveops.NewListResponse(listing))
	}

	printListingTable(os.Stdout, listing)
	statusf(flagQuiet, "%d items\n", len(listing))

	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	results, err := newService().Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(os.Stdout, driveops.NewSearchResponse(results))
	}

	printSearchTable(os.Stdout, results)
	statusf(flagQuiet, "%d results\n", len(results))

	return nil
}

func runURL(cmd *cobra.Command, args []string) error {
	link, err := newService().DownloadLink(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(os.Stdout, driveops.DownloadResponse{FilePath: link.FilePath, DownloadURL: link.URL})
	}

	fmt.Fprintln(os.Stdout, link.URL)

	return nil
}

func runMetadata(cmd *cobra.Command, args []string) error {
	filePath := ""
	if len(args) > 0 {
		filePath = args[0]
	}

	doc, err := newService().Metadata(cmd.Context(), filePath)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(os.Stdout, driveops.MetadataResponse{FilePath: doc.FilePath, Metadata: doc.Document})
	}

	statusf(flagQuiet, "source: %s\n", doc.FilePath)

	return printJSON(os.Stdout, doc.Document)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func printListingTable(w io.Writer, listing drivetree.Listing) {
	headers := []string{"TYPE", "SIZE", "PATH"}
	rows := make([][]string, 0, len(listing))

	for i := range listing {
		e := &listing[i]

		size := "-"
		path := e.Path

		if e.IsFolder() {
			path += "/"
		} else {
			size = formatSize(e.SizeBytes)
		}

		rows = append(rows, []string{string(e.Kind), size, path})
	}

	printTable(w, headers, rows)
}

func printSearchTable(w io.Writer, results []driveops.SearchResult) {
	headers := []string{"TYPE", "NAME", "PARENT", "ID"}
	rows := make([][]string, 0, len(results))

	for i := range results {
		r := &results[i]

		parent := r.Path
		if parent == "" {
			parent = "-"
		}

		rows = append(rows, []string{string(r.Kind), r.Name, parent, r.ID})
	}

	printTable(w, headers, rows)
}
