package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/earthquake-locator/internal/adapter/usgs"
	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/spf13/cobra"
)

func (r *RootCommand) newLinkCommand() *cobra.Command {
	var (
		file   string
		decode string
	)
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Build or decode a geojson.io map link offline",
		Long: `Build a map link from a saved catalog GeoJSON response (--file), or print
the GeoJSON embedded in an existing link (--decode). No network access is needed.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			switch {
			case file != "" && decode != "":
				return errors.New("use either --file or --decode, not both")
			case file != "":
				return r.linkFromFile(file)
			case decode != "":
				return r.decodeLink(decode)
			default:
				return errors.New("one of --file or --decode is required")
			}
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Catalog GeoJSON file to convert")
	cmd.Flags().StringVar(&decode, "decode", "", "Map link to decode")
	return cmd
}

func (r *RootCommand) linkFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := usgs.DecodeRecords(f, r.deps.Logger)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	fmt.Fprintln(r.out, domain.BuildMapLink(records))
	return nil
}

func (r *RootCommand) decodeLink(link string) error {
	fc, err := domain.DecodeMapLink(link)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}
