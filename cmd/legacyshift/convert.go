package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"legacyshift/internal/archive"
	"legacyshift/internal/gateway/app"
	"legacyshift/internal/types"
)

var (
	convertIn     string
	convertOut    string
	convertFamily string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one archive or source directory offline and write the result archive",
	Example: `  legacyshift convert --in shop.zip --family jaxrs
  legacyshift convert --in ./legacy-portal --family struts
  LLM_PROVIDER=fake legacyshift convert --in ui.zip --family angularjs --out /tmp/ui-new.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := filepath.Clean(convertIn)
		info, err := os.Stat(in)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		var files []types.SourceFile
		if info.IsDir() {
			files, err = archive.ReadDir(in)
		} else {
			var data []byte
			if data, err = os.ReadFile(in); err == nil {
				files, err = archive.Extract(data)
			}
		}
		if err != nil {
			return fmt.Errorf("read input %s: %w", in, err)
		}
		out := convertOut
		if out == "" {
			base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
			out = filepath.Join(filepath.Dir(in), "converted_"+base+".zip")
		}

		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Conversion().ConvertFiles(cmd.Context(), files, convertFamily)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, res.Archive, 0o644); err != nil {
			return fmt.Errorf("write result archive: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "job %s: wrote %d files to %s\n", res.JobID, res.Files, out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertIn, "in", "", "legacy source archive (.zip) or directory")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "result archive path (default converted_<in>.zip next to the input)")
	convertCmd.Flags().StringVar(&convertFamily, "family", "", "source framework family, one of: angularjs, jaxrs, jsf, struts")
	_ = convertCmd.MarkFlagRequired("in")
	_ = convertCmd.MarkFlagRequired("family")
}
