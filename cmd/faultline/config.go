package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/faultline/internal/config"
	"github.com/vango-dev/faultline/internal/errors"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check faultline.json",
	}
	cmd.AddCommand(configInitCmd(), configCheckCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default faultline.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if config.Exists(dir) && !force {
				return errors.New("F300").WithDetail(filepath.Join(dir, config.ConfigFileName) + " already exists")
			}

			path := filepath.Join(dir, config.ConfigFileName)
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(out, "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write faultline.json into")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

// checkResult is the --json output of a successful config check.
type checkResult struct {
	Valid      bool   `json:"valid"`
	Path       string `json:"path"`
	Production bool   `json:"production"`
	Browser    bool   `json:"browser"`
	Embedded   bool   `json:"embedded"`
	Devtools   string `json:"devtools"`
	Archive    string `json:"archive,omitempty"`
}

func configCheckCmd() *cobra.Command {
	var (
		path    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate faultline.json",
		Long: `Load and validate faultline.json.

Without --file the nearest faultline.json in the working directory or
one of its parents is used. With --json the result, or the error, is
printed as a single JSON object.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig(path)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				if jsonOut {
					fmt.Fprintln(out, commandError(err).FormatJSON())
				}
				return err
			}

			if jsonOut {
				probe := cfg.Probe()
				res := checkResult{
					Valid:      true,
					Path:       cfg.Path(),
					Production: cfg.Production,
					Browser:    probe.Browser(),
					Embedded:   probe.Embedded(),
					Devtools:   cfg.Devtools.Addr + cfg.Devtools.OverlayPath,
				}
				if cfg.Archive.Enabled() {
					res.Archive = "s3://" + cfg.Archive.Bucket + "/" + cfg.Archive.Prefix
				}
				data, err := json.Marshal(res)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			success(out, "%s is valid", cfg.Path())
			probe := cfg.Probe()
			info(out, "production: %v", cfg.Production)
			info(out, "host:       browser=%v embedded=%v", probe.Browser(), probe.Embedded())
			info(out, "devtools:   %s%s", cfg.Devtools.Addr, cfg.Devtools.OverlayPath)
			if cfg.Archive.Enabled() {
				info(out, "archive:    s3://%s/%s every %s", cfg.Archive.Bucket, cfg.Archive.Prefix, cfg.Archive.FlushDuration())
			} else {
				info(out, "archive:    disabled")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "Path to faultline.json")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	return cmd
}

// loadConfig loads path, or the nearest faultline.json when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadFromWorkingDir()
}
