package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drivemeta/internal/api"
	"drivemeta/internal/app"
	"drivemeta/internal/config"
	"drivemeta/internal/meta"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
func newApp(ctx context.Context) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "drivemeta",
	Short: "Drive metadata extraction tool",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Create config with defaults
		cfg := config.NewConfig(defaults["base_dir"])

		// Initialize config file
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
		fmt.Printf("Output Dir: %s\n", cfg.OutputDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get application defaults
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Read config
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		// Display config
		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Output Dir: %s\n", cfg.OutputDir)
		fmt.Printf("Endpoint:   %s\n", cfg.Drive.Endpoint)
		fmt.Printf("Token Path: %s\n", cfg.Drive.TokenPath)
		fmt.Printf("Workers:    %d\n", cfg.Extract.Workers)
		fmt.Printf("Formats:    %v\n", cfg.Extract.Formats)
		fmt.Printf("Sink:       %s\n", cfg.Sink.Type)
		return nil
	},
}

// extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract file metadata from the drive",
	RunE: func(cmd *cobra.Command, args []string) error {
		folder, _ := cmd.Flags().GetString("folder")
		includeTrashed, _ := cmd.Flags().GetBool("include-trashed")
		workers, _ := cmd.Flags().GetInt("workers")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		lastLine := ""
		snap, err := a.RunExtraction(ctx, folder, includeTrashed, workers, func(s meta.Snapshot) {
			line := fmt.Sprintf("%s: %s", s.Status, s.Message)
			if line != lastLine {
				fmt.Println(line)
				lastLine = line
			}
		})
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		switch snap.Status {
		case meta.StatusCompleted:
			fmt.Printf("\nExtracted %d file(s), %d failure(s)\n", snap.Total, snap.Failures)
			fmt.Printf("Forensic hash (SHA-256): %s\n", snap.Fingerprint)
		case meta.StatusStopped:
			fmt.Println("\nExtraction stopped before completion.")
		case meta.StatusError:
			return fmt.Errorf("extraction failed: %s", snap.ErrDetail)
		}
		return nil
	},
}

// folders command
var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List folders available as extraction roots",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		folders, err := a.ListFolders(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing folders: %w", err)
		}

		if len(folders) == 0 {
			fmt.Println("No folders found.")
			return nil
		}

		for _, f := range folders {
			fmt.Printf("%s  %s\n", f.ID, f.Name)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View extraction run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No extraction runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				d := r.FinishedAt.Time.Sub(r.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fingerprint := r.Fingerprint
			if len(fingerprint) > 12 {
				fingerprint = fingerprint[:12]
			}
			fmt.Printf("%s  %s  %-10s  %5d file(s)  %s  %s\n",
				r.ID,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				r.ItemCount,
				fingerprint,
				duration,
			)
		}
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction control API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		engine := api.NewEngine(a)

		fmt.Printf("Listening on %s\n", addr)
		errCh := make(chan error, 1)
		go func() {
			errCh <- engine.Run(addr)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
			a.Controller().Stop()
			return nil
		}
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("folder", "f", "", "Folder ID or URL to extract (default: entire drive)")
	extractCmd.Flags().Bool("include-trashed", false, "Include trashed files")
	extractCmd.Flags().IntP("workers", "w", 0, "Parallel extraction workers (0 = use config)")
	rootCmd.AddCommand(foldersCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Listen address")
}
