package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"subfetch/internal/config"
	"subfetch/internal/history"
	"subfetch/internal/language"
	"subfetch/internal/matcher"
	"subfetch/internal/pipeline"
	"subfetch/internal/preflight"
	"subfetch/internal/services"
	"subfetch/internal/subtitles/opensubtitles"
	"subfetch/internal/textutil"
	"subfetch/internal/video"
)

type fetchFlags struct {
	auto      bool
	overwrite bool
	recursive bool
	language  string
	subfolder string
	cutoff    float64
	noHistory bool
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch <path>...",
		Short: "Download subtitles for video files or folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyFetchFlags(cmd, cfg, flags); err != nil {
				return err
			}
			return runFetch(cmd, ctx, cfg, args, flags.noHistory)
		},
	}

	cmd.Flags().BoolVarP(&flags.auto, "auto", "a", false, "Pick the best subtitle without prompting")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Replace subtitles that already exist")
	cmd.Flags().BoolVarP(&flags.recursive, "recursive", "r", false, "Search folders recursively")
	cmd.Flags().StringVarP(&flags.language, "lang", "l", "", "Subtitle language name or code (e.g. eng, French)")
	cmd.Flags().StringVarP(&flags.subfolder, "subfolder", "s", "", "Save subtitles into this folder next to each video")
	cmd.Flags().Float64Var(&flags.cutoff, "cutoff", matcher.DefaultCutoff, "Minimum title similarity for descriptive matches (0-1)")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record decisions in the history database")
	return cmd
}

// applyFetchFlags overlays explicitly set flags on the loaded config and
// revalidates it.
func applyFetchFlags(cmd *cobra.Command, cfg *config.Config, flags fetchFlags) error {
	changed := cmd.Flags().Changed
	if changed("auto") {
		cfg.Subtitles.AutoSelect = flags.auto
	}
	if changed("overwrite") {
		cfg.Subtitles.Overwrite = flags.overwrite
	}
	if changed("recursive") {
		cfg.Pipeline.Recursive = flags.recursive
	}
	if changed("lang") {
		code, err := language.Resolve(flags.language)
		if err != nil {
			return services.Wrap(services.ErrValidation, "fetch", "language", "run `subfetch languages` for the list", err)
		}
		cfg.Subtitles.Language = code
	}
	if changed("subfolder") {
		cfg.Subtitles.Subfolder = textutil.SanitizePathSegment(flags.subfolder)
	}
	if changed("cutoff") {
		cfg.Subtitles.Cutoff = flags.cutoff
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "fetch", "flags", "", err)
	}
	return nil
}

func runFetch(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, args []string, noHistory bool) error {
	out := cmd.OutOrStdout()
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}

	if failed := preflight.Failed([]preflight.Result{preflight.CheckDirectoryAccess("Data directory", cfg.Paths.DataDir)}); len(failed) > 0 {
		return services.Wrap(services.ErrConfiguration, "fetch", "preflight", failed[0].Detail, nil)
	}

	paths, err := collectVideos(args, cfg)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No video files found")
		return nil
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout()}
	client, err := opensubtitles.New(opensubtitles.Config{
		Endpoint:    cfg.Catalog.Endpoint,
		UserAgent:   cfg.Catalog.UserAgent,
		Language:    cfg.Subtitles.Language,
		HTTPClient:  httpClient,
		MinInterval: cfg.MinInterval(),
	})
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "fetch", "catalog client", "", err)
	}
	session := opensubtitles.NewSession(client, opensubtitles.SessionOptions{
		LoginAttempts: cfg.Catalog.LoginAttempts,
		QueryAttempts: cfg.Catalog.QueryAttempts,
		RetryDelay:    cfg.RetryDelay(),
		Logger:        logger,
	})

	opts := pipeline.Options{
		Config:     cfg,
		Catalog:    session,
		Selector:   newSelector(cmd, cfg),
		HTTPClient: httpClient,
		Logger:     logger,
	}
	if !noHistory {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			return err
		}
		defer store.Close()
		opts.History = store
	}

	p, err := pipeline.New(opts)
	if err != nil {
		return err
	}
	summary, runErr := p.Run(cmd.Context(), paths)
	if len(summary.Results) > 0 {
		fmt.Fprintln(out, renderSummary(summary))
	}
	if runErr != nil {
		return runErr
	}
	if failed := summary.Count(pipeline.OutcomeFailed); failed > 0 {
		return fmt.Errorf("%d of %d videos failed", failed, len(summary.Results))
	}
	return nil
}

func newSelector(cmd *cobra.Command, cfg *config.Config) pipeline.Selector {
	normalize := textutil.StripNonAlnum
	if cfg.Subtitles.FoldAccents {
		normalize = textutil.FoldThenStrip
	}
	m := matcher.New(matcher.Options{Cutoff: cfg.Subtitles.Cutoff, Normalize: normalize})
	if cfg.Subtitles.AutoSelect || !interactive(cmd.InOrStdin(), cmd.OutOrStdout()) {
		return pipeline.NewAutoSelector(m)
	}
	return newPromptSelector(cmd.InOrStdin(), cmd.OutOrStdout(), m)
}

// collectVideos expands folder arguments into video files. Explicit file
// arguments are kept even when their extension is not a known video type.
func collectVideos(args []string, cfg *config.Config) ([]string, error) {
	var paths []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, services.Wrap(services.ErrNotFound, "fetch", "scan", arg, err)
			}
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		found, err := video.Scan(arg, cfg.Subtitles.VideoExtensions, cfg.Pipeline.Recursive)
		if err != nil {
			return nil, err
		}
		for _, path := range found {
			add(path)
		}
	}
	return paths, nil
}

func renderSummary(summary pipeline.Summary) string {
	rows := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		outcome := string(res.Outcome)
		if outcome == "" {
			outcome = "not processed"
		}
		subtitle := ""
		if res.HasSubtitle {
			subtitle = res.Subtitle.String()
		}
		detail := res.Dest
		if res.Err != nil {
			detail = res.Err.Error()
		}
		rows = append(rows, []string{
			filepath.Base(res.Video),
			outcome,
			strconv.Itoa(res.Candidates),
			subtitle,
			detail,
		})
	}
	return renderTable(
		[]string{"Video", "Outcome", "Found", "Subtitle", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}
