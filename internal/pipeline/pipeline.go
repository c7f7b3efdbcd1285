package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"subfetch/internal/config"
	"subfetch/internal/history"
	"subfetch/internal/logging"
	"subfetch/internal/query"
	"subfetch/internal/release"
	"subfetch/internal/services"
	"subfetch/internal/subtitles"
	"subfetch/internal/subtitles/opensubtitles"
	"subfetch/internal/video"
)

const logoutTimeout = 10 * time.Second

// Recorder persists per-video decisions. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, d history.Decision) (int64, error)
}

// Options wires a Pipeline.
type Options struct {
	Config     *config.Config
	Catalog    Catalog
	Selector   Selector
	History    Recorder
	HTTPClient *http.Client
	Logger     *slog.Logger
	// Infer overrides filename inference, mainly for tests.
	Infer release.Func
}

// Pipeline fingerprints a batch of videos, searches the catalog, selects a
// subtitle per video, and downloads it next to the video.
type Pipeline struct {
	cfg      *config.Config
	catalog  Catalog
	selector Selector
	history  Recorder
	client   *http.Client
	logger   *slog.Logger
	infer    release.Func
}

// New validates opts and returns a Pipeline.
func New(opts Options) (*Pipeline, error) {
	if opts.Config == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "config is required", nil)
	}
	if opts.Catalog == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "catalog is required", nil)
	}
	selector := opts.Selector
	if selector == nil {
		selector = NewAutoSelector(nil)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Config.RequestTimeout()}
	}
	return &Pipeline{
		cfg:      opts.Config,
		catalog:  opts.Catalog,
		selector: selector,
		history:  opts.History,
		client:   client,
		logger:   logging.NewComponentLogger(opts.Logger, "pipeline"),
		infer:    opts.Infer,
	}, nil
}

// Run processes paths in order. Only a failed login returns an error; every
// per-file problem is reported on its Result. A user quit ends the batch early
// and sets Summary.Quit.
func (p *Pipeline) Run(ctx context.Context, paths []string) (Summary, error) {
	summary := Summary{RunID: uuid.NewString(), Results: make([]Result, len(paths))}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("run started", logging.Int("videos", len(paths)))

	files := p.prepare(ctx, paths, summary.Results)

	pending := make([]int, 0, len(paths))
	requests := make(map[int][]query.Request, len(paths))
	for i, f := range files {
		if f == nil {
			continue
		}
		if !p.cfg.Subtitles.Overwrite && f.SubtitleExists(p.cfg.Subtitles.SubtitleExtensions) {
			summary.Results[i].Outcome = OutcomeSkippedExisting
			continue
		}
		reqs := query.Build(f, p.cfg.Subtitles.Language)
		if len(reqs) == 0 {
			summary.Results[i].Outcome = OutcomeNothingToSearch
			continue
		}
		requests[i] = reqs
		pending = append(pending, i)
	}

	if len(pending) > 0 {
		if err := p.catalog.Login(ctx); err != nil {
			logger.Error("catalog login failed", logging.Error(err))
			return summary, fmt.Errorf("start session: %w", err)
		}
		defer p.logout(ctx, logger)
	}

	for _, i := range pending {
		if err := ctx.Err(); err != nil {
			p.recordAll(ctx, summary, files)
			return summary, err
		}
		err := p.process(ctx, files[i], requests[i], &summary.Results[i])
		if errors.Is(err, ErrQuit) {
			summary.Quit = true
			break
		}
		if err != nil {
			p.recordAll(ctx, summary, files)
			return summary, err
		}
	}

	p.recordAll(ctx, summary, files)
	logger.Info("run finished",
		logging.Int("downloaded", summary.Count(OutcomeDownloaded)),
		logging.Int("failed", summary.Count(OutcomeFailed)),
		logging.Bool("quit", summary.Quit),
	)
	return summary, nil
}

// prepare builds video.File values in parallel. Results keep input order.
func (p *Pipeline) prepare(ctx context.Context, paths []string, results []Result) []*video.File {
	files := make([]*video.File, len(paths))
	opts := video.Options{Subfolder: p.cfg.Subtitles.Subfolder, Infer: p.infer}

	workers := p.cfg.Pipeline.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		results[i].Video = path
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i].Outcome = OutcomeFailed
				results[i].Err = ctx.Err()
				return nil
			}
			f, err := video.New(path, opts)
			if err != nil {
				results[i].Outcome = OutcomeFailed
				results[i].Err = services.Wrap(services.ErrNotFound, "prepare", "stat", path, err)
				return nil
			}
			files[i] = f
			results[i].Video = f.Path
			results[i].Fingerprint = f.Fingerprint
			return nil
		})
	}
	_ = g.Wait()
	return files
}

// process searches, selects, and downloads for one file, filling res.
// Only ErrQuit and context cancellation are returned.
func (p *Pipeline) process(ctx context.Context, f *video.File, reqs []query.Request, res *Result) error {
	ctx = services.WithVideo(ctx, f.Name)
	searchCtx := services.WithStage(ctx, "search")
	logger := logging.WithContext(searchCtx, p.logger)

	var candidates []subtitles.Candidate
	for _, req := range reqs {
		found, err := p.catalog.Search(searchCtx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				res.Outcome = OutcomeFailed
				res.Err = ctxErr
				return ctxErr
			}
			if errors.Is(err, opensubtitles.ErrQueryFailed) {
				logger.Warn("query failed, continuing with remaining requests",
					logging.String(logging.FieldRequestKind, string(req.Kind)),
					logging.Error(err),
				)
				continue
			}
			res.Outcome = OutcomeFailed
			res.Err = err
			return nil
		}
		logger.Debug("query returned",
			logging.String(logging.FieldRequestKind, string(req.Kind)),
			logging.Int("candidates", len(found)),
		)
		candidates = append(candidates, found...)
	}
	res.Candidates = len(candidates)
	if len(candidates) == 0 {
		res.Outcome = OutcomeNoCandidates
		logger.Info("no subtitles found", logging.Args(logging.OutcomeAttrs(string(res.Outcome), "empty results")...)...)
		return nil
	}

	chosen, ok, err := p.selector.Select(ctx, f, candidates)
	switch {
	case errors.Is(err, ErrQuit):
		res.Outcome = OutcomeSkippedByUser
		return ErrQuit
	case errors.Is(err, ErrSkip):
		res.Outcome = OutcomeSkippedByUser
		return nil
	case err != nil:
		res.Outcome = OutcomeFailed
		res.Err = err
		return nil
	case !ok:
		res.Outcome = OutcomeNoMatch
		logger.Info("no candidate matched", logging.Args(logging.OutcomeAttrs(string(res.Outcome), "below cutoff")...)...)
		return nil
	}
	res.Subtitle = chosen
	res.HasSubtitle = true

	downloadCtx := services.WithStage(ctx, "download")
	file := subtitles.File{
		Candidate: chosen,
		Dir:       f.SubDir,
		BaseName:  f.Name,
		LockDir:   p.cfg.LockDir(),
	}
	dest, err := file.Download(downloadCtx, p.client)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		logging.WithContext(downloadCtx, p.logger).Warn("download failed",
			logging.String("subtitle", chosen.String()),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return nil
	}
	res.Outcome = OutcomeDownloaded
	res.Dest = dest
	logging.WithContext(downloadCtx, p.logger).Info("saved subtitle",
		logging.String("subtitle", chosen.String()),
		logging.String("matched_by", string(chosen.MatchedBy)),
		logging.String(logging.FieldFingerprint, f.Fingerprint),
		logging.String("dest", dest),
	)
	return nil
}

func (p *Pipeline) logout(ctx context.Context, logger *slog.Logger) {
	logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()
	if err := p.catalog.Logout(logoutCtx); err != nil {
		logger.Warn("catalog logout failed", logging.Error(err))
	}
}

// recordAll writes every decided result to history. Failures are logged only.
func (p *Pipeline) recordAll(ctx context.Context, summary Summary, files []*video.File) {
	if p.history == nil {
		return
	}
	recordCtx := context.WithoutCancel(ctx)
	for i, res := range summary.Results {
		if res.Outcome == "" {
			continue
		}
		d := history.Decision{
			RunID:       summary.RunID,
			VideoPath:   res.Video,
			Fingerprint: res.Fingerprint,
			Outcome:     string(res.Outcome),
			DestPath:    res.Dest,
		}
		if res.HasSubtitle {
			d.SubtitleFile = res.Subtitle.FileName
			d.MatchedBy = string(res.Subtitle.MatchedBy)
			d.DownloadCount = res.Subtitle.DownloadCount
		}
		if res.Err != nil {
			d.Error = res.Err.Error()
		}
		if _, err := p.history.Record(recordCtx, d); err != nil {
			name := res.Video
			if files[i] != nil {
				name = files[i].Name
			}
			p.logger.Warn("history record failed", logging.String(logging.FieldVideo, name), logging.Error(err))
		}
	}
}
