package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spiffcs/contribs/config"
	"github.com/spiffcs/contribs/internal/cache"
	"github.com/spiffcs/contribs/internal/format"
	"github.com/spiffcs/contribs/internal/log"
	"github.com/spiffcs/contribs/internal/output"
	"github.com/spiffcs/contribs/internal/source"
	"github.com/spiffcs/contribs/internal/tui"
)

// errNoSources is returned when neither flags nor config name anything to load.
var errNoSources = errors.New("no contributor source: pass --file or --repo, or set repos in the config file")

// NewCmdSummary creates the summary command.
func NewCmdSummary(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a capped contributor list",
		Long: `Loads contributors and prints the first --max of them, collapsing the
rest into a single "N others" row.`,
		Example: `  contribs summary --repo spiffcs/contribs
  contribs summary --file contributors.yaml --max 5 -o markdown`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, opts)
		},
	}

	addSummaryFlags(cmd, opts)

	return cmd
}

// addSummaryFlags adds the source, display, and output flags shared by summary and notify.
func addSummaryFlags(cmd *cobra.Command, opts *Options) {
	addSourceFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown, text)")
}

func addSourceFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringArrayVarP(&opts.Files, "file", "f", nil, "Read contributors from a JSON or YAML file (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Repos, "repo", "r", nil, "Fetch contributors of a GitHub repository, owner/name (repeatable)")
	cmd.Flags().IntVarP(&opts.MaxShown, "max", "m", opts.MaxShown, "Number of contributors to name before collapsing the rest")
	cmd.Flags().StringVar(&opts.LabelSource, "label", "", "Label source (name, unregistered_name)")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", opts.Workers, "Number of repositories fetched concurrently")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Bypass the contributor list cache")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	cmd.Flags().Var(newAutoBool(&opts.TUI), "tui", "Show the progress display: true, false or auto")
	cmd.Flags().Lookup("tui").NoOptDefVal = "true"
}

func runSummary(cmd *cobra.Command, opts *Options) error {
	if cmd.Flags().Changed("max") {
		opts.maxShownSet = true
	}

	rt := setupRuntime(cmd.Context(), opts, tui.SummaryTasks())
	rt.startTUI()
	defer rt.close()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	f, err := output.ParseFormat(resolveFormat(opts, cfg))
	if err != nil {
		return err
	}

	rows, subject, err := loadRows(rt.ctx, cfg, opts, rt)
	if err := rt.cancelled(); err != nil {
		return err
	}
	if err != nil {
		return err
	}

	if err := rt.close(); errors.Is(err, tui.ErrCancelled) {
		return err
	}

	return output.NewFormatter(f, subject).Format(rows, cmd.OutOrStdout())
}

// resolveFormat prefers the flag over the config file default.
func resolveFormat(opts *Options, cfg *config.Config) string {
	if opts.Format != "" {
		return opts.Format
	}
	return cfg.DefaultFormat
}

// resolveMaxShown prefers an explicit --max over the config file.
func resolveMaxShown(opts *Options, cfg *config.Config) int {
	if opts.maxShownSet {
		return opts.MaxShown
	}
	return cfg.GetMaxShown()
}

func resolveLabelSource(opts *Options, cfg *config.Config) (format.LabelSource, error) {
	if opts.LabelSource != "" {
		return format.ParseLabelSource(opts.LabelSource)
	}
	return cfg.GetLabelSource()
}

// loadPlan is the set of sources one run reads from.
type loadPlan struct {
	sources []source.Source
	subject string
	github  *source.GitHubClient
}

// buildPlan turns --file and --repo (or the configured repos) into sources.
func buildPlan(ctx context.Context, cfg *config.Config, opts *Options) (*loadPlan, error) {
	repos := opts.Repos
	if len(opts.Files) == 0 && len(repos) == 0 {
		repos = cfg.Repos
	}
	if len(opts.Files) == 0 && len(repos) == 0 {
		return nil, errNoSources
	}

	plan := &loadPlan{}
	for _, path := range opts.Files {
		plan.sources = append(plan.sources, source.NewFileSource(path))
	}

	if len(repos) > 0 {
		client, err := source.NewGitHubClient(ctx, cfg.GetGitHubToken())
		if err != nil {
			return nil, err
		}
		plan.github = client

		repoOpts := []source.RepoOption{source.WithExclude(cfg.IsLoginExcluded)}
		if !opts.NoCache {
			c, err := cache.NewCache()
			if err != nil {
				log.Warn("contributor cache unavailable", "error", err)
			} else {
				repoOpts = append(repoOpts, source.WithCache(c))
			}
		}

		for _, r := range repos {
			src, err := client.Repo(r, repoOpts...)
			if err != nil {
				return nil, err
			}
			plan.sources = append(plan.sources, src)
		}
	}

	names := make([]string, 0, len(plan.sources))
	for _, s := range plan.sources {
		names = append(names, s.Name())
	}
	plan.subject = strings.Join(names, ", ")

	return plan, nil
}

// loadRows loads every configured source and applies the display cap.
// It returns the rows and the subject the contributors belong to.
func loadRows(ctx context.Context, cfg *config.Config, opts *Options, rt *runtime) ([]format.DisplayRow, string, error) {
	maxShown := resolveMaxShown(opts, cfg)
	labelSrc, err := resolveLabelSource(opts, cfg)
	if err != nil {
		return nil, "", err
	}

	plan, err := buildPlan(ctx, cfg, opts)
	if err != nil {
		return nil, "", err
	}

	rt.sendTaskEvent(tui.TaskLoad, tui.StatusRunning)
	multi := source.NewMultiSource(plan.sources,
		source.WithWorkers(opts.Workers),
		source.WithProgress(func(name string, count int, done, total int) {
			log.Debug("loaded contributors", "source", name, "count", count)
			if !rt.useTUI {
				log.Progress("Loading contributors... %d/%d sources", done, total)
			}
			rt.sendTaskEvent(tui.TaskLoad, tui.StatusRunning,
				tui.WithMessage(fmt.Sprintf("%d/%d sources", done, total)),
				tui.WithProgress(float64(done)/float64(total)))
		}),
	)

	contributors, err := multi.Contributors(ctx)
	if err != nil {
		log.ProgressClear()
		if errors.Is(err, source.ErrRateLimited) && plan.github != nil {
			_, _, resetAt, _ := plan.github.RateLimitStatus()
			rt.sendEvent(tui.RateLimitEvent{Limited: true, ResetAt: resetAt})
		}
		rt.sendTaskEvent(tui.TaskLoad, tui.StatusError, tui.WithError(err))
		return nil, "", err
	}
	log.ProgressDone()
	rt.sendTaskEvent(tui.TaskLoad, tui.StatusComplete, tui.WithCount(len(contributors)))
	log.Debug("merged contributors", "count", len(contributors), "sources", len(plan.sources))

	rt.sendTaskEvent(tui.TaskFormat, tui.StatusRunning)
	rows, err := format.Contributors(contributors, maxShown, format.WithLabelSource(labelSrc))
	if err != nil {
		rt.sendTaskEvent(tui.TaskFormat, tui.StatusError, tui.WithError(err))
		return nil, "", err
	}
	shown, collapsed := format.CountRows(rows)
	rt.sendTaskEvent(tui.TaskFormat, tui.StatusComplete,
		tui.WithMessage(fmt.Sprintf("%d shown, %d collapsed", shown, collapsed)))

	return rows, plan.subject, nil
}
