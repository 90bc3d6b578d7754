package commands

import (
	"context"
	"path/filepath"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/veedubyou/timbre/src/shared/config"
	"github.com/veedubyou/timbre/src/shared/config/envvar"
	"github.com/veedubyou/timbre/src/shared/lib/cerr"
	"github.com/veedubyou/timbre/src/shared/lib/executor"
)

// Dependencies are what the commands reach outside the process with
type Dependencies struct {
	Executor executor.Executor
}

type globalFlags struct {
	root       string
	workingDir string
	configFile string
	isolate    bool
	noProgress bool
	logLevel   string
}

// pipeline resolves the research layout under --root, then the config
// file and environment on top of it
func (g globalFlags) pipeline() (config.Pipeline, error) {
	root, err := filepath.Abs(g.root)
	if err != nil {
		return config.Pipeline{}, cerr.Field("root", g.root).Wrap(err).Error("Failed to resolve the research directory")
	}

	workingDir := g.workingDir
	if workingDir == "" {
		workingDir = filepath.Join(root, "wd")
	}

	pipeline, err := config.LoadPipeline(root, workingDir, g.configFile)
	if err != nil {
		return config.Pipeline{}, err
	}

	if g.isolate {
		pipeline.Preprocess.FailurePolicy = config.Isolate
		pipeline.Separate.FailurePolicy = config.Isolate
		pipeline.Postprocess.FailurePolicy = config.Isolate
		pipeline.MFCC.FailurePolicy = config.Isolate
		pipeline.Embedding.FailurePolicy = config.Isolate
	}

	return pipeline, nil
}

func NewRootCommand(deps Dependencies) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "timbre",
		Short: "Standardize choruses, isolate their vocals and extract timbre features",
		Long: `timbre runs the chorus processing stages on local directories.

Stages, in pipeline order:
  preprocess   resample the raw choruses to 44.1 kHz with a short fade
  separate     isolate the vocals of every chorus with demucs
  postprocess  mono, normalize, trim and fade the vocals at 22.05 and 44.1 kHz
  mfcc         one mean MFCC vector per 22.05 kHz vocal
  embed        OpenL3 embeddings per 44.1 kHz vocal

Every stage reads its defaults from the research layout under --root:
  choruses -> standardized -> separated -> final_stems_<rate> -> mfccs, embeddings_<size>

Settings can be overridden by a config file (--config) or by TIMBRE_
prefixed env vars using "__" for nesting, e.g.
  TIMBRE_POSTPROCESS__TRIM_DURATION=10 timbre postprocess`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.SetHandler(cli.New(cmd.ErrOrStderr()))

			level, err := log.ParseLevel(flags.logLevel)
			if err != nil {
				return cerr.Field("log_level", flags.logLevel).Wrap(err).Error("Unknown log level")
			}
			log.SetLevel(level)

			return nil
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.root, "root", ".", "research directory holding the stage directories")
	persistent.StringVar(&flags.workingDir, "working-dir", "", "scratch directory for the external models (default <root>/wd)")
	persistent.StringVar(&flags.configFile, "config", envvar.GetOrDefault(envvar.PIPELINE_CONFIG_PATH, ""), "pipeline config file (yaml, json or toml)")
	persistent.BoolVar(&flags.isolate, "isolate", false, "keep going when a file fails and print the failures at the end")
	persistent.BoolVar(&flags.noProgress, "no-progress", false, "don't draw progress bars")
	persistent.StringVar(&flags.logLevel, "log-level", envvar.GetOrDefault(envvar.LOG_LEVEL, "warn"), "debug, info, warn, error or fatal")

	rootCmd.AddCommand(
		newPreprocessCommand(flags),
		newSeparateCommand(flags, deps),
		newPostprocessCommand(flags),
		newMFCCCommand(flags),
		newEmbedCommand(flags, deps),
		newPipelineCommand(flags, deps),
	)

	return rootCmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
