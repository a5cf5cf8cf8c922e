package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-liveness/args"
	"github.com/nvr-ai/go-liveness/benchmark"
	"github.com/nvr-ai/go-liveness/config"
	"github.com/nvr-ai/go-liveness/engine"
	"github.com/nvr-ai/go-liveness/license"
	"github.com/nvr-ai/go-liveness/liveness"
	"github.com/nvr-ai/go-liveness/logger"
	"github.com/nvr-ai/go-liveness/video"
)

// app holds the dependencies shared by the commands.
type app struct {
	stdout    io.Writer
	stderr    io.Writer
	newEngine func() engine.Engine
	lookup    func(string) (string, bool)
}

var (
	livenessOpts = []args.Option{
		args.OptImage, args.OptAssets, args.OptTokenFile, args.OptTokenData,
		args.OptParallel, args.OptConfig, args.OptLogLevel,
	}
	benchmarkOpts = []args.Option{
		args.OptImage, args.OptAssetsRequired, args.OptLoops, args.OptParallelOn,
		args.OptTokenFile, args.OptTokenData, args.OptConfig, args.OptLogLevel,
	}
	runtimeKeyOpts = []args.Option{
		args.OptAssetsRequired, args.OptJSON, args.OptHostType, args.OptLogLevel,
	}
	deepfakeOpts = []args.Option{
		args.OptVideo, args.OptAssets, args.OptTokenFile, args.OptTokenData,
		args.OptOutput, args.OptWindow, args.OptConfig, args.OptLogLevel,
	}
)

// pairs returns a cobra handler receiving the raw "--key value" pairs of the command.
func (a *app) pairs(name string, opts []args.Option, fn func(cmd *cobra.Command, parsed args.Args, log *logrus.Entry) error) func(*cobra.Command, []string) error {
	usage := args.Usage(name, opts)
	return func(cmd *cobra.Command, argv []string) error {
		for _, v := range argv {
			if v == "--help" || v == "-h" {
				fmt.Fprint(a.stdout, usage)
				return nil
			}
		}

		parsed, err := args.Parse(argv)
		if err != nil {
			return classify(err, usage)
		}

		log, closeLog, err := logger.Setup(logger.FromEnv(logger.Options{Level: parsed.Get(args.KeyLogLevel), Output: a.stderr}, a.lookup))
		if err != nil {
			return classify(err, usage)
		}
		defer closeLog()
		log = log.WithField("command", name)
		log.WithField("args", parsed.String()).Debug("starting")

		if err := fn(cmd, parsed, log); err != nil {
			return classify(err, usage)
		}
		return nil
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fld",
		Short: "Face liveness detection client",
		Long: `Client of the FaceLivenessDetection engine.
Without subcommand, checks the liveness of the face in --image.`,
		Version:            version,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE:               a.pairs("fld", livenessOpts, a.runLiveness),
	}
	root.AddCommand(
		a.livenessCmd(),
		a.benchmarkCmd(),
		a.runtimeKeyCmd(),
		a.deepfakeCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) subCmd(use, short string, opts []args.Option, fn func(*cobra.Command, args.Args, *logrus.Entry) error) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE:               a.pairs(use, opts, fn),
	}
}

const livenessName = "liveness"

func (a *app) livenessCmd() *cobra.Command {
	return a.subCmd(livenessName, "Check the liveness of the face in an image", livenessOpts, a.runLiveness)
}

func (a *app) runLiveness(cmd *cobra.Command, parsed args.Args, log *logrus.Entry) error {
	opts, err := liveness.OptionsFromArgs(parsed, config.Default(), a.lookup)
	if err != nil {
		return err
	}
	opts.Log = log
	return liveness.Run(cmd.Context(), a.newEngine(), opts, a.stdout)
}

func (a *app) benchmarkCmd() *cobra.Command {
	return a.subCmd("benchmark", "Measure the processing rate on an image", benchmarkOpts, a.runBenchmark)
}

func (a *app) runBenchmark(cmd *cobra.Command, parsed args.Args, log *logrus.Entry) error {
	opts, err := benchmark.OptionsFromArgs(parsed, config.Default(), a.lookup)
	if err != nil {
		return err
	}
	opts.Log = log

	report, err := benchmark.Run(cmd.Context(), a.newEngine(), opts)
	if err != nil {
		return err
	}

	if report.LastResult != "" {
		fmt.Fprintf(a.stdout, "%s%s\n", liveness.ResultPrefix, report.LastResult)
	}
	fmt.Fprintf(a.stdout, "*** elapsedTimeInMillis: %f, estimatedFps: %f ***\n", report.ElapsedMillis(), report.FPS)

	if parsed.Has(args.KeyOutput) {
		return report.Save(parsed.Path(args.KeyOutput))
	}
	return nil
}

func (a *app) runtimeKeyCmd() *cobra.Command {
	return a.subCmd("runtime-key", "Request a runtime license key for this host", runtimeKeyOpts, a.runRuntimeKey)
}

func (a *app) runRuntimeKey(_ *cobra.Command, parsed args.Args, log *logrus.Entry) error {
	opts, err := license.OptionsFromArgs(parsed)
	if err != nil {
		return err
	}
	key, err := license.RequestRuntimeKey(a.newEngine(), opts, log)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, key)
	return nil
}

func (a *app) deepfakeCmd() *cobra.Command {
	return a.subCmd("deepfake", "Detect deepfakes frame by frame in a video", deepfakeOpts, a.runDeepfake)
}

func (a *app) runDeepfake(cmd *cobra.Command, parsed args.Args, log *logrus.Entry) error {
	opts, err := video.OptionsFromArgs(parsed, config.DeepfakeDefault(), a.lookup)
	if err != nil {
		return err
	}
	opts.Log = log

	summary, err := video.Run(cmd.Context(), a.newEngine(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "frames: %d, with face: %d, deepfake: %d, output: %s\n",
		summary.Frames, summary.FramesWithFace, summary.DeepfakeFrames, summary.Output)
	return nil
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and whether the native engine is linked",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "fld %s (engine linked: %t)\n", version, engine.Linked())
		},
	}
}
