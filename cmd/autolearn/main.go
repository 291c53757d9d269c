package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/hscells/autolearn"
	"github.com/hscells/autolearn/artifact"
	"github.com/hscells/autolearn/config"
	"github.com/hscells/autolearn/dataset"
	"github.com/hscells/autolearn/logger"
	"github.com/hscells/autolearn/output"
	"github.com/hscells/autolearn/pipeline"
	"github.com/hscells/autolearn/predictor"
	"github.com/hscells/autolearn/provider/native"
	"github.com/hscells/autolearn/server"
	"github.com/hscells/autolearn/session"
	"github.com/hscells/autolearn/trainer"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	name    = "autolearn"
	version = "19.Oct.2026"
	author  = "Harry Scells"
)

type trainCmd struct {
	Data   string `help:"csv file to train on (default: the saved source data)"`
	Task   string `arg:"required" help:"regression, classification or clustering"`
	Target string `help:"target column of supervised tasks"`
	Format string `default:"csv" help:"leaderboard format: json, csv or yaml"`
	Report string `help:"file to write the leaderboard and experiment configuration to, as yaml"`
}

type predictCmd struct {
	Data string `help:"csv file to score (default: the saved source data)"`
	Out  string `help:"file to write predictions to (default: the saved predictions), or - for stdout"`
}

type exportCmd struct {
	Out string `arg:"required" help:"file to write the encoded model to"`
}

type serveCmd struct {
	Addr  string        `help:"address to listen on (default: server.addr)"`
	Grace time.Duration `default:"30s" help:"time to wait for requests in flight on shutdown"`
}

type args struct {
	Config   string `help:"properties file to configure autolearn with"`
	Scope    string `default:"default" help:"scope of the session and artifact"`
	LogLevel string `arg:"--log-level" help:"override log.level"`

	Train   *trainCmd   `arg:"subcommand:train" help:"train and select a model"`
	Predict *predictCmd `arg:"subcommand:predict" help:"score data with the selected model"`
	Export  *exportCmd  `arg:"subcommand:export" help:"export the selected model"`
	Serve   *serveCmd   `arg:"subcommand:serve" help:"serve experiments over http"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf(`%s
@ %s
# %s`, name, author, version)
}

// app holds the components every command is built from.
type app struct {
	config    config.Config
	log       *zap.Logger
	store     *artifact.Store
	gateway   dataset.Gateway
	pipeline  pipeline.Pipeline
	predictor *predictor.Predictor
	// stdout receives results; logs and progress go to stderr, except when serving.
	stdout    io.Writer
}

func newApp(args args, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(args.Config)
	if err != nil {
		return nil, err
	}
	if len(args.LogLevel) > 0 {
		cfg.LogLevel = args.LogLevel
	}
	var sinks []logger.Option
	if args.Serve == nil {
		sinks = append(sinks, logger.Output(stderr))
	}
	log, err := logger.New(cfg.LogLevel, sinks...)
	if err != nil {
		return nil, err
	}
	logger.Estimators(log)

	store := artifact.NewStore(cfg.ModelsDir, artifact.Slot(cfg.Slot), artifact.Logger(log))
	p := native.New(
		native.Seed(cfg.Seed),
		native.Holdout(cfg.Holdout),
		native.Clusters(cfg.Clusters),
		native.Logger(log))
	t := trainer.New(p, store,
		trainer.ClusteringModels(cfg.Clustering()...),
		trainer.Progress(stderr),
		trainer.Logger(log))
	pred := predictor.New(store, p, p, predictor.Logger(log))
	gateway := dataset.NewGateway(cfg.DataDir, cfg.Source, cfg.Predictions, log)

	return &app{
		config:    cfg,
		log:       log,
		store:     store,
		gateway:   gateway,
		predictor: pred,
		stdout:    stdout,
		pipeline: pipeline.NewPipeline(session.NewRegistry(cfg.MaxSessions), t, pred,
			pipeline.Gateway(gateway),
			pipeline.ConfigOutput(output.YamlConfigFormatter),
			pipeline.Logger(log)),
	}, nil
}

// load reads a dataset from a path, or the saved source data.
func (a *app) load(path string) (*dataset.Dataset, error) {
	if len(path) == 0 {
		return a.gateway.LoadSource()
	}
	return a.gateway.Load(path)
}

func (a *app) train(scope string, cmd *trainCmd) error {
	task, err := autolearn.ParseTaskFamily(cmd.Task)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cmd.Format)
	if err != nil {
		return err
	}
	data, err := a.load(cmd.Data)
	if err != nil {
		return err
	}
	if len(cmd.Data) > 0 {
		if err := a.gateway.SaveSource(data); err != nil {
			return err
		}
	}

	if _, err := a.pipeline.Begin(scope, data, task, cmd.Target); err != nil {
		return err
	}
	result, err := a.pipeline.Train(scope)
	if err != nil {
		return err
	}

	outcome := result.Report.Outcome
	leaderboard, err := output.Leaderboard(format)(outcome.Leaderboard, outcome.WinnerName)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, leaderboard)

	if len(cmd.Report) > 0 {
		report, err := output.YamlLeaderboardFormatter(outcome.Leaderboard, outcome.WinnerName)
		if err != nil {
			return err
		}
		for _, c := range result.Configs {
			report += "---\n" + c
		}
		if err := os.WriteFile(cmd.Report, []byte(report), 0644); err != nil {
			return err
		}
	}
	a.log.Info("selected model", zap.String("scope", scope), zap.String("winner", outcome.WinnerName), zap.String("run", result.Report.RunID))
	return nil
}

// predict scores data in a fresh process: the task family is read from the artifact.
func (a *app) predict(scope string, cmd *predictCmd) error {
	store, err := a.store.Scope(scope)
	if err != nil {
		return err
	}
	info, err := store.Info()
	if err != nil {
		return err
	}
	pred, err := a.predictor.Scope(scope)
	if err != nil {
		return err
	}
	data, err := a.load(cmd.Data)
	if err != nil {
		return err
	}
	predictions, err := pred.Predict(info.Task, data)
	if err != nil {
		return err
	}

	switch cmd.Out {
	case "-":
		return predictions.Write(a.stdout)
	case "":
		return a.pipeline.SavePredictions(predictions)
	}
	return a.gateway.Save(cmd.Out, predictions)
}

func (a *app) export(scope string, cmd *exportCmd) error {
	store, err := a.store.Scope(scope)
	if err != nil {
		return err
	}
	f, err := os.Create(cmd.Out)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := store.Export(f)
	if err != nil {
		return err
	}
	a.log.Info("exported model", zap.String("scope", scope), zap.String("path", cmd.Out), zap.Int64("bytes", n))
	return f.Close()
}

func (a *app) serve(cmd *serveCmd) error {
	addr := cmd.Addr
	if len(addr) == 0 {
		addr = a.config.Addr
	}
	s := server.New(a.pipeline, a.store, a.log)

	errc := make(chan error, 1)
	go func() {
		a.log.Info("serving", zap.String("addr", addr))
		errc <- s.Start(addr)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-sig:
		a.log.Info("shutting down")
		return s.Shutdown(cmd.Grace)
	}
}

func main() {
	var args args
	p := arg.MustParse(&args)
	if p.Subcommand() == nil {
		p.Fail("missing command: train, predict, export or serve")
	}

	a, err := newApp(args, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.log.Sync()

	switch {
	case args.Train != nil:
		err = a.train(args.Scope, args.Train)
	case args.Predict != nil:
		err = a.predict(args.Scope, args.Predict)
	case args.Export != nil:
		err = a.export(args.Scope, args.Export)
	case args.Serve != nil:
		err = a.serve(args.Serve)
	}
	if err != nil {
		a.log.Error("command failed", zap.Error(errors.WithStack(err)))
		_ = a.log.Sync()
		os.Exit(1)
	}
}
