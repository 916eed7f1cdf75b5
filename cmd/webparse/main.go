package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"webparse/internal/config"
	"webparse/internal/css"
	"webparse/internal/cursor"
	"webparse/internal/html"
	"webparse/pkg/webparse"
)

// Build-time variables set via ldflags.
var (
	version = "dev"
	commit  = "none"
)

// appEnv is shared between the Before hook and the commands.
type appEnv struct {
	cfg    config.Config
	log    *zap.Logger
	engine *webparse.Engine
	stdout io.Writer
}

type envKey struct{}

func envFromContext(ctx context.Context) *appEnv {
	if env, ok := ctx.Value(envKey{}).(*appEnv); ok {
		return env
	}
	return &appEnv{cfg: config.Default(), log: zap.NewNop(), stdout: os.Stdout}
}

// initializeAppContext loads configuration and prepares logging after the
// command line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error
	env := envFromContext(ctx)

	if env.cfg, err = config.Load(cmd.String("config")); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if level := cmd.String("log-level"); level != "" {
		env.cfg.Logging.ConsoleLogger.Level = level
		if err := env.cfg.Validate(); err != nil {
			return ctx, fmt.Errorf("bad --log-level: %w", err)
		}
	}
	if env.log, err = env.cfg.Logging.Prepare(); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.engine = webparse.New(env.cfg, env.log)

	env.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", version), zap.String("runtime", runtime.Version()))
	return ctx, nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) error {
	env := envFromContext(ctx)
	if env.log != nil {
		// stderr sync fails on some platforms, nothing useful to do about it
		_ = env.log.Sync()
	}
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)
	if env.log != nil {
		for _, e := range multierr.Errors(err) {
			env.log.Error("Failed", zap.Error(e))
		}
		errWasHandled = true
	}
}

func main() {
	env := &appEnv{cfg: config.Default(), stdout: os.Stdout}
	ctx, stop := signal.NotifyContext(context.WithValue(context.Background(), envKey{}, env), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "webparse",
		Usage:           "parse HTML documents and CSS stylesheets",
		Version:         version + " (" + runtime.Version() + ") : " + commit,
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.StringFlag{Name: "log-level", Usage: "console log level: none, normal or debug"},
		},
		Commands: []*cli.Command{
			{
				Name:      "html",
				Usage:     "Parses HTML files and prints their node trees",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output format: tree or html"},
				},
				Action: runHTML,
			},
			{
				Name:      "css",
				Usage:     "Parses CSS files and prints their stylesheets",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output format: css or yaml"},
				},
				Action: runCSS,
			},
			{
				Name:      "match",
				Usage:     "Lists the rules of a stylesheet matching each element of a document",
				ArgsUsage: "HTML_FILE CSS_FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "stats", Usage: "print processing statistics to stderr"},
				},
				Action: runMatch,
			},
			{
				Name:      "query",
				Usage:     "Prints the elements of a document matching a CSS selector",
				ArgsUsage: "HTML_FILE SELECTOR",
				Action:    runQuery,
			},
		},
	}

	err := app.Run(ctx, os.Args)
	stop()
	if err != nil {
		if !errWasHandled {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runHTML(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	if cmd.NArg() == 0 {
		return errors.New("no input files")
	}
	format := env.cfg.Output.HTMLFormat
	if cmd.IsSet("format") {
		format = cmd.String("format")
	}
	if format != config.FormatTree && format != config.FormatHTML {
		return fmt.Errorf("invalid format %q (valid: %s, %s)", format, config.FormatTree, config.FormatHTML)
	}

	files := cmd.Args().Slice()
	for _, path := range files {
		text, er := readInput(path)
		if er != nil {
			err = multierr.Append(err, er)
			continue
		}
		root, er := env.engine.ParseHTML(text)
		if er != nil {
			err = multierr.Append(err, describeError(path, text, er))
			continue
		}
		printHeader(env.stdout, path, len(files))
		if format == config.FormatHTML {
			er = html.Render(env.stdout, root)
			if er == nil {
				_, er = fmt.Fprintln(env.stdout)
			}
		} else {
			er = html.Fprint(env.stdout, root)
		}
		if er != nil {
			return fmt.Errorf("failed to write output: %w", er)
		}
	}
	return err
}

func runCSS(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)
	if cmd.NArg() == 0 {
		return errors.New("no input files")
	}
	format := env.cfg.Output.CSSFormat
	if cmd.IsSet("format") {
		format = cmd.String("format")
	}
	if format != config.FormatCSS && format != config.FormatYAML {
		return fmt.Errorf("invalid format %q (valid: %s, %s)", format, config.FormatCSS, config.FormatYAML)
	}

	files := cmd.Args().Slice()
	for _, path := range files {
		text, er := readInput(path)
		if er != nil {
			err = multierr.Append(err, er)
			continue
		}
		sheet, er := env.engine.ParseCSS(text)
		if er != nil {
			err = multierr.Append(err, describeError(path, text, er))
			continue
		}
		printHeader(env.stdout, path, len(files))
		if format == config.FormatYAML {
			var out []byte
			if out, er = css.MarshalYAML(sheet); er == nil {
				_, er = env.stdout.Write(out)
			}
		} else {
			er = css.Fprint(env.stdout, sheet)
		}
		if er != nil {
			return fmt.Errorf("failed to write output: %w", er)
		}
	}
	return err
}

func runMatch(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.NArg() != 2 {
		return errors.New("expected HTML_FILE and CSS_FILE")
	}
	htmlPath, cssPath := cmd.Args().Get(0), cmd.Args().Get(1)

	htmlText, err := readInput(htmlPath)
	if err != nil {
		return err
	}
	cssText, err := readInput(cssPath)
	if err != nil {
		return err
	}

	// parse separately so failures point at the right file
	root, err := env.engine.ParseHTML(htmlText)
	if err != nil {
		return describeError(htmlPath, htmlText, err)
	}
	sheet, err := env.engine.ParseCSS(cssText)
	if err != nil {
		return describeError(cssPath, cssText, err)
	}
	result := env.engine.MatchParsed(root, sheet)

	for _, m := range result.Matches {
		fmt.Fprintf(env.stdout, "%s\n", describeElement(m.Element))
		for _, rule := range m.Rules {
			fmt.Fprintf(env.stdout, "  %s %s (rule %d)\n", rule.Specificity, rule.Selector, rule.SourceOrder+1)
		}
	}

	if cmd.Bool("stats") {
		st := result.ProcessingStats
		fmt.Fprintf(os.Stderr, "\nProcessing Statistics:\n")
		fmt.Fprintf(os.Stderr, "  HTML elements parsed: %d\n", st.HTMLElementsParsed)
		fmt.Fprintf(os.Stderr, "  CSS rules parsed: %d\n", st.CSSRulesParsed)
		fmt.Fprintf(os.Stderr, "  Elements matched: %d\n", st.ElementsMatched)
		fmt.Fprintf(os.Stderr, "  Selectors matched: %d\n", st.SelectorsMatched)
		fmt.Fprintf(os.Stderr, "  Processing time: %v\n", st.ProcessingTime)
	}
	return nil
}

func runQuery(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.NArg() != 2 {
		return errors.New("expected HTML_FILE and SELECTOR")
	}
	path, selector := cmd.Args().Get(0), cmd.Args().Get(1)

	text, err := readInput(path)
	if err != nil {
		return err
	}
	root, err := env.engine.ParseHTML(text)
	if err != nil {
		return describeError(path, text, err)
	}

	elements, err := html.NewDocument(root).Query(selector)
	if err != nil {
		return err
	}
	for _, el := range elements {
		fmt.Fprintln(env.stdout, describeElement(el))
	}
	env.log.Debug("Query finished", zap.String("selector", selector), zap.Int("matches", len(elements)))
	return nil
}

// readInput reads a file, or standard input when path is "-".
func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// describeError prefixes parse errors with file:line:col.
func describeError(path, text string, err error) error {
	var perr *cursor.Error
	if !errors.As(err, &perr) {
		return fmt.Errorf("%s: %w", path, err)
	}
	line, col, _ := perr.Position(text)
	return fmt.Errorf("%s:%d:%d: %w", path, line, col, err)
}

func describeElement(el *html.Element) string {
	var sb strings.Builder
	sb.WriteString("<" + el.TagName)
	if id := el.ID(); id != "" {
		sb.WriteString("#" + id)
	}
	for _, class := range el.Classes() {
		sb.WriteString("." + class)
	}
	sb.WriteString(">")
	return sb.String()
}

func printHeader(w io.Writer, path string, files int) {
	if files > 1 {
		fmt.Fprintf(w, "==> %s <==\n", path)
	}
}
