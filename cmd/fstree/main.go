// Command fstree renders a directory tree, either as classic one-shot
// output or as an interactive terminal explorer.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/alexflint/go-arg"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hayeah/fstree/gitstatus"
	"github.com/hayeah/fstree/ignore"
	"github.com/hayeah/fstree/render"
	"github.com/hayeah/fstree/sortby"
	"github.com/hayeah/fstree/style"
	"github.com/hayeah/fstree/tree"
	"github.com/hayeah/fstree/tui"
)

// SharedArgs are the flags common to the classic view and the interactive
// explorer.
type SharedArgs struct {
	Path          string `arg:"positional" default:"." help:"directory to display"`
	All           bool   `arg:"-a,--all" help:"show hidden files"`
	Gitignore     bool   `arg:"-g,--gitignore" help:"respect .gitignore files"`
	GitStatus     bool   `arg:"-G,--git-status" help:"show git status markers"`
	Icons         bool   `arg:"--icons" help:"show file icons (requires a Nerd Font)"`
	Size          bool   `arg:"-s,--size" help:"show file sizes"`
	Permissions   bool   `arg:"-p,--permissions" help:"show permission bits"`
	Sort          string `arg:"--sort" default:"name" help:"sort criterion: name, size, modified, extension"`
	DirsFirst     bool   `arg:"--dirs-first" help:"list directories before files"`
	CaseSensitive bool   `arg:"--case-sensitive" help:"case-sensitive name sorting"`
	NaturalSort   bool   `arg:"--natural-sort" help:"natural sorting (file2 before file10)"`
	Reverse       bool   `arg:"-r,--reverse" help:"reverse the sort order"`
	DotfilesFirst bool   `arg:"--dotfiles-first" help:"list dotfiles and dotfolders first"`
}

// InteractiveCmd holds the flags of the interactive subcommand.
type InteractiveCmd struct {
	SharedArgs
	ExpandLevel int `arg:"--expand-level" default:"1" help:"initial depth to expand directories"`
}

// Args is the full command line: classic-view flags at the top level, plus
// the interactive subcommand.
type Args struct {
	SharedArgs
	Interactive *InteractiveCmd `arg:"subcommand:interactive" help:"start the interactive explorer"`

	Level      int    `arg:"-L,--level" default:"-1" help:"maximum depth to descend"`
	DirsOnly   bool   `arg:"-d,--dirs-only" help:"show directories only"`
	Color      string `arg:"--color" default:"auto" help:"colorize output: always, auto, never"`
	Hyperlinks bool   `arg:"--hyperlinks" help:"render file names as clickable hyperlinks"`
}

func (Args) Description() string {
	return "fstree: a minimalist directory tree viewer"
}

// Runner wires the components for one invocation.
type Runner struct {
	args Args
}

func main() {
	var args Args
	arg.MustParse(&args)

	runner := &Runner{args: args}
	if err := runner.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fstree: %v\n", err)
		os.Exit(1)
	}
}

// Run dispatches to classic or interactive mode. Configuration errors
// (unknown sort criterion, malformed style spec, bad ignore pattern) abort
// here, before any traversal.
func (r *Runner) Run() error {
	if r.args.Interactive != nil {
		return r.runInteractive(*r.args.Interactive)
	}
	return r.runView()
}

func (r *Runner) runView() error {
	if err := applyColorChoice(r.args.Color); err != nil {
		return err
	}

	cfg, err := r.buildConfig(r.args.SharedArgs)
	if err != nil {
		return err
	}
	cfg.MaxDepth = r.args.Level
	cfg.DirsOnly = r.args.DirsOnly

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	cfg.Logger = logger

	root, err := tree.NewBuilder(cfg).Build(r.args.Path)
	if err != nil {
		return err
	}

	renderer := render.New(render.Options{
		Icons:       r.args.Icons,
		Size:        r.args.Size,
		Permissions: r.args.Permissions,
		GitStatus:   r.args.GitStatus,
		Hyperlinks:  r.args.Hyperlinks,
	})
	return renderer.WriteTree(os.Stdout, root, r.args.Path)
}

func (r *Runner) runInteractive(cmd InteractiveCmd) error {
	cfg, err := r.buildConfig(cmd.SharedArgs)
	if err != nil {
		return err
	}
	if cmd.ExpandLevel < 1 {
		cmd.ExpandLevel = 1
	}
	cfg.MaxDepth = cmd.ExpandLevel
	// Traversal warnings must not draw over the alternate screen.
	cfg.Logger = zap.NewNop()

	builder := tree.NewBuilder(cfg)
	root, err := builder.Build(cmd.Path)
	if err != nil {
		return err
	}

	renderer := render.New(render.Options{
		Icons:       cmd.Icons,
		Size:        cmd.Size,
		Permissions: cmd.Permissions,
		GitStatus:   cmd.GitStatus,
	})
	session := tui.NewSession(root, builder, renderer, tui.Options{
		ExpandLevel: cmd.ExpandLevel,
		Editor:      editorCommand,
	})

	// The TUI draws on stderr so stdout stays clean for the selection.
	outcome, selected, err := tui.Run(session, os.Stderr)
	if err != nil {
		return err
	}
	if outcome == tui.OutcomeSelected {
		fmt.Println(selected)
	}
	return nil
}

// buildConfig assembles the traversal config shared by both modes.
func (r *Runner) buildConfig(shared SharedArgs) (tree.Config, error) {
	criterion, err := sortby.ParseCriterion(shared.Sort)
	if err != nil {
		return tree.Config{}, err
	}

	styles, err := style.Parse(os.Getenv("LS_COLORS"))
	if err != nil {
		return tree.Config{}, err
	}

	var matcher *ignore.Matcher
	if shared.Gitignore {
		matcher, err = ignore.Compile(shared.Path)
		if err != nil {
			return tree.Config{}, err
		}
	}

	var overlay *gitstatus.Overlay
	if shared.GitStatus {
		overlay, err = gitstatus.Load(shared.Path)
		if err != nil {
			return tree.Config{}, err
		}
	}

	return tree.Config{
		ShowHidden: shared.All,
		MaxDepth:   -1,
		Matcher:    matcher,
		Git:        overlay,
		Styles:     styles,
		Sort: sortby.Options{
			Criterion:     criterion,
			CaseSensitive: shared.CaseSensitive,
			Natural:       shared.NaturalSort,
			Reverse:       shared.Reverse,
			DirsFirst:     shared.DirsFirst,
			DotfilesFirst: shared.DotfilesFirst,
		},
	}, nil
}

// applyColorChoice overrides terminal color detection for classic output.
func applyColorChoice(choice string) error {
	switch choice {
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "", "auto":
		// Leave detection to the renderer.
	default:
		return fmt.Errorf("invalid --color value %q (want always, auto, or never)", choice)
	}
	return nil
}

// newLogger builds a console logger on stderr for traversal warnings.
func newLogger() (*zap.Logger, error) {
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.WarnLevel),
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// editorCommand resolves the user's editor for opening a file from the
// interactive session.
func editorCommand(path string) *exec.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		if runtime.GOOS == "windows" {
			editor = "notepad"
		} else {
			editor = "vim"
		}
	}
	return exec.Command(editor, path)
}
