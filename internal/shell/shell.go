// Package shell provides the interactive REPL for lloyd.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cast"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/export"
	"github.com/hupe1980/lloyd/player"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// Shell is the interactive command-line interface.
type Shell struct {
	session  *lloyd.Session
	exporter *export.Exporter
	out      io.Writer
	delay    time.Duration
	points   int
	history  string
}

// Config holds shell configuration.
type Config struct {
	HistoryFile string
	// Delay is the time per iteration of the play command.
	Delay time.Duration
	// Points is the default size of generated datasets.
	Points int
	// Exporter backs the export command. Nil disables it.
	Exporter *export.Exporter
	// Out receives command output. Default: os.Stdout.
	Out io.Writer
}

// New creates a new shell around session.
func New(session *lloyd.Session, cfg Config) *Shell {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	points := cfg.Points
	if points <= 0 {
		points = 100
	}
	return &Shell{
		session:  session,
		exporter: cfg.Exporter,
		out:      out,
		delay:    cfg.Delay,
		points:   points,
		history:  cfg.HistoryFile,
	}
}

// Run starts the interactive loop.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mlloyd>\033[0m ",
		HistoryFile:     s.history,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete:    newCompleter(),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	s.out = rl.Stdout()

	fmt.Fprintln(s.out, "K-Means playground. Type 'help' for commands.")
	fmt.Fprintln(s.out)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := s.Exec(ctx, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

// Exec runs a single command line. A leading slash is accepted.
func (s *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	cmd, rest, _ := strings.Cut(line, " ")
	cmd = strings.ToLower(strings.TrimPrefix(cmd, "/"))
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch cmd {
	case "quit", "exit", "q":
		return ErrQuit
	case "help", "h", "?":
		s.printHelp()
	case "gen", "generate":
		return s.handleGenerate(args)
	case "add":
		return s.handleAdd(ctx, rest)
	case "load":
		return s.handleLoad(ctx, args)
	case "k":
		return s.handleK(args)
	case "init":
		return s.handleInit(args)
	case "seed":
		return s.handleSeed(args)
	case "start":
		if err := s.session.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Started with k=%d (%s)\n", s.session.K(), s.session.InitMethod())
		s.printCentroids()
	case "assign":
		changed, err := s.session.AssignStep(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Iteration %d: points assigned (changed=%t)\n", s.session.Iteration(), changed)
	case "update":
		res, err := s.session.UpdateStep(ctx)
		if err != nil {
			return err
		}
		s.printStep(res)
	case "step":
		res, err := s.session.Step(ctx)
		if err != nil {
			return err
		}
		s.printStep(res)
	case "run":
		res, err := s.session.RunToConvergence(ctx)
		if err != nil {
			return err
		}
		s.printRun(res)
	case "play":
		return s.handlePlay(ctx, args)
	case "stop":
		s.session.Stop()
		fmt.Fprintf(s.out, "State: %s\n", s.session.State())
	case "reset":
		s.session.Reset(ctx)
		fmt.Fprintln(s.out, "Session reset.")
	case "show", "status":
		s.printStatus()
	case "history":
		return s.printHistory()
	case "csv":
		return s.handleCSV(args)
	case "log", "events":
		s.printEvents()
	case "export":
		return s.handleExport(ctx)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}

	return nil
}

func (s *Shell) handleGenerate(args []string) error {
	n, k, seed := s.points, s.session.K(), s.session.Seed()

	var err error
	if len(args) > 0 {
		if n, err = cast.ToIntE(args[0]); err != nil {
			return fmt.Errorf("invalid point count %q", args[0])
		}
	}
	if len(args) > 1 {
		if k, err = cast.ToIntE(args[1]); err != nil {
			return fmt.Errorf("invalid k %q", args[1])
		}
	}
	if len(args) > 2 {
		if seed, err = cast.ToInt64E(args[2]); err != nil {
			return fmt.Errorf("invalid seed %q", args[2])
		}
	}

	if err := s.session.Generate(n, k, seed); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Generated %d points (k=%d, seed=%d)\n", len(s.session.Points()), k, seed)
	return nil
}

func (s *Shell) handleAdd(ctx context.Context, text string) error {
	if text == "" {
		return errors.New("usage: add x,y")
	}
	return s.addPoints(ctx, text)
}

func (s *Shell) handleLoad(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: load <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	return s.addPoints(ctx, string(data))
}

func (s *Shell) addPoints(ctx context.Context, text string) error {
	res, err := s.session.AddPoints(ctx, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added %d points", res.Added)
	if res.Errors > 0 {
		fmt.Fprintf(s.out, " (%d errors)", res.Errors)
	}
	fmt.Fprintf(s.out, ", %d total\n", len(s.session.Points()))
	return nil
}

func (s *Shell) handleK(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "k = %d\n", s.session.K())
		return nil
	}
	k, err := cast.ToIntE(args[0])
	if err != nil {
		return fmt.Errorf("invalid k %q", args[0])
	}
	return s.session.SetK(k)
}

func (s *Shell) handleInit(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "init = %s\n", s.session.InitMethod())
		return nil
	}
	m, err := lloyd.ParseInitMethod(args[0])
	if err != nil {
		return err
	}
	return s.session.SetInitMethod(m)
}

func (s *Shell) handleSeed(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.out, "seed = %d\n", s.session.Seed())
		return nil
	}
	seed, err := cast.ToInt64E(args[0])
	if err != nil {
		return fmt.Errorf("invalid seed %q", args[0])
	}
	s.session.SetSeed(seed)
	return nil
}

func (s *Shell) handlePlay(ctx context.Context, args []string) error {
	delay := s.delay
	if len(args) > 0 {
		d, err := cast.ToDurationE(args[0])
		if err != nil {
			return fmt.Errorf("invalid delay %q", args[0])
		}
		delay = d
	}

	p := player.New(s.session, player.RenderFunc(func(_ context.Context, f player.Frame) error {
		if f.Phase == player.PhaseUpdate {
			s.printStep(f.Result)
		}
		return nil
	}), delay)

	res, err := p.Play(ctx)
	if err != nil {
		return err
	}
	s.printRun(res)
	return nil
}

func (s *Shell) handleCSV(args []string) error {
	iteration := s.session.Iteration()
	if len(args) > 0 {
		var err error
		if iteration, err = cast.ToIntE(args[0]); err != nil {
			return fmt.Errorf("invalid iteration %q", args[0])
		}
	}
	data, err := s.session.ExportCSV(iteration)
	if err != nil {
		return err
	}
	_, err = s.out.Write(data)
	return err
}

func (s *Shell) handleExport(ctx context.Context) error {
	if s.exporter == nil {
		return errors.New("export is not configured")
	}
	report, err := s.exporter.Export(ctx, s.session)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Exported %d files (%d bytes) to %s\n", len(report.Files), report.Bytes, report.Prefix)
	return nil
}
