package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/vk/runexp/internal/app"
	"github.com/vk/runexp/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// listFlag collects comma-separated values across repeated flags.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

type options struct {
	stdout, stderr bool
	metrics        listFlag
	preserve       bool
	output         string
	concurrency    int
	file           string
	envFile        string
	logLevel       string
	logFormat      string
}

func newFlagSet(output io.Writer, o *options) *flag.FlagSet {
	flagSet := flag.NewFlagSet("runexp", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
runexp - Run an experiment over every combination of its parameters.

Usage:
  runexp [options] --NAME VALUES... [--] COMMAND [ARGS...]
  runexp [options] --NAME VALUES... <<'EOF'
  ...script...
  EOF

Parameters:
  Any option that is not listed below declares a parameter. VALUES is a
  comma-separated list of numbers, strings, ranges (start:end[:step]) or
  expressions over other parameters, e.g. --gpu 1,2,4 --batch 32gpu.
  Each parameter reaches the command as an upper-case environment variable.

Options:
`)
		flagSet.PrintDefaults()
	}

	flagSet.BoolVar(&o.stdout, "stdout", false, "Parse and preserve only standard output.")
	flagSet.BoolVar(&o.stderr, "stderr", false, "Parse and preserve only standard error.")
	flagSet.Var(&o.metrics, "metrics", "Comma-separated metric names to record.")
	flagSet.Var(&o.metrics, "m", "Comma-separated metric names to record (shorthand).")
	flagSet.BoolVar(&o.preserve, "preserve-output", false, "Store the raw output of each run.")
	flagSet.BoolVar(&o.preserve, "p", false, "Store the raw output of each run (shorthand).")
	flagSet.StringVar(&o.output, "output", config.DefaultOutput, "Path of the CSV result file.")
	flagSet.StringVar(&o.output, "o", config.DefaultOutput, "Path of the CSV result file (shorthand).")
	flagSet.IntVar(&o.concurrency, "concurrency", 1, "Number of experiments run at once.")
	flagSet.IntVar(&o.concurrency, "c", 1, "Number of experiments run at once (shorthand).")
	flagSet.StringVar(&o.file, "file", "", "Sweep definition file or directory of .hcl files.")
	flagSet.StringVar(&o.file, "f", "", "Sweep definition file or directory (shorthand).")
	flagSet.StringVar(&o.envFile, "env-file", "", "Dotenv file added to every experiment's environment.")
	flagSet.StringVar(&o.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.StringVar(&o.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	return flagSet
}

// split separates known flags from parameters and the command. Parameters
// take the form --name value, --name=value or -n value.
func split(flagSet *flag.FlagSet, args []string) (flags []string, params []config.ParamDef, command []string, err error) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flags, params, args[i+1:], nil
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			return flags, params, args[i:], nil
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "" {
			return nil, nil, nil, usageError("invalid argument %q", arg)
		}
		if name == "h" || name == "help" {
			flags = append(flags, arg)
			continue
		}

		if f := flagSet.Lookup(name); f != nil {
			flags = append(flags, arg)
			if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
				continue
			}
			if !hasValue {
				if i+1 >= len(args) {
					return nil, nil, nil, usageError("flag needs an argument: %s", arg)
				}
				i++
				flags = append(flags, args[i])
			}
			continue
		}

		if !hasValue {
			if i+1 >= len(args) {
				return nil, nil, nil, usageError("parameter %s needs a value", arg)
			}
			i++
			value = args[i]
		}
		params = append(params, config.ParamDef{Name: paramName(name), Expr: value})
	}
	return flags, params, nil, nil
}

func paramName(flagName string) string {
	return strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Without a command, the script is read from stdin unless stdin is a
// terminal.
func Parse(args []string, stdin io.Reader, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	var o options
	flagSet := newFlagSet(output, &o)

	flagArgs, params, command, err := split(flagSet, args)
	if err != nil {
		return nil, false, err
	}
	if err := flagSet.Parse(flagArgs); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.", "params", len(params), "command", command)

	if len(args) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	if o.stdout && o.stderr {
		return nil, false, usageError("--stdout and --stderr cannot be used together")
	}

	overrides := &config.Model{Params: params, Command: command}
	var visitErr error
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "metrics", "m":
			overrides.Metrics = o.metrics
		case "preserve-output", "p":
			overrides.Preserve = o.preserve
		case "output", "o":
			overrides.Output = o.output
		case "concurrency", "c":
			if o.concurrency < 1 {
				visitErr = usageError("concurrency must be at least 1, got %d", o.concurrency)
			}
			overrides.Concurrency = o.concurrency
		case "env-file":
			overrides.EnvFile = o.envFile
		case "stdout":
			overrides.Stream = "stdout"
		case "stderr":
			overrides.Stream = "stderr"
		}
	})
	if visitErr != nil {
		return nil, false, visitErr
	}

	if len(command) == 0 {
		script, err := readScript(stdin)
		if err != nil {
			return nil, false, &ExitError{Code: 1, Message: fmt.Sprintf("reading script from stdin: %v", err)}
		}
		overrides.Script = script
	}

	logFormat := strings.ToLower(o.logFormat)
	logLevel := strings.ToLower(o.logLevel)
	var paths []string
	if o.file != "" {
		paths = append(paths, o.file)
	}

	cfg, err := app.NewConfig(app.Config{
		DefinitionPaths: paths,
		Overrides:       overrides,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return cfg, false, nil
}

func readScript(stdin io.Reader) (string, error) {
	if stdin == nil {
		return "", nil
	}
	if f, ok := stdin.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", nil
	}
	return string(data), nil
}
