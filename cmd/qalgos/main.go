// Command qalgos runs the quantum algorithm demos: the quantum Fourier
// transform, a two-qubit Grover search and state teleportation.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"
	"go.uber.org/zap"

	"qalgos/internal/config"
	"qalgos/internal/logging"
	"qalgos/internal/sim"
)

var dotenvErr error

func init() {
	dotenvErr = envordot.Load(false, ".env")
}

// App holds the global options shared by every command.
type App struct {
	Conf *config.Conf

	out io.Writer
}

func newParser(app *App) *flags.Parser {
	parser := flags.NewParser(app, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "qalgos"
	parser.ShortDescription = "quantum algorithm demos"
	parser.LongDescription = "builds, simulates and prints the QFT, Grover and teleportation circuits."
	parser.AddCommand("qft", "run the quantum Fourier transform",
		"build the QFT, simulate it from |0…0⟩ and undo it with the inverse QFT", &qftCmd{app: app})
	parser.AddCommand("grover", "run the two-qubit Grover search",
		"sample one Grover iteration that marks |11⟩", &groverCmd{app: app})
	parser.AddCommand("teleport", "run state teleportation",
		"teleport a message qubit from Alice to Bob and compare Bloch vectors", &teleportCmd{app: app})
	parser.AddCommand("qasm", "export a demo circuit as OpenQASM 2.0",
		"write the OpenQASM 2.0 program of one demo circuit", &qasmCmd{app: app})
	parser.AddCommand("simulate", "simulate an OpenQASM 2.0 file",
		"parse an OpenQASM 2.0 program and print its final state or sampled measurements", &simulateCmd{app: app})
	parser.AddCommand("view", "step through the demo circuits",
		"interactive viewer showing the state after every moment", &viewCmd{app: app})
	return parser
}

// execute parses args, runs the selected command and returns the process
// exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	app := &App{Conf: &config.Conf{}, out: stdout}
	parser := newParser(app)
	if _, err := parser.ParseArgs(args); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) {
			if fe.Type == flags.ErrHelp {
				fmt.Fprintln(stdout, fe.Message)
				return 0
			}
			fmt.Fprintf(stderr, "failed to parse flags, because %s\n", err)
			return 1
		}
		fmt.Fprintf(stderr, "execution error:%v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// env is what every command needs once the global options are parsed.
type env struct {
	setting config.Setting
	sim     *sim.Simulator
	logger  *zap.Logger
}

func (e *env) close() {
	_ = e.logger.Sync()
}

// setup installs the global logger, loads the setting file and creates the
// simulator. A non-zero --seed overrides the setting file.
func (a *App) setup() (*env, error) {
	logger, err := logging.Setup(a.Conf)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	if dotenvErr != nil {
		zap.L().Debug("no .env file, using environment variables only", zap.Error(dotenvErr))
	}
	zap.L().Debug("parsed global options", zap.Any("conf", a.Conf))

	setting, err := config.LoadSetting(a.Conf.SettingPath)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	if a.Conf.Seed != 0 {
		setting.Simulator.Seed = a.Conf.Seed
	}

	var opts []sim.Option
	if setting.Simulator.Seed != 0 {
		opts = append(opts, sim.WithSeed(setting.Simulator.Seed))
	}
	return &env{setting: setting, sim: sim.New(opts...), logger: logger}, nil
}
