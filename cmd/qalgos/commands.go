package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/run"
	"go.uber.org/zap"

	"qalgos/internal/circuit"
	"qalgos/internal/config"
	"qalgos/internal/grover"
	"qalgos/internal/qasm"
	"qalgos/internal/qft"
	"qalgos/internal/sim"
	"qalgos/internal/teleport"
	"qalgos/internal/tui"
)

type qftCmd struct {
	app *App

	Qubits *int `short:"n" long:"qubits" description:"number of qubits (default from setting file)"`
	QASM   bool `long:"qasm" description:"also print the circuit as OpenQASM 2.0"`
}

func (c *qftCmd) Execute(args []string) error {
	e, err := c.app.setup()
	if err != nil {
		return err
	}
	defer e.close()

	opts := qft.Options{
		Qubits:    e.setting.QFT.Qubits,
		Decimals:  e.setting.Simulator.Decimals,
		PrintQASM: e.setting.QFT.PrintQASM || c.QASM,
	}
	if c.Qubits != nil {
		opts.Qubits = *c.Qubits
	}
	if err := sim.CheckQubits(opts.Qubits); err != nil {
		return err
	}
	_, err = qft.Run(context.Background(), e.sim, opts, c.app.out)
	return err
}

type groverCmd struct {
	app *App

	Repetitions *int `short:"r" long:"repetitions" description:"number of samples (default from setting file)"`
	JSON        bool `long:"json" description:"print the counts as indented JSON"`
}

func (c *groverCmd) Execute(args []string) error {
	e, err := c.app.setup()
	if err != nil {
		return err
	}
	defer e.close()

	opts := grover.Options{Repetitions: e.setting.Grover.Repetitions, JSON: c.JSON}
	if c.Repetitions != nil {
		opts.Repetitions = *c.Repetitions
	}
	_, err = grover.Run(context.Background(), e.sim, opts, c.app.out)
	return err
}

type teleportCmd struct {
	app *App

	Message string `short:"m" long:"message-gate" description:"single-qubit gate preparing the message, e.g. h, x or ry(pi/3)"`
}

func (c *teleportCmd) Execute(args []string) error {
	e, err := c.app.setup()
	if err != nil {
		return err
	}
	defer e.close()

	gate, err := messageGate(e.setting, c.Message)
	if err != nil {
		return err
	}
	_, err = teleport.Run(context.Background(), e.sim,
		teleport.Options{MessageGate: gate, Decimals: e.setting.Simulator.Decimals}, c.app.out)
	return err
}

type qasmCmd struct {
	app *App

	Circuit string `long:"circuit" description:"demo circuit to export" required:"true" choice:"qft" choice:"grover" choice:"teleport"`
	Qubits  *int   `short:"n" long:"qubits" description:"number of QFT qubits (default from setting file)"`
	Message string `short:"m" long:"message-gate" description:"teleportation message gate (default from setting file)"`
	Output  string `short:"o" long:"output" description:"write to this file instead of standard output"`
}

func (c *qasmCmd) Execute(args []string) error {
	e, err := c.app.setup()
	if err != nil {
		return err
	}
	defer e.close()

	qubits := e.setting.QFT.Qubits
	if c.Qubits != nil {
		qubits = *c.Qubits
	}
	gate, err := messageGate(e.setting, c.Message)
	if err != nil {
		return err
	}
	circ, err := demoCircuit(c.Circuit, qubits, gate)
	if err != nil {
		return err
	}
	src, err := qasm.Export(circ)
	if err != nil {
		return err
	}
	if c.Output == "" {
		_, err = fmt.Fprint(c.app.out, src)
		return err
	}
	if err := os.WriteFile(c.Output, []byte(src), 0644); err != nil {
		return err
	}
	zap.L().Info("wrote qasm", zap.String("circuit", c.Circuit), zap.String("path", c.Output))
	return nil
}

type simulateCmd struct {
	app *App

	Repetitions int `short:"r" long:"repetitions" description:"samples to take when the program measures" default:"1"`
	Args        struct {
		File string `positional-arg-name:"FILE" description:"OpenQASM 2.0 program"`
	} `positional-args:"yes" required:"yes"`
}

func (c *simulateCmd) Execute(args []string) error {
	e, err := c.app.setup()
	if err != nil {
		return err
	}
	defer e.close()

	src, err := os.ReadFile(c.Args.File)
	if err != nil {
		return err
	}
	circ, err := qasm.Parse(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", c.Args.File, err)
	}
	if err := sim.CheckQubits(len(circ.Qubits())); err != nil {
		return fmt.Errorf("%s: %w", c.Args.File, err)
	}
	zap.L().Info("parsed qasm program",
		zap.String("path", c.Args.File),
		zap.Int("qubits", len(circ.Qubits())),
		zap.Int("moments", circ.Depth()))
	fmt.Fprintf(c.app.out, "%s\n\n", circ)

	ctx := context.Background()
	if !circ.HasMeasurements() {
		res, err := e.sim.Simulate(ctx, circ)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.app.out, "output vector: %s\n", res.DiracNotation(e.setting.Simulator.Decimals))
		return nil
	}

	res, err := e.sim.Run(ctx, circ, c.Repetitions)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.app.out, res)
	for _, k := range res.Keys() {
		fmt.Fprintf(c.app.out, "counts %s: %s\n", k, res.Counts(k))
	}
	return nil
}

type viewCmd struct {
	app *App

	Qubits  *int   `short:"n" long:"qubits" description:"number of QFT qubits (default from setting file)"`
	Message string `short:"m" long:"message-gate" description:"teleportation message gate (default from setting file)"`
}

func (c *viewCmd) Execute(args []string) error {
	e, err := c.app.setup()
	if err != nil {
		return err
	}
	defer e.close()

	qubits := e.setting.QFT.Qubits
	if c.Qubits != nil {
		qubits = *c.Qubits
	}
	gate, err := messageGate(e.setting, c.Message)
	if err != nil {
		return err
	}
	demos, err := tui.DefaultDemos(qubits, gate)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := tea.NewProgram(tui.New(ctx, e.sim, demos, e.setting.Simulator.Decimals),
		tea.WithAltScreen(),
		tea.WithContext(ctx))

	var g run.Group
	g.Add(func() error {
		_, err := p.Run()
		return err
	}, func(error) {
		p.Quit()
	})
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		zap.L().Info("viewer stopped by signal", zap.Stringer("signal", sigErr.Signal))
		return nil
	}
	return err
}

// messageGate resolves the teleportation message gate from the flag, falling
// back to the setting file.
func messageGate(s config.Setting, flag string) (circuit.Gate, error) {
	if flag != "" {
		s.Teleport.MessageGate = flag
	}
	g, err := s.MessageGate()
	if err != nil {
		return nil, fmt.Errorf("message gate %q: %w", s.Teleport.MessageGate, err)
	}
	return g, nil
}

// demoCircuit builds one of the demo circuits by name.
func demoCircuit(name string, qubits int, message circuit.Gate) (*circuit.Circuit, error) {
	switch name {
	case "qft":
		q, err := qft.NewQubits(qubits)
		if err != nil {
			return nil, err
		}
		return qft.Build(q)
	case "grover":
		return grover.Build(grover.Oracle11())
	case "teleport":
		return teleport.Build(message)
	default:
		return nil, fmt.Errorf("%s is an unknown circuit", name)
	}
}
