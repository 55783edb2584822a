package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/dungeon-hunt/internal/config"
	"github.com/jwebster45206/dungeon-hunt/internal/logger"
	"github.com/jwebster45206/dungeon-hunt/pkg/content"
	"github.com/jwebster45206/dungeon-hunt/pkg/dice"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() {
			_ = f.Close() // Ignore error in defer
		}()
		out = f
	}
	log := logger.New(cfg, out)

	tables, err := content.Open(cfg.ContentPath)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	log.Info("Content loaded", "locations", tables.Locations.Len(), "enemies", tables.Enemies.Len())

	rng := dice.NewSource()
	ui := NewConsoleUI(
		engine.NewInterpreter(tables, rng),
		txsim.NewSimulator(txsim.DefaultSchedule.Scaled(cfg.TxSpeed), log),
		rng,
		log,
	)

	p := tea.NewProgram(ui,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
