package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/capviz/internal/audio"
	"github.com/olivier-w/capviz/internal/config"
	"github.com/olivier-w/capviz/internal/logging"
	"github.com/olivier-w/capviz/internal/state"
	"github.com/olivier-w/capviz/internal/surface"
	"github.com/olivier-w/capviz/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "capviz FILE",
		Short: "Play an audio file with a falling-cap spectrum visualizer",
		Long: `capviz plays an audio file in the terminal and draws its frequency
spectrum as bars with caps that fall slowly back to the floor.

Press v to toggle the visualization; the choice is remembered.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Setup(v, configFile); err != nil {
				return err
			}
			return bindFlags(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(v, args[0])
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default is $XDG_CONFIG_HOME/capviz/capviz.yaml)")
	pf.Int("fps", 60, "maximum frames per second (0 = unthrottled)")
	pf.String("mode", "settle", "frame loop mode: continuous or settle")
	pf.String("shape", config.ShapeSplit, "rendering shape: direct or split")
	pf.Int("bar-width", 10, "bar width in canvas pixels")
	pf.Int("gap", 2, "gap between bars in canvas pixels")
	pf.Int("cap-height", 2, "cap thickness in canvas pixels")
	pf.String("cap-color", "#ddd", "cap color as #rgb or #rrggbb")
	pf.Int("fft-size", 1024, "analyser FFT size (power of two)")
	pf.Int("queue-size", 2, "frames buffered for the split renderer")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "write logs to this file")
	root.Flags().Int("pixel-scale", 4, "canvas pixels per terminal column")
	root.Flags().String("state-file", "", "where the visualization on/off choice is kept")

	root.AddCommand(newRenderCmd(v))
	return root
}

// bindFlags binds every flag to the viper key with dashes replaced by
// underscores. Flags left at their default yield to config and environment.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || f.Name == "help" {
			return
		}
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			lastErr = err
		}
	})
	return lastErr
}

func loadConfig(v *viper.Viper) (*config.Config, *zap.Logger, func() error, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, nil, err
	}
	log, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, closeLog, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if ext := filepath.Ext(path); !audio.IsSupportedExt(ext) {
		return fmt.Errorf("unsupported format %s (supported: %s)", ext, audio.SupportedExtsList())
	}
	return nil
}

func runPlay(v *viper.Viper, path string) error {
	if err := checkFile(path); err != nil {
		return err
	}
	cfg, log, closeLog, err := loadConfig(v)
	if err != nil {
		return err
	}
	defer closeLog()

	sess, err := audio.OpenSession(path, cfg.FFTSize, log)
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := sess.Play(); err != nil {
		return err
	}

	presenter := surface.NewTerminal()
	transport := newTransport(cfg, sess.Analyser(), presenter, false, log)
	viz := ui.NewVisualization(ui.VizOptions{
		Mode:       cfg.ModeValue(),
		FPS:        cfg.FPS,
		Transport:  transport,
		Presenter:  presenter,
		Store:      state.NewStore(cfg.StateFile),
		PixelScale: cfg.PixelScale,
		Logger:     log,
		Analyse:    sess.SetAnalysing,
	})

	model := ui.New(sess, audio.ReadMetadata(path), viz)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}
