package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"MandelbrotExplorer/coordinator"
	"MandelbrotExplorer/mandelbrot"
	"MandelbrotExplorer/misc"
	"github.com/BrugadaSyndrome/bslogger"
	"github.com/google/gops/agent"
)

var (
	diagnostics                             bool
	modeName, outPath, script, settingsFile string
)

func main() {
	logger := bslogger.NewLogger("Main", bslogger.Normal, nil)
	parseArguments()

	if diagnostics {
		misc.CheckError(agent.Listen(agent.Options{ShutdownCleanup: true}), logger, misc.Warning)
		defer agent.Close()
	}

	settings := coordinator.DefaultSettings()
	if settingsFile != "" {
		var err error
		settings, err = coordinator.NewSettings(settingsFile)
		misc.CheckError(err, logger, misc.Fatal)
	}
	if modeName != "" {
		settings.Mode = modeName
	}

	c, err := coordinator.NewCoordinator(settings)
	misc.CheckError(err, logger, misc.Fatal)
	defer func() {
		misc.CheckError(c.Close(), logger, misc.Error)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mode := c.Mode()
	logger.Infof("Exploring in %s mode", mode)
	commands, err := parseScript(script)
	if misc.CheckError(err, logger, misc.Error) {
		return
	}
	for _, cmd := range commands {
		if misc.CheckError(cmd.apply(ctx, c, mode, outPath), logger, misc.Error) {
			return
		}
	}

	misc.CheckError(save(ctx, c, mode, outPath), logger, misc.Error)
}

func parseArguments() {
	flag.BoolVar(&diagnostics, "diagnostics", false, "Start the gops diagnostics agent")
	flag.StringVar(&modeName, "mode", "", "Render mode: double, arbitrary or gpu (overrides the settings file)")
	flag.StringVar(&outPath, "out", "", "Directory exported images are written to (defaults to the settings SavePath)")
	flag.StringVar(&settingsFile, "settings", "", "Json file with the explorer settings")
	flag.StringVar(&script, "zoom", "", "Comma separated navigation commands run before the final export, e.g. in,in,at:512:300,more,save")
	flag.Parse()
}

// save computes the current view if needed and exports it.
func save(ctx context.Context, c *coordinator.Coordinator, mode mandelbrot.Mode, dir string) error {
	v, err := c.Refresh(ctx, mode)
	if err != nil {
		return err
	}
	_, err = c.Export(v, dir)
	return err
}
