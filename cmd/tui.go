package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/articles/internal/app"
	"github.com/matheuskafuri/articles/internal/config"
	"github.com/matheuskafuri/articles/internal/logging"
	"github.com/matheuskafuri/articles/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	a, closeApp, err := openApp()
	if err != nil {
		return err
	}
	defer closeApp()

	return tui.Run(tui.RunOpts{
		Session:  a.Session,
		Articles: a.Articles,
		Timeout:  a.Config.RequestTimeout(),
	})
}

// openApp loads the config and builds the client with logs going to the
// log file, never the terminal.
func openApp() (*app.App, func(), error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logPath := flagLogFile
	if logPath == "" {
		logPath = config.LogPath()
	}
	logFile, err := logging.OpenFile(logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	a, err := app.New(app.Options{Config: cfg, StorePath: flagStore, LogWriter: logFile})
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}

	return a, func() {
		a.Close()
		logFile.Close()
	}, nil
}
