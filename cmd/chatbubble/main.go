package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/re3zy/chat-bubble-plugin/internal/config"
	"github.com/re3zy/chat-bubble-plugin/internal/host"
	"github.com/re3zy/chat-bubble-plugin/internal/host/bridge"
	"github.com/re3zy/chat-bubble-plugin/internal/host/demo"
	"github.com/re3zy/chat-bubble-plugin/internal/logging"
	"github.com/re3zy/chat-bubble-plugin/internal/tui"
)

const version = "1.0.0"

func main() {
	var (
		configPath string
		demoMode   bool
		themeFlag  string
		listenFlag string
	)

	root := &cobra.Command{
		Use:     "chatbubble",
		Short:   "Conversation panel over a tabular feed",
		Long:    "chatbubble renders a two-party conversation from a column-oriented data feed\nand sends outgoing messages through a shared variable plus an action trigger.\n\nBy default it runs the HTTP bridge and waits for the platform to push\nsnapshots; --demo runs a scripted responder instead.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if themeFlag != "" {
				cfg.UI.Theme = themeFlag
			}
			if listenFlag != "" {
				cfg.Bridge.Listen = listenFlag
			}
			if demoMode {
				cfg.Demo = true
			}

			log := logging.New(cfg.Log.Level, cfg.Log.File)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			opts := tui.Options{
				Config: cfg,
				Log:    log.WithField("component", "panel"),
			}

			if cfg.Demo {
				h := demo.New()
				opts.Source = h
				opts.Variable = h
				opts.Trigger = h
				opts.ConnLabel = "demo"
			} else {
				b := bridge.New(log.WithField("component", "bridge"))
				go func() {
					if err := b.Serve(ctx, cfg.Bridge.Listen); err != nil {
						log.WithError(err).Error("bridge stopped")
					}
				}()
				opts.Source = b
				opts.Variable = b.Var(cfg.Outbound.Variable)
				if cfg.Outbound.TriggerURL != "" {
					opts.Trigger = host.Trigger(bridge.WebhookTrigger{
						URL:      cfg.Outbound.TriggerURL,
						Variable: cfg.Outbound.Variable,
						Log:      log.WithField("component", "trigger"),
					})
				}
				opts.ConnLabel = "bridge"
			}

			p := tea.NewProgram(tui.NewPanel(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = p.Run()
			return err
		},
	}

	root.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "config file path")
	root.Flags().BoolVar(&demoMode, "demo", false, "run against the scripted demo host")
	root.Flags().StringVar(&themeFlag, "theme", "", "theme (porcelain, midnight)")
	root.Flags().StringVar(&listenFlag, "listen", "", "bridge listen address")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
