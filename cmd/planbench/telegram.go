package main

import (
	"context"
	"errors"

	"github.com/rahul/planbench/internal/gateway"
	"github.com/spf13/cobra"
)

var telegramEvaluate bool

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Answer Telegram messages with plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "")
		if err != nil {
			return err
		}
		planner, err := a.planner()
		if err != nil {
			return err
		}

		responder := &gateway.Responder{Planner: planner}
		if telegramEvaluate {
			evaluator, err := a.evaluator()
			if err != nil {
				return err
			}
			responder.Scorer = evaluator
		}

		var m gateway.Messenger
		m, err = gateway.NewTelegramGateway(a.cfg.Telegram.Token, responder, a.logger)
		if err != nil {
			return err
		}

		a.logger.Slog().Info("telegram gateway started")
		err = m.Start(cmd.Context())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	telegramCmd.Flags().BoolVar(&telegramEvaluate, "evaluate", false, "append scores to every reply")
}
