package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/sfss/internal/app"
	"github.com/templui/sfss/internal/config"
	"github.com/templui/sfss/internal/logger"
)

func SweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Retire expired shares and delete their stored objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
			defer logger.Flush()

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			count, err := a.SweepService.Sweep(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "retired %d expired shares\n", count)
			return err
		},
	}
}
