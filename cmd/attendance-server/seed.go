package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo identities (dev environment only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Env != "dev" {
			return errors.New("seed is only allowed when ATTENDANCE_ENV=dev")
		}

		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ids := devIdentities()
		if err := st.SeedIdentities(cmd.Context(), ids); err != nil {
			return err
		}
		logger.Info("demo identities seeded", "count", len(ids))
		return nil
	},
}
