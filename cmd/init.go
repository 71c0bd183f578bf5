package cmd

import (
	"fmt"
	"os"

	"forgefit/internal/config"
	"forgefit/internal/models"
	"forgefit/internal/storage"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

var initSetupCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config and bootstrap the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := writeDefaultConfig(path); err != nil {
				return fmt.Errorf("writing default config: %w", err)
			}
			fmt.Printf("✅ Wrote starter config to %s\n", path)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		log := config.NewLogger(cfg.Log)

		st, err := storage.New(cfg, log)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		defer st.Close()

		fmt.Println("✅ Database initialized successfully")
		return nil
	},
}

func writeDefaultConfig(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg := config.Config{
		DB: config.DBConfig{ConnectionString: "file:./forgefit.db?cache=shared&mode=rwc"},
		Profile: models.UserProfile{
			Experience: models.DifficultyBeginner,
			Goals:      models.GoalWeights{models.GoalGeneralFitness: 1},
			Constraints: models.TrainingConstraints{
				AvailableEquipment: []string{"barbell", "rack", "bench", "dumbbells"},
				TimeBudgetMinutes:  60,
			},
			MuscleFrequency: models.FrequencyAuto,
		},
		Schedule: config.ScheduleConfig{Weekdays: []int{1, 3, 5}},
	}
	return toml.NewEncoder(f).Encode(cfg)
}

func init() {
	rootCmd.AddCommand(initSetupCmd)
}
