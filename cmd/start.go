package cmd

import (
	"context"
	"fmt"
	"time"

	"forgefit/internal/catalog"
	"forgefit/internal/config"
	"forgefit/internal/engine"
	"forgefit/internal/models"
	"forgefit/internal/offline"
	"forgefit/internal/storage"
	"forgefit/internal/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var startTemplate string

var startCmd = &cobra.Command{
	Use:   "start-session",
	Short: "Start today's scheduled session (or a specific template)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if utils.SessionExists() {
			return fmt.Errorf("a session is already active, end or cancel it first")
		}

		st, cfg, _, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		now := time.Now()

		templateID := startTemplate
		groupingStyle := "full_body"
		label := ""
		if templateID == "" {
			planID, plan, err := st.CurrentProgramPlan(ctx)
			if err == storage.ErrNotFound {
				return fmt.Errorf("no program yet, run 'forgefit program' first")
			}
			if err != nil {
				return fmt.Errorf("loading program: %w", err)
			}
			day, err := st.ProgramDayFor(ctx, planID, utils.FormatLocalDate(now))
			if err == storage.ErrNotFound {
				return fmt.Errorf("nothing scheduled for today, pass --template to train anyway")
			}
			if err != nil {
				return fmt.Errorf("resolving today's session: %w", err)
			}
			templateID = day.TemplateID
			groupingStyle = plan.GroupingStyle
			label = day.Label
		}

		user, err := buildUserState(ctx, st, cfg, templateID, now)
		if err != nil {
			return err
		}

		cat, err := catalog.LoadDefault()
		if err != nil {
			return fmt.Errorf("loading exercise catalog: %w", err)
		}
		rules := engine.DefaultRules()
		plan, err := rules.BuildSession(cat, engine.BuildInput{
			TemplateID:    templateID,
			GroupingStyle: groupingStyle,
			Label:         label,
			Goals:         cfg.Profile.Goals,
			Constraints:   cfg.Profile.Constraints,
			User:          user,
			Now:           now,
		})
		if err != nil {
			return fmt.Errorf("building session: %w", err)
		}
		if len(plan.Exercises) == 0 {
			return fmt.Errorf("no viable exercises for template %q with your equipment and constraints", templateID)
		}

		sessionID := models.ItemID(uuid.New().String())
		itemIDs := make(map[string]models.ItemID, len(plan.Exercises))
		for _, ex := range plan.Exercises {
			itemIDs[ex.Exercise.ID] = models.ItemID(uuid.New().String())
		}

		state, err := engine.InitializeRuntime(plan, sessionID, models.LocalID(uuid.New().String()), itemIDs, now)
		if err != nil {
			return fmt.Errorf("initializing session: %w", err)
		}

		if err := st.Enqueue(ctx, offline.NewCreateSessionOp(models.CreateSessionPayload{
			SessionID:  sessionID,
			TemplateID: templateID,
			Label:      label,
			StartedAt:  now,
		}, now)); err != nil {
			return fmt.Errorf("queueing session: %w", err)
		}
		for _, ex := range plan.Exercises {
			if err := st.Enqueue(ctx, offline.NewUpsertItemOp(models.UpsertItemPayload{
				ItemID:     itemIDs[ex.Exercise.ID],
				SessionID:  sessionID,
				ExerciseID: ex.Exercise.ID,
				OrderIndex: ex.Order,
				Status:     "planned",
			}, now)); err != nil {
				return fmt.Errorf("queueing session item: %w", err)
			}
		}

		if err := utils.SaveSessionState(&state); err != nil {
			return fmt.Errorf("saving session state: %w", err)
		}

		fmt.Println("✅ Session started")
		printSessionPlan(plan)
		return nil
	},
}

// buildUserState assembles the history snapshot the plan builder consumes:
// recent bests for e1RM-based loading and the last same-template session
// for progression evaluation.
func buildUserState(ctx context.Context, st *storage.Storage, cfg *config.Config, templateID string, now time.Time) (models.UserState, error) {
	recent, err := st.RecentBestSets(ctx, now.AddDate(0, -2, 0))
	if err != nil {
		return models.UserState{}, fmt.Errorf("loading recent history: %w", err)
	}
	last, err := st.LastSessionSets(ctx, templateID)
	if err != nil {
		return models.UserState{}, fmt.Errorf("loading last session: %w", err)
	}
	return models.UserState{
		Experience:      cfg.Profile.Experience,
		RecentBest:      recent,
		LastSessionSets: last,
	}, nil
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().StringVarP(&startTemplate, "template", "t", "", "Session template to run regardless of schedule")
}
