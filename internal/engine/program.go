package engine

import (
	"fmt"
	"sort"
	"time"

	"forgefit/internal/models"
)

// BuildFourWeekPlan lays a weekly split over the selected weekdays and
// freezes it for four weeks. The mapping is identical across all weeks;
// progression happens through loading suggestions on each actual training
// day, not by drifting the block.
func (r *Rules) BuildFourWeekPlan(profile models.UserProfile, selectedWeekdays []int, now time.Time) (models.FourWeekProgramPlan, error) {
	weekdays, err := normalizeWeekdays(selectedWeekdays)
	if err != nil {
		return models.FourWeekProgramPlan{}, err
	}

	primary, secondary := profile.Goals.Dominant()

	var warnings []string
	split, warning := r.selectSplit(len(weekdays), profile.MuscleFrequency)
	if warning != "" {
		warnings = append(warnings, warning)
	}

	days := make(map[int]models.ProgramDayPlan, len(weekdays))
	for i, weekday := range weekdays {
		day := split.Days[i%len(split.Days)]
		tmpl := r.Templates[day.TemplateID]
		days[weekday] = models.ProgramDayPlan{
			Label:      day.Label,
			TemplateID: day.TemplateID,
			Intents:    tmpl.Required,
		}
	}

	plan := models.FourWeekProgramPlan{
		Weekdays:      weekdays,
		GroupingStyle: split.Style,
		DominantGoal:  primary,
		SecondaryGoal: secondary,
		Warnings:      warnings,
		CreatedAt:     now,
	}
	for week := range plan.Weeks {
		weekDays := make(map[int]models.ProgramDayPlan, len(days))
		for weekday, day := range days {
			weekDays[weekday] = day
		}
		plan.Weeks[week] = models.WeekPlan{Days: weekDays}
	}
	return plan, nil
}

// selectSplit picks the split for the day count, honoring the muscle
// frequency preference where a satisfying variant exists and degrading to
// auto with a warning where it does not.
func (r *Rules) selectSplit(dayCount int, freq models.MuscleFrequency) (Split, string) {
	key := dayCount
	if key < 2 {
		key = 2
	}
	if key > 6 {
		key = 6
	}
	auto := r.Splits[key]
	if freq != models.FrequencyTwiceWeekly {
		return auto, ""
	}
	if split, ok := r.TwiceWeekly[key]; ok {
		return split, ""
	}
	return auto, fmt.Sprintf(
		"twice-weekly muscle frequency is not satisfiable with %d training days; falling back to the %s split",
		dayCount, auto.Style,
	)
}

func normalizeWeekdays(weekdays []int) ([]int, error) {
	if len(weekdays) == 0 {
		return nil, fmt.Errorf("no training weekdays selected")
	}
	seen := make(map[int]bool, len(weekdays))
	var out []int
	for _, wd := range weekdays {
		if wd < 1 || wd > 7 {
			return nil, fmt.Errorf("weekday %d out of range 1..7", wd)
		}
		if !seen[wd] {
			seen[wd] = true
			out = append(out, wd)
		}
	}
	sort.Ints(out)
	return out, nil
}

// GenerateProgramDays resolves the frozen block into concrete local
// calendar dates. The start date is normalized to the Monday of its week;
// each computed date's weekday is asserted against the expected one so a
// date-math bug fails fast instead of silently shifting the program.
func GenerateProgramDays(plan models.FourWeekProgramPlan, startDate time.Time) ([]models.ProgramDay, error) {
	monday := mondayOf(startDate)

	var days []models.ProgramDay
	for week := 1; week <= len(plan.Weeks); week++ {
		for _, weekday := range plan.Weekdays {
			date := monday.AddDate(0, 0, (week-1)*7+(weekday-1))
			if got := canonicalWeekday(date); got != weekday {
				return nil, fmt.Errorf("date math produced weekday %d for %s, expected %d", got, date.Format("2006-01-02"), weekday)
			}
			dayPlan := plan.Weeks[week-1].Days[weekday]
			days = append(days, models.ProgramDay{
				Week:    week,
				Weekday: weekday,
				// Local calendar day, deliberately not UTC: users east of
				// UTC would otherwise see dates drift at early local hours.
				Date:       date.Format("2006-01-02"),
				TemplateID: dayPlan.TemplateID,
				Label:      dayPlan.Label,
			})
		}
	}
	return days, nil
}

// mondayOf returns local midnight of the Monday in t's week.
func mondayOf(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -(canonicalWeekday(midnight) - 1))
}

// canonicalWeekday maps time.Weekday to 1=Monday..7=Sunday.
func canonicalWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
