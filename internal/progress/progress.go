// Package progress derives completion figures from a training plan.
// Everything here is pure: no I/O, no clock reads, the caller passes now.
package progress

import (
	"math"
	"time"

	"alcyxob/coaching-api/internal/domain"
)

const day = 24 * time.Hour

// Summary is the derived progress of one plan.
type Summary struct {
	TotalSessions       int `json:"totalSessions"`
	CompletedSessions   int `json:"completedSessions"`
	TotalExercises      int `json:"totalExercises"`
	CompletedExercises  int `json:"completedExercises"`
	TotalSets           int `json:"totalSets"`
	CompletedSets       int `json:"completedSets"`
	SessionProgressPct  int `json:"sessionProgressPct"`
	ExerciseProgressPct int `json:"exerciseProgressPct"`
	SetProgressPct      int `json:"setProgressPct"`
	TotalDays           int `json:"totalDays"`
	DaysLeft            int `json:"daysLeft"`
}

// Summarize computes the progress of plan as of now.
func Summarize(plan *domain.TrainingPlan, now time.Time) Summary {
	var s Summary
	if plan == nil {
		return s
	}

	s.TotalSessions = len(plan.Sessions)
	for i := range plan.Sessions {
		session := &plan.Sessions[i]
		if session.IsCompleted() {
			s.CompletedSessions++
		}
		for _, ex := range session.Exercises {
			s.TotalExercises++
			if ex.Completed {
				s.CompletedExercises++
			}
			for _, set := range ex.PerformedSets {
				s.TotalSets++
				if set.Completed {
					s.CompletedSets++
				}
			}
		}
	}

	s.SessionProgressPct = Percent(s.CompletedSessions, s.TotalSessions)
	s.ExerciseProgressPct = Percent(s.CompletedExercises, s.TotalExercises)
	s.SetProgressPct = Percent(s.CompletedSets, s.TotalSets)
	s.TotalDays = TotalDays(plan.StartDate, plan.EndDate)
	s.DaysLeft = DaysLeft(plan.EndDate, now)
	return s
}

// Percent returns round(100*part/total), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// TotalDays is the plan length in whole days, at least 1.
// Missing dates yield 0.
func TotalDays(start, end *time.Time) int {
	if start == nil || end == nil {
		return 0
	}
	days := ceilDays(end.Sub(*start))
	if days < 1 {
		return 1
	}
	return days
}

// DaysLeft is the number of days until end, never negative.
func DaysLeft(end *time.Time, now time.Time) int {
	if end == nil {
		return 0
	}
	days := ceilDays(end.Sub(now))
	if days < 0 {
		return 0
	}
	return days
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}
