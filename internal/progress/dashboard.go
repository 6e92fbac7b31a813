package progress

import (
	"sort"
	"time"

	"alcyxob/coaching-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	upcomingWindow    = 7 * day
	maxUpcoming       = 5
	weeklyDays        = 7
	maxRecentAthletes = 5
)

// UpcomingSession is a scheduled session inside the next week.
type UpcomingSession struct {
	PlanID      primitive.ObjectID `json:"planId"`
	PlanName    string             `json:"planName"`
	SessionID   primitive.ObjectID `json:"sessionId"`
	SessionName string             `json:"sessionName"`
	Date        time.Time          `json:"date"`
	Completed   bool               `json:"completed"`
	Status      string             `json:"status"` // pending | completed
}

// DayProgress counts sessions scheduled and completed on one calendar day.
type DayProgress struct {
	Date      string `json:"date"` // yyyy-MM-dd
	Day       string `json:"day"`  // Mon, Tue, ...
	Scheduled int    `json:"scheduled"`
	Completed int    `json:"completed"`
}

type AthleteDashboard struct {
	TotalPlans        int               `json:"totalPlans"`
	ActiveSessions    int               `json:"activeSessions"`
	CompletedSessions int               `json:"completedSessions"`
	ProgressPct       int               `json:"progressPct"`
	UpcomingSessions  []UpcomingSession `json:"upcomingSessions"`
	WeeklyProgress    []DayProgress     `json:"weeklyProgress"`
}

type RecentAthlete struct {
	ID       primitive.ObjectID `json:"_id"`
	FullName string             `json:"fullName"`
	Email    string             `json:"email"`
	LinkedAt time.Time          `json:"linkedAt"`
}

type CoachDashboard struct {
	TotalAthletes     int             `json:"totalAthletes"`
	ActivePlans       int             `json:"activePlans"`
	CompletedSessions int             `json:"completedSessions"`
	CompletionPct     int             `json:"completionPct"`
	SessionsThisWeek  int             `json:"sessionsThisWeek"`
	WeeklyProgress    []DayProgress   `json:"weeklyProgress"`
	RecentAthletes    []RecentAthlete `json:"recentAthletes"`
}

// BuildAthleteDashboard aggregates an athlete's plans as of now.
func BuildAthleteDashboard(plans []domain.TrainingPlan, now time.Time) AthleteDashboard {
	d := AthleteDashboard{
		TotalPlans:       len(plans),
		UpcomingSessions: []UpcomingSession{},
	}

	total := 0
	horizon := now.Add(upcomingWindow)
	for _, plan := range plans {
		for i := range plan.Sessions {
			session := &plan.Sessions[i]
			total++
			done := session.IsCompleted()
			if done {
				d.CompletedSessions++
			} else {
				d.ActiveSessions++
			}

			if session.Date == nil || session.Date.Before(now) || session.Date.After(horizon) {
				continue
			}
			status := "pending"
			if done {
				status = "completed"
			}
			d.UpcomingSessions = append(d.UpcomingSessions, UpcomingSession{
				PlanID:      plan.ID,
				PlanName:    plan.Name,
				SessionID:   session.ID,
				SessionName: session.Name,
				Date:        *session.Date,
				Completed:   done,
				Status:      status,
			})
		}
	}

	sort.SliceStable(d.UpcomingSessions, func(i, j int) bool {
		return d.UpcomingSessions[i].Date.Before(d.UpcomingSessions[j].Date)
	})
	if len(d.UpcomingSessions) > maxUpcoming {
		d.UpcomingSessions = d.UpcomingSessions[:maxUpcoming]
	}

	d.ProgressPct = Percent(d.CompletedSessions, total)
	d.WeeklyProgress = WeeklyProgress(plans, now)
	return d
}

// BuildCoachDashboard aggregates everything a coach manages as of now.
func BuildCoachDashboard(athletes []domain.User, plans []domain.TrainingPlan, now time.Time) CoachDashboard {
	d := CoachDashboard{
		TotalAthletes:  len(athletes),
		RecentAthletes: []RecentAthlete{},
	}

	weekStart := startOfDay(now).AddDate(0, 0, -(weeklyDays - 1))
	weekEnd := startOfDay(now).AddDate(0, 0, 1)

	total := 0
	for _, plan := range plans {
		if plan.IsActiveAt(now) {
			d.ActivePlans++
		}
		for i := range plan.Sessions {
			session := &plan.Sessions[i]
			total++
			if session.IsCompleted() {
				d.CompletedSessions++
			}
			if session.Date != nil && !session.Date.Before(weekStart) && session.Date.Before(weekEnd) {
				d.SessionsThisWeek++
			}
		}
	}
	d.CompletionPct = Percent(d.CompletedSessions, total)
	d.WeeklyProgress = WeeklyProgress(plans, now)

	recent := make([]RecentAthlete, 0, len(athletes))
	for _, a := range athletes {
		linked := a.CreatedAt
		if a.LinkedAt != nil {
			linked = *a.LinkedAt
		}
		recent = append(recent, RecentAthlete{ID: a.ID, FullName: a.FullName, Email: a.Email, LinkedAt: linked})
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].LinkedAt.After(recent[j].LinkedAt) })
	if len(recent) > maxRecentAthletes {
		recent = recent[:maxRecentAthletes]
	}
	d.RecentAthletes = recent
	return d
}

// WeeklyProgress returns one entry per day for the last seven days, oldest first.
func WeeklyProgress(plans []domain.TrainingPlan, now time.Time) []DayProgress {
	today := startOfDay(now)
	out := make([]DayProgress, 0, weeklyDays)
	index := make(map[string]int, weeklyDays)
	for i := weeklyDays - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)
		key := date.Format(time.DateOnly)
		index[key] = len(out)
		out = append(out, DayProgress{Date: key, Day: date.Weekday().String()[:3]})
	}

	for _, plan := range plans {
		for i := range plan.Sessions {
			session := &plan.Sessions[i]
			if session.Date == nil {
				continue
			}
			pos, ok := index[session.Date.UTC().Format(time.DateOnly)]
			if !ok {
				continue
			}
			out[pos].Scheduled++
			if session.IsCompleted() {
				out[pos].Completed++
			}
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
