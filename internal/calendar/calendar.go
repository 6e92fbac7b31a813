// Package calendar projects training plans onto calendar events.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"alcyxob/coaching-api/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PlanColor        = "#5B4FFF"
	SessionColor     = "#333369"
	SessionTextColor = "#fff"

	// DefaultAthleteName labels events whose athlete is unknown to the caller.
	DefaultAthleteName = "My plan"

	dateLayout = "2006-01-02"
)

type EventType string

const (
	EventPlan    EventType = "plan"
	EventSession EventType = "session"
)

// Event is a calendar entry in the shape calendar widgets consume.
// Dates are yyyy-MM-dd in UTC.
type Event struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Start         string        `json:"start"`
	End           string        `json:"end,omitempty"`
	AllDay        bool          `json:"allDay"`
	Color         string        `json:"color"`
	TextColor     string        `json:"textColor,omitempty"`
	Display       string        `json:"display,omitempty"`
	ExtendedProps ExtendedProps `json:"extendedProps"`
}

type ExtendedProps struct {
	Type        EventType           `json:"type"`
	PlanID      primitive.ObjectID  `json:"planId"`
	SessionID   *primitive.ObjectID `json:"sessionId,omitempty"`
	PlanName    string              `json:"planName,omitempty"`
	AthleteName string              `json:"athleteName,omitempty"`

	// Payload of the underlying document so clients need no second fetch.
	Plan    *domain.TrainingPlan `json:"plan,omitempty"`
	Session *domain.Session      `json:"session,omitempty"`
}

// Range limits projection to events overlapping [From, To]. Nil bounds are open.
type Range struct {
	From *time.Time
	To   *time.Time
}

// Project turns plans into background plan events followed by session events.
// names maps athlete ids to display names; now fills in missing dates.
func Project(plans []domain.TrainingPlan, names map[primitive.ObjectID]string, now time.Time, rng Range) []Event {
	planEvents := make([]Event, 0, len(plans))
	var sessionEvents []Event

	for i := range plans {
		plan := &plans[i]
		athlete := athleteName(names, plan.AthleteID)

		start := dayOf(now)
		if plan.StartDate != nil {
			start = dayOf(*plan.StartDate)
		}
		end := start
		if plan.EndDate != nil {
			end = dayOf(*plan.EndDate)
		}

		if rng.overlaps(start, end) {
			ev := Event{
				ID:      plan.ID.Hex(),
				Title:   fmt.Sprintf("%s: %s", athlete, strings.ToUpper(plan.Name)),
				Color:   PlanColor,
				Display: "background",
				ExtendedProps: ExtendedProps{
					Type:        EventPlan,
					PlanID:      plan.ID,
					PlanName:    plan.Name,
					AthleteName: athlete,
					Plan:        plan,
				},
			}
			setSpan(&ev, start, end)
			planEvents = append(planEvents, ev)
		}

		for j := range plan.Sessions {
			session := &plan.Sessions[j]
			date := dayOf(now)
			if session.Date != nil {
				date = dayOf(*session.Date)
			}
			if !rng.overlaps(date, date) {
				continue
			}
			sessionID := session.ID
			ev := Event{
				ID:        session.ID.Hex(),
				Title:     fmt.Sprintf("%s: %s", athlete, session.Name),
				Color:     SessionColor,
				TextColor: SessionTextColor,
				ExtendedProps: ExtendedProps{
					Type:        EventSession,
					PlanID:      plan.ID,
					SessionID:   &sessionID,
					PlanName:    plan.Name,
					AthleteName: athlete,
					Session:     session,
				},
			}
			setSpan(&ev, date, date)
			sessionEvents = append(sessionEvents, ev)
		}
	}

	return append(planEvents, sessionEvents...)
}

// setSpan fills Start/End. A zero-length span is a single all-day event without End.
func setSpan(ev *Event, start, end time.Time) {
	ev.Start = start.Format(dateLayout)
	ev.AllDay = true
	if !end.After(start) {
		return
	}
	ev.End = end.Format(dateLayout)
}

func athleteName(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return DefaultAthleteName
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r Range) overlaps(start, end time.Time) bool {
	if r.From != nil && end.Before(dayOf(*r.From)) {
		return false
	}
	if r.To != nil && start.After(dayOf(*r.To)) {
		return false
	}
	return true
}
