package main

import "alcyxob/coaching-api/internal/domain"

func ex(name string, sets, reps int, rpe float64, notes string) domain.Exercise {
	return domain.Exercise{Name: name, Sets: sets, Reps: reps, RPE: &rpe, Notes: notes}
}

// PredefinedTemplates returns the built-in templates, one or more per category.
func PredefinedTemplates() []domain.Template {
	return []domain.Template{
		{
			Name:               "Fuerza Básico 3 días",
			Description:        "Full body three times a week around the main lifts.",
			PredefinedCategory: domain.CategoryBasicStrength,
			Sessions: []domain.Session{
				{Name: "Día A", Exercises: []domain.Exercise{
					ex("Back squat", 5, 5, 7, "Rest 3 min"),
					ex("Bench press", 5, 5, 7, "Rest 3 min"),
					ex("Barbell row", 3, 8, 7, ""),
				}},
				{Name: "Día B", Exercises: []domain.Exercise{
					ex("Deadlift", 3, 5, 7, "Rest 3-4 min"),
					ex("Overhead press", 5, 5, 7, ""),
					ex("Pull-up", 3, 6, 8, "Add load once 3x8 is easy"),
				}},
				{Name: "Día C", Exercises: []domain.Exercise{
					ex("Front squat", 4, 6, 7, ""),
					ex("Incline bench press", 4, 6, 7, ""),
					ex("Romanian deadlift", 3, 8, 7, ""),
				}},
			},
		},
		{
			Name:               "Hipertrofia Torso/Pierna",
			Description:        "Upper/lower split, four sessions a week in moderate rep ranges.",
			PredefinedCategory: domain.CategoryHypertrophy,
			Sessions: []domain.Session{
				{Name: "Torso 1", Exercises: []domain.Exercise{
					ex("Bench press", 4, 8, 8, ""),
					ex("Lat pulldown", 4, 10, 8, ""),
					ex("Dumbbell shoulder press", 3, 12, 8, ""),
					ex("Cable row", 3, 12, 8, ""),
				}},
				{Name: "Pierna 1", Exercises: []domain.Exercise{
					ex("Back squat", 4, 8, 8, ""),
					ex("Leg curl", 3, 12, 8, ""),
					ex("Walking lunge", 3, 12, 8, "Reps per leg"),
					ex("Calf raise", 4, 15, 9, ""),
				}},
				{Name: "Torso 2", Exercises: []domain.Exercise{
					ex("Incline dumbbell press", 4, 10, 8, ""),
					ex("Chest-supported row", 4, 10, 8, ""),
					ex("Lateral raise", 3, 15, 9, ""),
					ex("Biceps curl", 3, 12, 9, ""),
				}},
				{Name: "Pierna 2", Exercises: []domain.Exercise{
					ex("Romanian deadlift", 4, 8, 8, ""),
					ex("Leg press", 4, 12, 8, ""),
					ex("Leg extension", 3, 15, 9, ""),
				}},
			},
		},
		{
			Name:               "Resistencia en circuito",
			Description:        "Two circuits a week with short rest to build work capacity.",
			PredefinedCategory: domain.CategoryEndurance,
			Sessions: []domain.Session{
				{Name: "Circuito 1", Exercises: []domain.Exercise{
					ex("Goblet squat", 3, 20, 6, "30 s rest between exercises"),
					ex("Push-up", 3, 15, 6, ""),
					ex("Kettlebell swing", 3, 20, 6, ""),
					ex("Plank", 3, 1, 6, "45 s hold"),
				}},
				{Name: "Circuito 2", Exercises: []domain.Exercise{
					ex("Step-up", 3, 15, 6, "Reps per leg"),
					ex("Inverted row", 3, 15, 6, ""),
					ex("Dumbbell thruster", 3, 15, 6, ""),
					ex("Mountain climber", 3, 30, 6, ""),
				}},
			},
		},
	}
}
