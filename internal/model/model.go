package model

import (
	"errors"
	"golang.org/x/exp/slices"
	"strings"
	"time"
)

type Mealtime string

const (
	Breakfast Mealtime = "breakfast"
	Lunch     Mealtime = "lunch"
	Dinner    Mealtime = "dinner"
	Everyday  Mealtime = "everyday"
)

var Mealtimes = []Mealtime{Breakfast, Lunch, Dinner, Everyday}

var (
	ErrMissingDiningHall = errors.New("dining hall is required")
	ErrInvalidDate       = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidMealtime   = errors.New("invalid mealtime")
)

// ParseMealtime maps form input onto a mealtime. Anything unrecognised falls
// back to everyday, which is what the search form selects by default.
func ParseMealtime(s string) Mealtime {
	m := Mealtime(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Mealtimes, m) {
		return m
	}
	return Everyday
}

func (m Mealtime) Valid() bool {
	return slices.Contains(Mealtimes, m)
}

type MenuItem struct {
	ID          string `json:"id"`
	Meal        string `json:"meal"`
	IsPreferred bool   `json:"isPreferred"`
}

// Toggled returns the item with its preference flag flipped.
func (i MenuItem) Toggled() MenuItem {
	i.IsPreferred = !i.IsPreferred
	return i
}

type MealQuery struct {
	DiningHall string
	Date       string
	Mealtime   Mealtime
}

func NormalizeDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func (q MealQuery) Validate() error {
	if strings.TrimSpace(q.DiningHall) == "" {
		return ErrMissingDiningHall
	}
	if _, err := time.Parse(time.DateOnly, q.Date); err != nil {
		return ErrInvalidDate
	}
	if !q.Mealtime.Valid() {
		return ErrInvalidMealtime
	}
	return nil
}
