package main

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory store for handler tests. Setting failWith makes
// every data method return that error; user lookups keep working so requests
// still authenticate.
type memStore struct {
	mu sync.Mutex

	users      map[int]user
	details    map[int]userDetails
	goals      map[int]userGoals
	meals      map[int]mealLog
	workouts   map[int]workoutLog
	restDaySet map[restDayKey]restDay
	nextID     int

	failWith error
}

var _ store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:      map[int]user{},
		details:    map[int]userDetails{},
		goals:      map[int]userGoals{},
		meals:      map[int]mealLog{},
		workouts:   map[int]workoutLog{},
		restDaySet: map[restDayKey]restDay{},
	}
}

// restDayKey mirrors the UNIQUE (user_id, rest_date) constraint.
type restDayKey struct {
	userID int
	date   string
}

func (s *memStore) addUser(u user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// asDate drops the time of day like a Postgres date column does.
func asDate(d DateOnly) DateOnly {
	t, _ := time.Parse("2006-01-02", d.Format("2006-01-02"))
	return DateOnly{t}
}

func (s *memStore) newID() int {
	s.nextID++
	return s.nextID
}

func (s *memStore) userByUsername(_ context.Context, username string) (user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user{}, errNotFound
}

func (s *memStore) userIDByToken(_ context.Context, token string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.AuthToken == token {
			return u.ID, nil
		}
	}
	return 0, errNotFound
}

func (s *memStore) userDetails(_ context.Context, userID int) (userDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return userDetails{}, s.failWith
	}
	d, ok := s.details[userID]
	if !ok {
		return userDetails{}, errNotFound
	}
	return d, nil
}

func (s *memStore) upsertUserDetails(_ context.Context, d userDetails) (userDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return userDetails{}, s.failWith
	}
	now := time.Now()
	d.UpdatedAt = &now
	s.details[d.UserID] = d
	return d, nil
}

func (s *memStore) userGoals(_ context.Context, userID int) (userGoals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return userGoals{}, s.failWith
	}
	g, ok := s.goals[userID]
	if !ok {
		return userGoals{}, errNotFound
	}
	return g, nil
}

func (s *memStore) upsertUserGoals(_ context.Context, g userGoals) (userGoals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return userGoals{}, s.failWith
	}
	now := time.Now()
	g.UpdatedAt = &now
	s.goals[g.UserID] = g
	return g, nil
}

func (s *memStore) mealLogs(_ context.Context, userID int, date string) ([]mealLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []mealLog
	for _, m := range s.meals {
		if m.UserID == userID && m.LoggedAt.Format("2006-01-02") == date {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) mealTotalsByDay(_ context.Context, userID int, start, end string) ([]dayTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	byDate := map[string]*dayTotals{}
	for _, m := range s.meals {
		date := m.LoggedAt.Format("2006-01-02")
		if m.UserID != userID || date < start || date > end {
			continue
		}
		row, ok := byDate[date]
		if !ok {
			row = &dayTotals{Date: m.LoggedAt}
			byDate[date] = row
		}
		row.Calories += m.Calories
		row.ProteinG += m.ProteinG
		row.CarbsG += m.CarbsG
		row.FatG += m.FatG
	}
	out := make([]dayTotals, 0, len(byDate))
	for _, row := range byDate {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *memStore) createMealLog(_ context.Context, m mealLog) (mealLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return mealLog{}, s.failWith
	}
	now := time.Now()
	m.ID = s.newID()
	m.LoggedAt = asDate(m.LoggedAt)
	m.CreatedAt, m.UpdatedAt = &now, &now
	s.meals[m.ID] = m
	return m, nil
}

func (s *memStore) updateMealLog(_ context.Context, userID, id int, body updateMealLogRequest) (mealLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return mealLog{}, s.failWith
	}
	m, ok := s.meals[id]
	if !ok || m.UserID != userID {
		return mealLog{}, errNotFound
	}
	if body.LoggedAt != nil {
		t, err := time.Parse("2006-01-02", *body.LoggedAt)
		if err != nil {
			return mealLog{}, err
		}
		m.LoggedAt = DateOnly{t}
	}
	if body.MealName != nil {
		m.MealName = *body.MealName
	}
	if body.MealType != nil {
		m.MealType = *body.MealType
	}
	if body.Calories != nil {
		m.Calories = *body.Calories
	}
	if body.ProteinG != nil {
		m.ProteinG = *body.ProteinG
	}
	if body.CarbsG != nil {
		m.CarbsG = *body.CarbsG
	}
	if body.FatG != nil {
		m.FatG = *body.FatG
	}
	now := time.Now()
	m.UpdatedAt = &now
	s.meals[id] = m
	return m, nil
}

func (s *memStore) deleteMealLog(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	m, ok := s.meals[id]
	if !ok || m.UserID != userID {
		return errNotFound
	}
	delete(s.meals, id)
	return nil
}

func (s *memStore) workoutLogs(_ context.Context, userID int, start, end, exerciseType string) ([]workoutLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []workoutLog
	for _, w := range s.workouts {
		date := w.LoggedAt.Format("2006-01-02")
		if w.UserID != userID || date < start || date > end {
			continue
		}
		if exerciseType != "" && w.ExerciseType != exerciseType {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoggedAt.Equal(out[j].LoggedAt.Time) {
			return out[i].LoggedAt.Before(out[j].LoggedAt.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memStore) createWorkoutLog(_ context.Context, w workoutLog) (workoutLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return workoutLog{}, s.failWith
	}
	now := time.Now()
	w.ID = s.newID()
	w.LoggedAt = asDate(w.LoggedAt)
	w.CreatedAt = &now
	s.workouts[w.ID] = w
	return w, nil
}

func (s *memStore) deleteWorkoutLog(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	w, ok := s.workouts[id]
	if !ok || w.UserID != userID {
		return errNotFound
	}
	delete(s.workouts, id)
	return nil
}

func (s *memStore) workoutProgression(_ context.Context, userID int, exerciseType string) ([]progressionPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	byDate := map[string]*progressionPoint{}
	for _, w := range s.workouts {
		if w.UserID != userID || w.ExerciseType != exerciseType {
			continue
		}
		date := w.LoggedAt.Format("2006-01-02")
		p, ok := byDate[date]
		if !ok {
			p = &progressionPoint{Date: w.LoggedAt}
			byDate[date] = p
		}
		if w.WeightKG > p.BestWeightKG {
			p.BestWeightKG = w.WeightKG
		}
		p.Volume += float64(w.Sets*w.Reps) * w.WeightKG
	}
	out := make([]progressionPoint, 0, len(byDate))
	for _, p := range byDate {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *memStore) restDays(_ context.Context, userID int, start, end string) ([]restDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []restDay
	for k, d := range s.restDaySet {
		if k.userID == userID && k.date >= start && k.date <= end {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RestDate.Before(out[j].RestDate.Time) })
	return out, nil
}

func (s *memStore) toggleRestDay(_ context.Context, userID int, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	key := restDayKey{userID, date}
	if _, ok := s.restDaySet[key]; ok {
		delete(s.restDaySet, key)
		return false, nil
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, err
	}
	now := time.Now()
	s.restDaySet[key] = restDay{ID: s.newID(), UserID: userID, RestDate: DateOnly{t}, CreatedAt: &now}
	return true, nil
}
