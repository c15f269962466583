package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// errNotFound is returned by store methods when the requested row does not
// exist (or belongs to another user).
var errNotFound = errors.New("not found")

// store is the persistence surface the handlers depend on. pgStore is the
// production implementation; tests use an in-memory one.
type store interface {
	userByUsername(ctx context.Context, username string) (user, error)
	userIDByToken(ctx context.Context, token string) (int, error)

	userDetails(ctx context.Context, userID int) (userDetails, error)
	upsertUserDetails(ctx context.Context, d userDetails) (userDetails, error)
	userGoals(ctx context.Context, userID int) (userGoals, error)
	upsertUserGoals(ctx context.Context, g userGoals) (userGoals, error)

	mealLogs(ctx context.Context, userID int, date string) ([]mealLog, error)
	mealTotalsByDay(ctx context.Context, userID int, start, end string) ([]dayTotals, error)
	createMealLog(ctx context.Context, m mealLog) (mealLog, error)
	updateMealLog(ctx context.Context, userID, id int, body updateMealLogRequest) (mealLog, error)
	deleteMealLog(ctx context.Context, userID, id int) error

	workoutLogs(ctx context.Context, userID int, start, end, exerciseType string) ([]workoutLog, error)
	createWorkoutLog(ctx context.Context, w workoutLog) (workoutLog, error)
	deleteWorkoutLog(ctx context.Context, userID, id int) error
	workoutProgression(ctx context.Context, userID int, exerciseType string) ([]progressionPoint, error)

	restDays(ctx context.Context, userID int, start, end string) ([]restDay, error)
	toggleRestDay(ctx context.Context, userID int, date string) (bool, error)
}

var _ store = (*pgStore)(nil)

type pgStore struct {
	db *pgxpool.Pool
}

func newPgStore(db *pgxpool.Pool) *pgStore {
	return &pgStore{db: db}
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// pgx.ErrNoRows is translated to errNotFound; other query and scan errors are
// logged for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	var zero T
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Errorf("[queryOne] query error: %v", err)
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, errNotFound
	}
	if err != nil {
		log.Errorf("[queryOne] scan error: %v", err)
		return zero, err
	}
	return result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Errorf("[queryMany] query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Errorf("[queryMany] scan error: %v", err)
	}
	return results, err
}

// execOwned runs a DELETE scoped to (id, user_id) and reports errNotFound
// when nothing matched.
func (s *pgStore) execOwned(ctx context.Context, sql string, userID, id int) error {
	tag, err := s.db.Exec(ctx, sql, pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// newDBPool creates a connection pool. A pool (not a single conn) survives the
// hosted database closing idle connections.
func newDBPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" errors
	// from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

/* ─── Users ──────────────────────────────────────────────────────────── */

func (s *pgStore) userByUsername(ctx context.Context, username string) (user, error) {
	return queryOne[user](s.db, ctx,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
}

func (s *pgStore) userIDByToken(ctx context.Context, token string) (int, error) {
	var userID int
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE auth_token = $1", token).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, errNotFound
	}
	return userID, err
}

/* ─── Details & goals ────────────────────────────────────────────────── */

func (s *pgStore) userDetails(ctx context.Context, userID int) (userDetails, error) {
	return queryOne[userDetails](s.db, ctx,
		"SELECT * FROM user_details WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

func (s *pgStore) upsertUserDetails(ctx context.Context, d userDetails) (userDetails, error) {
	return queryOne[userDetails](s.db, ctx,
		`INSERT INTO user_details (user_id, age, weight_kg, height_cm, sex, activity_level)
		 VALUES (@userID, @age, @weightKG, @heightCM, @sex, @activityLevel)
		 ON CONFLICT (user_id) DO UPDATE SET
			age            = EXCLUDED.age,
			weight_kg      = EXCLUDED.weight_kg,
			height_cm      = EXCLUDED.height_cm,
			sex            = EXCLUDED.sex,
			activity_level = EXCLUDED.activity_level,
			updated_at     = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": d.UserID, "age": d.Age, "weightKG": d.WeightKG,
			"heightCM": d.HeightCM, "sex": d.Sex, "activityLevel": d.ActivityLevel,
		})
}

func (s *pgStore) userGoals(ctx context.Context, userID int) (userGoals, error) {
	return queryOne[userGoals](s.db, ctx,
		"SELECT * FROM user_goals WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
}

func (s *pgStore) upsertUserGoals(ctx context.Context, g userGoals) (userGoals, error) {
	return queryOne[userGoals](s.db, ctx,
		`INSERT INTO user_goals (user_id, goal_type, maintenance_calories, target_calories, protein_grams, carbs_grams, fat_grams)
		 VALUES (@userID, @goalType, @maintenance, @target, @protein, @carbs, @fat)
		 ON CONFLICT (user_id) DO UPDATE SET
			goal_type            = EXCLUDED.goal_type,
			maintenance_calories = EXCLUDED.maintenance_calories,
			target_calories      = EXCLUDED.target_calories,
			protein_grams        = EXCLUDED.protein_grams,
			carbs_grams          = EXCLUDED.carbs_grams,
			fat_grams            = EXCLUDED.fat_grams,
			updated_at           = now()
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": g.UserID, "goalType": g.GoalType, "maintenance": g.MaintenanceCalories,
			"target": g.TargetCalories, "protein": g.ProteinGrams, "carbs": g.CarbsGrams, "fat": g.FatGrams,
		})
}

/* ─── Meal log ───────────────────────────────────────────────────────── */

func (s *pgStore) mealLogs(ctx context.Context, userID int, date string) ([]mealLog, error) {
	return queryMany[mealLog](s.db, ctx,
		`SELECT * FROM meal_logs
		 WHERE user_id = @userID AND logged_at = @date
		 ORDER BY created_at`,
		pgx.NamedArgs{"userID": userID, "date": date})
}

func (s *pgStore) mealTotalsByDay(ctx context.Context, userID int, start, end string) ([]dayTotals, error) {
	return queryMany[dayTotals](s.db, ctx,
		`SELECT
			logged_at AS date,
			SUM(calories)  AS calories,
			SUM(protein_g) AS protein_g,
			SUM(carbs_g)   AS carbs_g,
			SUM(fat_g)     AS fat_g
		 FROM meal_logs
		 WHERE user_id = @userID AND logged_at >= @start AND logged_at <= @end
		 GROUP BY logged_at
		 ORDER BY logged_at ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

func (s *pgStore) createMealLog(ctx context.Context, m mealLog) (mealLog, error) {
	return queryOne[mealLog](s.db, ctx,
		`INSERT INTO meal_logs (user_id, logged_at, meal_name, meal_type, calories, protein_g, carbs_g, fat_g)
		 VALUES (@userID, @loggedAt, @mealName, @mealType, @calories, @proteinG, @carbsG, @fatG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": m.UserID, "loggedAt": m.LoggedAt.Format("2006-01-02"),
			"mealName": m.MealName, "mealType": m.MealType, "calories": m.Calories,
			"proteinG": m.ProteinG, "carbsG": m.CarbsG, "fatG": m.FatG,
		})
}

// updateMealLog uses COALESCE so omitted fields keep their current value.
func (s *pgStore) updateMealLog(ctx context.Context, userID, id int, body updateMealLogRequest) (mealLog, error) {
	return queryOne[mealLog](s.db, ctx,
		`UPDATE meal_logs SET
			logged_at = COALESCE(@loggedAt, logged_at),
			meal_name = COALESCE(@mealName, meal_name),
			meal_type = COALESCE(@mealType, meal_type),
			calories  = COALESCE(@calories, calories),
			protein_g = COALESCE(@proteinG, protein_g),
			carbs_g   = COALESCE(@carbsG, carbs_g),
			fat_g     = COALESCE(@fatG, fat_g),
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"loggedAt": body.LoggedAt, "mealName": body.MealName, "mealType": body.MealType,
			"calories": body.Calories, "proteinG": body.ProteinG, "carbsG": body.CarbsG, "fatG": body.FatG,
		})
}

func (s *pgStore) deleteMealLog(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, "DELETE FROM meal_logs WHERE id = @id AND user_id = @userID", userID, id)
}

/* ─── Workout log ────────────────────────────────────────────────────── */

// workoutLogs filters by exercise type only when one is given.
func (s *pgStore) workoutLogs(ctx context.Context, userID int, start, end, exerciseType string) ([]workoutLog, error) {
	return queryMany[workoutLog](s.db, ctx,
		`SELECT * FROM workout_logs
		 WHERE user_id = @userID AND logged_at >= @start AND logged_at <= @end
		   AND (@exerciseType = '' OR exercise_type = @exerciseType)
		 ORDER BY logged_at ASC, created_at ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end, "exerciseType": exerciseType})
}

func (s *pgStore) createWorkoutLog(ctx context.Context, w workoutLog) (workoutLog, error) {
	return queryOne[workoutLog](s.db, ctx,
		`INSERT INTO workout_logs (user_id, logged_at, exercise_type, sets, reps, weight_kg)
		 VALUES (@userID, @loggedAt, @exerciseType, @sets, @reps, @weightKG)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": w.UserID, "loggedAt": w.LoggedAt.Format("2006-01-02"),
			"exerciseType": w.ExerciseType, "sets": w.Sets, "reps": w.Reps, "weightKG": w.WeightKG,
		})
}

func (s *pgStore) deleteWorkoutLog(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, "DELETE FROM workout_logs WHERE id = @id AND user_id = @userID", userID, id)
}

func (s *pgStore) workoutProgression(ctx context.Context, userID int, exerciseType string) ([]progressionPoint, error) {
	return queryMany[progressionPoint](s.db, ctx,
		`SELECT
			logged_at                      AS date,
			MAX(weight_kg)                 AS best_weight_kg,
			SUM(sets * reps * weight_kg)   AS volume
		 FROM workout_logs
		 WHERE user_id = @userID AND exercise_type = @exerciseType
		 GROUP BY logged_at
		 ORDER BY logged_at ASC`,
		pgx.NamedArgs{"userID": userID, "exerciseType": exerciseType})
}

/* ─── Rest days ──────────────────────────────────────────────────────── */

func (s *pgStore) restDays(ctx context.Context, userID int, start, end string) ([]restDay, error) {
	return queryMany[restDay](s.db, ctx,
		`SELECT * FROM rest_days
		 WHERE user_id = @userID AND rest_date >= @start AND rest_date <= @end
		 ORDER BY rest_date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

// toggleRestDay removes the rest day if it exists and adds it otherwise. It
// reports whether the date is a rest day afterwards.
func (s *pgStore) toggleRestDay(ctx context.Context, userID int, date string) (bool, error) {
	args := pgx.NamedArgs{"userID": userID, "date": date}
	var added bool
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM rest_days WHERE user_id = @userID AND rest_date = @date", args)
		if err != nil {
			return err
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
		// ON CONFLICT covers a concurrent toggle that inserted first.
		_, err = tx.Exec(ctx,
			`INSERT INTO rest_days (user_id, rest_date) VALUES (@userID, @date)
			 ON CONFLICT (user_id, rest_date) DO NOTHING`, args)
		added = err == nil
		return err
	})
	if err != nil {
		log.Errorf("[toggleRestDay] %v", err)
		return false, err
	}
	return added, nil
}
