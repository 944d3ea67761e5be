package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"trip_planner/internal/domain"
)

func valJSON(v any) (any, error) {
	switch x := v.(type) {
	case *domain.UserPreferences:
		if x == nil {
			return nil, nil
		}
	case *domain.TripPlan:
		if x == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

type scanner interface {
	Scan(dest ...any) error
}

func (r *Repo) Create(ctx context.Context, s domain.Session) error {
	args, err := sessionArgs(s)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertSessionSQL,
		s.ID, args.prefs, args.trip, args.saved, s.StatusMessage, s.CreatedAt, s.UpdatedAt)
	return err
}

// Update locks the row, hands a decoded copy to fn and writes the result back
// in the same transaction.
func (r *Repo) Update(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Session{}, err
	}
	defer func() { _ = tx.Rollback() }()

	s, err := scanSession(tx.QueryRowContext(ctx, selectSessionForUpdateSQL, id))
	if err != nil {
		return domain.Session{}, err
	}
	if err := fn(&s); err != nil {
		return domain.Session{}, err
	}
	s.ID = id

	args, err := sessionArgs(s)
	if err != nil {
		return domain.Session{}, err
	}
	if _, err := tx.ExecContext(ctx, updateSessionSQL,
		args.prefs, args.trip, args.saved, s.StatusMessage, s.UpdatedAt, id); err != nil {
		return domain.Session{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteSessionSQL, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) LogMiss(ctx context.Context, userName string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, userName, status, reason)
	return err
}

func (r *Repo) Get(ctx context.Context, id string) (domain.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx, getSessionSQL, id))
}

type rowArgs struct {
	prefs, trip, saved any
}

func sessionArgs(s domain.Session) (rowArgs, error) {
	var a rowArgs
	var err error
	if a.prefs, err = valJSON(s.Preferences); err != nil {
		return a, fmt.Errorf("encode preferences: %w", err)
	}
	if a.trip, err = valJSON(s.Trip); err != nil {
		return a, fmt.Errorf("encode trip: %w", err)
	}
	saved := s.SavedPOIIDs
	if saved == nil {
		saved = []string{}
	}
	if a.saved, err = valJSON(saved); err != nil {
		return a, fmt.Errorf("encode saved ids: %w", err)
	}
	return a, nil
}

func scanSession(row scanner) (domain.Session, error) {
	var s domain.Session
	var prefsRaw, tripRaw, savedRaw []byte
	if err := row.Scan(&s.ID, &prefsRaw, &tripRaw, &savedRaw, &s.StatusMessage, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, err
	}
	if len(prefsRaw) > 0 {
		var p domain.UserPreferences
		if err := json.Unmarshal(prefsRaw, &p); err != nil {
			return domain.Session{}, fmt.Errorf("decode preferences: %w", err)
		}
		s.Preferences = &p
	}
	if len(tripRaw) > 0 {
		var t domain.TripPlan
		if err := json.Unmarshal(tripRaw, &t); err != nil {
			return domain.Session{}, fmt.Errorf("decode trip: %w", err)
		}
		s.Trip = &t
	}
	s.SavedPOIIDs = []string{}
	if len(savedRaw) > 0 {
		if err := json.Unmarshal(savedRaw, &s.SavedPOIIDs); err != nil {
			return domain.Session{}, fmt.Errorf("decode saved ids: %w", err)
		}
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
