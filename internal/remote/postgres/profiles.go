package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/julianstephens/brahmapath/internal/models"
	"github.com/julianstephens/brahmapath/internal/remote"
)

const (
	upsertProfileQuery = `INSERT INTO profiles (id, email, age, reason, start_date, current_day, unlocked_badges, journal_entries, has_paid, is_onboarded, last_completion_time, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, age = EXCLUDED.age, reason = EXCLUDED.reason, start_date = EXCLUDED.start_date,
current_day = EXCLUDED.current_day, unlocked_badges = EXCLUDED.unlocked_badges, journal_entries = EXCLUDED.journal_entries,
has_paid = EXCLUDED.has_paid, is_onboarded = EXCLUDED.is_onboarded, last_completion_time = EXCLUDED.last_completion_time, updated_at = now();`
	getProfileQuery = `SELECT id, email, age, reason, start_date, current_day, unlocked_badges, journal_entries, has_paid, is_onboarded, last_completion_time FROM profiles WHERE id = $1;`
)

func (s *Store) Upsert(ctx context.Context, row remote.Row) error {
	entries, err := encodeEntries(row.JournalEntries)
	if err != nil {
		return err
	}
	badges := row.UnlockedBadges
	if badges == nil {
		badges = []string{}
	}
	_, err = s.conn.Exec(ctx, upsertProfileQuery,
		row.ID,
		row.Email,
		row.Age,
		row.Reason,
		row.StartDate,
		row.CurrentDay,
		badges,
		entries,
		row.HasPaid,
		row.IsOnboarded,
		row.LastCompletionTime,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// FK violation: no such account
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return remote.ErrNoSession
		}
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (remote.Row, error) {
	var (
		row     remote.Row
		entries []byte
	)
	err := s.conn.QueryRow(ctx, getProfileQuery, id).Scan(
		&row.ID,
		&row.Email,
		&row.Age,
		&row.Reason,
		&row.StartDate,
		&row.CurrentDay,
		&row.UnlockedBadges,
		&entries,
		&row.HasPaid,
		&row.IsOnboarded,
		&row.LastCompletionTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return remote.Row{}, remote.ErrProfileNotFound
		}
		return remote.Row{}, fmt.Errorf("fetching profile: %w", err)
	}
	row.JournalEntries = map[int]models.JournalEntry{}
	if len(entries) > 0 {
		if err := json.Unmarshal(entries, &row.JournalEntries); err != nil {
			return remote.Row{}, fmt.Errorf("decoding journal entries: %w", err)
		}
	}
	return row, nil
}

// Update writes only the fields set in patch.
func (s *Store) Update(ctx context.Context, id string, patch remote.Patch) error {
	if patch.Empty() {
		return nil
	}
	query, args, err := buildUpdate(id, patch)
	if err != nil {
		return err
	}
	ct, err := s.conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return remote.ErrProfileNotFound
	}
	return nil
}

func buildUpdate(id string, patch remote.Patch) (string, []any, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.CurrentDay != nil {
		add("current_day", *patch.CurrentDay)
	}
	if patch.UnlockedBadges != nil {
		add("unlocked_badges", patch.UnlockedBadges)
	}
	if patch.JournalEntries != nil {
		entries, err := encodeEntries(patch.JournalEntries)
		if err != nil {
			return "", nil, err
		}
		add("journal_entries", entries)
	}
	if patch.HasPaid != nil {
		add("has_paid", *patch.HasPaid)
	}
	if patch.LastCompletionTime != nil {
		add("last_completion_time", *patch.LastCompletionTime)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE profiles SET %s, updated_at = now() WHERE id = $%d;", strings.Join(sets, ", "), len(args))
	return query, args, nil
}

func encodeEntries(entries map[int]models.JournalEntry) ([]byte, error) {
	if entries == nil {
		entries = map[int]models.JournalEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding journal entries: %w", err)
	}
	return b, nil
}
