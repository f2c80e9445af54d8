package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"soundcraft/internal/config"
)

// Record is one persisted rendering session.
type Record struct {
	ID             int64
	Name           string
	State          string
	ParametersJSON string
	WAVPath        string
	MIDIPath       string
	LogPath        string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Preset is a named, reusable set of ritual variable assignments.
type Preset struct {
	Name           string
	ParametersJSON string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store manages session and preset persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the session database and applies
// migrations. The session directory is locked for the lifetime of the store
// so a second soundcraft process fails fast instead of corrupting state.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.SessionDir, "soundcraft.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !locked {
		return nil, errors.New("session directory is locked by another soundcraft process")
	}

	dbPath := filepath.Join(cfg.Paths.SessionDir, "sessions.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the directory lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

const recordColumns = `id, name, state, parameters_json, wav_path, midi_path, log_path, error_message, created_at, updated_at`

// NewSession inserts a session in its initial state and returns the stored
// record.
func (s *Store) NewSession(ctx context.Context, name, state string) (*Record, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sessions (name, state, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, state, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a session by identifier. A missing session returns nil
// without error.
func (s *Store) GetByID(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM sessions WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return record, nil
}

// GetByName fetches a session by its unique name.
func (s *Store) GetByName(ctx context.Context, name string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM sessions WHERE name = ?`, name)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by name: %w", err)
	}
	return record, nil
}

// Update persists changes to an existing session.
func (s *Store) Update(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record is nil")
	}
	record.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE sessions
         SET name = ?, state = ?, parameters_json = ?, wav_path = ?,
             midi_path = ?, log_path = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		record.Name,
		record.State,
		nullableString(record.ParametersJSON),
		nullableString(record.WAVPath),
		nullableString(record.MIDIPath),
		nullableString(record.LogPath),
		nullableString(record.ErrorMessage),
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// List returns all sessions, most recent first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM sessions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes a session by identifier and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear removes session records. When state is non-empty only records in
// that state are removed. Returns the number of records deleted.
func (s *Store) Clear(ctx context.Context, state string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if state == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM sessions`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE state = ?`, state)
	}
	if err != nil {
		return 0, fmt.Errorf("clear sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// SavePreset inserts or replaces a named preset.
func (s *Store) SavePreset(ctx context.Context, name, parametersJSON string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO presets (name, parameters_json, created_at, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(name) DO UPDATE SET parameters_json = excluded.parameters_json, updated_at = excluded.updated_at`,
		name, parametersJSON, timestamp, timestamp,
	)
	if err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	return nil
}

// GetPreset fetches a preset by name. A missing preset returns nil without
// error.
func (s *Store) GetPreset(ctx context.Context, name string) (*Preset, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT name, parameters_json, created_at, updated_at FROM presets WHERE name = ?`,
		name,
	)
	preset := &Preset{}
	var createdAt, updatedAt string
	err := row.Scan(&preset.Name, &preset.ParametersJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preset: %w", err)
	}
	if preset.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if preset.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return preset, nil
}

// ListPresets returns all presets ordered by name.
func (s *Store) ListPresets(ctx context.Context) ([]*Preset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, parameters_json, created_at, updated_at FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		preset := &Preset{}
		var createdAt, updatedAt string
		if err := rows.Scan(&preset.Name, &preset.ParametersJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		if preset.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		if preset.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, err
		}
		presets = append(presets, preset)
	}
	return presets, rows.Err()
}

// DeletePreset removes a preset by name and reports whether it existed.
func (s *Store) DeletePreset(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("delete preset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(scanner rowScanner) (*Record, error) {
	record := &Record{}
	var (
		parametersJSON sql.NullString
		wavPath        sql.NullString
		midiPath       sql.NullString
		logPath        sql.NullString
		errorMessage   sql.NullString
		createdAt      string
		updatedAt      string
	)
	err := scanner.Scan(
		&record.ID,
		&record.Name,
		&record.State,
		&parametersJSON,
		&wavPath,
		&midiPath,
		&logPath,
		&errorMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.ParametersJSON = parametersJSON.String
	record.WAVPath = wavPath.String
	record.MIDIPath = midiPath.String
	record.LogPath = logPath.String
	record.ErrorMessage = errorMessage.String
	if record.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if record.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return record, nil
}

func parseTimestamp(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
