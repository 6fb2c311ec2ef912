package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/artrogue/artrogue/internal/model"
)

// SearchRepository persists the search history. Go interfaces are implicit —
// the sqlite implementation below satisfies it, and tests can substitute
// their own fake without importing anything from here.
type SearchRepository interface {
	Create(ctx context.Context, rec *model.SearchRecord) error
	Recent(ctx context.Context, limit int) ([]model.SearchRecord, error)
	Count(ctx context.Context) (int64, error)
	CountByMuseum(ctx context.Context, museum model.Museum) (int64, error)
}

type sqliteSearchRepository struct {
	db *sqlx.DB
}

// NewSearchRepository creates a SQLite-backed SearchRepository.
func NewSearchRepository(db *sqlx.DB) SearchRepository {
	return &sqliteSearchRepository{db: db}
}

func (r *sqliteSearchRepository) Create(ctx context.Context, rec *model.SearchRecord) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO searches (museum, query, result_count)
		VALUES (:museum, :query, :result_count)
	`, rec)
	if err != nil {
		return fmt.Errorf("creating search record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

func (r *sqliteSearchRepository) Recent(ctx context.Context, limit int) ([]model.SearchRecord, error) {
	var recs []model.SearchRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM searches ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent searches: %w", err)
	}
	return recs, nil
}

func (r *sqliteSearchRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM searches")
	return count, err
}

func (r *sqliteSearchRepository) CountByMuseum(ctx context.Context, museum model.Museum) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM searches WHERE museum = ?", museum)
	return count, err
}

// ChatCallRepository handles persistence of LLM call tracking.
type ChatCallRepository interface {
	Create(ctx context.Context, call *model.ChatCall) error
	Count(ctx context.Context) (int64, error)
	CountFailed(ctx context.Context) (int64, error)
}

type sqliteChatCallRepository struct {
	db *sqlx.DB
}

// NewChatCallRepository creates a SQLite-backed ChatCallRepository.
func NewChatCallRepository(db *sqlx.DB) ChatCallRepository {
	return &sqliteChatCallRepository{db: db}
}

func (r *sqliteChatCallRepository) Create(ctx context.Context, call *model.ChatCall) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO chat_calls (session_id, provider, model, success, duration_ms)
		VALUES (:session_id, :provider, :model, :success, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating chat call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteChatCallRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM chat_calls")
	return count, err
}

func (r *sqliteChatCallRepository) CountFailed(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM chat_calls WHERE success = 0")
	return count, err
}
