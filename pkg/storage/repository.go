package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("key not found")

// Repository is a small JSON key-value store. Values are marshalled with encoding/json.
type Repository interface {
	Get(ctx context.Context, key string, target any) error
	Put(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Get(ctx context.Context, key string, target any) error {
	query := "SELECT value FROM kv_store WHERE key = $1"

	var raw []byte
	err := r.db.QueryRow(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		err := fmt.Errorf("could not read key %s: %w", key, err)
		log.Error(err)
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("could not decode value of %s: %w", key, err)
	}
	return nil
}

func (r *RepositoryImpl) Put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value of %s: %w", key, err)
	}

	query := `INSERT INTO kv_store (key, value, updated_at)
				VALUES ($1, $2, now())
				ON CONFLICT (key) DO UPDATE SET
					value = EXCLUDED.value,
					updated_at = EXCLUDED.updated_at`

	_, err = r.db.Exec(ctx, query, key, raw)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, key string) error {
	query := "DELETE FROM kv_store WHERE key = $1"
	_, err := r.db.Exec(ctx, query, key)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
