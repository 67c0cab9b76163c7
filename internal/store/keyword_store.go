package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Get returns the subscriber array of a keyword row.
func (s *PostgresStore) Get(ctx context.Context, keyword string) ([]string, bool, error) {
	var subs []string
	err := s.pool.QueryRow(ctx, `
		SELECT subscribers FROM keywords WHERE keyword = $1
	`, keyword).Scan(&subs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying keyword: %w", err)
	}
	if subs == nil {
		subs = []string{}
	}
	return subs, true, nil
}

// UnionSubscriber upserts the keyword row. The conflict branch runs under the
// row lock, so concurrent unions on one keyword never lose an update.
func (s *PostgresStore) UnionSubscriber(ctx context.Context, keyword, subscriberID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO keywords (keyword, subscribers)
		VALUES ($1, ARRAY[$2::text])
		ON CONFLICT (keyword) DO UPDATE
		SET subscribers = array_append(keywords.subscribers, $2::text),
		    updated_at = NOW()
		WHERE NOT ($2::text = ANY(keywords.subscribers))
	`, keyword, subscriberID)
	if err != nil {
		return fmt.Errorf("adding subscriber: %w", err)
	}
	return nil
}

// RemoveSubscriber strips the subscriber from the row, if both exist. The row
// itself is kept even when the array becomes empty.
func (s *PostgresStore) RemoveSubscriber(ctx context.Context, keyword, subscriberID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE keywords
		SET subscribers = array_remove(subscribers, $2::text),
		    updated_at = NOW()
		WHERE keyword = $1 AND $2::text = ANY(subscribers)
	`, keyword, subscriberID)
	if err != nil {
		return fmt.Errorf("removing subscriber: %w", err)
	}
	return nil
}
