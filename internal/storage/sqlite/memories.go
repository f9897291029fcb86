package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sandevgo/selfbot/internal/core"
	"github.com/sandevgo/selfbot/pkg/log"
)

const searchLimit = 5

// stopWords are excluded from search tokenization. Short tokens (2 chars or
// fewer) are dropped as well.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "when": true,
	"what": true, "where": true, "who": true, "how": true, "do": true,
	"did": true, "does": true, "i": true, "my": true, "me": true,
	"you": true, "your": true, "get": true, "got": true,
}

type MemoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

func (r *MemoryRepo) Insert(ctx context.Context, rec core.MemoryRecord) (int64, error) {
	if rec.Confidence == 0 {
		rec.Confidence = 1.0
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO long_term_memory (owner_id, category, content, confidence_score, source)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.OwnerID, rec.Category, rec.Content, rec.Confidence, rec.Source,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert memory: %w", err)
	}
	return res.LastInsertId()
}

// Search ranks by match strength first: records containing the whole query
// as a substring score 2, records matching any single token score 1. Ties
// break on recency (higher id first). Results are capped at 5. An owner
// scope restricts results to that owner's records plus shared ones; without
// an owner the search is unscoped.
func (r *MemoryRepo) Search(ctx context.Context, query string, ownerID *int64) ([]core.MemoryRecord, error) {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil, nil
	}

	var conds []string
	var args []any
	for _, w := range strings.Fields(query) {
		w = strings.Trim(w, `.,;:!?"'`)
		if len(w) <= 2 || stopWords[w] {
			continue
		}
		conds = append(conds, "LOWER(content) LIKE ?")
		args = append(args, "%"+w+"%")
	}
	if len(conds) == 0 {
		// Every token was a stop word. Fall back to a whole-phrase match.
		conds = append(conds, "LOWER(content) LIKE ?")
		args = append(args, "%"+query+"%")
	}

	sqlQuery := fmt.Sprintf(`
		SELECT id, owner_id, category, content, confidence_score, source, created_at, last_accessed,
		       CASE WHEN LOWER(content) LIKE ? THEN 2 ELSE 1 END AS relevance
		FROM long_term_memory
		WHERE (%s)`, strings.Join(conds, " OR "))
	args = append([]any{"%" + query + "%"}, args...)

	if ownerID != nil {
		sqlQuery += " AND (owner_id = ? OR owner_id IS NULL)"
		args = append(args, *ownerID)
	}
	sqlQuery += fmt.Sprintf(" ORDER BY relevance DESC, id DESC LIMIT %d", searchLimit)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("memory search failed: %w", err)
	}
	defer rows.Close()

	var results []core.MemoryRecord
	for rows.Next() {
		var rec core.MemoryRecord
		var relevance int
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Category, &rec.Content,
			&rec.Confidence, &rec.Source, &rec.CreatedAt, &rec.LastAccessedAt, &relevance); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.touchAccessed(ctx, results)
	return results, nil
}

// touchAccessed bumps last_accessed on returned records. Best effort.
func (r *MemoryRepo) touchAccessed(ctx context.Context, records []core.MemoryRecord) {
	if len(records) == 0 {
		return
	}
	placeholders := make([]string, len(records))
	args := make([]any, len(records))
	for i, rec := range records {
		placeholders[i] = "?"
		args[i] = rec.ID
	}
	_, err := r.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE long_term_memory SET last_accessed = CURRENT_TIMESTAMP WHERE id IN (%s)",
			strings.Join(placeholders, ",")), args...)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to update memory access times")
	}
}

func (r *MemoryRepo) ListRecent(ctx context.Context, ownerID *int64, limit int) ([]core.MemoryRecord, error) {
	sqlQuery := `
		SELECT id, owner_id, category, content, confidence_score, source, created_at, last_accessed
		FROM long_term_memory`
	var args []any
	if ownerID != nil {
		sqlQuery += " WHERE owner_id = ? OR owner_id IS NULL"
		args = append(args, *ownerID)
	}
	sqlQuery += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	var results []core.MemoryRecord
	for rows.Next() {
		var rec core.MemoryRecord
		if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.Category, &rec.Content,
			&rec.Confidence, &rec.Source, &rec.CreatedAt, &rec.LastAccessedAt); err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM long_term_memory WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete memory %d: %w", id, err)
	}
	return nil
}
