package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"TrendScanner/internal/domain"
	"TrendScanner/internal/ports"
)

// PostgresRepository persists finished selections into Postgres. Only the
// final phrases and the run report cross this boundary; raw records never do.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SelectionRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveSelection writes the run row and its phrases in one transaction.
func (r *PostgresRepository) SaveSelection(ctx context.Context, report domain.PipelineReport, selection domain.FinalSelection) error {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	runInsert := r.builder.
		Insert("trend_runs").
		Columns("run_id", "started_at", "finished_at", "status").
		Values(report.RunID, report.StartedAt, report.FinishedAt, string(report.Overall))

	query, args, err := runInsert.ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	categories := make([]string, 0, len(selection))
	for category := range selection {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	phraseInsert := r.builder.
		Insert("trend_phrases").
		Columns("run_id", "category", "position", "word", "frequency", "source")
	rows := 0
	for _, category := range categories {
		for position, phrase := range selection[category] {
			phraseInsert = phraseInsert.Values(
				report.RunID, category, position, phrase.Text, phrase.Frequency, phrase.OriginSource,
			)
			rows++
		}
	}

	if rows > 0 {
		query, args, err = phraseInsert.ToSql()
		if err != nil {
			return fmt.Errorf("build phrase insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert phrases: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit selection: %w", err)
	}

	return nil
}
