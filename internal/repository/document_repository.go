package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository — кэш контентно-адресуемых документов метаданных.
// Содержимое по пути неизменяемо, поэтому записи не обновляются и не
// устаревают; таблицу можно очистить в любой момент без потери данных.
type DocumentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) GetDocument(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := r.db.GetContext(ctx, &body, `SELECT body FROM evidence_documents WHERE path = $1`, path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	return body, err
}

func (r *DocumentRepository) SaveDocument(ctx context.Context, path string, body []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO evidence_documents (path, body)
		VALUES ($1, $2)
		ON CONFLICT (path) DO NOTHING
	`, path, body)
	return err
}
