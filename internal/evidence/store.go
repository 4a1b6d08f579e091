// Package evidence — клиент контентно-адресуемого хранилища метаданных
// задач. Публикация и чтение идут через внешние HTTP-шлюзы; сам движок
// документы не хранит, опциональный кэш лишь повторяет неизменяемое
// содержимое по его контентному пути.
package evidence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/glossa-labs/glossa-backend/internal/logger"
	"github.com/glossa-labs/glossa-backend/internal/models"
	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
	"github.com/glossa-labs/glossa-backend/internal/repository"
)

// DocumentCache — опциональный кэш документов по контентному пути.
type DocumentCache interface {
	GetDocument(ctx context.Context, path string) ([]byte, error)
	SaveDocument(ctx context.Context, path string, body []byte) error
}

type Store struct {
	api     *resty.Client
	gateway string
	cache   DocumentCache
}

// NewStore создаёт клиент хранилища. apiURL — endpoint публикации,
// gatewayURL — база для чтения по пути. cache может быть nil.
func NewStore(apiURL, gatewayURL string, cache DocumentCache) *Store {
	client := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(30 * time.Second)

	return &Store{
		api:     client,
		gateway: strings.TrimRight(gatewayURL, "/"),
		cache:   cache,
	}
}

type publishResponse struct {
	Path string `json:"path"`
}

// Publish загружает документ и возвращает его контентный путь.
func (s *Store) Publish(ctx context.Context, filename string, content []byte) (string, error) {
	var body publishResponse
	resp, err := s.api.R().
		SetContext(ctx).
		SetFileReader("file", filename, strings.NewReader(string(content))).
		SetResult(&body).
		Post("/add")
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeEvidence, fmt.Sprintf("не удалось опубликовать %s", filename))
	}
	if resp.IsError() || body.Path == "" {
		return "", apperror.New(apperror.ErrCodeEvidence, fmt.Sprintf("хранилище ответило %d на публикацию %s", resp.StatusCode(), filename))
	}
	return body.Path, nil
}

// FileURL возвращает URL чтения по контентному пути.
func (s *Store) FileURL(path string) string {
	return s.gateway + "/" + strings.TrimLeft(path, "/")
}

// metaEvidenceDocument — обёртка документа метаданных: алиасы сторон
// плюс собственно метаданные задачи.
type metaEvidenceDocument struct {
	Aliases  map[string]string   `json:"aliases,omitempty"`
	Metadata models.TaskMetadata `json:"metadata"`
}

// PublishMetadata собирает и публикует документ метаданных задачи,
// пометив заказчика алиасом Requester.
func (s *Store) PublishMetadata(ctx context.Context, requester string, metadata models.TaskMetadata) (string, error) {
	doc := metaEvidenceDocument{
		Aliases:  map[string]string{requester: "Requester"},
		Metadata: metadata,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", apperror.Wrap(err, apperror.ErrCodeEvidence, "не удалось сериализовать метаданные задачи")
	}
	return s.Publish(ctx, "translation-evidence.json", body)
}

// FetchMetadata читает документ метаданных по контентному пути.
// Отсутствие или недоступность документа — жёсткая ошибка этой задачи.
func (s *Store) FetchMetadata(ctx context.Context, path string) (*models.TaskMetadata, error) {
	body, err := s.fetchDocument(ctx, path)
	if err != nil {
		return nil, err
	}

	var doc metaEvidenceDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeEvidence, fmt.Sprintf("документ %s не является метаданными задачи", path))
	}
	return &doc.Metadata, nil
}

func (s *Store) fetchDocument(ctx context.Context, path string) ([]byte, error) {
	if s.cache != nil {
		cached, err := s.cache.GetDocument(ctx, path)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repository.ErrDocumentNotFound) && logger.Log != nil {
			// Сбой кэша не должен ломать чтение: идём в хранилище.
			logger.Log.WithError(err).WithField("path", path).Warn("evidence: кэш документов недоступен")
		}
	}

	resp, err := s.api.R().
		SetContext(ctx).
		Get(s.FileURL(path))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeEvidence, fmt.Sprintf("не удалось получить документ %s", path))
	}
	if resp.IsError() {
		return nil, apperror.New(apperror.ErrCodeEvidence, fmt.Sprintf("хранилище ответило %d на чтение %s", resp.StatusCode(), path))
	}
	body := resp.Body()

	if s.cache != nil {
		if err := s.cache.SaveDocument(ctx, path, body); err != nil && logger.Log != nil {
			logger.Log.WithError(err).WithField("path", path).Warn("evidence: не удалось сохранить документ в кэш")
		}
	}
	return body, nil
}
