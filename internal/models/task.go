package models

import (
	"math/big"
	"time"
)

// Task — каноническая запись задачи на перевод, собранная из сырого
// состояния контракта, журналов событий и off-chain метаданных.
// Движок нигде её не хранит: запись пересобирается при каждом чтении.
type Task struct {
	// ID — внешний составной идентификатор ("<contractKey>/<localID>",
	// для нативного деплоймента — голый localID).
	ID          string
	ContractKey string
	LocalID     uint64

	Status    TaskStatus
	Requester string
	// Translator пуст, пока задача никому не назначена.
	Translator string
	// Parties индексируется значениями TaskParty.
	Parties [3]string

	MinPrice          *big.Int
	MaxPrice          *big.Int
	RequesterDeposit  *big.Int
	SumDeposit        *big.Int
	CreatedAt         time.Time
	LastInteraction   time.Time
	SubmissionTimeout time.Duration
	ReviewTimeout     time.Duration
	// Deadline — крайний срок сдачи перевода: CreatedAt + SubmissionTimeout.
	Deadline time.Time

	// Translation — контентный указатель на сданный перевод,
	// восстановленный из события TranslationSubmitted.
	Translation string

	HasDispute bool
	DisputeID  uint64

	Metadata TaskMetadata

	// Производные поля. Вычисляются на момент чтения и не хранятся.
	CurrentPrice            *big.Int
	CurrentPricePerWord     *big.Int
	RemainingTimeSubmission time.Duration
	RemainingTimeReview     time.Duration
	Incomplete              bool
}

// TaskMetadata — off-chain документ метаданных задачи из evidence store.
type TaskMetadata struct {
	Title           string `json:"title"`
	Text            string `json:"text,omitempty"`
	SourceLanguage  string `json:"sourceLanguage"`
	TargetLanguage  string `json:"targetLanguage"`
	ExpectedQuality string `json:"expectedQuality,omitempty"`
	WordCount       int64  `json:"wordCount"`
	OriginalTextURL string `json:"originalTextUrl,omitempty"`
}

// TaskResult — элемент пакетного чтения: либо задача, либо её ошибка.
// Одна неразрешимая задача не обнуляет весь список.
type TaskResult struct {
	ID   string
	Task *Task
	Err  error
}
