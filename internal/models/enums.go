package models

import (
	"fmt"
	"strconv"

	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
)

// TaskStatus — статус жизненного цикла задачи в контракте.
// Значения совпадают с кодировкой смарт-контракта.
type TaskStatus int

const (
	TaskStatusCreated TaskStatus = iota
	TaskStatusAssigned
	TaskStatusAwaitingReview
	TaskStatusDisputeCreated
	TaskStatusResolved
)

func (s TaskStatus) IsValid() bool {
	return s >= TaskStatusCreated && s <= TaskStatusResolved
}

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusCreated:
		return "Created"
	case TaskStatusAssigned:
		return "Assigned"
	case TaskStatusAwaitingReview:
		return "AwaitingReview"
	case TaskStatusDisputeCreated:
		return "DisputeCreated"
	case TaskStatusResolved:
		return "Resolved"
	}
	return fmt.Sprintf("TaskStatus(%d)", int(s))
}

// ParseTaskStatus разбирает сырое значение из контракта.
// Неизвестные значения — ошибка, молчаливых дефолтов нет.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("некорректный статус задачи %q", raw))
	}
	s := TaskStatus(n)
	if !s.IsValid() {
		return 0, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус задачи %d", n))
	}
	return s, nil
}

// DisputeStatus — статус спора в арбитражном контракте.
type DisputeStatus int

const (
	DisputeStatusWaiting DisputeStatus = iota
	DisputeStatusAppealable
	DisputeStatusSolved
)

func (s DisputeStatus) IsValid() bool {
	return s >= DisputeStatusWaiting && s <= DisputeStatusSolved
}

func (s DisputeStatus) String() string {
	switch s {
	case DisputeStatusWaiting:
		return "Waiting"
	case DisputeStatusAppealable:
		return "Appealable"
	case DisputeStatusSolved:
		return "Solved"
	}
	return fmt.Sprintf("DisputeStatus(%d)", int(s))
}

func ParseDisputeStatus(raw string) (DisputeStatus, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("некорректный статус спора %q", raw))
	}
	s := DisputeStatus(n)
	if !s.IsValid() {
		return 0, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус спора %d", n))
	}
	return s, nil
}

// DisputeRuling — решение арбитража.
// Контракт кодирует только 0..2; RulingNone существует лишь на нашей
// стороне как значение «решения ещё нет» и поэтому равно -1, чтобы не
// пересекаться с контрактной кодировкой.
type DisputeRuling int

const (
	RulingNone                DisputeRuling = -1
	RulingRefuseToRule        DisputeRuling = 0
	RulingTranslationApproved DisputeRuling = 1
	RulingTranslationRejected DisputeRuling = 2
)

func (r DisputeRuling) IsValid() bool {
	return r >= RulingRefuseToRule && r <= RulingTranslationRejected
}

func (r DisputeRuling) String() string {
	switch r {
	case RulingNone:
		return "None"
	case RulingRefuseToRule:
		return "RefuseToRule"
	case RulingTranslationApproved:
		return "TranslationApproved"
	case RulingTranslationRejected:
		return "TranslationRejected"
	}
	return fmt.Sprintf("DisputeRuling(%d)", int(r))
}

// ParseDisputeRuling принимает только контрактные значения.
// RulingNone из сырых данных получить нельзя.
func ParseDisputeRuling(raw string) (DisputeRuling, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return RulingNone, apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("некорректное решение арбитража %q", raw))
	}
	r := DisputeRuling(n)
	if !r.IsValid() {
		return RulingNone, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестное решение арбитража %d", n))
	}
	return r, nil
}

// TaskParty — сторона задачи при споре.
type TaskParty int

const (
	PartyNone TaskParty = iota
	PartyTranslator
	PartyChallenger
)

func (p TaskParty) IsValid() bool {
	return p >= PartyNone && p <= PartyChallenger
}

func (p TaskParty) String() string {
	switch p {
	case PartyNone:
		return "None"
	case PartyTranslator:
		return "Translator"
	case PartyChallenger:
		return "Challenger"
	}
	return fmt.Sprintf("TaskParty(%d)", int(p))
}

func ParseTaskParty(raw string) (TaskParty, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeValidation, fmt.Sprintf("некорректная сторона задачи %q", raw))
	}
	p := TaskParty(n)
	if !p.IsValid() {
		return 0, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестная сторона задачи %d", n))
	}
	return p, nil
}
