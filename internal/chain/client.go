package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
)

// Event — одно событие из журнала контракта.
type Event struct {
	Name        string `json:"name"`
	BlockNumber uint64 `json:"blockNumber"`
	TxHash      string `json:"txHash"`
	// Values — возвращённые событием значения. Все числа приходят
	// десятичными строками, как их отдаёт gateway.
	Values map[string]string `json:"values"`
}

// EventQuery — запрос журнала событий. Значения фильтра всегда строки:
// часть реализаций клиентов трактует числовой ноль как «нет фильтра» и
// возвращает весь журнал, поэтому числовые ключи приводятся к строке
// до попадания сюда.
type EventQuery struct {
	Event     string            `json:"event"`
	Filter    map[string]string `json:"filter,omitempty"`
	FromBlock uint64            `json:"fromBlock"`
}

// SendOpts — параметры транзакции, задаваемые вызывающей стороной.
type SendOpts struct {
	From     string
	Value    *big.Int
	Gas      uint64
	GasPrice *big.Int
}

// Receipt — квитанция исполненной транзакции.
type Receipt struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	Status      bool   `json:"status"`
}

// Contract — одна привязка к задеплоенному контракту. Реализации
// обязаны возвращать *RevertError на откат вызова, чтобы вызывающий
// код различал «ожидаемо нет данных» и настоящий сбой структурно,
// а не по тексту сообщения.
type Contract interface {
	// Call выполняет read-only метод и декодирует результат в out.
	Call(ctx context.Context, method string, out any, args ...any) error
	// Send выполняет мутирующий метод одной транзакцией без повторов.
	Send(ctx context.Context, method string, opts SendOpts, args ...any) (*Receipt, error)
	// PastEvents возвращает упорядоченный журнал событий по запросу.
	PastEvents(ctx context.Context, q EventQuery) ([]Event, error)
	// Address — адрес привязанного контракта.
	Address() string
}

// RevertError — откат вызова контракта (метода нет, спор не создан,
// состояние уже изменилось).
type RevertError struct {
	Method string
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("вызов %s откатился", e.Method)
	}
	return fmt.Sprintf("вызов %s откатился: %s", e.Method, e.Reason)
}

// IsRevert сообщает, был ли сбой откатом вызова.
func IsRevert(err error) bool {
	var re *RevertError
	return errors.As(err, &re)
}
