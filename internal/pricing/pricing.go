// Package pricing — чистые функции расчёта цены задачи и депозитов.
//
// Цена растёт линейно от minPrice к maxPrice за время submissionTimeout:
//
//	p(t) = minPrice + (maxPrice - minPrice) * (t - createdAt) / submissionTimeout
//
// Все денежные значения — целые суммы в минимальных единицах, поэтому
// арифметика только на math/big: никакой плавающей точки.
package pricing

import (
	"math/big"
	"time"

	"github.com/glossa-labs/glossa-backend/internal/models"
)

// DefaultDepositHorizon — горизонт предсказания депозита. Подобран с
// запасом к ожидаемому времени подтверждения транзакции; излишек
// контракт возвращает отправителю.
const DefaultDepositHorizon = time.Hour

// CurrentPrice возвращает цену задачи на момент now. До createdAt цена
// равна minPrice, после createdAt+submissionTimeout — maxPrice.
func CurrentPrice(minPrice, maxPrice *big.Int, createdAt time.Time, submissionTimeout time.Duration, now time.Time) *big.Int {
	elapsed := int64(now.Sub(createdAt) / time.Second)
	timeout := int64(submissionTimeout / time.Second)

	if elapsed <= 0 || timeout <= 0 {
		return new(big.Int).Set(minPrice)
	}
	if elapsed >= timeout {
		return new(big.Int).Set(maxPrice)
	}

	price := new(big.Int).Sub(maxPrice, minPrice)
	price.Mul(price, big.NewInt(elapsed))
	price.Div(price, big.NewInt(timeout))
	return price.Add(price, minPrice)
}

// PricePerWord возвращает цену за слово. Задача без подсчитанных слов
// считается за одно слово, чтобы сортировка по цене оставалась тотальной.
func PricePerWord(price *big.Int, wordCount int64) *big.Int {
	if wordCount <= 0 {
		wordCount = 1
	}
	return new(big.Int).Div(price, big.NewInt(wordCount))
}

// DepositSlope возвращает наклон ценовой прямой
// (maxPrice - minPrice) / submissionTimeout в единицах за секунду.
// Деление целочисленное, с усечением — как в контракте.
func DepositSlope(minPrice, maxPrice *big.Int, submissionTimeout time.Duration) *big.Int {
	timeout := int64(submissionTimeout / time.Second)
	if timeout <= 0 {
		return new(big.Int)
	}
	slope := new(big.Int).Sub(maxPrice, minPrice)
	return slope.Div(slope, big.NewInt(timeout))
}

// PredictDeposit предсказывает депозит через horizon от текущего момента:
// D' = D + s * Δt. Значение с запасом: пока транзакция ждёт включения в
// блок, требуемый on-chain депозит продолжает расти.
func PredictDeposit(deposit, slope *big.Int, horizon time.Duration) *big.Int {
	seconds := int64(horizon / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	growth := new(big.Int).Mul(slope, big.NewInt(seconds))
	return growth.Add(growth, deposit)
}

// RemainingTimeForSubmission — сколько осталось на сдачу перевода.
// Для Created отсчёт от создания, для Assigned — от последнего
// взаимодействия (назначения). Для остальных статусов времени нет.
func RemainingTimeForSubmission(status models.TaskStatus, createdAt, lastInteraction time.Time, submissionTimeout time.Duration, now time.Time) time.Duration {
	var deadline time.Time
	switch status {
	case models.TaskStatusCreated:
		deadline = createdAt.Add(submissionTimeout)
	case models.TaskStatusAssigned:
		deadline = lastInteraction.Add(submissionTimeout)
	default:
		return 0
	}

	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingTimeForReview — сколько осталось на проверку перевода.
func RemainingTimeForReview(status models.TaskStatus, lastInteraction time.Time, reviewTimeout time.Duration, now time.Time) time.Duration {
	if status != models.TaskStatusAwaitingReview {
		return 0
	}
	remaining := lastInteraction.Add(reviewTimeout).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsIncomplete — истёк ли таймаут задачи без обязательного встречного
// действия. Достижимо только из Created (никто не взялся) и Assigned
// (перевод не сдан).
func IsIncomplete(status models.TaskStatus, createdAt, lastInteraction time.Time, submissionTimeout time.Duration, now time.Time) bool {
	switch status {
	case models.TaskStatusCreated:
		return now.After(createdAt.Add(submissionTimeout))
	case models.TaskStatusAssigned:
		return now.After(lastInteraction.Add(submissionTimeout))
	}
	return false
}
