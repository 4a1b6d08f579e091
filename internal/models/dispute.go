package models

import (
	"math/big"
	"time"
)

// Dispute — каноническая запись спора по задаче. Собирается из состояния
// контракта задачи, параметров пула вознаграждений и трёх независимых
// запросов к арбитражному контракту (каждый переживает revert).
type Dispute struct {
	ID uint64
	// HasDispute false, если спор по задаче ещё не открывался: остальные
	// поля тогда содержат документированные дефолты.
	HasDispute bool

	Status DisputeStatus
	Ruling DisputeRuling

	// Окно апелляции [Start, End). Нулевые значения — окна нет.
	AppealPeriodStart time.Time
	AppealPeriodEnd   time.Time

	// AppealCost равен NonPayableValue(), когда арбитраж не может
	// назвать стоимость (спор не создан или уже исполнен).
	AppealCost *big.Int

	// LatestRound nil, пока не было ни одного раунда финансирования.
	LatestRound *Round

	RewardPool RewardPoolParams
}

// Round — последний раунд финансирования апелляции.
type Round struct {
	// PaidFees и HasPaid индексируются значениями TaskParty.
	PaidFees   [3]*big.Int
	HasPaid    [3]bool
	FeeRewards *big.Int
}

// RewardPoolParams — множители ставок пула вознаграждений и их общий
// делитель (контрактные константы).
type RewardPoolParams struct {
	WinnerStakeMultiplier *big.Int
	LoserStakeMultiplier  *big.Int
	SharedStakeMultiplier *big.Int
	MultiplierDivisor     *big.Int
}
