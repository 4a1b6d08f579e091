package service

import (
	"fmt"
	"strconv"

	"github.com/glossa-labs/glossa-backend/internal/models"
	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
)

// rulingAndStatus — ответ арбитража на пару запросов
// disputeStatus/currentRuling.
type rulingAndStatus struct {
	status string
	ruling string
}

// arbitrationFacts — три независимо запрошенных факта арбитража.
// nil означает «факт недоступен, подставить дефолт»: запросы гонятся с
// жизненным циклом спора on-chain, и их откат — штатное состояние.
type arbitrationFacts struct {
	hasDispute      bool
	rulingAndStatus *rulingAndStatus
	appealPeriod    *appealPeriodInfo
	appealCost      *string
}

// normalizeDispute сводит состояние задачи, факты арбитража, последний
// раунд финансирования и параметры пула в одну каноническую запись.
// Оба плеча каждого факта обработаны явно: значение или документированный
// дефолт (окна апелляции нет, решения нет, стоимость — non-payable).
func normalizeDispute(state taskState, facts arbitrationFacts, latestRound *roundInfo, rewardPool models.RewardPoolParams) (*models.Dispute, error) {
	dispute := &models.Dispute{
		HasDispute: facts.hasDispute,
		Status:     models.DisputeStatusWaiting,
		Ruling:     models.RulingNone,
		AppealCost: models.NonPayableValue(),
		RewardPool: rewardPool,
	}

	if state.DisputeID != "" {
		id, err := strconv.ParseUint(state.DisputeID, 10, 64)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректный номер спора %q", state.DisputeID))
		}
		dispute.ID = id
	}

	if !facts.hasDispute {
		return dispute, nil
	}

	if facts.rulingAndStatus != nil {
		status, err := models.ParseDisputeStatus(facts.rulingAndStatus.status)
		if err != nil {
			return nil, err
		}
		ruling, err := models.ParseDisputeRuling(facts.rulingAndStatus.ruling)
		if err != nil {
			return nil, err
		}
		dispute.Status = status
		dispute.Ruling = ruling
	}

	if facts.appealPeriod != nil {
		start, err := parseUnix(facts.appealPeriod.Start)
		if err != nil {
			return nil, fmt.Errorf("appealPeriod.start: %w", err)
		}
		end, err := parseUnix(facts.appealPeriod.End)
		if err != nil {
			return nil, fmt.Errorf("appealPeriod.end: %w", err)
		}
		// Нулевые границы из контракта означают «окна нет» — оставляем
		// нулевые time.Time.
		if start.Unix() != 0 || end.Unix() != 0 {
			dispute.AppealPeriodStart = start
			dispute.AppealPeriodEnd = end
		}
	}

	if facts.appealCost != nil {
		cost, err := parseBig(*facts.appealCost)
		if err != nil {
			return nil, fmt.Errorf("appealCost: %w", err)
		}
		dispute.AppealCost = cost
	}

	if latestRound != nil {
		round := &models.Round{}
		for i := 0; i < len(round.PaidFees); i++ {
			if i < len(latestRound.PaidFees) {
				fee, err := parseBig(latestRound.PaidFees[i])
				if err != nil {
					return nil, fmt.Errorf("paidFees[%d]: %w", i, err)
				}
				round.PaidFees[i] = fee
			}
			if i < len(latestRound.HasPaid) {
				round.HasPaid[i] = latestRound.HasPaid[i]
			}
		}
		rewards, err := parseBig(latestRound.FeeRewards)
		if err != nil {
			return nil, fmt.Errorf("feeRewards: %w", err)
		}
		round.FeeRewards = rewards
		dispute.LatestRound = round
	}

	return dispute, nil
}
