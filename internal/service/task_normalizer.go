package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/glossa-labs/glossa-backend/internal/chain"
	"github.com/glossa-labs/glossa-backend/internal/models"
	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
	"github.com/glossa-labs/glossa-backend/internal/pricing"
	"github.com/glossa-labs/glossa-backend/internal/validation"
)

// lifecycleEvents — пять журналов жизненного цикла задачи плюс журнал
// споров, уже отфильтрованные по этой задаче.
type lifecycleEvents struct {
	Created    []chain.Event
	Assigned   []chain.Event
	Submitted  []chain.Event
	Challenged []chain.Event
	Resolved   []chain.Event
	Dispute    []chain.Event
}

// taskAggregate — всё, что нужно для сборки канонической записи задачи.
type taskAggregate struct {
	contractKey   string
	externalID    string
	localID       uint64
	state         taskState
	parties       []string
	reviewTimeout time.Duration
	metadata      *models.TaskMetadata
	events        lifecycleEvents
	now           time.Time
}

// normalizeTask сводит сырое состояние, журналы и метаданные в одну
// каноническую запись. Источник истины о «что произошло» — сырой статус
// и lastInteraction; события восстанавливают только то, чего сырое
// состояние не хранит (время создания, указатель на перевод).
func normalizeTask(agg taskAggregate) (*models.Task, error) {
	// Ровно одно событие создания: без него неизвестно, была ли задача
	// вообще финализирована, и восстановление невозможно.
	if len(agg.events.Created) != 1 {
		return nil, apperror.Wrap(apperror.ErrNoCreationEvent, apperror.ErrCodeChain, fmt.Sprintf("ожидалось одно событие TaskCreated, найдено %d", len(agg.events.Created)))
	}
	if agg.metadata == nil {
		return nil, apperror.ErrNoMetaEvidence
	}

	status, err := models.ParseTaskStatus(agg.state.Status)
	if err != nil {
		return nil, err
	}

	createdAt, err := eventTimestamp(agg.events.Created[0])
	if err != nil {
		return nil, err
	}

	lastInteraction, err := parseUnix(agg.state.LastInteraction)
	if err != nil {
		return nil, fmt.Errorf("lastInteraction: %w", err)
	}
	submissionSec, err := strconv.ParseInt(agg.state.SubmissionTimeout, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("submissionTimeout: %w", err)
	}
	submissionTimeout := time.Duration(submissionSec) * time.Second

	minPrice, err := parseBig(agg.state.MinPrice)
	if err != nil {
		return nil, fmt.Errorf("minPrice: %w", err)
	}
	maxPrice, err := parseBig(agg.state.MaxPrice)
	if err != nil {
		return nil, fmt.Errorf("maxPrice: %w", err)
	}
	if minPrice.Sign() < 0 || minPrice.Cmp(maxPrice) > 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("границы цены нарушены: min=%s max=%s", minPrice, maxPrice))
	}
	requesterDeposit, err := parseBig(agg.state.RequesterDeposit)
	if err != nil {
		return nil, fmt.Errorf("requesterDeposit: %w", err)
	}
	sumDeposit, err := parseBig(agg.state.SumDeposit)
	if err != nil {
		return nil, fmt.Errorf("sumDeposit: %w", err)
	}

	task := &models.Task{
		ID:                agg.externalID,
		ContractKey:       agg.contractKey,
		LocalID:           agg.localID,
		Status:            status,
		Requester:         agg.state.Requester,
		MinPrice:          minPrice,
		MaxPrice:          maxPrice,
		RequesterDeposit:  requesterDeposit,
		SumDeposit:        sumDeposit,
		CreatedAt:         createdAt,
		LastInteraction:   lastInteraction,
		SubmissionTimeout: submissionTimeout,
		ReviewTimeout:     agg.reviewTimeout,
		Deadline:          createdAt.Add(submissionTimeout),
		Metadata:          *agg.metadata,
	}

	// Стороны индексируются значениями TaskParty; нулевой адрес означает
	// «сторона не определена».
	for i := 0; i < len(task.Parties) && i < len(agg.parties); i++ {
		if !validation.SameAddress(agg.parties[i], models.AddressZero) {
			task.Parties[i] = agg.parties[i]
		}
	}
	task.Translator = task.Parties[models.PartyTranslator]

	// Указатель на перевод живёт только в событии сдачи.
	if n := len(agg.events.Submitted); n > 0 {
		task.Translation = agg.events.Submitted[n-1].Values["_translatedText"]
	}

	if agg.state.DisputeID != "" && len(agg.events.Dispute) > 0 {
		disputeID, err := strconv.ParseUint(agg.state.DisputeID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("disputeID: %w", err)
		}
		task.HasDispute = true
		task.DisputeID = disputeID
	}

	// Производные поля: пересчитываются на момент чтения, не хранятся.
	task.CurrentPrice = pricing.CurrentPrice(minPrice, maxPrice, createdAt, submissionTimeout, agg.now)
	task.CurrentPricePerWord = pricing.PricePerWord(task.CurrentPrice, agg.metadata.WordCount)
	task.RemainingTimeSubmission = pricing.RemainingTimeForSubmission(status, createdAt, lastInteraction, submissionTimeout, agg.now)
	task.RemainingTimeReview = pricing.RemainingTimeForReview(status, lastInteraction, agg.reviewTimeout, agg.now)
	task.Incomplete = pricing.IsIncomplete(status, createdAt, lastInteraction, submissionTimeout, agg.now)

	return task, nil
}

// eventTimestamp достаёт метку времени из значений события.
func eventTimestamp(ev chain.Event) (time.Time, error) {
	raw := ev.Values["_timestamp"]
	ts, err := parseUnix(raw)
	if err != nil {
		return time.Time{}, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректная метка времени события %s: %q", ev.Name, raw))
	}
	return ts, nil
}

func parseUnix(raw string) (time.Time, error) {
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("не unix-время: %q", raw)
	}
	return time.Unix(sec, 0).UTC(), nil
}
