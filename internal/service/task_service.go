package service

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/glossa-labs/glossa-backend/internal/chain"
	"github.com/glossa-labs/glossa-backend/internal/logger"
	"github.com/glossa-labs/glossa-backend/internal/models"
	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
	"github.com/glossa-labs/glossa-backend/internal/pricing"
)

// Имена событий и ключи фильтров контракта задач.
const (
	eventMetaEvidence          = "MetaEvidence"
	eventTaskCreated           = "TaskCreated"
	eventTaskAssigned          = "TaskAssigned"
	eventTranslationSubmitted  = "TranslationSubmitted"
	eventTranslationChallenged = "TranslationChallenged"
	eventTaskResolved          = "TaskResolved"
	eventDispute               = "Dispute"
)

const constantsCacheTTL = 10 * time.Minute

// EvidenceStore — хранилище off-chain метаданных задач.
type EvidenceStore interface {
	PublishMetadata(ctx context.Context, requester string, metadata models.TaskMetadata) (string, error)
	FetchMetadata(ctx context.Context, path string) (*models.TaskMetadata, error)
	FileURL(path string) string
}

// TaskService — все чтения и записи ровно одной пары контрактов
// (контракт задач + арбитражный контракт). Состояние каждого чтения
// пересобирается с нуля из внешнего авторитетного состояния.
type TaskService struct {
	contractKey  string
	native       bool
	taskContract chain.Contract
	arbitrator   chain.Contract
	evidence     EvidenceStore
	cache        *CacheService
	horizon      time.Duration
}

func NewTaskService(contractKey string, native bool, taskContract, arbitrator chain.Contract, evidence EvidenceStore, cache *CacheService, horizon time.Duration) *TaskService {
	if horizon <= 0 {
		horizon = pricing.DefaultDepositHorizon
	}
	return &TaskService{
		contractKey:  contractKey,
		native:       native,
		taskContract: taskContract,
		arbitrator:   arbitrator,
		evidence:     evidence,
		cache:        cache,
		horizon:      horizon,
	}
}

// ContractKey возвращает ключ деплоймента.
func (s *TaskService) ContractKey() string { return s.contractKey }

// Native сообщает, обслуживает ли сервис нативный актив.
func (s *TaskService) Native() bool { return s.native }

// externalID — внешний составной идентификатор задачи этого деплоймента.
func (s *TaskService) externalID(localID uint64) string {
	return models.FormatTaskID(s.contractKey, localID, s.native)
}

// eventID приводит номер задачи к строке до использования в фильтре
// событий: числовой ноль часть ledger-клиентов трактует как «фильтра
// нет» и отдаёт весь журнал целиком.
func eventID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// taskState — сырые поля задачи из вызова tasks(id). Числа приходят
// десятичными строками и разбираются нормализатором.
type taskState struct {
	SubmissionTimeout string `json:"submissionTimeout"`
	MinPrice          string `json:"minPrice"`
	MaxPrice          string `json:"maxPrice"`
	Status            string `json:"status"`
	LastInteraction   string `json:"lastInteraction"`
	Requester         string `json:"requester"`
	RequesterDeposit  string `json:"requesterDeposit"`
	SumDeposit        string `json:"sumDeposit"`
	DisputeID         string `json:"disputeID"`
}

type roundInfo struct {
	PaidFees   []string `json:"paidFees"`
	HasPaid    []bool   `json:"hasPaid"`
	FeeRewards string   `json:"feeRewards"`
}

type appealPeriodInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ListTasksByRequester перечисляет задачи заказчика. Пакетная семантика:
// список всегда полон, неразрешимые задачи несут свой ID и ошибку.
func (s *TaskService) ListTasksByRequester(ctx context.Context, account string) ([]models.TaskResult, error) {
	events, err := s.taskContract.PastEvents(ctx, chain.EventQuery{
		Event:  eventTaskCreated,
		Filter: map[string]string{"_requester": account},
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось получить задачи заказчика %s", account))
	}
	return s.resolveTaskEvents(ctx, events)
}

// ListTasksByTranslator перечисляет задачи, назначенные переводчику.
func (s *TaskService) ListTasksByTranslator(ctx context.Context, account string) ([]models.TaskResult, error) {
	events, err := s.taskContract.PastEvents(ctx, chain.EventQuery{
		Event:  eventTaskAssigned,
		Filter: map[string]string{"_translator": account},
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось получить задачи переводчика %s", account))
	}
	return s.resolveTaskEvents(ctx, events)
}

// resolveTaskEvents разворачивает события в задачи. Ошибка одной задачи
// не отменяет соседние: у каждого входа свой исход.
func (s *TaskService) resolveTaskEvents(ctx context.Context, events []chain.Event) ([]models.TaskResult, error) {
	results := make([]models.TaskResult, len(events))

	var g errgroup.Group
	for i, event := range events {
		i, event := i, event
		g.Go(func() error {
			rawID := event.Values["_taskID"]
			localID, err := strconv.ParseUint(rawID, 10, 64)
			if err != nil {
				results[i] = models.TaskResult{
					ID:  rawID,
					Err: apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректный номер задачи в событии: %q", rawID)),
				}
				return nil
			}

			task, err := s.GetTaskByID(ctx, localID)
			if err != nil {
				results[i] = models.TaskResult{ID: s.externalID(localID), Err: err}
				return nil
			}
			results[i] = models.TaskResult{ID: task.ID, Task: task}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// GetTaskByID собирает каноническую запись задачи: сырое состояние,
// стороны, таймаут проверки, пять журналов жизненного цикла и документ
// метаданных. Независимые подзапросы выполняются конкурентно и
// объединяются до построения записи.
func (s *TaskService) GetTaskByID(ctx context.Context, localID uint64) (*models.Task, error) {
	id := eventID(localID)

	var (
		state         taskState
		parties       []string
		reviewTimeout time.Duration
		metaEvents    []chain.Event
		events        lifecycleEvents
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reviewTimeout, err = s.getReviewTimeout(gctx)
		return err
	})
	g.Go(func() error {
		return s.taskContract.Call(gctx, "tasks", &state, id)
	})
	g.Go(func() error {
		return s.taskContract.Call(gctx, "getTaskParties", &parties, id)
	})
	g.Go(func() error {
		var err error
		metaEvents, err = s.taskContract.PastEvents(gctx, chain.EventQuery{
			Event:  eventMetaEvidence,
			Filter: map[string]string{"_metaEvidenceID": id},
		})
		return err
	})
	for name, dst := range map[string]*[]chain.Event{
		eventTaskCreated:           &events.Created,
		eventTaskAssigned:          &events.Assigned,
		eventTranslationSubmitted:  &events.Submitted,
		eventTranslationChallenged: &events.Challenged,
		eventTaskResolved:          &events.Resolved,
	} {
		name, dst := name, dst
		g.Go(func() error {
			list, err := s.taskContract.PastEvents(gctx, chain.EventQuery{
				Event:  name,
				Filter: map[string]string{"_taskID": id},
			})
			if err != nil {
				return err
			}
			*dst = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось получить задачу %s", s.externalID(localID)))
	}

	// Вторая волна зависит от первой: путь документа берётся из события
	// MetaEvidence, фильтр журнала споров — из состояния задачи.
	var metadata *models.TaskMetadata
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metadata, err = s.fetchMetadataFromEvents(gctx, localID, metaEvents)
		return err
	})
	g.Go(func() error {
		var err error
		events.Dispute, err = s.taskContract.PastEvents(gctx, chain.EventQuery{
			Event:  eventDispute,
			Filter: map[string]string{"_disputeID": state.DisputeID},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось получить задачу %s", s.externalID(localID)))
	}

	task, err := normalizeTask(taskAggregate{
		contractKey:   s.contractKey,
		externalID:    s.externalID(localID),
		localID:       localID,
		state:         state,
		parties:       parties,
		reviewTimeout: reviewTimeout,
		metadata:      metadata,
		events:        events,
		now:           time.Now(),
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, fmt.Sprintf("не удалось нормализовать задачу %s", s.externalID(localID)))
	}
	return task, nil
}

// fetchMetadataFromEvents восстанавливает путь документа из события
// MetaEvidence и читает сам документ. Отсутствие того или другого —
// жёсткая ошибка этой задачи.
func (s *TaskService) fetchMetadataFromEvents(ctx context.Context, localID uint64, events []chain.Event) (*models.TaskMetadata, error) {
	// Событие должно быть ровно одно.
	if len(events) == 0 {
		return nil, apperror.Wrap(apperror.ErrNoMetaEvidence, apperror.ErrCodeEvidence, fmt.Sprintf("нет события MetaEvidence для задачи %s", s.externalID(localID)))
	}
	path := events[0].Values["_evidence"]
	if path == "" {
		return nil, apperror.Wrap(apperror.ErrNoMetaEvidence, apperror.ErrCodeEvidence, fmt.Sprintf("событие MetaEvidence задачи %s без пути документа", s.externalID(localID)))
	}
	return s.evidence.FetchMetadata(ctx, path)
}

// GetTaskPrice возвращает текущую цену задачи из контракта.
func (s *TaskService) GetTaskPrice(ctx context.Context, localID uint64) (*big.Int, error) {
	var raw string
	if err := s.taskContract.Call(ctx, "getTaskPrice", &raw, eventID(localID)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось получить цену задачи %s", s.externalID(localID)))
	}
	price, err := parseBig(raw)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректная цена задачи %s", s.externalID(localID)))
	}
	return price, nil
}

// GetTranslatorDeposit возвращает предсказанный депозит переводчика:
// текущее контрактное значение плюс рост цены за horizon.
// horizon <= 0 — горизонт сервиса по умолчанию.
func (s *TaskService) GetTranslatorDeposit(ctx context.Context, localID uint64, horizon time.Duration) (*big.Int, error) {
	return s.predictedDeposit(ctx, localID, "getDepositValue", horizon)
}

// GetChallengerDeposit возвращает предсказанный депозит челленджера.
func (s *TaskService) GetChallengerDeposit(ctx context.Context, localID uint64, horizon time.Duration) (*big.Int, error) {
	return s.predictedDeposit(ctx, localID, "getChallengeValue", horizon)
}

func (s *TaskService) predictedDeposit(ctx context.Context, localID uint64, method string, horizon time.Duration) (*big.Int, error) {
	if horizon <= 0 {
		horizon = s.horizon
	}
	id := eventID(localID)

	var (
		rawDeposit string
		state      taskState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.taskContract.Call(gctx, method, &rawDeposit, id)
	})
	g.Go(func() error {
		return s.taskContract.Call(gctx, "tasks", &state, id)
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось получить депозит задачи %s", s.externalID(localID)))
	}

	deposit, err := parseBig(rawDeposit)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректный депозит задачи %s", s.externalID(localID)))
	}
	minPrice, err := parseBig(state.MinPrice)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректная минимальная цена задачи %s", s.externalID(localID)))
	}
	maxPrice, err := parseBig(state.MaxPrice)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректная максимальная цена задачи %s", s.externalID(localID)))
	}
	timeoutSec, err := strconv.ParseInt(state.SubmissionTimeout, 10, 64)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректный таймаут задачи %s", s.externalID(localID)))
	}

	slope := pricing.DepositSlope(minPrice, maxPrice, time.Duration(timeoutSec)*time.Second)
	return pricing.PredictDeposit(deposit, slope, horizon), nil
}

// GetTaskDispute собирает каноническую запись спора задачи. Три факта
// арбитража запрашиваются независимо и переживают revert; параметры
// пула и последний раунд идут параллельно с ними.
func (s *TaskService) GetTaskDispute(ctx context.Context, localID uint64) (*models.Dispute, error) {
	var state taskState
	if err := s.taskContract.Call(ctx, "tasks", &state, eventID(localID)); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось получить состояние задачи %s", s.externalID(localID)))
	}

	var (
		facts       arbitrationFacts
		latestRound *roundInfo
		rewardPool  models.RewardPoolParams
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		facts, err = s.fetchArbitrationFacts(gctx, state.DisputeID)
		return err
	})
	g.Go(func() error {
		var err error
		latestRound, err = s.fetchLatestRound(gctx, localID)
		return err
	})
	g.Go(func() error {
		var err error
		rewardPool, err = s.getRewardPoolParams(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось получить спор задачи %s", s.externalID(localID)))
	}

	dispute, err := normalizeDispute(state, facts, latestRound, rewardPool)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, fmt.Sprintf("не удалось нормализовать спор задачи %s", s.externalID(localID)))
	}
	return dispute, nil
}

// fetchArbitrationFacts запрашивает статус+решение, окно апелляции и
// стоимость апелляции. Каждый запрос обёрнут отдельно: откат — это
// ожидаемая гонка с жизненным циклом спора, а не ошибка.
func (s *TaskService) fetchArbitrationFacts(ctx context.Context, rawDisputeID string) (arbitrationFacts, error) {
	facts := arbitrationFacts{}

	disputeEvents, err := s.taskContract.PastEvents(ctx, chain.EventQuery{
		Event:  eventDispute,
		Filter: map[string]string{"_disputeID": rawDisputeID},
	})
	if err != nil {
		return facts, err
	}
	facts.hasDispute = len(disputeEvents) > 0
	if !facts.hasDispute {
		return facts, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var rawStatus, rawRuling string
		inner, ictx := errgroup.WithContext(gctx)
		inner.Go(func() error {
			return s.arbitrator.Call(ictx, "disputeStatus", &rawStatus, rawDisputeID)
		})
		inner.Go(func() error {
			return s.arbitrator.Call(ictx, "currentRuling", &rawRuling, rawDisputeID)
		})
		if err := inner.Wait(); err != nil {
			s.logSoftArbitrationFailure("disputeStatus/currentRuling", rawDisputeID, err)
			// Без статуса и решения спор для чтений ещё не существует.
			facts.hasDispute = false
			return nil
		}
		facts.rulingAndStatus = &rulingAndStatus{status: rawStatus, ruling: rawRuling}
		return nil
	})
	g.Go(func() error {
		var period appealPeriodInfo
		if err := s.arbitrator.Call(gctx, "appealPeriod", &period, rawDisputeID); err != nil {
			s.logSoftArbitrationFailure("appealPeriod", rawDisputeID, err)
			return nil
		}
		facts.appealPeriod = &period
		return nil
	})
	g.Go(func() error {
		var rawCost string
		if err := s.arbitrator.Call(gctx, "appealCost", &rawCost, rawDisputeID, "0x0"); err != nil {
			s.logSoftArbitrationFailure("appealCost", rawDisputeID, err)
			return nil
		}
		facts.appealCost = &rawCost
		return nil
	})
	return facts, g.Wait()
}

// logSoftArbitrationFailure: откат — ожидаемое состояние (спор ещё не
// создан или уже исполнен) и не логируется; любой другой сбой заслуживает
// видимости, но всё равно заменяется дефолтом.
func (s *TaskService) logSoftArbitrationFailure(method, disputeID string, err error) {
	if chain.IsRevert(err) {
		return
	}
	logger.WithContract(s.contractKey, s.arbitrator.Address()).
		WithField("dispute_id", disputeID).
		WithError(err).
		Warnf("не удалось получить %s, используем дефолт", method)
}

func (s *TaskService) fetchLatestRound(ctx context.Context, localID uint64) (*roundInfo, error) {
	id := eventID(localID)

	var rawTotal string
	if err := s.taskContract.Call(ctx, "getNumberOfRounds", &rawTotal, id); err != nil {
		return nil, err
	}
	total, err := strconv.Atoi(rawTotal)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректное число раундов %q", rawTotal))
	}
	if total == 0 {
		return nil, nil
	}

	var round roundInfo
	if err := s.taskContract.Call(ctx, "getRoundInfo", &round, id, strconv.Itoa(total-1)); err != nil {
		return nil, err
	}
	return &round, nil
}

func (s *TaskService) getReviewTimeout(ctx context.Context) (time.Duration, error) {
	if v, ok := s.cache.Get(reviewTimeoutCacheKey(s.contractKey)); ok {
		return v.(time.Duration), nil
	}

	var raw string
	if err := s.taskContract.Call(ctx, "reviewTimeout", &raw); err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректный таймаут проверки %q", raw))
	}

	timeout := time.Duration(seconds) * time.Second
	s.cache.Set(reviewTimeoutCacheKey(s.contractKey), timeout, constantsCacheTTL)
	return timeout, nil
}

func (s *TaskService) getRewardPoolParams(ctx context.Context) (models.RewardPoolParams, error) {
	if v, ok := s.cache.Get(rewardPoolCacheKey(s.contractKey)); ok {
		return v.(models.RewardPoolParams), nil
	}

	raw := make([]string, 4)
	methods := []string{"winnerStakeMultiplier", "loserStakeMultiplier", "sharedStakeMultiplier", "MULTIPLIER_DIVISOR"}

	g, gctx := errgroup.WithContext(ctx)
	for i, method := range methods {
		i, method := i, method
		g.Go(func() error {
			return s.taskContract.Call(gctx, method, &raw[i])
		})
	}
	if err := g.Wait(); err != nil {
		return models.RewardPoolParams{}, err
	}

	values := make([]*big.Int, 4)
	for i, r := range raw {
		v, err := parseBig(r)
		if err != nil {
			return models.RewardPoolParams{}, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("некорректный множитель %s", methods[i]))
		}
		values[i] = v
	}

	params := models.RewardPoolParams{
		WinnerStakeMultiplier: values[0],
		LoserStakeMultiplier:  values[1],
		SharedStakeMultiplier: values[2],
		MultiplierDivisor:     values[3],
	}
	s.cache.Set(rewardPoolCacheKey(s.contractKey), params, constantsCacheTTL)
	return params, nil
}

// CreateTaskParams — параметры создания задачи.
type CreateTaskParams struct {
	Requester string
	Deadline  time.Time
	MinPrice  *big.Int
	MaxPrice  *big.Int
	Metadata  models.TaskMetadata
}

// CreateTask публикует документ метаданных и создаёт задачу. Порядок
// строгий: транзакция ссылается на контентный путь документа, поэтому
// публикация обязана завершиться до отправки.
func (s *TaskService) CreateTask(ctx context.Context, p CreateTaskParams, opts chain.SendOpts) (*chain.Receipt, error) {
	if p.MinPrice == nil || p.MaxPrice == nil || p.MinPrice.Sign() < 0 || p.MinPrice.Cmp(p.MaxPrice) > 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "границы цены должны удовлетворять 0 <= minPrice <= maxPrice")
	}

	entry := s.writeLog("createTask", 0).WithField("requester", p.Requester)

	path, err := s.evidence.PublishMetadata(ctx, p.Requester, p.Metadata)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeEvidence, "не удалось создать задачу: публикация метаданных")
	}
	entry = entry.WithField("evidence_path", path)

	if opts.From == "" {
		opts.From = p.Requester
	}
	opts.Value = new(big.Int).Set(p.MaxPrice)

	receipt, err := s.taskContract.Send(ctx, "createTask", opts, p.Deadline.Unix(), p.MinPrice, path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, "не удалось создать задачу")
	}
	entry.WithField("tx", receipt.TxHash).Info("задача создана")
	return receipt, nil
}

// AssignTask назначает задачу отправителю, внося предсказанный депозит
// переводчика. Излишек контракт вернёт сам.
func (s *TaskService) AssignTask(ctx context.Context, localID uint64, opts chain.SendOpts) (*chain.Receipt, error) {
	value, err := s.GetTranslatorDeposit(ctx, localID, 0)
	if err != nil {
		return nil, err
	}
	opts.Value = value

	receipt, err := s.taskContract.Send(ctx, "assignTask", opts, eventID(localID))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось назначить задачу %s", s.externalID(localID)))
	}
	s.writeLog("assignTask", localID).WithField("tx", receipt.TxHash).Info("задача назначена")
	return receipt, nil
}

// SubmitTranslation сдаёт перевод: контентный указатель на текст.
func (s *TaskService) SubmitTranslation(ctx context.Context, localID uint64, translation string, opts chain.SendOpts) (*chain.Receipt, error) {
	receipt, err := s.taskContract.Send(ctx, "submitTranslation", opts, eventID(localID), translation)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось сдать перевод задачи %s", s.externalID(localID)))
	}
	s.writeLog("submitTranslation", localID).WithField("tx", receipt.TxHash).Info("перевод сдан")
	return receipt, nil
}

// ReimburseRequester возвращает средства заказчику по истёкшей задаче.
func (s *TaskService) ReimburseRequester(ctx context.Context, localID uint64, opts chain.SendOpts) (*chain.Receipt, error) {
	receipt, err := s.taskContract.Send(ctx, "reimburseRequester", opts, eventID(localID))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось вернуть средства по задаче %s", s.externalID(localID)))
	}
	s.writeLog("reimburseRequester", localID).WithField("tx", receipt.TxHash).Info("средства возвращены заказчику")
	return receipt, nil
}

// AcceptTranslation принимает перевод до истечения окна проверки.
func (s *TaskService) AcceptTranslation(ctx context.Context, localID uint64, opts chain.SendOpts) (*chain.Receipt, error) {
	receipt, err := s.taskContract.Send(ctx, "acceptTranslation", opts, eventID(localID))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось принять перевод задачи %s", s.externalID(localID)))
	}
	s.writeLog("acceptTranslation", localID).WithField("tx", receipt.TxHash).Info("перевод принят")
	return receipt, nil
}

// ChallengeTranslation оспаривает перевод, внося предсказанный депозит
// челленджера.
func (s *TaskService) ChallengeTranslation(ctx context.Context, localID uint64, opts chain.SendOpts) (*chain.Receipt, error) {
	value, err := s.GetChallengerDeposit(ctx, localID, 0)
	if err != nil {
		return nil, err
	}
	opts.Value = value

	receipt, err := s.taskContract.Send(ctx, "challengeTranslation", opts, eventID(localID))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось оспорить перевод задачи %s", s.externalID(localID)))
	}
	s.writeLog("challengeTranslation", localID).WithField("tx", receipt.TxHash).Info("перевод оспорен")
	return receipt, nil
}

// FundAppeal финансирует апелляцию за указанную сторону. Сумму задаёт
// вызывающая сторона.
func (s *TaskService) FundAppeal(ctx context.Context, localID uint64, side models.TaskParty, opts chain.SendOpts) (*chain.Receipt, error) {
	if side != models.PartyTranslator && side != models.PartyChallenger {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("финансировать апелляцию можно только за переводчика или челленджера, получено %s", side))
	}
	if opts.Value == nil || opts.Value.Sign() <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "сумма финансирования апелляции обязательна")
	}

	receipt, err := s.taskContract.Send(ctx, "fundAppeal", opts, eventID(localID), strconv.Itoa(int(side)))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось профинансировать апелляцию задачи %s", s.externalID(localID)))
	}
	s.writeLog("fundAppeal", localID).WithField("tx", receipt.TxHash).Info("апелляция профинансирована")
	return receipt, nil
}

// writeLog — entry для логов мутирующих операций с корреляционным ID.
func (s *TaskService) writeLog(op string, localID uint64) *logrus.Entry {
	entry := logger.WithContract(s.contractKey, s.taskContract.Address()).
		WithField("op", op).
		WithField("op_id", uuid.New().String())
	if op != "createTask" {
		entry = entry.WithField("task_id", s.externalID(localID))
	}
	return entry
}

func parseBig(raw string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("не число: %q", raw)
	}
	return v, nil
}
