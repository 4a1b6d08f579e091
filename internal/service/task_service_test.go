package service

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/glossa-labs/glossa-backend/internal/chain"
	"github.com/glossa-labs/glossa-backend/internal/models"
)

type mockContract struct {
	mock.Mock
}

func (m *mockContract) Call(ctx context.Context, method string, out any, args ...any) error {
	ret := m.Called(ctx, method, out, args)
	return ret.Error(0)
}

func (m *mockContract) Send(ctx context.Context, method string, opts chain.SendOpts, args ...any) (*chain.Receipt, error) {
	ret := m.Called(ctx, method, opts, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*chain.Receipt), ret.Error(1)
}

func (m *mockContract) PastEvents(ctx context.Context, q chain.EventQuery) ([]chain.Event, error) {
	ret := m.Called(ctx, q)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).([]chain.Event), ret.Error(1)
}

func (m *mockContract) Address() string { return "0x000000000000000000000000000000000000dEaD" }

type mockEvidenceStore struct {
	mock.Mock
}

func (m *mockEvidenceStore) PublishMetadata(ctx context.Context, requester string, metadata models.TaskMetadata) (string, error) {
	ret := m.Called(ctx, requester, metadata)
	return ret.String(0), ret.Error(1)
}

func (m *mockEvidenceStore) FetchMetadata(ctx context.Context, path string) (*models.TaskMetadata, error) {
	ret := m.Called(ctx, path)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*models.TaskMetadata), ret.Error(1)
}

func (m *mockEvidenceStore) FileURL(path string) string {
	return "https://evidence.example" + path
}

// onCall регистрирует read-only вызов, заполняющий out через fill.
func onCall(c *mockContract, method string, args []any, fill func(out any)) *mock.Call {
	argMatcher := any(mock.Anything)
	if args != nil {
		argMatcher = args
	}
	return c.On("Call", mock.Anything, method, mock.Anything, argMatcher).
		Run(func(a mock.Arguments) {
			if fill != nil {
				fill(a.Get(2))
			}
		}).Return(nil)
}

func fillString(v string) func(out any) {
	return func(out any) { *(out.(*string)) = v }
}

func taskEvents(name string, values ...map[string]string) []chain.Event {
	events := make([]chain.Event, 0, len(values))
	for _, v := range values {
		events = append(events, chain.Event{Name: name, Values: v})
	}
	return events
}

// expectHealthyTask настраивает все вызовы, нужные GetTaskByID(7).
func expectHealthyTask(taskContract *mockContract, evidence *mockEvidenceStore) {
	onCall(taskContract, "reviewTimeout", nil, fillString("86400"))
	onCall(taskContract, "tasks", []any{"7"}, func(out any) {
		*(out.(*taskState)) = taskState{
			SubmissionTimeout: "1000",
			MinPrice:          "100",
			MaxPrice:          "1100",
			Status:            "1",
			LastInteraction:   "1700000500",
			Requester:         "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
			RequesterDeposit:  "1100",
			SumDeposit:        "1500",
			DisputeID:         "0",
		}
	})
	onCall(taskContract, "getTaskParties", []any{"7"}, func(out any) {
		*(out.(*[]string)) = []string{
			models.AddressZero,
			"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
			models.AddressZero,
		}
	})

	taskContract.On("PastEvents", mock.Anything, chain.EventQuery{
		Event:  eventMetaEvidence,
		Filter: map[string]string{"_metaEvidenceID": "7"},
	}).Return(taskEvents(eventMetaEvidence, map[string]string{"_evidence": "/ipfs/meta.json"}), nil)

	taskContract.On("PastEvents", mock.Anything, chain.EventQuery{
		Event:  eventTaskCreated,
		Filter: map[string]string{"_taskID": "7"},
	}).Return(taskEvents(eventTaskCreated, map[string]string{"_taskID": "7", "_timestamp": "1700000000"}), nil)

	for _, name := range []string{eventTaskAssigned, eventTranslationSubmitted, eventTranslationChallenged, eventTaskResolved} {
		taskContract.On("PastEvents", mock.Anything, chain.EventQuery{
			Event:  name,
			Filter: map[string]string{"_taskID": "7"},
		}).Return([]chain.Event{}, nil)
	}

	taskContract.On("PastEvents", mock.Anything, chain.EventQuery{
		Event:  eventDispute,
		Filter: map[string]string{"_disputeID": "0"},
	}).Return([]chain.Event{}, nil)

	evidence.On("FetchMetadata", mock.Anything, "/ipfs/meta.json").Return(&models.TaskMetadata{
		Title:          "Contract translation",
		SourceLanguage: "en",
		TargetLanguage: "es",
		WordCount:      200,
	}, nil)
}

func newTestService(taskContract, arbitrator *mockContract, evidence *mockEvidenceStore) *TaskService {
	return NewTaskService("xdai", false, taskContract, arbitrator, evidence, NewCacheService(), time.Hour)
}

func TestTaskService_GetTaskByID(t *testing.T) {
	taskContract := new(mockContract)
	arbitrator := new(mockContract)
	evidence := new(mockEvidenceStore)
	expectHealthyTask(taskContract, evidence)

	svc := newTestService(taskContract, arbitrator, evidence)

	task, err := svc.GetTaskByID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "xdai/7", task.ID)
	assert.Equal(t, uint64(7), task.LocalID)
	assert.Equal(t, models.TaskStatusAssigned, task.Status)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", task.Translator)
	assert.Equal(t, "", task.Parties[models.PartyChallenger])
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), task.CreatedAt)
	assert.Equal(t, time.Unix(1700001000, 0).UTC(), task.Deadline)
	assert.Equal(t, 86400*time.Second, task.ReviewTimeout)
	assert.False(t, task.HasDispute)
	assert.Equal(t, "Contract translation", task.Metadata.Title)

	// Задача из 2023 года давно просрочена: цена упёрлась в максимум,
	// времени на сдачу нет.
	assert.Equal(t, "1100", task.CurrentPrice.String())
	assert.Equal(t, time.Duration(0), task.RemainingTimeSubmission)
	assert.True(t, task.Incomplete)

	taskContract.AssertExpectations(t)
	evidence.AssertExpectations(t)
}

func TestTaskService_ListTasksByRequester_PartialFailure(t *testing.T) {
	taskContract := new(mockContract)
	arbitrator := new(mockContract)
	evidence := new(mockEvidenceStore)
	expectHealthyTask(taskContract, evidence)

	requester := "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	taskContract.On("PastEvents", mock.Anything, chain.EventQuery{
		Event:  eventTaskCreated,
		Filter: map[string]string{"_requester": requester},
	}).Return(taskEvents(eventTaskCreated,
		map[string]string{"_taskID": "7"},
		map[string]string{"_taskID": "mangled"},
	), nil)

	svc := newTestService(taskContract, arbitrator, evidence)

	results, err := svc.ListTasksByRequester(context.Background(), requester)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Ошибка одной задачи не роняет список целиком.
	assert.NoError(t, results[0].Err)
	assert.Equal(t, "xdai/7", results[0].ID)
	require.NotNil(t, results[0].Task)

	assert.Error(t, results[1].Err)
	assert.Equal(t, "mangled", results[1].ID)
	assert.Nil(t, results[1].Task)
}

func TestTaskService_GetTaskPrice_StringifiesZeroID(t *testing.T) {
	taskContract := new(mockContract)
	arbitrator := new(mockContract)
	evidence := new(mockEvidenceStore)

	// Нулевой номер задачи уходит в вызов строкой "0", а не числом.
	onCall(taskContract, "getTaskPrice", []any{"0"}, fillString("250"))

	svc := newTestService(taskContract, arbitrator, evidence)

	price, err := svc.GetTaskPrice(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "250", price.String())
	taskContract.AssertExpectations(t)
}

func TestTaskService_GetTranslatorDeposit(t *testing.T) {
	taskContract := new(mockContract)
	arbitrator := new(mockContract)
	evidence := new(mockEvidenceStore)

	onCall(taskContract, "getDepositValue", []any{"7"}, fillString("10000"))
	onCall(taskContract, "tasks", []any{"7"}, func(out any) {
		*(out.(*taskState)) = taskState{
			SubmissionTimeout: "1000",
			MinPrice:          "100",
			MaxPrice:          "1100",
		}
	})

	svc := newTestService(taskContract, arbitrator, evidence)

	// Наклон (1100-100)/1000 = 1 за секунду, горизонт час: 10000 + 3600.
	deposit, err := svc.GetTranslatorDeposit(context.Background(), 7, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "13600", deposit.String())
}

func TestTaskService_GetTaskDispute_AppealCostRevert(t *testing.T) {
	taskContract := new(mockContract)
	arbitrator := new(mockContract)
	evidence := new(mockEvidenceStore)

	onCall(taskContract, "tasks", []any{"7"}, func(out any) {
		*(out.(*taskState)) = taskState{DisputeID: "9"}
	})
	taskContract.On("PastEvents", mock.Anything, chain.EventQuery{
		Event:  eventDispute,
		Filter: map[string]string{"_disputeID": "9"},
	}).Return(taskEvents(eventDispute, map[string]string{"_disputeID": "9"}), nil)

	onCall(arbitrator, "disputeStatus", []any{"9"}, fillString("1"))
	onCall(arbitrator, "currentRuling", []any{"9"}, fillString("1"))
	onCall(arbitrator, "appealPeriod", []any{"9"}, func(out any) {
		*(out.(*appealPeriodInfo)) = appealPeriodInfo{Start: "1700000000", End: "1700003600"}
	})
	arbitrator.On("Call", mock.Anything, "appealCost", mock.Anything, []any{"9", "0x0"}).
		Return(&chain.RevertError{Method: "appealCost"})

	onCall(taskContract, "getNumberOfRounds", []any{"7"}, fillString("0"))
	onCall(taskContract, "winnerStakeMultiplier", nil, fillString("3000"))
	onCall(taskContract, "loserStakeMultiplier", nil, fillString("7000"))
	onCall(taskContract, "sharedStakeMultiplier", nil, fillString("5000"))
	onCall(taskContract, "MULTIPLIER_DIVISOR", nil, fillString("10000"))

	svc := newTestService(taskContract, arbitrator, evidence)

	dispute, err := svc.GetTaskDispute(context.Background(), 7)
	require.NoError(t, err)

	assert.True(t, dispute.HasDispute)
	assert.Equal(t, uint64(9), dispute.ID)
	assert.Equal(t, models.DisputeStatusAppealable, dispute.Status)
	assert.Equal(t, models.RulingTranslationApproved, dispute.Ruling)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), dispute.AppealPeriodStart)

	// Откат appealCost подменяется non-payable значением, а не ошибкой.
	assert.Equal(t, models.NonPayableValue(), dispute.AppealCost)
	assert.Nil(t, dispute.LatestRound)
	assert.Equal(t, "3000", dispute.RewardPool.WinnerStakeMultiplier.String())
}

func TestTaskService_GetTaskDispute_NoDispute(t *testing.T) {
	taskContract := new(mockContract)
	arbitrator := new(mockContract)
	evidence := new(mockEvidenceStore)

	onCall(taskContract, "tasks", []any{"3"}, func(out any) {
		*(out.(*taskState)) = taskState{DisputeID: "0"}
	})
	taskContract.On("PastEvents", mock.Anything, chain.EventQuery{
		Event:  eventDispute,
		Filter: map[string]string{"_disputeID": "0"},
	}).Return([]chain.Event{}, nil)

	onCall(taskContract, "getNumberOfRounds", []any{"3"}, fillString("0"))
	onCall(taskContract, "winnerStakeMultiplier", nil, fillString("3000"))
	onCall(taskContract, "loserStakeMultiplier", nil, fillString("7000"))
	onCall(taskContract, "sharedStakeMultiplier", nil, fillString("5000"))
	onCall(taskContract, "MULTIPLIER_DIVISOR", nil, fillString("10000"))

	svc := newTestService(taskContract, arbitrator, evidence)

	dispute, err := svc.GetTaskDispute(context.Background(), 3)
	require.NoError(t, err)

	// Спора нет: документированные дефолты вместо ошибок.
	assert.False(t, dispute.HasDispute)
	assert.Equal(t, models.DisputeStatusWaiting, dispute.Status)
	assert.Equal(t, models.RulingNone, dispute.Ruling)
	assert.True(t, dispute.AppealPeriodStart.IsZero())
	assert.Equal(t, models.NonPayableValue(), dispute.AppealCost)
}

func TestTaskService_CreateTask_PublishesMetadataFirst(t *testing.T) {
	taskContract := new(mockContract)
	arbitrator := new(mockContract)
	evidence := new(mockEvidenceStore)

	requester := "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
	metadata := models.TaskMetadata{Title: "Manual", SourceLanguage: "en", TargetLanguage: "de"}
	deadline := time.Unix(1800000000, 0).UTC()

	evidence.On("PublishMetadata", mock.Anything, requester, metadata).Return("/ipfs/doc.json", nil)

	taskContract.On("Send", mock.Anything, "createTask",
		mock.MatchedBy(func(opts chain.SendOpts) bool {
			// Депозит заказчика — maxPrice, отправитель по умолчанию requester.
			return opts.From == requester && opts.Value != nil && opts.Value.String() == "1100"
		}),
		[]any{deadline.Unix(), big.NewInt(100), "/ipfs/doc.json"},
	).Return(&chain.Receipt{TxHash: "0xabc", Status: true}, nil)

	svc := newTestService(taskContract, arbitrator, evidence)

	receipt, err := svc.CreateTask(context.Background(), CreateTaskParams{
		Requester: requester,
		Deadline:  deadline,
		MinPrice:  big.NewInt(100),
		MaxPrice:  big.NewInt(1100),
		Metadata:  metadata,
	}, chain.SendOpts{})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", receipt.TxHash)

	evidence.AssertExpectations(t)
	taskContract.AssertExpectations(t)
}

func TestTaskService_CreateTask_InvalidBounds(t *testing.T) {
	svc := newTestService(new(mockContract), new(mockContract), new(mockEvidenceStore))

	_, err := svc.CreateTask(context.Background(), CreateTaskParams{
		Requester: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		MinPrice:  big.NewInt(200),
		MaxPrice:  big.NewInt(100),
	}, chain.SendOpts{})
	assert.Error(t, err)
}

func TestTaskService_CreateTask_PublishFailureStopsSend(t *testing.T) {
	taskContract := new(mockContract)
	evidence := new(mockEvidenceStore)

	evidence.On("PublishMetadata", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("gateway down"))

	svc := newTestService(taskContract, new(mockContract), evidence)

	_, err := svc.CreateTask(context.Background(), CreateTaskParams{
		Requester: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		Deadline:  time.Unix(1800000000, 0),
		MinPrice:  big.NewInt(100),
		MaxPrice:  big.NewInt(1100),
	}, chain.SendOpts{})
	require.Error(t, err)

	// Транзакция не уходит без опубликованного документа.
	taskContract.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTaskService_FundAppeal_Validation(t *testing.T) {
	svc := newTestService(new(mockContract), new(mockContract), new(mockEvidenceStore))
	ctx := context.Background()

	_, err := svc.FundAppeal(ctx, 7, models.PartyNone, chain.SendOpts{Value: big.NewInt(10)})
	assert.Error(t, err)

	_, err = svc.FundAppeal(ctx, 7, models.PartyTranslator, chain.SendOpts{})
	assert.Error(t, err)
}
