package handlers

import (
	"context"
	"math/big"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glossa-labs/glossa-backend/internal/chain"
	"github.com/glossa-labs/glossa-backend/internal/http/handlers/common"
	"github.com/glossa-labs/glossa-backend/internal/models"
	"github.com/glossa-labs/glossa-backend/internal/service"
	"github.com/glossa-labs/glossa-backend/internal/sorting"
	"github.com/glossa-labs/glossa-backend/internal/validation"
)

// TaskAPI — операции над задачами, которые предоставляет фасад.
// Интерфейс нужен для подмены фасада моками в тестах handler-а.
type TaskAPI interface {
	ListTasksByRequester(ctx context.Context, account, asset string) ([]models.TaskResult, error)
	ListTasksByTranslator(ctx context.Context, account, asset string) ([]models.TaskResult, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	GetTaskPrice(ctx context.Context, id string) (*big.Int, error)
	GetTranslatorDeposit(ctx context.Context, id string, horizon time.Duration) (*big.Int, error)
	GetChallengerDeposit(ctx context.Context, id string, horizon time.Duration) (*big.Int, error)
	GetTaskDispute(ctx context.Context, id string) (*models.Dispute, error)
	CreateTask(ctx context.Context, asset string, p service.CreateTaskParams, opts chain.SendOpts) (*chain.Receipt, error)
	AssignTask(ctx context.Context, id string, opts chain.SendOpts) (*chain.Receipt, error)
	SubmitTranslation(ctx context.Context, id, translation string, opts chain.SendOpts) (*chain.Receipt, error)
	ReimburseRequester(ctx context.Context, id string, opts chain.SendOpts) (*chain.Receipt, error)
	AcceptTranslation(ctx context.Context, id string, opts chain.SendOpts) (*chain.Receipt, error)
	ChallengeTranslation(ctx context.Context, id string, opts chain.SendOpts) (*chain.Receipt, error)
	FundAppeal(ctx context.Context, id string, side models.TaskParty, opts chain.SendOpts) (*chain.Receipt, error)
}

type TaskHandler struct {
	api TaskAPI
}

func NewTaskHandler(api TaskAPI) *TaskHandler {
	return &TaskHandler{api: api}
}

// taskListItem — элемент списка: либо задача, либо ошибка её чтения.
type taskListItem struct {
	ID    string       `json:"id"`
	Task  *models.Task `json:"task,omitempty"`
	Error string       `json:"error,omitempty"`
}

// sendOptsRequest — транзакционные параметры, общие для всех операций записи.
type sendOptsRequest struct {
	From     string `json:"from"`
	Value    string `json:"value"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice"`
}

func (r sendOptsRequest) toSendOpts() (chain.SendOpts, error) {
	var opts chain.SendOpts
	if r.From != "" {
		normalized, err := validation.NormalizeAddress(r.From)
		if err != nil {
			return chain.SendOpts{}, err
		}
		opts.From = normalized
	}
	if r.Value != "" {
		v, ok := new(big.Int).SetString(r.Value, 10)
		if !ok {
			return chain.SendOpts{}, errInvalidAmount("value")
		}
		opts.Value = v
	}
	if r.Gas != "" {
		gas, err := strconv.ParseUint(r.Gas, 10, 64)
		if err != nil {
			return chain.SendOpts{}, errInvalidAmount("gas")
		}
		opts.Gas = gas
	}
	if r.GasPrice != "" {
		gp, ok := new(big.Int).SetString(r.GasPrice, 10)
		if !ok {
			return chain.SendOpts{}, errInvalidAmount("gasPrice")
		}
		opts.GasPrice = gp
	}
	return opts, nil
}

type invalidAmountError struct{ field string }

func (e invalidAmountError) Error() string {
	return "поле " + e.field + " должно быть целым числом в десятичной записи"
}

func errInvalidAmount(field string) error { return invalidAmountError{field: field} }

// ListTasks GET /api/tasks?requester=0x..|translator=0x..&asset=eth&view=open&account=0x..&skills=en,es
func (h *TaskHandler) ListTasks(c *gin.Context) {
	requester := c.Query("requester")
	translator := c.Query("translator")
	if (requester == "") == (translator == "") {
		common.RespondBadRequest(c, "нужен ровно один из параметров requester или translator")
		return
	}

	asset := c.Query("asset")

	var (
		results []models.TaskResult
		err     error
	)
	if requester != "" {
		account, nerr := validation.NormalizeAddress(requester)
		if nerr != nil {
			common.RespondBadRequest(c, nerr.Error())
			return
		}
		results, err = h.api.ListTasksByRequester(c.Request.Context(), account, asset)
	} else {
		account, nerr := validation.NormalizeAddress(translator)
		if nerr != nil {
			common.RespondBadRequest(c, nerr.Error())
			return
		}
		results, err = h.api.ListTasksByTranslator(c.Request.Context(), account, asset)
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	view := c.DefaultQuery("view", sorting.ViewAll)
	sortCtx := sorting.Context{Account: c.Query("account")}
	if skills := c.Query("skills"); skills != "" {
		sortCtx.Skills = strings.Split(skills, ",")
	}

	items := presentTaskList(results, view, sortCtx)
	common.RespondJSON(c, http.StatusOK, gin.H{"tasks": items})
}

// presentTaskList фильтрует и сортирует успешно загруженные задачи согласно
// представлению. Элементы с ошибкой остаются в хвосте списка как есть.
func presentTaskList(results []models.TaskResult, view string, sortCtx sorting.Context) []taskListItem {
	keep := sorting.Filter(view)
	cmp := sorting.GetComparator(view, sortCtx)

	tasks := make([]*models.Task, 0, len(results))
	failed := make([]taskListItem, 0)
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, taskListItem{ID: r.ID, Error: r.Err.Error()})
			continue
		}
		if keep(r.Task) {
			tasks = append(tasks, r.Task)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return cmp(tasks[i], tasks[j]) < 0
	})

	items := make([]taskListItem, 0, len(tasks)+len(failed))
	for _, t := range tasks {
		items = append(items, taskListItem{ID: t.ID, Task: t})
	}
	return append(items, failed...)
}

// GetTask GET /api/task?id=eth/42
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := common.RequireQueryParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	task, err := h.api.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, task)
}

// GetTaskPrice GET /api/task/price?id=eth/42
func (h *TaskHandler) GetTaskPrice(c *gin.Context) {
	id, err := common.RequireQueryParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	price, err := h.api.GetTaskPrice(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"id": id, "price": price.String()})
}

// queryHorizon читает горизонт прогноза депозита в секундах.
// Отсутствие параметра — горизонт по умолчанию на стороне сервиса.
func queryHorizon(c *gin.Context) time.Duration {
	seconds := common.ParseIntQuery(c, "horizon", 0)
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// GetTranslatorDeposit GET /api/task/deposit/translator?id=eth/42&horizon=3600
func (h *TaskHandler) GetTranslatorDeposit(c *gin.Context) {
	id, err := common.RequireQueryParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deposit, err := h.api.GetTranslatorDeposit(c.Request.Context(), id, queryHorizon(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"id": id, "deposit": deposit.String()})
}

// GetChallengerDeposit GET /api/task/deposit/challenger?id=eth/42&horizon=3600
func (h *TaskHandler) GetChallengerDeposit(c *gin.Context) {
	id, err := common.RequireQueryParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deposit, err := h.api.GetChallengerDeposit(c.Request.Context(), id, queryHorizon(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, gin.H{"id": id, "deposit": deposit.String()})
}

// GetTaskDispute GET /api/task/dispute?id=eth/42
func (h *TaskHandler) GetTaskDispute(c *gin.Context) {
	id, err := common.RequireQueryParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dispute, err := h.api.GetTaskDispute(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, dispute)
}

// CreateTask POST /api/task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req struct {
		Asset     string              `json:"asset"`
		Requester string              `json:"requester" binding:"required"`
		Deadline  int64               `json:"deadline" binding:"required"`
		MinPrice  string              `json:"minPrice" binding:"required"`
		MaxPrice  string              `json:"maxPrice" binding:"required"`
		Metadata  models.TaskMetadata `json:"metadata"`
		Opts      sendOptsRequest     `json:"opts"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	requester, err := validation.NormalizeAddress(req.Requester)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	minPrice, ok := new(big.Int).SetString(req.MinPrice, 10)
	if !ok {
		common.RespondBadRequest(c, errInvalidAmount("minPrice").Error())
		return
	}
	maxPrice, ok := new(big.Int).SetString(req.MaxPrice, 10)
	if !ok {
		common.RespondBadRequest(c, errInvalidAmount("maxPrice").Error())
		return
	}
	opts, err := req.Opts.toSendOpts()
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	receipt, err := h.api.CreateTask(c.Request.Context(), req.Asset, service.CreateTaskParams{
		Requester: requester,
		Deadline:  time.Unix(req.Deadline, 0).UTC(),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		Metadata:  req.Metadata,
	}, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusCreated, receipt)
}

// идентификатор + транзакционные параметры: AssignTask, AcceptTranslation и другие.
type taskActionRequest struct {
	ID   string          `json:"id" binding:"required"`
	Opts sendOptsRequest `json:"opts"`
}

func (h *TaskHandler) runTaskAction(c *gin.Context, action func(ctx context.Context, id string, opts chain.SendOpts) (*chain.Receipt, error)) {
	var req taskActionRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	opts, err := req.Opts.toSendOpts()
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	receipt, err := action(c.Request.Context(), req.ID, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, receipt)
}

// AssignTask POST /api/task/assign
func (h *TaskHandler) AssignTask(c *gin.Context) {
	h.runTaskAction(c, h.api.AssignTask)
}

// SubmitTranslation POST /api/task/translation
func (h *TaskHandler) SubmitTranslation(c *gin.Context) {
	var req struct {
		ID          string          `json:"id" binding:"required"`
		Translation string          `json:"translation" binding:"required"`
		Opts        sendOptsRequest `json:"opts"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	opts, err := req.Opts.toSendOpts()
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	receipt, err := h.api.SubmitTranslation(c.Request.Context(), req.ID, req.Translation, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, receipt)
}

// AcceptTranslation POST /api/task/translation/accept
func (h *TaskHandler) AcceptTranslation(c *gin.Context) {
	h.runTaskAction(c, h.api.AcceptTranslation)
}

// ChallengeTranslation POST /api/task/translation/challenge
func (h *TaskHandler) ChallengeTranslation(c *gin.Context) {
	h.runTaskAction(c, h.api.ChallengeTranslation)
}

// ReimburseRequester POST /api/task/reimburse
func (h *TaskHandler) ReimburseRequester(c *gin.Context) {
	h.runTaskAction(c, h.api.ReimburseRequester)
}

// FundAppeal POST /api/task/appeal/fund
func (h *TaskHandler) FundAppeal(c *gin.Context) {
	var req struct {
		ID   string          `json:"id" binding:"required"`
		Side string          `json:"side" binding:"required"`
		Opts sendOptsRequest `json:"opts"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var side models.TaskParty
	switch req.Side {
	case "translator":
		side = models.PartyTranslator
	case "challenger":
		side = models.PartyChallenger
	default:
		common.RespondBadRequest(c, "side должен быть translator или challenger")
		return
	}

	opts, err := req.Opts.toSendOpts()
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	receipt, err := h.api.FundAppeal(c.Request.Context(), req.ID, side, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	common.RespondJSON(c, http.StatusOK, receipt)
}
