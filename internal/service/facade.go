package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glossa-labs/glossa-backend/internal/chain"
	"github.com/glossa-labs/glossa-backend/internal/models"
	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
)

// Facade предъявляет поверхность одного TaskService поверх N независимых
// деплойментов — по одному на платёжный актив. Диспетчеризация явная:
// составной идентификатор или селектор актива разбираются до любого
// сетевого вызова, списочные чтения разлетаются по всем деплойментам.
type Facade struct {
	services map[string]*TaskService
	// order фиксирует порядок обхода при fan-out, чтобы конкатенация
	// результатов была детерминированной.
	order     []string
	nativeKey string
}

// NewFacade собирает фасад. Ровно один сервис должен обслуживать
// нативный актив — он становится дефолтом маршрутизации.
func NewFacade(services []*TaskService) (*Facade, error) {
	if len(services) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужен хотя бы один деплоймент")
	}

	f := &Facade{services: make(map[string]*TaskService, len(services))}
	for _, svc := range services {
		if _, dup := f.services[svc.ContractKey()]; dup {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("дублирующийся ключ контракта %q", svc.ContractKey()))
		}
		f.services[svc.ContractKey()] = svc
		f.order = append(f.order, svc.ContractKey())
		if svc.Native() {
			if f.nativeKey != "" {
				return nil, apperror.New(apperror.ErrCodeValidation, "нативный деплоймент должен быть ровно один")
			}
			f.nativeKey = svc.ContractKey()
		}
	}
	if f.nativeKey == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "нативный деплоймент должен быть ровно один")
	}
	return f, nil
}

// resolveByID находит владеющий деплоймент по внешнему идентификатору.
// Ошибки маршрутизации поднимаются до любого сетевого вызова.
func (f *Facade) resolveByID(id string) (*TaskService, uint64, error) {
	contractKey, localID, err := models.SplitTaskID(id)
	if err != nil {
		return nil, 0, err
	}
	if contractKey == "" {
		contractKey = f.nativeKey
	}

	svc, ok := f.services[contractKey]
	if !ok {
		return nil, 0, apperror.Wrap(apperror.ErrUnknownContractKey, apperror.ErrCodeRouting, fmt.Sprintf("неизвестный ключ контракта %q", contractKey))
	}
	return svc, localID, nil
}

// resolveByAsset находит деплоймент по селектору актива; пустой селектор
// означает нативный актив.
func (f *Facade) resolveByAsset(asset string) (*TaskService, error) {
	if asset == "" {
		asset = f.nativeKey
	}
	svc, ok := f.services[asset]
	if !ok {
		return nil, apperror.Wrap(apperror.ErrUnknownContractKey, apperror.ErrCodeRouting, fmt.Sprintf("неизвестный актив %q", asset))
	}
	return svc, nil
}

// ListTasksByRequester возвращает задачи заказчика. Без селектора актива
// запрос конкурентно разлетается по всем деплойментам, результаты
// конкатенируются в фиксированном порядке.
func (f *Facade) ListTasksByRequester(ctx context.Context, account, asset string) ([]models.TaskResult, error) {
	return f.fanOutList(ctx, asset, func(ctx context.Context, svc *TaskService) ([]models.TaskResult, error) {
		return svc.ListTasksByRequester(ctx, account)
	})
}

// ListTasksByTranslator возвращает задачи переводчика.
func (f *Facade) ListTasksByTranslator(ctx context.Context, account, asset string) ([]models.TaskResult, error) {
	return f.fanOutList(ctx, asset, func(ctx context.Context, svc *TaskService) ([]models.TaskResult, error) {
		return svc.ListTasksByTranslator(ctx, account)
	})
}

func (f *Facade) fanOutList(ctx context.Context, asset string, list func(context.Context, *TaskService) ([]models.TaskResult, error)) ([]models.TaskResult, error) {
	if asset != "" {
		svc, err := f.resolveByAsset(asset)
		if err != nil {
			return nil, err
		}
		return list(ctx, svc)
	}

	perDeployment := make([][]models.TaskResult, len(f.order))
	g, gctx := errgroup.WithContext(ctx)
	for i, key := range f.order {
		i := i
		svc := f.services[key]
		g.Go(func() error {
			results, err := list(gctx, svc)
			if err != nil {
				return err
			}
			perDeployment[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined []models.TaskResult
	for _, results := range perDeployment {
		combined = append(combined, results...)
	}
	return combined, nil
}

func (f *Facade) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.GetTaskByID(ctx, localID)
}

func (f *Facade) GetTaskPrice(ctx context.Context, id string) (*big.Int, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.GetTaskPrice(ctx, localID)
}

func (f *Facade) GetTranslatorDeposit(ctx context.Context, id string, horizon time.Duration) (*big.Int, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.GetTranslatorDeposit(ctx, localID, horizon)
}

func (f *Facade) GetChallengerDeposit(ctx context.Context, id string, horizon time.Duration) (*big.Int, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.GetChallengerDeposit(ctx, localID, horizon)
}

func (f *Facade) GetTaskDispute(ctx context.Context, id string) (*models.Dispute, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.GetTaskDispute(ctx, localID)
}

// CreateTask создаёт задачу на деплойменте выбранного актива
// (пустой селектор — нативный).
func (f *Facade) CreateTask(ctx context.Context, asset string, p CreateTaskParams, opts chain.SendOpts) (*chain.Receipt, error) {
	svc, err := f.resolveByAsset(asset)
	if err != nil {
		return nil, err
	}
	return svc.CreateTask(ctx, p, opts)
}

func (f *Facade) AssignTask(ctx context.Context, id string, opts chain.SendOpts) (*chain.Receipt, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.AssignTask(ctx, localID, opts)
}

func (f *Facade) SubmitTranslation(ctx context.Context, id, translation string, opts chain.SendOpts) (*chain.Receipt, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.SubmitTranslation(ctx, localID, translation, opts)
}

func (f *Facade) ReimburseRequester(ctx context.Context, id string, opts chain.SendOpts) (*chain.Receipt, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.ReimburseRequester(ctx, localID, opts)
}

func (f *Facade) AcceptTranslation(ctx context.Context, id string, opts chain.SendOpts) (*chain.Receipt, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.AcceptTranslation(ctx, localID, opts)
}

func (f *Facade) ChallengeTranslation(ctx context.Context, id string, opts chain.SendOpts) (*chain.Receipt, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.ChallengeTranslation(ctx, localID, opts)
}

func (f *Facade) FundAppeal(ctx context.Context, id string, side models.TaskParty, opts chain.SendOpts) (*chain.Receipt, error) {
	svc, localID, err := f.resolveByID(id)
	if err != nil {
		return nil, err
	}
	return svc.FundAppeal(ctx, localID, side, opts)
}
