package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/glossa-labs/glossa-backend/internal/pkg/apperror"
)

// Gateway — HTTP-мост к внешнему ledger-клиенту. Сам движок не владеет
// chain-стеком: gateway исполняет call/send/события и отдаёт значения
// десятичными строками.
type Gateway struct {
	http *resty.Client
}

func NewGateway(baseURL string) *Gateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json")

	return &Gateway{http: client}
}

// Contract возвращает привязку к контракту по адресу.
func (g *Gateway) Contract(address string) Contract {
	return &boundContract{gateway: g, address: address}
}

type boundContract struct {
	gateway *Gateway
	address string
}

type callRequest struct {
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

type callResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *gatewayError   `json:"error,omitempty"`
}

type sendRequest struct {
	Method   string `json:"method"`
	Args     []any  `json:"args"`
	From     string `json:"from"`
	Value    string `json:"value,omitempty"`
	Gas      uint64 `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
}

type sendResponse struct {
	Receipt *Receipt      `json:"receipt"`
	Error   *gatewayError `json:"error,omitempty"`
}

type eventsResponse struct {
	Events []Event       `json:"events"`
	Error  *gatewayError `json:"error,omitempty"`
}

type gatewayError struct {
	Reverted bool   `json:"reverted"`
	Message  string `json:"message"`
}

func (c *boundContract) Address() string {
	return c.address
}

func (c *boundContract) Call(ctx context.Context, method string, out any, args ...any) error {
	var body callResponse
	resp, err := c.gateway.http.R().
		SetContext(ctx).
		SetBody(callRequest{Method: method, Args: normalizeArgs(args)}).
		SetResult(&body).
		Post(fmt.Sprintf("/contracts/%s/call", c.address))
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("вызов %s недоступен", method))
	}
	if err := checkGatewayError(method, resp, body.Error); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body.Result, out); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("не удалось декодировать результат %s", method))
	}
	return nil
}

func (c *boundContract) Send(ctx context.Context, method string, opts SendOpts, args ...any) (*Receipt, error) {
	req := sendRequest{
		Method: method,
		Args:   normalizeArgs(args),
		From:   opts.From,
		Gas:    opts.Gas,
	}
	if opts.Value != nil {
		req.Value = opts.Value.String()
	}
	if opts.GasPrice != nil {
		req.GasPrice = opts.GasPrice.String()
	}

	var body sendResponse
	resp, err := c.gateway.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&body).
		Post(fmt.Sprintf("/contracts/%s/send", c.address))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("транзакция %s недоступна", method))
	}
	if err := checkGatewayError(method, resp, body.Error); err != nil {
		return nil, err
	}
	if body.Receipt == nil {
		return nil, apperror.New(apperror.ErrCodeChain, fmt.Sprintf("gateway не вернул квитанцию для %s", method))
	}
	return body.Receipt, nil
}

func (c *boundContract) PastEvents(ctx context.Context, q EventQuery) ([]Event, error) {
	var body eventsResponse
	resp, err := c.gateway.http.R().
		SetContext(ctx).
		SetBody(q).
		SetResult(&body).
		Post(fmt.Sprintf("/contracts/%s/events", c.address))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeChain, fmt.Sprintf("журнал %s недоступен", q.Event))
	}
	if err := checkGatewayError(q.Event, resp, body.Error); err != nil {
		return nil, err
	}
	return body.Events, nil
}

// checkGatewayError единообразно разбирает ответ gateway. Откат вызова
// превращается в типизированный *RevertError.
func checkGatewayError(method string, resp *resty.Response, gwErr *gatewayError) error {
	if gwErr != nil {
		if gwErr.Reverted {
			return &RevertError{Method: method, Reason: gwErr.Message}
		}
		return apperror.New(apperror.ErrCodeChain, fmt.Sprintf("gateway отклонил %s: %s", method, gwErr.Message))
	}
	if resp.IsError() {
		return apperror.New(apperror.ErrCodeChain, fmt.Sprintf("gateway ответил %d на %s", resp.StatusCode(), method))
	}
	return nil
}

// normalizeArgs приводит аргументы к формам, которые gateway понимает
// однозначно: большие числа и uint64 — строками.
func normalizeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case fmt.Stringer:
			out[i] = v.String()
		case uint64:
			out[i] = fmt.Sprintf("%d", v)
		default:
			out[i] = a
		}
	}
	return out
}
