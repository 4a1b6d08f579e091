package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x000000000000000000000000000000000000dEaD"

func TestBoundContract_Call(t *testing.T) {
	var gotPath string
	var gotBody callRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"250"}`))
	}))
	defer srv.Close()

	contract := NewGateway(srv.URL).Contract(testAddress)

	var out string
	err := contract.Call(context.Background(), "getTaskPrice", &out, uint64(0), big.NewInt(42))
	require.NoError(t, err)

	assert.Equal(t, "250", out)
	assert.Equal(t, "/contracts/"+testAddress+"/call", gotPath)
	assert.Equal(t, "getTaskPrice", gotBody.Method)
	// Числовые аргументы уходят строками: нулевой ID не должен
	// превратиться в «нет фильтра» на стороне клиента.
	assert.Equal(t, []any{"0", "42"}, gotBody.Args)
}

func TestBoundContract_Call_Revert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"reverted":true,"message":"dispute not created"}}`))
	}))
	defer srv.Close()

	contract := NewGateway(srv.URL).Contract(testAddress)

	var out string
	err := contract.Call(context.Background(), "appealCost", &out, "9")
	require.Error(t, err)

	// Откат различим структурно, без разбора текста сообщения.
	assert.True(t, IsRevert(err))
	var re *RevertError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "appealCost", re.Method)
	assert.Equal(t, "dispute not created", re.Reason)
}

func TestBoundContract_Call_GatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	contract := NewGateway(srv.URL).Contract(testAddress)

	var out string
	err := contract.Call(context.Background(), "tasks", &out, "7")
	require.Error(t, err)
	assert.False(t, IsRevert(err))
}

func TestBoundContract_Send(t *testing.T) {
	var gotBody sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"receipt":{"txHash":"0xabc","blockNumber":12,"status":true}}`))
	}))
	defer srv.Close()

	contract := NewGateway(srv.URL).Contract(testAddress)

	receipt, err := contract.Send(context.Background(), "assignTask", SendOpts{
		From:  "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Value: big.NewInt(13600),
	}, "7")
	require.NoError(t, err)

	assert.Equal(t, "0xabc", receipt.TxHash)
	assert.True(t, receipt.Status)
	assert.Equal(t, "assignTask", gotBody.Method)
	assert.Equal(t, "13600", gotBody.Value)
	assert.Equal(t, []any{"7"}, gotBody.Args)
}

func TestBoundContract_PastEvents(t *testing.T) {
	var gotQuery EventQuery
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotQuery))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events":[{"name":"TaskCreated","blockNumber":5,"values":{"_taskID":"7"}}]}`))
	}))
	defer srv.Close()

	contract := NewGateway(srv.URL).Contract(testAddress)

	events, err := contract.PastEvents(context.Background(), EventQuery{
		Event:  "TaskCreated",
		Filter: map[string]string{"_taskID": "7"},
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "7", events[0].Values["_taskID"])
	assert.Equal(t, map[string]string{"_taskID": "7"}, gotQuery.Filter)
}

func TestNormalizeArgs(t *testing.T) {
	got := normalizeArgs([]any{uint64(0), big.NewInt(1100), "text", int64(7)})
	assert.Equal(t, []any{"0", "1100", "text", int64(7)}, got)
}
