package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "settleup.v1.SettlementService"

// Procedure paths of SettlementService.
const (
	SettlementServiceGetBalancesProcedure      = "/settleup.v1.SettlementService/GetBalances"
	SettlementServiceGetBalancesBatchProcedure = "/settleup.v1.SettlementService/GetBalancesBatch"
	SettlementServiceSimplifyDebtsProcedure    = "/settleup.v1.SettlementService/SimplifyDebts"
	SettlementServiceRecordSettlementProcedure = "/settleup.v1.SettlementService/RecordSettlement"
	SettlementServiceListSettlementsProcedure  = "/settleup.v1.SettlementService/ListSettlements"
	SettlementServiceDeleteSettlementProcedure = "/settleup.v1.SettlementService/DeleteSettlement"
)

// SettlementServiceClient is a client for the settleup.v1.SettlementService service.
type SettlementServiceClient interface {
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetBalancesBatch(context.Context, *connect.Request[api.GetBalancesBatchRequest]) (*connect.Response[api.GetBalancesBatchResponse], error)
	SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error)
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
}

// NewSettlementServiceClient constructs a client for the
// settleup.v1.SettlementService service. The JSON codec is always used.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &settlementServiceClient{
		getBalances:      connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+SettlementServiceGetBalancesProcedure, opts...),
		getBalancesBatch: connect.NewClient[api.GetBalancesBatchRequest, api.GetBalancesBatchResponse](httpClient, baseURL+SettlementServiceGetBalancesBatchProcedure, opts...),
		simplifyDebts:    connect.NewClient[api.SimplifyDebtsRequest, api.SimplifyDebtsResponse](httpClient, baseURL+SettlementServiceSimplifyDebtsProcedure, opts...),
		recordSettlement: connect.NewClient[api.RecordSettlementRequest, api.RecordSettlementResponse](httpClient, baseURL+SettlementServiceRecordSettlementProcedure, opts...),
		listSettlements:  connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+SettlementServiceListSettlementsProcedure, opts...),
		deleteSettlement: connect.NewClient[api.DeleteSettlementRequest, api.DeleteSettlementResponse](httpClient, baseURL+SettlementServiceDeleteSettlementProcedure, opts...),
	}
}

type settlementServiceClient struct {
	getBalances      *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	getBalancesBatch *connect.Client[api.GetBalancesBatchRequest, api.GetBalancesBatchResponse]
	simplifyDebts    *connect.Client[api.SimplifyDebtsRequest, api.SimplifyDebtsResponse]
	recordSettlement *connect.Client[api.RecordSettlementRequest, api.RecordSettlementResponse]
	listSettlements  *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	deleteSettlement *connect.Client[api.DeleteSettlementRequest, api.DeleteSettlementResponse]
}

func (c *settlementServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GetBalancesBatch(ctx context.Context, req *connect.Request[api.GetBalancesBatchRequest]) (*connect.Response[api.GetBalancesBatchResponse], error) {
	return c.getBalancesBatch.CallUnary(ctx, req)
}

func (c *settlementServiceClient) SimplifyDebts(ctx context.Context, req *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	return c.simplifyDebts.CallUnary(ctx, req)
}

func (c *settlementServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *settlementServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

// SettlementServiceHandler is an implementation of the settleup.v1.SettlementService service.
type SettlementServiceHandler interface {
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetBalancesBatch(context.Context, *connect.Request[api.GetBalancesBatchRequest]) (*connect.Response[api.GetBalancesBatchResponse], error)
	SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error)
	RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(SettlementServiceGetBalancesProcedure, connect.NewUnaryHandler(SettlementServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(SettlementServiceGetBalancesBatchProcedure, connect.NewUnaryHandler(SettlementServiceGetBalancesBatchProcedure, svc.GetBalancesBatch, opts...))
	mux.Handle(SettlementServiceSimplifyDebtsProcedure, connect.NewUnaryHandler(SettlementServiceSimplifyDebtsProcedure, svc.SimplifyDebts, opts...))
	mux.Handle(SettlementServiceRecordSettlementProcedure, connect.NewUnaryHandler(SettlementServiceRecordSettlementProcedure, svc.RecordSettlement, opts...))
	mux.Handle(SettlementServiceListSettlementsProcedure, connect.NewUnaryHandler(SettlementServiceListSettlementsProcedure, svc.ListSettlements, opts...))
	mux.Handle(SettlementServiceDeleteSettlementProcedure, connect.NewUnaryHandler(SettlementServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...))
	return "/" + SettlementServiceName + "/", mux
}

// UnimplementedSettlementServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSettlementServiceHandler struct{}

func (UnimplementedSettlementServiceHandler) GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.SettlementService.GetBalances is not implemented"))
}

func (UnimplementedSettlementServiceHandler) GetBalancesBatch(context.Context, *connect.Request[api.GetBalancesBatchRequest]) (*connect.Response[api.GetBalancesBatchResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.SettlementService.GetBalancesBatch is not implemented"))
}

func (UnimplementedSettlementServiceHandler) SimplifyDebts(context.Context, *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.SettlementService.SimplifyDebts is not implemented"))
}

func (UnimplementedSettlementServiceHandler) RecordSettlement(context.Context, *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.SettlementService.RecordSettlement is not implemented"))
}

func (UnimplementedSettlementServiceHandler) ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.SettlementService.ListSettlements is not implemented"))
}

func (UnimplementedSettlementServiceHandler) DeleteSettlement(context.Context, *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.SettlementService.DeleteSettlement is not implemented"))
}
