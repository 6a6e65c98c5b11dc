package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// maxBatchGroups bounds how many ledgers GetBalancesBatch loads at once.
const maxBatchGroups = 4

// SettlementService implements the Connect SettlementService
type SettlementService struct {
	apiconnect.UnimplementedSettlementServiceHandler
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// computeBalances loads a group's ledger and derives every member's balance.
// Every call reads its own snapshot, so writes committed before the call
// are always reflected.
func (s *SettlementService) computeBalances(ctx context.Context, groupID string) ([]calculator.Balance, error) {
	ledger, err := s.store.LoadLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, expenses, splits, settlements := ledgerInputs(ledger)
	logSkip := logSkipped(groupID)
	return calculator.ComputeBalances(members, expenses, splits, settlements,
		calculator.WithSkipHook(func(skipped calculator.Skipped) {
			logSkip(skipped)
			metrics.ObserveSkipped(skipped)
		}),
	), nil
}

// GetBalances returns every member's net balance in a group.
func (s *SettlementService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID)

	balances, err := s.computeBalances(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	return connect.NewResponse(&api.GetBalancesResponse{Balances: toAPIBalances(balances)}), nil
}

// GetBalancesBatch returns balances of several groups. Results follow the
// order of the requested IDs; a missing group fails the whole call.
func (s *SettlementService) GetBalancesBatch(ctx context.Context, req *connect.Request[api.GetBalancesBatchRequest]) (*connect.Response[api.GetBalancesBatchResponse], error) {
	slog.Info("GetBalancesBatch request received", "groups_count", len(req.Msg.GroupIDs))

	results := make([]*api.GroupBalances, len(req.Msg.GroupIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchGroups)
	for i, groupID := range req.Msg.GroupIDs {
		g.Go(func() error {
			balances, err := s.computeBalances(gctx, groupID)
			if err != nil {
				return err
			}
			results[i] = &api.GroupBalances{
				GroupID:  groupID,
				Balances: toAPIBalances(balances),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("GetBalancesBatch failed", "error", err)
		return nil, storageError(err)
	}

	return connect.NewResponse(&api.GetBalancesBatchResponse{Groups: results}), nil
}

// SimplifyDebts suggests the payments that settle a group with as few
// transactions as the greedy matching finds.
func (s *SettlementService) SimplifyDebts(ctx context.Context, req *connect.Request[api.SimplifyDebtsRequest]) (*connect.Response[api.SimplifyDebtsResponse], error) {
	slog.Info("SimplifyDebts request received", "group_id", req.Msg.GroupID)

	balances, err := s.computeBalances(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("SimplifyDebts failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	result := calculator.SimplifyDebts(balances)
	metrics.ObserveSimplification(result)

	transactions := make([]*api.Transaction, len(result.Transactions))
	for i, t := range result.Transactions {
		transactions[i] = &api.Transaction{From: t.From, To: t.To, Amount: t.Amount}
	}

	slog.Info("Debts simplified",
		"group_id", req.Msg.GroupID,
		"transactions", len(transactions),
		"savings", result.Savings,
	)

	return connect.NewResponse(&api.SimplifyDebtsResponse{
		Transactions:  transactions,
		Savings:       int32(result.Savings),
		CreditorCount: int32(result.CreditorCount),
		DebtorCount:   int32(result.DebtorCount),
		NaiveCount:    int32(result.NaiveCount),
	}), nil
}

// RecordSettlement records that one member paid another.
func (s *SettlementService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromMemberID,
		"to", req.Msg.ToMemberID,
		"amount", req.Msg.Amount,
	)

	if !validAmount(req.Msg.Amount) {
		return nil, connect.NewError(connect.CodeInvalidArgument, calculator.ErrInvalidAmount)
	}
	if req.Msg.FromMemberID == req.Msg.ToMemberID {
		return nil, invalidArgument("a member cannot settle with themselves")
	}

	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, storageError(err)
	}
	members, err := s.store.ListMembers(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, storageError(err)
	}
	inGroup := make(map[string]bool, len(members))
	for _, m := range members {
		inGroup[m.ID] = true
	}
	for _, id := range []string{req.Msg.FromMemberID, req.Msg.ToMemberID} {
		if !inGroup[id] {
			return nil, invalidArgument("member %q is not in group %s", id, req.Msg.GroupID)
		}
	}

	settlement := &models.Settlement{
		GroupID:      req.Msg.GroupID,
		FromMemberID: req.Msg.FromMemberID,
		ToMemberID:   req.Msg.ToMemberID,
		Amount:       req.Msg.Amount,
		Note:         req.Msg.Note,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Settlement recorded", "settlement_id", settlement.ID, "group_id", settlement.GroupID)

	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ListSettlements lists a group's settlements, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID)

	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, storageError(err)
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = toAPISettlement(st)
	}

	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// DeleteSettlement removes a recorded settlement.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		slog.Warn("DeleteSettlement failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, storageError(err)
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Settlement deleted",
		"settlement_id", settlement.ID,
		"group_id", settlement.GroupID,
		"amount", settlement.Amount,
	)

	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}
