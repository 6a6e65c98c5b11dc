package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	store storage.GroupStore
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.GroupStore) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a new group, optionally with its first members.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	name, err := requireName("name", req.Msg.Name)
	if err != nil {
		return nil, err
	}

	// Names must be unique within a group; reject repeats before anything
	// is written so a failed request leaves no group behind.
	memberNames := make([]string, len(req.Msg.Members))
	seen := make(map[string]bool, len(req.Msg.Members))
	for i, raw := range req.Msg.Members {
		if memberNames[i], err = requireName("member name", raw); err != nil {
			return nil, err
		}
		if seen[memberNames[i]] {
			return nil, storageError(fmt.Errorf("member %q: %w", memberNames[i], storage.ErrDuplicate))
		}
		seen[memberNames[i]] = true
	}

	// Save to storage (generates ID, join code and CreatedAt)
	group := &models.Group{Name: name}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, storageError(err)
	}

	members := make([]*api.Member, 0, len(memberNames))
	for _, memberName := range memberNames {
		member := &models.Member{GroupID: group.ID, Name: memberName}
		if err := s.store.AddMember(ctx, member); err != nil {
			slog.Error("CreateGroup failed to add member", "group_id", group.ID, "name", memberName, "error", err)
			return nil, storageError(err)
		}
		members = append(members, toAPIMember(member))
	}

	slog.Info("Group created", "group_id", group.ID, "code", group.Code)

	return connect.NewResponse(&api.CreateGroupResponse{
		Group:   toAPIGroup(group),
		Members: members,
	}), nil
}

// GetGroup retrieves a group and its members by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	members, err := s.store.ListMembers(ctx, group.ID)
	if err != nil {
		slog.Error("GetGroup failed to list members", "group_id", group.ID, "error", err)
		return nil, storageError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{
		Group:   toAPIGroup(group),
		Members: toAPIMembers(members),
	}), nil
}

// GetGroupByCode looks a group up by its join code.
func (s *GroupService) GetGroupByCode(ctx context.Context, req *connect.Request[api.GetGroupByCodeRequest]) (*connect.Response[api.GetGroupByCodeResponse], error) {
	slog.Info("GetGroupByCode request received", "code", req.Msg.Code)

	code, err := requireName("code", req.Msg.Code)
	if err != nil {
		return nil, err
	}

	group, err := s.store.GetGroupByCode(ctx, code)
	if err != nil {
		slog.Warn("GetGroupByCode failed", "code", code, "error", err)
		return nil, storageError(err)
	}

	return connect.NewResponse(&api.GetGroupByCodeResponse{Group: toAPIGroup(group)}), nil
}

// RenameGroup changes a group's display name.
func (s *GroupService) RenameGroup(ctx context.Context, req *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error) {
	slog.Info("RenameGroup request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	name, err := requireName("name", req.Msg.Name)
	if err != nil {
		return nil, err
	}

	if err := s.store.RenameGroup(ctx, req.Msg.GroupID, name); err != nil {
		slog.Error("RenameGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("Failed to fetch renamed group", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Group renamed", "group_id", group.ID)

	return connect.NewResponse(&api.RenameGroupResponse{Group: toAPIGroup(group)}), nil
}

// AddMember adds a member to a group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)

	name, err := requireName("name", req.Msg.Name)
	if err != nil {
		return nil, err
	}

	member := &models.Member{GroupID: req.Msg.GroupID, Name: name}
	if err := s.store.AddMember(ctx, member); err != nil {
		slog.Error("AddMember failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Member added", "group_id", member.GroupID, "member_id", member.ID)

	return connect.NewResponse(&api.AddMemberResponse{Member: toAPIMember(member)}), nil
}

// ListMembers lists a group's members ordered by name.
func (s *GroupService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	slog.Info("ListMembers request received", "group_id", req.Msg.GroupID)

	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, storageError(err)
	}

	members, err := s.store.ListMembers(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	return connect.NewResponse(&api.ListMembersResponse{Members: toAPIMembers(members)}), nil
}

// RenameMember changes a member's display name.
func (s *GroupService) RenameMember(ctx context.Context, req *connect.Request[api.RenameMemberRequest]) (*connect.Response[api.RenameMemberResponse], error) {
	slog.Info("RenameMember request received", "member_id", req.Msg.MemberID, "name", req.Msg.Name)

	name, err := requireName("name", req.Msg.Name)
	if err != nil {
		return nil, err
	}

	if err := s.store.RenameMember(ctx, req.Msg.MemberID, name); err != nil {
		slog.Error("RenameMember failed", "member_id", req.Msg.MemberID, "error", err)
		return nil, storageError(err)
	}

	member, err := s.store.GetMember(ctx, req.Msg.MemberID)
	if err != nil {
		return nil, storageError(err)
	}

	return connect.NewResponse(&api.RenameMemberResponse{Member: toAPIMember(member)}), nil
}

// RemoveMember removes a member who has no expenses or splits.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received", "member_id", req.Msg.MemberID)

	if err := s.store.RemoveMember(ctx, req.Msg.MemberID); err != nil {
		slog.Warn("RemoveMember failed", "member_id", req.Msg.MemberID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Member removed", "member_id", req.Msg.MemberID)

	return connect.NewResponse(&api.RemoveMemberResponse{}), nil
}
