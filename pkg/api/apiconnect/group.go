package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "settleup.v1.GroupService"

// Procedure paths of GroupService.
const (
	GroupServiceCreateGroupProcedure    = "/settleup.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure       = "/settleup.v1.GroupService/GetGroup"
	GroupServiceGetGroupByCodeProcedure = "/settleup.v1.GroupService/GetGroupByCode"
	GroupServiceRenameGroupProcedure    = "/settleup.v1.GroupService/RenameGroup"
	GroupServiceAddMemberProcedure      = "/settleup.v1.GroupService/AddMember"
	GroupServiceListMembersProcedure    = "/settleup.v1.GroupService/ListMembers"
	GroupServiceRenameMemberProcedure   = "/settleup.v1.GroupService/RenameMember"
	GroupServiceRemoveMemberProcedure   = "/settleup.v1.GroupService/RemoveMember"
)

// GroupServiceClient is a client for the settleup.v1.GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	GetGroupByCode(context.Context, *connect.Request[api.GetGroupByCodeRequest]) (*connect.Response[api.GetGroupByCodeResponse], error)
	RenameGroup(context.Context, *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	RenameMember(context.Context, *connect.Request[api.RenameMemberRequest]) (*connect.Response[api.RenameMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
}

// NewGroupServiceClient constructs a client for the settleup.v1.GroupService
// service. The JSON codec is always used.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &groupServiceClient{
		createGroup:    connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:       connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		getGroupByCode: connect.NewClient[api.GetGroupByCodeRequest, api.GetGroupByCodeResponse](httpClient, baseURL+GroupServiceGetGroupByCodeProcedure, opts...),
		renameGroup:    connect.NewClient[api.RenameGroupRequest, api.RenameGroupResponse](httpClient, baseURL+GroupServiceRenameGroupProcedure, opts...),
		addMember:      connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		listMembers:    connect.NewClient[api.ListMembersRequest, api.ListMembersResponse](httpClient, baseURL+GroupServiceListMembersProcedure, opts...),
		renameMember:   connect.NewClient[api.RenameMemberRequest, api.RenameMemberResponse](httpClient, baseURL+GroupServiceRenameMemberProcedure, opts...),
		removeMember:   connect.NewClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL+GroupServiceRemoveMemberProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup    *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup       *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	getGroupByCode *connect.Client[api.GetGroupByCodeRequest, api.GetGroupByCodeResponse]
	renameGroup    *connect.Client[api.RenameGroupRequest, api.RenameGroupResponse]
	addMember      *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	listMembers    *connect.Client[api.ListMembersRequest, api.ListMembersResponse]
	renameMember   *connect.Client[api.RenameMemberRequest, api.RenameMemberResponse]
	removeMember   *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) GetGroupByCode(ctx context.Context, req *connect.Request[api.GetGroupByCodeRequest]) (*connect.Response[api.GetGroupByCodeResponse], error) {
	return c.getGroupByCode.CallUnary(ctx, req)
}

func (c *groupServiceClient) RenameGroup(ctx context.Context, req *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error) {
	return c.renameGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *groupServiceClient) RenameMember(ctx context.Context, req *connect.Request[api.RenameMemberRequest]) (*connect.Response[api.RenameMemberResponse], error) {
	return c.renameMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

// GroupServiceHandler is an implementation of the settleup.v1.GroupService service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	GetGroupByCode(context.Context, *connect.Request[api.GetGroupByCodeRequest]) (*connect.Response[api.GetGroupByCodeResponse], error)
	RenameGroup(context.Context, *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	RenameMember(context.Context, *connect.Request[api.RenameMemberRequest]) (*connect.Response[api.RenameMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(GroupServiceCreateGroupProcedure, connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...))
	mux.Handle(GroupServiceGetGroupProcedure, connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...))
	mux.Handle(GroupServiceGetGroupByCodeProcedure, connect.NewUnaryHandler(GroupServiceGetGroupByCodeProcedure, svc.GetGroupByCode, opts...))
	mux.Handle(GroupServiceRenameGroupProcedure, connect.NewUnaryHandler(GroupServiceRenameGroupProcedure, svc.RenameGroup, opts...))
	mux.Handle(GroupServiceAddMemberProcedure, connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...))
	mux.Handle(GroupServiceListMembersProcedure, connect.NewUnaryHandler(GroupServiceListMembersProcedure, svc.ListMembers, opts...))
	mux.Handle(GroupServiceRenameMemberProcedure, connect.NewUnaryHandler(GroupServiceRenameMemberProcedure, svc.RenameMember, opts...))
	mux.Handle(GroupServiceRemoveMemberProcedure, connect.NewUnaryHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts...))
	return "/" + GroupServiceName + "/", mux
}

// UnimplementedGroupServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedGroupServiceHandler struct{}

func (UnimplementedGroupServiceHandler) CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.GroupService.CreateGroup is not implemented"))
}

func (UnimplementedGroupServiceHandler) GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.GroupService.GetGroup is not implemented"))
}

func (UnimplementedGroupServiceHandler) GetGroupByCode(context.Context, *connect.Request[api.GetGroupByCodeRequest]) (*connect.Response[api.GetGroupByCodeResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.GroupService.GetGroupByCode is not implemented"))
}

func (UnimplementedGroupServiceHandler) RenameGroup(context.Context, *connect.Request[api.RenameGroupRequest]) (*connect.Response[api.RenameGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.GroupService.RenameGroup is not implemented"))
}

func (UnimplementedGroupServiceHandler) AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.GroupService.AddMember is not implemented"))
}

func (UnimplementedGroupServiceHandler) ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.GroupService.ListMembers is not implemented"))
}

func (UnimplementedGroupServiceHandler) RenameMember(context.Context, *connect.Request[api.RenameMemberRequest]) (*connect.Response[api.RenameMemberResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.GroupService.RenameMember is not implemented"))
}

func (UnimplementedGroupServiceHandler) RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("settleup.v1.GroupService.RemoveMember is not implemented"))
}
