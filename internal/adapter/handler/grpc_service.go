package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

const inventoryServiceName = "partsinventory.v1.Inventory"

type CommandRequest struct {
	Command  string `json:"command"`
	Language string `json:"language"`
}

type CommandResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Changes domain.ChangeBatch `json:"changes,omitempty"`
}

// ExecuteRequest carries changes in the same loose form the HTTP API accepts.
type ExecuteRequest struct {
	RequestID string          `json:"requestId"`
	Changes   json.RawMessage `json:"changes"`
}

type ExecuteResponse struct {
	Success  bool                   `json:"success"`
	Message  string                 `json:"message,omitempty"`
	Outcomes []domain.ChangeOutcome `json:"outcomes,omitempty"`
}

type ListPartsRequest struct{}

type ListPartsResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Parts   []domain.Part `json:"parts"`
}

type InventoryServer interface {
	ProcessCommand(context.Context, *CommandRequest) (*CommandResponse, error)
	ExecuteChanges(context.Context, *ExecuteRequest) (*ExecuteResponse, error)
	ListParts(context.Context, *ListPartsRequest) (*ListPartsResponse, error)
}

func RegisterInventoryServer(s grpc.ServiceRegistrar, srv InventoryServer) {
	s.RegisterService(&inventoryServiceDesc, srv)
}

var inventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: inventoryServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProcessCommand", Handler: processCommandHandler},
		{MethodName: "ExecuteChanges", Handler: executeChangesHandler},
		{MethodName: "ListParts", Handler: listPartsHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func processCommandHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CommandRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).ProcessCommand(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + inventoryServiceName + "/ProcessCommand"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).ProcessCommand(ctx, req.(*CommandRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func executeChangesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExecuteRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).ExecuteChanges(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + inventoryServiceName + "/ExecuteChanges"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).ExecuteChanges(ctx, req.(*ExecuteRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listPartsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListPartsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).ListParts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + inventoryServiceName + "/ListParts"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).ListParts(ctx, req.(*ListPartsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// InventoryClient calls the inventory service using the JSON codec.
type InventoryClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryClient(cc grpc.ClientConnInterface) *InventoryClient {
	return &InventoryClient{cc: cc}
}

func (c *InventoryClient) ProcessCommand(ctx context.Context, in *CommandRequest, opts ...grpc.CallOption) (*CommandResponse, error) {
	out := new(CommandResponse)
	if err := c.invoke(ctx, "ProcessCommand", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) ExecuteChanges(ctx context.Context, in *ExecuteRequest, opts ...grpc.CallOption) (*ExecuteResponse, error) {
	out := new(ExecuteResponse)
	if err := c.invoke(ctx, "ExecuteChanges", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) ListParts(ctx context.Context, in *ListPartsRequest, opts ...grpc.CallOption) (*ListPartsResponse, error) {
	out := new(ListPartsResponse)
	if err := c.invoke(ctx, "ListParts", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+inventoryServiceName+"/"+method, in, out, opts...)
}
