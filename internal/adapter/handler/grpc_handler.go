package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/cart-sync/internal/core/domain"
	"github.com/rl1809/cart-sync/internal/core/service"
)

const CartActionsServiceName = "cartsync.CartActions"

type ItemRequest struct {
	ItemID int `json:"item_id"`
}

type EmptyRequest struct{}

type ActionResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	State   *domain.Snapshot `json:"state,omitempty"`
}

type CartActionsServer interface {
	Increment(context.Context, *ItemRequest) (*ActionResponse, error)
	Decrement(context.Context, *ItemRequest) (*ActionResponse, error)
	AddToCart(context.Context, *ItemRequest) (*ActionResponse, error)
	DeleteFromCart(context.Context, *ItemRequest) (*ActionResponse, error)
	Checkout(context.Context, *EmptyRequest) (*ActionResponse, error)
	GetState(context.Context, *EmptyRequest) (*ActionResponse, error)
}

var cartActionsServiceDesc = grpc.ServiceDesc{
	ServiceName: CartActionsServiceName,
	HandlerType: (*CartActionsServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("Increment", CartActionsServer.Increment),
		unaryMethod("Decrement", CartActionsServer.Decrement),
		unaryMethod("AddToCart", CartActionsServer.AddToCart),
		unaryMethod("DeleteFromCart", CartActionsServer.DeleteFromCart),
		unaryMethod("Checkout", CartActionsServer.Checkout),
		unaryMethod("GetState", CartActionsServer.GetState),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cartsync/cart_actions",
}

func RegisterCartActionsServer(s grpc.ServiceRegistrar, srv CartActionsServer) {
	s.RegisterService(&cartActionsServiceDesc, srv)
}

func unaryMethod[Req any](name string, call func(CartActionsServer, context.Context, *Req) (*ActionResponse, error)) grpc.MethodDesc {
	fullMethod := "/" + CartActionsServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CartActionsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(CartActionsServer), ctx, req.(*Req))
			})
		},
	}
}

type GRPCHandler struct {
	cartService *service.CartService
}

func NewGRPCHandler(cartService *service.CartService) *GRPCHandler {
	return &GRPCHandler{cartService: cartService}
}

func (h *GRPCHandler) Increment(ctx context.Context, req *ItemRequest) (*ActionResponse, error) {
	if req.ItemID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "item_id must be positive")
	}
	h.cartService.Increment(req.ItemID)
	return h.success("quantity updated"), nil
}

func (h *GRPCHandler) Decrement(ctx context.Context, req *ItemRequest) (*ActionResponse, error) {
	if req.ItemID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "item_id must be positive")
	}
	h.cartService.Decrement(req.ItemID)
	return h.success("quantity updated"), nil
}

func (h *GRPCHandler) AddToCart(ctx context.Context, req *ItemRequest) (*ActionResponse, error) {
	if req.ItemID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "item_id must be positive")
	}
	if err := h.cartService.AddToCart(context.WithoutCancel(ctx), req.ItemID); err != nil {
		return failure(err), nil
	}
	return h.success("cart updated"), nil
}

func (h *GRPCHandler) DeleteFromCart(ctx context.Context, req *ItemRequest) (*ActionResponse, error) {
	if req.ItemID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "item_id must be positive")
	}
	if err := h.cartService.DeleteFromCart(context.WithoutCancel(ctx), req.ItemID); err != nil {
		return failure(err), nil
	}
	return h.success("item removed"), nil
}

func (h *GRPCHandler) Checkout(ctx context.Context, _ *EmptyRequest) (*ActionResponse, error) {
	if err := h.cartService.Checkout(context.WithoutCancel(ctx)); err != nil {
		return failure(err), nil
	}
	return h.success("checkout complete"), nil
}

func (h *GRPCHandler) GetState(ctx context.Context, _ *EmptyRequest) (*ActionResponse, error) {
	return h.success("ok"), nil
}

func (h *GRPCHandler) success(message string) *ActionResponse {
	snap := h.cartService.Snapshot()
	return &ActionResponse{Success: true, Message: message, State: &snap}
}

func failure(err error) *ActionResponse {
	if errors.Is(err, service.ErrCheckoutIncomplete) {
		return &ActionResponse{Success: false, Message: "checkout incomplete, retry checkout"}
	}
	if domain.IsTransportError(err) {
		return &ActionResponse{Success: false, Message: "remote store unreachable"}
	}
	return &ActionResponse{Success: false, Message: "remote store request failed"}
}
