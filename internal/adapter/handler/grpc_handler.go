package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/techstore/internal/core/service"
)

type GRPCHandler struct {
	registration *service.RegistrationService
	catalog      *service.CatalogService
	orders       *service.OrderService
}

func NewGRPCHandler(registration *service.RegistrationService, catalog *service.CatalogService, orders *service.OrderService) *GRPCHandler {
	return &GRPCHandler{registration: registration, catalog: catalog, orders: orders}
}

func (h *GRPCHandler) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	res, err := h.registration.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	return &RegisterResponse{
		Success: res.Success,
		Message: res.Message,
	}, nil
}

func (h *GRPCHandler) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	if req.Email == "" || req.ProductID <= 0 {
		return &PlaceOrderResponse{
			Success: false,
			Message: "missing required fields",
		}, nil
	}

	order, err := h.orders.PlaceOrder(ctx, req.RequestID, req.Email, req.ProductID)
	if err != nil {
		_, message := orderErrorStatus(err)
		return &PlaceOrderResponse{
			Success: false,
			Message: message,
		}, nil
	}

	return &PlaceOrderResponse{
		Success: true,
		Message: "order placed successfully",
		OrderID: order.ID,
		Status:  order.Status,
	}, nil
}

func (h *GRPCHandler) ListProducts(ctx context.Context, _ *ListProductsRequest) (*ListProductsResponse, error) {
	products, err := h.catalog.List(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}

	resp := &ListProductsResponse{Products: make([]ProductView, 0, len(products))}
	for _, p := range products {
		resp.Products = append(resp.Products, productView(p))
	}
	return resp, nil
}
