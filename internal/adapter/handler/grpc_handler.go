package handler

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/core/service"
)

type GRPCHandler struct {
	beerService *service.BeerService
	logger      *zap.Logger
}

func NewGRPCHandler(beerService *service.BeerService, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{
		beerService: beerService,
		logger:      logger,
	}
}

func (h *GRPCHandler) Create(ctx context.Context, req *CreateBeerRequest) (*CreateBeerResponse, error) {
	beer, err := fromBeerDTO(req.Beer)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	id, err := h.beerService.Create(ctx, beer)
	if err != nil {
		return nil, h.grpcError(ctx, err)
	}

	return &CreateBeerResponse{ID: id}, nil
}

func (h *GRPCHandler) ReadByName(ctx context.Context, req *ReadBeerRequest) (*BeerResponse, error) {
	beer, err := h.beerService.ReadByName(ctx, req.Name)
	if err != nil {
		return nil, h.grpcError(ctx, err)
	}

	return &BeerResponse{Beer: toBeerDTO(beer)}, nil
}

func (h *GRPCHandler) List(ctx context.Context, _ *ListBeersRequest) (*ListBeersResponse, error) {
	beers, err := h.beerService.List(ctx)
	if err != nil {
		return nil, h.grpcError(ctx, err)
	}

	resp := &ListBeersResponse{Beers: make([]beerDTO, 0, len(beers))}
	for _, b := range beers {
		resp.Beers = append(resp.Beers, toBeerDTO(b))
	}
	return resp, nil
}

func (h *GRPCHandler) Delete(ctx context.Context, req *DeleteBeerRequest) (*DeleteBeerResponse, error) {
	if err := h.beerService.Delete(ctx, req.ID); err != nil {
		return nil, h.grpcError(ctx, err)
	}

	return &DeleteBeerResponse{}, nil
}

func (h *GRPCHandler) AdjustQuantity(ctx context.Context, req *AdjustQuantityRequest) (*BeerResponse, error) {
	beer, err := h.beerService.AdjustQuantity(ctx, req.ID, req.Delta)
	if err != nil {
		return nil, h.grpcError(ctx, err)
	}

	return &BeerResponse{Beer: toBeerDTO(beer)}, nil
}

func (h *GRPCHandler) grpcError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrExceedsCapacity), errors.Is(err, domain.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		h.logger.Error("rpc failed",
			zap.String("trace_id", trace.SpanContextFromContext(ctx).TraceID().String()),
			zap.Error(err),
		)
		return status.Error(codes.Internal, "internal error")
	}
}

type metadataCarrier metadata.MD

func (m metadataCarrier) Get(key string) string {
	values := metadata.MD(m).Get(key)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (m metadataCarrier) Set(key, value string) {
	metadata.MD(m).Set(key, value)
}

func (m metadataCarrier) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// TracingInterceptor starts a server span per call, continuing any trace
// propagated in the incoming metadata.
func TracingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			ctx = otel.GetTextMapPropagator().Extract(ctx, metadataCarrier(md))
		}

		ctx, span := otel.Tracer(tracerName).Start(ctx, info.FullMethod,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("rpc.system", "grpc"),
				attribute.String("rpc.method", info.FullMethod),
			),
		)
		defer span.End()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		span.SetAttributes(attribute.String("rpc.grpc.status_code", code.String()))
		if code == codes.Internal {
			span.SetStatus(otelcodes.Error, "internal error")
		}

		return resp, err
	}
}

var _ propagation.TextMapCarrier = metadataCarrier(nil)
