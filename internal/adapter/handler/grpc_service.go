package handler

import (
	"context"

	"google.golang.org/grpc"
)

const beerServiceName = "beerstock.v1.BeerService"

type CreateBeerRequest struct {
	Beer beerDTO `json:"beer"`
}

type CreateBeerResponse struct {
	ID string `json:"id"`
}

type ReadBeerRequest struct {
	Name string `json:"name"`
}

type BeerResponse struct {
	Beer beerDTO `json:"beer"`
}

type ListBeersRequest struct{}

type ListBeersResponse struct {
	Beers []beerDTO `json:"beers"`
}

type DeleteBeerRequest struct {
	ID string `json:"id"`
}

type DeleteBeerResponse struct{}

type AdjustQuantityRequest struct {
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

// BeerServiceServer is the server API for beerstock.v1.BeerService.
type BeerServiceServer interface {
	Create(context.Context, *CreateBeerRequest) (*CreateBeerResponse, error)
	ReadByName(context.Context, *ReadBeerRequest) (*BeerResponse, error)
	List(context.Context, *ListBeersRequest) (*ListBeersResponse, error)
	Delete(context.Context, *DeleteBeerRequest) (*DeleteBeerResponse, error)
	AdjustQuantity(context.Context, *AdjustQuantityRequest) (*BeerResponse, error)
}

func RegisterBeerServiceServer(s grpc.ServiceRegistrar, srv BeerServiceServer) {
	s.RegisterService(&beerServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodDesc.
func unaryHandler[Req any, Resp any](method string, call func(BeerServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BeerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + beerServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BeerServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var beerServiceDesc = grpc.ServiceDesc{
	ServiceName: beerServiceName,
	HandlerType: (*BeerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Create", Handler: unaryHandler("Create", BeerServiceServer.Create)},
		{MethodName: "ReadByName", Handler: unaryHandler("ReadByName", BeerServiceServer.ReadByName)},
		{MethodName: "List", Handler: unaryHandler("List", BeerServiceServer.List)},
		{MethodName: "Delete", Handler: unaryHandler("Delete", BeerServiceServer.Delete)},
		{MethodName: "AdjustQuantity", Handler: unaryHandler("AdjustQuantity", BeerServiceServer.AdjustQuantity)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "beerstock/v1/beer.proto",
}

// BeerServiceClient is a thin client over the JSON codec.
type BeerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBeerServiceClient(cc grpc.ClientConnInterface) *BeerServiceClient {
	return &BeerServiceClient{cc: cc}
}

func (c *BeerServiceClient) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsonCodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+beerServiceName+"/"+method, in, out, opts...)
}

func (c *BeerServiceClient) Create(ctx context.Context, in *CreateBeerRequest, opts ...grpc.CallOption) (*CreateBeerResponse, error) {
	out := new(CreateBeerResponse)
	if err := c.invoke(ctx, "Create", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BeerServiceClient) ReadByName(ctx context.Context, in *ReadBeerRequest, opts ...grpc.CallOption) (*BeerResponse, error) {
	out := new(BeerResponse)
	if err := c.invoke(ctx, "ReadByName", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BeerServiceClient) List(ctx context.Context, in *ListBeersRequest, opts ...grpc.CallOption) (*ListBeersResponse, error) {
	out := new(ListBeersResponse)
	if err := c.invoke(ctx, "List", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BeerServiceClient) Delete(ctx context.Context, in *DeleteBeerRequest, opts ...grpc.CallOption) (*DeleteBeerResponse, error) {
	out := new(DeleteBeerResponse)
	if err := c.invoke(ctx, "Delete", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BeerServiceClient) AdjustQuantity(ctx context.Context, in *AdjustQuantityRequest, opts ...grpc.CallOption) (*BeerResponse, error) {
	out := new(BeerResponse)
	if err := c.invoke(ctx, "AdjustQuantity", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
