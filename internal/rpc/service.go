package rpc

import (
	"context"
	"errors"

	"github.com/adred-codev/soltrace/internal/gateway"
	"github.com/adred-codev/soltrace/internal/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// clientIDKey is the metadata header every method but Init requires, per spec §6.
const clientIDKey = "client-id"

// walletServiceServer is the interface RegisterService checks *Server against; it
// stands in for the Go interface a protoc plugin would generate from the service
// definition.
type walletServiceServer interface {
	Init(context.Context, *InitRequest) (*InitResponse, error)
	Subscribe(*SubscribeRequest, WalletService_SubscribeServer) error
	Unsubscribe(context.Context, *UnsubscribeRequest) (*UnsubscribeResponse, error)
	Holdings(context.Context, *HoldingsRequest) (*HoldingsResponse, error)
	GetTrade(context.Context, *GetTradeRequest) (*GetTradeResponse, error)
}

// WalletService_SubscribeServer is the server-streaming handle Subscribe writes
// messages through.
type WalletService_SubscribeServer interface {
	Send(*SubscribeResponse) error
	grpc.ServerStream
}

type walletServiceSubscribeServer struct {
	grpc.ServerStream
}

func (x *walletServiceSubscribeServer) Send(m *SubscribeResponse) error {
	return x.ServerStream.SendMsg(m)
}

// Server adapts gateway.Service to the wire contract above, extracting the
// client-id header and mapping domain errors to gRPC status codes, per spec §4.7
// and §7.
type Server struct {
	svc    *gateway.Service
	logger zerolog.Logger
}

// NewServer builds a Server fronting svc.
func NewServer(svc *gateway.Service, logger zerolog.Logger) *Server {
	return &Server{svc: svc, logger: logger.With().Str("component", "rpc").Logger()}
}

func extractClientID(ctx context.Context) (uuid.UUID, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing client id")
	}
	values := md.Get(clientIDKey)
	if len(values) == 0 || values[0] == "" {
		return uuid.Nil, status.Error(codes.Unauthenticated, "missing client id")
	}
	id, err := uuid.Parse(values[0])
	if err != nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "malformed client id")
	}
	return id, nil
}

// Init registers a new session and returns its ClientId.
func (s *Server) Init(ctx context.Context, req *InitRequest) (*InitResponse, error) {
	id, err := s.svc.Init(ctx, req.Wallet, req.Tokens)
	if err != nil {
		return nil, mapInitError(err)
	}
	return &InitResponse{ClientID: id.String()}, nil
}

// Subscribe streams rendered Trade/event messages until the upstream dies, the
// client cancels, or Unsubscribe is called for this session.
func (s *Server) Subscribe(req *SubscribeRequest, stream WalletService_SubscribeServer) error {
	ctx := stream.Context()
	clientID, err := extractClientID(ctx)
	if err != nil {
		return err
	}

	downstream, err := s.svc.Subscribe(ctx, clientID)
	if err != nil {
		return mapSubscribeError(err)
	}

	for {
		select {
		case msg, ok := <-downstream:
			if !ok {
				_ = s.svc.Unsubscribe(clientID) // upstream died; release the session cleanly
				return nil
			}
			if err := stream.Send(&SubscribeResponse{Message: msg}); err != nil {
				_ = s.svc.Unsubscribe(clientID)
				return err
			}
		case <-ctx.Done():
			_ = s.svc.Unsubscribe(clientID) // client disconnected; release the upstream subscription
			return ctx.Err()
		}
	}
}

// Unsubscribe detaches and closes the session's live upstream subscription.
func (s *Server) Unsubscribe(ctx context.Context, req *UnsubscribeRequest) (*UnsubscribeResponse, error) {
	clientID, err := extractClientID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.Unsubscribe(clientID); err != nil {
		return nil, mapLookupError(err)
	}
	return &UnsubscribeResponse{Message: "Unsubscribed successfully"}, nil
}

// Holdings returns a point-in-time balance snapshot for the session's wallet.
func (s *Server) Holdings(ctx context.Context, req *HoldingsRequest) (*HoldingsResponse, error) {
	clientID, err := extractClientID(ctx)
	if err != nil {
		return nil, err
	}
	holdings, err := s.svc.Holdings(ctx, clientID)
	if err != nil {
		return nil, mapLookupError(err)
	}
	wire := make([]Holding, len(holdings))
	for i, h := range holdings {
		wire[i] = holdingToWire(h)
	}
	return &HoldingsResponse{Holdings: wire}, nil
}

// GetTrade synchronously decodes a single signature against the session's wallet.
func (s *Server) GetTrade(ctx context.Context, req *GetTradeRequest) (*GetTradeResponse, error) {
	clientID, err := extractClientID(ctx)
	if err != nil {
		return nil, err
	}
	trade, err := s.svc.GetTrade(ctx, clientID, req.Signature)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return &GetTradeResponse{Trade: tradeToWire(trade)}, nil
}

func mapInitError(err error) error {
	var invalidToken *gateway.InvalidTokenError
	switch {
	case errors.As(err, &invalidToken):
		return status.Error(codes.InvalidArgument, invalidToken.Error())
	case errors.Is(err, gateway.ErrInvalidWallet):
		return status.Error(codes.InvalidArgument, "Invalid wallet address")
	case errors.Is(err, gateway.ErrMissingTokens):
		return status.Error(codes.InvalidArgument, "Missing tokens")
	case errors.Is(err, gateway.ErrTokenUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func mapSubscribeError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return status.Error(codes.NotFound, "Client not found")
	case errors.Is(err, session.ErrAlreadySubscribed):
		return status.Error(codes.FailedPrecondition, "Subscription already exists")
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}

func mapLookupError(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return status.Error(codes.NotFound, "Client not found")
	}
	return status.Error(codes.Internal, err.Error())
}
