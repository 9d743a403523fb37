package grpc

import (
	"context"
	"net"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/atinyakov/go-bookmarks/internal/app/service"
	"github.com/atinyakov/go-bookmarks/internal/errs"
	"github.com/atinyakov/go-bookmarks/internal/intercepters"
	"github.com/atinyakov/go-bookmarks/internal/middleware"
	"github.com/atinyakov/go-bookmarks/internal/models"
	"github.com/atinyakov/go-bookmarks/internal/storage"
)

// Validator checks a bound request.
type Validator interface {
	Struct(s any) error
}

// Server wraps the gRPC server and dependencies.
type Server struct {
	grpcServer *grpc.Server
	addr       string
	logger     *zap.Logger
}

// New creates a gRPC server listening on addr once started.
func New(addr string, logger *zap.Logger, svc service.BookmarkServiceIface, auth service.AuthIface, v Validator) *Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.UnaryServerInterceptor(intercepters.InterceptorLogger(logger)),
			intercepters.WithJWT(auth),
		),
	)

	s.RegisterService(&BookmarkServiceDesc, &BookmarkServer{
		Service:   svc,
		Validator: v,
	})

	return &Server{
		grpcServer: s,
		addr:       addr,
		logger:     logger,
	}
}

// Start listens on the configured address and serves until stopped.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.logger.Error("gRPC server failed to listen", zap.Error(err))
		return err
	}

	return s.Serve(lis)
}

// Serve accepts connections on lis.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server listening", zap.String("address", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// GracefulStop shuts down the server gracefully.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// --- Implementation of the gRPC interface ---

// BookmarkServer implements BookmarkServiceServer on top of the bookmark service.
type BookmarkServer struct {
	Service   service.BookmarkServiceIface
	Validator Validator
}

func stringField(in *structpb.Struct, name string) string {
	return in.GetFields()[name].GetStringValue()
}

func caller(ctx context.Context) (string, error) {
	username, ok := middleware.UsernameFrom(ctx)
	if !ok || username == "" {
		return "", status.Error(codes.Unauthenticated, "username missing in context")
	}
	return username, nil
}

// toStatus maps an error kind to a gRPC code. Field violations are attached
// as errdetails.BadRequest.
func toStatus(err error) error {
	e := errs.From(err)

	var code codes.Code
	switch e.Kind {
	case errs.KindUnauthorized:
		code = codes.Unauthenticated
	case errs.KindValidation:
		code = codes.InvalidArgument
	case errs.KindNotFound:
		code = codes.NotFound
	default:
		code = codes.Internal
	}

	st := status.New(code, e.Message)
	if len(e.Fields) == 0 {
		return st.Err()
	}

	br := &errdetails.BadRequest{}
	for _, f := range e.Fields {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f.Field,
			Description: f.Error,
		})
	}

	detailed, dErr := st.WithDetails(br)
	if dErr != nil {
		return st.Err()
	}
	return detailed.Err()
}

func bookmarkResponse(b *storage.Bookmark) (*structpb.Struct, error) {
	resp := models.NewBookmarkResponse(b)
	return structpb.NewStruct(map[string]any{
		"title": resp.Title,
		"url":   resp.URL,
	})
}

func (s *BookmarkServer) List(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	bookmarks, err := s.Service.List(ctx, username)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]any, 0, len(bookmarks))
	for _, b := range bookmarks {
		items = append(items, map[string]any{
			"id":    b.ID,
			"title": b.Title,
			"url":   b.URL,
			"owner": b.OwnerID,
		})
	}

	out, err := structpb.NewStruct(map[string]any{"bookmarks": items})
	if err != nil {
		return nil, toStatus(err)
	}
	return out, nil
}

func (s *BookmarkServer) Create(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	req := models.CreateBookmarkRequest{
		Title: stringField(in, "title"),
		URL:   stringField(in, "url"),
	}
	if err := s.Validator.Struct(&req); err != nil {
		return nil, toStatus(err)
	}

	b, err := s.Service.Create(ctx, username, req.Title, req.URL)
	if err != nil {
		return nil, toStatus(err)
	}

	return bookmarkResponse(b)
}

func (s *BookmarkServer) Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	req := models.UpdateBookmarkRequest{
		Title: stringField(in, "title"),
		URL:   stringField(in, "url"),
	}
	if err := s.Validator.Struct(&req); err != nil {
		return nil, toStatus(err)
	}

	b, err := s.Service.Update(ctx, username, stringField(in, "id"), req.Title, req.URL)
	if err != nil {
		return nil, toStatus(err)
	}

	return bookmarkResponse(b)
}

func (s *BookmarkServer) Delete(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	username, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.Service.Delete(ctx, username, stringField(in, "id"))
	if err != nil {
		return nil, toStatus(err)
	}

	return bookmarkResponse(b)
}
