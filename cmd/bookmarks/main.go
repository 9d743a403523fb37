package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/atinyakov/go-bookmarks/internal/app/handler"
	"github.com/atinyakov/go-bookmarks/internal/app/server"
	"github.com/atinyakov/go-bookmarks/internal/app/server/grpc"
	"github.com/atinyakov/go-bookmarks/internal/app/service"
	"github.com/atinyakov/go-bookmarks/internal/config"
	"github.com/atinyakov/go-bookmarks/internal/logger"
	"github.com/atinyakov/go-bookmarks/internal/repository"
	"github.com/atinyakov/go-bookmarks/internal/storage"
	"github.com/atinyakov/go-bookmarks/internal/validation"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

const (
	pprofAddr       = "localhost:6060"
	shutdownTimeout = 5 * time.Second
)

func main() {
	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	log := logger.New()
	if err := log.Init("info"); err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, log); err != nil {
		log.Log.Fatal("bookmarks stopped", zap.Error(err))
	}
}

// run starts the service and blocks until ctx is done. With -issue-token it
// only prints a token.
func run(ctx context.Context, args []string, out io.Writer, log *logger.Logger) error {
	options, err := config.ParseArgs(args)
	if err != nil {
		return err
	}

	if err := log.Init(options.LogLevel); err != nil {
		return err
	}
	zapLogger := log.Log

	auth := service.NewAuth(options.JWTSecretKey, options.TokenTTL.Duration)

	if options.IssueToken != "" {
		token, err := auth.BuildJWTString(options.IssueToken)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, token)
		return err
	}

	s, closeStorage, err := openStorage(ctx, options, zapLogger)
	if err != nil {
		return err
	}
	defer closeStorage()

	for _, username := range options.Users {
		if _, err := s.EnsureUser(ctx, username); err != nil {
			return fmt.Errorf("seed user %q: %w", username, err)
		}
		log.Info("user ready", zap.String("username", username))
	}

	bookmarkService := service.NewBookmark(s, zapLogger)
	v := validation.New(options.Allowed())
	r := server.Init(handler.NewBookmark(bookmarkService, auth, v, zapLogger), zapLogger)

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", pprofAddr))
			if err := http.ListenAndServe(pprofAddr, nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 2)

	var grpcServer *grpc.Server
	if options.GRPCAddress != "" {
		grpcServer = grpc.New(options.GRPCAddress, zapLogger, bookmarkService, auth, v)
		go func() {
			errCh <- grpcServer.Start()
		}()
	}

	srv := &http.Server{
		Addr:    options.Address,
		Handler: r,
	}

	go func() {
		if options.EnableHTTPS {
			manager := &autocert.Manager{
				Cache:      autocert.DirCache("cache-dir"),
				Prompt:     autocert.AcceptTOS,
				HostPolicy: autocert.HostWhitelist(options.TLSHosts...),
			}
			srv.Addr = ":443"
			srv.TLSConfig = manager.TLSConfig()

			zapLogger.Info("Server is running with TLS", zap.Strings("hosts", options.TLSHosts))
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}

		zapLogger.Info("Server is running", zap.String("address", options.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		zapLogger.Info("shutting down")
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if sErr := srv.Shutdown(shutdownCtx); sErr != nil && err == nil {
		err = sErr
	}

	return err
}

// openStorage picks PostgreSQL when a DSN is configured, then the file store,
// then memory.
func openStorage(ctx context.Context, options *config.Options, zapLogger *zap.Logger) (service.Storage, func(), error) {
	switch {
	case options.DatabaseDSN != "":
		zapLogger.Info("using db")
		db, err := repository.InitDB(ctx, options.DatabaseDSN, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		return repository.CreateBookmarkRepository(db, zapLogger), func() { _ = db.Close() }, nil

	case options.FilePath != "":
		zapLogger.Info("using file", zap.String("filePath", options.FilePath))
		s, err := storage.NewFileStorage(options.FilePath, zapLogger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	default:
		zapLogger.Info("using in memory storage")
		s, err := storage.CreateMemoryStorage()
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}
