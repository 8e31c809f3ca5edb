package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/imkonsowa/waiter-prompts/bootstrap"
	"github.com/imkonsowa/waiter-prompts/config"
	"github.com/imkonsowa/waiter-prompts/models"
)

type Server struct {
	config   *config.Config
	handler  *Handler
	upgrader websocket.Upgrader
}

func main() {
	cfg := config.LoadConfig()
	config.SetupLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	server := &Server{
		config:   cfg,
		handler:  NewHandler(rt.Builder, rt.Catalog, rt.Reload),
		upgrader: websocket.Upgrader{},
	}

	if err := server.Run(ctx); err != nil {
		log.Fatalf("failed to run the server: %v", err)
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.Server.Address(),
		Handler: s.Router(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting prompt server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down prompt server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.POST("/prompt", func(ctx *gin.Context) {
		var req models.PromptRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := req.Validate(); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := s.handler.BuildPrompt(ctx.Request.Context(), req)
		if err != nil {
			ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, NewPromptResponse(res))
	})

	r.GET("/ws/prompt", func(ctx *gin.Context) {
		var query PromptQuery
		if err := ctx.ShouldBindQuery(&query); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		req := query.ToRequest()
		if err := req.Validate(); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c, err := s.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade connection", "error", err)
			return
		}
		defer c.Close()

		resultChan := s.handler.StreamPrompt(ctx.Request.Context(), req)
		for {
			select {
			case <-ctx.Request.Context().Done():
				return
			case result := <-resultChan:
				if result == nil {
					return
				}
				if result.Err != nil {
					if result.Err == io.EOF {
						return
					}
					msg := WebSocketsMessage{Type: MessageError, Data: result.Err.Error()}
					if err := c.WriteJSON(msg); err != nil {
						slog.Error("failed to write to ws connection", "error", err)
					}
					return
				}

				if err := c.WriteJSON(result.Msg); err != nil {
					slog.Error("failed to write to ws connection", "error", err)
					return
				}
			}
		}
	})

	r.GET("/templates", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, s.handler.Templates())
	})

	r.GET("/templates/:name", func(ctx *gin.Context) {
		name := ctx.Param("name")
		langs, err := s.handler.Languages(name)
		if err != nil {
			ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"name": name, "languages": langs})
	})

	r.POST("/reload", func(ctx *gin.Context) {
		if err := s.handler.Reload(); err != nil {
			slog.Error("reload failed", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"message": "reloaded", "templates": s.handler.Templates()})
	})

	return r
}
