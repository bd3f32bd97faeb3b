package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jinlee/portfolio-server-go/internal/cache"
	"github.com/jinlee/portfolio-server-go/internal/config"
	"github.com/jinlee/portfolio-server-go/internal/content"
	"github.com/jinlee/portfolio-server-go/internal/qna"
	"github.com/jinlee/portfolio-server-go/internal/server"
)

// Container bundles the assembled services. All heavy initialization
// (cache connections, provider clients) happens in Build so that handlers
// stay focused on request logic.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Handler *server.Handler

	closers []func()
}

// Close releases held resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func Build(cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Optional compiled-post cache.
	var postCache *cache.Cache
	if cfg.Redis.Enabled() {
		postCache, err = cache.New(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
		closers = append(closers, func() {
			_ = postCache.Close()
		})
	}

	// Content pipeline
	store := content.NewStore(cfg.Content.PostsDir, logger)
	compiler := content.NewCompiler()
	contentSvc := content.NewService(store, compiler, postCache, logger)

	// Q&A pipeline
	gateway := qna.NewGateway(cfg.OpenAI, cfg.QnA.Timeout, logger)
	aboutFile := cfg.Content.AboutFile
	loadPersona := func() (*qna.PersonaProfile, error) {
		return qna.LoadPersona(aboutFile)
	}

	handler := server.NewHandler(contentSvc, gateway, loadPersona, cfg.QnA.HistoryLimit, logger)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Handler: handler,
		closers: closers,
	}, nil
}
