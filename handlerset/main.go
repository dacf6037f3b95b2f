package handlerset

import (
	"io"
	"net/http"

	"github.com/cyverse-de/quiet-hours/handlers"
	"github.com/cyverse-de/quiet-hours/logging"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logging.Log.WithFields(logrus.Fields{"package": "handlerset"})

// Settings represents the settings that apply to every route.
type Settings struct {
	Secret         string
	AllowedOrigins []string
}

// HandlerSet represents the set of HTTP handlers served by the service along with the resources that they
// depend on.
type HandlerSet struct {
	router  *gin.Engine
	closers []io.Closer
}

// New creates a new handler set. The closers are closed, in order, when the handler set is closed.
func New(settings *Settings, reconcile *handlers.Reconcile, blocks *handlers.Blocks, closers ...io.Closer) *HandlerSet {
	router := gin.New()
	router.Use(gin.Recovery())

	if len(settings.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: settings.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
			AllowHeaders: []string{"Origin", "Content-Type", handlers.SecretHeader},
		}))
	}

	router.GET("/healthz", handlers.HandleHealthCheck)

	authorized := router.Group("/", handlers.RequireSecret(settings.Secret))
	authorized.GET("/reconcile", reconcile.HandleReconcile)
	authorized.GET("/sweep", reconcile.HandleSweep)

	if blocks != nil {
		authorized.POST("/blocks", blocks.HandleCreate)
		authorized.GET("/blocks", blocks.HandleList)
		authorized.DELETE("/blocks/:id", blocks.HandleDelete)
	}

	return &HandlerSet{router: router, closers: closers}
}

// Handler returns the HTTP handler for the handler set.
func (hs *HandlerSet) Handler() http.Handler {
	return hs.router
}

// Close releases the resources used by the handler set.
func (hs *HandlerSet) Close() {
	for _, closer := range hs.closers {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("unable to close a resource")
		}
	}
}
