package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/corvan/Beam/internal/adapters/signal"
	"github.com/corvan/Beam/internal/app"
	"github.com/corvan/Beam/internal/config"
)

// ClientTokenMiddleware gives every browser a stable opaque token so
// diagnostics can correlate reconnects from the same client. It is not
// an identity check; profiles stay trusted as presented.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get("ct").(string)
		if token == "" {
			token = uuid.NewString()
			sess.Set("ct", token)
			_ = sess.Save()
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// CORSMiddleware reflects the configured origin on the read-only API
// endpoints. WebSocket origin checks live in the signal controller.
func CORSMiddleware(allowed string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowed)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("BeamSessions", store))
	r.Use(ClientTokenMiddleware())
	r.Use(CORSMiddleware(cfg.AllowedOrigin))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	r.GET("/current-host", func(c *gin.Context) {
		if p, ok := coord.Registry.HostProfile(); ok {
			c.JSON(http.StatusOK, gin.H{"profile": p})
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": nil})
	})

	api := r.Group("/api")

	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": cfg.ICEServers()})
	})

	ctrl := signal.NewController(cfg, coord)
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
