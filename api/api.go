package api

import (
	"errors"
	"fmt"
	"net/http"
	"portfolioanalyzer/internal/app"
	"portfolioanalyzer/internal/domain"
	"portfolioanalyzer/internal/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	PortfolioHandler app.PortfolioHandler
	TaxHandler       app.TaxHandler
	Logger           *zap.SugaredLogger
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to portfolio analyzer"})
	})
	router.POST("/portfolio", m.portfolio)
	router.POST("/tax", m.tax)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func errorCode(err error) int {
	var cfgErr *domain.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoData):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, errorCode(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Warnf("request failed with %d: %s", code, err.Error())
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// logRequestMiddleware tags each request with an id and puts a request
// scoped logger and profile on the request context
func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	requestID := uuid.New()
	log := m.Logger
	if log == nil {
		log = zap.S()
	}
	log = log.With("requestID", requestID.String())

	ctx := logger.WithLogger(c.Request.Context(), log)
	ctx, profile := domain.NewCtxWithProfile(ctx)
	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Request-ID", requestID.String())

	start := time.Now().UTC()
	c.Next()
	profile.End()

	spans, err := profile.ToJsonBytes()
	if err != nil {
		log.Warnf("failed to encode profile: %s", err.Error())
	}
	log.Infow("handled request",
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"spans", string(spans),
	)
}
