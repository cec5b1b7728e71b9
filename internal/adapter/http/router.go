package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/liquidityos/escrow-coordinator/dispatcher"
	"github.com/liquidityos/escrow-coordinator/pkg/metrics"
)

// RouterDeps holds the dependencies SetupRouter needs to wire routes, in
// the shape of VidIsWandering-secure-payment-gateway's RouterDeps.
type RouterDeps struct {
	Dispatcher *dispatcher.Dispatcher
	Metrics    *metrics.Registry
	Logger     zerolog.Logger
}

// SetupRouter initialises the Gin engine with every command of spec.md §6
// mapped to a route, plus the supplemented /metrics endpoint.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(recovery(deps.Logger))
	r.Use(requestLogger(deps.Logger))

	h := NewHandler(deps.Dispatcher)

	r.GET("/health", h.Health)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	escrows := v1.Group("/escrows")
	{
		escrows.POST("", h.CreateDst)
		escrows.GET("/:id", h.GetEscrow)
		escrows.POST("/:id/fund", h.Fund)
		escrows.POST("/:id/withdraw", h.Withdraw)
		escrows.POST("/:id/cancel", h.Cancel)
		escrows.POST("/:id/rescue", h.Rescue)
	}

	return r
}
