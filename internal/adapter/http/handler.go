package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/liquidityos/escrow-coordinator/dispatcher"
	"github.com/liquidityos/escrow-coordinator/domain"
	"github.com/liquidityos/escrow-coordinator/pkg/apperror"
)

// Handler adapts dispatcher.Dispatcher's typed commands to JSON requests,
// per spec.md §6 ("any request/response surface that can carry the typed
// commands suffices"). It is the one place in this module that decodes an
// untyped wire payload; everything past Bind is a typed struct.
type Handler struct {
	d *dispatcher.Dispatcher
}

func NewHandler(d *dispatcher.Dispatcher) *Handler {
	return &Handler{d: d}
}

type createDstRequest struct {
	OrderHash     string          `json:"order_hash" binding:"required"`
	Hashlock      string          `json:"hashlock" binding:"required"`
	Maker         string          `json:"maker" binding:"required"`
	Taker         string          `json:"taker" binding:"required"`
	Token         string          `json:"token"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	SafetyDeposit decimal.Decimal `json:"safety_deposit"`
	Timelocks     string          `json:"timelocks" binding:"required"`
	Side          string          `json:"type"`
}

func (h *Handler) CreateDst(c *gin.Context) {
	var req createDstRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.InvalidParameters(err.Error()))
		return
	}

	res, err := h.d.CreateDst(c.Request.Context(), dispatcher.CreateDstCommand{
		OrderHash:      req.OrderHash,
		Hashlock:       req.Hashlock,
		Maker:          req.Maker,
		Taker:          req.Taker,
		Token:          req.Token,
		Amount:         req.Amount,
		SafetyDeposit:  req.SafetyDeposit,
		PackedTimelock: req.Timelocks,
		Side:           domain.Side(req.Side),
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, res)
}

type fundRequest struct {
	FromAddress string   `json:"from_address"`
	TxIDs       []string `json:"tx_ids" binding:"required"`
}

func (h *Handler) Fund(c *gin.Context) {
	var req fundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.InvalidParameters(err.Error()))
		return
	}

	res, err := h.d.Fund(c.Request.Context(), dispatcher.FundCommand{
		EscrowID:    c.Param("id"),
		FromAddress: req.FromAddress,
		TxIDs:       req.TxIDs,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

type withdrawRequest struct {
	Secret        string `json:"secret" binding:"required"`
	CallerAddress string `json:"caller_address" binding:"required"`
	IsPublic      bool   `json:"is_public"`
}

func (h *Handler) Withdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.InvalidParameters(err.Error()))
		return
	}

	res, err := h.d.Withdraw(c.Request.Context(), dispatcher.WithdrawCommand{
		EscrowID:      c.Param("id"),
		Secret:        req.Secret,
		CallerAddress: req.CallerAddress,
		IsPublic:      req.IsPublic,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

type cancelRequest struct {
	CallerAddress string `json:"caller_address" binding:"required"`
}

func (h *Handler) Cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.InvalidParameters(err.Error()))
		return
	}

	res, err := h.d.Cancel(c.Request.Context(), dispatcher.CancelCommand{
		EscrowID:      c.Param("id"),
		CallerAddress: req.CallerAddress,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

type rescueRequest struct {
	CallerAddress string          `json:"caller_address" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

func (h *Handler) Rescue(c *gin.Context) {
	var req rescueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperror.InvalidParameters(err.Error()))
		return
	}

	res, err := h.d.Rescue(c.Request.Context(), dispatcher.RescueCommand{
		EscrowID:      c.Param("id"),
		CallerAddress: req.CallerAddress,
		Amount:        req.Amount,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

func (h *Handler) GetEscrow(c *gin.Context) {
	res, err := h.d.GetEscrow(c.Request.Context(), dispatcher.GetEscrowCommand{EscrowID: c.Param("id")})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, res)
}

func (h *Handler) Health(c *gin.Context) {
	res := h.d.Health(c.Request.Context())
	status := http.StatusOK
	if !res.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"healthy":        res.Healthy,
		"connected":      res.Connected,
		"active_escrows": res.ActiveEscrows,
	})
}
