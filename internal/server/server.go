package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"salon-agent/internal/actions"
	"salon-agent/internal/logging"
	"salon-agent/internal/session"
	"salon-agent/internal/transcript"
	"salon-agent/internal/utils"
)

// ToolService is the tool layer invoked by the voice agent during a call.
type ToolService interface {
	MultiplyNumbers(callID string, number1, number2 int) string
	ScheduleVisit(ctx context.Context, callID, name, rawDate, rawTime, purpose string) (*actions.ScheduleResult, error)
	QuoteEvent(callID, eventType, tentativeDate string, guestCount int) string
}

// AfterCallRunner is the terminal pipeline invoked at call teardown.
type AfterCallRunner interface {
	Run(ctx context.Context, snap session.Snapshot)
}

// Server is the automation surface the voice agent forwards tool calls and
// end-of-call snapshots to.
type Server struct {
	Tools     ToolService
	AfterCall AfterCallRunner
	Sessions  *session.Store

	engine *gin.Engine
}

func New(tools ToolService, afterCall AfterCallRunner) *Server {
	server := &Server{
		Tools:     tools,
		AfterCall: afterCall,
		Sessions:  session.NewStore(),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", server.health)
	engine.POST("/salon_ibargo_multiplica_numeros", server.multiplyNumbers)
	engine.POST("/salon_ibargo_agendar_cita_disponibilidad", server.scheduleVisit)
	engine.POST("/salon_ibargo_cotizar_evento", server.quoteEvent)
	engine.POST("/salon_ibargo_after_call", server.afterCall)

	server.engine = engine

	return server
}

// Router exposes the configured handler for the HTTP server and for tests.
func (s *Server) Router() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type multiplyRequest struct {
	CallID  string `json:"call_id"`
	Number1 int    `json:"number1"`
	Number2 int    `json:"number2"`
}

func (s *Server) multiplyNumbers(c *gin.Context) {
	var req multiplyRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": s.Tools.MultiplyNumbers(req.CallID, req.Number1, req.Number2),
	})
}

type scheduleRequest struct {
	CallID    string `json:"call_id"`
	Name      string `json:"name"       binding:"required"`
	VisitDate string `json:"visit_date" binding:"required"`
	VisitTime string `json:"visit_time" binding:"required"`
	Purpose   string `json:"purpose"`
}

func (s *Server) scheduleVisit(c *gin.Context) {
	var req scheduleRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	result, err := s.Tools.ScheduleVisit(
		c.Request.Context(),
		req.CallID, req.Name, req.VisitDate, req.VisitTime, req.Purpose,
	)
	if err != nil {
		// Hard resolution failure: the caller asks the user to clarify
		// instead of booking.
		logging.Logger.Error("Schedule visit failed",
			zap.String("call_id", req.CallID),
			zap.String("error", err.Error()),
		)

		c.JSON(http.StatusOK, gin.H{"message": actions.ClarifyDateTimeMessage})

		return
	}

	response := gin.H{"message": result.Message}
	if result.ConfirmedVisit != nil {
		response["confirmed_visit"] = result.ConfirmedVisit

		if req.CallID != "" {
			err = s.Sessions.Track(req.CallID).ConfirmVisit(*result.ConfirmedVisit)
			if err != nil {
				logging.Logger.Warn("Visit confirmation not tracked",
					zap.String("call_id", req.CallID),
					zap.String("error", err.Error()),
				)
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

type quoteRequest struct {
	CallID        string `json:"call_id"`
	EventType     string `json:"tipo_evento"      binding:"required"`
	TentativeDate string `json:"fecha_tentativa"`
	GuestCount    int    `json:"numero_invitados"`
}

func (s *Server) quoteEvent(c *gin.Context) {
	var req quoteRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": s.Tools.QuoteEvent(req.CallID, req.EventType, req.TentativeDate, req.GuestCount),
	})
}

type afterCallRequest struct {
	CallID         string                  `json:"call_id"         binding:"required"`
	CallStartedAt  string                  `json:"call_started_at" binding:"required"`
	Transcript     []transcript.Item       `json:"transcript"`
	ConfirmedVisit *session.ConfirmedVisit `json:"confirmed_visit"`
}

// afterCall accepts the end-of-call snapshot. By contract the caller gets a
// success response whatever happens downstream; the pipeline has its own
// error boundary and never fails this handler.
func (s *Server) afterCall(c *gin.Context) {
	var req afterCallRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	startedAt, err := utils.ParseTimestamp(req.CallStartedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "call_started_at must be formatted as " + utils.TimestampLayout})

		return
	}

	confirmed := req.ConfirmedVisit
	if confirmed == nil {
		// Fall back to the visit tracked at confirmation time when the
		// teardown payload omits it.
		if tracked, ok := s.Sessions.Lookup(req.CallID); ok {
			confirmed = tracked.Snapshot().ConfirmedVisit
		}
	}

	s.Sessions.Remove(req.CallID)

	snap := session.Snapshot{
		CallID:         req.CallID,
		StartedAt:      startedAt,
		Transcript:     req.Transcript,
		ConfirmedVisit: confirmed,
	}

	// The pipeline outlives the request: call teardown must not be aborted
	// by the agent disconnecting early.
	s.AfterCall.Run(context.WithoutCancel(c.Request.Context()), snap)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NewHTTPServer wraps the router in an http.Server with sane timeouts.
func NewHTTPServer(addr string, handler http.Handler, timeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       timeout,
	}
}
