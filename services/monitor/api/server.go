package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/telerehab/rehab-monitoring/services/monitor/chart"
	"github.com/telerehab/rehab-monitoring/services/monitor/chat"
	"github.com/telerehab/rehab-monitoring/services/monitor/common"
	"github.com/telerehab/rehab-monitoring/services/monitor/metrics"
	"github.com/telerehab/rehab-monitoring/services/monitor/storage"
)

var log = logger.GetOrCreate("api")

const requestIDHeader = "X-Request-Id"

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ListenAddress string
	PatientID     string
	Engine        Engine
	Chat          ChatSession
	Conversations ConversationsClient
	Store         Store
}

// server is the local HTTP surface of the monitor: the dashboard, the chart and the
// chat are read and driven through it
type server struct {
	router     *gin.Engine
	httpServer *http.Server
	engine     Engine
	chat       ChatSession
	convos     ConversationsClient
	store      Store
	patientID  string
	listenAddr string
	wg         sync.WaitGroup
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Engine) {
		return nil, errors.New("nil engine")
	}
	if check.IfNil(args.Chat) {
		return nil, errors.New("nil chat session")
	}
	if check.IfNil(args.Conversations) {
		return nil, errors.New("nil conversations client")
	}
	if check.IfNil(args.Store) {
		return nil, errors.New("nil store")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestID())

	s := &server{
		router:     router,
		engine:     args.Engine,
		chat:       args.Chat,
		convos:     args.Conversations,
		store:      args.Store,
		patientID:  args.PatientID,
		listenAddr: args.ListenAddress,
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")

	api.POST("/patient", s.handleSetPatient)
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/chart", s.handleChart)

	api.POST("/chat/connect", s.handleChatConnect)
	api.POST("/chat/send", s.handleChatSend)
	api.POST("/chat/close", s.handleChatClose)
	api.GET("/chat/messages", s.handleChatMessages)
	api.GET("/conversations", s.handleConversations)
}

// Start listens and serves connections
func (s *server) Start() {
	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: s.router,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()
	return nil
}

// --- Middlewares ---

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if len(id) == 0 {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// --- Handlers ---

func (s *server) handleSetPatient(c *gin.Context) {
	var req struct {
		PatientID string `json:"patientId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(strings.TrimSpace(req.PatientID)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	err := s.store.SetPreference(c.Request.Context(), storage.PrefKeyPatientID, req.PatientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// the saved id is picked up at the next start
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *server) handleDashboard(c *gin.Context) {
	type deltaView struct {
		Value   float64 `json:"value"`
		Changed bool    `json:"changed"`
	}

	deltas := make(map[string]deltaView, len(metrics.AllMetrics))
	for _, metric := range metrics.AllMetrics {
		value, changed := s.engine.Delta(metric)
		deltas[string(metric)] = deltaView{Value: value, Changed: changed}
	}

	var sample *common.MetricSample
	if current, ok := s.engine.Current(); ok {
		sample = &current
	}

	analysis := s.engine.Analysis()

	c.JSON(http.StatusOK, gin.H{
		"patientId":      s.patientID,
		"sample":         sample,
		"deltas":         deltas,
		"pulseMA":        analysis.PulseMA,
		"movementMA":     analysis.MovementMA,
		"isPulseAnomaly": analysis.IsPulseAnomaly,
	})
}

func (s *server) handleChart(c *gin.Context) {
	width, errW := strconv.ParseFloat(c.DefaultQuery("width", "800"), 64)
	height, errH := strconv.ParseFloat(c.DefaultQuery("height", "400"), 64)
	if errW != nil || errH != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid canvas size"})
		return
	}

	toggles := chart.Toggles{Metrics: make(map[metrics.Metric]bool)}
	if c.Query("all") == "true" {
		toggles.All = true
	}
	for _, name := range strings.Split(c.Query("metrics"), ",") {
		name = strings.TrimSpace(name)
		if len(name) > 0 {
			toggles.Metrics[metrics.Metric(name)] = true
		}
	}

	series := chart.BuildSeries(s.engine.Histories(), toggles)
	placed := chart.Layout(series, width, height)

	c.JSON(http.StatusOK, gin.H{"series": placed})
}

func (s *server) handleChatConnect(c *gin.Context) {
	var req struct {
		DoctorID string `json:"doctorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(strings.TrimSpace(req.DoctorID)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	err := s.chat.Connect(c.Request.Context(), req.DoctorID, common.RoleDoctor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":      s.chat.State(),
		"doctorName": s.chat.OtherName(),
	})
}

func (s *server) handleChatSend(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	resp, err := s.chat.Send(c.Request.Context(), req.Message)
	if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrNoReceiver) || errors.Is(err, chat.ErrNotConnected) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *server) handleChatClose(c *gin.Context) {
	s.chat.Close()
	c.JSON(http.StatusOK, gin.H{"state": s.chat.State()})
}

func (s *server) handleChatMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state":    s.chat.State(),
		"messages": s.chat.Messages(),
	})
}

func (s *server) handleConversations(c *gin.Context) {
	doctorID := c.Query("doctorId")
	if len(doctorID) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing doctorId"})
		return
	}

	resp, err := s.convos.GetConversations(c.Request.Context(), doctorID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *server) IsInterfaceNil() bool {
	return s == nil
}
