package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/codecoach/internal/pipeline"
)

// Response headers carrying invocation metadata alongside the payload.
const (
	headerInvocationID = "X-Invocation-Id"
	headerModel        = "X-Model"
	headerAttempts     = "X-Attempts"
	headerCache        = "X-Cache"
)

type questionRequest struct {
	Language   string `json:"language" binding:"required"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

type evaluationRequest struct {
	Language  string              `json:"language" binding:"required"`
	Code      string              `json:"code" binding:"required"`
	TestCases []pipeline.TestCase `json:"testCases" binding:"required,min=1"`
}

// codeRequest carries a snippet for complexity analysis or review.
type codeRequest struct {
	Language string `json:"language" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type errorResponse struct {
	Error string         `json:"error"`
	Class pipeline.Class `json:"class"`
}

func (s *Server) handleQuestion(c *gin.Context) {
	var req questionRequest
	if !bind(c, pipeline.KindGenerateQuestion, &req) {
		return
	}
	s.run(c, pipeline.Task{
		Kind:       pipeline.KindGenerateQuestion,
		Language:   req.Language,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
	})
}

func (s *Server) handleEvaluation(c *gin.Context) {
	var req evaluationRequest
	if !bind(c, pipeline.KindEvaluateCode, &req) {
		return
	}
	s.run(c, pipeline.Task{
		Kind:      pipeline.KindEvaluateCode,
		Language:  req.Language,
		Code:      req.Code,
		TestCases: req.TestCases,
	})
}

func (s *Server) handleComplexity(c *gin.Context) {
	s.handleCode(c, pipeline.KindAnalyzeComplexity)
}

func (s *Server) handleReview(c *gin.Context) {
	s.handleCode(c, pipeline.KindReviewCode)
}

func (s *Server) handleCode(c *gin.Context, kind pipeline.Kind) {
	var req codeRequest
	if !bind(c, kind, &req) {
		return
	}
	s.run(c, pipeline.Task{
		Kind:     kind,
		Language: req.Language,
		Code:     req.Code,
	})
}

// bind decodes the JSON body into req, answering 400 on failure.
func bind(c *gin.Context, kind pipeline.Kind, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		invalid := &pipeline.ErrInvalidTask{Kind: kind, Reason: "malformed request body"}
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
			Error: pipeline.Notice(kind, invalid),
			Class: pipeline.ClassInvalidTask,
		})
		return false
	}
	return true
}

func (s *Server) run(c *gin.Context, task pipeline.Task) {
	ctx := c.Request.Context()
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	res, err := s.exec.Execute(ctx, task)
	if err != nil {
		class := pipeline.Classify(err)
		c.JSON(statusFor(class), errorResponse{
			Error: pipeline.Notice(task.Kind, err),
			Class: class,
		})
		return
	}

	payload, err := res.MarshalPayload()
	if err != nil {
		s.logger.Error("encode result", "invocation_id", res.InvocationID, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "could not encode result"})
		return
	}

	c.Header(headerInvocationID, res.InvocationID)
	c.Header(headerModel, res.Model)
	c.Header(headerAttempts, strconv.Itoa(res.Attempts))
	if res.Cached {
		c.Header(headerCache, "hit")
	} else {
		c.Header(headerCache, "miss")
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// statusFor maps a failure class to an HTTP status.
func statusFor(class pipeline.Class) int {
	switch class {
	case pipeline.ClassInvalidTask:
		return http.StatusBadRequest
	case pipeline.ClassMalformedResponse, pipeline.ClassSchemaViolation, pipeline.ClassRequestRejected:
		return http.StatusBadGateway
	case pipeline.ClassExhaustedRetries, pipeline.ClassTransientFailure:
		return http.StatusServiceUnavailable
	case pipeline.ClassCancelled:
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
