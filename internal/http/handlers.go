package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fyrsmithlabs/lexisum/internal/logging"
	"github.com/fyrsmithlabs/lexisum/internal/segment"
	"github.com/fyrsmithlabs/lexisum/internal/summarizer"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// sentencesOf returns the request's sentences, segmenting the text when no
// sentences were given.
func sentencesOf(req *WeightsRequest) []string {
	if len(req.Sentences) > 0 || strings.TrimSpace(req.Text) == "" {
		return req.Sentences
	}
	return segment.Split(req.Text)
}

func (s *Server) handleWeights(c echo.Context) error {
	var req WeightsRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid weights request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := logging.WithDocumentID(c.Request().Context(), req.DocumentID)
	sentences := sentencesOf(&req)

	w, err := s.summarizer.ComputeSentenceWeights(ctx, sentences, req.Text, req.BoundaryProbs)
	if err != nil {
		logging.ZapFromContext(ctx, s.logger).Error("weights computation failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "weights computation failed")
	}

	return c.JSON(http.StatusOK, WeightsResponse{
		Sentences:  nonNil(sentences),
		Weights:    w.Combined,
		Components: w.Components,
		Warnings:   w.Warnings,
	})
}

func (s *Server) handleSummarize(c echo.Context) error {
	var req SummarizeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid summarize request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := logging.WithDocumentID(c.Request().Context(), req.DocumentID)

	res, err := s.summarizer.Summarize(ctx, summarizer.Request{
		Sentences:     sentencesOf(&req.WeightsRequest),
		OriginalText:  req.Text,
		BoundaryProbs: req.BoundaryProbs,
		TopK:          req.TopK,
		Compression:   req.Compression,
		PreserveOrder: req.PreserveOrder,
	})
	if err != nil {
		if errors.Is(err, summarizer.ErrInvalidSelection) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		logging.ZapFromContext(ctx, s.logger).Error("summarization failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "summarization failed")
	}

	logging.ZapFromContext(ctx, s.logger).Debug("summarized",
		zap.Int("sentences", len(res.Weights)),
		zap.Int("selected", len(res.Indices)),
		zap.Int("warnings", len(res.Warnings)),
	)

	return c.JSON(http.StatusOK, SummarizeResponse{
		Summary:    res.Text(),
		Sentences:  res.Sentences,
		Indices:    res.Indices,
		Weights:    res.Weights,
		Components: res.Components,
		Ranking:    res.Ranking,
		Warnings:   res.Warnings,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
