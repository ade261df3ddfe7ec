// Package api serves the benchmark over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
)

type Server struct {
	store   *ReportStore
	service *BenchService
}

func NewServer(store *ReportStore, service *BenchService) *Server {
	if store == nil {
		store = NewReportStore(0)
	}
	return &Server{
		store:   store,
		service: service,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/model", s.handleModel)
	e.POST("/v1/benchmarks", s.handleCreateBenchmark)
	e.GET("/v1/benchmarks", s.handleListBenchmarks)
	e.GET("/v1/benchmarks/:id", s.handleGetBenchmark)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModel(c *echo.Context) error {
	if s.service == nil {
		return writeServerError(c, errors.New("benchmark service not configured"))
	}
	return c.JSON(http.StatusOK, s.service.Describe())
}

func (s *Server) handleCreateBenchmark(c *echo.Context) error {
	if s.service == nil {
		return writeServerError(c, errors.New("benchmark service not configured"))
	}
	req, err := decodeJSON[BenchmarkRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, "", err.Error())
	}
	rep, err := s.service.Run(req)
	if err != nil {
		return writeRunError(c, err)
	}
	s.store.Put(rep)
	return c.JSON(http.StatusOK, rep)
}

func (s *Server) handleListBenchmarks(c *echo.Context) error {
	reports := s.store.List()
	resp := ListResponse{Object: "list", Data: make([]BenchmarkSummary, 0, len(reports))}
	for _, r := range reports {
		resp.Data = append(resp.Data, summarize(r))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetBenchmark(c *echo.Context) error {
	id := c.Param("id")
	rep, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "benchmark not found: "+id)
	}
	return c.JSON(http.StatusOK, rep)
}
