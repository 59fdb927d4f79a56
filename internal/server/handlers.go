package server

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/medialaxis/pkg/buildinfo"
	"github.com/matzehuels/medialaxis/pkg/errors"
	"github.com/matzehuels/medialaxis/pkg/evaluation"
	skelio "github.com/matzehuels/medialaxis/pkg/io"
	"github.com/matzehuels/medialaxis/pkg/pipeline"
	"github.com/matzehuels/medialaxis/pkg/shape"
)

// skeletonResponse is the body answered by /v1/skeletonize and /v1/prune.
type skeletonResponse struct {
	RunID     string             `json:"run_id"`
	Tolerance float64            `json:"tolerance,omitempty"`
	CacheHit  bool               `json:"cache_hit"`
	Method    pipeline.Method    `json:"method,omitempty"`
	Param     float64            `json:"param,omitempty"`
	Removed   int                `json:"removed,omitempty"`
	Metrics   evaluation.Metrics `json:"metrics"`
	Skeleton  json.RawMessage    `json:"skeleton"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

func (s *Server) handleSkeletonize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.skeletonize(ctx, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := skelio.MarshalSkeleton(res.Skeleton)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, skeletonResponse{
		RunID:     res.RunID,
		Tolerance: res.Tolerance,
		CacheHit:  res.CacheHit,
		Metrics:   res.Metrics,
		Skeleton:  body,
	})
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := r.URL.Query()
	method, err := pipeline.ParseMethod(q.Get("method"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	param, err := floatParam(q.Get("param"), 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := pipeline.ValidateParam(method, param); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.skeletonize(ctx, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pr, err := s.runner.PruneResult(ctx, res, method, param)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := skelio.MarshalSkeleton(pr.Skeleton)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, skeletonResponse{
		RunID:    res.RunID,
		CacheHit: pr.CacheHit,
		Method:   pr.Method,
		Param:    pr.Param,
		Removed:  pr.Removed,
		Metrics:  pr.Metrics,
		Skeleton: body,
	})
}

var contentTypes = map[string]string{
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatPNG
	}
	if err := pipeline.ValidateFormats([]string{format}); err != nil {
		s.writeError(w, r, err)
		return
	}
	scale, err := intParam(q.Get("scale"), 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.skeletonize(ctx, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := pipeline.Render(ctx, res, res.Skeleton, pipeline.RenderOptions{
		Formats:  []string{format},
		Scale:    scale,
		Fill:     q.Get("fill") == "true",
		Disks:    q.Get("disks") == "true",
		Detailed: q.Get("detailed") == "true",
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	threshold, err := thresholdParam(r.URL.Query().Get("threshold"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse form"))
		return
	}

	ref, err := formShape(r.MultipartForm, "ref", threshold)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cmp, err := formShape(r.MultipartForm, "cmp", threshold)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := pipeline.Compare(ref, cmp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// skeletonize decodes the mask in the request body and runs the pipeline
// with the options given in the query.
func (s *Server) skeletonize(ctx context.Context, r *http.Request) (*pipeline.Result, error) {
	opts, err := parseOptions(r)
	if err != nil {
		return nil, err
	}
	sh, err := pipeline.DecodeShape(r.Body, opts.Threshold)
	if err != nil {
		return nil, err
	}
	return s.runner.Skeletonize(ctx, sh, opts)
}

// parseOptions reads pipeline options from the query string.
func parseOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.DefaultOptions()

	var err error
	if opts.Alpha, err = floatParam(q.Get("alpha"), opts.Alpha); err != nil {
		return opts, err
	}
	if opts.TargetNodes, err = intParam(q.Get("target_nodes"), 0); err != nil {
		return opts, err
	}
	if opts.Threshold, err = thresholdParam(q.Get("threshold")); err != nil {
		return opts, err
	}
	opts.Close = q.Get("close") != "false"
	opts.Refresh = q.Get("refresh") == "true"
	return opts, opts.Validate()
}

func formShape(form *multipart.Form, field string, threshold uint8) (*shape.Shape, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "missing form file %q", field)
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open form file %q", field)
	}
	defer f.Close()
	return pipeline.DecodeShape(f, threshold)
}

func thresholdParam(v string) (uint8, error) {
	n, err := intParam(v, int(pipeline.DefaultThreshold))
	if err != nil {
		return 0, err
	}
	if err := errors.ValidateRange("threshold", float64(n), 0, 255); err != nil {
		return 0, err
	}
	return uint8(n), nil
}

func floatParam(v string, def float64) (float64, error) {
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid number %q", v)
	}
	return f, nil
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid integer %q", v)
	}
	return n, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
