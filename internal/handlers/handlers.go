package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/Brownie44l1/dermascan-api/internal/analysis"
	"github.com/Brownie44l1/dermascan-api/internal/model"
	"github.com/Brownie44l1/dermascan-api/internal/questionnaire"
	"github.com/Brownie44l1/dermascan-api/internal/report"
	"github.com/Brownie44l1/dermascan-api/internal/session"
)

const (
	// imagesField is the multipart field holding the uploaded photographs.
	imagesField = "images"

	maxUploadBytes = 32 << 20
)

// Pipeline runs one analysis.
type Pipeline interface {
	Analyze(ctx context.Context, req analysis.Request) (*report.Report, error)
	MaxImages() int
}

// Classifier labels raw feature rows.
type Classifier interface {
	Classify(rows [][]float64) ([]model.ClassificationResult, error)
	Classes() []string
}

// Archive persists submissions and reports.
type Archive interface {
	SaveSubmission(ctx context.Context, id string, a questionnaire.Answers) error
	SaveReport(ctx context.Context, r *report.Report) error
	LatestReport(ctx context.Context, submissionID string) (*report.Report, error)
	Submission(ctx context.Context, id string) (questionnaire.Answers, error)
}

type Handler struct {
	pipeline   Pipeline
	classifier Classifier
	sessions   *session.Store
	archive    Archive
	logger     *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithArchive enables persistence of submissions and reports.
func WithArchive(a Archive) Option {
	return func(h *Handler) {
		h.archive = a
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func NewHandler(pipeline Pipeline, classifier Classifier, sessions *session.Store, opts ...Option) *Handler {
	h := &Handler{
		pipeline:   pipeline,
		classifier: classifier,
		sessions:   sessions,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("POST /analyze", h.Analyze)
	mux.HandleFunc("POST /questionnaire", h.SubmitQuestionnaire)
	mux.HandleFunc("POST /sessions/{id}/images", h.UploadImages)
	mux.HandleFunc("GET /sessions/{id}/report", h.GetReport)
	return mux
}

type healthResponse struct {
	Status  string   `json:"status"`
	Classes []string `json:"classes"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type analysisResponse struct {
	SessionID string         `json:"session_id"`
	Report    *report.Report `json:"report"`
	Text      string         `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Classes: h.classifier.Classes(),
	})
}

// Predict classifies one raw feature vector.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: failed to read request body", errBadRequest))
		return
	}

	var req model.PredictionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid JSON", errBadRequest))
		return
	}

	results, err := h.classifier.Classify([][]float64{req.Features})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results[0])
}

// Analyze runs questionnaire and images from a single multipart request.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseMultipart(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	answers, err := questionnaire.ParseForm(url.Values(form.Value))
	if err != nil {
		h.writeError(w, err)
		return
	}
	images, err := h.readImages(form)
	if err != nil {
		h.writeError(w, err)
		return
	}

	sess := h.sessions.Create(answers)
	rep, err := h.analyze(r.Context(), sess, images)
	if err != nil {
		h.sessions.Delete(sess.ID)
		h.writeError(w, err)
		return
	}
	h.saveSubmission(r.Context(), sess)

	h.respond(w, r, sess, rep)
}

// SubmitQuestionnaire validates answers and opens a session for them. It
// accepts a form post or a JSON object.
func (h *Handler) SubmitQuestionnaire(w http.ResponseWriter, r *http.Request) {
	answers, err := h.parseAnswers(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	sess := h.sessions.Create(answers)
	h.saveSubmission(r.Context(), sess)
	h.logger.Info("questionnaire submitted", "session", sess.ID)

	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: sess.ID})
}

// UploadImages analyzes an image batch against a session's answers. An
// expired session is restored from the archive when one is configured.
func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	sess, err := h.lookupSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	form, err := h.parseMultipart(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	images, err := h.readImages(form)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rep, err := h.analyze(r.Context(), sess, images)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respond(w, r, sess, rep)
}

func (h *Handler) lookupSession(ctx context.Context, id string) (session.Session, error) {
	sess, err := h.sessions.Get(id)
	if err == nil || h.archive == nil || !errors.Is(err, session.ErrNotFound) {
		return sess, err
	}

	answers, err := h.archive.Submission(ctx, id)
	if err != nil {
		return session.Session{}, err
	}
	h.logger.Info("session restored from archive", "session", id)
	return h.sessions.Restore(id, answers), nil
}

// GetReport returns a session's report as text, or Markdown with
// ?format=markdown.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rep, err := h.findReport(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	format := report.Format(r.URL.Query().Get("format"))
	contentType := "text/plain; charset=utf-8"
	if format == report.FormatMarkdown {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := report.NewWriter(format, w).Write(rep); err != nil {
		h.logger.Error("failed to write report", "session", id, "error", err)
	}
}

func (h *Handler) findReport(ctx context.Context, id string) (*report.Report, error) {
	sess, err := h.sessions.Get(id)
	if err == nil && sess.Report != nil {
		return sess.Report, nil
	}
	if h.archive == nil {
		return nil, session.ErrNotFound
	}
	return h.archive.LatestReport(ctx, id)
}

func (h *Handler) analyze(ctx context.Context, sess session.Session, images []analysis.Image) (*report.Report, error) {
	return h.pipeline.Analyze(ctx, analysis.Request{
		SessionID: sess.ID,
		Answers:   sess.Answers,
		Images:    images,
	})
}

// respond stores the report and writes the JSON response.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, sess session.Session, rep *report.Report) {
	if err := h.sessions.SetReport(sess.ID, rep); err != nil {
		h.logger.Warn("session expired before report was attached", "session", sess.ID)
	}
	if h.archive != nil {
		if err := h.archive.SaveReport(r.Context(), rep); err != nil {
			h.logger.Error("failed to archive report", "session", sess.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, analysisResponse{
		SessionID: sess.ID,
		Report:    rep,
		Text:      rep.Text(),
	})
}

func (h *Handler) saveSubmission(ctx context.Context, sess session.Session) {
	if h.archive == nil {
		return
	}
	if err := h.archive.SaveSubmission(ctx, sess.ID, sess.Answers); err != nil {
		h.logger.Error("failed to archive submission", "session", sess.ID, "error", err)
	}
}

func (h *Handler) parseAnswers(r *http.Request) (questionnaire.Answers, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return questionnaire.Answers{}, fmt.Errorf("%w: failed to parse form", errBadRequest)
		}
		return questionnaire.ParseForm(r.PostForm)
	}

	var a questionnaire.Answers
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&a); err != nil {
		return questionnaire.Answers{}, fmt.Errorf("%w: invalid JSON", errBadRequest)
	}
	a.Normalize()
	if err := a.Validate(); err != nil {
		return questionnaire.Answers{}, err
	}
	return a, nil
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("%w: failed to parse multipart form", errBadRequest)
	}
	return r.MultipartForm, nil
}

func (h *Handler) readImages(form *multipart.Form) ([]analysis.Image, error) {
	headers := form.File[imagesField]
	if n := len(headers); n == 0 || n > h.pipeline.MaxImages() {
		return nil, fmt.Errorf("%w: got %d, want 1 to %d", analysis.ErrImageCount, n, h.pipeline.MaxImages())
	}

	images := make([]analysis.Image, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read %s", errBadRequest, fh.Filename)
		}
		images = append(images, analysis.Image{Name: fh.Filename, Data: data})
	}
	return images, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
