package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appadvisor "github.com/pashudrishti/pashu-sahayak/internal/application/advisor"
	appanalysis "github.com/pashudrishti/pashu-sahayak/internal/application/analysis"
	appauth "github.com/pashudrishti/pashu-sahayak/internal/application/auth"
	domadvisor "github.com/pashudrishti/pashu-sahayak/internal/domain/advisor"
	domain "github.com/pashudrishti/pashu-sahayak/internal/domain/analysis"
	"github.com/pashudrishti/pashu-sahayak/internal/domain/users"
	"github.com/pashudrishti/pashu-sahayak/internal/middleware"
)

const maxUploadBytes = 12 << 20

type Router struct {
	authSvc     *appauth.Service
	analysisSvc *appanalysis.Service
	advisorSvc  *appadvisor.Service
}

func NewRouter(authSvc *appauth.Service, analysisSvc *appanalysis.Service, advisorSvc *appadvisor.Service, health http.HandlerFunc) http.Handler {
	r := &Router{authSvc: authSvc, analysisSvc: analysisSvc, advisorSvc: advisorSvc}
	mux := chi.NewRouter()

	mux.Get("/health", health)
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/auth/register", r.wrap(r.handleRegister))
		rt.Post("/auth/login", r.wrap(r.handleLogin))

		rt.Post("/analyze", r.wrap(r.handleDetect))
		rt.Post("/analyses", r.wrap(r.handleRunAnalysis))
		rt.Get("/analyses", r.wrap(r.handleHistory))
		rt.Get("/analyses/{id}", r.wrap(r.handleGetAnalysis))

		rt.Post("/generate/valuation", r.wrap(r.handleValuation))
		rt.Post("/generate/assistant", r.wrap(r.handleChat))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap translates the error taxonomy into HTTP statuses. The rejection
// variant carries the model's reason verbatim so the client can show it.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var rej *domain.RejectionError
		switch {
		case errors.As(err, &rej):
			writeError(w, http.StatusUnprocessableEntity, rej.Reason)
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrUpstreamUnavailable):
			writeError(w, http.StatusBadGateway, "analysis service is temporarily unavailable, please retry")
		case errors.Is(err, domain.ErrPersistenceFailed):
			writeError(w, http.StatusInternalServerError, "analysis could not be saved, please retry")
		case errors.Is(err, domain.ErrNotAccessible):
			writeError(w, http.StatusNotFound, "analysis not found")
		case errors.Is(err, users.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, appauth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid email or password")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /api/auth/register
func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid body: %v: %w", err, domain.ErrInvalidInput)
	}

	u, err := r.authSvc.Register(req.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return err
		}
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	return writeJSON(w, http.StatusCreated, u)
}

// POST /api/auth/login
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid body: %v: %w", err, domain.ErrInvalidInput)
	}

	token, u, err := r.authSvc.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}

// POST /api/analyze
// Quick breed preview from the local model only; nothing is stored.
func (r *Router) handleDetect(w http.ResponseWriter, req *http.Request) error {
	image, mimeType, _, _, err := readUpload(req)
	if err != nil {
		return err
	}

	detections, err := r.analysisSvc.Detect(req.Context(), image, mimeType)
	if err != nil {
		return err
	}
	if detections == nil {
		detections = []domain.DetectionCandidate{}
	}
	return writeJSON(w, http.StatusOK, detections)
}

// POST /api/analyses
// Full pipeline: detect, generate the report, store image and record.
func (r *Router) handleRunAnalysis(w http.ResponseWriter, req *http.Request) error {
	image, mimeType, location, language, err := readUpload(req)
	if err != nil {
		return err
	}
	if err := middleware.ValidateLocation(location); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	if err := middleware.ValidateLanguage(language); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}

	rec, err := r.analysisSvc.Run(req.Context(), middleware.GetUserID(req.Context()), domain.Request{
		ImageBytes: image,
		MimeType:   mimeType,
		Location:   middleware.SanitizeString(location),
		Language:   language,
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		var rej *domain.RejectionError
		if errors.As(err, &rej) {
			middleware.IncrementAnalysesRejected()
		}
		return err
	}
	middleware.IncrementAnalyses()
	return writeJSON(w, http.StatusCreated, rec)
}

// GET /api/analyses?limit=20
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.analysisSvc.History(req.Context(), middleware.GetUserID(req.Context()), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Record{}
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /api/analyses/{id}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	rec, err := r.analysisSvc.Get(req.Context(), middleware.GetUserID(req.Context()), domain.RecordID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// POST /api/advisor/valuation
func (r *Router) handleValuation(w http.ResponseWriter, req *http.Request) error {
	var body domadvisor.ValuationRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid body: %v: %w", err, domain.ErrInvalidInput)
	}

	v, err := r.advisorSvc.Valuate(req.Context(), body)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, v)
}

// POST /api/advisor/chat
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Message string `json:"message"`
		Image   string `json:"image,omitempty"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid body: %v: %w", err, domain.ErrInvalidInput)
	}

	reply, err := r.advisorSvc.Ask(req.Context(), body.Message, body.Image)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// readUpload pulls the image part plus the optional text fields out of a
// multipart form. The declared content type wins when present; otherwise the
// type is sniffed from the bytes.
func readUpload(req *http.Request) (image []byte, mimeType, location, language string, err error) {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", "", "", fmt.Errorf("invalid multipart form: %v: %w", err, domain.ErrInvalidInput)
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		return nil, "", "", "", fmt.Errorf("image file is required: %w", domain.ErrInvalidInput)
	}
	defer file.Close()

	image, err = io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", "", "", fmt.Errorf("read image: %v: %w", err, domain.ErrInvalidInput)
	}
	if err := middleware.ValidateImageSize(len(image)); err != nil {
		return nil, "", "", "", fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}

	mimeType = header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	if err := middleware.ValidateMimeType(mimeType); err != nil {
		return nil, "", "", "", fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}

	return image, mimeType, req.FormValue("location"), req.FormValue("language"), nil
}
