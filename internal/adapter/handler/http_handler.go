package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/rl1809/parts-inventory/docs"
	"github.com/rl1809/parts-inventory/internal/core/domain"
	"github.com/rl1809/parts-inventory/internal/core/service"
)

const (
	maxJSONBodyBytes      = 1 << 20
	defaultMaxUploadBytes = 25 << 20
)

type HTTPHandler struct {
	commands       *service.CommandService
	inventory      *service.InventoryService
	uploadDir      string
	maxUploadBytes int64
	corsOrigin     string
}

type HTTPOptions struct {
	UploadDir      string
	MaxUploadBytes int64
	CORSOrigin     string
}

type ProcessCommandRequest struct {
	Command  string `json:"command"`
	Language string `json:"language"`
}

type ChangesResponse struct {
	Changes     domain.ChangeBatch `json:"changes"`
	CommandText string             `json:"commandText,omitempty"`
}

type ExecuteChangesResponse struct {
	Success  bool                   `json:"success"`
	Outcomes []domain.ChangeOutcome `json:"outcomes"`
}

type UpdatePartRequest struct {
	Manufacturer string `json:"manufacturer"`
	Part         string `json:"part"`
	Model        string `json:"model"`
	Quantity     int    `json:"quantity"`
}

type DeletePartsRequest struct {
	IDs []int64 `json:"ids"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(commands *service.CommandService, inventory *service.InventoryService, opts HTTPOptions) *HTTPHandler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &HTTPHandler{
		commands:       commands,
		inventory:      inventory,
		uploadDir:      opts.UploadDir,
		maxUploadBytes: opts.MaxUploadBytes,
		corsOrigin:     opts.CORSOrigin,
	}
}

// Routes returns the API mux wrapped in request logging and CORS.
func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/process-command", h.ProcessCommand)
	mux.HandleFunc("POST /api/voice-command", h.VoiceCommand)
	mux.HandleFunc("POST /api/execute-changes", h.ExecuteChanges)
	mux.HandleFunc("GET /api/parts", h.ListParts)
	mux.HandleFunc("PUT /api/parts/{id}", h.UpdatePart)
	mux.HandleFunc("DELETE /api/parts", h.DeleteParts)
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return withRequestLog(withCORS(h.corsOrigin, mux))
}

// ProcessCommand interprets a typed command.
//
// @Summary     Interpret a text command
// @Description Normalizes the command, asks the completion service for a structured change list and returns it without touching inventory.
// @Tags        commands
// @Accept      json
// @Produce     json
// @Param       request  body      ProcessCommandRequest  true  "Command and language (ru or lv)"
// @Success     200      {object}  ChangesResponse
// @Failure     400      {object}  ErrorResponse  "Invalid body or language"
// @Failure     500      {object}  ErrorResponse  "Upstream or parse failure"
// @Router      /api/process-command [post]
func (h *HTTPHandler) ProcessCommand(w http.ResponseWriter, r *http.Request) {
	var req ProcessCommandRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	slog.InfoContext(r.Context(), "processing text command", "language", req.Language, "command", req.Command)

	result, err := h.commands.InterpretText(r.Context(), req.Command, domain.Language(req.Language))
	if err != nil {
		h.writeCommandError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChangesResponse{Changes: result.Changes})
}

// VoiceCommand transcribes an uploaded recording and interprets it.
//
// @Summary     Interpret a voice command
// @Description The audio is stored only for the duration of the request and deleted afterwards.
// @Tags        commands
// @Accept      multipart/form-data
// @Produce     json
// @Param       audio     formData  file    true  "Recorded command"
// @Param       language  formData  string  true  "ru or lv"
// @Success     200       {object}  ChangesResponse
// @Failure     400       {object}  ErrorResponse  "Missing audio or invalid language"
// @Failure     500       {object}  ErrorResponse  "Transcription, upstream or parse failure"
// @Router      /api/voice-command [post]
func (h *HTTPHandler) VoiceCommand(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	language := domain.Language(r.FormValue("language"))
	slog.InfoContext(r.Context(), "processing voice command", "language", language)
	if !language.Valid() {
		h.writeCommandError(w, r, service.ErrInvalidLanguage)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing audio file")
		return
	}
	defer file.Close()

	var result service.Interpretation
	err = withUpload(h.uploadDir, file, header.Filename, func(upload *Upload) error {
		var err error
		result, err = h.commands.InterpretVoice(r.Context(), upload.File, filepath.Base(upload.Path), language)
		return err
	})
	if err != nil {
		h.writeCommandError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChangesResponse{Changes: result.Changes, CommandText: result.CommandText})
}

// ExecuteChanges applies a change list to inventory.
//
// @Summary     Apply changes to inventory
// @Description Changes are applied in order; insufficient stock, unknown parts and invalid changes are skipped and reported per change.
// @Tags        inventory
// @Accept      json
// @Produce     json
// @Param       request          body    object  true   "{\"changes\": [...]}"
// @Param       Idempotency-Key  header  string  false  "Rejects repeated submissions of the same batch"
// @Success     200  {object}  ExecuteChangesResponse
// @Failure     400  {object}  ErrorResponse  "Invalid body"
// @Failure     409  {object}  ErrorResponse  "Duplicate request"
// @Failure     500  {object}  ErrorResponse  "Storage failure"
// @Router      /api/execute-changes [post]
func (h *HTTPHandler) ExecuteChanges(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batch, err := service.ExtractChanges(string(body))
	if err != nil {
		slog.WarnContext(r.Context(), "invalid execute-changes body", "error", err)
		writeError(w, http.StatusBadRequest, "request body must be an object with a changes array")
		return
	}

	result, err := h.inventory.ExecuteChanges(r.Context(), r.Header.Get("Idempotency-Key"), batch)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRequest) {
			writeError(w, http.StatusConflict, "duplicate request")
			return
		}
		slog.ErrorContext(r.Context(), "failed to execute changes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to execute changes")
		return
	}

	writeJSON(w, http.StatusOK, ExecuteChangesResponse{Success: true, Outcomes: result.Outcomes})
}

// ListParts returns the whole inventory.
//
// @Summary  List parts
// @Tags     inventory
// @Produce  json
// @Success  200  {array}   domain.Part
// @Failure  500  {object}  ErrorResponse
// @Router   /api/parts [get]
func (h *HTTPHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.inventory.ListParts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list parts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list parts")
		return
	}
	writeJSON(w, http.StatusOK, parts)
}

// UpdatePart overwrites one part.
//
// @Summary  Update a part
// @Tags     inventory
// @Accept   json
// @Produce  json
// @Param    id       path      int                true  "Part ID"
// @Param    request  body      UpdatePartRequest  true  "New field values"
// @Success  200      {object}  SuccessResponse
// @Failure  400      {object}  ErrorResponse
// @Failure  404      {object}  ErrorResponse
// @Failure  409      {object}  ErrorResponse
// @Failure  500      {object}  ErrorResponse
// @Router   /api/parts/{id} [put]
func (h *HTTPHandler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid part id")
		return
	}

	var req UpdatePartRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.inventory.UpdatePart(r.Context(), domain.Part{
		ID:           id,
		Manufacturer: req.Manufacturer,
		Part:         req.Part,
		Model:        req.Model,
		Quantity:     req.Quantity,
	})
	if err != nil {
		status := http.StatusInternalServerError
		message := "failed to update part"

		switch {
		case errors.Is(err, service.ErrInvalidPart):
			status = http.StatusBadRequest
			message = "quantity must not be negative"
		case errors.Is(err, domain.ErrPartNotFound):
			status = http.StatusNotFound
			message = "part not found"
		case errors.Is(err, domain.ErrDuplicatePart):
			status = http.StatusConflict
			message = "another part has the same manufacturer, part and model"
		default:
			slog.ErrorContext(r.Context(), "failed to update part", "id", id, "error", err)
		}

		writeError(w, status, message)
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// DeleteParts removes parts by ID.
//
// @Summary  Delete parts
// @Tags     inventory
// @Accept   json
// @Produce  json
// @Param    request  body      DeletePartsRequest  true  "IDs to delete"
// @Success  200      {object}  SuccessResponse
// @Failure  400      {object}  ErrorResponse
// @Failure  500      {object}  ErrorResponse
// @Router   /api/parts [delete]
func (h *HTTPHandler) DeleteParts(w http.ResponseWriter, r *http.Request) {
	var req DeletePartsRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.inventory.DeleteParts(r.Context(), req.IDs); err != nil {
		slog.ErrorContext(r.Context(), "failed to delete parts", "ids", req.IDs, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete parts")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeCommandError maps interpretation failures to responses. Upstream detail
// stays in the server log.
func (h *HTTPHandler) writeCommandError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "failed to process command"

	var parseErr *service.ResponseParseError
	var schemaErr *service.SchemaViolationError
	switch {
	case errors.Is(err, service.ErrInvalidLanguage):
		status = http.StatusBadRequest
		message = "invalid language parameter"
	case errors.Is(err, service.ErrTranscriptionFailure):
		message = "speech recognition returned no text"
	case errors.As(err, &parseErr):
		message = "failed to parse completion response"
	case errors.As(err, &schemaErr):
		message = "completion response has no changes field"
	}

	slog.ErrorContext(r.Context(), "command failed", "status", status, "error", err)
	writeError(w, status, message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
