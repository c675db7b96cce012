package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Nzyazin/payouts/internal/core/logger"
	"github.com/Nzyazin/payouts/internal/core/models"
	"github.com/Nzyazin/payouts/internal/core/usecase"
	"github.com/Nzyazin/payouts/internal/core/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type PayoutHandler struct {
	usecase  usecase.PayoutUsecase
	validate *validator.Validate
	log      logger.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func NewPayoutHandler(uc usecase.PayoutUsecase, log logger.Logger) *PayoutHandler {
	return &PayoutHandler{
		usecase:  uc,
		validate: validator.New(),
		log:      log,
	}
}

func (h *PayoutHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/payouts", h.CreatePayout).Methods("POST")
	router.HandleFunc("/api/v1/payouts", h.ListPayouts).Methods("GET")
	router.HandleFunc("/api/v1/payouts/{payout_uid}", h.GetPayout).Methods("GET")
	router.HandleFunc("/api/v1/payouts/{payout_uid}", h.UpdatePayout).Methods("PATCH")
	router.HandleFunc("/api/v1/payouts/{payout_uid}", h.DeletePayout).Methods("DELETE")
}

func (h *PayoutHandler) CreatePayout(w http.ResponseWriter, r *http.Request) {
    var in models.PayoutCreate
    if err := h.decodeBody(w, r, &in); err != nil {
        respondWithError(w, http.StatusBadRequest, "invalid request payload", "")
        return
    }

    if err := h.validate.Struct(in); err != nil {
        field := firstInvalidField(err)
        h.log.Warn("Create payout request rejected",
            logger.StringField("field", field),
            logger.ErrorField("error", err),
        )
        respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid value for %s", field), field)
        return
    }

    payout, err := h.usecase.Create(r.Context(), in)
    if err != nil {
        h.handleUsecaseError(w, err)
        return
    }

    respondWithJSON(w, http.StatusCreated, payout)
}

func (h *PayoutHandler) ListPayouts(w http.ResponseWriter, r *http.Request) {
    limit := queryInt(r, "limit", 0)
    offset := queryInt(r, "offset", 0)

    payouts, err := h.usecase.List(r.Context(), limit, offset)
    if err != nil {
        h.handleUsecaseError(w, err)
        return
    }

    respondWithJSON(w, http.StatusOK, payouts)
}

func (h *PayoutHandler) GetPayout(w http.ResponseWriter, r *http.Request) {
    id, err := payoutID(r)
    if err != nil {
        respondWithError(w, http.StatusBadRequest, "invalid payout id", "payout_uid")
        return
    }

    payout, err := h.usecase.Get(r.Context(), id)
    if err != nil {
        h.handleUsecaseError(w, err)
        return
    }

    respondWithJSON(w, http.StatusOK, payout)
}

func (h *PayoutHandler) UpdatePayout(w http.ResponseWriter, r *http.Request) {
    id, err := payoutID(r)
    if err != nil {
        respondWithError(w, http.StatusBadRequest, "invalid payout id", "payout_uid")
        return
    }

    var patch models.PayoutPatch
    if err := h.decodeBody(w, r, &patch); err != nil {
        respondWithError(w, http.StatusBadRequest, "invalid request payload", "")
        return
    }

    if patch.Phone != nil {
        if err := h.validate.Var(*patch.Phone, "e164"); err != nil {
            respondWithError(w, http.StatusBadRequest, "invalid value for Phone", "Phone")
            return
        }
    }

    payout, err := h.usecase.Update(r.Context(), id, patch)
    if err != nil {
        h.handleUsecaseError(w, err)
        return
    }

    respondWithJSON(w, http.StatusOK, payout)
}

func (h *PayoutHandler) DeletePayout(w http.ResponseWriter, r *http.Request) {
    id, err := payoutID(r)
    if err != nil {
        respondWithError(w, http.StatusBadRequest, "invalid payout id", "payout_uid")
        return
    }

    if err := h.usecase.Delete(r.Context(), id); err != nil {
        h.handleUsecaseError(w, err)
        return
    }

    w.WriteHeader(http.StatusNoContent)
}

func (h *PayoutHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
    r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
    defer r.Body.Close()
    if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
        h.log.Warn("Failed to decode request body", logger.ErrorField("error", err))
        return fmt.Errorf("invalid request payload")
    }
    return nil
}

func (h *PayoutHandler) handleUsecaseError(w http.ResponseWriter, err error) {
    var fieldErr *validation.FieldError
    switch {
    case errors.As(err, &fieldErr):
        h.log.Warn("Payout validation failed",
            logger.StringField("field", fieldErr.Field),
            logger.ErrorField("error", fieldErr.Err),
        )
        respondWithError(w, http.StatusBadRequest, fieldErr.Err.Error(), fieldErr.Field)
    case errors.Is(err, usecase.ErrPayoutNotFound):
        respondWithError(w, http.StatusNotFound, "payout not found", "")
    default:
        h.log.Error("Failed to process payout request", logger.ErrorField("error", err))
        respondWithError(w, http.StatusInternalServerError, "internal server error", "")
    }
}

func payoutID(r *http.Request) (uuid.UUID, error) {
    return uuid.Parse(mux.Vars(r)["payout_uid"])
}

func queryInt(r *http.Request, key string, fallback int) int {
    raw := r.URL.Query().Get(key)
    if raw == "" {
        return fallback
    }
    v, err := strconv.Atoi(raw)
    if err != nil {
        return fallback
    }
    return v
}

func firstInvalidField(err error) string {
    var verrs validator.ValidationErrors
    if errors.As(err, &verrs) && len(verrs) > 0 {
        return verrs[0].Field()
    }
    return ""
}

func respondWithError(w http.ResponseWriter, code int, message, field string) {
	respondWithJSON(w, code, ErrorResponse{Error: message, Field: field})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal Server Error"}`)) // Fallback response
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
