// Package httpapi exposes the matcher and the ingredient lookup over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/skinscan/skinscan/pkg/skinscan"
	"github.com/skinscan/skinscan/pkg/skinscan/catalog"
	"github.com/skinscan/skinscan/pkg/skinscan/internalerr"
	"github.com/skinscan/skinscan/pkg/skinscan/report"
	"github.com/skinscan/skinscan/pkg/skinscan/store"
)

// noMatchMessage is surfaced when no product clears the confidence floor.
const noMatchMessage = "No product matched. Try uploading a clearer image or adjusting lighting."

const maxImageBytes = 10 << 20

// NewRouter returns an http.Handler with all routes.
func NewRouter(m *skinscan.Matcher, st store.Store) http.Handler {
	mux := http.NewServeMux()
	h := &handler{matcher: m, store: st}

	mux.HandleFunc("POST /match", h.handleMatch)
	mux.HandleFunc("POST /match/text", h.handleMatchText)
	mux.HandleFunc("POST /ingredient-info", h.handleIngredientInfo)
	mux.HandleFunc("POST /webhook", h.handleWebhook)
	mux.HandleFunc("GET /health", h.handleHealth)

	return cors(mux)
}

type handler struct {
	matcher *skinscan.Matcher
	store   store.Store
}

// --- match ---

type matchResponse struct {
	ID         string             `json:"id"`
	Matched    bool               `json:"matched"`
	Product    *catalog.Product   `json:"product,omitempty"`
	Score      float64            `json:"score"`
	Entities   []string           `json:"entities"`
	Candidates []candidatePayload `json:"candidates"`
	Message    string             `json:"message,omitempty"`
}

type candidatePayload struct {
	Name  string  `json:"name"`
	Brand string  `json:"brand"`
	Score float64 `json:"score"`
}

func (h *handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image upload")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable image upload")
		return
	}

	result, rep, err := h.matcher.MatchImageReport(r.Context(), image)
	h.writeMatch(w, result, rep, err)
}

type matchTextRequest struct {
	Text string `json:"text"`
}

func (h *handler) handleMatchText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req matchTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, rep, err := h.matcher.MatchTextReport(r.Context(), req.Text)
	h.writeMatch(w, result, rep, err)
}

func (h *handler) writeMatch(w http.ResponseWriter, result skinscan.MatchResult, rep report.Report, err error) {
	if err != nil {
		if errors.Is(err, internalerr.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, internalerr.ErrExtraction) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := matchResponse{
		ID:         rep.ID,
		Matched:    rep.Matched,
		Product:    result.Product,
		Score:      result.Score,
		Entities:   rep.Entities,
		Candidates: make([]candidatePayload, len(rep.Candidates)),
	}
	for i, c := range rep.Candidates {
		resp.Candidates[i] = candidatePayload{Name: c.Name, Brand: c.Brand, Score: c.Score}
	}
	if !rep.Matched {
		resp.Message = noMatchMessage
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- ingredient lookup ---

type ingredientRequest struct {
	IngredientName string `json:"ingredient_name"`
}

func (h *handler) handleIngredientInfo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req ingredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.IngredientName)
	if name == "" {
		writeError(w, http.StatusBadRequest, "No ingredient_name provided")
		return
	}
	ing, ok, err := h.store.IngredientByName(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Ingredient not found")
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

// --- Dialogflow webhook ---

type webhookRequest struct {
	QueryResult struct {
		Parameters struct {
			Ingredient string `json:"ingredient"`
		} `json:"parameters"`
	} `json:"queryResult"`
}

type webhookResponse struct {
	FulfillmentText string `json:"fulfillmentText"`
}

func (h *handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ingredient := strings.TrimSpace(req.QueryResult.Parameters.Ingredient)
	if ingredient == "" {
		writeJSON(w, http.StatusOK, webhookResponse{
			FulfillmentText: "Please tell me which ingredient you'd like to know about.",
		})
		return
	}
	ing, ok, err := h.store.IngredientByName(r.Context(), ingredient)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, webhookResponse{
			FulfillmentText: fmt.Sprintf("Sorry, I couldn't find details for %q.", ingredient),
		})
		return
	}
	writeJSON(w, http.StatusOK, webhookResponse{FulfillmentText: formatIngredient(ing)})
}

func formatIngredient(ing catalog.Ingredient) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n%s\n\n", ing.Name, orDefault(ing.ShortDescription, "No description available."))
	fmt.Fprintf(&b, "What it does: %s\n", orDefault(ing.WhatItDoes, "Not specified."))
	fmt.Fprintf(&b, "Good for: %s\n", orDefault(strings.Join(ing.GoodFor, ", "), "Not specified"))
	fmt.Fprintf(&b, "Avoid if: %s\n", orDefault(strings.Join(ing.Avoid, ", "), "Not specified"))
	if ing.URL != "" {
		fmt.Fprintf(&b, "More info: %s", ing.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// --- health ---

type healthResponse struct {
	Status   string `json:"status"`
	Products int    `json:"products"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Products: h.matcher.CatalogSize(),
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// cors allows browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
