package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/speedrun-hq/intentscope/pkg/chainclient"
	"github.com/speedrun-hq/intentscope/pkg/intents"
	"github.com/speedrun-hq/intentscope/pkg/models"
)

// IntentsResponse is the body of /api/intents
type IntentsResponse struct {
	Intents []models.Intent `json:"intents"`
}

// ErrorResponse is the body of every failed API request
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// handleIntents serves normalized intents for the query parameters
func (s *Server) handleIntents(w http.ResponseWriter, r *http.Request) {
	params, err := parseIntentParams(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if s.breaker != nil && !s.breaker.Allow() {
		s.writeError(w, r, http.StatusServiceUnavailable, "order book temporarily unavailable")
		return
	}

	result, err := s.intents.FetchIntents(r.Context(), params)
	if err != nil {
		status := intentErrorStatus(err)
		// Only upstream failures count against the breaker
		if s.breaker != nil {
			if status == http.StatusBadGateway && r.Context().Err() == nil {
				s.breaker.RecordFailure()
			} else {
				s.breaker.Ignore()
			}
		}
		s.writeError(w, r, status, err.Error())
		return
	}
	if s.breaker != nil {
		s.breaker.RecordSuccess()
	}

	if result == nil {
		result = []models.Intent{}
	}
	s.writeJSON(w, r, http.StatusOK, IntentsResponse{Intents: result})
}

// handleTransaction serves a transaction by hash
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	chainID, err := strconv.Atoi(r.URL.Query().Get("chainId"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid or missing chainId")
		return
	}

	client, ok := s.chains[chainID]
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "chain "+strconv.Itoa(chainID)+" is not configured")
		return
	}

	tx, err := client.TransactionByHash(r.Context(), r.PathValue("hash"))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, chainclient.ErrTransactionNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, r, status, err.Error())
		return
	}

	s.writeJSON(w, r, http.StatusOK, tx)
}

// parseIntentParams reads chainId, orderType and orderStatus and forwards every other parameter
func parseIntentParams(r *http.Request) (models.FetchOrdersParams, error) {
	query := r.URL.Query()

	chainID, err := strconv.Atoi(query.Get("chainId"))
	if err != nil {
		return models.FetchOrdersParams{}, errors.New("invalid or missing chainId")
	}

	params := models.FetchOrdersParams{
		ChainID:     chainID,
		OrderType:   models.OrderType(query.Get("orderType")),
		OrderStatus: models.OrderStatus(query.Get("orderStatus")),
	}
	switch params.OrderType {
	case models.OrderTypeDutch, models.OrderTypeDutchV2:
	default:
		return models.FetchOrdersParams{}, fmt.Errorf("%v: %q", intents.ErrInvalidOrderType, params.OrderType)
	}

	for key := range query {
		switch key {
		case "chainId", "orderType", "orderStatus":
			continue
		}
		if params.Extra == nil {
			params.Extra = make(map[string]string)
		}
		params.Extra[key] = query.Get(key)
	}
	return params, nil
}

// intentErrorStatus maps pipeline errors to HTTP status codes
func intentErrorStatus(err error) int {
	switch {
	case errors.Is(err, intents.ErrInvalidOrderType), errors.Is(err, intents.ErrUnsupportedChain):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Request %s: failed to encode response: %v", requestID(r.Context()), err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, ErrorResponse{Error: msg, RequestID: requestID(r.Context())})
}
