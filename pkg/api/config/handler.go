package config

import (
	"encoding/json"
	"fmt"
	"net/http"

	"corporate_analyst/pkg/api/respond"
	"corporate_analyst/pkg/core/agent"

	"github.com/rs/zerolog"
)

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
	MarketData     string   `json:"market_data"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

type SwitchResponse struct {
	ActiveProvider string `json:"active_provider"`
}

// Handler exposes and switches the LLM provider used for narratives.
type Handler struct {
	AgentMgr   *agent.Manager
	MarketData string
}

func NewHandler(agentMgr *agent.Manager, marketData string) *Handler {
	return &Handler{
		AgentMgr:   agentMgr,
		MarketData: marketData,
	}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "GET") {
		return
	}
	respond.JSON(w, r, http.StatusOK, Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.ProviderNames(),
		MarketData:     h.MarketData,
	})
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	if respond.CORS(w, r, "POST") {
		return
	}

	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		respond.Error(w, r, http.StatusBadRequest, err)
		return
	}

	zerolog.Ctx(r.Context()).Info().Str("provider", req.Provider).Msg("switched active LLM provider")
	respond.JSON(w, r, http.StatusOK, SwitchResponse{ActiveProvider: h.AgentMgr.GetActiveProvider()})
}
