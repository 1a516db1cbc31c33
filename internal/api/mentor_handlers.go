package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// createIndicatorRequest is the mentor-facing indicator definition.
type createIndicatorRequest struct {
	Name           string                `json:"name"`
	Description    string                `json:"description"`
	Symbol         string                `json:"symbol"`
	Timeframe      string                `json:"timeframe"`
	Specs          []types.IndicatorSpec `json:"indicators"`
	BuyConditions  []types.Condition     `json:"buy_conditions"`
	BuyLogic       types.Logic           `json:"buy_logic"`
	SellConditions []types.Condition     `json:"sell_conditions"`
	SellLogic      types.Logic           `json:"sell_logic"`
}

func (s *Server) handleCreateIndicator(w http.ResponseWriter, r *http.Request) {
	mentorID := r.Header.Get(headerMentorID)

	var req createIndicatorRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	if req.Name == "" || req.Symbol == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "name and symbol are required"))

		return
	}

	if len(req.Specs) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "at least one indicator is required"))

		return
	}

	if req.Timeframe == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidTimeframe, "timeframe is required"))

		return
	}

	timeframe := types.ParseTimeframe(req.Timeframe)

	now := time.Now().UTC()

	// New indicators start stopped; mentors start them explicitly once they
	// are happy with the configuration.
	ind := types.Indicator{
		ID:             uuid.New().String(),
		MentorID:       mentorID,
		Name:           req.Name,
		Description:    req.Description,
		Symbol:         req.Symbol,
		Timeframe:      timeframe,
		Specs:          req.Specs,
		BuyConditions:  req.BuyConditions,
		BuyLogic:       req.BuyLogic,
		SellConditions: req.SellConditions,
		SellLogic:      req.SellLogic,
		CurrentSignal:  types.SignalTypeNone,
		IsRunning:      false,
		Status:         types.IndicatorStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateIndicator(r.Context(), ind); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, ind)
}

func (s *Server) handleListMentorIndicators(w http.ResponseWriter, r *http.Request) {
	mentorID := r.Header.Get(headerMentorID)

	indicators, err := s.store.ListIndicatorsByMentor(r.Context(), mentorID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"indicators": indicators})
}

// ownedIndicator loads the indicator and verifies mentor ownership. Deleted
// indicators and foreign ones both come back as not-found so ownership is
// not probeable.
func (s *Server) ownedIndicator(r *http.Request) (types.Indicator, error) {
	mentorID := r.Header.Get(headerMentorID)
	id := mux.Vars(r)["id"]

	indOpt, err := s.store.GetIndicator(r.Context(), id)
	if err != nil {
		return types.Indicator{}, err
	}

	if indOpt.IsNone() {
		return types.Indicator{}, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", id)
	}

	ind := indOpt.Unwrap()
	if ind.MentorID != mentorID || ind.Status == types.IndicatorStatusDeleted {
		return types.Indicator{}, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", id)
	}

	return ind, nil
}

func (s *Server) handleStartIndicator(w http.ResponseWriter, r *http.Request) {
	s.setIndicatorRunning(w, r, true)
}

func (s *Server) handleStopIndicator(w http.ResponseWriter, r *http.Request) {
	s.setIndicatorRunning(w, r, false)
}

func (s *Server) setIndicatorRunning(w http.ResponseWriter, r *http.Request, running bool) {
	ind, err := s.ownedIndicator(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if err := s.store.SetIndicatorRunning(r.Context(), ind.ID, running); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"id": ind.ID, "is_running": running})
}

func (s *Server) handleDeleteIndicator(w http.ResponseWriter, r *http.Request) {
	ind, err := s.ownedIndicator(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if err := s.store.DeleteIndicator(r.Context(), ind.ID, time.Now().UTC()); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"id": ind.ID, "status": string(types.IndicatorStatusDeleted)})
}

// manualSignalRequest is a mentor override emission.
type manualSignalRequest struct {
	SignalType    types.SignalType `json:"signal_type"`
	Notes         string           `json:"notes"`
	ValidForHours float64          `json:"valid_for_hours"`
}

func (s *Server) handleManualSignal(w http.ResponseWriter, r *http.Request) {
	ind, err := s.ownedIndicator(r)
	if err != nil {
		s.writeError(w, err)

		return
	}

	var req manualSignalRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	validFor := time.Duration(req.ValidForHours * float64(time.Hour))

	sig, subscribers, err := s.fanout.EmitManual(r.Context(), ind, req.SignalType, req.Notes, validFor)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"signal":      sig,
		"subscribers": subscribers,
	})
}
