package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/signalmaster/signal-engine/internal/notification"
	"github.com/signalmaster/signal-engine/internal/types"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// handleListAvailableIndicators lists the indicators a user can subscribe
// to: active and currently running.
func (s *Server) handleListAvailableIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := s.store.ListRunningIndicators(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"indicators": indicators})
}

// subscribeRequest binds the user to an indicator. Symbol and timeframe
// default to the indicator's own when omitted.
type subscribeRequest struct {
	IndicatorID string `json:"indicator_id"`
	Symbol      string `json:"symbol"`
	Timeframe   string `json:"timeframe"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)

	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	if req.IndicatorID == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "indicator_id is required"))

		return
	}

	indOpt, err := s.store.GetIndicator(r.Context(), req.IndicatorID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if indOpt.IsNone() || indOpt.Unwrap().Status != types.IndicatorStatusActive {
		s.writeError(w, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator %s not found", req.IndicatorID))

		return
	}

	ind := indOpt.Unwrap()
	if !ind.IsRunning {
		s.writeError(w, errors.Newf(errors.ErrCodeIndicatorNotRunning, "indicator %s is not running", ind.ID))

		return
	}

	symbol := req.Symbol
	if symbol == "" {
		symbol = ind.Symbol
	}

	timeframe := ind.Timeframe
	if req.Timeframe != "" {
		timeframe = types.ParseTimeframe(req.Timeframe)
	}

	sub := types.Subscription{
		ID:            uuid.New().String(),
		UserID:        userID,
		MentorID:      ind.MentorID,
		IndicatorID:   ind.ID,
		IndicatorName: ind.Name,
		Symbol:        symbol,
		Timeframe:     timeframe,
		Status:        types.SubscriptionStatusActive,
		SubscribedAt:  time.Now().UTC(),
	}

	if err := s.store.CreateSubscription(r.Context(), sub); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)

	subscriptions, err := s.store.ListSubscriptionsByUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"subscriptions": subscriptions})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	id := mux.Vars(r)["id"]

	if err := s.store.DeactivateSubscription(r.Context(), id, userID, time.Now().UTC()); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(types.SubscriptionStatusInactive)})
}

func (s *Server) handleListInbox(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "limit must be a non-negative integer"))

			return
		}

		limit = parsed
	}

	items, err := s.store.ListInbox(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	now := time.Now().UTC()
	payload := make([]map[string]interface{}, 0, len(items))

	for _, item := range items {
		payload = append(payload, map[string]interface{}{
			"entry":   item.Entry,
			"signal":  item.Signal,
			"expired": item.Signal.Expired(now),
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"inbox": payload})
}

// handleLatestSignal returns the newest inbox item for the user, or 404
// when the inbox is empty.
func (s *Server) handleLatestSignal(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)

	items, err := s.store.ListInbox(r.Context(), userID, 1)
	if err != nil {
		s.writeError(w, err)

		return
	}

	if len(items) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeDataNotFound, "no signals received yet"))

		return
	}

	item := items[0]
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entry":   item.Entry,
		"signal":  item.Signal,
		"expired": item.Signal.Expired(time.Now().UTC()),
	})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)

	count, err := s.store.CountUnread(r.Context(), userID, time.Now().UTC())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)
	id := mux.Vars(r)["id"]

	if err := s.store.MarkInboxRead(r.Context(), id, userID); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "read": true})
}

// pushTokenRequest registers or removes a device token.
type pushTokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleRegisterPushToken(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)

	var req pushTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	if req.Token == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "token is required"))

		return
	}

	if !notification.IsExpoToken(req.Token) {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "token is not an Expo push token"))

		return
	}

	if err := s.store.UpsertPushToken(r.Context(), userID, req.Token, time.Now().UTC()); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"token": req.Token})
}

func (s *Server) handleDeletePushToken(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(headerUserID)

	var req pushTokenRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)

		return
	}

	if req.Token == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidParameter, "token is required"))

		return
	}

	if err := s.store.DeletePushToken(r.Context(), userID, req.Token); err != nil {
		s.writeError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
