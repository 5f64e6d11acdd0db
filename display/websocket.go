package rlcscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	Rs "github.com/maroda/rlcscope/server"
)

// ScopeRequest is what the browser sends
type ScopeRequest struct {
	Type  string  `json:"type"`  // "set", "nudge", "reset" or "get"
	Param string  `json:"param"` // slider name for set and nudge
	Value float64 `json:"value"` // new position for set
	Steps int     `json:"steps"` // signed step count for nudge
}

// ScopeReply is what the browser gets back
type ScopeReply struct {
	Type    string      `json:"type"` // "snapshot" or "error"
	Result  *Rs.Result  `json:"result,omitempty"`
	Sliders []Rs.Slider `json:"sliders,omitempty"`
	Message string      `json:"message,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketHandler gives each connection its own slider session,
// seeded from the current one and sharing its archive.
func (v *View) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	session := v.Circuit.Clone()
	if err := conn.WriteJSON(v.sessionReply(r.Context(), session)); err != nil {
		return
	}

	for {
		var req ScopeRequest
		if err := conn.ReadJSON(&req); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				slog.Debug("Websocket read ended", slog.Any("Error", err))
			}
			return
		}
		v.Stats.RecWSMessage(req.Type)

		reply := v.HandleScopeRequest(r.Context(), session, req)
		if err := conn.WriteJSON(reply); err != nil {
			return // Connection closed
		}
	}
}

// HandleScopeRequest applies one browser request to a session
func (v *View) HandleScopeRequest(ctx context.Context, session *Rs.Circuit, req ScopeRequest) ScopeReply {
	var err error
	switch req.Type {
	case "set":
		_, err = session.Set(req.Param, req.Value)
	case "nudge":
		_, err = session.Nudge(req.Param, req.Steps)
	case "reset":
		session.Reset()
	case "get":
	default:
		err = fmt.Errorf("unknown request type %q", req.Type)
	}
	if err != nil {
		return ScopeReply{Type: "error", Message: err.Error(), Sliders: session.SliderList()}
	}
	return v.sessionReply(ctx, session)
}

func (v *View) sessionReply(ctx context.Context, session *Rs.Circuit) ScopeReply {
	res, err := v.TracedSolve(ctx, "ws", func() (*Rs.Result, error) {
		return session.Solve("ws")
	})
	if err != nil {
		return ScopeReply{Type: "error", Message: err.Error(), Sliders: session.SliderList()}
	}
	return ScopeReply{Type: "snapshot", Result: res, Sliders: session.SliderList()}
}
