package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tmakov/Huddle/internal/domain"
	"github.com/tmakov/Huddle/internal/protocol"
)

func (ctl *SignalWSController) handleJoin(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Join
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(sid)).Str("room", p.MeetingCode).Msg("join")
	ctl.Orch.Join(sid, p)
}

func (ctl *SignalWSController) handleJoinRequest(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Join
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-request payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(sid)).Str("room", p.MeetingCode).Msg("join-request")
	ctl.Orch.JoinRequest(sid, p)
}

func (ctl *SignalWSController) handleAdmit(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Target
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad admit payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Orch.Admit(sid, p.Target)
}

func (ctl *SignalWSController) handleKick(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Target
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad kick payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Orch.Kick(sid, p.Target)
}

func (ctl *SignalWSController) sendError(conn *WsSignalConn, code string) {
	ctl.sendJSON(conn, map[string]any{
		"type":  "error",
		"error": code,
	})
}
