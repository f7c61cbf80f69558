package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tmakov/Huddle/internal/domain"
	"github.com/tmakov/Huddle/internal/protocol"
)

// handleRelay forwards a directed SDP/ICE payload. The payload stays
// opaque end to end.
func (ctl *SignalWSController) handleRelay(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Signal
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.Target == "" {
		ctl.sendError(conn, "missing_target")
		return
	}
	ctl.Orch.Relay(sid, p.Target, p.Payload)
}

func (ctl *SignalWSController) handleChat(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Chat
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.Text == "" {
		return
	}
	ctl.Orch.Chat(sid, p.Text)
}

func (ctl *SignalWSController) handleCaption(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Chat
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad caption payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.Text == "" {
		return
	}
	ctl.Orch.Caption(sid, p.Text)
}

func (ctl *SignalWSController) handleToggle(
	sid domain.ConnID,
	conn *WsSignalConn,
	event string,
	data []byte,
) {
	var p protocol.Toggle
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad toggle payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	switch event {
	case protocol.EvToggleAudio:
		ctl.Orch.ToggleAudio(sid, p.NewState)
	case protocol.EvToggleVideo:
		ctl.Orch.ToggleVideo(sid, p.NewState)
	case protocol.EvToggleHand:
		ctl.Orch.ToggleHand(sid, p.NewState)
	}
}

func (ctl *SignalWSController) handleEmoji(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Emoji
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad emoji payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.Emoji == "" {
		return
	}
	ctl.Orch.Emoji(sid, p.Emoji)
}
