package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tmakov/Huddle/internal/domain"
	"github.com/tmakov/Huddle/internal/protocol"
)

func (ctl *SignalWSController) handleLock(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Lock
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad lock payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Orch.ToggleLock(sid, p.Locked)
}

func (ctl *SignalWSController) handleTransferHost(
	sid domain.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p protocol.Target
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad transfer-host payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Orch.TransferHost(sid, p.Target)
}

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, protocol.Notice{Type: protocol.EvPong})
}
