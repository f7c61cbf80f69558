package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tmakov/Huddle/internal/domain"
	"github.com/tmakov/Huddle/internal/protocol"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.pingPeriod())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid domain.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sid)).Msg("readPump closing")
		c.Close()
		ctl.Orch.Disconnect(sid)
	}()

	wait := ctl.pingPeriod() + 10*time.Second
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleFrame(sid, c, data)
		}
	}
}

func (ctl *SignalWSController) pingPeriod() time.Duration {
	if ctl.Cfg.PingPeriod > 0 {
		return ctl.Cfg.PingPeriod
	}
	return 54 * time.Second
}

func (ctl *SignalWSController) handleFrame(sid domain.ConnID, c *WsSignalConn, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case protocol.EvJoin:
		ctl.handleJoin(sid, c, data)
	case protocol.EvJoinRequest:
		ctl.handleJoinRequest(sid, c, data)
	case protocol.EvAdmit:
		ctl.handleAdmit(sid, c, data)
	case protocol.EvKick:
		ctl.handleKick(sid, c, data)
	case protocol.EvSignal:
		ctl.handleRelay(sid, c, data)
	case protocol.EvChatMessage:
		ctl.handleChat(sid, c, data)
	case protocol.EvSendCaption:
		ctl.handleCaption(sid, c, data)
	case protocol.EvToggleAudio, protocol.EvToggleVideo, protocol.EvToggleHand:
		ctl.handleToggle(sid, c, env.Type, data)
	case protocol.EvSendEmoji:
		ctl.handleEmoji(sid, c, data)
	case protocol.EvToggleLock:
		ctl.handleLock(sid, c, data)
	case protocol.EvMuteAll:
		ctl.Orch.MuteAll(sid)
	case protocol.EvStopVideoAll:
		ctl.Orch.StopVideoAll(sid)
	case protocol.EvTransferHost:
		ctl.handleTransferHost(sid, c, data)
	case protocol.EvEndMeeting:
		ctl.Orch.EndMeeting(sid)
	case protocol.EvPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
