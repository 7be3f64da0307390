package management

import (
	"context"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/metrics"
)

const transport = "rpc"

// passThrough tells the caller to deliver its mail unchanged.
var passThrough = []byte(`{"proceed":true}`)

func (server *Server) interceptHandler(data []byte) []byte {
	logger := server.getLogger("handler.intercept")
	logger.Debug().Bytes("data", data).Msg("Received intercept request.")

	var mail totalpushover.Mail
	if err := totalpushover.Unmarshal(data, &mail); err != nil {
		// nothing was pushed, so the mail is not lost by letting it through
		logger.Err(err).Msg("Error deserializing mail. Letting it through.")
		return passThrough
	}

	// the caller gives up after DefaultRPCTimeout, don't push past that
	ctx, cancel := context.WithTimeout(context.Background(), totalpushover.DefaultTimeout)
	defer cancel()
	mail, proceed := server.Hook.ApplyMail(ctx, mail)
	metrics.ObserveDecision(transport, proceed)

	reply := totalpushover.InterceptReply{Proceed: proceed}
	if proceed {
		reply.Mail = &mail
	}
	out, err := totalpushover.Marshal(reply)
	if err != nil {
		logger.Err(err).Msg("Error serializing reply.")
		return passThrough
	}
	logger.Debug().Bool("proceed", proceed).Msg("Answered intercept request.")
	return out
}
