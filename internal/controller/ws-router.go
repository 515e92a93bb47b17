package controller

import (
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw())
	mux.HandleError(c.handleWSError)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "CHAT", c.handleChat)

	// player
	wsrouter.Handle(mux, "UPDATE_STATUS", c.handleUpdateStatus)
	wsrouter.Handle(mux, "PAUSE", c.handlePause)
	wsrouter.Handle(mux, "RESUME", c.handleResume)

	// member
	wsrouter.Handle(mux, "DISCONNECT", c.handleDisconnect)

	return mux
}
