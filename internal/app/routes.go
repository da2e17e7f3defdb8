package app

import (
	"net/http"

	"github.com/vancomm/sweeper/internal/handlers"
	"github.com/vancomm/sweeper/internal/repository"
)

func (a *App) loadRoutes() {
	var recorder handlers.Recorder
	var repo *repository.Queries
	if a.db != nil {
		repo = repository.New(a.db)
		recorder = repo
	}

	game := handlers.NewGameHandler(
		a.logger, a.sessions, *a.defaults, a.ws, recorder,
	)

	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("DELETE /game/{id}", game.Delete)
	a.router.HandleFunc("POST /game/{id}/move", game.MakeAMove)
	a.router.HandleFunc("POST /game/{id}/reset", game.Reset)
	a.router.HandleFunc("GET /game/{id}/connect", game.ConnectWS)

	a.router.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if repo == nil || a.cookies == nil {
		return
	}

	auth := handlers.NewAuth(a.logger, repo, a.cookies)
	a.router.HandleFunc("POST /register", auth.Register)
	a.router.HandleFunc("POST /login", auth.Login)
	a.router.HandleFunc("POST /logout", auth.Logout)
	a.router.HandleFunc("GET /auth/status", auth.Status)

	history := handlers.NewHistory(a.logger, repo)
	a.router.HandleFunc("GET /history", history.List)
}
