package app

import (
	"github.com/mbolis/talentflow/config"
	"github.com/mbolis/talentflow/database"
	"github.com/mbolis/talentflow/submission"
)

type App struct {
	*database.Store
	Submissions *submission.Service
	config.Config
}

func New(store *database.Store, cfg config.Config) App {
	return App{
		Store:       store,
		Submissions: submission.NewService(store, nil),
		Config:      cfg,
	}
}
