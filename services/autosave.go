// Package services hosts background jobs that run alongside the HTTP server.
package services

import (
	"time"

	"github.com/go-co-op/gocron"

	"local-llm-chatbot/internal/config"
	"local-llm-chatbot/internal/logger"
	"local-llm-chatbot/internal/rag"
)

// Autosave periodically persists the knowledge base so an unclean shutdown
// loses at most one interval of ingests.
type Autosave struct {
	scheduler *gocron.Scheduler
	engine    *rag.Engine
	path      string
}

// NewAutosave builds the scheduler without starting it.
func NewAutosave(cfg *config.Config, engine *rag.Engine) *Autosave {
	return &Autosave{
		scheduler: gocron.NewScheduler(time.UTC),
		engine:    engine,
		path:      cfg.KBPath(),
	}
}

// Start schedules the save job and runs the scheduler in the background.
func (a *Autosave) Start(intervalMinutes int) error {
	_, err := a.scheduler.Every(intervalMinutes).Minutes().Do(func() {
		if err := a.engine.SaveKnowledgeBase(a.path); err != nil {
			logger.Error("Scheduled knowledge base save failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	a.scheduler.StartAsync()
	logger.Info("Knowledge base autosave scheduled", "interval_minutes", intervalMinutes)
	return nil
}

// Stop halts the scheduler and writes one final save.
func (a *Autosave) Stop() {
	a.scheduler.Stop()
	if err := a.engine.SaveKnowledgeBase(a.path); err != nil {
		logger.Error("Final knowledge base save failed", "error", err)
	}
}
