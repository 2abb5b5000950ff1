package editor

import (
	"context"
	"fmt"

	"github.com/subcue/subcue/internal/api"
	"github.com/subcue/subcue/internal/autosave"
	"github.com/subcue/subcue/internal/config"
	"github.com/subcue/subcue/internal/logging"
	"github.com/subcue/subcue/internal/poll"
	"github.com/subcue/subcue/internal/realtime"
	"github.com/subcue/subcue/internal/reconcile"
	"github.com/subcue/subcue/internal/subfile"
	"github.com/subcue/subcue/internal/subtitle"
)

// Session owns one project's editing state and the machinery that keeps it
// synchronized with the backend: the cue store, the debounced autosave
// scheduler, the push channel, and the polling fallback. A session is
// single-project; open a new one per project.
type Session struct {
	projectID string
	cfg       config.Config
	logger    *logging.Logger

	client    *api.Client
	store     *subtitle.Store
	navigator *subtitle.Navigator
	policy    *reconcile.Policy
	scheduler *autosave.Scheduler
	channel   *realtime.Channel
	poller    *poll.Poller
}

func NewSession(cfg config.Config, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	s := &Session{
		cfg:    cfg,
		logger: logger.Named("session"),
	}

	s.client = api.NewClient(
		cfg.BaseURL,
		cfg.APITimeout,
		cfg.TranslateTimeout,
		logger.Named("api"),
	)

	s.store = subtitle.NewStore()
	s.navigator = subtitle.NewNavigator(s.store)
	s.policy = reconcile.NewPolicy(s.store, logger.Named("reconcile"))

	s.scheduler = autosave.NewScheduler(
		cfg.DebounceInterval,
		s.store.Snapshot,
		func(ctx context.Context, cues []subtitle.Subtitle) error {
			return s.client.ReplaceSubtitles(ctx, s.projectID, cues)
		},
		logger.Named("autosave"),
	)
	s.store.SetOnChange(s.scheduler.NotifyChange)

	s.poller = poll.New(
		cfg.PollInterval,
		s.client.ListSubtitles,
		s.policy.ApplyBatch,
		logger.Named("poll"),
	)

	s.channel = realtime.NewChannel(realtime.Options{
		URL:                  cfg.WSURL,
		ReconnectInterval:    cfg.ReconnectInterval,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		Logger:               logger.Named("realtime"),
	})
	s.channel.OnDegraded = func() {
		// push delivery is gone; polling covers the in-flight operation
		if s.policy.Status().Busy() {
			s.poller.Start(s.projectID)
		}
	}
	s.registerListeners()

	return s
}

func (s *Session) registerListeners() {
	s.channel.On(realtime.TypeStatus, func(msg realtime.Message) {
		st := msg.SyncStatus()
		s.policy.ApplyStatus(st)
		if st.Busy() {
			s.poller.Start(s.projectID)
		} else {
			s.poller.Stop()
		}
	})

	s.channel.On(realtime.TypeSubtitles, func(msg realtime.Message) {
		cues, err := msg.Subtitles()
		if err != nil {
			s.logger.Warnw("discarding malformed subtitle batch", "error", err)
			return
		}
		s.policy.ApplyBatch(cues)
	})

	s.channel.On(realtime.TypeCompletion, func(msg realtime.Message) {
		cues, err := msg.Subtitles()
		if err != nil {
			s.logger.Warnw("discarding malformed completion batch", "error", err)
		} else if len(cues) > 0 {
			s.policy.ApplyReplace(cues)
			// server-origin content; a redundant save would be a no-op echo
			s.scheduler.MarkSaved(s.store.Snapshot())
		}
		s.policy.ApplyStatus(subtitle.SyncStatus{
			Phase:    subtitle.PhaseCompleted,
			Message:  msg.Message,
			Progress: 100,
		})
		s.poller.Stop()
	})

	s.channel.On(realtime.TypeError, func(msg realtime.Message) {
		s.policy.ApplyStatus(subtitle.SyncStatus{
			Phase:   subtitle.PhaseFailed,
			Message: msg.Message,
		})
		s.poller.Stop()
	})
}

// Open loads the project's cues and establishes the push channel. The
// initial load is a sanctioned replace and is marked as the saved
// baseline, so opening a project never triggers a save of its own.
func (s *Session) Open(ctx context.Context, projectID string) error {
	if s.projectID != "" {
		return fmt.Errorf("session already open for project %s", s.projectID)
	}
	s.projectID = projectID

	cues, err := s.client.ListSubtitles(ctx, projectID)
	if err != nil {
		s.projectID = ""
		return fmt.Errorf("load subtitles: %w", err)
	}
	s.policy.ApplyReplace(cues)
	s.scheduler.MarkSaved(s.store.Snapshot())

	if err := s.channel.Connect(ctx, projectID); err != nil {
		// the channel is an optimization; editing and saving work without it
		s.logger.Warnw("push channel unavailable", "error", err)
	}

	s.logger.Infow("project opened", "project_id", projectID, "cues", len(cues))
	return nil
}

// Close tears the session down: pending saves are cancelled, polling
// stops, and the push channel disconnects.
func (s *Session) Close() {
	s.scheduler.Close()
	s.poller.Stop()
	s.channel.Disconnect()
	s.logger.Infow("session closed", "project_id", s.projectID)
}

// ProjectID returns the open project's id, empty before Open.
func (s *Session) ProjectID() string { return s.projectID }

// Store exposes the cue store for read access.
func (s *Session) Store() *subtitle.Store { return s.store }

// Navigator exposes time-ordered cue navigation.
func (s *Session) Navigator() *subtitle.Navigator { return s.navigator }

// Status returns the current sync status.
func (s *Session) Status() subtitle.SyncStatus { return s.policy.Status() }

// OnStatusChange registers the status observer; for a UI status bar.
func (s *Session) OnStatusChange(fn func(subtitle.SyncStatus)) {
	s.policy.OnStatusChange = fn
}

// Insert adds a cue; the change autosaves after the debounce interval.
func (s *Session) Insert(start, end float64, text string) (string, error) {
	return s.store.Insert(start, end, text)
}

func (s *Session) Update(id string, p subtitle.Patch) error {
	return s.store.Update(id, p)
}

func (s *Session) Remove(id string) error {
	return s.store.Remove(id)
}

func (s *Session) Duplicate(id string) (string, error) {
	return s.store.Duplicate(id)
}

// Save persists immediately, bypassing the debounce.
func (s *Session) Save(ctx context.Context) error {
	return s.scheduler.SaveNow(ctx)
}

// TranslateProject asks the backend to translate every cue. The push
// channel is verified (and revived if stale) before the request so that
// early progress events are not lost; if it stays down, polling covers
// the operation.
func (s *Session) TranslateProject(ctx context.Context, sourceLang, targetLang string) error {
	if s.projectID == "" {
		return fmt.Errorf("no project open")
	}
	if s.policy.Status().Busy() {
		return fmt.Errorf("translation already in progress")
	}

	if !s.channel.CheckConnectionHealth() {
		if err := s.channel.ForceReconnect(ctx); err != nil {
			s.logger.Warnw("push channel unavailable, relying on polling", "error", err)
			s.poller.Start(s.projectID)
		}
	}

	s.policy.MarkTranslating("translation requested")

	resp, err := s.client.TranslateProject(ctx, s.projectID, sourceLang, targetLang)
	if err != nil {
		s.policy.ApplyStatus(subtitle.SyncStatus{
			Phase:   subtitle.PhaseFailed,
			Message: err.Error(),
		})
		s.poller.Stop()
		return fmt.Errorf("request translation: %w", err)
	}

	s.logger.Infow("translation started",
		"project_id", s.projectID,
		"status", resp.Status,
	)
	return nil
}

// TranslateText translates a single text through the backend.
func (s *Session) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return s.client.TranslateText(ctx, api.TranslateTextRequest{
		Text:           text,
		SourceLanguage: sourceLang,
		TargetLanguage: targetLang,
	})
}

// ImportSRT replaces the collection with the cues parsed from an SRT
// file. This is a local edit, so it autosaves like any other mutation.
func (s *Session) ImportSRT(path string) (int, error) {
	cues, err := subfile.ParseSRT(path)
	if err != nil {
		return 0, err
	}
	s.store.ReplaceAll(cues)
	return len(cues), nil
}

// Export writes the current collection to a subtitle file; the format
// follows the file extension.
func (s *Session) Export(path string, opts subfile.ExportOptions) error {
	return subfile.Export(s.store.Snapshot(), path, opts)
}
