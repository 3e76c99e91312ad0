// Package dispatcher maps action/reaction names to their Checker/Executor implementations
// (spec §4.4). It is the sole seam at which new integrations plug in; the Scheduler knows
// nothing about individual services.
package dispatcher

import (
	"github.com/area-engine/core/actions"
	"github.com/area-engine/core/areaerr"
	"github.com/area-engine/core/reactions"
)

// Dispatcher is a static, build-time registry — no reflection, no dynamic plugin loading.
type Dispatcher struct {
	checkers  map[string]actions.Checker
	executors map[string]reactions.Executor
}

// New builds the dispatcher preloaded with every built-in Action/Reaction kind from
// spec §4.2/§4.3.
func New() *Dispatcher {
	d := &Dispatcher{
		checkers:  make(map[string]actions.Checker),
		executors: make(map[string]reactions.Executor),
	}
	d.registerBuiltins()
	return d
}

func (d *Dispatcher) registerBuiltins() {
	d.RegisterChecker("time_matches", actions.TimeMatches)
	d.RegisterChecker("interval_elapsed", actions.IntervalElapsed)
	d.RegisterChecker("email_received_from", actions.EmailReceivedFrom)
	d.RegisterChecker("email_subject_contains", actions.EmailSubjectContains)
	d.RegisterChecker("new_file_in_folder", actions.NewFileInFolder)
	d.RegisterChecker("new_file_uploaded", actions.NewFileUploaded)
	d.RegisterChecker("new_post_created", actions.NewPostCreated)
	d.RegisterChecker("post_contains_keyword", actions.PostContainsKeyword)
	d.RegisterChecker("new_star_on_repo", actions.NewStarOnRepo)
	d.RegisterChecker("new_issue_created", actions.NewIssueCreated)
	d.RegisterChecker("new_pr_opened", actions.NewPROpened)
	d.RegisterChecker("track_added_to_playlist", actions.TrackAddedToPlaylist)
	d.RegisterChecker("track_saved", actions.TrackSaved)
	d.RegisterChecker("playback_started", actions.PlaybackStarted)

	d.RegisterExecutor("send_email", reactions.SendEmail)
	d.RegisterExecutor("create_file", reactions.CreateFile)
	d.RegisterExecutor("create_folder", reactions.CreateFolder)
	d.RegisterExecutor("share_file", reactions.ShareFile)
	d.RegisterExecutor("create_post", reactions.CreatePost)
	d.RegisterExecutor("create_issue", reactions.CreateIssue)
	d.RegisterExecutor("add_to_playlist", reactions.AddToPlaylist)
	d.RegisterExecutor("create_playlist", reactions.CreatePlaylist)
	d.RegisterExecutor("start_playback", reactions.StartPlayback)
	d.RegisterExecutor("log_message", reactions.LogMessage)
	d.RegisterExecutor("send_notification", reactions.LogMessage)
}

// RegisterChecker adds or overwrites the Checker for name. Exposed so a host application
// can register additional integrations without modifying this package.
func (d *Dispatcher) RegisterChecker(name string, c actions.Checker) {
	d.checkers[name] = c
}

// RegisterExecutor adds or overwrites the Executor for name.
func (d *Dispatcher) RegisterExecutor(name string, e reactions.Executor) {
	d.executors[name] = e
}

// CheckerFor resolves name to its Checker, or the fixed UnknownKind error from spec §4.4.
func (d *Dispatcher) CheckerFor(name string) (actions.Checker, error) {
	c, ok := d.checkers[name]
	if !ok {
		return nil, areaerr.UnknownKindError(name)
	}
	return c, nil
}

// ExecutorFor resolves name to its Executor, or the fixed UnknownKind error.
func (d *Dispatcher) ExecutorFor(name string) (reactions.Executor, error) {
	e, ok := d.executors[name]
	if !ok {
		return nil, areaerr.UnknownKindError(name)
	}
	return e, nil
}
