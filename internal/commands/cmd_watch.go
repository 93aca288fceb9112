package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/marksync/internal/core/config"
	"github.com/colonyops/marksync/internal/core/eventbus"
	"github.com/colonyops/marksync/internal/core/listsync"
	"github.com/colonyops/marksync/internal/core/logging"
	"github.com/colonyops/marksync/internal/core/task"
	"github.com/colonyops/marksync/internal/debugserver"
)

// WatchCmd implements the marksync watch command.
type WatchCmd struct {
	flags *Flags

	out       string
	debugAddr string
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Keep a markdown file and a JSON task tree in sync",
		UsageText: "marksync watch --out <tree.json> <file.md>",
		Description: `Watches both files until interrupted. Edits to the markdown are parsed into
the JSON tree and edits to the JSON tree are exported back to the markdown.
Changes are debounced (sync.debounce in the config file) and the writes
marksync makes itself are not fed back.

Examples:
  marksync watch --out todo.json todo.md
  marksync watch --out todo.json --debug-addr localhost:6060 todo.md`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "path of the JSON task tree kept in sync",
				Required:    true,
				Destination: &cmd.out,
			},
			&cli.StringFlag{
				Name:        "debug-addr",
				Usage:       "serve pprof and list state on this address (e.g. localhost:6060)",
				Sources:     cli.EnvVars("MARKSYNC_DEBUG_ADDR"),
				Destination: &cmd.debugAddr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("exactly one markdown file is required")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs, err := newFileSync(c.Args().First(), cmd.out, cmd.flags.config())
	if err != nil {
		return err
	}
	fs.debugAddr = cmd.debugAddr
	return fs.run(ctx)
}

// fileSync binds a listsync.Controller to a markdown file and a JSON tree file.
type fileSync struct {
	mdPath   string
	jsonPath string
	cfg      *config.Config
	log      zerolog.Logger

	debugAddr string
}

func newFileSync(mdPath, jsonPath string, cfg *config.Config) (*fileSync, error) {
	mdAbs, err := filepath.Abs(mdPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", mdPath, err)
	}
	jsonAbs, err := filepath.Abs(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", jsonPath, err)
	}
	if mdAbs == jsonAbs {
		return nil, fmt.Errorf("markdown and tree must be different files")
	}

	return &fileSync{
		mdPath:   mdAbs,
		jsonPath: jsonAbs,
		cfg:      cfg,
		log:      logging.Component("watch"),
	}, nil
}

func (fs *fileSync) listID() string {
	return strings.TrimSuffix(filepath.Base(fs.mdPath), filepath.Ext(fs.mdPath))
}

func (fs *fileSync) run(ctx context.Context) error {
	busCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := eventbus.New(64)
	eventbus.RegisterDebugLogger(bus, fs.log)
	eventbus.NewNotificationRouter(bus).Register()
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		fs.log.Info().Str("level", string(p.Level)).Msg(p.Message)
	})
	go bus.Start(busCtx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range uniqueDirs(fs.mdPath, fs.jsonPath) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	lists := listsync.NewManager(listsync.Options{
		Debounce:          fs.cfg.Sync.Debounce,
		Parser:            fs.cfg.MarkdownParser(),
		MaxUndo:           fs.cfg.History.MaxEntries,
		Bus:               bus,
		OnMarkdownChanged: func(_ string, md string) { fs.writeMarkdown(md) },
		OnTasksChanged:    func(_ string, tasks []task.Task) { fs.writeTree(tasks) },
	})
	ctrl := lists.Open(fs.listID(), listsync.State{Tasks: fs.existingTree()})
	if _, err := lists.Activate(ctrl.ID()); err != nil {
		return err
	}
	defer func() {
		_ = ctrl.Flush()
		_ = lists.Close()
	}()

	if fs.debugAddr != "" {
		srv := debugserver.New(fs.debugAddr, lists)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := fs.initial(ctrl); err != nil {
		return err
	}

	fs.log.Info().Str("markdown", fs.mdPath).Str("tree", fs.jsonPath).Msg("watching")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			switch filepath.Clean(event.Name) {
			case fs.mdPath:
				fs.markdownChanged(ctrl)
			case fs.jsonPath:
				fs.treeChanged(ctrl)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fs.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// existingTree loads a previously written tree so a restart keeps task ids.
func (fs *fileSync) existingTree() []task.Task {
	data, err := os.ReadFile(fs.jsonPath)
	if err != nil {
		return nil
	}
	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil || task.Validate(tasks) != nil {
		fs.log.Warn().Str("tree", fs.jsonPath).Msg("existing tree unreadable, rebuilding from markdown")
		return nil
	}
	return tasks
}

// initial loads the markdown file and derives the tree from it. The markdown
// is the source of truth at startup.
func (fs *fileSync) initial(ctrl *listsync.Controller) error {
	md, err := fs.readMarkdown()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := ctrl.SetMarkdown(md); err != nil {
		return err
	}
	if err := ctrl.Flush(); err != nil {
		return err
	}

	// an empty document parses to an unchanged empty tree, so nothing was written
	if _, err := os.Stat(fs.jsonPath); errors.Is(err, os.ErrNotExist) {
		fs.writeTree(ctrl.Tasks())
	}
	return nil
}

func (fs *fileSync) readMarkdown() (string, error) {
	data, err := os.ReadFile(fs.mdPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func (fs *fileSync) markdownChanged(ctrl *listsync.Controller) {
	md, err := fs.readMarkdown()
	if err != nil {
		// editors that replace files can leave a short window with no file
		fs.log.Debug().Err(err).Msg("markdown not readable")
		return
	}
	if err := ctrl.SetMarkdown(md); err != nil {
		fs.log.Error().Err(err).Msg("apply markdown change")
	}
}

func (fs *fileSync) treeChanged(ctrl *listsync.Controller) {
	data, err := os.ReadFile(fs.jsonPath)
	if err != nil {
		fs.log.Debug().Err(err).Msg("tree not readable")
		return
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		fs.log.Warn().Err(err).Msg("ignoring tree that is not valid JSON")
		return
	}
	if err := task.Validate(tasks); err != nil {
		fs.log.Warn().Err(err).Msg("ignoring invalid tree")
		return
	}

	if err := ctrl.SetTasks(tasks); err != nil {
		fs.log.Error().Err(err).Msg("apply tree change")
	}
}

func (fs *fileSync) writeMarkdown(md string) {
	if md != "" {
		md += "\n"
	}
	if err := writeFileAtomic(fs.mdPath, []byte(md)); err != nil {
		fs.log.Error().Err(err).Msg("write markdown")
	}
}

func (fs *fileSync) writeTree(tasks []task.Task) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		fs.log.Error().Err(err).Msg("marshal tree")
		return
	}
	if err := writeFileAtomic(fs.jsonPath, append(data, '\n')); err != nil {
		fs.log.Error().Err(err).Msg("write tree")
	}
}

// writeFileAtomic replaces path through a rename so watchers never observe a
// partially written file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".marksync-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func uniqueDirs(paths ...string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
