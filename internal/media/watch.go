package media

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	zlog "github.com/rs/zerolog/log"
)

// watchSettle is how long a new file must stay quiet before it is reported.
var watchSettle = 500 * time.Millisecond

type settling struct {
	timer *time.Timer
	gen   int
}

type settled struct {
	name string
	gen  int
}

// Watch calls fn once for every playable file created in dir until ctx is
// done. A file is reported after writes to it have settled.
func Watch(ctx context.Context, dir string, fn func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}

	pending := make(map[string]*settling)
	ready := make(chan settled)
	stop := make(chan struct{})
	defer func() {
		close(stop)
		for _, s := range pending {
			s.timer.Stop()
		}
	}()

	// arm restarts the quiet period for name. A timer that already fired
	// may still be waiting to send; its generation no longer matches.
	arm := func(name string) {
		s, ok := pending[name]
		if ok {
			s.timer.Stop()
		} else {
			s = &settling{}
			pending[name] = s
		}
		s.gen++
		msg := settled{name: name, gen: s.gen}
		s.timer = time.AfterFunc(watchSettle, func() {
			select {
			case ready <- msg:
			case <-stop:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !IsSupportedExt(filepath.Ext(ev.Name)) {
				continue
			}
			switch {
			case ev.Has(fsnotify.Create):
				arm(ev.Name)
			case ev.Has(fsnotify.Write):
				if _, ok := pending[ev.Name]; ok {
					arm(ev.Name)
				}
			}

		case msg := <-ready:
			if s, ok := pending[msg.name]; !ok || s.gen != msg.gen {
				continue
			}
			delete(pending, msg.name)
			zlog.Debug().Str("path", msg.name).Msg("new library file")
			fn(msg.name)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			zlog.Warn().Err(err).Str("dir", dir).Msg("library watcher error")
		}
	}
}
