package assets

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mnrn/ReVK/engine/core"
)

// Compilers and editors write output files in several chunks; events inside
// this window collapse into one notification.
const debounceDelay = 100 * time.Millisecond

// ShaderWatcher watches a directory tree for compiled shader changes and
// reports them through a callback. The callback runs on the watcher
// goroutine, so it must be safe to call off the main thread.
type ShaderWatcher struct {
	fsnotify *fsnotify.Watcher
	onChange func(path string)

	mutex    sync.Mutex
	pending  *time.Timer
	lastPath string

	done      chan struct{}
	closeOnce sync.Once
}

// NewShaderWatcher starts watching dir and every directory below it.
func NewShaderWatcher(dir string, onChange func(path string)) (*ShaderWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	sw := &ShaderWatcher{
		fsnotify: fsWatch,
		onChange: onChange,
		done:     make(chan struct{}),
	}

	if err := sw.watchRecursive(dir); err != nil {
		fsWatch.Close()
		return nil, err
	}

	go sw.start()
	core.LogInfo("Watching %s for shader changes.", dir)
	return sw, nil
}

func (sw *ShaderWatcher) start() {
	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					sw.watchRecursive(e.Name)
					continue
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && isCompiledShader(e.Name) {
				sw.scheduleNotify(e.Name)
			}

		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("Shader watcher: %s", err.Error())

		case <-sw.done:
			sw.fsnotify.Close()
			return
		}
	}
}

// scheduleNotify arms the debounce timer. Every further event within the
// window resets it; the callback fires once when the window closes.
func (sw *ShaderWatcher) scheduleNotify(path string) {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()

	sw.lastPath = path
	if sw.pending != nil {
		sw.pending.Reset(debounceDelay)
		return
	}
	sw.pending = time.AfterFunc(debounceDelay, func() {
		sw.mutex.Lock()
		path := sw.lastPath
		sw.pending = nil
		sw.mutex.Unlock()

		core.LogDebug("Shader changed on disk: %s", path)
		sw.onChange(path)
	})
}

func (sw *ShaderWatcher) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return sw.fsnotify.Add(walkPath)
		}
		return nil
	})
}

// Close stops the watcher. Safe to call more than once.
func (sw *ShaderWatcher) Close() {
	sw.closeOnce.Do(func() {
		close(sw.done)
	})
}

func isCompiledShader(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".spv")
}
