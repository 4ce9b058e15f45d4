package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/wippyai/clr-host/config"
	"github.com/wippyai/clr-host/host"
	"github.com/wippyai/clr-host/marshal"
)

// invoker calls configured delegates on one session. Each delegate is
// created once and reused until the session shuts down.
type invoker struct {
	session   *host.Session
	delegates map[string]*host.Delegate[func()]
	mu        sync.Mutex
}

func newInvoker(s *host.Session) *invoker {
	return &invoker{
		session:   s,
		delegates: make(map[string]*host.Delegate[func()]),
	}
}

func (iv *invoker) delegate(d config.DelegateConfig) (*host.Delegate[func()], error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if del, ok := iv.delegates[d.Name]; ok && del.Valid() {
		return del, nil
	}
	del, err := host.SessionDelegate[func()](iv.session, d.Assembly, d.Type, d.Method)
	if err != nil {
		return nil, err
	}
	iv.delegates[d.Name] = del
	return del, nil
}

// invoke calls the delegate described by d with args and formats the result.
func (iv *invoker) invoke(d config.DelegateConfig, args []string) (string, error) {
	del, err := iv.delegate(d)
	if err != nil {
		return "", err
	}

	arena := marshal.NewArena(nil)
	defer arena.Release()

	words, err := convertArgs(arena, d.Params, args)
	if err != nil {
		return "", err
	}
	r, err := del.Call(words...)
	if err != nil {
		return "", err
	}
	return formatResult(d.Result, r), nil
}

func signature(d config.DelegateConfig) string {
	result := d.Result
	if result == "" {
		result = "void"
	}
	return fmt.Sprintf("%s(%s) %s", d.Name, strings.Join(d.Params, ", "), result)
}

// start opens the configured library and initializes the runtime.
func (c *cli) start(cfg *config.Config) (*host.Host, *host.Session, error) {
	props, err := cfg.RuntimeProperties()
	if err != nil {
		return nil, nil, err
	}
	h, err := host.Open(cfg.Library, host.WithLogger(c.log))
	if err != nil {
		return nil, nil, err
	}
	s, err := h.Start(cfg.ExePath, cfg.AppDomain, props)
	if err != nil {
		_ = h.Close()
		return nil, nil, err
	}
	return h, s, nil
}

func stop(h *host.Host, s *host.Session) error {
	if err := s.Close(); err != nil {
		return err
	}
	return h.Close()
}
