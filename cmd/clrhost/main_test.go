package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/clr-host/config"
	"github.com/wippyai/clr-host/errors"
	"github.com/wippyai/clr-host/host"
	"github.com/wippyai/clr-host/hosttest"
	"github.com/wippyai/clr-host/marshal"
)

func TestConvertArgs(t *testing.T) {
	arena := marshal.NewArena(nil)
	defer arena.Release()

	words, err := convertArgs(arena,
		[]string{"int32", "int64", "uint32", "uint64", "uintptr", "bool", "bool"},
		[]string{"-7", "9000000000", "0xff", "18", "0x10", "true", "0"},
	)
	require.NoError(t, err)
	require.Len(t, words, 7)

	assert.Equal(t, int32(-7), int32(words[0]))
	assert.Equal(t, uintptr(9000000000), words[1])
	assert.Equal(t, uintptr(0xff), words[2])
	assert.Equal(t, uintptr(18), words[3])
	assert.Equal(t, uintptr(0x10), words[4])
	assert.Equal(t, uintptr(1), words[5])
	assert.Equal(t, uintptr(0), words[6])
}

func TestConvertArgs_String(t *testing.T) {
	arena := marshal.NewArena(nil)
	defer arena.Release()

	words, err := convertArgs(arena, []string{"string"}, []string{"hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", hosttest.GoString(words[0]))
	assert.Equal(t, 1, arena.Len())
}

func TestConvertArgs_Errors(t *testing.T) {
	arena := marshal.NewArena(nil)
	defer arena.Release()

	tests := []struct {
		name   string
		params []string
		values []string
	}{
		{"count mismatch", []string{"int32"}, nil},
		{"not a number", []string{"int32"}, []string{"x"}},
		{"int32 overflow", []string{"int32"}, []string{"4294967296"}},
		{"negative unsigned", []string{"uint32"}, []string{"-1"}},
		{"bad bool", []string{"bool"}, []string{"maybe"}},
		{"embedded nul", []string{"string"}, []string{"a\x00b"}},
		{"unknown kind", []string{"float"}, []string{"1.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convertArgs(arena, tt.params, tt.values)
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindInvalidInput), "got %v", err)
		})
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		kind string
		r    uintptr
		want string
	}{
		{"", 5, "(void)"},
		{"void", 5, "(void)"},
		{"int32", uintptr(0xffffffff), "-1"},
		{"int64", 42, "42"},
		{"uint32", uintptr(0x1_0000_0001), "1"},
		{"uint64", 7, "7"},
		{"bool", 0x100, "false"},
		{"bool", 1, "true"},
		{"uintptr", 0x10, "0x10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatResult(tt.kind, tt.r), "%s(%#x)", tt.kind, tt.r)
	}
}

func startFake(t *testing.T) (*host.Host, *host.Session, *hosttest.CoreCLR) {
	t.Helper()
	lib := hosttest.NewCoreCLR()
	h := host.New(lib)
	s, err := h.Start("/tmp/app", "clrhost", nil)
	require.NoError(t, err)
	return h, s, lib
}

func TestInvoke(t *testing.T) {
	h, s, lib := startFake(t)

	d := config.DelegateConfig{
		Name:     "add",
		Assembly: "App",
		Type:     "App.Math",
		Method:   "Add",
		Params:   []string{"int32", "int32"},
		Result:   "int32",
	}
	got, err := newInvoker(s).invoke(d, []string{"3", "4"})
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	calls := lib.ManagedCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []uintptr{3, 4}, calls[0])

	dc := lib.Delegates()
	require.Len(t, dc, 1)
	assert.Equal(t, "App.Math", dc[0].Type)

	require.NoError(t, stop(h, s))
	assert.Len(t, lib.Shutdowns(), 1)
	assert.True(t, lib.Closed())
}

func TestInvoker_ReusesDelegates(t *testing.T) {
	h, s, lib := startFake(t)
	defer stop(h, s)

	iv := newInvoker(s)
	ping := config.DelegateConfig{Name: "ping", Assembly: "A", Type: "T", Method: "Ping", Result: "int32"}
	pong := config.DelegateConfig{Name: "pong", Assembly: "A", Type: "T", Method: "Pong", Result: "int32"}

	for i := 0; i < 5; i++ {
		_, err := iv.invoke(ping, nil)
		require.NoError(t, err)
	}
	_, err := iv.invoke(pong, nil)
	require.NoError(t, err)

	assert.Len(t, lib.Delegates(), 2, "one coreclr_create_delegate per configured name")
	assert.Len(t, lib.ManagedCalls(), 6)
}

func TestInvoke_BadArgsSkipCall(t *testing.T) {
	h, s, lib := startFake(t)
	defer stop(h, s)

	d := config.DelegateConfig{Name: "f", Assembly: "A", Type: "T", Method: "M", Params: []string{"int32"}}
	_, err := newInvoker(s).invoke(d, []string{"nope"})
	require.Error(t, err)
	assert.Empty(t, lib.ManagedCalls())
}

func TestRunSession(t *testing.T) {
	h, s, lib := startFake(t)
	d := &config.DelegateConfig{Name: "add", Assembly: "A", Type: "T", Method: "Add", Params: []string{"int32", "int32"}, Result: "int32"}

	var out bytes.Buffer
	require.NoError(t, runSession(&out, h, s, d, []string{"1", "2"}))
	assert.Contains(t, out.String(), "add(int32, int32) int32 = 42")
	assert.Contains(t, out.String(), "Runtime shut down")
	assert.Len(t, lib.Shutdowns(), 1)
	assert.True(t, lib.Closed())
}

func TestRunSession_KeepsShutdownError(t *testing.T) {
	lib := hosttest.NewCoreCLR()
	lib.ShutdownStatus = -1
	var fatal []error
	h := host.New(lib, host.WithFatalHandler(func(err error) { fatal = append(fatal, err) }))
	s, err := h.Start("/tmp/app", "clrhost", nil)
	require.NoError(t, err)

	d := &config.DelegateConfig{Name: "f", Assembly: "A", Type: "T", Method: "M", Params: []string{"int32"}}
	err = runSession(&bytes.Buffer{}, h, s, d, []string{"not a number"})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput), "got %v", err)
	assert.True(t, errors.IsKind(err, errors.KindFatal), "shutdown failure dropped: %v", err)
	assert.Len(t, fatal, 1)
	assert.Len(t, lib.Shutdowns(), 1)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "f() void", signature(config.DelegateConfig{Name: "f"}))
	assert.Equal(t, "add(int32, int32) int32",
		signature(config.DelegateConfig{Name: "add", Params: []string{"int32", "int32"}, Result: "int32"}))
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clrhost.yaml")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"init", path})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), path)

	v, err := config.NewViper(path)
	require.NoError(t, err)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, config.Sample(), cfg)

	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"init", path})
	assert.Error(t, root.Execute(), "init must not overwrite without --force")

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"init", "--force", path})
	require.NoError(t, root.Execute())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "app_domain: clrhost")
}

func TestSymbolsCommand_MissingLibrary(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"symbols", filepath.Join(t.TempDir(), "libcoreclr.so")})
	err := root.Execute()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindLibraryLoad), "got %v", err)
}

func TestRunCommand_UnknownDelegate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clrhost.yaml")
	var buf bytes.Buffer
	require.NoError(t, config.Sample().WriteYAML(&buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "run", "missing"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing"`)
}

func newTestModel(t *testing.T) (*interactiveModel, *hosttest.CoreCLR) {
	t.Helper()
	h, s, lib := startFake(t)
	cfg := &config.Config{
		Library: hosttest.LibraryPath,
		Delegates: []config.DelegateConfig{
			{Name: "ping", Assembly: "A", Type: "T", Method: "Ping", Result: "int32"},
			{Name: "add", Assembly: "A", Type: "T", Method: "Add", Params: []string{"int32", "int32"}, Result: "int32"},
		},
	}
	return newInteractiveModel(cfg, h, s), lib
}

func TestInteractiveModel(t *testing.T) {
	m, lib := newTestModel(t)

	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "ping")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, stateShowResult, m.state)
	assert.Equal(t, "42", m.result)
	assert.NoError(t, m.err)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateSelectFunc, m.state)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateInputArgs, m.state)
	require.Len(t, m.inputs, 2)
	m.inputs[0].SetValue("1")
	m.inputs[1].SetValue("2")

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Equal(t, "42", m.result)

	calls := lib.ManagedCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, []uintptr{1, 2}, calls[1])

	require.NoError(t, m.close())
	assert.Len(t, lib.Shutdowns(), 1)
	assert.NoError(t, m.close())
}

func TestInteractiveModel_CallUsesSnapshot(t *testing.T) {
	m, lib := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.inputs[0].SetValue("5")
	m.inputs[1].SetValue("6")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	done := make(chan tea.Msg)
	go func() { done <- cmd() }()
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	msg := <-done

	res, ok := msg.(callResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)
	calls := lib.ManagedCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []uintptr{5, 6}, calls[0])

	m.Update(msg)
	assert.False(t, m.busy)
	require.NoError(t, m.close())
}

func TestInteractiveModel_CloseWaitsForCall(t *testing.T) {
	m, lib := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, quit := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, quit)

	closed := make(chan error)
	go func() { closed <- m.close() }()

	select {
	case <-closed:
		t.Fatal("close returned while a call was in flight")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Empty(t, lib.Shutdowns())

	cmd()
	require.NoError(t, <-closed)
	assert.Len(t, lib.ManagedCalls(), 1)
	assert.Len(t, lib.Shutdowns(), 1)
}

func TestInteractiveModel_QuitShutsDown(t *testing.T) {
	m, lib := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	require.NoError(t, m.close())

	assert.Len(t, lib.Initializations(), 1)
	assert.Len(t, lib.Shutdowns(), 1)
	assert.True(t, lib.Closed())
}
