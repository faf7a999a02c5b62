// Package script runs Lua key sequences against a virtual matrix.
//
//	press("C1")
//	sleep(100)
//	release("C1")
//	tap("OctaveUp", 20)
//	release_all()
package script

import (
	"context"
	"fmt"
	"time"

	lua "github.com/yuin/gopher-lua"

	"go-cvkeys/debug"
	"go-cvkeys/keys"
)

// Keyboard is the matrix a script plays on
type Keyboard interface {
	Press(id keys.ID) error
	Release(id keys.ID) error
	ReleaseAll()
}

// Runner executes scripts. Sleep is replaceable for tests.
type Runner struct {
	kb    Keyboard
	Sleep func(ctx context.Context, d time.Duration) error
}

// New returns a runner playing on kb
func New(kb Keyboard) *Runner {
	return &Runner{kb: kb, Sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RunString executes src
func (r *Runner) RunString(ctx context.Context, src string) error {
	L := r.newState(ctx)
	defer L.Close()
	if err := L.DoString(src); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// RunFile executes the script at path
func (r *Runner) RunFile(ctx context.Context, path string) error {
	L := r.newState(ctx)
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

func (r *Runner) newState(ctx context.Context) *lua.LState {
	L := lua.NewState()
	L.SetContext(ctx)

	key := func(L *lua.LState, n int) keys.ID {
		v := L.CheckAny(n)
		var s string
		switch v.Type() {
		case lua.LTNumber:
			s = fmt.Sprint(int(lua.LVAsNumber(v)))
		default:
			s = v.String()
		}
		id, err := keys.Parse(s)
		if err != nil {
			L.ArgError(n, err.Error())
		}
		return id
	}
	sleep := func(L *lua.LState, ms int) {
		if err := r.Sleep(ctx, time.Duration(ms)*time.Millisecond); err != nil {
			L.RaiseError("%v", err)
		}
	}
	check := func(L *lua.LState, err error) {
		if err != nil {
			L.RaiseError("%v", err)
		}
	}

	L.SetGlobal("press", L.NewFunction(func(L *lua.LState) int {
		id := key(L, 1)
		debug.Log("script", "press %s", id)
		check(L, r.kb.Press(id))
		return 0
	}))
	L.SetGlobal("release", L.NewFunction(func(L *lua.LState) int {
		id := key(L, 1)
		debug.Log("script", "release %s", id)
		check(L, r.kb.Release(id))
		return 0
	}))
	L.SetGlobal("tap", L.NewFunction(func(L *lua.LState) int {
		id := key(L, 1)
		ms := L.OptInt(2, 50)
		check(L, r.kb.Press(id))
		sleep(L, ms)
		check(L, r.kb.Release(id))
		return 0
	}))
	L.SetGlobal("sleep", L.NewFunction(func(L *lua.LState) int {
		sleep(L, L.CheckInt(1))
		return 0
	}))
	L.SetGlobal("release_all", L.NewFunction(func(L *lua.LState) int {
		r.kb.ReleaseAll()
		return 0
	}))
	L.SetGlobal("key_name", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(keys.ID(L.CheckInt(1)).String()))
		return 1
	}))
	return L
}
