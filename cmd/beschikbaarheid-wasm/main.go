//go:build js && wasm

package main

import (
	"syscall/js"
	"time"

	"github.com/klabast/wb-services/beschikbaarheid/internal/bridge"
	"github.com/klabast/wb-services/beschikbaarheid/internal/calendar"
)

// Started from JS after the wasm module is instantiated.
func main() {
	start := calendar.CursorAt(time.Now())
	if month := js.Global().Get("beschikbaarheidStartMonth"); month.Type() == js.TypeString {
		if c, err := calendar.ParseCursor(month.String()); err == nil {
			start = c
		}
	}

	registerCallbacks(bridge.New(start, time.Now))

	// tell JS we are ready
	if readyFn := js.Global().Get("onBeschikbaarheidReady"); readyFn.Type() == js.TypeFunction {
		readyFn.Invoke()
	}

	select {} // keep the callbacks alive
}

func registerCallbacks(b *bridge.Bridge) {
	js.Global().Set("Beschikbaarheid", js.ValueOf(map[string]any{
		"view": js.FuncOf(func(this js.Value, args []js.Value) any {
			return b.View()
		}),
		"selectDate": js.FuncOf(func(this js.Value, args []js.Value) any {
			return b.SelectDate(arg(args, 0))
		}),
		"toggleSlot": js.FuncOf(func(this js.Value, args []js.Value) any {
			return b.ToggleSlot(arg(args, 0))
		}),
		"removeSelection": js.FuncOf(func(this js.Value, args []js.Value) any {
			return b.RemoveSelection(arg(args, 0), arg(args, 1))
		}),
		"prevMonth": js.FuncOf(func(this js.Value, args []js.Value) any {
			return b.PrevMonth()
		}),
		"nextMonth": js.FuncOf(func(this js.Value, args []js.Value) any {
			return b.NextMonth()
		}),
		"onNotify": js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) == 0 || args[0].Type() != js.TypeFunction {
				return nil
			}
			cb := args[0]
			b.OnNotify(func(notice string) {
				cb.Invoke(notice)
			})
			return nil
		}),
	}))
}

// arg returns args[i] as a string, or "" when JS passed fewer arguments.
func arg(args []js.Value, i int) string {
	if i >= len(args) || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}
