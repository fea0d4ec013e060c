//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/studiokit/pkg/studio/timeline"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorNoLyrics
	ErrorCompile
)

// compileTimeline turns a synced-lyrics payload into segments in the browser.
// Arguments: lyrics (string), duration ("3m 45s", may be malformed).
// Returns: {error: number, data: object | string}
func compileTimeline(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected 2 arguments: lyrics, duration")
	}
	if args[0].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "lyrics must be a string")
	}
	if args[1].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "duration must be a string")
	}

	parsed := timeline.ParseSyncedLyrics(args[0].String())
	if len(parsed.Lines) == 0 {
		return makeErrorResponse(ErrorNoLyrics, "No [mm:ss.cc] lines found in lyrics")
	}

	total, fallback := timeline.ResolveDuration(args[1].String(), parsed.Lines)
	segments, err := timeline.Compile(parsed.Lines, total)
	if err != nil {
		return makeErrorResponse(ErrorCompile, fmt.Sprintf("Failed to compile timeline: %v", err))
	}

	segArray := js.Global().Get("Array").New()
	for i, seg := range segments {
		obj := js.Global().Get("Object").New()
		obj.Set("text", seg.Text)
		obj.Set("start", seg.StartSeconds)
		obj.Set("duration", seg.DurationSeconds)
		obj.Set("timestamp", timeline.FormatTimestamp(seg.StartSeconds))
		obj.Set("searchPhrase", timeline.SearchPhrase(seg.Text))
		segArray.SetIndex(i, obj)
	}

	data := js.Global().Get("Object").New()
	data.Set("segments", segArray)
	data.Set("totalDuration", total)
	data.Set("durationFallback", fallback)
	data.Set("skippedLines", parsed.Skipped)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", data)
	return result
}

// parseDuration exposes the "Xm Ys" parser. Returns seconds or an error.
func parseDuration(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return makeErrorResponse(ErrorInvalidArgs, "Expected a duration string")
	}
	secs, err := timeline.ParseDuration(args[0].String())
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", secs)
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	logf := func(method, msg string) {
		if !console.IsUndefined() {
			console.Call(method, msg)
		}
	}

	logf("log", "studiokit WASM module initializing...")

	done := make(chan struct{})

	js.Global().Set("compileTimeline", js.FuncOf(compileTimeline))
	js.Global().Set("parseDuration", js.FuncOf(parseDuration))

	window := js.Global().Get("window")
	if window.IsUndefined() {
		logf("error", "window object is undefined")
	} else {
		event := js.Global().Get("CustomEvent").New("wasmReady", js.Global().Get("Object").New())
		window.Call("dispatchEvent", event)
		logf("log", "wasmReady event dispatched")
	}

	<-done
}
